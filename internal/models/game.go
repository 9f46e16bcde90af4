package models

import "strings"

// Origin records how a metadata field got its value.
type Origin string

const (
	// Resolved values came from the strict header parse.
	Resolved Origin = "resolved"
	// Recovered values were pattern-matched out of the raw record text.
	Recovered Origin = "recovered"
	// Missing fields had no usable value anywhere in the record.
	Missing Origin = "missing"
)

// Field is a metadata value tagged with its origin.
type Field struct {
	Value  string `json:"value"`
	Origin Origin `json:"origin"`
}

func ResolvedField(v string) Field  { return Field{Value: v, Origin: Resolved} }
func RecoveredField(v string) Field { return Field{Value: v, Origin: Recovered} }
func MissingField() Field           { return Field{Origin: Missing} }

func (f Field) String() string { return f.Value }

// Known reports whether the field carries a value.
func (f Field) Known() bool { return f.Origin != Missing && f.Value != "" }

// Game results as they appear in record headers.
const (
	ResultWhiteWins = "1-0"
	ResultBlackWins = "0-1"
	ResultDraw      = "1/2-1/2"
	ResultOngoing   = "*"
)

// NormalizeResult maps result spellings to the four header values, or "" when unknown.
func NormalizeResult(s string) string {
	switch strings.ReplaceAll(strings.TrimSpace(s), " ", "") {
	case "1-0":
		return ResultWhiteWins
	case "0-1":
		return ResultBlackWins
	case "1/2-1/2", "½-½", "0.5-0.5", "=":
		return ResultDraw
	case "*":
		return ResultOngoing
	default:
		return ""
	}
}

// GameRecord is one ingested game. It is built once by the normalizer and never mutated.
type GameRecord struct {
	ID       string `json:"id"`
	LegendID string `json:"legend_id"`
	Ordinal  int    `json:"ordinal"`
	Event    Field  `json:"event"`
	Site     Field  `json:"site"`
	Date     Field  `json:"date"`
	Round    Field  `json:"round"`
	White    Field  `json:"white"`
	Black    Field  `json:"black"`
	Result   Field  `json:"result"`
	ECO      Field  `json:"eco"`
	Movetext string `json:"movetext"`
}

// Fields returns the metadata fields keyed by their header tag name.
func (g GameRecord) Fields() map[string]Field {
	return map[string]Field{
		"Event":  g.Event,
		"Site":   g.Site,
		"Date":   g.Date,
		"Round":  g.Round,
		"White":  g.White,
		"Black":  g.Black,
		"Result": g.Result,
		"ECO":    g.ECO,
	}
}

// Year extracts the leading year from the Date field, or 0.
func (g GameRecord) Year() int {
	d := g.Date.Value
	if len(d) < 4 {
		return 0
	}
	year := 0
	for _, c := range d[:4] {
		if c < '0' || c > '9' {
			return 0
		}
		year = year*10 + int(c-'0')
	}
	return year
}
