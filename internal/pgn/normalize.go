package pgn

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vytor/chesslegends/internal/models"
)

// MetadataTags lists the header tags every GameRecord carries.
var MetadataTags = []string{"Event", "Site", "Date", "Round", "White", "Black", "Result", "ECO"}

// recordNamespace seeds the name-based record IDs.
var recordNamespace = uuid.MustParse("6c1f8a2e-5d7b-4f0e-9a43-2b8e7c1d9f60")

// Report summarizes data quality of one normalization run.
type Report struct {
	Records       int            `json:"records"`
	WithRecovered int            `json:"with_recovered"`
	Recovered     map[string]int `json:"recovered"`
	Missing       map[string]int `json:"missing"`
	EmptyMovetext int            `json:"empty_movetext"`
}

func newReport() Report {
	return Report{Recovered: map[string]int{}, Missing: map[string]int{}}
}

// Normalize turns a raw multi-game blob into game records for legendID. It never fails:
// malformed records are kept with whatever could be recovered.
func Normalize(legendID, blob string) ([]models.GameRecord, Report) {
	report := newReport()
	chunks := SplitRecords(blob)
	records := make([]models.GameRecord, 0, len(chunks))

	for i, raw := range chunks {
		rec := NormalizeRecord(legendID, i, raw)
		records = append(records, rec)

		report.Records++
		recovered := false
		for tag, f := range rec.Fields() {
			switch f.Origin {
			case models.Recovered:
				report.Recovered[tag]++
				recovered = true
			case models.Missing:
				report.Missing[tag]++
			}
		}
		if recovered {
			report.WithRecovered++
		}
		if rec.Movetext == "" {
			report.EmptyMovetext++
		}
	}
	return records, report
}

// NormalizeRecord parses one record substring. ordinal is its position in the blob.
func NormalizeRecord(legendID string, ordinal int, raw string) models.GameRecord {
	headers, movetext := splitHeaderBlock(raw)
	movetext = isolateMovetext(movetext)

	field := func(tag string) models.Field {
		if v, ok := headers[tag]; ok && usable(v) {
			return models.ResolvedField(strings.TrimSpace(v))
		}
		if v, ok := FindTag(raw, tag); ok {
			return models.RecoveredField(v)
		}
		return models.MissingField()
	}

	rec := models.GameRecord{
		ID:       RecordID(legendID, ordinal, raw),
		LegendID: legendID,
		Ordinal:  ordinal,
		Event:    field("Event"),
		Site:     field("Site"),
		Date:     field("Date"),
		Round:    field("Round"),
		White:    field("White"),
		Black:    field("Black"),
		Result:   field("Result"),
		ECO:      field("ECO"),
		Movetext: movetext,
	}

	rec.Result = resolveResult(rec.Result, movetext)
	return rec
}

// RecordID derives a stable identifier from the legend, the ordinal and the raw text,
// so rebuilding from the same blob reproduces the same IDs.
func RecordID(legendID string, ordinal int, raw string) string {
	name := fmt.Sprintf("%s\x00%d\x00%s", legendID, ordinal, raw)
	return uuid.NewSHA1(recordNamespace, []byte(name)).String()
}

func resolveResult(f models.Field, movetext string) models.Field {
	if f.Known() {
		if norm := models.NormalizeResult(f.Value); norm != "" {
			return models.Field{Value: norm, Origin: f.Origin}
		}
	}
	if r, ok := TerminalResult(movetext); ok {
		return models.RecoveredField(r)
	}
	if f.Known() {
		// Unrecognized spelling; keep the text so callers can see it.
		return f
	}
	return models.MissingField()
}

// isolateMovetext drops any tag lines left inside the movetext block. An empty result
// means the record had no isolatable moves.
func isolateMovetext(s string) string {
	var kept []string
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			continue
		}
		kept = append(kept, line)
	}
	out := strings.TrimSpace(strings.Join(kept, "\n"))
	if len(Tokens(out)) == 0 {
		return ""
	}
	return out
}
