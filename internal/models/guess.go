package models

import "time"

// Tag describes one aspect of a scored guess.
type Tag string

const (
	TagExactMatch         Tag = "exact_match"
	TagOracleBest         Tag = "oracle_best"
	TagDeviation          Tag = "deviation"
	TagReasonable         Tag = "reasonable"
	TagInferior           Tag = "inferior"
	TagBlunder            Tag = "blunder"
	TagMissedForcing      Tag = "missed_forcing"
	TagPassiveAlternative Tag = "passive_alternative"
	TagWrongPiece         Tag = "wrong_piece"
	TagUnverified         Tag = "unverified"
)

// Positive reports tags that describe a hit rather than a weakness.
func (t Tag) Positive() bool {
	return t == TagExactMatch || t == TagOracleBest
}

// Weakness reports tags that describe a kind of miss. Descriptive tags such as
// deviation or unverified are neither positive nor weaknesses.
func (t Tag) Weakness() bool {
	switch t {
	case TagInferior, TagBlunder, TagMissedForcing, TagPassiveAlternative, TagWrongPiece:
		return true
	}
	return false
}

// GuessStep is one position in a study session where the legend was to move.
type GuessStep struct {
	FEN        string `json:"fen"`
	Historical Move   `json:"historical"`
	MoveNumber int    `json:"move_number"`
}

// GuessResult is one scored guess. Classification is good, inaccuracy, mistake or
// blunder when a centipawn loss was measured.
type GuessResult struct {
	Ply            int    `json:"ply"`
	MoveNumber     int    `json:"move_number"`
	FEN            string `json:"fen"`
	Guess          string `json:"guess"`
	Historical     string `json:"historical"`
	OracleBest     string `json:"oracle_best,omitempty"`
	CPLoss         *int   `json:"cp_loss,omitempty"`
	Classification string `json:"classification,omitempty"`
	Score          int    `json:"score"`
	Tags           []Tag  `json:"tags"`
}

// HasTag reports whether the result carries tag.
func (r GuessResult) HasTag(tag Tag) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SessionSummary aggregates a finished study session.
type SessionSummary struct {
	SessionID    string        `json:"session_id"`
	LegendID     string        `json:"legend_id"`
	GameID       string        `json:"game_id"`
	TotalScore   int           `json:"total_score"`
	MaxScore     int           `json:"max_score"`
	Results      []GuessResult `json:"results"`
	WeaknessTags []Tag         `json:"weakness_tags"`
	FinishedAt   time.Time     `json:"finished_at"`
}
