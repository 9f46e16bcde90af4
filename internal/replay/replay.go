// Package replay plays a game record's movetext through the rules engine.
package replay

import (
	"github.com/vytor/chesslegends/internal/logger"
	"github.com/vytor/chesslegends/internal/models"
	"github.com/vytor/chesslegends/internal/pgn"
	"github.com/vytor/chesslegends/internal/rules"
)

// Result is the outcome of replaying one record.
type Result struct {
	Plies []models.ReplayedPly `json:"plies"`
	// Truncated is set when a token was rejected. FailedPly is its 1-based ply number.
	Truncated   bool     `json:"truncated"`
	FailedPly   int      `json:"failed_ply,omitempty"`
	FailedToken string   `json:"failed_token,omitempty"`
	Opening     *Opening `json:"opening,omitempty"`
}

// Replayer turns records into ply sequences. It holds no per-game state and may be
// shared between goroutines.
type Replayer struct {
	Rules rules.Engine
	// Openings enables ECO classification for records without an ECO header.
	Openings bool
}

// New returns a Replayer over engine.
func New(engine rules.Engine) *Replayer {
	return &Replayer{Rules: engine}
}

// Replay plays every token of rec from the initial position, stopping at the first
// rejected one. Plies before the rejected token are kept.
func (r *Replayer) Replay(rec models.GameRecord) Result {
	tokens := pgn.Tokens(rec.Movetext)
	res := r.ReplayTokens(tokens)
	if res.Truncated {
		logger.Debug("game %s truncated at ply %d (%q)", rec.ID, res.FailedPly, res.FailedToken)
	}

	if rec.ECO.Known() {
		res.Opening = &Opening{Code: rec.ECO.Value}
	} else if r.Openings && len(res.Plies) > 0 {
		if o, ok := Classify(tokens[:len(res.Plies)]); ok {
			res.Opening = &o
		}
	}
	return res
}

// ReplayTokens plays raw move tokens from the initial position.
func (r *Replayer) ReplayTokens(tokens []string) Result {
	var res Result
	state := r.Rules.Start()
	for i, tok := range tokens {
		next, move, err := r.Rules.Apply(state, tok)
		if err != nil {
			res.Truncated = true
			res.FailedPly = i + 1
			res.FailedToken = tok
			break
		}
		res.Plies = append(res.Plies, models.ReplayedPly{
			FENBefore:  state.FEN(),
			Move:       move,
			MoveNumber: state.MoveNumber(),
			SideToMove: state.Turn(),
		})
		state = next
	}
	return res
}

// ReplayColor replays rec and keeps only the plies where side was to move. An absent
// side yields no plies.
func (r *Replayer) ReplayColor(rec models.GameRecord, side models.Side) Result {
	res := r.Replay(rec)
	res.Plies = FilterColor(res.Plies, side)
	return res
}

// FilterColor keeps the plies played by side.
func FilterColor(plies []models.ReplayedPly, side models.Side) []models.ReplayedPly {
	color, ok := side.Color()
	if !ok {
		return nil
	}
	out := make([]models.ReplayedPly, 0, len(plies)/2+1)
	for _, p := range plies {
		if p.SideToMove == color {
			out = append(out, p)
		}
	}
	return out
}
