package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/corentings/chess/v2"
	"github.com/vytor/chesslegends/internal/models"
)

// ErrIllegalMove is returned by Apply for tokens that do not name a legal move.
var ErrIllegalMove = errors.New("illegal move")

// ErrInvalidFEN is returned by Parse for unreadable board states.
var ErrInvalidFEN = errors.New("invalid FEN")

// ChessEngine implements Engine on top of corentings/chess.
type ChessEngine struct{}

// New returns the chess-library backed rules engine.
func New() *ChessEngine { return &ChessEngine{} }

var _ Engine = (*ChessEngine)(nil)

type position struct {
	pos *chess.Position
	fen string
}

func newPosition(pos *chess.Position) position {
	return position{pos: pos, fen: pos.String()}
}

func (p position) FEN() string { return p.fen }

func (p position) Turn() models.Color {
	if p.pos.Turn() == chess.Black {
		return models.Black
	}
	return models.White
}

func (p position) MoveNumber() int { return MoveNumberFromFEN(p.fen) }

// Start returns a fresh initial position. Positions cache their legal moves lazily, so
// each replay gets its own instance.
func (e *ChessEngine) Start() State {
	return newPosition(chess.NewGame().Position())
}

func (e *ChessEngine) Parse(fen string) (State, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidFEN)
	}
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	return newPosition(chess.NewGame(opt).Position()), nil
}

func (e *ChessEngine) Apply(s State, token string) (State, models.Move, error) {
	p, err := e.position(s)
	if err != nil {
		return nil, models.Move{}, err
	}

	legal := validMoves(p.pos)
	m := decode(p.pos, legal, token)
	if m == nil {
		return nil, models.Move{}, fmt.Errorf("%w: %q in %s", ErrIllegalMove, token, p.fen)
	}
	return newPosition(p.pos.Update(m)), toMove(m), nil
}

func (e *ChessEngine) LegalMoves(s State) []models.Move {
	p, err := e.position(s)
	if err != nil {
		return nil
	}
	legal := validMoves(p.pos)
	out := make([]models.Move, 0, len(legal))
	for _, m := range legal {
		out = append(out, toMove(m))
	}
	return out
}

// position accepts states from other engines by round-tripping their FEN.
func (e *ChessEngine) position(s State) (position, error) {
	if p, ok := s.(position); ok {
		return p, nil
	}
	if s == nil {
		return position{}, fmt.Errorf("%w: nil state", ErrInvalidFEN)
	}
	parsed, err := e.Parse(s.FEN())
	if err != nil {
		return position{}, err
	}
	return parsed.(position), nil
}

func validMoves(pos *chess.Position) []*chess.Move {
	moves := pos.ValidMoves()
	out := make([]*chess.Move, len(moves))
	for i := range moves {
		out[i] = &moves[i]
	}
	return out
}

var (
	longAlgebraicRe = regexp.MustCompile(`^[KQRBN]?([a-h][1-8])[-x:]?([a-h][1-8])=?([QRBNqrbn])?$`)
	barePromotionRe = regexp.MustCompile(`^([a-h]x?[a-h]?[18])([QRBN])$`)
)

// decode resolves token to one of the legal moves. Coordinate forms are matched
// directly; everything else goes through the SAN decoder.
func decode(pos *chess.Position, legal []*chess.Move, token string) *chess.Move {
	token = strings.TrimRight(strings.TrimSpace(token), "+#!?")
	if token == "" {
		return nil
	}
	token = strings.ReplaceAll(token, "0-0-0", "O-O-O")
	token = strings.ReplaceAll(token, "0-0", "O-O")

	if g := longAlgebraicRe.FindStringSubmatch(token); g != nil {
		if m := match(legal, g[1]+g[2]+strings.ToLower(g[3])); m != nil {
			return m
		}
	}

	for _, candidate := range []string{token, barePromotionRe.ReplaceAllString(token, "$1=$2")} {
		m, err := chess.AlgebraicNotation{}.Decode(pos, candidate)
		if err != nil || m == nil {
			continue
		}
		// Only trust the decoder when its answer is one of the generated legal moves.
		if lm := match(legal, MoveToUCI(m)); lm != nil {
			return lm
		}
	}
	return nil
}

func match(legal []*chess.Move, uci string) *chess.Move {
	for _, m := range legal {
		if MoveToUCI(m) == uci {
			return m
		}
	}
	return nil
}

func toMove(m *chess.Move) models.Move {
	out := models.Move{
		From:    squareToString(m.S1()),
		To:      squareToString(m.S2()),
		Capture: m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant),
		Check:   m.HasTag(chess.Check),
	}
	if p := promoLetter(m.Promo()); p != "" {
		out.Promotion = p
	}
	return out
}
