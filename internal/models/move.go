package models

import "strings"

// Color is the side to move or the side a legend played.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// Side is the identity resolver's verdict for a legend in one game.
type Side string

const (
	SideWhite  Side = "white"
	SideBlack  Side = "black"
	SideAbsent Side = "absent"
)

// Color converts a present side to a color. ok is false for SideAbsent.
func (s Side) Color() (c Color, ok bool) {
	switch s {
	case SideWhite:
		return White, true
	case SideBlack:
		return Black, true
	default:
		return "", false
	}
}

// Move is a move in coordinate form. Capture and Check are informational flags
// filled by the rules engine; they never take part in equality.
type Move struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
	Capture   bool   `json:"capture,omitempty"`
	Check     bool   `json:"check,omitempty"`
}

// UCI renders the move as e2e4 / e7e8q.
func (m Move) UCI() string {
	return m.From + m.To + m.Promotion
}

func (m Move) String() string { return m.UCI() }

// Forcing reports whether the move captured or gave check.
func (m Move) Forcing() bool { return m.Capture || m.Check }

// ParseUCI reads a coordinate move. It returns false for anything that is not
// two squares plus an optional promotion piece.
func ParseUCI(s string) (Move, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 4 && len(s) != 5 {
		return Move{}, false
	}
	if !isSquare(s[0:2]) || !isSquare(s[2:4]) {
		return Move{}, false
	}
	m := Move{From: s[0:2], To: s[2:4]}
	if len(s) == 5 {
		if !strings.ContainsRune("qrbn", rune(s[4])) {
			return Move{}, false
		}
		m.Promotion = s[4:5]
	}
	return m, true
}

func isSquare(s string) bool {
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}
