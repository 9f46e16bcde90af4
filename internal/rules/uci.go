package rules

import (
	"fmt"

	"github.com/corentings/chess/v2"
)

// MoveToUCI converts a chess Move to UCI format (e.g., "e2e4", "e7e8q")
func MoveToUCI(move *chess.Move) string {
	if move == nil {
		return ""
	}
	return squareToString(move.S1()) + squareToString(move.S2()) + promoLetter(move.Promo())
}

func promoLetter(promo chess.PieceType) string {
	switch promo {
	case chess.Queen:
		return "q"
	case chess.Rook:
		return "r"
	case chess.Bishop:
		return "b"
	case chess.Knight:
		return "n"
	default:
		return ""
	}
}

// squareToString converts a Square to algebraic notation (e.g., "e2", "a8")
func squareToString(sq chess.Square) string {
	fileChar := 'a' + int(sq.File())
	rankChar := '1' + int(sq.Rank())
	return fmt.Sprintf("%c%c", fileChar, rankChar)
}
