package models

// ReplayedPly is one half-move of a replayed game.
type ReplayedPly struct {
	FENBefore  string `json:"fen_before"`
	Move       Move   `json:"move"`
	MoveNumber int    `json:"move_number"`
	SideToMove Color  `json:"side_to_move"`
}

// OpeningBookEntry counts how often a move was played from a position.
type OpeningBookEntry struct {
	Position string `json:"position"`
	Move     string `json:"move"`
	Count    int    `json:"count"`
}

// Continuation is one historical move a legend played from an indexed position.
type Continuation struct {
	Move       string `json:"move"`
	GameID     string `json:"game_id"`
	MoveNumber int    `json:"move_number"`
	Color      Color  `json:"color"`
	Year       int    `json:"year,omitempty"`
	Seq        int    `json:"seq"`
}
