package models

// RecordFilter narrows stored game record listings. Player matches either side's
// name, case-insensitively.
type RecordFilter struct {
	LegendID string
	Player   string
	ECO      string
	Result   string
	Limit    int
	Offset   int
}
