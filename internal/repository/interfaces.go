package repository

import (
	"context"

	"github.com/vytor/chesslegends/internal/models"
)

// RecordRepository stores normalized game records per legend.
type RecordRepository interface {
	// InsertBatch stores records, skipping IDs already present, and returns how many were new.
	InsertBatch(ctx context.Context, records []models.GameRecord) (int, error)
	// ListByLegend returns matching records in insertion order.
	ListByLegend(ctx context.Context, filter models.RecordFilter) ([]models.GameRecord, error)
	Get(ctx context.Context, id string) (*models.GameRecord, error)
	CountByLegend(ctx context.Context, legendID string) (int, error)
}

// SummaryRepository stores finished study session summaries.
type SummaryRepository interface {
	Save(ctx context.Context, summary models.SessionSummary) error
	ListByLegend(ctx context.Context, legendID string, limit int) ([]models.SessionSummary, error)
}
