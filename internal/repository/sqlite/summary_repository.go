package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/vytor/chesslegends/internal/logger"
	"github.com/vytor/chesslegends/internal/models"
	"github.com/vytor/chesslegends/internal/repository"
)

type summaryRepository struct {
	db *sql.DB
}

// NewSummaryRepository creates a new SummaryRepository implementation
func NewSummaryRepository(db *sql.DB) repository.SummaryRepository {
	return &summaryRepository{db: db}
}

func (r *summaryRepository) Save(ctx context.Context, s models.SessionSummary) error {
	log := logger.FromContext(ctx).WithPrefix("summary_repo")
	log.Debug("saving summary: session=%s, legend=%s, score=%d/%d", s.SessionID, s.LegendID, s.TotalScore, s.MaxScore)

	tags, err := json.Marshal(s.WeaknessTags)
	if err != nil {
		return err
	}
	results, err := json.Marshal(s.Results)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO session_summaries (session_id, legend_id, game_id, total_score, max_score, weakness_tags, results, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(session_id) DO UPDATE SET
    total_score = excluded.total_score,
    max_score = excluded.max_score,
    weakness_tags = excluded.weakness_tags,
    results = excluded.results,
    finished_at = excluded.finished_at
`, s.SessionID, s.LegendID, s.GameID, s.TotalScore, s.MaxScore, string(tags), string(results), s.FinishedAt)
	if err != nil {
		log.Error("failed to save summary: %v", err)
	}
	return err
}

func (r *summaryRepository) ListByLegend(ctx context.Context, legendID string, limit int) ([]models.SessionSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("summary_repo")
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT session_id, legend_id, game_id, total_score, max_score, weakness_tags, results, finished_at
FROM session_summaries
WHERE legend_id = ?
ORDER BY finished_at DESC
LIMIT ?
`, legendID, limit)
	if err != nil {
		log.Error("failed to list summaries: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.SessionSummary
	for rows.Next() {
		var (
			s             models.SessionSummary
			tags, results string
		)
		if err := rows.Scan(&s.SessionID, &s.LegendID, &s.GameID, &s.TotalScore, &s.MaxScore, &tags, &results, &s.FinishedAt); err != nil {
			log.Error("failed to scan summary row: %v", err)
			return nil, err
		}
		if err := json.Unmarshal([]byte(tags), &s.WeaknessTags); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(results), &s.Results); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	log.Debug("found %d summaries for %s", len(out), legendID)
	return out, rows.Err()
}
