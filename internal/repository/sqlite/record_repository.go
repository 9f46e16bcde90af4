package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/chesslegends/internal/logger"
	"github.com/vytor/chesslegends/internal/models"
	"github.com/vytor/chesslegends/internal/repository"
)

type recordRepository struct {
	db *sql.DB
}

// NewRecordRepository creates a new RecordRepository implementation
func NewRecordRepository(db *sql.DB) repository.RecordRepository {
	return &recordRepository{db: db}
}

var recordColumns = []string{"id", "legend_id", "ordinal", "fields", "movetext"}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.GameRecord, error) {
	var (
		r      models.GameRecord
		fields string
	)
	if err := row.Scan(&r.ID, &r.LegendID, &r.Ordinal, &fields, &r.Movetext); err != nil {
		return r, err
	}
	var f map[string]models.Field
	if err := json.Unmarshal([]byte(fields), &f); err != nil {
		return r, err
	}
	r.Event, r.Site, r.Date, r.Round = f["Event"], f["Site"], f["Date"], f["Round"]
	r.White, r.Black, r.Result, r.ECO = f["White"], f["Black"], f["Result"], f["ECO"]
	return r, nil
}

func (r *recordRepository) Get(ctx context.Context, id string) (*models.GameRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("record_repo")
	log.Debug("getting record: id=%s", id)

	row := r.db.QueryRowContext(ctx, `
SELECT id, legend_id, ordinal, fields, movetext
FROM game_records
WHERE id = ?
`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("record not found: id=%s", id)
		} else {
			log.Error("failed to get record: %v", err)
		}
		return nil, err
	}
	return &rec, nil
}

func (r *recordRepository) ListByLegend(ctx context.Context, filter models.RecordFilter) ([]models.GameRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("record_repo")
	log.Debug("listing records: legend=%s, player=%s, eco=%s, result=%s", filter.LegendID, filter.Player, filter.ECO, filter.Result)

	query := sqlBuilder.Select(recordColumns...).From("game_records").
		Where(squirrel.Eq{"legend_id": filter.LegendID})

	if filter.Player != "" {
		like := "%" + strings.ToLower(filter.Player) + "%"
		query = query.Where(squirrel.Or{
			squirrel.Like{"LOWER(white)": like},
			squirrel.Like{"LOWER(black)": like},
		})
	}
	if filter.ECO != "" {
		query = query.Where(squirrel.Eq{"eco": filter.ECO})
	}
	if filter.Result != "" {
		query = query.Where(squirrel.Eq{"result": filter.Result})
	}

	query = query.OrderBy("rowid ASC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sql, args...)
	if err != nil {
		log.Error("failed to list records: %v", err)
		return nil, err
	}
	defer rows.Close()

	var records []models.GameRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			log.Error("failed to scan record row: %v", err)
			return nil, err
		}
		records = append(records, rec)
	}
	log.Debug("found %d records", len(records))
	return records, rows.Err()
}

func (r *recordRepository) CountByLegend(ctx context.Context, legendID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM game_records WHERE legend_id = ?`, legendID).Scan(&count)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("record_repo").Error("failed to count records: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *recordRepository) InsertBatch(ctx context.Context, records []models.GameRecord) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("record_repo")
	log.Debug("batch inserting %d records", len(records))

	if len(records) == 0 {
		return 0, nil
	}

	inserted := 0
	err := inTx(ctx, r.db, "insert records", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO game_records (id, legend_id, ordinal, white, black, date, result, eco, fields, movetext)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING
`)
		if err != nil {
			log.Error("failed to prepare batch insert: %v", err)
			return err
		}
		defer stmt.Close()

		for _, rec := range records {
			fields, err := json.Marshal(rec.Fields())
			if err != nil {
				return err
			}
			res, err := stmt.ExecContext(ctx, rec.ID, rec.LegendID, rec.Ordinal,
				rec.White.Value, rec.Black.Value, rec.Date.Value, rec.Result.Value, rec.ECO.Value,
				string(fields), rec.Movetext)
			if err != nil {
				log.Error("failed to insert record id=%s: %v", rec.ID, err)
				return err
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Debug("batch insert completed, %d new records inserted", inserted)
	return inserted, nil
}
