// Package legend runs the build pipeline (normalize, resolve identity, replay,
// aggregate) and holds the resulting per-legend snapshots.
package legend

import (
	"context"
	"time"

	"github.com/vytor/chesslegends/internal/book"
	"github.com/vytor/chesslegends/internal/errors"
	"github.com/vytor/chesslegends/internal/identity"
	"github.com/vytor/chesslegends/internal/index"
	"github.com/vytor/chesslegends/internal/logger"
	"github.com/vytor/chesslegends/internal/models"
	"github.com/vytor/chesslegends/internal/pgn"
	"github.com/vytor/chesslegends/internal/replay"
	"golang.org/x/sync/errgroup"
)

// Stats reports the data quality of one build.
type Stats struct {
	Games           int            `json:"games"`
	WithLegend      int            `json:"with_legend"`
	Absent          int            `json:"absent"`
	Truncated       int            `json:"truncated"`
	EmptyMovetext   int            `json:"empty_movetext"`
	RecoveredFields int            `json:"recovered_fields"`
	PliesReplayed   int            `json:"plies_replayed"`
	PliesIndexed    int            `json:"plies_indexed"`
	BookEntries     int            `json:"book_entries"`
	Positions       int            `json:"positions"`
	Openings        map[string]int `json:"openings,omitempty"`
}

// Snapshot is one legend's built indices. Never mutated after Build returns.
type Snapshot struct {
	Legend  identity.Legend
	Records []models.GameRecord
	Sides   map[string]models.Side
	Book    *book.Book
	Index   *index.Index
	Stats   Stats
	BuiltAt time.Time
}

// Record returns the record with id and the side the legend played in it.
func (s *Snapshot) Record(id string) (models.GameRecord, models.Side, bool) {
	for _, r := range s.Records {
		if r.ID == id {
			return r, s.Sides[id], true
		}
	}
	return models.GameRecord{}, models.SideAbsent, false
}

// Pipeline builds snapshots. It keeps no state between builds.
type Pipeline struct {
	registry *identity.Registry
	replayer *replay.Replayer
	horizon  int
	workers  int
}

// NewPipeline returns a pipeline replaying up to workers games at once.
func NewPipeline(registry *identity.Registry, replayer *replay.Replayer, horizon, workers int) *Pipeline {
	if workers <= 0 {
		workers = 1
	}
	return &Pipeline{registry: registry, replayer: replayer, horizon: horizon, workers: workers}
}

// Ingest normalizes blob and builds the legend's snapshot from the resulting records.
func (p *Pipeline) Ingest(ctx context.Context, legendID, blob string) (*Snapshot, pgn.Report, error) {
	records, report := pgn.Normalize(legendID, blob)
	logger.FromContext(ctx).WithPrefix("legend").Info("normalized %d records for %s (%d with recovered fields, %d without movetext)",
		report.Records, legendID, report.WithRecovered, report.EmptyMovetext)

	snap, err := p.Build(ctx, legendID, records)
	return snap, report, err
}

// Build resolves identity and replays records in parallel, then aggregates the plies
// in record order so that identical input yields identical indices.
func (p *Pipeline) Build(ctx context.Context, legendID string, records []models.GameRecord) (*Snapshot, error) {
	log := logger.FromContext(ctx).WithPrefix("legend").WithField("legend", legendID)

	l, ok := p.registry.Lookup(legendID)
	if !ok {
		return nil, errors.NewUnknownLegendError(legendID)
	}

	start := time.Now()
	sides := make([]models.Side, len(records))
	results := make([]replay.Result, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range records {
		sides[i] = p.registry.Resolve(l.ID, records[i].White.Value, records[i].Black.Value)
		if sides[i] == models.SideAbsent {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.replayer.Replay(records[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn("build cancelled: %v", err)
		return nil, err
	}

	snap := &Snapshot{
		Legend:  l,
		Records: append([]models.GameRecord(nil), records...),
		Sides:   make(map[string]models.Side, len(records)),
		Stats:   Stats{Games: len(records), Openings: map[string]int{}},
	}
	bb := book.NewBuilder(p.horizon)
	ib := index.NewBuilder()

	for i, rec := range records {
		snap.Sides[rec.ID] = sides[i]
		for _, f := range rec.Fields() {
			if f.Origin == models.Recovered {
				snap.Stats.RecoveredFields++
			}
		}
		if rec.Movetext == "" {
			snap.Stats.EmptyMovetext++
		}
		if sides[i] == models.SideAbsent {
			snap.Stats.Absent++
			continue
		}

		res := results[i]
		snap.Stats.WithLegend++
		snap.Stats.PliesReplayed += len(res.Plies)
		if res.Truncated {
			snap.Stats.Truncated++
		}
		if res.Opening != nil {
			snap.Stats.Openings[res.Opening.Code]++
		}

		bb.Add(res.Plies)
		snap.Stats.PliesIndexed += ib.Add(rec, res.Plies, sides[i])
	}

	snap.Book = bb.Build()
	snap.Index = ib.Build()
	snap.Stats.BookEntries = snap.Book.Len()
	snap.Stats.Positions = snap.Index.Len()
	snap.BuiltAt = time.Now().UTC()

	log.Info("built %d book entries and %d positions from %d/%d games in %v (%d truncated)",
		snap.Stats.BookEntries, snap.Stats.Positions, snap.Stats.WithLegend, snap.Stats.Games,
		time.Since(start), snap.Stats.Truncated)
	return snap, nil
}
