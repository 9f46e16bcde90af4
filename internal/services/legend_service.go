package services

import (
	"context"
	"sync"

	"github.com/vytor/chesslegends/internal/errors"
	"github.com/vytor/chesslegends/internal/identity"
	"github.com/vytor/chesslegends/internal/legend"
	"github.com/vytor/chesslegends/internal/logger"
	"github.com/vytor/chesslegends/internal/models"
	"github.com/vytor/chesslegends/internal/pgn"
	"github.com/vytor/chesslegends/internal/recommend"
	"github.com/vytor/chesslegends/internal/repository"
)

// LegendSummary describes a registered legend and the state of its index.
type LegendSummary struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Built     bool          `json:"built"`
	Stats     *legend.Stats `json:"stats,omitempty"`
	Spellings []string      `json:"spellings"`
}

// ImportResult reports one import.
type ImportResult struct {
	LegendID string       `json:"legend_id"`
	Report   pgn.Report   `json:"report"`
	Inserted int          `json:"inserted"`
	Stats    legend.Stats `json:"stats"`
}

// LegendService handles ingestion and the read side of built legend indices
type LegendService interface {
	Legends(ctx context.Context) []LegendSummary
	Resolve(ctx context.Context, legendID string) (identity.Legend, error)
	Import(ctx context.Context, legendID, blob string) (*ImportResult, error)
	Rebuild(ctx context.Context, legendID string) (*legend.Snapshot, error)
	Snapshot(ctx context.Context, legendID string) (*legend.Snapshot, error)
	Book(ctx context.Context, legendID string, limit int) ([]models.OpeningBookEntry, error)
	Recommend(ctx context.Context, legendID string, req recommend.Request) (recommend.Recommendation, error)
}

type legendService struct {
	registry     *identity.Registry
	pipeline     *legend.Pipeline
	store        *legend.Store
	records      repository.RecordRepository
	recommender  *recommend.Engine
	defaultLevel int

	buildMu sync.Map // legend ID -> *sync.Mutex
}

// NewLegendService creates a new LegendService. records may be nil, in which case imports
// are merged into the in-memory snapshot only.
func NewLegendService(registry *identity.Registry, pipeline *legend.Pipeline, store *legend.Store,
	records repository.RecordRepository, recommender *recommend.Engine, defaultLevel int) LegendService {
	return &legendService{
		registry:     registry,
		pipeline:     pipeline,
		store:        store,
		records:      records,
		recommender:  recommender,
		defaultLevel: defaultLevel,
	}
}

func (s *legendService) lock(legendID string) func() {
	v, _ := s.buildMu.LoadOrStore(legendID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Resolve looks legendID up in the registry regardless of case. The registry's ID is
// the key for records, snapshots, summaries and build locks.
func (s *legendService) Resolve(ctx context.Context, legendID string) (identity.Legend, error) {
	l, ok := s.registry.Lookup(legendID)
	if !ok {
		return identity.Legend{}, errors.NewUnknownLegendError(legendID)
	}
	return l, nil
}

func (s *legendService) canonicalID(legendID string) (string, error) {
	l, err := s.Resolve(context.Background(), legendID)
	return l.ID, err
}

func (s *legendService) Legends(ctx context.Context) []LegendSummary {
	var out []LegendSummary
	for _, l := range s.registry.Legends() {
		sum := LegendSummary{ID: l.ID, Name: l.Name, Spellings: l.Spellings}
		if snap, ok := s.store.Get(l.ID); ok {
			stats := snap.Stats
			sum.Built = true
			sum.Stats = &stats
		}
		out = append(out, sum)
	}
	return out
}

func (s *legendService) Import(ctx context.Context, legendID, blob string) (*ImportResult, error) {
	legendID, err := s.canonicalID(legendID)
	if err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx).WithPrefix("legend_service").WithField("legend", legendID)

	records, report := pgn.Normalize(legendID, blob)
	if len(records) == 0 {
		return nil, errors.NewValidationError("pgn", "no game records found")
	}
	log.Info("normalized %d records (%d with recovered fields)", report.Records, report.WithRecovered)

	unlock := s.lock(legendID)
	defer unlock()

	result := &ImportResult{LegendID: legendID, Report: report}
	var all []models.GameRecord
	if s.records != nil {
		n, err := s.records.InsertBatch(ctx, records)
		if err != nil {
			log.Error("failed to store records: %v", err)
			return nil, errors.NewInternalError(err)
		}
		result.Inserted = n
		if all, err = s.records.ListByLegend(ctx, models.RecordFilter{LegendID: legendID}); err != nil {
			log.Error("failed to list records: %v", err)
			return nil, errors.NewInternalError(err)
		}
	} else {
		all, result.Inserted = s.merge(legendID, records)
	}

	snap, err := s.build(ctx, legendID, all)
	if err != nil {
		return nil, err
	}
	result.Stats = snap.Stats
	return result, nil
}

// merge appends records not already in the current snapshot.
func (s *legendService) merge(legendID string, records []models.GameRecord) ([]models.GameRecord, int) {
	var all []models.GameRecord
	seen := map[string]bool{}
	if snap, ok := s.store.Get(legendID); ok {
		for _, r := range snap.Records {
			seen[r.ID] = true
			all = append(all, r)
		}
	}
	added := 0
	for _, r := range records {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		all = append(all, r)
		added++
	}
	return all, added
}

func (s *legendService) Rebuild(ctx context.Context, legendID string) (*legend.Snapshot, error) {
	legendID, err := s.canonicalID(legendID)
	if err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx).WithPrefix("legend_service").WithField("legend", legendID)

	unlock := s.lock(legendID)
	defer unlock()

	var records []models.GameRecord
	if s.records != nil {
		records, err = s.records.ListByLegend(ctx, models.RecordFilter{LegendID: legendID})
		if err != nil {
			log.Error("failed to list records: %v", err)
			return nil, errors.NewInternalError(err)
		}
	} else if snap, ok := s.store.Get(legendID); ok {
		records = snap.Records
	}
	log.Debug("rebuilding from %d records", len(records))
	return s.build(ctx, legendID, records)
}

func (s *legendService) build(ctx context.Context, legendID string, records []models.GameRecord) (*legend.Snapshot, error) {
	snap, err := s.pipeline.Build(ctx, legendID, records)
	if err != nil {
		if _, ok := err.(*errors.AppError); ok {
			return nil, err
		}
		return nil, errors.NewInternalError(err)
	}
	s.store.Put(snap)
	return snap, nil
}

func (s *legendService) Snapshot(ctx context.Context, legendID string) (*legend.Snapshot, error) {
	id, err := s.canonicalID(legendID)
	if err != nil {
		return nil, err
	}
	snap, ok := s.store.Get(id)
	if !ok {
		return nil, errors.NewUnknownLegendError(legendID)
	}
	return snap, nil
}

func (s *legendService) Book(ctx context.Context, legendID string, limit int) ([]models.OpeningBookEntry, error) {
	snap, err := s.Snapshot(ctx, legendID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return snap.Book.Entries(), nil
	}
	return snap.Book.Top(limit), nil
}

func (s *legendService) Recommend(ctx context.Context, legendID string, req recommend.Request) (recommend.Recommendation, error) {
	snap, err := s.Snapshot(ctx, legendID)
	if err != nil {
		return recommend.Recommendation{}, err
	}
	if req.BotLevel == 0 {
		req.BotLevel = s.defaultLevel
	}
	return s.recommender.Recommend(ctx, snap.Index, req)
}
