package worker_test

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/chesslegends/internal/identity"
	"github.com/vytor/chesslegends/internal/legend"
	"github.com/vytor/chesslegends/internal/replay"
	"github.com/vytor/chesslegends/internal/rules"
	"github.com/vytor/chesslegends/internal/snapshot"
	"github.com/vytor/chesslegends/internal/worker"
)

type rebuilderFunc func(ctx context.Context, legendID string) (*legend.Snapshot, error)

func (f rebuilderFunc) Rebuild(ctx context.Context, legendID string) (*legend.Snapshot, error) {
	return f(ctx, legendID)
}

func TestRebuildLegendJob_Exports(t *testing.T) {
	p := legend.NewPipeline(identity.DefaultRegistry(), replay.New(rules.New()), 18, 1)
	path := filepath.Join(t.TempDir(), "morphy.snap.zst")

	job := &worker.RebuildLegendJob{
		Legends: rebuilderFunc(func(ctx context.Context, id string) (*legend.Snapshot, error) {
			snap, _, err := p.Ingest(ctx, id, "[White \"Morphy, Paul\"]\n[Black \"Anderssen\"]\n\n1. e4 e5 1-0\n")
			return snap, err
		}),
		LegendID:     "morphy",
		SnapshotPath: path,
	}
	assert.Equal(t, "rebuild_legend:morphy", job.Name())
	require.NoError(t, job.Run(context.Background()))

	snap, err := snapshot.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "morphy", snap.Legend.ID)
	assert.Equal(t, 1, snap.Stats.PliesIndexed)
}

func TestRebuildLegendJob_Failure(t *testing.T) {
	job := &worker.RebuildLegendJob{
		Legends: rebuilderFunc(func(context.Context, string) (*legend.Snapshot, error) {
			return nil, stderrors.New("no records")
		}),
		LegendID: "tal",
	}
	assert.Error(t, job.Run(context.Background()))
}
