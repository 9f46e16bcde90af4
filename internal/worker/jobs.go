package worker

import (
	"context"

	"github.com/vytor/chesslegends/internal/legend"
	"github.com/vytor/chesslegends/internal/logger"
	"github.com/vytor/chesslegends/internal/snapshot"
)

// Rebuilder rebuilds a legend's indices from its stored records.
type Rebuilder interface {
	Rebuild(ctx context.Context, legendID string) (*legend.Snapshot, error)
}

// RebuildLegendJob rebuilds one legend and optionally exports the result to SnapshotPath.
type RebuildLegendJob struct {
	Legends      Rebuilder
	LegendID     string
	SnapshotPath string
}

func (j *RebuildLegendJob) Name() string { return "rebuild_legend:" + j.LegendID }

func (j *RebuildLegendJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("legend", j.LegendID)

	snap, err := j.Legends.Rebuild(ctx, j.LegendID)
	if err != nil {
		log.Error("rebuild failed: %v", err)
		return err
	}
	log.Info("rebuilt %d positions from %d games", snap.Stats.Positions, snap.Stats.Games)

	if j.SnapshotPath == "" {
		return nil
	}
	if err := snapshot.WriteFile(j.SnapshotPath, snap); err != nil {
		log.Error("failed to export snapshot to %s: %v", j.SnapshotPath, err)
		return err
	}
	log.Info("exported snapshot to %s", j.SnapshotPath)
	return nil
}
