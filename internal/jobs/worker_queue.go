package jobs

import (
	"path/filepath"

	"github.com/vytor/chesslegends/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	pool        *worker.Pool
	legends     worker.Rebuilder
	snapshotDir string
}

// NewWorkerQueue creates a new WorkerQueue. When snapshotDir is set every rebuild is
// also exported there as <legend>.snap.zst.
func NewWorkerQueue(pool *worker.Pool, legends worker.Rebuilder, snapshotDir string) JobQueue {
	return &WorkerQueue{pool: pool, legends: legends, snapshotDir: snapshotDir}
}

func (q *WorkerQueue) EnqueueRebuild(legendID string) error {
	job := &worker.RebuildLegendJob{Legends: q.legends, LegendID: legendID}
	if q.snapshotDir != "" {
		job.SnapshotPath = filepath.Join(q.snapshotDir, legendID+".snap.zst")
	}
	return q.pool.Submit(job)
}
