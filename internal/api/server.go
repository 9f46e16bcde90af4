package api

import (
	"context"

	"github.com/vytor/chesslegends/internal/jobs"
	"github.com/vytor/chesslegends/internal/services"
)

// Pinger reports storage health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	LegendService services.LegendService
	StudyService  services.StudyService
	JobQueue      jobs.JobQueue
	DB            Pinger
	MaxUploadSize int64
}
