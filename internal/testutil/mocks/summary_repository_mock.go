package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/chesslegends/internal/models"
)

// MockSummaryRepository is a mock implementation of repository.SummaryRepository
type MockSummaryRepository struct {
	mock.Mock
}

func (m *MockSummaryRepository) Save(ctx context.Context, summary models.SessionSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockSummaryRepository) ListByLegend(ctx context.Context, legendID string, limit int) ([]models.SessionSummary, error) {
	args := m.Called(ctx, legendID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SessionSummary), args.Error(1)
}
