package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/chesslegends/internal/models"
)

// MockRecordRepository is a mock implementation of repository.RecordRepository
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) InsertBatch(ctx context.Context, records []models.GameRecord) (int, error) {
	args := m.Called(ctx, records)
	return args.Int(0), args.Error(1)
}

func (m *MockRecordRepository) ListByLegend(ctx context.Context, filter models.RecordFilter) ([]models.GameRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GameRecord), args.Error(1)
}

func (m *MockRecordRepository) Get(ctx context.Context, id string) (*models.GameRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameRecord), args.Error(1)
}

func (m *MockRecordRepository) CountByLegend(ctx context.Context, legendID string) (int, error) {
	args := m.Called(ctx, legendID)
	return args.Int(0), args.Error(1)
}
