package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/chesslegends/internal/oracle"
)

// MockOracle is a mock implementation of oracle.Oracle
type MockOracle struct {
	mock.Mock
}

func (m *MockOracle) BestMove(ctx context.Context, fen string, s oracle.Strength) (oracle.Evaluation, error) {
	args := m.Called(ctx, fen, s)
	return args.Get(0).(oracle.Evaluation), args.Error(1)
}
