package services_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/chesslegends/internal/errors"
	"github.com/vytor/chesslegends/internal/models"
	"github.com/vytor/chesslegends/internal/pgn"
	"github.com/vytor/chesslegends/internal/recommend"
	"github.com/vytor/chesslegends/internal/rules"
	"github.com/vytor/chesslegends/internal/testutil/mocks"
)

func TestImport_InMemory(t *testing.T) {
	svc, store := newLegendService(t, nil)
	ctx := context.Background()

	res, err := svc.Import(ctx, "tal", talGames)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Report.Records)
	assert.Equal(t, 3, res.Inserted)
	assert.Equal(t, 2, res.Stats.WithLegend)
	assert.Equal(t, 1, res.Stats.Absent)

	snap, ok := store.Get("tal")
	require.True(t, ok)
	assert.Len(t, snap.Records, 3)

	res, err = svc.Import(ctx, "tal", talGames)
	require.NoError(t, err)
	assert.Zero(t, res.Inserted)
	assert.Equal(t, 3, res.Stats.Games)
}

func TestImport_Errors(t *testing.T) {
	svc, _ := newLegendService(t, nil)
	ctx := context.Background()

	_, err := svc.Import(ctx, "nobody", talGames)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownLegend))

	_, err = svc.Import(ctx, "tal", "   ")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestImport_PersistsAndRebuildsFromRepository(t *testing.T) {
	repo := new(mocks.MockRecordRepository)
	svc, _ := newLegendService(t, repo)
	ctx := context.Background()

	records, _ := pgn.Normalize("tal", talGames)
	repo.On("InsertBatch", mock.Anything, records).Return(3, nil)
	repo.On("ListByLegend", mock.Anything, models.RecordFilter{LegendID: "tal"}).Return(records, nil)

	res, err := svc.Import(ctx, "tal", talGames)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Inserted)
	assert.Equal(t, 2, res.Stats.WithLegend)

	snap, err := svc.Rebuild(ctx, "tal")
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Stats.Games)
	repo.AssertExpectations(t)
}

func TestImport_LegendIDCaseInsensitive(t *testing.T) {
	svc, store := newLegendService(t, nil)
	ctx := context.Background()

	res, err := svc.Import(ctx, "Tal", talGames)
	require.NoError(t, err)
	assert.Equal(t, "tal", res.LegendID)
	assert.Equal(t, []string{"tal"}, store.Legends())

	for _, id := range []string{"Tal", "TAL", " tal "} {
		snap, err := svc.Snapshot(ctx, id)
		require.NoError(t, err, id)
		assert.Equal(t, "tal", snap.Legend.ID)
	}

	res, err = svc.Import(ctx, "TAL", talGames)
	require.NoError(t, err)
	assert.Zero(t, res.Inserted, "same games under another spelling must not duplicate")
	assert.Equal(t, 3, res.Stats.Games)
}

func TestImport_LegendIDCaseInsensitiveWithRepository(t *testing.T) {
	repo := new(mocks.MockRecordRepository)
	svc, _ := newLegendService(t, repo)
	ctx := context.Background()

	records, _ := pgn.Normalize("tal", talGames)
	repo.On("InsertBatch", mock.Anything, records).Return(3, nil)
	repo.On("ListByLegend", mock.Anything, models.RecordFilter{LegendID: "tal"}).Return(records, nil)

	_, err := svc.Import(ctx, "Tal", talGames)
	require.NoError(t, err)
	_, err = svc.Rebuild(ctx, "TAL")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestImport_RepositoryFailure(t *testing.T) {
	repo := new(mocks.MockRecordRepository)
	svc, _ := newLegendService(t, repo)

	repo.On("InsertBatch", mock.Anything, mock.Anything).Return(0, stderrors.New("disk full"))

	_, err := svc.Import(context.Background(), "tal", talGames)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))
}

func TestSnapshot_NotBuilt(t *testing.T) {
	svc, _ := newLegendService(t, nil)
	_, err := svc.Snapshot(context.Background(), "tal")
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownLegend))

	_, err = svc.Book(context.Background(), "tal", 5)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownLegend))
}

func TestLegends(t *testing.T) {
	svc, _ := newLegendService(t, nil)
	ctx := context.Background()
	_, err := svc.Import(ctx, "tal", talGames)
	require.NoError(t, err)

	var built []string
	for _, l := range svc.Legends(ctx) {
		if l.Built {
			built = append(built, l.ID)
			require.NotNil(t, l.Stats)
		}
	}
	assert.Equal(t, []string{"tal"}, built)
}

func TestBook(t *testing.T) {
	svc, _ := newLegendService(t, nil)
	ctx := context.Background()
	_, err := svc.Import(ctx, "tal", talGames)
	require.NoError(t, err)

	all, err := svc.Book(ctx, "tal", 0)
	require.NoError(t, err)
	// 6 plies of the Riga game plus 4 of the Moscow one, each a distinct position and move
	assert.Len(t, all, 10)

	top, err := svc.Book(ctx, "tal", 2)
	require.NoError(t, err)
	assert.Equal(t, all[:2], top)
}

func TestRecommend(t *testing.T) {
	svc, _ := newLegendService(t, nil)
	ctx := context.Background()
	_, err := svc.Import(ctx, "tal", talGames)
	require.NoError(t, err)

	rec, err := svc.Recommend(ctx, "tal", recommend.Request{FEN: rules.StartFEN})
	require.NoError(t, err)
	assert.Equal(t, "e2e4", rec.Move)
	assert.Equal(t, recommend.SourceIndex, rec.Source)

	rec, err = svc.Recommend(ctx, "tal", recommend.Request{History: []string{"d4"}})
	require.NoError(t, err)
	assert.Equal(t, "g8f6", rec.Move)

	// Koblents' replies are not indexed and no oracle is configured
	_, err = svc.Recommend(ctx, "tal", recommend.Request{History: []string{"e4"}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeOracleUnavailable))
}
