package scoring_test

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/chesslegends/internal/errors"
	"github.com/vytor/chesslegends/internal/models"
	"github.com/vytor/chesslegends/internal/oracle"
	"github.com/vytor/chesslegends/internal/rules"
	"github.com/vytor/chesslegends/internal/scoring"
	"github.com/vytor/chesslegends/internal/testutil/mocks"
)

func game(movetext string) models.GameRecord {
	return models.GameRecord{ID: "game-1", LegendID: "capablanca", Movetext: movetext, ECO: models.MissingField()}
}

func fenAfter(t *testing.T, tokens ...string) string {
	t.Helper()
	e := rules.New()
	s := e.Start()
	for _, tok := range tokens {
		next, _, err := e.Apply(s, tok)
		require.NoError(t, err)
		s = next
	}
	return s.FEN()
}

func TestNewSession(t *testing.T) {
	sc := scoring.NewScorer(rules.New(), nil, 0)

	sess, err := sc.NewSession("s1", game("1. e4 e5 2. Nf3 1-0"), models.SideWhite)
	require.NoError(t, err)
	require.Len(t, sess.Steps, 2)
	assert.Equal(t, "e2e4", sess.Steps[0].Historical.UCI())
	assert.Equal(t, 1, sess.Steps[0].MoveNumber)
	assert.Equal(t, "g1f3", sess.Steps[1].Historical.UCI())
	assert.Equal(t, fenAfter(t, "e4", "e5"), sess.Steps[1].FEN)

	_, err = sc.NewSession("s2", game("1. e4 e5 *"), models.SideAbsent)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	_, err = sc.NewSession("s3", game("1. Ke2 *"), models.SideWhite)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestSubmit_OpeningScenarioWithoutOracle(t *testing.T) {
	sc := scoring.NewScorer(rules.New(), nil, 0)
	sess, err := sc.NewSession("s1", game("1. e4 e5 2. Nf3 1-0"), models.SideWhite)
	require.NoError(t, err)

	first, err := sess.Submit(context.Background(), "e4")
	require.NoError(t, err)
	assert.Equal(t, scoring.ScoreExact, first.Score)
	assert.Equal(t, []models.Tag{models.TagExactMatch}, first.Tags)

	second, err := sess.Submit(context.Background(), "b1c3")
	require.NoError(t, err)
	assert.Less(t, second.Score, scoring.ScoreExact)
	assert.True(t, second.HasTag(models.TagDeviation))
	assert.True(t, second.HasTag(models.TagWrongPiece))
	assert.True(t, second.HasTag(models.TagUnverified))
	assert.Equal(t, "g1f3", second.Historical)
	assert.Equal(t, 2, second.Ply)
	assert.True(t, sess.Done())

	_, err = sess.Submit(context.Background(), "e4")
	assert.True(t, errors.IsCode(err, errors.ErrCodeSessionComplete))
}

func TestSubmit_ExactMatchAtSecondPosition(t *testing.T) {
	sc := scoring.NewScorer(rules.New(), &mocks.MockOracle{}, 0)
	sess, err := sc.NewSession("s1", game("1. e4 e5 2. Nf3 1-0"), models.SideWhite)
	require.NoError(t, err)

	_, err = sess.Submit(context.Background(), "e2e4")
	require.NoError(t, err)
	res, err := sess.Submit(context.Background(), "g1f3")
	require.NoError(t, err)
	assert.Equal(t, scoring.ScoreExact, res.Score)
	assert.True(t, res.HasTag(models.TagExactMatch))
	assert.Empty(t, res.OracleBest)
}

func TestSubmit_ScoreOrdering(t *testing.T) {
	pos := fenAfter(t, "e4", "e5")
	o := &mocks.MockOracle{}
	o.On("BestMove", mock.Anything, pos, mock.Anything).Return(oracle.Evaluation{BestMove: "b1c3", CP: 40}, nil)
	o.On("BestMove", mock.Anything, fenAfter(t, "e4", "e5", "d4"), mock.Anything).Return(oracle.Evaluation{BestMove: "e5d4", CP: 20}, nil)
	o.On("BestMove", mock.Anything, fenAfter(t, "e4", "e5", "Qh5"), mock.Anything).Return(oracle.Evaluation{BestMove: "g8f6", CP: -260}, nil)

	sc := scoring.NewScorer(rules.New(), o, 12)
	score := func(guess string) models.GuessResult {
		sess, err := sc.NewSession("s-"+guess, game("1. e4 e5 2. Nf3 1-0"), models.SideWhite)
		require.NoError(t, err)
		_, err = sess.Submit(context.Background(), "e4")
		require.NoError(t, err)
		res, err := sess.Submit(context.Background(), guess)
		require.NoError(t, err)
		return res
	}

	exact := score("Nf3")
	best := score("Nc3")
	good := score("d4")
	bad := score("Qh5")

	assert.Greater(t, exact.Score, best.Score)
	assert.Greater(t, best.Score, good.Score)
	assert.Greater(t, good.Score, bad.Score)

	assert.Equal(t, scoring.ScoreOracleBest, best.Score)
	assert.Equal(t, []models.Tag{models.TagOracleBest, models.TagDeviation}, best.Tags)

	require.NotNil(t, good.CPLoss)
	assert.Equal(t, 20, *good.CPLoss)
	assert.Equal(t, scoring.ClassGood, good.Classification)
	assert.True(t, good.HasTag(models.TagReasonable))
	assert.Equal(t, "b1c3", good.OracleBest)

	require.NotNil(t, bad.CPLoss)
	assert.Equal(t, 300, *bad.CPLoss)
	assert.True(t, bad.HasTag(models.TagBlunder))
	assert.Equal(t, scoring.ScoreBlunder, bad.Score)
}

func TestSubmit_BlackLegendLoss(t *testing.T) {
	pos := fenAfter(t, "e4")
	o := &mocks.MockOracle{}
	o.On("BestMove", mock.Anything, pos, mock.Anything).Return(oracle.Evaluation{BestMove: "c7c5", CP: 30}, nil)
	o.On("BestMove", mock.Anything, fenAfter(t, "e4", "f6"), mock.Anything).Return(oracle.Evaluation{BestMove: "d2d4", CP: 150}, nil)

	sc := scoring.NewScorer(rules.New(), o, 0)
	sess, err := sc.NewSession("s1", game("1. e4 e5 2. Nf3 *"), models.SideBlack)
	require.NoError(t, err)

	res, err := sess.Submit(context.Background(), "f6")
	require.NoError(t, err)
	require.NotNil(t, res.CPLoss)
	assert.Equal(t, 120, *res.CPLoss)
	assert.Equal(t, scoring.ClassMistake, res.Classification)
	assert.True(t, res.HasTag(models.TagInferior))
	assert.Equal(t, scoring.ScoreMistake, res.Score)
}

func TestSubmit_MissTags(t *testing.T) {
	sc := scoring.NewScorer(rules.New(), nil, 0)

	t.Run("missed forcing", func(t *testing.T) {
		sess, err := sc.NewSession("s1", game("1. e4 d5 2. exd5 *"), models.SideWhite)
		require.NoError(t, err)
		_, err = sess.Submit(context.Background(), "e4")
		require.NoError(t, err)

		res, err := sess.Submit(context.Background(), "Nf3")
		require.NoError(t, err)
		assert.True(t, res.HasTag(models.TagMissedForcing))
		assert.True(t, res.HasTag(models.TagWrongPiece))
	})

	t.Run("passive alternative", func(t *testing.T) {
		sess, err := sc.NewSession("s2", game("1. e4 e5 2. Nf3 Nc6 3. Bc4 Nf6 4. d3 *"), models.SideWhite)
		require.NoError(t, err)
		for _, g := range []string{"e4", "Nf3", "Bc4"} {
			_, err = sess.Submit(context.Background(), g)
			require.NoError(t, err)
		}

		res, err := sess.Submit(context.Background(), "Bb3")
		require.NoError(t, err)
		assert.True(t, res.HasTag(models.TagPassiveAlternative))
		assert.False(t, res.HasTag(models.TagMissedForcing))
	})
}

func TestSubmit_InvalidGuessKeepsPosition(t *testing.T) {
	sc := scoring.NewScorer(rules.New(), nil, 0)
	sess, err := sc.NewSession("s1", game("1. e4 e5 2. Nf3 *"), models.SideWhite)
	require.NoError(t, err)

	for _, g := range []string{"e5", "zz", "", "Nf6"} {
		_, err = sess.Submit(context.Background(), g)
		assert.True(t, errors.IsCode(err, errors.ErrCodeValidation), g)
	}
	step, ok := sess.Current()
	require.True(t, ok)
	assert.Equal(t, "e2e4", step.Historical.UCI())

	res, err := sess.Submit(context.Background(), "E2-E4")
	require.NoError(t, err)
	assert.Equal(t, scoring.ScoreExact, res.Score)
}

func TestSubmit_OracleFailure(t *testing.T) {
	o := &mocks.MockOracle{}
	o.On("BestMove", mock.Anything, mock.Anything, mock.Anything).Return(oracle.Evaluation{}, stderrors.New("engine gone"))

	sc := scoring.NewScorer(rules.New(), o, 0)
	sess, err := sc.NewSession("s1", game("1. e4 e5 2. Nf3 *"), models.SideWhite)
	require.NoError(t, err)

	_, err = sess.Submit(context.Background(), "d4")
	assert.True(t, errors.IsCode(err, errors.ErrCodeOracleUnavailable))
	assert.Empty(t, sess.Results())
	assert.False(t, sess.Done())
}

func TestSubmit_OracleMoveFromAnotherPosition(t *testing.T) {
	o := &mocks.MockOracle{}
	// e7e5 belongs to the position after 1. e4, not the start position
	o.On("BestMove", mock.Anything, fenAfter(t), mock.Anything).Return(oracle.Evaluation{BestMove: "e7e5", CP: 30}, nil)

	sc := scoring.NewScorer(rules.New(), o, 0)
	sess, err := sc.NewSession("s1", game("1. e4 e5 2. Nf3 *"), models.SideWhite)
	require.NoError(t, err)

	_, err = sess.Submit(context.Background(), "d4")
	assert.True(t, errors.IsCode(err, errors.ErrCodeOracleUnavailable), "got %v", err)
	assert.Empty(t, sess.Results())
	o.AssertNumberOfCalls(t, "BestMove", 1)
}

func TestSubmit_MatingGuessLosesNothing(t *testing.T) {
	pos := fenAfter(t, "e4", "e5", "Bc4", "Nc6", "Qh5", "Nf6")
	o := &mocks.MockOracle{}
	o.On("BestMove", mock.Anything, pos, mock.Anything).Return(oracle.Evaluation{BestMove: "d2d3", CP: 50}, nil)
	o.On("BestMove", mock.Anything, fenAfter(t, "e4", "e5", "Bc4", "Nc6", "Qh5", "Nf6", "Qxf7#"), mock.Anything).
		Return(oracle.Evaluation{}, oracle.ErrNoLegalMove)

	sc := scoring.NewScorer(rules.New(), o, 0)
	sess, err := sc.NewSession("s1", game("1. e4 e5 2. Bc4 Nc6 3. Qh5 Nf6 4. d3 *"), models.SideWhite)
	require.NoError(t, err)
	for _, g := range []string{"e4", "Bc4", "Qh5"} {
		_, err = sess.Submit(context.Background(), g)
		require.NoError(t, err)
	}

	res, err := sess.Submit(context.Background(), "Qxf7#")
	require.NoError(t, err)
	require.NotNil(t, res.CPLoss)
	assert.Equal(t, 0, *res.CPLoss)
	assert.Equal(t, scoring.ScoreGood, res.Score)
	assert.True(t, res.HasTag(models.TagReasonable))
	o.AssertExpectations(t)
}

func TestSubmit_ConcurrentSubmissionIsSuperseded(t *testing.T) {
	pos := fenAfter(t)
	started := make(chan struct{})
	var once sync.Once
	o := &mocks.MockOracle{}
	o.On("BestMove", mock.Anything, pos, mock.Anything).Run(func(args mock.Arguments) {
		once.Do(func() { close(started) })
		<-args.Get(0).(context.Context).Done()
	}).Return(oracle.Evaluation{}, context.Canceled).Once()
	o.On("BestMove", mock.Anything, mock.Anything, mock.Anything).Return(oracle.Evaluation{BestMove: "d2d4", CP: 20}, nil)

	sc := scoring.NewScorer(rules.New(), o, 0)
	sess, err := sc.NewSession("s1", game("1. e4 e5 *"), models.SideWhite)
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		_, err := sess.Submit(context.Background(), "c4")
		errc <- err
	}()
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first submission never reached the oracle")
	}

	res, err := sess.Submit(context.Background(), "d4")
	require.NoError(t, err)
	assert.Equal(t, scoring.ScoreOracleBest, res.Score)

	stale := <-errc
	assert.True(t, errors.IsCode(stale, errors.ErrCodeSuperseded), "got %v", stale)
	assert.Len(t, sess.Results(), 1)
}

func TestSummary(t *testing.T) {
	sc := scoring.NewScorer(rules.New(), nil, 0)
	sess, err := sc.NewSession("s1", game("1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 4. Ba4 *"), models.SideWhite)
	require.NoError(t, err)

	for _, g := range []string{"e4", "Bc4", "Nc3", "Ba4"} {
		_, err := sess.Submit(context.Background(), g)
		require.NoError(t, err)
	}

	sum := sess.Summary()
	assert.Equal(t, "s1", sum.SessionID)
	assert.Equal(t, "capablanca", sum.LegendID)
	assert.Equal(t, "game-1", sum.GameID)
	assert.Equal(t, 2*scoring.ScoreExact+2*scoring.ScoreUnverified, sum.TotalScore)
	assert.Equal(t, 4*scoring.ScoreExact, sum.MaxScore)
	assert.Len(t, sum.Results, 4)
	assert.Equal(t, []models.Tag{models.TagWrongPiece}, sum.WeaknessTags)
	assert.False(t, sum.FinishedAt.IsZero())
}
