package legend_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/chesslegends/internal/errors"
	"github.com/vytor/chesslegends/internal/identity"
	"github.com/vytor/chesslegends/internal/legend"
	"github.com/vytor/chesslegends/internal/models"
	"github.com/vytor/chesslegends/internal/replay"
	"github.com/vytor/chesslegends/internal/rules"
)

const capablancaGames = `[Event "Havana"]
[Date "1921.03.15"]
[White "Capablanca, Jose Raul"]
[Black "Lasker, Emanuel"]
[Result "1/2-1/2"]

1. d4 d5 2. Nf3 e6 3. c4 Nf6 1/2-1/2

[Event "New York"]
[Date "1918.10.23"]
[White "?"]
[Black "Marshall, Frank James"]

[White "Capablanca, J"]
1. e4 e5 2. Nf3 Nc6 1-0

[Event "Simul"]
[White "Marshall, Frank James"]
[Black "Capablanca"]
[Result "0-1"]

1. e4 e5 2. Nf3 Nf6 3. Nxe5 Kxe5 4. d4 0-1

[Event "Unrelated"]
[White "Lasker, Emanuel"]
[Black "Tarrasch, Siegbert"]
[Result "1-0"]

1. e4 e5 1-0

[Event "Broken"]
[White "Capablanca"]
[Black "Anon"]
`

func newPipeline(workers int) *legend.Pipeline {
	return legend.NewPipeline(identity.DefaultRegistry(), replay.New(rules.New()), 18, workers)
}

func TestIngest_Stats(t *testing.T) {
	snap, report, err := newPipeline(4).Ingest(context.Background(), "capablanca", capablancaGames)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Records)
	assert.Equal(t, "capablanca", snap.Legend.ID)

	st := snap.Stats
	assert.Equal(t, 5, st.Games)
	assert.Equal(t, 4, st.WithLegend)
	assert.Equal(t, 1, st.Absent)
	assert.Equal(t, 1, st.Truncated)
	assert.Equal(t, 1, st.EmptyMovetext)
	assert.Positive(t, st.RecoveredFields)
	// 6 + 4 + 5 plies before the illegal Kxe5
	assert.Equal(t, 15, st.PliesReplayed)
	// white: 3 + 2, black: 2
	assert.Equal(t, 7, st.PliesIndexed)
	assert.Equal(t, snap.Book.Len(), st.BookEntries)
	assert.Equal(t, snap.Index.Len(), st.Positions)
}

func TestIngest_RecoveredIdentity(t *testing.T) {
	snap, _, err := newPipeline(2).Ingest(context.Background(), "capablanca", capablancaGames)
	require.NoError(t, err)

	rec := snap.Records[1]
	assert.Equal(t, models.RecoveredField("Capablanca, J"), rec.White)
	_, side, ok := snap.Record(rec.ID)
	require.True(t, ok)
	assert.Equal(t, models.SideWhite, side)

	// 1. e4 from the recovered game is indexed for the legend
	conts := snap.Index.Lookup(rules.StartFEN)
	var moves []string
	for _, c := range conts {
		moves = append(moves, c.Move)
	}
	assert.Equal(t, []string{"d2d4", "e2e4"}, moves)
}

func TestIngest_PartialGameStillListed(t *testing.T) {
	snap, _, err := newPipeline(1).Ingest(context.Background(), "capablanca", capablancaGames)
	require.NoError(t, err)

	simul := snap.Records[2]
	_, side, ok := snap.Record(simul.ID)
	require.True(t, ok)
	assert.Equal(t, models.SideBlack, side)

	// black's Nf6 after 1. e4 e5 2. Nf3 is indexed, the later illegal Kxe5 is not
	e := rules.New()
	s := e.Start()
	for _, tok := range []string{"e4", "e5", "Nf3"} {
		s, _, err = e.Apply(s, tok)
		require.NoError(t, err)
	}
	conts := snap.Index.Lookup(s.FEN())
	require.Len(t, conts, 1)
	assert.Equal(t, "g8f6", conts[0].Move)
	assert.Equal(t, simul.ID, conts[0].GameID)

	for _, k := range snap.Index.Positions() {
		for _, c := range snap.Index.Lookup(k) {
			assert.NotEqual(t, "e8e5", c.Move)
		}
	}
}

func TestBuild_DeterministicAcrossWorkerCounts(t *testing.T) {
	a, _, err := newPipeline(1).Ingest(context.Background(), "capablanca", capablancaGames)
	require.NoError(t, err)
	b, _, err := newPipeline(8).Ingest(context.Background(), "capablanca", capablancaGames)
	require.NoError(t, err)

	assert.Equal(t, a.Book.Entries(), b.Book.Entries())
	assert.Equal(t, a.Index.Entries(), b.Index.Entries())
	assert.Equal(t, a.Stats, b.Stats)
}

func TestBuild_UnknownLegend(t *testing.T) {
	_, err := newPipeline(1).Build(context.Background(), "nobody", nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownLegend))
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := newPipeline(2).Ingest(ctx, "capablanca", capablancaGames)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_Empty(t *testing.T) {
	snap, err := newPipeline(2).Build(context.Background(), "tal", nil)
	require.NoError(t, err)
	assert.Zero(t, snap.Stats.Games)
	assert.Zero(t, snap.Book.Len())
	assert.Zero(t, snap.Index.Len())
}
