package services_test

import (
	"math/rand"
	"testing"

	"github.com/vytor/chesslegends/internal/identity"
	"github.com/vytor/chesslegends/internal/legend"
	"github.com/vytor/chesslegends/internal/recommend"
	"github.com/vytor/chesslegends/internal/replay"
	"github.com/vytor/chesslegends/internal/repository"
	"github.com/vytor/chesslegends/internal/rules"
	"github.com/vytor/chesslegends/internal/services"
)

const talGames = `[Event "Riga"]
[Date "1958.02.01"]
[White "Tal, Mikhail"]
[Black "Koblents, A"]
[Result "1-0"]

1. e4 c5 2. Nf3 d6 3. d4 cxd4 1-0

[Event "Moscow"]
[Date "1960.04.01"]
[White "Botvinnik, M"]
[Black "Tal, M"]
[Result "0-1"]

1. d4 Nf6 2. c4 g6 0-1

[Event "Other"]
[White "Smyslov, V"]
[Black "Keres, P"]
[Result "1/2-1/2"]

1. e4 e5 1/2-1/2
`

func newLegendService(t *testing.T, records repository.RecordRepository) (services.LegendService, *legend.Store) {
	t.Helper()
	engine := rules.New()
	store := legend.NewStore()
	pipeline := legend.NewPipeline(identity.DefaultRegistry(), replay.New(engine), 18, 2)
	rec := recommend.New(engine, nil, rand.New(rand.NewSource(1)))
	return services.NewLegendService(identity.DefaultRegistry(), pipeline, store, records, rec, 10), store
}
