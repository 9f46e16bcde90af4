package replay

import (
	"fmt"
	"strings"
	"sync"

	"github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
)

// Opening is an ECO classification.
type Opening struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

// classifyPlies bounds how much of a game is fed to the ECO book.
const classifyPlies = 30

var (
	ecoOnce sync.Once
	ecoBook *opening.BookECO
)

func eco() *opening.BookECO {
	ecoOnce.Do(func() { ecoBook = opening.NewBookECO() })
	return ecoBook
}

// Classify looks up the deepest ECO opening matching SAN tokens.
func Classify(sans []string) (Opening, bool) {
	if len(sans) > classifyPlies {
		sans = sans[:classifyPlies]
	}
	if len(sans) == 0 {
		return Opening{}, false
	}

	var sb strings.Builder
	for i, san := range sans {
		if i%2 == 0 {
			fmt.Fprintf(&sb, "%d. ", i/2+1)
		}
		sb.WriteString(san)
		sb.WriteByte(' ')
	}
	sb.WriteString("*")

	pgnOpt, err := chess.PGN(strings.NewReader(sb.String()))
	if err != nil {
		return Opening{}, false
	}
	game := chess.NewGame(pgnOpt)
	found := eco().Find(game.Moves())
	if found == nil {
		return Opening{}, false
	}
	return Opening{Code: found.Code(), Name: found.Title()}, true
}
