// Package index maps board states to every continuation a legend played from them.
package index

import (
	"sort"

	"github.com/vytor/chesslegends/internal/models"
	"github.com/vytor/chesslegends/internal/rules"
)

// Builder appends continuations per position. Not safe for concurrent use.
type Builder struct {
	entries map[string][]models.Continuation
	seq     int
}

func NewBuilder() *Builder {
	return &Builder{entries: map[string][]models.Continuation{}}
}

// Add indexes the plies of rec played by side. Plies of the other color are ignored,
// as are all plies when side is absent. Returns the number of continuations added.
func (b *Builder) Add(rec models.GameRecord, plies []models.ReplayedPly, side models.Side) int {
	color, ok := side.Color()
	if !ok {
		return 0
	}
	year := rec.Year()
	added := 0
	for _, p := range plies {
		if p.SideToMove != color {
			continue
		}
		key := rules.PositionKey(p.FENBefore)
		b.entries[key] = append(b.entries[key], models.Continuation{
			Move:       p.Move.UCI(),
			GameID:     rec.ID,
			MoveNumber: p.MoveNumber,
			Color:      color,
			Year:       year,
			Seq:        b.seq,
		})
		b.seq++
		added++
	}
	return added
}

// Build snapshots the builder into an Index.
func (b *Builder) Build() *Index {
	idx := &Index{entries: make(map[string][]models.Continuation, len(b.entries))}
	for k, c := range b.entries {
		idx.entries[k] = append([]models.Continuation(nil), c...)
		idx.size += len(c)
	}
	return idx
}

// Index is immutable and safe for concurrent reads.
type Index struct {
	entries map[string][]models.Continuation
	size    int
}

// FromEntries rebuilds an index from a position to continuations map.
func FromEntries(entries map[string][]models.Continuation) *Index {
	b := &Builder{entries: entries}
	return b.Build()
}

// Lookup returns the continuations recorded for fen, in build order.
func (idx *Index) Lookup(fen string) []models.Continuation {
	c := idx.entries[rules.PositionKey(fen)]
	return append([]models.Continuation(nil), c...)
}

// Has reports whether fen is indexed.
func (idx *Index) Has(fen string) bool {
	return len(idx.entries[rules.PositionKey(fen)]) > 0
}

// Len returns the number of distinct positions.
func (idx *Index) Len() int { return len(idx.entries) }

// Size returns the number of continuations across all positions.
func (idx *Index) Size() int { return idx.size }

// Positions returns the indexed position keys in sorted order.
func (idx *Index) Positions() []string {
	out := make([]string, 0, len(idx.entries))
	for k := range idx.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Entries returns a copy of the whole mapping.
func (idx *Index) Entries() map[string][]models.Continuation {
	out := make(map[string][]models.Continuation, len(idx.entries))
	for k, c := range idx.entries {
		out[k] = append([]models.Continuation(nil), c...)
	}
	return out
}
