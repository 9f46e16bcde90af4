// Package book aggregates early-game (position, move) pairs into a frequency-ranked
// opening book.
package book

import (
	"sort"

	"github.com/vytor/chesslegends/internal/models"
	"github.com/vytor/chesslegends/internal/rules"
)

// DefaultHorizon is the last full-move number counted when none is configured.
const DefaultHorizon = 18

type key struct {
	position string
	move     string
}

// Builder accumulates counts. It is not safe for concurrent use; callers feed it
// games in a fixed order so rebuilding yields identical results.
type Builder struct {
	horizon int
	counts  map[key]int
	order   []key
}

// NewBuilder returns a builder counting plies with move number <= horizon.
func NewBuilder(horizon int) *Builder {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	return &Builder{horizon: horizon, counts: map[key]int{}}
}

// Horizon returns the configured full-move horizon.
func (b *Builder) Horizon() int { return b.horizon }

// Add counts the plies of one game. Both colors count.
func (b *Builder) Add(plies []models.ReplayedPly) {
	for _, p := range plies {
		if p.MoveNumber > b.horizon {
			break
		}
		k := key{position: rules.PositionKey(p.FENBefore), move: p.Move.UCI()}
		if _, seen := b.counts[k]; !seen {
			b.order = append(b.order, k)
		}
		b.counts[k]++
	}
}

// Entries returns the entries by count descending, first-seen first on ties.
func (b *Builder) Entries() []models.OpeningBookEntry {
	out := make([]models.OpeningBookEntry, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, models.OpeningBookEntry{Position: k.position, Move: k.move, Count: b.counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Build freezes the current counts.
func (b *Builder) Build() *Book {
	return FromEntries(b.horizon, b.Entries())
}

// Book is a read-only opening book.
type Book struct {
	horizon    int
	entries    []models.OpeningBookEntry
	byPosition map[string][]int
}

// FromEntries wraps already ranked entries, e.g. ones restored from a snapshot.
func FromEntries(horizon int, entries []models.OpeningBookEntry) *Book {
	bk := &Book{
		horizon:    horizon,
		entries:    append([]models.OpeningBookEntry(nil), entries...),
		byPosition: map[string][]int{},
	}
	for i, e := range bk.entries {
		bk.byPosition[e.Position] = append(bk.byPosition[e.Position], i)
	}
	return bk
}

func (bk *Book) Horizon() int { return bk.horizon }

func (bk *Book) Len() int { return len(bk.entries) }

// Entries returns a copy of the ranked list.
func (bk *Book) Entries() []models.OpeningBookEntry {
	return append([]models.OpeningBookEntry(nil), bk.entries...)
}

// Top returns at most n entries.
func (bk *Book) Top(n int) []models.OpeningBookEntry {
	if n <= 0 || n > len(bk.entries) {
		n = len(bk.entries)
	}
	return append([]models.OpeningBookEntry(nil), bk.entries[:n]...)
}

// Candidates returns the ranked moves played from fen.
func (bk *Book) Candidates(fen string) []models.OpeningBookEntry {
	idx := bk.byPosition[rules.PositionKey(fen)]
	out := make([]models.OpeningBookEntry, 0, len(idx))
	for _, i := range idx {
		out = append(out, bk.entries[i])
	}
	return out
}
