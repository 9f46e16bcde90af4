// Package identity decides whether a legend played in a game, and with which color.
package identity

import (
	"sort"
	"strings"
	"sync"

	"github.com/vytor/chesslegends/internal/models"
)

// Legend is a named historical player and the spellings its games use.
type Legend struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	Spellings []string `yaml:"spellings" json:"spellings"`
}

// Registry maps legend IDs to their known spellings. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	legends map[string]Legend
}

// NewRegistry returns a registry holding the given legends.
func NewRegistry(legends ...Legend) *Registry {
	r := &Registry{legends: map[string]Legend{}}
	for _, l := range legends {
		r.Register(l)
	}
	return r
}

// Register adds or replaces a legend. Spellings are stored lower-cased and de-duplicated;
// the display name always counts as a spelling.
func (r *Registry) Register(l Legend) {
	seen := map[string]bool{}
	var spellings []string
	for _, s := range append([]string{l.Name}, l.Spellings...) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		spellings = append(spellings, s)
	}
	l.ID = strings.ToLower(strings.TrimSpace(l.ID))
	l.Spellings = spellings

	r.mu.Lock()
	defer r.mu.Unlock()
	r.legends[l.ID] = l
}

// Lookup returns the legend registered under id.
func (r *Registry) Lookup(id string) (Legend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.legends[strings.ToLower(strings.TrimSpace(id))]
	return l, ok
}

// Legends returns every registered legend ordered by ID.
func (r *Registry) Legends() []Legend {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Legend, 0, len(r.legends))
	for _, l := range r.legends {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Matches reports whether name contains any spelling of the legend, ignoring case.
func (l Legend) Matches(name string) bool {
	name = strings.ToLower(name)
	if strings.TrimSpace(name) == "" {
		return false
	}
	for _, s := range l.Spellings {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

// Resolve returns the side the legend played. A record matching on both sides counts as
// White. Unknown legends are always absent.
func (r *Registry) Resolve(legendID, white, black string) models.Side {
	l, ok := r.Lookup(legendID)
	if !ok {
		return models.SideAbsent
	}
	switch {
	case l.Matches(white):
		return models.SideWhite
	case l.Matches(black):
		return models.SideBlack
	default:
		return models.SideAbsent
	}
}

// ResolveRecord applies Resolve to a record's player fields.
func (r *Registry) ResolveRecord(rec models.GameRecord) models.Side {
	return r.Resolve(rec.LegendID, rec.White.Value, rec.Black.Value)
}
