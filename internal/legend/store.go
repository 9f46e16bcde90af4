package legend

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Store holds the current snapshot per legend. Readers never block a rebuild; Put
// swaps the whole snapshot at once.
type Store struct {
	mu    sync.RWMutex
	slots map[string]*atomic.Pointer[Snapshot]
}

func NewStore() *Store {
	return &Store{slots: map[string]*atomic.Pointer[Snapshot]{}}
}

// Get returns the current snapshot for legendID.
func (s *Store) Get(legendID string) (*Snapshot, bool) {
	s.mu.RLock()
	slot, ok := s.slots[legendID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	snap := slot.Load()
	return snap, snap != nil
}

// Put replaces the snapshot for its legend and returns the previous one, if any.
func (s *Store) Put(snap *Snapshot) *Snapshot {
	id := snap.Legend.ID

	s.mu.RLock()
	slot, ok := s.slots[id]
	s.mu.RUnlock()
	if !ok {
		s.mu.Lock()
		if slot, ok = s.slots[id]; !ok {
			slot = &atomic.Pointer[Snapshot]{}
			s.slots[id] = slot
		}
		s.mu.Unlock()
	}
	return slot.Swap(snap)
}

// Legends returns the IDs with a snapshot, sorted.
func (s *Store) Legends() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.slots))
	for id, slot := range s.slots {
		if slot.Load() != nil {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
