package legend_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/chesslegends/internal/identity"
	"github.com/vytor/chesslegends/internal/legend"
)

func TestStore_PutSwaps(t *testing.T) {
	s := legend.NewStore()
	_, ok := s.Get("tal")
	assert.False(t, ok)

	first := &legend.Snapshot{Legend: identity.Legend{ID: "tal"}}
	second := &legend.Snapshot{Legend: identity.Legend{ID: "tal"}}

	assert.Nil(t, s.Put(first))
	assert.Same(t, first, s.Put(second))

	got, ok := s.Get("tal")
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestStore_Legends(t *testing.T) {
	s := legend.NewStore()
	for _, id := range []string{"tal", "alekhine", "morphy"} {
		s.Put(&legend.Snapshot{Legend: identity.Legend{ID: id}})
	}
	assert.Equal(t, []string{"alekhine", "morphy", "tal"}, s.Legends())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := legend.NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Put(&legend.Snapshot{Legend: identity.Legend{ID: "fischer"}})
		}()
		go func() {
			defer wg.Done()
			if snap, ok := s.Get("fischer"); ok {
				assert.Equal(t, "fischer", snap.Legend.ID)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, []string{"fischer"}, s.Legends())
}
