package presence

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterGetRemove(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	now := time.Unix(1700000000, 0)

	p := r.Register("c1", Profile{Name: "Alice", Gender: "F", Region: "EU"}, now)
	req.Equal("c1", p.ConnectionID)
	req.Equal(now, p.JoinedAt)
	req.Equal(now, p.LastActiveAt)
	req.Equal(1, r.Len())

	got, ok := r.Get("c1")
	req.True(ok)
	req.Equal("Alice", got.Name)

	removed, ok := r.Remove("c1")
	req.True(ok)
	req.Equal("Alice", removed.Name)
	req.Equal(0, r.Len())

	_, ok = r.Remove("c1")
	req.False(ok, "second remove must report not present")

	_, ok = r.Get("c1")
	req.False(ok)
}

func TestRegistryRegisterOverwrites(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	r.Register("c1", Profile{Name: "Alice"}, time.Unix(1, 0))
	r.Register("c1", Profile{Name: "Alicia"}, time.Unix(2, 0))

	req.Equal(1, r.Len())
	got, _ := r.Get("c1")
	req.Equal("Alicia", got.Name)
}

func TestRegistryAllowsDuplicateNames(t *testing.T) {
	r := NewRegistry()
	r.Register("c1", Profile{Name: "Sam"}, time.Unix(1, 0))
	r.Register("c2", Profile{Name: "Sam"}, time.Unix(2, 0))

	require.Equal(t, 2, r.Len())
}

func TestRegistryUpdateNeverCreates(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	called := false
	req.False(r.Update("ghost", func(p *Participant) { called = true }))
	req.False(called)
	req.Equal(0, r.Len())

	r.Register("c1", Profile{Name: "Bob"}, time.Unix(1, 0))
	later := time.Unix(50, 0)
	req.True(r.Update("c1", func(p *Participant) {
		p.LastActiveAt = later
		p.ConnectionID = "hijack"
	}))

	got, ok := r.Get("c1")
	req.True(ok)
	req.Equal(later, got.LastActiveAt)
	req.Equal("c1", got.ConnectionID)
}

func TestRegistryListIsOrderedSnapshot(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	r.Register("b", Profile{Name: "Bob"}, time.Unix(20, 0))
	r.Register("a", Profile{Name: "Alice"}, time.Unix(10, 0))
	r.Register("c", Profile{Name: "Carol"}, time.Unix(30, 0))

	list := r.List()
	req.Len(list, 3)
	req.Equal([]string{"Alice", "Bob", "Carol"}, []string{list[0].Name, list[1].Name, list[2].Name})

	// mutating the snapshot must not leak into the registry
	list[0].Name = "Mallory"
	got, _ := r.Get("a")
	req.Equal("Alice", got.Name)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i)
			r.Register(id, Profile{Name: id}, time.Unix(int64(i), 0))
			_ = r.List()
			if i%2 == 0 {
				r.Remove(id)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, 25, r.Len())
}
