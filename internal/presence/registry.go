// Package presence keeps the in-memory table of participants that have
// completed the join handshake on a live connection.
package presence

import (
	"sort"
	"sync"
	"time"
)

// Profile is the display profile a connection announces when joining.
type Profile struct {
	Name      string
	Gender    string
	Region    string
	AvatarRef string // opaque URL or inline data, may be empty
}

// Participant is one joined connection.
type Participant struct {
	ConnectionID string
	Profile
	JoinedAt     time.Time
	LastActiveAt time.Time
}

// Registry maps connection ids to participants.
// All methods are safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	participants map[string]*Participant
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		participants: make(map[string]*Participant),
	}
}

// Register inserts or overwrites the participant for connID.
// Display names are not required to be unique.
func (r *Registry) Register(connID string, profile Profile, at time.Time) Participant {
	p := &Participant{
		ConnectionID: connID,
		Profile:      profile,
		JoinedAt:     at,
		LastActiveAt: at,
	}

	r.mu.Lock()
	r.participants[connID] = p
	r.mu.Unlock()

	return *p
}

// Update applies fn to the participant for connID if it exists.
// It never creates an entry. Returns false when connID is not registered.
func (r *Registry) Update(connID string, fn func(p *Participant)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[connID]
	if !ok {
		return false
	}
	fn(p)
	// the key is the identity; mutators must not move the entry
	p.ConnectionID = connID
	return true
}

// Remove deletes and returns the participant for connID.
func (r *Registry) Remove(connID string) (Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[connID]
	if !ok {
		return Participant{}, false
	}
	delete(r.participants, connID)
	return *p, true
}

// Get returns a copy of the participant for connID.
func (r *Registry) Get(connID string) (Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.participants[connID]
	if !ok {
		return Participant{}, false
	}
	return *p, true
}

// List returns a snapshot of all participants ordered by join time.
func (r *Registry) List() []Participant {
	r.mu.RLock()
	out := make([]Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, *p)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].ConnectionID < out[j].ConnectionID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out
}

// Len returns the number of registered participants.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}
