package world

import (
	"sort"
	"sync"
	"time"

	"github.com/punsta/punsta-world/internal/storage"
)

// RoomState tracks the live actors of one room. All access goes through its
// methods to keep the actor list consistent across the local session, the
// bot simulator, and the inbound transport callback.
type RoomState struct {
	mu     sync.RWMutex
	id     storage.Identifier
	grid   *Grid
	actors map[string]*Actor
	now    func() time.Time
}

type RoomStateOpt func(*RoomState)

// WithRoomClock overrides the time source handed to peer actors the room
// creates, for tests.
func WithRoomClock(now func() time.Time) RoomStateOpt {
	return func(r *RoomState) {
		r.now = now
	}
}

func NewRoomState(id storage.Identifier, grid *Grid, opts ...RoomStateOpt) *RoomState {
	r := &RoomState{
		id:     id,
		grid:   grid,
		actors: make(map[string]*Actor),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *RoomState) Id() storage.Identifier {
	return r.id
}

func (r *RoomState) Grid() *Grid {
	return r.grid
}

// AddActor registers an actor in the room. At most one live actor per id.
func (r *RoomState) AddActor(a *Actor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actors[a.Id()]; exists {
		return ErrActorExists
	}
	r.actors[a.Id()] = a
	return nil
}

// RemoveActor drops an actor from the room and cancels its pending timers.
func (r *RoomState) RemoveActor(id string) error {
	r.mu.Lock()
	a, exists := r.actors[id]
	if !exists {
		r.mu.Unlock()
		return ErrActorNotFound
	}
	delete(r.actors, id)
	r.mu.Unlock()

	a.CancelTimers()
	return nil
}

// GetActor returns the actor with the given id, or nil.
func (r *RoomState) GetActor(id string) *Actor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.actors[id]
}

// Apply merges a remote presence update. A peer actor is created on its
// first observed update; afterwards last-write-wins applies. Returns whether
// the update changed any state.
func (r *RoomState) Apply(u Snapshot) bool {
	r.mu.Lock()
	a, exists := r.actors[u.Id]
	if !exists {
		a = NewActor(u.Id, u.Name, KindPeer, r.id, r.grid,
			WithColor(u.Color),
			WithClock(r.now),
		)
		// The sender stamped the record before we built the actor, so its
		// timestamp is behind our clock. Start the version at zero so the
		// creating record itself commits, flags included.
		a.lastUpdated = time.Time{}
		r.actors[u.Id] = a
	}
	r.mu.Unlock()

	applied := a.Apply(u.X, u.Y, u.Facing, u.Flags, time.UnixMilli(u.UpdatedAt))
	return applied || !exists
}

// Others returns snapshots of every actor except the given one, sorted by
// id for a stable render order.
func (r *RoomState) Others(selfId string) []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Snapshot, 0, len(r.actors))
	for id, a := range r.actors {
		if id == selfId {
			continue
		}
		out = append(out, a.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

// ForEachActor calls fn for each actor in the room.
func (r *RoomState) ForEachActor(fn func(*Actor)) {
	r.mu.RLock()
	actors := make([]*Actor, 0, len(r.actors))
	for _, a := range r.actors {
		actors = append(actors, a)
	}
	r.mu.RUnlock()

	for _, a := range actors {
		fn(a)
	}
}

// EvictStale removes peer actors with no inbound update for the given
// timeout and returns their ids. Staleness is receipt time, not the LWW
// version: a peer re-sending an unchanged snapshot stays live. Local and
// bot actors are owned by their own schedulers and never evicted here.
func (r *RoomState) EvictStale(timeout time.Duration, now time.Time) []string {
	r.mu.Lock()
	var evicted []*Actor
	for id, a := range r.actors {
		if a.Kind() != KindPeer {
			continue
		}
		if now.Sub(a.LastSeen()) > timeout {
			delete(r.actors, id)
			evicted = append(evicted, a)
		}
	}
	r.mu.Unlock()

	ids := make([]string, 0, len(evicted))
	for _, a := range evicted {
		a.CancelTimers()
		ids = append(ids, a.Id())
	}
	sort.Strings(ids)
	return ids
}

// Size returns the number of live actors in the room.
func (r *RoomState) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actors)
}
