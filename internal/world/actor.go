package world

import (
	"sync"
	"time"

	"github.com/punsta/punsta-world/internal/storage"
)

// Facing is the cardinal direction an actor is turned toward.
type Facing string

const (
	FacingNorth Facing = "N"
	FacingSouth Facing = "S"
	FacingEast  Facing = "E"
	FacingWest  Facing = "W"
)

// FacingOf returns the facing for a one-cell step. The second return is
// false for a zero step.
func FacingOf(dx, dy int) (Facing, bool) {
	switch {
	case dx > 0:
		return FacingEast, true
	case dx < 0:
		return FacingWest, true
	case dy > 0:
		return FacingSouth, true
	case dy < 0:
		return FacingNorth, true
	default:
		return "", false
	}
}

// Flag names an animation flag.
type Flag string

const (
	FlagDancing  Flag = "dancing"
	FlagSitting  Flag = "sitting"
	FlagWaving   Flag = "waving"
	FlagLaughing Flag = "laughing"
	FlagParty    Flag = "party"
)

// Self-clearing flag durations.
const (
	WaveDuration  = 2000 * time.Millisecond
	LaughDuration = 1800 * time.Millisecond
)

// seatSeekTimeout bounds how long an actor walks toward a seat before the
// sit request lapses back to standing.
const seatSeekTimeout = 10 * time.Second

// Flags holds an actor's animation flags. Dancing, sitting and party are
// sticky; waving and laughing are pulsed and clear themselves.
type Flags struct {
	Dancing  bool `json:"dancing,omitempty"`
	Sitting  bool `json:"sitting,omitempty"`
	Waving   bool `json:"waving,omitempty"`
	Laughing bool `json:"laughing,omitempty"`
	Party    bool `json:"party,omitempty"`
}

func (f *Flags) Get(flag Flag) bool {
	switch flag {
	case FlagDancing:
		return f.Dancing
	case FlagSitting:
		return f.Sitting
	case FlagWaving:
		return f.Waving
	case FlagLaughing:
		return f.Laughing
	case FlagParty:
		return f.Party
	}
	return false
}

func (f *Flags) set(flag Flag, on bool) {
	switch flag {
	case FlagDancing:
		f.Dancing = on
	case FlagSitting:
		f.Sitting = on
	case FlagWaving:
		f.Waving = on
	case FlagLaughing:
		f.Laughing = on
	case FlagParty:
		f.Party = on
	}
}

// Kind distinguishes who owns an actor's mutations.
type Kind int

const (
	KindLocal Kind = iota
	KindPeer
	KindBot
)

// SitPhase is the actor's position in the sit request state machine.
type SitPhase int

const (
	SitStanding SitPhase = iota
	SitSeeking
	SitSeated
)

// Snapshot is an actor's renderable state at a point in time.
type Snapshot struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	Room      string `json:"room"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Facing    Facing `json:"facing"`
	Flags     Flags  `json:"flags"`
	Color     string `json:"color,omitempty"`
	UpdatedAt int64  `json:"updated_at"` // unix milliseconds
}

// Actor is the canonical in-memory state of one participant. All mutation
// goes through its methods; position only ever commits to walkable cells.
type Actor struct {
	mu sync.Mutex

	id     string
	name   string
	color  string
	kind   Kind
	room   storage.Identifier
	grid   *Grid
	x, y   int
	facing Facing
	flags  Flags

	sitPhase     SitPhase
	seatTarget   Cell
	seatDeadline time.Time

	pulseSeq    map[Flag]uint64
	pulseTimers map[Flag]*time.Timer

	// lastUpdated is the last-write-wins version; lastSeen is the receipt
	// time of the last inbound update, stale duplicates included. Liveness
	// keys off lastSeen: a peer re-sending an unchanged snapshot is still
	// connected.
	lastUpdated time.Time
	lastSeen    time.Time
	now         func() time.Time
}

type ActorOpt func(*Actor)

// WithPosition sets the starting cell. Non-walkable cells are ignored and
// the default spawn is used instead.
func WithPosition(x, y int) ActorOpt {
	return func(a *Actor) {
		if a.grid.Walkable(x, y) {
			a.x, a.y = x, y
		}
	}
}

func WithFacing(f Facing) ActorOpt {
	return func(a *Actor) {
		a.facing = f
	}
}

func WithColor(color string) ActorOpt {
	return func(a *Actor) {
		a.color = color
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ActorOpt {
	return func(a *Actor) {
		a.now = now
	}
}

func NewActor(id, name string, kind Kind, room storage.Identifier, grid *Grid, opts ...ActorOpt) *Actor {
	a := &Actor{
		id:          id,
		name:        name,
		kind:        kind,
		room:        room,
		grid:        grid,
		facing:      FacingSouth,
		pulseSeq:    make(map[Flag]uint64),
		pulseTimers: make(map[Flag]*time.Timer),
		now:         time.Now,
	}
	if spawn, ok := grid.FirstWalkable(); ok {
		a.x, a.y = spawn.X, spawn.Y
	}

	for _, opt := range opts {
		opt(a)
	}

	a.lastUpdated = a.now()
	a.lastSeen = a.lastUpdated
	return a
}

func (a *Actor) Id() string {
	return a.id
}

func (a *Actor) Name() string {
	return a.name
}

func (a *Actor) Kind() Kind {
	return a.kind
}

func (a *Actor) Room() storage.Identifier {
	return a.room
}

// Position returns the committed cell.
func (a *Actor) Position() (int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.x, a.y
}

// Facing returns the current facing.
func (a *Actor) Facing() Facing {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.facing
}

// Flag returns the current value of one animation flag.
func (a *Actor) Flag(flag Flag) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.flags.Get(flag)
}

// LastUpdated returns the time of the last committed mutation.
func (a *Actor) LastUpdated() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastUpdated
}

// LastSeen returns when an update for this actor was last received,
// whether or not it committed.
func (a *Actor) LastSeen() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSeen
}

// Move attempts a one-cell step. The actor always turns to face the step
// direction, even when the target cell is blocked; position only changes
// when the target is walkable. Returns whether the position changed.
func (a *Actor) Move(dx, dy int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, ok := FacingOf(dx, dy)
	if !ok {
		return false
	}
	a.facing = f
	a.lastUpdated = a.now()

	nx, ny := a.x+dx, a.y+dy
	if !a.grid.Walkable(nx, ny) {
		return false
	}

	a.x, a.y = nx, ny
	a.resolveSitLocked()
	return true
}

// Face turns the actor without moving it.
func (a *Actor) Face(f Facing) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.facing = f
	a.lastUpdated = a.now()
}

// Teleport relocates the actor to an arbitrary walkable cell. Used by bots
// wandering the room; the walkability invariant still holds.
func (a *Actor) Teleport(x, y int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.grid.Walkable(x, y) {
		return false
	}
	a.x, a.y = x, y
	a.lastUpdated = a.now()
	a.resolveSitLocked()
	return true
}

// SetFlag sets a sticky flag. Dancing and sitting are independent; setting
// one does not clear the other.
func (a *Actor) SetFlag(flag Flag, on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.flags.set(flag, on)
	if flag == FlagSitting {
		if on {
			a.sitPhase = SitSeated
		} else {
			a.sitPhase = SitStanding
		}
	}
	a.lastUpdated = a.now()
}

// Pulse sets a self-clearing flag and schedules its reset. Re-pulsing before
// expiry replaces the pending reset, so the flag stays up for the full
// duration from the newest pulse.
func (a *Actor) Pulse(flag Flag, duration time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.flags.set(flag, true)
	a.lastUpdated = a.now()

	a.pulseSeq[flag]++
	seq := a.pulseSeq[flag]

	if t, ok := a.pulseTimers[flag]; ok {
		t.Stop()
	}
	a.pulseTimers[flag] = time.AfterFunc(duration, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		// A newer pulse owns the flag now; this reset is stale.
		if a.pulseSeq[flag] != seq {
			return
		}
		a.flags.set(flag, false)
		a.lastUpdated = a.now()
		delete(a.pulseTimers, flag)
	})
}

// RequestSit runs one step of the sit state machine: a seated actor stands,
// an actor already on a seat sits immediately, and anyone else starts
// seeking the nearest seat. Seeking resolves to seated once the actor's
// position reaches the target, or lapses after a timeout.
func (a *Actor) RequestSit() {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.sitPhase {
	case SitSeated:
		a.sitPhase = SitStanding
		a.flags.Sitting = false
	case SitSeeking:
		a.sitPhase = SitStanding
	default:
		if a.grid.IsSeat(a.x, a.y) {
			a.sitPhase = SitSeated
			a.flags.Sitting = true
			break
		}
		seat, ok := a.nearestSeatLocked()
		if !ok {
			// No seats in this room; sit where you stand.
			a.sitPhase = SitSeated
			a.flags.Sitting = true
			break
		}
		a.sitPhase = SitSeeking
		a.seatTarget = seat
		a.seatDeadline = a.now().Add(seatSeekTimeout)
	}
	a.lastUpdated = a.now()
}

// SitState returns the sit phase and, while seeking, the target seat.
func (a *Actor) SitState() (SitPhase, Cell) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sitPhase, a.seatTarget
}

// TickSit expires a lapsed seat seek. Called from the scheduler sweep.
func (a *Actor) TickSit(now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sitPhase == SitSeeking && now.After(a.seatDeadline) {
		a.sitPhase = SitStanding
	}
}

// Apply merges a remote update by last-write-wins. Updates not newer than
// the actor's current version are discarded, but still refresh liveness.
// A non-walkable position is rejected while the rest of the update still
// applies.
func (a *Actor) Apply(x, y int, facing Facing, flags Flags, ts time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.lastSeen = a.now()

	if !ts.After(a.lastUpdated) {
		return false
	}

	if a.grid.Walkable(x, y) {
		a.x, a.y = x, y
	}
	a.facing = facing
	a.flags = flags
	if flags.Sitting {
		a.sitPhase = SitSeated
	} else if a.sitPhase == SitSeated {
		a.sitPhase = SitStanding
	}
	a.lastUpdated = ts
	return true
}

// CancelTimers stops pending pulse resets. Must be called when the actor
// leaves its room so no timer mutates state for a room no longer displayed.
func (a *Actor) CancelTimers() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for flag, t := range a.pulseTimers {
		t.Stop()
		delete(a.pulseTimers, flag)
		a.pulseSeq[flag]++
	}
}

// Snapshot returns a copy of the actor's renderable state.
func (a *Actor) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	return Snapshot{
		Id:        a.id,
		Name:      a.name,
		Room:      a.room.String(),
		X:         a.x,
		Y:         a.y,
		Facing:    a.facing,
		Flags:     a.flags,
		Color:     a.color,
		UpdatedAt: a.lastUpdated.UnixMilli(),
	}
}

// resolveSitLocked confirms a pending sit when the actor reaches its target
// seat, and stands the actor up when it walks off a seat.
func (a *Actor) resolveSitLocked() {
	switch a.sitPhase {
	case SitSeeking:
		if a.x == a.seatTarget.X && a.y == a.seatTarget.Y {
			a.sitPhase = SitSeated
			a.flags.Sitting = true
		}
	case SitSeated:
		a.sitPhase = SitStanding
		a.flags.Sitting = false
	}
}

func (a *Actor) nearestSeatLocked() (Cell, bool) {
	best := Cell{}
	bestDist := -1
	for _, s := range a.grid.Seats() {
		d := abs(s.X-a.x) + abs(s.Y-a.y)
		if bestDist < 0 || d < bestDist {
			best = s
			bestDist = d
		}
	}
	return best, bestDist >= 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
