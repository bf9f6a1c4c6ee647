package bots

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/punsta/punsta-world/internal/world"
)

const (
	// relocateAttempts bounds reject-and-resample when picking a random
	// walkable cell, so a fully blocked grid cannot spin the scheduler.
	relocateAttempts = 50

	minCohort = 2
	maxCohort = 4
)

// fallbackCell is where a bot lands when no walkable cell is found within
// the sampling budget.
var fallbackCell = world.Cell{X: 3, Y: 3}

// Sink receives chat emitted by bots. It is the same outbound channel local
// chat uses; messages are attributed to the bot's name.
type Sink interface {
	BotMessage(botName, text string)
}

type bot struct {
	actor       *world.Actor
	personality Personality
	lastAction  time.Time
	greetAt     time.Time // zero when this bot stays silent on spawn
	greeted     bool
}

// Simulator drives a small cohort of autonomous actors per room, emulating
// remote peers in offline mode. Bots mutate their actors through the same
// operations as everyone else; there is no walkability bypass.
type Simulator struct {
	mu   sync.Mutex
	rng  *rand.Rand
	sink Sink
	room *world.RoomState
	bots []*bot
	now  func() time.Time
}

type SimulatorOpt func(*Simulator)

// WithRand overrides the random source, for deterministic tests.
func WithRand(rng *rand.Rand) SimulatorOpt {
	return func(s *Simulator) {
		s.rng = rng
	}
}

// WithNow overrides the time source, for tests.
func WithNow(now func() time.Time) SimulatorOpt {
	return func(s *Simulator) {
		s.now = now
	}
}

func NewSimulator(sink Sink, opts ...SimulatorOpt) *Simulator {
	s := &Simulator{
		sink: sink,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Populate tears down any existing cohort and spawns a fresh one into the
// given room. Bot identity never survives a room change.
func (s *Simulator) Populate(room *world.RoomState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked()
	s.room = room

	now := s.now()
	count := s.rng.Intn(maxCohort-minCohort+1) + minCohort
	for i := 0; i < count; i++ {
		b := s.spawnLocked(room, i, now)
		if b != nil {
			s.bots = append(s.bots, b)
		}
	}
}

// Teardown removes the cohort from its room and cancels bot timers.
func (s *Simulator) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
}

// Bots returns snapshots of the current cohort.
func (s *Simulator) Bots() []world.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]world.Snapshot, 0, len(s.bots))
	for _, b := range s.bots {
		out = append(out, b.actor.Snapshot())
	}
	return out
}

// Tick runs one scheduler pass. It is checked every second regardless of
// personality; the per-bot interval only gates whether a bot acts this pass.
// Chat is emitted after the lock is released: the sink may call back into
// code that populates or tears down this simulator.
func (s *Simulator) Tick(ctx context.Context) error {
	s.mu.Lock()
	var outbound []botLine

	now := s.now()
	for _, b := range s.bots {
		if !b.greeted && !b.greetAt.IsZero() && now.After(b.greetAt) {
			b.greeted = true
			outbound = append(outbound, s.phraseLocked(b))
		}

		if now.Sub(b.lastAction) <= b.personality.Interval() {
			continue
		}
		if line, ok := s.actLocked(b); ok {
			outbound = append(outbound, line)
		}
		b.lastAction = now
	}
	s.mu.Unlock()

	if s.sink != nil {
		for _, line := range outbound {
			s.sink.BotMessage(line.name, line.text)
		}
	}
	return nil
}

type botLine struct {
	name string
	text string
}

func (s *Simulator) spawnLocked(room *world.RoomState, seq int, now time.Time) *bot {
	grid := room.Grid()
	cell := s.randomWalkableLocked(grid)
	name := fmt.Sprintf("%s_%d", botNames[s.rng.Intn(len(botNames))], s.rng.Intn(999))

	actor := world.NewActor(
		fmt.Sprintf("bot-%s", uuid.NewString()),
		name,
		world.KindBot,
		room.Id(),
		grid,
		world.WithPosition(cell.X, cell.Y),
		world.WithFacing(s.randomFacingLocked()),
		world.WithColor(botColors[s.rng.Intn(len(botColors))]),
	)
	if err := room.AddActor(actor); err != nil {
		return nil
	}

	b := &bot{
		actor:       actor,
		personality: personalities[s.rng.Intn(len(personalities))],
		lastAction:  now,
	}

	// Half the cohort greets the room shortly after spawning, staggered so
	// they do not all talk at once.
	if s.rng.Intn(2) == 0 {
		stagger := time.Duration(seq)*2*time.Second + time.Duration(s.rng.Intn(3000))*time.Millisecond
		b.greetAt = now.Add(time.Second + stagger)
	}

	return b
}

func (s *Simulator) teardownLocked() {
	if s.room != nil {
		for _, b := range s.bots {
			_ = s.room.RemoveActor(b.actor.Id())
		}
	}
	s.bots = nil
	s.room = nil
}

func (s *Simulator) actLocked(b *bot) (botLine, bool) {
	switch s.rng.Intn(6) {
	case 0: // move
		cell := s.randomWalkableLocked(s.room.Grid())
		b.actor.Teleport(cell.X, cell.Y)
		b.actor.Face(s.randomFacingLocked())
	case 1: // dance
		b.actor.SetFlag(world.FlagDancing, !b.actor.Flag(world.FlagDancing))
	case 2: // sit
		b.actor.SetFlag(world.FlagSitting, !b.actor.Flag(world.FlagSitting))
	case 3: // wave
		if !b.actor.Flag(world.FlagWaving) {
			b.actor.Pulse(world.FlagWaving, world.WaveDuration)
		}
	case 4: // laugh
		if !b.actor.Flag(world.FlagLaughing) {
			b.actor.Pulse(world.FlagLaughing, world.LaughDuration)
		}
	case 5: // message
		return s.phraseLocked(b), true
	}
	return botLine{}, false
}

func (s *Simulator) phraseLocked(b *bot) botLine {
	set := phrases[b.personality]
	return botLine{name: b.actor.Name(), text: set[s.rng.Intn(len(set))]}
}

// randomWalkableLocked samples walkable cells away from the room edge,
// giving up after a fixed attempt budget.
func (s *Simulator) randomWalkableLocked(grid *world.Grid) world.Cell {
	cols, rows := grid.Cols(), grid.Rows()
	spanX, offX := cols-4, 2
	if spanX < 1 {
		spanX, offX = cols, 0
	}
	spanY, offY := rows-4, 2
	if spanY < 1 {
		spanY, offY = rows, 0
	}

	for attempts := 0; attempts < relocateAttempts; attempts++ {
		x := s.rng.Intn(spanX) + offX
		y := s.rng.Intn(spanY) + offY
		if grid.Walkable(x, y) {
			return world.Cell{X: x, Y: y}
		}
	}
	return fallbackCell
}

func (s *Simulator) randomFacingLocked() world.Facing {
	dirs := []world.Facing{world.FacingNorth, world.FacingSouth, world.FacingEast, world.FacingWest}
	return dirs[s.rng.Intn(len(dirs))]
}
