package presence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/punsta/punsta-world/internal/bots"
	"github.com/punsta/punsta-world/internal/chat"
	"github.com/punsta/punsta-world/internal/messaging"
	"github.com/punsta/punsta-world/internal/storage"
	"github.com/punsta/punsta-world/internal/world"
)

// DefaultEvictAfter is how long a peer may stay silent before it is treated
// as having left the room.
const DefaultEvictAfter = 45 * time.Second

// messageHistoryLimit bounds the retained chat log. The gateway only ever
// serves a tail of it, so older lines are dropped rather than kept for the
// life of the session.
const messageHistoryLimit = 200

// Mode is the operating mode, fixed at session start.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// Transport is the opaque presence channel backing online mode. Delivery is
// at-least-once at best; the synchronizer tolerates duplicates and
// reordering by last-write-wins.
type Transport interface {
	Subscribe(subject string, handler func(data []byte)) (unsubscribe func(), err error)
	Publish(subject string, data []byte) error
}

// Synchronizer reconciles the local actor's mutations, inbound peer updates,
// and bot updates into one renderable peer list per room. With no transport
// configured it degrades to offline mode: the local actor keeps working and
// the peer list is driven only by the bot simulator.
type Synchronizer struct {
	mu sync.Mutex

	transport Transport
	sim       *bots.Simulator

	selfId    string
	selfName  string
	selfColor string
	startRoom string

	grids map[string]*world.Grid
	room  *world.RoomState
	self  *world.Actor

	unsubs   []func()
	messages []Message
	party    bool

	maxMessageLen int
	evictAfter    time.Duration
	now           func() time.Time
}

type SynchronizerOpt func(*Synchronizer)

// WithTransport enables online mode. Without it the session runs offline.
func WithTransport(t Transport) SynchronizerOpt {
	return func(s *Synchronizer) {
		s.transport = t
	}
}

// WithEvictAfter sets the peer staleness timeout.
func WithEvictAfter(d time.Duration) SynchronizerOpt {
	return func(s *Synchronizer) {
		s.evictAfter = d
	}
}

// WithMaxMessageLen sets the outbound chat length cap.
func WithMaxMessageLen(n int) SynchronizerOpt {
	return func(s *Synchronizer) {
		s.maxMessageLen = n
	}
}

// WithColor sets the local actor's avatar color.
func WithColor(color string) SynchronizerOpt {
	return func(s *Synchronizer) {
		s.selfColor = color
	}
}

// WithNow overrides the time source, for tests.
func WithNow(now func() time.Time) SynchronizerOpt {
	return func(s *Synchronizer) {
		s.now = now
	}
}

// NewSynchronizer compiles the room presets. The starting room is joined by
// Start, once the transport is up.
func NewSynchronizer(selfId, selfName, startRoom string, rooms map[string]*world.Room, sim *bots.Simulator, opts ...SynchronizerOpt) (*Synchronizer, error) {
	s := &Synchronizer{
		sim:           sim,
		selfId:        selfId,
		selfName:      selfName,
		startRoom:     startRoom,
		grids:         make(map[string]*world.Grid, len(rooms)),
		maxMessageLen: chat.DefaultMaxMessageLen,
		evictAfter:    DefaultEvictAfter,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	for id, room := range rooms {
		grid, err := room.Compile()
		if err != nil {
			return nil, fmt.Errorf("compiling room %q: %w", id, err)
		}
		s.grids[id] = grid
	}
	if _, ok := s.grids[startRoom]; !ok {
		return nil, fmt.Errorf("start room %q: %w", startRoom, world.ErrRoomNotFound)
	}

	return s, nil
}

// Start joins the starting room and leaves on shutdown. In online mode the
// transport may still be coming up when workers launch, so joining retries
// briefly before giving up.
func (s *Synchronizer) Start(ctx context.Context) error {
	var err error
	for attempt := 0; attempt < 20; attempt++ {
		err = s.JoinRoom(s.startRoom)
		if err == nil || errors.Is(err, world.ErrRoomNotFound) {
			break
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(500 * time.Millisecond):
		}
	}
	if err != nil {
		return fmt.Errorf("joining room %q: %w", s.startRoom, err)
	}

	<-ctx.Done()
	s.Leave()
	return nil
}

// SetSimulator attaches a bot simulator. The simulator takes the
// synchronizer as its message sink, so the two are wired after construction.
// Must be called before Start.
func (s *Synchronizer) SetSimulator(sim *bots.Simulator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sim = sim
}

// Mode reports whether the session is backed by a transport.
func (s *Synchronizer) Mode() Mode {
	if s.transport == nil {
		return ModeOffline
	}
	return ModeOnline
}

// Self returns the local actor's snapshot.
func (s *Synchronizer) Self() world.Snapshot {
	s.mu.Lock()
	self := s.self
	s.mu.Unlock()
	if self == nil {
		return world.Snapshot{}
	}
	return self.Snapshot()
}

// Room returns the current room id.
func (s *Synchronizer) Room() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.room == nil {
		return ""
	}
	return s.room.Id().String()
}

// JoinRoom moves the local actor to another room. The vacated room's pending
// timers are cancelled, its subscriptions dropped, and its bot cohort torn
// down; the new room gets a fresh cohort.
func (s *Synchronizer) JoinRoom(roomId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	grid, ok := s.grids[roomId]
	if !ok {
		return world.ErrRoomNotFound
	}

	s.leaveLocked()

	s.room = world.NewRoomState(storage.Identifier(roomId), grid, world.WithRoomClock(s.now))
	s.self = world.NewActor(s.selfId, s.selfName, world.KindLocal, s.room.Id(), grid,
		world.WithColor(s.selfColor))
	if err := s.room.AddActor(s.self); err != nil {
		return err
	}
	s.party = false

	if s.sim != nil {
		s.sim.Populate(s.room)
	}

	if s.transport != nil {
		unsubPresence, err := s.transport.Subscribe(messaging.PresenceSubject(roomId), s.handlePresence)
		if err != nil {
			return fmt.Errorf("subscribing to presence: %w", err)
		}
		s.unsubs = append(s.unsubs, unsubPresence)

		unsubChat, err := s.transport.Subscribe(messaging.ChatSubject(roomId), s.handleChat)
		if err != nil {
			return fmt.Errorf("subscribing to chat: %w", err)
		}
		s.unsubs = append(s.unsubs, unsubChat)
	}

	s.broadcastLocked()
	return nil
}

// Leave tears the session down: leave notification, subscriptions, timers,
// and the bot cohort.
func (s *Synchronizer) Leave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaveLocked()
}

// Others returns the reconciled peer list, never including the local actor.
func (s *Synchronizer) Others() []world.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.room == nil {
		return nil
	}
	return s.room.Others(s.selfId)
}

// Messages returns the chat log in arrival order.
func (s *Synchronizer) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// PostPosition applies a local movement step and broadcasts the result.
// Blocked steps still broadcast: the actor turned to face the wall.
func (s *Synchronizer) PostPosition(dx, dy int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.self == nil {
		return
	}
	s.self.Move(dx, dy)
	s.broadcastLocked()
}

// Dancing reports the local actor's dance flag.
func (s *Synchronizer) Dancing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.self == nil {
		return false
	}
	return s.self.Flag(world.FlagDancing)
}

// SetDance toggles the sticky dance flag. Dancing and sitting are
// independent.
func (s *Synchronizer) SetDance(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.self == nil {
		return
	}
	s.self.SetFlag(world.FlagDancing, on)
	s.broadcastLocked()
}

// Party reports the room's party-sync toggle.
func (s *Synchronizer) Party() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.party
}

// SetParty flips the room-scoped party-sync toggle and broadcasts it.
func (s *Synchronizer) SetParty(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.self == nil {
		return
	}
	s.party = on
	s.self.SetFlag(world.FlagParty, on)
	s.broadcastLocked()
}

// Sitting reports whether the local actor is seated.
func (s *Synchronizer) Sitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.self == nil {
		return false
	}
	return s.self.Flag(world.FlagSitting)
}

// SetSit sets the seated state directly (used to stand up, or by the render
// layer once a seat is reached).
func (s *Synchronizer) SetSit(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.self == nil {
		return
	}
	s.self.SetFlag(world.FlagSitting, on)
	s.broadcastLocked()
}

// RequestSit starts the sit-down transition; the actor may first have to
// walk to a seat, so this is an intent rather than an immediate state write.
func (s *Synchronizer) RequestSit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.self == nil {
		return
	}
	s.self.RequestSit()
	s.broadcastLocked()
}

// Wave raises the self-clearing wave flag.
func (s *Synchronizer) Wave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.self == nil {
		return
	}
	s.self.Pulse(world.FlagWaving, world.WaveDuration)
	s.broadcastLocked()
}

// Laugh raises the self-clearing laugh flag.
func (s *Synchronizer) Laugh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.self == nil {
		return
	}
	s.self.Pulse(world.FlagLaughing, world.LaughDuration)
	s.broadcastLocked()
}

// SendMessage validates and sends one chat line. Rejections are surfaced to
// the caller and mutate nothing.
func (s *Synchronizer) SendMessage(text string) error {
	if err := chat.ValidateMessage(text, s.maxMessageLen); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room == nil {
		return chat.NewRejectedError("not connected to a room")
	}

	msg := Message{
		Id:        uuid.NewString(),
		FromId:    s.selfId,
		From:      s.selfName,
		Text:      text,
		Timestamp: s.now().UnixMilli(),
	}
	s.appendMessageLocked(msg)

	if s.transport != nil {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshalling message: %w", err)
		}
		// Best effort; the transport owns retries, if any.
		if err := s.transport.Publish(messaging.ChatSubject(s.room.Id().String()), data); err != nil {
			slog.Warn("publishing chat message", "error", err)
		}
	}
	return nil
}

// BotMessage feeds a bot's chat line into the log, attributed to the bot.
// Satisfies bots.Sink.
func (s *Synchronizer) BotMessage(botName, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendMessageLocked(Message{
		Id:        uuid.NewString(),
		From:      botName,
		Text:      text,
		Timestamp: s.now().UnixMilli(),
	})
}

// Tick runs the periodic sweep: evict silent peers, expire lapsed sit
// requests, and heartbeat the local actor's presence.
func (s *Synchronizer) Tick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room == nil {
		return nil
	}

	now := s.now()
	if evicted := s.room.EvictStale(s.evictAfter, now); len(evicted) > 0 {
		slog.DebugContext(ctx, "evicted stale peers", "room", s.room.Id(), "peers", evicted)
	}

	s.self.TickSit(now)
	s.broadcastLocked()
	return nil
}

func (s *Synchronizer) handlePresence(data []byte) {
	var u Update
	if err := json.Unmarshal(data, &u); err != nil {
		slog.Warn("dropping malformed presence update", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room == nil {
		return
	}
	// The transport echoes our own updates back; never let self into others.
	if u.Id == s.selfId {
		return
	}
	if u.Room != s.room.Id().String() {
		return
	}

	if u.Left {
		_ = s.room.RemoveActor(u.Id)
		return
	}

	if !s.room.Apply(u.Snapshot) {
		slog.Debug("discarded stale presence update", "actor", u.Id)
		return
	}
	s.party = u.Flags.Party
}

func (s *Synchronizer) handleChat(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("dropping malformed chat message", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Our own messages were appended on send.
	if msg.FromId == s.selfId {
		return
	}
	s.appendMessageLocked(msg)
}

// appendMessageLocked appends in arrival order, dropping the oldest lines
// once the history limit is reached. Out-of-order delivery is not reordered
// here; the chat panel sorts by timestamp.
func (s *Synchronizer) appendMessageLocked(msg Message) {
	s.messages = append(s.messages, msg)
	if len(s.messages) > messageHistoryLimit {
		overflow := len(s.messages) - messageHistoryLimit
		s.messages = append(s.messages[:0:0], s.messages[overflow:]...)
	}
}

func (s *Synchronizer) leaveLocked() {
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil

	if s.sim != nil {
		s.sim.Teardown()
	}

	if s.self != nil {
		if s.transport != nil {
			data, err := json.Marshal(Update{Snapshot: s.self.Snapshot(), Left: true})
			if err == nil {
				_ = s.transport.Publish(messaging.PresenceSubject(s.room.Id().String()), data)
			}
		}
		s.self.CancelTimers()
	}

	s.room = nil
	s.self = nil
	s.messages = nil
}

// broadcastLocked publishes the local actor's current state. Fire and
// forget; peers reconcile by last-write-wins.
func (s *Synchronizer) broadcastLocked() {
	if s.transport == nil {
		return
	}

	data, err := json.Marshal(Update{Snapshot: s.self.Snapshot()})
	if err != nil {
		return
	}
	if err := s.transport.Publish(messaging.PresenceSubject(s.room.Id().String()), data); err != nil {
		slog.Warn("publishing presence update", "error", err)
	}
}
