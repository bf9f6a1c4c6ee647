package world

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pixil98/go-testutil"
	"github.com/punsta/punsta-world/internal/storage"
)

func testRoomState() *RoomState {
	return NewRoomState(storage.Identifier("lobby"), testGrid())
}

func TestRoomStateAddRemove(t *testing.T) {
	r := testRoomState()
	a := NewActor("a1", "Ava", KindLocal, r.Id(), r.Grid())

	if err := r.AddActor(a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "size", r.Size(), 1)

	err := r.AddActor(a)
	testutil.AssertEqual(t, "duplicate add", err, ErrActorExists, cmpopts.EquateErrors())

	if err := r.RemoveActor("a1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "size after remove", r.Size(), 0)

	err = r.RemoveActor("a1")
	testutil.AssertEqual(t, "remove missing", err, ErrActorNotFound, cmpopts.EquateErrors())
}

func TestRoomStateApplyCreatesPeer(t *testing.T) {
	r := testRoomState()

	// The sender stamps the record before it reaches us, so the timestamp
	// is always a little in the past. The full snapshot must still commit.
	changed := r.Apply(Snapshot{
		Id: "p1", Name: "Pia", Room: "lobby",
		X: 3, Y: 2, Facing: FacingEast,
		Flags:     Flags{Dancing: true},
		UpdatedAt: time.Now().Add(-50 * time.Millisecond).UnixMilli(),
	})

	testutil.AssertEqual(t, "changed", changed, true)
	a := r.GetActor("p1")
	if a == nil {
		t.Fatal("expected peer actor to be created")
	}
	testutil.AssertEqual(t, "kind", a.Kind(), KindPeer)
	x, y := a.Position()
	testutil.AssertEqual(t, "x", x, 3)
	testutil.AssertEqual(t, "y", y, 2)
	testutil.AssertEqual(t, "facing", a.Facing(), FacingEast)
	testutil.AssertEqual(t, "dancing", a.Flag(FlagDancing), true)
}

func TestRoomStateApplyLastWriteWins(t *testing.T) {
	r := testRoomState()
	now := time.Now()

	r.Apply(Snapshot{Id: "p1", Name: "Pia", X: 3, Y: 2, Facing: FacingEast, UpdatedAt: now.UnixMilli()})

	// An older update arriving late must not roll the peer back.
	changed := r.Apply(Snapshot{Id: "p1", Name: "Pia", X: 1, Y: 1, Facing: FacingWest, UpdatedAt: now.Add(-time.Second).UnixMilli()})

	testutil.AssertEqual(t, "stale changed", changed, false)
	x, y := r.GetActor("p1").Position()
	testutil.AssertEqual(t, "x", x, 3)
	testutil.AssertEqual(t, "y", y, 2)

	// Replaying the same update is a no-op.
	changed = r.Apply(Snapshot{Id: "p1", Name: "Pia", X: 3, Y: 2, Facing: FacingEast, UpdatedAt: now.UnixMilli()})
	testutil.AssertEqual(t, "duplicate changed", changed, false)
}

func TestRoomStateOthersExcludesSelf(t *testing.T) {
	r := testRoomState()
	now := time.Now().UnixMilli()

	r.Apply(Snapshot{Id: "me", Name: "Me", X: 2, Y: 2, Facing: FacingSouth, UpdatedAt: now})
	r.Apply(Snapshot{Id: "zed", Name: "Zed", X: 3, Y: 2, Facing: FacingSouth, UpdatedAt: now})
	r.Apply(Snapshot{Id: "amy", Name: "Amy", X: 1, Y: 2, Facing: FacingSouth, UpdatedAt: now})

	others := r.Others("me")

	testutil.AssertEqual(t, "count", len(others), 2)
	testutil.AssertEqual(t, "first id", others[0].Id, "amy")
	testutil.AssertEqual(t, "second id", others[1].Id, "zed")
}

func TestRoomStateDuplicateUpdatesRefreshLiveness(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base
	r := NewRoomState(storage.Identifier("lobby"), testGrid(),
		WithRoomClock(func() time.Time { return now }))

	// One snapshot, re-sent unchanged every 10s. The version never moves,
	// but the peer is plainly still connected.
	u := Snapshot{Id: "p1", Name: "Pia", X: 3, Y: 2, Facing: FacingEast, UpdatedAt: base.UnixMilli()}
	r.Apply(u)

	for i := 1; i <= 6; i++ {
		now = base.Add(time.Duration(i) * 10 * time.Second)
		r.Apply(u)
		evicted := r.EvictStale(45*time.Second, now)
		testutil.AssertEqual(t, "evicted while heartbeating", len(evicted), 0)
	}

	// Once the heartbeats stop, the timeout applies from the last receipt.
	now = now.Add(50 * time.Second)
	evicted := r.EvictStale(45*time.Second, now)
	testutil.AssertEqual(t, "evicted after silence", len(evicted), 1)
	testutil.AssertEqual(t, "evicted id", evicted[0], "p1")
}

func TestRoomStateEvictStale(t *testing.T) {
	r := testRoomState()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return base }

	local := NewActor("me", "Me", KindLocal, r.Id(), r.Grid(), WithClock(clock))
	bot := NewActor("b1", "Bot", KindBot, r.Id(), r.Grid(), WithClock(clock))
	peer := NewActor("p1", "Pia", KindPeer, r.Id(), r.Grid(), WithClock(clock))
	fresh := NewActor("p2", "Ren", KindPeer, r.Id(), r.Grid(),
		WithClock(func() time.Time { return base.Add(40 * time.Second) }))

	for _, a := range []*Actor{local, bot, peer, fresh} {
		if err := r.AddActor(a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	evicted := r.EvictStale(45*time.Second, base.Add(50*time.Second))

	testutil.AssertEqual(t, "evicted count", len(evicted), 1)
	testutil.AssertEqual(t, "evicted id", evicted[0], "p1")
	testutil.AssertEqual(t, "size", r.Size(), 3)
	if r.GetActor("me") == nil || r.GetActor("b1") == nil {
		t.Error("local and bot actors must never be evicted")
	}
}
