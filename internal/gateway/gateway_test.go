package gateway

import (
	"fmt"
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/punsta/punsta-world/internal/presence"
)

func TestClampStep(t *testing.T) {
	tests := map[string]struct {
		in  int
		exp int
	}{
		"zero":         {0, 0},
		"one":          {1, 1},
		"negative one": {-1, -1},
		"too far":      {5, 1},
		"too far back": {-5, -1},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "clamped", clampStep(tc.in), tc.exp)
		})
	}
}

func TestSnapshotPayload(t *testing.T) {
	sync := newTestSync(t)
	if err := sync.JoinRoom("lobby"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g := NewGateway(0, sync)

	env := g.snapshot()
	testutil.AssertEqual(t, "type", env.Type, "snapshot")

	payload, ok := env.Payload.(snapshotPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", env.Payload)
	}
	testutil.AssertEqual(t, "room", payload.Room, "lobby")
	testutil.AssertEqual(t, "mode", payload.Mode, presence.ModeOffline)
	testutil.AssertEqual(t, "self id", payload.Self.Id, "me")
	testutil.AssertEqual(t, "others", len(payload.Others), 0)
}

func TestSnapshotMessageTail(t *testing.T) {
	sync := newTestSync(t)
	if err := sync.JoinRoom("lobby"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g := NewGateway(0, sync)

	for i := 0; i < messageTail+20; i++ {
		sync.BotMessage("Luna_Star", fmt.Sprintf("line %d", i))
	}

	payload := g.snapshot().Payload.(snapshotPayload)
	testutil.AssertEqual(t, "tail length", len(payload.Messages), messageTail)
	testutil.AssertEqual(t, "oldest kept", payload.Messages[0].Text, "line 20")
	testutil.AssertEqual(t, "newest", payload.Messages[len(payload.Messages)-1].Text,
		fmt.Sprintf("line %d", messageTail+19))
}
