package simulation

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func newTestHub(t *testing.T) *PollHub {
	t.Helper()
	return NewPollHub(WithPollRand(rand.New(rand.NewSource(1))))
}

func TestPollHubSeeds(t *testing.T) {
	h := newTestHub(t)

	polls := h.Polls()
	testutil.AssertEqual(t, "poll count", len(polls), 4)

	for _, p := range polls {
		total := 0
		for _, o := range p.Options {
			total += o.Votes
		}
		if total < 5 || total > 20 {
			t.Errorf("poll %s seeded with %d votes, want 5-20", p.Id, total)
		}
		if p.EndsAt <= time.Now().UnixMilli() {
			t.Errorf("poll %s already closed", p.Id)
		}
	}
}

func TestPollHubVote(t *testing.T) {
	h := newTestHub(t)

	before := votesFor(t, h, "poll-featured", "opt-2")

	if err := h.Vote("poll-featured", "opt-2", "voter-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "votes", votesFor(t, h, "poll-featured", "opt-2"), before+1)
}

func TestPollHubRevoteMovesVote(t *testing.T) {
	h := newTestHub(t)

	opt1Before := votesFor(t, h, "poll-featured", "opt-1")
	opt2Before := votesFor(t, h, "poll-featured", "opt-2")

	if err := h.Vote("poll-featured", "opt-1", "voter-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.Vote("poll-featured", "opt-2", "voter-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "opt-1 votes", votesFor(t, h, "poll-featured", "opt-1"), opt1Before)
	testutil.AssertEqual(t, "opt-2 votes", votesFor(t, h, "poll-featured", "opt-2"), opt2Before+1)

	// Voting the same option again is a no-op.
	if err := h.Vote("poll-featured", "opt-2", "voter-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "opt-2 votes after repeat", votesFor(t, h, "poll-featured", "opt-2"), opt2Before+1)
}

func TestPollHubVoteErrors(t *testing.T) {
	h := newTestHub(t)

	err := h.Vote("no-such-poll", "opt-1", "voter-1")
	if !errors.Is(err, ErrPollNotFound) {
		t.Errorf("expected ErrPollNotFound, got %v", err)
	}

	err = h.Vote("poll-featured", "no-such-option", "voter-1")
	if !errors.Is(err, ErrOptionNotFound) {
		t.Errorf("expected ErrOptionNotFound, got %v", err)
	}
}

func TestPollHubClosedPoll(t *testing.T) {
	now := time.Now()
	h := NewPollHub(
		WithPollRand(rand.New(rand.NewSource(2))),
		WithPollNow(func() time.Time { return now }))

	// Jump past the poll window.
	now = now.Add(8 * 24 * time.Hour)

	err := h.Vote("poll-featured", "opt-1", "voter-1")
	if !errors.Is(err, ErrPollClosed) {
		t.Errorf("expected ErrPollClosed, got %v", err)
	}
}

func TestPollHubPollsReturnsCopy(t *testing.T) {
	h := newTestHub(t)

	polls := h.Polls()
	polls[0].Options[0].Votes += 1000

	testutil.AssertEqual(t, "votes unchanged",
		votesFor(t, h, polls[0].Id, polls[0].Options[0].Id),
		polls[0].Options[0].Votes-1000)
}

func votesFor(t *testing.T, h *PollHub, pollId, optionId string) int {
	t.Helper()
	for _, p := range h.Polls() {
		if p.Id != pollId {
			continue
		}
		for _, o := range p.Options {
			if o.Id == optionId {
				return o.Votes
			}
		}
	}
	t.Fatalf("option %s/%s not found", pollId, optionId)
	return 0
}
