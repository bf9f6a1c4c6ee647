package simulation

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPollNotFound   = errors.New("poll not found")
	ErrOptionNotFound = errors.New("poll option not found")
	ErrPollClosed     = errors.New("poll is closed")
)

type PollOption struct {
	Id    string `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type Poll struct {
	Id       string       `json:"id"`
	Question string       `json:"question"`
	Options  []PollOption `json:"options"`
	EndsAt   int64        `json:"ends_at"` // unix milliseconds
}

// PollHub holds community polls with synthetic background voting to make
// them look active. Votes are keyed by voter so revoting moves the vote
// rather than stacking it.
type PollHub struct {
	mu     sync.Mutex
	rng    *rand.Rand
	polls  map[string]*Poll
	voters map[string]map[string]string // pollId -> voterId -> optionId

	lastSynthetic time.Time
	now           func() time.Time
}

type PollOpt func(*PollHub)

func WithPollRand(rng *rand.Rand) PollOpt {
	return func(h *PollHub) {
		h.rng = rng
	}
}

func WithPollNow(now func() time.Time) PollOpt {
	return func(h *PollHub) {
		h.now = now
	}
}

func NewPollHub(opts ...PollOpt) *PollHub {
	h := &PollHub{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		polls:  make(map[string]*Poll),
		voters: make(map[string]map[string]string),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(h)
	}

	week := 7 * 24 * time.Hour
	seeds := []*Poll{
		{
			Id:       "poll-featured",
			Question: "Which experience should we feature next week?",
			Options: []PollOption{
				{Id: "opt-1", Text: "Battle Arena Championship"},
				{Id: "opt-2", Text: "Creative Building World"},
				{Id: "opt-3", Text: "Pixel City Roleplay"},
				{Id: "opt-4", Text: "Mystery Mansion Investigation"},
			},
		},
		{
			Id:       "poll-category",
			Question: "What kind of experiences do you enjoy most?",
			Options: []PollOption{
				{Id: "opt-1", Text: "Adventure & Mystery"},
				{Id: "opt-2", Text: "Social & Roleplay"},
				{Id: "opt-3", Text: "Creative & Building"},
				{Id: "opt-4", Text: "Competitive & PvP"},
			},
		},
		{
			Id:       "poll-halloween",
			Question: "Should we run a special Halloween event?",
			Options: []PollOption{
				{Id: "opt-1", Text: "Yes! Haunted mansion adventure"},
				{Id: "opt-2", Text: "Yes! Zombie survival experience"},
				{Id: "opt-3", Text: "Yes! Halloween party social event"},
				{Id: "opt-4", Text: "No, focus on existing experiences"},
			},
		},
		{
			Id:       "poll-rating",
			Question: "How would you rate the platform so far?",
			Options: []PollOption{
				{Id: "opt-1", Text: "Excellent (5 stars)"},
				{Id: "opt-2", Text: "Good (4 stars)"},
				{Id: "opt-3", Text: "Average (3 stars)"},
				{Id: "opt-4", Text: "Needs improvement (2 stars)"},
				{Id: "opt-5", Text: "Poor (1 star)"},
			},
		},
	}

	for _, p := range seeds {
		p.EndsAt = h.now().Add(week).UnixMilli()
		h.polls[p.Id] = p
		h.voters[p.Id] = make(map[string]string)

		// Seed 5-20 synthetic votes so fresh polls look alive.
		for i := h.rng.Intn(16) + 5; i > 0; i-- {
			opt := &p.Options[h.rng.Intn(len(p.Options))]
			opt.Votes++
		}
	}

	return h
}

// Tick occasionally drops in a synthetic vote, roughly one every few
// seconds on average.
func (h *PollHub) Tick(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	if now.Sub(h.lastSynthetic) < 3*time.Second {
		return nil
	}
	h.lastSynthetic = now

	if h.rng.Float64() > 0.3 {
		return nil
	}

	ids := h.sortedIdsLocked()
	poll := h.polls[ids[h.rng.Intn(len(ids))]]
	if now.UnixMilli() >= poll.EndsAt {
		return nil
	}
	poll.Options[h.rng.Intn(len(poll.Options))].Votes++
	return nil
}

// Polls returns a stable-ordered copy of all polls.
func (h *PollHub) Polls() []Poll {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Poll, 0, len(h.polls))
	for _, id := range h.sortedIdsLocked() {
		p := h.polls[id]
		cp := *p
		cp.Options = make([]PollOption, len(p.Options))
		copy(cp.Options, p.Options)
		out = append(out, cp)
	}
	return out
}

// Vote records a voter's choice. Revoting moves the existing vote.
func (h *PollHub) Vote(pollId, optionId, voterId string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	poll, ok := h.polls[pollId]
	if !ok {
		return ErrPollNotFound
	}
	if h.now().UnixMilli() >= poll.EndsAt {
		return ErrPollClosed
	}

	var target *PollOption
	for i := range poll.Options {
		if poll.Options[i].Id == optionId {
			target = &poll.Options[i]
			break
		}
	}
	if target == nil {
		return ErrOptionNotFound
	}

	if voterId == "" {
		voterId = uuid.NewString()
	}
	if prev, voted := h.voters[pollId][voterId]; voted {
		if prev == optionId {
			return nil
		}
		for i := range poll.Options {
			if poll.Options[i].Id == prev && poll.Options[i].Votes > 0 {
				poll.Options[i].Votes--
			}
		}
	}

	target.Votes++
	h.voters[pollId][voterId] = optionId
	return nil
}

func (h *PollHub) sortedIdsLocked() []string {
	ids := make([]string, 0, len(h.polls))
	for id := range h.polls {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
