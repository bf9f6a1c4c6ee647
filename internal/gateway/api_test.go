package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/punsta/punsta-world/internal/presence"
	"github.com/punsta/punsta-world/internal/simulation"
	"github.com/punsta/punsta-world/internal/world"
)

type fakeCapacity struct {
	nodes   []simulation.Node
	joinErr error
	joined  []string
}

func (f *fakeCapacity) Nodes() []simulation.Node { return f.nodes }
func (f *fakeCapacity) Join(nodeId string) error {
	f.joined = append(f.joined, nodeId)
	return f.joinErr
}

type fakePolls struct {
	polls   []simulation.Poll
	voteErr error
	votes   []string
}

func (f *fakePolls) Polls() []simulation.Poll { return f.polls }
func (f *fakePolls) Vote(pollId, optionId, voterId string) error {
	f.votes = append(f.votes, fmt.Sprintf("%s/%s/%s", pollId, optionId, voterId))
	return f.voteErr
}

type fakePlayers struct {
	stats simulation.GlobalStats
}

func (f *fakePlayers) Stats() simulation.GlobalStats { return f.stats }

func newTestSync(t *testing.T) *presence.Synchronizer {
	t.Helper()
	rooms := map[string]*world.Room{
		"lobby": {
			Name: "Lobby",
			Tiles: []string{
				"#####",
				"#...#",
				"#####",
			},
		},
	}
	s, err := presence.NewSynchronizer("me", "Me", "lobby", rooms, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func newTestMux(t *testing.T, opts ...GatewayOpt) *http.ServeMux {
	t.Helper()
	g := NewGateway(0, newTestSync(t), opts...)
	mux := http.NewServeMux()
	g.registerAPI(mux)
	return mux
}

func TestServersEndpoint(t *testing.T) {
	capacity := &fakeCapacity{nodes: []simulation.Node{
		{Id: "us-east-std-1", Region: "US East", Tier: "standard", MaxPlayers: 1000, Load: 512, Status: "online"},
	}}
	mux := newTestMux(t, WithCapacity(capacity))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/servers", nil))

	testutil.AssertEqual(t, "status", rec.Code, http.StatusOK)
	var nodes []simulation.Node
	if err := json.Unmarshal(rec.Body.Bytes(), &nodes); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	testutil.AssertEqual(t, "node count", len(nodes), 1)
	testutil.AssertEqual(t, "node id", nodes[0].Id, "us-east-std-1")
}

func TestServersJoinEndpoint(t *testing.T) {
	tests := map[string]struct {
		joinErr   error
		expStatus int
	}{
		"joined":    {expStatus: http.StatusOK},
		"full":      {joinErr: simulation.ErrServerFull, expStatus: http.StatusConflict},
		"not found": {joinErr: simulation.ErrNodeNotFound, expStatus: http.StatusNotFound},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			capacity := &fakeCapacity{joinErr: tc.joinErr}
			mux := newTestMux(t, WithCapacity(capacity))

			body, _ := json.Marshal(joinRequest{NodeId: "us-east-std-1"})
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/servers/join", bytes.NewReader(body)))

			testutil.AssertEqual(t, "status", rec.Code, tc.expStatus)
			testutil.AssertEqual(t, "join count", len(capacity.joined), 1)
			testutil.AssertEqual(t, "joined node", capacity.joined[0], "us-east-std-1")
		})
	}
}

func TestServersJoinMalformedBody(t *testing.T) {
	mux := newTestMux(t, WithCapacity(&fakeCapacity{}))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/servers/join", bytes.NewReader([]byte("{not json"))))

	testutil.AssertEqual(t, "status", rec.Code, http.StatusBadRequest)
}

func TestPollsEndpoints(t *testing.T) {
	polls := &fakePolls{polls: []simulation.Poll{
		{Id: "poll-1", Question: "Q?", Options: []simulation.PollOption{{Id: "opt-1", Text: "A"}}},
	}}
	mux := newTestMux(t, WithPolls(polls))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/polls", nil))
	testutil.AssertEqual(t, "status", rec.Code, http.StatusOK)

	body, _ := json.Marshal(voteRequest{PollId: "poll-1", OptionId: "opt-1", VoterId: "v1"})
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/polls/vote", bytes.NewReader(body)))
	testutil.AssertEqual(t, "vote status", rec.Code, http.StatusOK)
	testutil.AssertEqual(t, "vote recorded", polls.votes[0], "poll-1/opt-1/v1")
}

func TestPollsVoteErrors(t *testing.T) {
	tests := map[string]struct {
		voteErr   error
		expStatus int
	}{
		"poll missing":   {voteErr: simulation.ErrPollNotFound, expStatus: http.StatusNotFound},
		"option missing": {voteErr: simulation.ErrOptionNotFound, expStatus: http.StatusNotFound},
		"closed":         {voteErr: simulation.ErrPollClosed, expStatus: http.StatusConflict},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			mux := newTestMux(t, WithPolls(&fakePolls{voteErr: tc.voteErr}))

			body, _ := json.Marshal(voteRequest{PollId: "p", OptionId: "o"})
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/polls/vote", bytes.NewReader(body)))

			testutil.AssertEqual(t, "status", rec.Code, tc.expStatus)
		})
	}
}

func TestPlayersEndpoint(t *testing.T) {
	players := &fakePlayers{stats: simulation.GlobalStats{TotalOnline: 1234, Trend: "up"}}
	mux := newTestMux(t, WithPlayers(players))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/players", nil))

	testutil.AssertEqual(t, "status", rec.Code, http.StatusOK)
	var stats simulation.GlobalStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	testutil.AssertEqual(t, "total", stats.TotalOnline, 1234)
	testutil.AssertEqual(t, "trend", stats.Trend, "up")
}

func TestUnconfiguredProvidersNotRegistered(t *testing.T) {
	mux := newTestMux(t)

	for _, path := range []string{"/api/servers", "/api/polls", "/api/players"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		testutil.AssertEqual(t, path, rec.Code, http.StatusNotFound)
	}
}
