package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/punsta/punsta-world/internal/simulation"
)

// Provider interfaces keep the HTTP surface pluggable: the simulated
// generators satisfy them today, a real backend can later.

type CapacityProvider interface {
	Nodes() []simulation.Node
	Join(nodeId string) error
}

type PollProvider interface {
	Polls() []simulation.Poll
	Vote(pollId, optionId, voterId string) error
}

type PlayerCounter interface {
	Stats() simulation.GlobalStats
}

type joinRequest struct {
	NodeId string `json:"node_id"`
}

type voteRequest struct {
	PollId   string `json:"poll_id"`
	OptionId string `json:"option_id"`
	VoterId  string `json:"voter_id"`
}

func (g *Gateway) registerAPI(mux *http.ServeMux) {
	if g.capacity != nil {
		mux.HandleFunc("GET /api/servers", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, g.capacity.Nodes())
		})
		mux.HandleFunc("POST /api/servers/join", func(w http.ResponseWriter, r *http.Request) {
			var req joinRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "malformed request")
				return
			}
			switch err := g.capacity.Join(req.NodeId); {
			case errors.Is(err, simulation.ErrNodeNotFound):
				writeError(w, http.StatusNotFound, err.Error())
			case errors.Is(err, simulation.ErrServerFull):
				writeError(w, http.StatusConflict, err.Error())
			case err != nil:
				writeError(w, http.StatusInternalServerError, err.Error())
			default:
				writeJSON(w, http.StatusOK, map[string]string{"status": "joined"})
			}
		})
	}

	if g.polls != nil {
		mux.HandleFunc("GET /api/polls", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, g.polls.Polls())
		})
		mux.HandleFunc("POST /api/polls/vote", func(w http.ResponseWriter, r *http.Request) {
			var req voteRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "malformed request")
				return
			}
			switch err := g.polls.Vote(req.PollId, req.OptionId, req.VoterId); {
			case errors.Is(err, simulation.ErrPollNotFound), errors.Is(err, simulation.ErrOptionNotFound):
				writeError(w, http.StatusNotFound, err.Error())
			case errors.Is(err, simulation.ErrPollClosed):
				writeError(w, http.StatusConflict, err.Error())
			case err != nil:
				writeError(w, http.StatusInternalServerError, err.Error())
			default:
				writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
			}
		})
	}

	if g.players != nil {
		mux.HandleFunc("GET /api/players", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, g.players.Stats())
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, map[string]string{"error": reason})
}
