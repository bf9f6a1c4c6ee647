package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/punsta/punsta-world/internal/chat"
	"github.com/punsta/punsta-world/internal/presence"
)

const (
	// snapshotInterval is the cadence room snapshots are streamed at.
	snapshotInterval = 250 * time.Millisecond

	// messageTail caps how much chat history each snapshot carries.
	messageTail = 50

	writeTimeout = 5 * time.Second
)

// Gateway serves the websocket boundary between the synchronizer and the
// browser client: snapshots out, movement and chat envelopes in. Rendering
// stays entirely client-side.
type Gateway struct {
	port uint16
	sync *presence.Synchronizer

	capacity CapacityProvider
	polls    PollProvider
	players  PlayerCounter

	upgrader websocket.Upgrader
}

type GatewayOpt func(*Gateway)

func WithCapacity(p CapacityProvider) GatewayOpt {
	return func(g *Gateway) {
		g.capacity = p
	}
}

func WithPolls(p PollProvider) GatewayOpt {
	return func(g *Gateway) {
		g.polls = p
	}
}

func WithPlayers(p PlayerCounter) GatewayOpt {
	return func(g *Gateway) {
		g.players = p
	}
}

func NewGateway(port uint16, sync *presence.Synchronizer, opts ...GatewayOpt) *Gateway {
	g := &Gateway{
		port: port,
		sync: sync,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The client is served from arbitrary dev origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

func (g *Gateway) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		g.handleWS(ctx, w, r)
	})
	g.registerAPI(mux)

	svr := &http.Server{
		Addr:    fmt.Sprintf(":%d", g.port),
		Handler: mux,
	}

	// done signals that Start is returning (either success or failure)
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = svr.Shutdown(shutdownCtx)
		case <-done:
		}
	}()

	slog.InfoContext(ctx, "gateway listening", "addr", svr.Addr)

	err := svr.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (g *Gateway) handleWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(ctx, "websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	// All writes go through one channel; gorilla connections do not allow
	// concurrent writers.
	send := make(chan serverEnvelope, 16)
	readDone := make(chan struct{})

	go g.readLoop(ctx, conn, send, readDone)

	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-readDone:
			return
		case env := <-send:
			if err := g.write(conn, env); err != nil {
				return
			}
		case <-ticker.C:
			if err := g.write(conn, g.snapshot()); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) readLoop(ctx context.Context, conn *websocket.Conn, send chan<- serverEnvelope, done chan<- struct{}) {
	defer close(done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var env clientEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			slog.WarnContext(ctx, "malformed client envelope", "error", err)
			continue
		}

		switch env.Type {
		case "chat":
			var p chatPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				continue
			}
			if err := chat.Dispatch(g.sync, p.Text); err != nil {
				var rejected *chat.RejectedError
				if errors.As(err, &rejected) {
					send <- serverEnvelope{Type: "rejected", Payload: rejectedPayload{Reason: rejected.Reason}}
				}
			}

		case "step":
			var p stepPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				continue
			}
			g.sync.PostPosition(clampStep(p.Dx), clampStep(p.Dy))

		case "room":
			var p roomPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				continue
			}
			if err := g.sync.JoinRoom(p.Room); err != nil {
				send <- serverEnvelope{Type: "rejected", Payload: rejectedPayload{Reason: fmt.Sprintf("unknown room %q", p.Room)}}
			}

		default:
			slog.DebugContext(ctx, "ignoring unknown envelope", "type", env.Type)
		}
	}
}

func (g *Gateway) snapshot() serverEnvelope {
	msgs := g.sync.Messages()
	if len(msgs) > messageTail {
		msgs = msgs[len(msgs)-messageTail:]
	}

	return serverEnvelope{
		Type: "snapshot",
		Payload: snapshotPayload{
			Room:     g.sync.Room(),
			Mode:     g.sync.Mode(),
			Party:    g.sync.Party(),
			Self:     g.sync.Self(),
			Others:   g.sync.Others(),
			Messages: msgs,
		},
	}
}

func (g *Gateway) write(conn *websocket.Conn, env serverEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(env)
}

// clampStep limits movement to one cell per envelope.
func clampStep(d int) int {
	if d > 1 {
		return 1
	}
	if d < -1 {
		return -1
	}
	return d
}
