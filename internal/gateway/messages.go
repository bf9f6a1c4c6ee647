package gateway

import (
	"encoding/json"

	"github.com/punsta/punsta-world/internal/presence"
	"github.com/punsta/punsta-world/internal/world"
)

// Wire envelopes between the browser client and the gateway.

type clientEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type serverEnvelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type chatPayload struct {
	Text string `json:"text"`
}

type stepPayload struct {
	Dx int `json:"dx"`
	Dy int `json:"dy"`
}

type roomPayload struct {
	Room string `json:"room"`
}

type rejectedPayload struct {
	Reason string `json:"reason"`
}

// snapshotPayload is the reconciled room state streamed to the client each
// frame interval: the local actor, the peer list, and the chat tail.
type snapshotPayload struct {
	Room     string             `json:"room"`
	Mode     presence.Mode      `json:"mode"`
	Party    bool               `json:"party"`
	Self     world.Snapshot     `json:"self"`
	Others   []world.Snapshot   `json:"others"`
	Messages []presence.Message `json:"messages"`
}
