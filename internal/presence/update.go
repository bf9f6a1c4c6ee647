package presence

import "github.com/punsta/punsta-world/internal/world"

// Update is the wire record one participant publishes for its presence.
// Left marks an explicit leave; everything else is a full state snapshot
// reconciled by last-write-wins on the receiver.
type Update struct {
	world.Snapshot
	Left bool `json:"left,omitempty"`
}

// Message is one chat line on a room's chat subject. The synchronizer's log
// keeps arrival order; consumers needing chronological order sort by
// Timestamp.
type Message struct {
	Id        string `json:"id"`
	FromId    string `json:"from_id,omitempty"`
	From      string `json:"from"`
	Text      string `json:"text"`
	Timestamp int64  `json:"ts"` // unix milliseconds
}
