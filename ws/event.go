// Package ws is the realtime channel. Every authenticated connection joins a
// Hub keyed by user ID; services publish events through EventPublisher and
// the hub fans them out to all of that user's open connections.
//
// Wire format (both directions):
//
//	{"op": "diary_entry_create", "d": {...}, "seq": 42}
package ws

import "github.com/mysupport/mysupport/models"

// Event is one WebSocket frame. Seq is assigned by the hub on send.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → server.
const (
	OpHeartbeat = "heartbeat"
)

// Server → client.
const (
	OpReady            = "ready"
	OpHeartbeatAck     = "heartbeat_ack"
	OpDiaryEntryCreate = "diary_entry_create"
	OpProgressUpdate   = "progress_update"
)

// ReadyData is sent once a user's first connection is registered.
type ReadyData struct {
	User     models.User     `json:"user"`
	Progress models.Progress `json:"progress"`
}
