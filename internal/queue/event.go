// Package queue defines message payloads exchanged over the message
// broker and the background consumer that drains them.
package queue

// NoteActivityEvent is published best-effort when a note is created,
// updated or deleted. Downstream consumers append these to the activity
// log without querying the primary database. Share and link operations
// deliberately publish nothing: notifying recipients about shares is out
// of scope for this service.
type NoteActivityEvent struct {
	Action     string `json:"action"` // note.created | note.updated | note.deleted
	NoteID     uint64 `json:"note_id"`
	UserID     uint64 `json:"user_id"`
	OccurredAt string `json:"occurred_at"` // RFC 3339, UTC
}
