// Package queue defines message payloads exchanged over the message broker.
package queue

// ChangesQueue is the durable queue carrying ChangeEvents.
const ChangesQueue = "rental.changes"

// Change actions.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionLinked   = "linked"
	ActionUnlinked = "unlinked"
)

// ChangeEvent is published after an entity is written. ParentID carries the
// owning entity for nested resources (the city of a new place, the place of
// a link).
type ChangeEvent struct {
	Action   string `json:"action"`
	Kind     string `json:"kind"`
	ID       string `json:"id"`
	ParentID string `json:"parent_id,omitempty"`
	At       string `json:"at"`
}
