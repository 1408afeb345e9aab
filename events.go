/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

// Events are the only traffic on the push channel. They exist on the wire
// and nowhere else: nothing is persisted, nothing is replayed, and a viewer
// that connects late starts from a snapshot fetch instead.
type EventType string

const (
	// EventSignupAdded carries the new participant.
	EventSignupAdded EventType = "signup_added"

	// EventSignupRemoved carries only the removed participant's id.
	EventSignupRemoved EventType = "signup_removed"

	// EventTeamsChanged carries no payload. A split can move every
	// participant at once, so viewers refetch instead of patching. A manual
	// override reuses the same event; viewers cannot tell the two apart.
	EventTeamsChanged EventType = "teams_changed"

	// EventSessionReset carries no payload and invalidates everything.
	EventSessionReset EventType = "session_reset"
)

type Event struct {
	Type        EventType    `json:"type"`
	Participant *Participant `json:"participant,omitempty"`
	ID          int64        `json:"id,omitempty"`
}

// invalidates reports whether the event forces a full snapshot refetch
// rather than an incremental patch to the viewer's projection.
func (e Event) invalidates() bool {
	switch e.Type {
	case EventSignupAdded:
		return e.Participant == nil
	case EventSignupRemoved:
		return e.ID == 0
	default:
		// teams_changed, session_reset, and anything this viewer doesn't
		// understand: the snapshot is the only way to catch up.
		return true
	}
}
