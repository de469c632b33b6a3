package domain

import "time"

type PresenceStatus string

const (
	StatusOnline  PresenceStatus = "online"
	StatusOffline PresenceStatus = "offline"
)

// PresenceEvent is emitted on a 0->1 or 1->0 transition of a user's
// live connection count, never in between.
type PresenceEvent struct {
	UserID UserID
	Status PresenceStatus
	At     time.Time
}

func (p PresenceEvent) Online() bool {
	return p.Status == StatusOnline
}
