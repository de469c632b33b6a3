package runtime

import (
	"chat-hub/domain"
	"time"
)

// PresenceCoordinator turns connection counts into online/offline edges.
// Only the 0->1 and 1->0 crossings produce an event.
type PresenceCoordinator struct {
	counts map[domain.UserID]int
	now    func() time.Time
}

func NewPresenceCoordinator(now func() time.Time) *PresenceCoordinator {
	if now == nil {
		now = time.Now
	}
	return &PresenceCoordinator{counts: make(map[domain.UserID]int), now: now}
}

func (p *PresenceCoordinator) OnConnectionAdded(userID domain.UserID) (domain.PresenceEvent, bool) {
	p.counts[userID]++
	if p.counts[userID] != 1 {
		return domain.PresenceEvent{}, false
	}
	return domain.PresenceEvent{UserID: userID, Status: domain.StatusOnline, At: p.now().UTC()}, true
}

// OnConnectionRemoved never drives a count below zero: removing an
// unknown user is a no-op.
func (p *PresenceCoordinator) OnConnectionRemoved(userID domain.UserID) (domain.PresenceEvent, bool) {
	count, ok := p.counts[userID]
	if !ok {
		return domain.PresenceEvent{}, false
	}
	if count > 1 {
		p.counts[userID] = count - 1
		return domain.PresenceEvent{}, false
	}
	delete(p.counts, userID)
	return domain.PresenceEvent{UserID: userID, Status: domain.StatusOffline, At: p.now().UTC()}, true
}

func (p *PresenceCoordinator) IsOnline(userID domain.UserID) bool {
	return p.counts[userID] > 0
}
