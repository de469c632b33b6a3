package runtime

import (
	"chat-hub/domain"
	"sort"

	"github.com/samber/lo"
)

// Tracker keeps room membership per connection, with a reverse index
// so that a closing connection leaves every room in one call.
// Owned by the Hub goroutine.
type Tracker struct {
	rooms       map[domain.RoomID]Set[domain.ConnectionID]
	memberships map[domain.ConnectionID]Set[domain.RoomID]
}

func NewTracker() *Tracker {
	return &Tracker{
		rooms:       make(map[domain.RoomID]Set[domain.ConnectionID]),
		memberships: make(map[domain.ConnectionID]Set[domain.RoomID]),
	}
}

// Join reports whether the connection was not already subscribed.
func (t *Tracker) Join(roomID domain.RoomID, connID domain.ConnectionID) bool {
	if t.IsSubscribed(connID, roomID) {
		return false
	}
	if _, ok := t.rooms[roomID]; !ok {
		t.rooms[roomID] = make(Set[domain.ConnectionID])
	}
	t.rooms[roomID][connID] = struct{}{}

	if _, ok := t.memberships[connID]; !ok {
		t.memberships[connID] = make(Set[domain.RoomID])
	}
	t.memberships[connID][roomID] = struct{}{}
	return true
}

// Leave reports whether the connection was subscribed.
func (t *Tracker) Leave(roomID domain.RoomID, connID domain.ConnectionID) bool {
	if !t.IsSubscribed(connID, roomID) {
		return false
	}
	t.unlink(roomID, connID)
	if rooms := t.memberships[connID]; len(rooms) == 0 {
		delete(t.memberships, connID)
	}
	return true
}

// LeaveAll removes the connection from every room it joined and returns them.
func (t *Tracker) LeaveAll(connID domain.ConnectionID) []domain.RoomID {
	joined := lo.Keys(t.memberships[connID])
	for _, roomID := range joined {
		t.unlink(roomID, connID)
	}
	delete(t.memberships, connID)
	sort.Slice(joined, func(i, j int) bool { return joined[i] < joined[j] })
	return joined
}

func (t *Tracker) Subscribers(roomID domain.RoomID) []domain.ConnectionID {
	members := lo.Keys(t.rooms[roomID])
	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
	return members
}

func (t *Tracker) IsSubscribed(connID domain.ConnectionID, roomID domain.RoomID) bool {
	_, ok := t.memberships[connID][roomID]
	return ok
}

func (t *Tracker) RoomCount() int {
	return len(t.rooms)
}

func (t *Tracker) unlink(roomID domain.RoomID, connID domain.ConnectionID) {
	delete(t.memberships[connID], roomID)
	if members, ok := t.rooms[roomID]; ok {
		delete(members, connID)
		// If no one is left in the room, remove the room entry entirely
		if len(members) == 0 {
			delete(t.rooms, roomID)
		}
	}
}
