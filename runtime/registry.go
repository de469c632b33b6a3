package runtime

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/errors"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
)

type Set[T comparable] map[T]struct{}

type registeredConnection struct {
	handle domain.ConnectionHandle
	sink   contract.EventSink
}

type userPresenceEntry struct {
	connections Set[domain.ConnectionID]
	since       time.Time
}

// Registry maps every user to the set of its live connections.
// It is owned by the Hub goroutine and does no locking of its own.
type Registry struct {
	connections map[domain.ConnectionID]registeredConnection // map connection -> Sink
	users       map[domain.UserID]*userPresenceEntry          // map user -> connections
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[domain.ConnectionID]registeredConnection),
		users:       make(map[domain.UserID]*userPresenceEntry),
	}
}

// Register adds a connection to its user's set.
// Registering the same handle twice is a programming error and leaves the registry untouched.
func (r *Registry) Register(handle domain.ConnectionHandle, sink contract.EventSink) error {
	if _, exists := r.connections[handle.ID]; exists {
		return fmt.Errorf("%w: %s", errors.ErrDuplicateConnection, handle.ID)
	}
	if sink == nil {
		return fmt.Errorf("%w: nil sink for %s", errors.ErrInternalInvariant, handle.ID)
	}
	r.connections[handle.ID] = registeredConnection{handle: handle, sink: sink}

	entry, ok := r.users[handle.UserID]
	if !ok {
		entry = &userPresenceEntry{connections: make(Set[domain.ConnectionID]), since: handle.CreatedAt}
		r.users[handle.UserID] = entry
	}
	entry.connections[handle.ID] = struct{}{}
	return nil
}

// Deregister removes a connection and reports whether its user has no
// connection left. Unknown connections are ignored and report false.
func (r *Registry) Deregister(userID domain.UserID, connID domain.ConnectionID) bool {
	conn, ok := r.connections[connID]
	if !ok || conn.handle.UserID != userID {
		return false
	}
	delete(r.connections, connID)

	entry, ok := r.users[userID]
	if !ok {
		return false
	}
	delete(entry.connections, connID)

	// The entry is removed, not zeroed: a known user is an online user
	if len(entry.connections) == 0 {
		delete(r.users, userID)
		return true
	}
	return false
}

func (r *Registry) Has(connID domain.ConnectionID) bool {
	_, ok := r.connections[connID]
	return ok
}

func (r *Registry) Sink(connID domain.ConnectionID) (contract.EventSink, bool) {
	conn, ok := r.connections[connID]
	if !ok {
		return nil, false
	}
	return conn.sink, true
}

func (r *Registry) IsOnline(userID domain.UserID) bool {
	_, ok := r.users[userID]
	return ok
}

// OnlineUsers returns the sorted roster of users with at least one connection.
func (r *Registry) OnlineUsers() []domain.UserID {
	users := lo.Keys(r.users)
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users
}

// ConnectionsOf returns the user's handles, oldest first.
func (r *Registry) ConnectionsOf(userID domain.UserID) []domain.ConnectionHandle {
	entry, ok := r.users[userID]
	if !ok {
		return nil
	}
	handles := make([]domain.ConnectionHandle, 0, len(entry.connections))
	for connID := range entry.connections {
		handles = append(handles, r.connections[connID].handle)
	}
	sort.Slice(handles, func(i, j int) bool {
		if handles[i].CreatedAt.Equal(handles[j].CreatedAt) {
			return handles[i].ID < handles[j].ID
		}
		return handles[i].CreatedAt.Before(handles[j].CreatedAt)
	})
	return handles
}

func (r *Registry) ConnectionIDsOf(userID domain.UserID) []domain.ConnectionID {
	return lo.Map(r.ConnectionsOf(userID), func(h domain.ConnectionHandle, _ int) domain.ConnectionID {
		return h.ID
	})
}

func (r *Registry) AllConnectionIDs() []domain.ConnectionID {
	ids := lo.Keys(r.connections)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *Registry) ConnectionCount() int {
	return len(r.connections)
}

func (r *Registry) UserCount() int {
	return len(r.users)
}
