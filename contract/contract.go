//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-hub/domain"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is the outbound side of one connection.
// Consume must never block: it enqueues or fails fast.
type EventSink interface {
	Consume(frame []byte) error
}

type HubStats struct {
	OnlineUsers int `json:"online_users"`
	Connections int `json:"connections"`
	Rooms       int `json:"rooms"`
}

// IHub serializes every access to the connection registry,
// the room memberships and the presence state.
type IHub interface {
	Connect(ctx context.Context, handle domain.ConnectionHandle, sink EventSink) error
	Disconnect(ctx context.Context, handle domain.ConnectionHandle) error
	Join(ctx context.Context, connID domain.ConnectionID, roomID domain.RoomID) error
	Leave(ctx context.Context, connID domain.ConnectionID, roomID domain.RoomID) error
	IsSubscribed(ctx context.Context, connID domain.ConnectionID, roomID domain.RoomID) (bool, error)
	Deliver(ctx context.Context, target domain.Target, frame []byte) (int, error)
	OnlineUsers(ctx context.Context) ([]domain.UserID, error)
	Connections(ctx context.Context, userID domain.UserID) ([]domain.ConnectionHandle, error)
	Stats(ctx context.Context) (HubStats, error)
}

type AuthVerifier interface {
	Verify(credential string) (domain.UserID, error)
}
