package domain

import (
	"time"

	"github.com/google/uuid"
)

type ConnectionID string

// ConnectionHandle identifies one live transport of a user.
// A user may hold several handles at the same time (tabs, devices).
type ConnectionHandle struct {
	ID        ConnectionID
	UserID    UserID
	CreatedAt time.Time
}

func NewConnectionHandle(userID UserID) ConnectionHandle {
	return ConnectionHandle{
		ID:        ConnectionID(uuid.NewString()),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}
