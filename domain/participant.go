// Package domain contains core concepts of the chat system.
// This file defines users as other participants see them.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

type UserID string

func (u UserID) String() string {
	return string(u)
}

// User is the public profile of an account.
// IsOnline and LastSeen mirror the durable presence flag.
type User struct {
	ID          UserID    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Avatar      string    `json:"avatar,omitempty"`
	IsOnline    bool      `json:"isOnline"`
	LastSeen    time.Time `json:"lastSeen"`
	CreatedAt   time.Time `json:"createdAt"`
}
