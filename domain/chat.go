package domain

import (
	"slices"
	"time"

	"github.com/samber/lo"
)

type ChatID string

func (c ChatID) Room() RoomID {
	return RoomID(c)
}

// Chat is either a direct conversation between two users
// or a group with an admin and a queue of join requests.
type Chat struct {
	ID           ChatID     `json:"id"`
	IsGroupChat  bool       `json:"isGroupChat"`
	GroupName    string     `json:"groupName,omitempty"`
	GroupImage   string     `json:"groupImage,omitempty"`
	GroupAdmin   UserID     `json:"groupAdmin,omitempty"`
	Participants []UserID   `json:"participants"`
	JoinRequests []UserID   `json:"joinRequests,omitempty"`
	LastMessage  *MessageID `json:"lastMessage,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Clone returns a copy that shares no slice with c.
func (c Chat) Clone() Chat {
	c.Participants = slices.Clone(c.Participants)
	c.JoinRequests = slices.Clone(c.JoinRequests)
	if c.LastMessage != nil {
		c.LastMessage = lo.ToPtr(*c.LastMessage)
	}
	return c
}

func (c *Chat) HasParticipant(userID UserID) bool {
	return lo.Contains(c.Participants, userID)
}

func (c *Chat) IsAdmin(userID UserID) bool {
	return c.IsGroupChat && c.GroupAdmin == userID
}

func (c *Chat) HasRequested(userID UserID) bool {
	return lo.Contains(c.JoinRequests, userID)
}

// AddParticipant reports false when the user was already there.
func (c *Chat) AddParticipant(userID UserID) bool {
	if c.HasParticipant(userID) {
		return false
	}
	c.Participants = append(c.Participants, userID)
	return true
}

func (c *Chat) RemoveParticipant(userID UserID) {
	c.Participants = lo.Without(c.Participants, userID)
}

func (c *Chat) RemoveRequest(userID UserID) bool {
	if !c.HasRequested(userID) {
		return false
	}
	c.JoinRequests = lo.Without(c.JoinRequests, userID)
	return true
}

// Others returns every participant except the given one.
func (c *Chat) Others(userID UserID) []UserID {
	return lo.Without(c.Participants, userID)
}

// ChatSummary is a chat as listed for one user.
type ChatSummary struct {
	Chat
	UnreadCount int `json:"unreadCount"`
}
