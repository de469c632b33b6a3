// Package event defines the frames exchanged with real-time clients.
// Every frame is an envelope {"event": name, "data": payload}.
package event

import (
	"chat-hub/domain"
	"encoding/json"
)

type Name string

// Inbound intents.
const (
	Authenticate Name = "authenticate"
	JoinChat     Name = "join_chat"
	Typing       Name = "typing"
	StopTyping   Name = "stop_typing"
	SendMessage  Name = "send_message"
	MessageRead  Name = "message_read"
)

// Outbound events.
const (
	OnlineUsers    Name = "get_online_users"
	NewMessage     Name = "new_message"
	NewChat        Name = "new_chat"
	AddedToGroup   Name = "added_to_group"
	GroupRequest   Name = "group_request"
	RequestHandled Name = "request_handled"
	GroupUpdated   Name = "group_updated"
	UserLeftGroup  Name = "user_left_group"
	ChatJoined     Name = "chat_joined"
	Error          Name = "error"
	AuthError      Name = "auth_error"
)

type Envelope struct {
	Event Name `json:"event"`
	Data  any  `json:"data,omitempty"`
}

// Encode renders one frame. Payloads are plain structs so this only
// fails on programming errors.
func Encode(name Name, data any) ([]byte, error) {
	return json.Marshal(Envelope{Event: name, Data: data})
}

type TypingPayload struct {
	ChatID domain.ChatID `json:"chatId"`
	UserID domain.UserID `json:"userId"`
}

type ChatJoinedPayload struct {
	ChatID domain.ChatID `json:"chatId"`
}

type ErrorPayload struct {
	Intent  Name   `json:"intent,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AuthErrorPayload struct {
	Message string `json:"message"`
}

type GroupRequestPayload struct {
	GroupID   domain.ChatID `json:"groupId"`
	UserID    domain.UserID `json:"userId"`
	GroupName string        `json:"groupName"`
}

type RequestStatus string

const (
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

type RequestHandledPayload struct {
	GroupID   domain.ChatID `json:"groupId"`
	Status    RequestStatus `json:"status"`
	GroupName string        `json:"groupName"`
}

type UserLeftGroupPayload struct {
	GroupID domain.ChatID `json:"groupId"`
	UserID  domain.UserID `json:"userId"`
}
