package domain

// RoomID names a fan-out group of connections.
// Conversation rooms use the chat id, personal rooms use the user id.
type RoomID string

// PersonalRoom is the room every connection of a user joins on open.
// Events addressed to one user regardless of chat go there.
func PersonalRoom(userID UserID) RoomID {
	return RoomID(userID)
}
