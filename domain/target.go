package domain

type TargetKind int

const (
	TargetUser TargetKind = iota
	TargetRoom
	TargetConnection
	TargetAll
)

// Target resolves to a set of connections at delivery time.
// Except removes one connection from the resolved set, typically the sender's.
type Target struct {
	Kind       TargetKind
	User       UserID
	Room       RoomID
	Connection ConnectionID
	Except     ConnectionID
}

func ToUser(userID UserID) Target {
	return Target{Kind: TargetUser, User: userID}
}

func ToRoom(roomID RoomID) Target {
	return Target{Kind: TargetRoom, Room: roomID}
}

func ToRoomExcept(roomID RoomID, except ConnectionID) Target {
	return Target{Kind: TargetRoom, Room: roomID, Except: except}
}

func ToConnection(connID ConnectionID) Target {
	return Target{Kind: TargetConnection, Connection: connID}
}

func ToAll() Target {
	return Target{Kind: TargetAll}
}
