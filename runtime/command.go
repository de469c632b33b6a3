package runtime

import (
	"chat-hub/contract"
	"chat-hub/domain"
)

// command is applied by the hub goroutine. fail is used when apply panics,
// reply channels are buffered so neither path ever blocks the hub.
type command interface {
	apply(h *Hub)
	fail(err error)
}

type outcome[T any] struct {
	value T
	err   error
}

type connectCommand struct {
	handle domain.ConnectionHandle
	sink   contract.EventSink
	reply  chan outcome[struct{}]
}

func (c connectCommand) apply(h *Hub) {
	c.reply <- outcome[struct{}]{err: h.connect(c.handle, c.sink)}
}

func (c connectCommand) fail(err error) { c.reply <- outcome[struct{}]{err: err} }

type disconnectCommand struct {
	handle domain.ConnectionHandle
	reply  chan outcome[struct{}]
}

func (c disconnectCommand) apply(h *Hub) {
	h.disconnect(c.handle)
	c.reply <- outcome[struct{}]{}
}

func (c disconnectCommand) fail(err error) { c.reply <- outcome[struct{}]{err: err} }

type joinCommand struct {
	connID domain.ConnectionID
	roomID domain.RoomID
	reply  chan outcome[struct{}]
}

func (c joinCommand) apply(h *Hub) {
	c.reply <- outcome[struct{}]{err: h.join(c.connID, c.roomID)}
}

func (c joinCommand) fail(err error) { c.reply <- outcome[struct{}]{err: err} }

type leaveCommand struct {
	connID domain.ConnectionID
	roomID domain.RoomID
	reply  chan outcome[struct{}]
}

func (c leaveCommand) apply(h *Hub) {
	h.tracker.Leave(c.roomID, c.connID)
	c.reply <- outcome[struct{}]{}
}

func (c leaveCommand) fail(err error) { c.reply <- outcome[struct{}]{err: err} }

type subscribedQuery struct {
	connID domain.ConnectionID
	roomID domain.RoomID
	reply  chan outcome[bool]
}

func (c subscribedQuery) apply(h *Hub) {
	c.reply <- outcome[bool]{value: h.tracker.IsSubscribed(c.connID, c.roomID)}
}

func (c subscribedQuery) fail(err error) { c.reply <- outcome[bool]{err: err} }

type deliverCommand struct {
	target domain.Target
	frame  []byte
	reply  chan outcome[int]
}

func (c deliverCommand) apply(h *Hub) {
	c.reply <- outcome[int]{value: h.dispatcher.Deliver(c.target, c.frame)}
}

func (c deliverCommand) fail(err error) { c.reply <- outcome[int]{err: err} }

type rosterQuery struct {
	reply chan outcome[[]domain.UserID]
}

func (c rosterQuery) apply(h *Hub) {
	c.reply <- outcome[[]domain.UserID]{value: h.registry.OnlineUsers()}
}

func (c rosterQuery) fail(err error) { c.reply <- outcome[[]domain.UserID]{err: err} }

type connectionsQuery struct {
	userID domain.UserID
	reply  chan outcome[[]domain.ConnectionHandle]
}

func (c connectionsQuery) apply(h *Hub) {
	c.reply <- outcome[[]domain.ConnectionHandle]{value: h.registry.ConnectionsOf(c.userID)}
}

func (c connectionsQuery) fail(err error) { c.reply <- outcome[[]domain.ConnectionHandle]{err: err} }

type statsQuery struct {
	reply chan outcome[contract.HubStats]
}

func (c statsQuery) apply(h *Hub) {
	c.reply <- outcome[contract.HubStats]{value: contract.HubStats{
		OnlineUsers: h.registry.UserCount(),
		Connections: h.registry.ConnectionCount(),
		Rooms:       h.tracker.RoomCount(),
	}}
}

func (c statsQuery) fail(err error) { c.reply <- outcome[contract.HubStats]{err: err} }
