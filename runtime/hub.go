package runtime

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/observability"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	_ contract.Worker = (*Hub)(nil)
	_ contract.IHub   = (*Hub)(nil)
)

// Hub is the single owner of the registry, the room tracker and the presence state.
// Every mutation travels as a command through one channel and is applied by Run,
// so an edge is always detected in the same step as the registry change behind it.
type Hub struct {
	log        *slog.Logger
	commands   chan command
	presence   chan<- domain.PresenceEvent
	registry   *Registry
	tracker    *Tracker
	presences  *PresenceCoordinator
	dispatcher *Dispatcher

	runCtx   context.Context
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewHub creates a hub. Presence edges are pushed to presenceEvents in edge order;
// a nil channel disables durable presence.
func NewHub(
	log *slog.Logger,
	monitor *observability.Monitor,
	presenceEvents chan<- domain.PresenceEvent,
	commandBufferSize int,
	now func() time.Time,
) *Hub {
	registry := NewRegistry()
	tracker := NewTracker()
	return &Hub{
		log:        log,
		commands:   make(chan command, commandBufferSize),
		presence:   presenceEvents,
		registry:   registry,
		tracker:    tracker,
		presences:  NewPresenceCoordinator(now),
		dispatcher: NewDispatcher(log, registry, tracker, monitor),
		stopped:    make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) error {
	h.runCtx = ctx
	for {
		select {
		case <-ctx.Done():
			h.stopOnce.Do(func() { close(h.stopped) })
			h.log.Debug("Stopping hub")
			return nil
		case cmd := <-h.commands:
			h.execute(cmd)
		}
	}
}

// execute isolates a failing command: the caller gets an invariant error,
// the hub keeps serving everybody else.
func (h *Hub) execute(cmd command) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("Hub command panicked", "command", fmt.Sprintf("%T", cmd), "panic", r)
			cmd.fail(fmt.Errorf("%w: %v", errors.ErrInternalInvariant, r))
		}
	}()
	cmd.apply(h)
}

func (h *Hub) Connect(ctx context.Context, handle domain.ConnectionHandle, sink contract.EventSink) error {
	reply := make(chan outcome[struct{}], 1)
	_, err := call(ctx, h, connectCommand{handle: handle, sink: sink, reply: reply}, reply)
	return err
}

func (h *Hub) Disconnect(ctx context.Context, handle domain.ConnectionHandle) error {
	reply := make(chan outcome[struct{}], 1)
	_, err := call(ctx, h, disconnectCommand{handle: handle, reply: reply}, reply)
	return err
}

func (h *Hub) Join(ctx context.Context, connID domain.ConnectionID, roomID domain.RoomID) error {
	reply := make(chan outcome[struct{}], 1)
	_, err := call(ctx, h, joinCommand{connID: connID, roomID: roomID, reply: reply}, reply)
	return err
}

func (h *Hub) Leave(ctx context.Context, connID domain.ConnectionID, roomID domain.RoomID) error {
	reply := make(chan outcome[struct{}], 1)
	_, err := call(ctx, h, leaveCommand{connID: connID, roomID: roomID, reply: reply}, reply)
	return err
}

func (h *Hub) IsSubscribed(ctx context.Context, connID domain.ConnectionID, roomID domain.RoomID) (bool, error) {
	reply := make(chan outcome[bool], 1)
	return call(ctx, h, subscribedQuery{connID: connID, roomID: roomID, reply: reply}, reply)
}

func (h *Hub) Deliver(ctx context.Context, target domain.Target, frame []byte) (int, error) {
	reply := make(chan outcome[int], 1)
	return call(ctx, h, deliverCommand{target: target, frame: frame, reply: reply}, reply)
}

func (h *Hub) OnlineUsers(ctx context.Context) ([]domain.UserID, error) {
	reply := make(chan outcome[[]domain.UserID], 1)
	return call(ctx, h, rosterQuery{reply: reply}, reply)
}

func (h *Hub) IsOnline(ctx context.Context, userID domain.UserID) (bool, error) {
	users, err := h.OnlineUsers(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u == userID {
			return true, nil
		}
	}
	return false, nil
}

func (h *Hub) Connections(ctx context.Context, userID domain.UserID) ([]domain.ConnectionHandle, error) {
	reply := make(chan outcome[[]domain.ConnectionHandle], 1)
	return call(ctx, h, connectionsQuery{userID: userID, reply: reply}, reply)
}

func (h *Hub) Stats(ctx context.Context) (contract.HubStats, error) {
	reply := make(chan outcome[contract.HubStats], 1)
	return call(ctx, h, statsQuery{reply: reply}, reply)
}

// call enqueues a command and waits for its reply.
func call[T any](ctx context.Context, h *Hub, cmd command, reply chan outcome[T]) (T, error) {
	var zero T
	select {
	case h.commands <- cmd:
	case <-h.stopped:
		return zero, errors.ErrHubStopped
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	select {
	case o := <-reply:
		return o.value, o.err
	case <-h.stopped:
		return zero, errors.ErrHubStopped
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (h *Hub) connect(handle domain.ConnectionHandle, sink contract.EventSink) error {
	if err := h.registry.Register(handle, sink); err != nil {
		return err
	}
	if evt, ok := h.presences.OnConnectionAdded(handle.UserID); ok {
		h.publishPresence(evt)
	} else {
		// Already online elsewhere: only the new connection needs the roster
		h.deliverRoster(domain.ToConnection(handle.ID))
	}
	h.tracker.Join(domain.PersonalRoom(handle.UserID), handle.ID)
	h.log.Debug("Connection registered", "user_id", handle.UserID, "conn_id", handle.ID)
	return nil
}

// disconnect is idempotent: an unknown handle changes nothing.
func (h *Hub) disconnect(handle domain.ConnectionHandle) {
	if !h.registry.Has(handle.ID) {
		return
	}
	rooms := h.tracker.LeaveAll(handle.ID)
	offline := h.registry.Deregister(handle.UserID, handle.ID)
	evt, ok := h.presences.OnConnectionRemoved(handle.UserID)
	if ok != offline {
		h.log.Error("Presence and registry disagree", "user_id", handle.UserID, "registry_offline", offline)
	}
	if ok {
		h.publishPresence(evt)
	}
	h.log.Debug("Connection deregistered", "user_id", handle.UserID, "conn_id", handle.ID, "rooms", len(rooms))
}

// publishPresence queues the durable write, then broadcasts the full roster.
// The send blocks so that no edge is lost; only shutdown interrupts it.
func (h *Hub) publishPresence(evt domain.PresenceEvent) {
	if h.presence != nil {
		select {
		case h.presence <- evt:
		case <-h.runCtx.Done():
			h.log.Warn("Presence edge not persisted, hub stopping", "user_id", evt.UserID, "status", evt.Status)
		}
	}
	h.deliverRoster(domain.ToAll())
}

func (h *Hub) deliverRoster(target domain.Target) {
	frame, err := event.Encode(event.OnlineUsers, h.registry.OnlineUsers())
	if err != nil {
		h.log.Error("Roster encoding failed", "error", err)
		return
	}
	h.dispatcher.Deliver(target, frame)
}

func (h *Hub) join(connID domain.ConnectionID, roomID domain.RoomID) error {
	if !h.registry.Has(connID) {
		return fmt.Errorf("%w: join from unknown connection %s", errors.ErrInternalInvariant, connID)
	}
	h.tracker.Join(roomID, connID)
	return nil
}
