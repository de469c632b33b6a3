// Package session drives one authenticated connection: it registers it in the hub,
// routes the client's intents and releases everything when the transport goes away.
package session

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Chats is the part of the conversation service a socket can reach.
type Chats interface {
	AuthorizeJoin(me domain.UserID, chatID domain.ChatID) (domain.Chat, error)
	SendMessage(ctx context.Context, me domain.UserID, draft domain.MessageDraft) (domain.Message, error)
	MarkMessageRead(me domain.UserID, messageID domain.MessageID) (domain.Message, error)
}

type Handler struct {
	log            *slog.Logger
	hub            contract.IHub
	chats          Chats
	cleanupTimeout time.Duration
}

func NewHandler(log *slog.Logger, hub contract.IHub, chats Chats, cleanupTimeout time.Duration) *Handler {
	return &Handler{log: log, hub: hub, chats: chats, cleanupTimeout: cleanupTimeout}
}

// Open moves an authenticated transport into the hub.
// When it fails the partial registration is already undone.
func (h *Handler) Open(ctx context.Context, handle domain.ConnectionHandle, sink contract.EventSink) (*Session, error) {
	s := &Session{
		log:            h.log.With("conn_id", handle.ID, "user_id", handle.UserID),
		hub:            h.hub,
		chats:          h.chats,
		handle:         handle,
		cleanupTimeout: h.cleanupTimeout,
	}
	if err := h.hub.Connect(ctx, handle, sink); err != nil {
		// A duplicate handle belongs to a live registration that must stay
		if !errors.Is(err, errors.ErrDuplicateConnection) {
			s.Close()
		}
		return nil, err
	}
	s.log.Debug("Session opened")
	return s, nil
}

type Session struct {
	log            *slog.Logger
	hub            contract.IHub
	chats          Chats
	handle         domain.ConnectionHandle
	cleanupTimeout time.Duration
	closeOnce      sync.Once
}

func (s *Session) Handle() domain.ConnectionHandle {
	return s.handle
}

// Dispatch routes one inbound frame. Failures only ever reach this connection.
func (s *Session) Dispatch(ctx context.Context, frame []byte) {
	intent, err := Decode(frame)
	if err != nil {
		s.fail(ctx, "", err)
		return
	}

	switch intent.Name {
	case event.JoinChat:
		err = s.joinChat(ctx, intent)
	case event.Typing, event.StopTyping:
		err = s.relayTyping(ctx, intent)
	case event.SendMessage:
		err = s.sendMessage(ctx, intent)
	case event.MessageRead:
		err = s.markRead(intent)
	case event.Authenticate:
		s.log.Debug("Already authenticated, ignoring")
	default:
		err = fmt.Errorf("%w: unknown event %q", errors.ErrValidation, intent.Name)
	}
	if err != nil {
		s.fail(ctx, intent.Name, err)
	}
}

// fail answers the sender with an error frame. Server side failures are
// logged and only their code reaches the client.
func (s *Session) fail(ctx context.Context, intent event.Name, err error) {
	if errors.Internal(err) {
		s.log.Error("Intent failed", "event", intent, "error", err)
	} else {
		s.log.Debug("Intent failed", "event", intent, "error", err)
	}
	s.reply(ctx, event.Error, event.ErrorPayload{Intent: intent, Code: errors.Code(err), Message: errors.Message(err)})
}

// joinChat trusts storage, not the client: the chat must exist and list the user.
func (s *Session) joinChat(ctx context.Context, intent Intent) error {
	chat, err := s.chats.AuthorizeJoin(s.handle.UserID, intent.ChatID())
	if err != nil {
		return err
	}
	if err = s.hub.Join(ctx, s.handle.ID, chat.ID.Room()); err != nil {
		return err
	}
	s.reply(ctx, event.ChatJoined, event.ChatJoinedPayload{ChatID: chat.ID})
	return nil
}

func (s *Session) relayTyping(ctx context.Context, intent Intent) error {
	chatID := intent.ChatID()
	if chatID == "" {
		return fmt.Errorf("%w: chatId is required", errors.ErrValidation)
	}
	subscribed, err := s.hub.IsSubscribed(ctx, s.handle.ID, chatID.Room())
	if err != nil {
		return err
	}
	if !subscribed {
		s.log.Debug("Typing in a room not joined, ignoring", "chat_id", chatID)
		return nil
	}
	frame, err := event.Encode(intent.Name, event.TypingPayload{ChatID: chatID, UserID: s.handle.UserID})
	if err != nil {
		return err
	}
	_, err = s.hub.Deliver(ctx, domain.ToRoomExcept(chatID.Room(), s.handle.ID), frame)
	return err
}

func (s *Session) sendMessage(ctx context.Context, intent Intent) error {
	draft, err := intent.Draft()
	if err != nil {
		return err
	}
	_, err = s.chats.SendMessage(ctx, s.handle.UserID, draft)
	return err
}

func (s *Session) markRead(intent Intent) error {
	_, err := s.chats.MarkMessageRead(s.handle.UserID, intent.MessageID())
	return err
}

// reply goes through the hub so it stays ordered with every other frame of this connection.
func (s *Session) reply(ctx context.Context, name event.Name, data any) {
	frame, err := event.Encode(name, data)
	if err != nil {
		s.log.Error("Unable to encode reply", "event", name, "error", err)
		return
	}
	if _, err = s.hub.Deliver(ctx, domain.ToConnection(s.handle.ID), frame); err != nil {
		s.log.Warn("Unable to deliver reply", "event", name, "error", err)
	}
}

// Close releases the rooms, the registry entry and possibly the presence of the user.
// It runs once whatever the number of callers, with its own deadline
// because the transport context is usually gone by then.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cleanupTimeout)
		defer cancel()
		if err := s.hub.Disconnect(ctx, s.handle); err != nil {
			s.log.Warn("Unable to release connection", "error", err)
			return
		}
		s.log.Debug("Session closed")
	})
}
