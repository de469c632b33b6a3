package services

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/observability"
	"chat-hub/repositories"
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ChatTarget designates the other side of a direct chat, by id or by phone number.
type ChatTarget struct {
	UserID      domain.UserID `json:"userId"`
	PhoneNumber string        `json:"phoneNumber"`
}

type IChatService interface {
	CreateOrGetChat(ctx context.Context, me domain.UserID, target ChatTarget) (domain.Chat, bool, error)
	GetMyChats(me domain.UserID) ([]domain.ChatSummary, error)
	GetMessages(me domain.UserID, chatID domain.ChatID, cursor *string) ([]domain.Message, *string, error)
	SendMessage(ctx context.Context, me domain.UserID, draft domain.MessageDraft) (domain.Message, error)
	MarkChatRead(me domain.UserID, chatID domain.ChatID) (int, error)
	MarkMessageRead(me domain.UserID, messageID domain.MessageID) (domain.Message, error)
	AuthorizeJoin(me domain.UserID, chatID domain.ChatID) (domain.Chat, error)
}

type ChatService struct {
	log               *slog.Logger
	chatRepository    repositories.IChatRepository
	messageRepository repositories.IMessageRepository
	userRepository    repositories.IUserRepository
	notifier          *Notifier
	monitor           *observability.Monitor
	now               func() time.Time
}

func NewChatService(
	log *slog.Logger,
	chatRepository repositories.IChatRepository,
	messageRepository repositories.IMessageRepository,
	userRepository repositories.IUserRepository,
	notifier *Notifier,
	monitor *observability.Monitor,
) *ChatService {
	return &ChatService{
		log:               log,
		chatRepository:    chatRepository,
		messageRepository: messageRepository,
		userRepository:    userRepository,
		notifier:          notifier,
		monitor:           monitor,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrGetChat returns the direct chat between me and the target,
// creating it when needed. Only a creation notifies the other user.
func (s *ChatService) CreateOrGetChat(ctx context.Context, me domain.UserID, target ChatTarget) (domain.Chat, bool, error) {
	other, err := s.resolveTarget(target)
	if err != nil {
		return domain.Chat{}, false, err
	}
	if other == me {
		return domain.Chat{}, false, fmt.Errorf("%w: cannot create chat with yourself", errors.ErrValidation)
	}

	chat, found, err := s.chatRepository.FindDirectChat(me, other)
	if err != nil {
		return domain.Chat{}, false, err
	}
	if found {
		return chat, false, nil
	}

	chat, err = s.chatRepository.CreateChat(domain.Chat{
		Participants: []domain.UserID{me, other},
	})
	if errors.Is(err, errors.ErrConflict) {
		// Someone created the same pair in between
		chat, _, err = s.chatRepository.FindDirectChat(me, other)
		return chat, false, err
	}
	if err != nil {
		return domain.Chat{}, false, err
	}

	s.notifier.Notify(ctx, domain.ToUser(other), event.NewChat, chat)
	return chat, true, nil
}

func (s *ChatService) resolveTarget(target ChatTarget) (domain.UserID, error) {
	if target.PhoneNumber != "" {
		user, err := s.userRepository.GetUserByPhone(target.PhoneNumber)
		if err != nil {
			return "", err
		}
		return user.ID, nil
	}
	if target.UserID == "" {
		return "", fmt.Errorf("%w: userId or phoneNumber is required", errors.ErrValidation)
	}
	if _, err := s.userRepository.GetUserByID(target.UserID); err != nil {
		return "", err
	}
	return target.UserID, nil
}

// GetMyChats lists the chats of a user, most recently updated first,
// with the number of messages the user has not read yet.
func (s *ChatService) GetMyChats(me domain.UserID) ([]domain.ChatSummary, error) {
	chats, err := s.chatRepository.ListChatsForUser(me)
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.ChatSummary, 0, len(chats))
	for _, chat := range chats {
		unread, err := s.messageRepository.CountUnread(chat.ID, me)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, domain.ChatSummary{Chat: chat, UnreadCount: unread})
	}
	return summaries, nil
}

func (s *ChatService) GetMessages(me domain.UserID, chatID domain.ChatID, cursor *string) ([]domain.Message, *string, error) {
	if _, err := s.AuthorizeJoin(me, chatID); err != nil {
		return nil, nil, err
	}
	return s.messageRepository.GetMessages(chatID, cursor)
}

// SendMessage validates, persists and then fans the message out to the chat room.
// Nothing is delivered unless the message is stored.
func (s *ChatService) SendMessage(ctx context.Context, me domain.UserID, draft domain.MessageDraft) (domain.Message, error) {
	if err := draft.Validate(); err != nil {
		return domain.Message{}, err
	}
	chat, err := s.AuthorizeJoin(me, draft.ChatID)
	if err != nil {
		return domain.Message{}, err
	}

	message, err := s.messageRepository.CreateMessage(domain.NewMessage(me, draft, s.now()))
	if err != nil {
		s.monitor.IncrPersistenceErrors()
		return domain.Message{}, err
	}

	// The message exists from here on, a stale pointer is tolerated.
	if err = s.chatRepository.UpdateConversationLastMessage(chat.ID, message.ID, message.CreatedAt); err != nil {
		s.monitor.IncrPersistenceErrors()
		s.log.Warn("Unable to update last message", "chat_id", chat.ID, "message_id", message.ID, "error", err)
	}

	s.monitor.IncrMessagesSent()
	s.notifier.Notify(ctx, domain.ToRoom(chat.ID.Room()), event.NewMessage, message)
	return message, nil
}

func (s *ChatService) MarkChatRead(me domain.UserID, chatID domain.ChatID) (int, error) {
	if _, err := s.AuthorizeJoin(me, chatID); err != nil {
		return 0, err
	}
	return s.messageRepository.MarkChatRead(chatID, me)
}

// MarkMessageRead is idempotent and does not broadcast.
func (s *ChatService) MarkMessageRead(me domain.UserID, messageID domain.MessageID) (domain.Message, error) {
	if messageID == "" {
		return domain.Message{}, fmt.Errorf("%w: messageId is required", errors.ErrValidation)
	}
	return s.messageRepository.MarkRead(messageID, me)
}

// AuthorizeJoin checks against storage that the chat exists and the user takes part in it.
func (s *ChatService) AuthorizeJoin(me domain.UserID, chatID domain.ChatID) (domain.Chat, error) {
	if chatID == "" {
		return domain.Chat{}, fmt.Errorf("%w: chatId is required", errors.ErrValidation)
	}
	chat, err := s.chatRepository.GetChat(chatID)
	if err != nil {
		return domain.Chat{}, err
	}
	if !chat.HasParticipant(me) {
		return domain.Chat{}, fmt.Errorf("%w: not a participant of chat %s", errors.ErrForbidden, chatID)
	}
	return chat, nil
}
