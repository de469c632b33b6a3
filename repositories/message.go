//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

type IMessageRepository interface {
	CreateMessage(message domain.Message) (domain.Message, error)
	GetMessage(id domain.MessageID) (domain.Message, error)
	GetMessages(chatID domain.ChatID, cursor *string) ([]domain.Message, *string, error)
	MarkRead(id domain.MessageID, userID domain.UserID) (domain.Message, error)
	MarkChatRead(chatID domain.ChatID, userID domain.UserID) (int, error)
	CountUnread(chatID domain.ChatID, userID domain.UserID) (int, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) IMessageRepository {
	return &MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// messageKey is formatted as "msg:{chat_id}:{timestamp_padded}:{id}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Keep two messages of the same nanosecond apart thanks to the id.
func messageKey(message domain.Message) string {
	return fmt.Sprintf("%s%s:%019d:%s", messagePrefix, message.ChatID, message.CreatedAt.UnixNano(), message.ID)
}

func chatMessagesPrefix(chatID domain.ChatID) string {
	return fmt.Sprintf("%s%s:", messagePrefix, chatID)
}

// CreateMessage persists a message and its id index in one transaction.
func (m MessageRepository) CreateMessage(message domain.Message) (domain.Message, error) {
	message.CreatedAt = message.CreatedAt.UTC()
	key := messageKey(message)
	err := m.db.Update(func(txn *badger.Txn) error {
		if err := putMessageAt(txn, key, message); err != nil {
			return err
		}
		return txn.Set([]byte(messageIndex+string(message.ID)), []byte(key))
	})
	if err != nil {
		return domain.Message{}, storageError(err, errors.ErrMessageNotFound)
	}
	return message, nil
}

func (m MessageRepository) GetMessage(id domain.MessageID) (domain.Message, error) {
	var message domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		key, err := getString(txn, messageIndex+string(id))
		if err != nil {
			return err
		}
		message, err = getMessageAt(txn, key)
		return err
	})
	return message, storageError(err, errors.ErrMessageNotFound)
}

// GetMessages retrieves messages of a chat, newest first, using a reverse prefix scan.
// Thanks to the padded timestamp in the key, messages are naturally sorted by time.
// It stops once limitMessages is reached and returns the cursor of the last key read,
// nil when there is nothing left.
func (m MessageRepository) GetMessages(chatID domain.ChatID, cursor *string) ([]domain.Message, *string, error) {
	var messages []domain.Message
	var lastKey string
	limitReached := false
	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := chatMessagesPrefix(chatID)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Start after the newest possible key and walk back in time
			seekKey = append([]byte(prefixStr), []byte("9999999999999999999")...)
		default:
			seekKey = append([]byte(prefixStr), []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) && string(it.Item().Key()) == string(seekKey) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(messages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", *m.limitMessages))
				limitReached = true
				break
			}
			item := it.Item()
			// Memorize cursor part of the actual key
			lastKey = string(item.Key()[prefixLen:])
			var message domain.Message
			if err := item.Value(func(value []byte) (err error) {
				message, err = decodeMessage(value)
				return err
			}); err != nil {
				return err
			}
			messages = append(messages, message)
		}
		return nil
	})
	if err != nil {
		return nil, nil, storageError(err, errors.ErrMessageNotFound)
	}
	if !limitReached {
		return messages, nil, nil
	}
	return messages, &lastKey, nil
}

// MarkRead adds the user to the read-by set. Reading twice is a no-op.
func (m MessageRepository) MarkRead(id domain.MessageID, userID domain.UserID) (domain.Message, error) {
	var message domain.Message
	err := update(m.db, func(txn *badger.Txn) error {
		key, err := getString(txn, messageIndex+string(id))
		if err != nil {
			return err
		}
		if message, err = getMessageAt(txn, key); err != nil {
			return err
		}
		if !message.MarkReadBy(userID) {
			return nil
		}
		return putMessageAt(txn, key, message)
	})
	if err != nil {
		return domain.Message{}, storageError(err, errors.ErrMessageNotFound)
	}
	return message, nil
}

// markChatReadChunk bounds how many messages one transaction rewrites.
const markChatReadChunk = 500

// MarkChatRead marks every message of the chat as read by the user
// and returns how many were not read before. The chat is walked in
// key order, one read-write transaction per chunk.
func (m MessageRepository) MarkChatRead(chatID domain.ChatID, userID domain.UserID) (int, error) {
	prefix := []byte(chatMessagesPrefix(chatID))
	from := prefix
	total := 0
	for from != nil {
		var marked int
		var next []byte
		err := update(m.db, func(txn *badger.Txn) error {
			var err error
			marked, next, err = markChunkRead(txn, prefix, from, userID)
			return err
		})
		if err != nil {
			return total, storageError(err, errors.ErrMessageNotFound)
		}
		total += marked
		from = next
	}
	return total, nil
}

// markChunkRead rewrites up to markChatReadChunk messages starting at from
// and returns the key to resume at, nil once the prefix is exhausted.
func markChunkRead(txn *badger.Txn, prefix, from []byte, userID domain.UserID) (int, []byte, error) {
	type pending struct {
		key     string
		message domain.Message
	}
	var updates []pending
	var next []byte

	it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
	scanned := 0
	for it.Seek(from); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		if scanned == markChatReadChunk {
			next = item.KeyCopy(nil)
			break
		}
		scanned++
		var message domain.Message
		if err := item.Value(func(value []byte) (err error) {
			message, err = decodeMessage(value)
			return err
		}); err != nil {
			it.Close()
			return 0, nil, err
		}
		if message.MarkReadBy(userID) {
			updates = append(updates, pending{key: string(item.KeyCopy(nil)), message: message})
		}
	}
	// Only one iterator may be open while writing in the same transaction
	it.Close()

	for _, u := range updates {
		if err := putMessageAt(txn, u.key, u.message); err != nil {
			return 0, nil, err
		}
	}
	return len(updates), next, nil
}

func (m MessageRepository) CountUnread(chatID domain.ChatID, userID domain.UserID) (int, error) {
	unread := 0
	err := m.scanChat(chatID, func(_ string, message domain.Message) {
		if !message.IsReadBy(userID) {
			unread++
		}
	})
	return unread, err
}

func (m MessageRepository) scanChat(chatID domain.ChatID, visit func(key string, message domain.Message)) error {
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(chatMessagesPrefix(chatID))
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var message domain.Message
			if err := item.Value(func(value []byte) (err error) {
				message, err = decodeMessage(value)
				return err
			}); err != nil {
				return err
			}
			visit(string(item.KeyCopy(nil)), message)
		}
		return nil
	})
	return storageError(err, errors.ErrMessageNotFound)
}
