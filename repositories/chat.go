//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repositories

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IChatRepository interface {
	CreateChat(chat domain.Chat) (domain.Chat, error)
	GetChat(id domain.ChatID) (domain.Chat, error)
	UpdateChat(id domain.ChatID, mutate func(chat *domain.Chat) error) (domain.Chat, error)
	FindDirectChat(a, b domain.UserID) (domain.Chat, bool, error)
	ListChatsForUser(userID domain.UserID) ([]domain.Chat, error)
	ListGroups() ([]domain.Chat, error)
	UpdateConversationLastMessage(id domain.ChatID, messageID domain.MessageID, at time.Time) error
}

type ChatRepository struct {
	db *badger.DB
}

func NewChatRepository(db *badger.DB) IChatRepository {
	return &ChatRepository{db: db}
}

func memberKey(userID domain.UserID, chatID domain.ChatID) string {
	return fmt.Sprintf("%s%s:%s", memberIndexPrefix, userID, chatID)
}

// directKey is symmetric: (a, b) and (b, a) share the same key.
func directKey(a, b domain.UserID) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%s%s:%s", directIndexPrefix, a, b)
}

// CreateChat stores a new chat with its member index, and the direct index for one-to-one chats.
func (c ChatRepository) CreateChat(chat domain.Chat) (domain.Chat, error) {
	now := time.Now().UTC()
	chat.ID = domain.ChatID(uuid.NewString())
	chat.Participants = lo.Uniq(chat.Participants)
	chat.CreatedAt = now
	chat.UpdatedAt = now

	err := c.db.Update(func(txn *badger.Txn) error {
		if !chat.IsGroupChat {
			if len(chat.Participants) != 2 {
				return fmt.Errorf("%w: a direct chat has exactly two participants", errors.ErrValidation)
			}
			key := directKey(chat.Participants[0], chat.Participants[1])
			if _, err := txn.Get([]byte(key)); err == nil {
				return fmt.Errorf("%w: direct chat already exists", errors.ErrConflict)
			}
			if err := txn.Set([]byte(key), []byte(chat.ID)); err != nil {
				return err
			}
		}
		if err := putChat(txn, chat); err != nil {
			return err
		}
		for _, userID := range chat.Participants {
			if err := txn.Set([]byte(memberKey(userID, chat.ID)), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Chat{}, storageError(err, errors.ErrChatNotFound)
	}
	return chat, nil
}

func (c ChatRepository) GetChat(id domain.ChatID) (domain.Chat, error) {
	var chat domain.Chat
	err := c.db.View(func(txn *badger.Txn) (err error) {
		chat, err = getChat(txn, string(id))
		return err
	})
	return chat, storageError(err, errors.ErrChatNotFound)
}

// UpdateChat loads the chat, applies mutate and stores the result in one
// transaction, replayed from a fresh read when a concurrent writer wins.
// The member index follows the new participant list. A chat left without
// participants is removed along with its indexes, and returned empty.
// An error from mutate aborts the update and is returned as is.
func (c ChatRepository) UpdateChat(id domain.ChatID, mutate func(chat *domain.Chat) error) (domain.Chat, error) {
	var chat domain.Chat
	err := update(c.db, func(txn *badger.Txn) error {
		previous, err := getChat(txn, string(id))
		if err != nil {
			return err
		}
		chat = previous.Clone()
		if err = mutate(&chat); err != nil {
			return err
		}
		chat.ID = previous.ID
		chat.Participants = lo.Uniq(chat.Participants)
		chat.UpdatedAt = time.Now().UTC()

		if len(chat.Participants) == 0 {
			return deleteChat(txn, previous)
		}
		removed, added := lo.Difference(previous.Participants, chat.Participants)
		for _, userID := range removed {
			if err := txn.Delete([]byte(memberKey(userID, id))); err != nil {
				return err
			}
		}
		for _, userID := range added {
			if err := txn.Set([]byte(memberKey(userID, id)), nil); err != nil {
				return err
			}
		}
		return putChat(txn, chat)
	})
	if err != nil {
		return domain.Chat{}, storageError(err, errors.ErrChatNotFound)
	}
	return chat, nil
}

func deleteChat(txn *badger.Txn, chat domain.Chat) error {
	for _, userID := range chat.Participants {
		if err := txn.Delete([]byte(memberKey(userID, chat.ID))); err != nil {
			return err
		}
	}
	if !chat.IsGroupChat && len(chat.Participants) == 2 {
		if err := txn.Delete([]byte(directKey(chat.Participants[0], chat.Participants[1]))); err != nil {
			return err
		}
	}
	return txn.Delete([]byte(chatPrefix + string(chat.ID)))
}

func (c ChatRepository) FindDirectChat(a, b domain.UserID) (domain.Chat, bool, error) {
	var chat domain.Chat
	err := c.db.View(func(txn *badger.Txn) error {
		id, err := getString(txn, directKey(a, b))
		if err != nil {
			return err
		}
		chat, err = getChat(txn, id)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Chat{}, false, nil
	}
	if err != nil {
		return domain.Chat{}, false, storageError(err, errors.ErrChatNotFound)
	}
	return chat, true, nil
}

// ListChatsForUser walks the member index of the user, most recently updated first.
func (c ChatRepository) ListChatsForUser(userID domain.UserID) ([]domain.Chat, error) {
	var chats []domain.Chat
	err := c.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(fmt.Sprintf("%s%s:", memberIndexPrefix, userID))
		var ids []string
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, strings.TrimPrefix(string(it.Item().Key()), string(prefix)))
		}
		for _, id := range ids {
			chat, err := getChat(txn, id)
			if err != nil {
				return err
			}
			chats = append(chats, chat)
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err, errors.ErrChatNotFound)
	}
	sortByUpdate(chats)
	return chats, nil
}

func (c ChatRepository) ListGroups() ([]domain.Chat, error) {
	var groups []domain.Chat
	err := c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(chatPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var chat domain.Chat
			if err := it.Item().Value(func(val []byte) (err error) {
				chat, err = decodeChat(val)
				return err
			}); err != nil {
				return err
			}
			if chat.IsGroupChat {
				groups = append(groups, chat)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err, errors.ErrChatNotFound)
	}
	sortByUpdate(groups)
	return groups, nil
}

// UpdateConversationLastMessage moves the last-message pointer and bumps UpdatedAt.
func (c ChatRepository) UpdateConversationLastMessage(id domain.ChatID, messageID domain.MessageID, at time.Time) error {
	err := update(c.db, func(txn *badger.Txn) error {
		chat, err := getChat(txn, string(id))
		if err != nil {
			return err
		}
		chat.LastMessage = lo.ToPtr(messageID)
		chat.UpdatedAt = at.UTC()
		return putChat(txn, chat)
	})
	return storageError(err, errors.ErrChatNotFound)
}

func sortByUpdate(chats []domain.Chat) {
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})
}
