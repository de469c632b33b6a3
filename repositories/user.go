//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
)

type IUserRepository interface {
	CreateUser(user User) (domain.UserID, error)
	GetUserByID(id domain.UserID) (User, error)
	GetUserByEmail(email string) (User, error)
	GetUserByPhone(phoneNumber string) (User, error)
	SetUserOnline(id domain.UserID, online bool, at time.Time) error
	MarkAllOffline(at time.Time) (int, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// User is the stored account: the public profile plus credentials.
type User struct {
	domain.User
	PasswordHash string
	Roles        []string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser persists a new account and its email and phone indexes.
// It returns the newly generated User ID.
func (u UserRepository) CreateUser(user User) (domain.UserID, error) {
	user.ID = domain.UserID(uuid.NewString())
	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = time.Now().UTC()
	user.LastSeen = user.CreatedAt
	user.IsOnline = false
	if len(user.Roles) == 0 {
		user.Roles = []string{"user"}
	}

	err := u.db.Update(func(txn *badger.Txn) error {
		for _, key := range []string{emailIndexPrefix + user.Email, phoneIndexPrefix + user.PhoneNumber} {
			if _, err := txn.Get([]byte(key)); err == nil {
				return errors.ErrUserAlreadyExists
			}
		}
		if err := putUser(txn, user); err != nil {
			return err
		}
		if err := txn.Set([]byte(emailIndexPrefix+user.Email), []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set([]byte(phoneIndexPrefix+user.PhoneNumber), []byte(user.ID))
	})
	if err != nil {
		return "", storageError(err, errors.ErrUserNotFound)
	}
	return user.ID, nil
}

func (u UserRepository) GetUserByID(id domain.UserID) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) (err error) {
		user, err = getUser(txn, string(id))
		return err
	})
	return user, storageError(err, errors.ErrUserNotFound)
}

// GetUserByEmail retrieves a user through the email index.
func (u UserRepository) GetUserByEmail(email string) (User, error) {
	return u.getByIndex(emailIndexPrefix + normalizeEmail(email))
}

func (u UserRepository) GetUserByPhone(phoneNumber string) (User, error) {
	return u.getByIndex(phoneIndexPrefix + strings.TrimSpace(phoneNumber))
}

func (u UserRepository) getByIndex(indexKey string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		id, err := getString(txn, indexKey)
		if err != nil {
			return err
		}
		user, err = getUser(txn, id)
		return err
	})
	return user, storageError(err, errors.ErrUserNotFound)
}

// SetUserOnline mirrors a presence edge. LastSeen only moves when the user goes offline.
func (u UserRepository) SetUserOnline(id domain.UserID, online bool, at time.Time) error {
	err := update(u.db, func(txn *badger.Txn) error {
		user, err := getUser(txn, string(id))
		if err != nil {
			return err
		}
		user.IsOnline = online
		if !online {
			user.LastSeen = at.UTC()
		}
		return putUser(txn, user)
	})
	return storageError(err, errors.ErrUserNotFound)
}

// MarkAllOffline resets every durable online flag. It runs before the
// server accepts connections, when no user can possibly be connected.
func (u UserRepository) MarkAllOffline(at time.Time) (int, error) {
	var stale []User
	err := u.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(userPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var user User
			if err := it.Item().Value(func(val []byte) (err error) {
				user, err = decodeUser(val)
				return err
			}); err != nil {
				return err
			}
			if user.IsOnline {
				stale = append(stale, user)
			}
		}
		return nil
	})
	if err != nil {
		return 0, storageError(err, errors.ErrUserNotFound)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	batch := u.db.NewWriteBatch()
	defer batch.Cancel()
	for _, user := range stale {
		user.IsOnline = false
		user.LastSeen = at.UTC()
		data, err := proto.Marshal(toUserRecord(user))
		if err != nil {
			return 0, err
		}
		if err = batch.Set([]byte(userPrefix+string(user.ID)), data); err != nil {
			return 0, storageError(err, errors.ErrUserNotFound)
		}
	}
	if err = batch.Flush(); err != nil {
		return 0, storageError(err, errors.ErrUserNotFound)
	}
	return len(stale), nil
}
