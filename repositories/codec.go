package repositories

import (
	"chat-hub/errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"google.golang.org/protobuf/proto"
)

// Key layout, one prefix per entity and idx: for secondary indexes.
const (
	userPrefix        = "user:"
	emailIndexPrefix  = "idx:email:"
	phoneIndexPrefix  = "idx:phone:"
	chatPrefix        = "chat:"
	memberIndexPrefix = "idx:member:"
	directIndexPrefix = "idx:direct:"
	messagePrefix     = "msg:"
	messageIndex      = "idx:msg:"
)

// maxConflictRetries bounds how many times a read-modify-write transaction
// is replayed after losing a race. Every conflict means another writer
// committed, so contention drains quickly.
const maxConflictRetries = 32

// update runs fn in a read-write transaction and replays it when badger
// reports that a key it read was committed concurrently.
// fn must not keep state from a previous attempt.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if err = db.Update(fn); !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", maxConflictRetries, err)
}

func getProto(txn *badger.Txn, key string, target proto.Message) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return proto.Unmarshal(val, target)
	})
}

func setProto(txn *badger.Txn, key string, value proto.Message) error {
	data, err := proto.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return txn.Set([]byte(key), data)
}

func getString(txn *badger.Txn, key string) (string, error) {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return "", err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(val), nil
}

// storageError keeps domain errors as they are, turns a missing key into
// notFound and anything else into a persistence error.
func storageError(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return notFound
	case errors.Is(err, errors.ErrNotFound),
		errors.Is(err, errors.ErrConflict),
		errors.Is(err, errors.ErrValidation),
		errors.Is(err, errors.ErrForbidden),
		errors.Is(err, errors.ErrUserAlreadyExists):
		return err
	default:
		return fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
}
