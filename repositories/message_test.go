package repositories

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func textMessage(chatID domain.ChatID, sender domain.UserID, text string, at time.Time) domain.Message {
	return domain.NewMessage(sender, domain.MessageDraft{ChatID: chatID, Type: domain.MessageText, Text: text}, at)
}

func Test_Create_Then_Get_Message(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), logs.GetLoggerFromLevel(slog.LevelDebug), nil)
	message := textMessage("chat-1", "alice", "hello", time.Now().UTC())

	// When a message is created
	stored, err := repository.CreateMessage(message)
	req.NoError(err)

	// Then it is returned by id and by chat, read by its sender only
	fetched, err := repository.GetMessage(stored.ID)
	req.NoError(err)
	req.Equal(stored, fetched)
	req.Equal([]domain.UserID{"alice"}, fetched.ReadBy)

	messages, cursor, err := repository.GetMessages("chat-1", nil)
	req.NoError(err)
	req.Nil(cursor)
	req.Equal([]domain.Message{stored}, messages)
}

func Test_GetMessages_Newest_First_Isolated_Per_Chat(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), logs.GetLoggerFromLevel(slog.LevelDebug), nil)
	at := time.Now().UTC()

	first, err := repository.CreateMessage(textMessage("chat-1", "alice", "first", at))
	req.NoError(err)
	second, err := repository.CreateMessage(textMessage("chat-1", "bob", "second", at.Add(time.Minute)))
	req.NoError(err)
	_, err = repository.CreateMessage(textMessage("chat-2", "carol", "elsewhere", at))
	req.NoError(err)

	messages, _, err := repository.GetMessages("chat-1", nil)
	req.NoError(err)
	req.Equal([]domain.Message{second, first}, messages)
}

func Test_GetMessages_Paginates_With_Cursor(t *testing.T) {
	req := require.New(t)
	limit := 2
	repository := NewMessageRepository(openTestDB(t), logs.GetLoggerFromLevel(slog.LevelDebug), &limit)
	at := time.Now().UTC()
	var created []domain.Message
	for i, author := range []domain.UserID{"alice", "bob", "clara"} {
		message, err := repository.CreateMessage(textMessage("chat-1", author, "this message will self destruct", at.Add(time.Duration(i)*time.Minute)))
		req.NoError(err)
		created = append(created, message)
	}

	// First page holds the two newest messages
	page, cursor, err := repository.GetMessages("chat-1", nil)
	req.NoError(err)
	req.Equal([]domain.Message{created[2], created[1]}, page)
	req.NotNil(cursor)

	// Second page resumes right after the cursor
	page, cursor, err = repository.GetMessages("chat-1", cursor)
	req.NoError(err)
	req.Equal([]domain.Message{created[0]}, page)
	req.Nil(cursor)
}

func Test_MarkRead_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), logs.GetLoggerFromLevel(slog.LevelDebug), nil)
	stored, err := repository.CreateMessage(textMessage("chat-1", "alice", "hello", time.Now().UTC()))
	req.NoError(err)

	_, err = repository.MarkRead(stored.ID, "bob")
	req.NoError(err)
	updated, err := repository.MarkRead(stored.ID, "bob")
	req.NoError(err)

	req.Equal([]domain.UserID{"alice", "bob"}, updated.ReadBy)
	fetched, err := repository.GetMessage(stored.ID)
	req.NoError(err)
	req.Equal([]domain.UserID{"alice", "bob"}, fetched.ReadBy)
}

func Test_MarkRead_Unknown_Message(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), logs.GetLoggerFromLevel(slog.LevelDebug), nil)

	_, err := repository.MarkRead("missing", "bob")

	req.ErrorIs(err, errors.ErrMessageNotFound)
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_MarkChatRead_And_CountUnread(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), logs.GetLoggerFromLevel(slog.LevelDebug), nil)
	at := time.Now().UTC()
	for i := 0; i < 3; i++ {
		_, err := repository.CreateMessage(textMessage("chat-1", "alice", "ping", at.Add(time.Duration(i)*time.Second)))
		req.NoError(err)
	}

	unread, err := repository.CountUnread("chat-1", "bob")
	req.NoError(err)
	req.Equal(3, unread)
	unread, err = repository.CountUnread("chat-1", "alice")
	req.NoError(err)
	req.Zero(unread)

	marked, err := repository.MarkChatRead("chat-1", "bob")
	req.NoError(err)
	req.Equal(3, marked)

	marked, err = repository.MarkChatRead("chat-1", "bob")
	req.NoError(err)
	req.Zero(marked)
	unread, err = repository.CountUnread("chat-1", "bob")
	req.NoError(err)
	req.Zero(unread)
}

func Test_MarkRead_Concurrent_Readers_Are_All_Kept(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), logs.GetLoggerFromLevel(slog.LevelDebug), nil)
	stored, err := repository.CreateMessage(textMessage("chat-1", "alice", "hello", time.Now().UTC()))
	req.NoError(err)

	// Given eight readers acknowledging the same message at once
	readers := make([]domain.UserID, 8)
	for i := range readers {
		readers[i] = domain.UserID(fmt.Sprintf("reader-%d", i))
	}
	var wg sync.WaitGroup
	for _, userID := range readers {
		wg.Add(1)
		go func(userID domain.UserID) {
			defer wg.Done()
			_, err := repository.MarkRead(stored.ID, userID)
			assert.NoError(t, err)
		}(userID)
	}
	wg.Wait()

	// Then every one of them is in the read-by set
	fetched, err := repository.GetMessage(stored.ID)
	req.NoError(err)
	req.ElementsMatch(append([]domain.UserID{"alice"}, readers...), fetched.ReadBy)
}

func Test_MarkChatRead_Keeps_Concurrent_MarkRead(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), logs.GetLoggerFromLevel(slog.LevelDebug), nil)
	at := time.Now().UTC()
	var ids []domain.MessageID
	for i := 0; i < 20; i++ {
		stored, err := repository.CreateMessage(textMessage("chat-1", "alice", "ping", at.Add(time.Duration(i)*time.Millisecond)))
		req.NoError(err)
		ids = append(ids, stored.ID)
	}

	// When bob reads the whole chat while carol reads message by message
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		marked, err := repository.MarkChatRead("chat-1", "bob")
		assert.NoError(t, err)
		assert.Equal(t, len(ids), marked)
	}()
	go func() {
		defer wg.Done()
		for _, id := range ids {
			_, err := repository.MarkRead(id, "carol")
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	// Then neither reader is lost on any message
	for _, id := range ids {
		fetched, err := repository.GetMessage(id)
		req.NoError(err)
		req.ElementsMatch([]domain.UserID{"alice", "bob", "carol"}, fetched.ReadBy)
	}
}

func Test_MarkChatRead_Spans_Several_Transactions(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), logs.GetLoggerFromLevel(slog.LevelDebug), nil)
	at := time.Now().UTC()
	total := markChatReadChunk*2 + 7
	for i := 0; i < total; i++ {
		_, err := repository.CreateMessage(textMessage("chat-1", "alice", "ping", at.Add(time.Duration(i)*time.Microsecond)))
		req.NoError(err)
	}
	_, err := repository.CreateMessage(textMessage("chat-2", "alice", "elsewhere", at))
	req.NoError(err)

	marked, err := repository.MarkChatRead("chat-1", "bob")

	req.NoError(err)
	req.Equal(total, marked)
	unread, err := repository.CountUnread("chat-1", "bob")
	req.NoError(err)
	req.Zero(unread)
	unread, err = repository.CountUnread("chat-2", "bob")
	req.NoError(err)
	req.Equal(1, unread)
}
