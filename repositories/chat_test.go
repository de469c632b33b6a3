package repositories

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CreateChat_Direct_Is_Unique_Per_Pair(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t))

	chat, err := repository.CreateChat(domain.Chat{Participants: []domain.UserID{"alice", "bob"}})
	req.NoError(err)
	req.NotEmpty(chat.ID)

	// The pair is found in both orders
	found, ok, err := repository.FindDirectChat("bob", "alice")
	req.NoError(err)
	req.True(ok)
	req.Equal(chat.ID, found.ID)

	_, err = repository.CreateChat(domain.Chat{Participants: []domain.UserID{"bob", "alice"}})
	req.ErrorIs(err, errors.ErrConflict)

	_, ok, err = repository.FindDirectChat("alice", "carol")
	req.NoError(err)
	req.False(ok)
}

func Test_CreateChat_Direct_Needs_Two_Participants(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t))

	_, err := repository.CreateChat(domain.Chat{Participants: []domain.UserID{"alice", "alice"}})

	req.ErrorIs(err, errors.ErrValidation)
}

func Test_UpdateChat_Keeps_Member_Index(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t))
	group, err := repository.CreateChat(domain.Chat{
		IsGroupChat:  true,
		GroupName:    "gophers",
		GroupAdmin:   "alice",
		Participants: []domain.UserID{"alice", "bob"},
	})
	req.NoError(err)

	// When bob leaves and carol joins
	updated, err := repository.UpdateChat(group.ID, func(chat *domain.Chat) error {
		chat.RemoveParticipant("bob")
		chat.AddParticipant("carol")
		return nil
	})
	req.NoError(err)
	req.ElementsMatch([]domain.UserID{"alice", "carol"}, updated.Participants)

	// Then the per-user listings follow
	bobChats, err := repository.ListChatsForUser("bob")
	req.NoError(err)
	req.Empty(bobChats)
	carolChats, err := repository.ListChatsForUser("carol")
	req.NoError(err)
	req.Len(carolChats, 1)
	req.Equal(group.ID, carolChats[0].ID)
}

func Test_ListChatsForUser_Most_Recent_First(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t))
	older, err := repository.CreateChat(domain.Chat{Participants: []domain.UserID{"alice", "bob"}})
	req.NoError(err)
	newer, err := repository.CreateChat(domain.Chat{Participants: []domain.UserID{"alice", "carol"}})
	req.NoError(err)

	// A new message bumps the older chat to the top
	req.NoError(repository.UpdateConversationLastMessage(older.ID, "m1", time.Now().Add(time.Hour)))

	chats, err := repository.ListChatsForUser("alice")
	req.NoError(err)
	req.Len(chats, 2)
	req.Equal(older.ID, chats[0].ID)
	req.Equal(newer.ID, chats[1].ID)
	req.NotNil(chats[0].LastMessage)
	req.Equal(domain.MessageID("m1"), *chats[0].LastMessage)
}

func Test_UpdateConversationLastMessage_Unknown_Chat(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t))

	err := repository.UpdateConversationLastMessage("missing", "m1", time.Now())

	req.ErrorIs(err, errors.ErrChatNotFound)
}

func Test_UpdateChat_Removes_Emptied_Chat(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t))
	group, err := repository.CreateChat(domain.Chat{IsGroupChat: true, GroupName: "g", GroupAdmin: "alice", Participants: []domain.UserID{"alice"}})
	req.NoError(err)
	_, err = repository.CreateChat(domain.Chat{Participants: []domain.UserID{"alice", "bob"}})
	req.NoError(err)

	groups, err := repository.ListGroups()
	req.NoError(err)
	req.Len(groups, 1)

	// When the last participant leaves
	updated, err := repository.UpdateChat(group.ID, func(chat *domain.Chat) error {
		chat.RemoveParticipant("alice")
		return nil
	})
	req.NoError(err)
	req.Empty(updated.Participants)

	// Then the chat and its indexes are gone
	_, err = repository.GetChat(group.ID)
	req.ErrorIs(err, errors.ErrChatNotFound)
	chats, err := repository.ListChatsForUser("alice")
	req.NoError(err)
	req.Len(chats, 1)
	groups, err = repository.ListGroups()
	req.NoError(err)
	req.Empty(groups)
}

func Test_UpdateChat_Aborts_On_Mutation_Error(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t))
	group, err := repository.CreateChat(domain.Chat{IsGroupChat: true, GroupName: "g", GroupAdmin: "alice", Participants: []domain.UserID{"alice"}})
	req.NoError(err)

	// When the mutation refuses halfway
	_, err = repository.UpdateChat(group.ID, func(chat *domain.Chat) error {
		chat.AddParticipant("bob")
		return errors.ErrForbidden
	})

	// Then the error comes back untouched and nothing is stored
	req.ErrorIs(err, errors.ErrForbidden)
	req.NotErrorIs(err, errors.ErrPersistence)
	stored, err := repository.GetChat(group.ID)
	req.NoError(err)
	req.Equal([]domain.UserID{"alice"}, stored.Participants)

	_, err = repository.UpdateChat("missing", func(*domain.Chat) error { return nil })
	req.ErrorIs(err, errors.ErrChatNotFound)
}

func Test_UpdateChat_Concurrent_Join_Requests_Are_All_Kept(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t))
	group, err := repository.CreateChat(domain.Chat{IsGroupChat: true, GroupName: "g", GroupAdmin: "alice", Participants: []domain.UserID{"alice"}})
	req.NoError(err)

	// Given many users asking to join at the same time
	requesters := make([]domain.UserID, 16)
	for i := range requesters {
		requesters[i] = domain.UserID(fmt.Sprintf("user-%02d", i))
	}
	var wg sync.WaitGroup
	errs := make(chan error, len(requesters))
	for _, userID := range requesters {
		wg.Add(1)
		go func(userID domain.UserID) {
			defer wg.Done()
			_, err := repository.UpdateChat(group.ID, func(chat *domain.Chat) error {
				chat.JoinRequests = append(chat.JoinRequests, userID)
				return nil
			})
			errs <- err
		}(userID)
	}
	wg.Wait()
	close(errs)

	// Then no request is lost to a concurrent write
	for err := range errs {
		req.NoError(err)
	}
	stored, err := repository.GetChat(group.ID)
	req.NoError(err)
	req.ElementsMatch(requesters, stored.JoinRequests)
}

func Test_UpdateChat_Keeps_Concurrent_Last_Message(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t))
	group, err := repository.CreateChat(domain.Chat{IsGroupChat: true, GroupName: "g", GroupAdmin: "alice", Participants: []domain.UserID{"alice"}})
	req.NoError(err)

	// When a rename races with a new message
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			_, err := repository.UpdateChat(group.ID, func(chat *domain.Chat) error {
				chat.GroupName = fmt.Sprintf("g-%d", i)
				return nil
			})
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			err := repository.UpdateConversationLastMessage(group.ID, domain.MessageID(fmt.Sprintf("m-%d", i)), time.Now())
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	// Then both writers' last values survive
	stored, err := repository.GetChat(group.ID)
	req.NoError(err)
	req.Equal("g-19", stored.GroupName)
	req.NotNil(stored.LastMessage)
	req.Equal(domain.MessageID("m-19"), *stored.LastMessage)
}
