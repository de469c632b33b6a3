package services

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/mocks"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/mock/gomock"
)

type delivery struct {
	target domain.Target
	event  string
	data   gjson.Result
}

type groupFixture struct {
	chats   *mocks.MockIChatRepository
	hub     *mocks.MockIHub
	service *GroupService

	mu         sync.Mutex
	deliveries []delivery
}

func newGroupFixture(t *testing.T) *groupFixture {
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	f := &groupFixture{
		chats: mocks.NewMockIChatRepository(ctrl),
		hub:   mocks.NewMockIHub(ctrl),
	}
	f.service = NewGroupService(log, f.chats, f.hub, NewNotifier(log, f.hub))
	f.hub.EXPECT().
		Deliver(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, target domain.Target, frame []byte) (int, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.deliveries = append(f.deliveries, delivery{
				target: target,
				event:  gjson.GetBytes(frame, "event").String(),
				data:   gjson.GetBytes(frame, "data"),
			})
			return 1, nil
		}).
		AnyTimes()
	return f
}

func (f *groupFixture) sent() []delivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]delivery(nil), f.deliveries...)
}

// applyTo stands in for the repository transaction: mutate runs on a
// private copy of stored, which is left untouched.
func applyTo(stored domain.Chat) func(domain.ChatID, func(*domain.Chat) error) (domain.Chat, error) {
	return func(_ domain.ChatID, mutate func(*domain.Chat) error) (domain.Chat, error) {
		chat := stored.Clone()
		if err := mutate(&chat); err != nil {
			return domain.Chat{}, err
		}
		return chat, nil
	}
}

// replayedOn runs mutate once on a discarded copy first, as a transaction
// retried after a conflict would.
func replayedOn(stored domain.Chat) func(domain.ChatID, func(*domain.Chat) error) (domain.Chat, error) {
	return func(id domain.ChatID, mutate func(*domain.Chat) error) (domain.Chat, error) {
		lost := stored.Clone()
		_ = mutate(&lost)
		return applyTo(stored)(id, mutate)
	}
}

func group(admin domain.UserID, participants ...domain.UserID) domain.Chat {
	return domain.Chat{
		ID:           "g1",
		IsGroupChat:  true,
		GroupName:    "Climbing",
		GroupAdmin:   admin,
		Participants: participants,
	}
}

func TestGroupService_CreateGroup_Notifies_Members_But_Not_Creator(t *testing.T) {
	req := require.New(t)
	f := newGroupFixture(t)

	// Given members with duplicates and the creator listed again
	f.chats.EXPECT().
		CreateChat(gomock.Any()).
		DoAndReturn(func(chat domain.Chat) (domain.Chat, error) {
			req.Equal([]domain.UserID{"alice", "bob", "carol"}, chat.Participants)
			req.Equal(domain.UserID("alice"), chat.GroupAdmin)
			chat.ID = "g1"
			return chat, nil
		})

	// When alice creates the group
	created, err := f.service.CreateGroup(context.Background(), "alice", " Climbing ", []domain.UserID{"bob", "alice", "carol", "bob", ""})

	// Then bob and carol are told, alice is not
	req.NoError(err)
	req.Equal("Climbing", created.GroupName)
	sent := f.sent()
	req.Len(sent, 2)
	req.Equal(domain.ToUser("bob"), sent[0].target)
	req.Equal(domain.ToUser("carol"), sent[1].target)
	req.Equal("added_to_group", sent[0].event)
}

func TestGroupService_CreateGroup_Requires_Name(t *testing.T) {
	req := require.New(t)
	f := newGroupFixture(t)

	_, err := f.service.CreateGroup(context.Background(), "alice", "  ", nil)

	req.ErrorIs(err, errors.ErrValidation)
}

func TestGroupService_RequestToJoin(t *testing.T) {
	t.Run("queues the request and tells the admin", func(t *testing.T) {
		req := require.New(t)
		f := newGroupFixture(t)
		var stored domain.Chat
		f.chats.EXPECT().UpdateChat(domain.ChatID("g1"), gomock.Any()).
			DoAndReturn(func(id domain.ChatID, mutate func(*domain.Chat) error) (domain.Chat, error) {
				chat, err := applyTo(group("alice", "alice"))(id, mutate)
				stored = chat
				return chat, err
			})

		req.NoError(f.service.RequestToJoin(context.Background(), "dave", "g1"))

		req.Equal([]domain.UserID{"dave"}, stored.JoinRequests)
		sent := f.sent()
		req.Len(sent, 1)
		req.Equal(domain.ToUser("alice"), sent[0].target)
		req.Equal("group_request", sent[0].event)
		req.Equal("dave", sent[0].data.Get("userId").String())
		req.Equal("Climbing", sent[0].data.Get("groupName").String())
	})

	t.Run("already member or already requested is a conflict", func(t *testing.T) {
		req := require.New(t)
		f := newGroupFixture(t)
		pending := group("alice", "alice", "bob")
		pending.JoinRequests = []domain.UserID{"dave"}
		f.chats.EXPECT().UpdateChat(domain.ChatID("g1"), gomock.Any()).DoAndReturn(applyTo(pending)).Times(2)

		req.ErrorIs(f.service.RequestToJoin(context.Background(), "bob", "g1"), errors.ErrConflict)
		req.ErrorIs(f.service.RequestToJoin(context.Background(), "dave", "g1"), errors.ErrConflict)
		req.Empty(f.sent())
	})

	t.Run("a direct chat is not a group", func(t *testing.T) {
		req := require.New(t)
		f := newGroupFixture(t)
		direct := domain.Chat{ID: "c1", Participants: []domain.UserID{"a", "b"}}
		f.chats.EXPECT().UpdateChat(domain.ChatID("c1"), gomock.Any()).DoAndReturn(applyTo(direct))

		req.ErrorIs(f.service.RequestToJoin(context.Background(), "dave", "c1"), errors.ErrNotFound)
	})
}

func TestGroupService_HandleJoinRequest(t *testing.T) {
	pending := func() domain.Chat {
		g := group("alice", "alice")
		g.JoinRequests = []domain.UserID{"dave"}
		return g
	}

	t.Run("accept adds the participant and sends two events", func(t *testing.T) {
		req := require.New(t)
		f := newGroupFixture(t)
		f.chats.EXPECT().UpdateChat(domain.ChatID("g1"), gomock.Any()).DoAndReturn(applyTo(pending()))

		updated, err := f.service.HandleJoinRequest(context.Background(), "alice", "g1", "dave", ActionAccept)

		req.NoError(err)
		req.Equal([]domain.UserID{"alice", "dave"}, updated.Participants)
		req.Empty(updated.JoinRequests)
		sent := f.sent()
		req.Len(sent, 2)
		req.Equal("request_handled", sent[0].event)
		req.Equal("accepted", sent[0].data.Get("status").String())
		req.Equal("added_to_group", sent[1].event)
		req.Equal(domain.ToUser("dave"), sent[1].target)
	})

	t.Run("reject only drops the request", func(t *testing.T) {
		req := require.New(t)
		f := newGroupFixture(t)
		f.chats.EXPECT().UpdateChat(domain.ChatID("g1"), gomock.Any()).DoAndReturn(applyTo(pending()))

		updated, err := f.service.HandleJoinRequest(context.Background(), "alice", "g1", "dave", ActionReject)

		req.NoError(err)
		req.Equal([]domain.UserID{"alice"}, updated.Participants)
		sent := f.sent()
		req.Len(sent, 1)
		req.Equal("rejected", sent[0].data.Get("status").String())
	})

	t.Run("only the admin", func(t *testing.T) {
		req := require.New(t)
		f := newGroupFixture(t)
		f.chats.EXPECT().UpdateChat(domain.ChatID("g1"), gomock.Any()).DoAndReturn(applyTo(pending()))

		_, err := f.service.HandleJoinRequest(context.Background(), "dave", "g1", "dave", ActionAccept)

		req.ErrorIs(err, errors.ErrForbidden)
	})

	t.Run("no such request", func(t *testing.T) {
		req := require.New(t)
		f := newGroupFixture(t)
		f.chats.EXPECT().UpdateChat(domain.ChatID("g1"), gomock.Any()).DoAndReturn(applyTo(pending()))

		_, err := f.service.HandleJoinRequest(context.Background(), "alice", "g1", "erin", ActionAccept)

		req.ErrorIs(err, errors.ErrValidation)
	})

	t.Run("a replayed transaction applies the decision once", func(t *testing.T) {
		req := require.New(t)
		f := newGroupFixture(t)
		f.chats.EXPECT().UpdateChat(domain.ChatID("g1"), gomock.Any()).DoAndReturn(replayedOn(pending()))

		updated, err := f.service.HandleJoinRequest(context.Background(), "alice", "g1", "dave", ActionAccept)

		req.NoError(err)
		req.Equal([]domain.UserID{"alice", "dave"}, updated.Participants)
		req.Empty(updated.JoinRequests)
		sent := f.sent()
		req.Len(sent, 2)
		req.Equal("accepted", sent[0].data.Get("status").String())
	})

	t.Run("unknown action", func(t *testing.T) {
		req := require.New(t)
		f := newGroupFixture(t)

		_, err := f.service.HandleJoinRequest(context.Background(), "alice", "g1", "dave", "maybe")

		req.ErrorIs(err, errors.ErrValidation)
	})
}

func TestGroupService_AddMember_And_Image(t *testing.T) {
	req := require.New(t)
	f := newGroupFixture(t)
	ctx := context.Background()

	f.chats.EXPECT().UpdateChat(domain.ChatID("g1"), gomock.Any()).DoAndReturn(applyTo(group("alice", "alice", "bob"))).Times(3)

	// Adding an existing member is a conflict
	_, err := f.service.AddMember(ctx, "alice", "g1", "bob")
	req.ErrorIs(err, errors.ErrConflict)

	// Adding carol tells carol
	_, err = f.service.AddMember(ctx, "alice", "g1", "carol")
	req.NoError(err)

	// Changing the image tells every participant
	updated, err := f.service.UpdateGroupImage(ctx, "alice", "g1", "/uploads/g1.png")
	req.NoError(err)
	req.Equal("/uploads/g1.png", updated.GroupImage)

	sent := f.sent()
	req.Len(sent, 3)
	req.Equal(delivery{target: domain.ToUser("carol"), event: "added_to_group"}, delivery{target: sent[0].target, event: sent[0].event})
	req.Equal("group_updated", sent[1].event)
	req.Equal("/uploads/g1.png", sent[2].data.Get("groupImage").String())
}

func TestGroupService_LeaveGroup(t *testing.T) {
	t.Run("admin leaving promotes the first remaining participant", func(t *testing.T) {
		req := require.New(t)
		f := newGroupFixture(t)
		ctx := context.Background()
		handle := domain.ConnectionHandle{ID: "alice-phone", UserID: "alice"}
		withRequest := group("alice", "alice", "bob", "carol")
		withRequest.JoinRequests = []domain.UserID{"dave"}

		var stored domain.Chat
		f.chats.EXPECT().UpdateChat(domain.ChatID("g1"), gomock.Any()).
			DoAndReturn(func(id domain.ChatID, mutate func(*domain.Chat) error) (domain.Chat, error) {
				chat, err := replayedOn(withRequest)(id, mutate)
				stored = chat
				return chat, err
			})
		f.hub.EXPECT().Connections(ctx, domain.UserID("alice")).Return([]domain.ConnectionHandle{handle}, nil)
		f.hub.EXPECT().Leave(ctx, handle.ID, domain.RoomID("g1")).Return(nil)

		deleted, err := f.service.LeaveGroup(ctx, "alice", "g1")

		req.NoError(err)
		req.False(deleted)
		req.Equal(domain.UserID("bob"), stored.GroupAdmin)
		req.Equal([]domain.UserID{"bob", "carol"}, stored.Participants)
		req.Equal([]domain.UserID{"dave"}, stored.JoinRequests)
		sent := f.sent()
		req.Len(sent, 2)
		req.Equal("user_left_group", sent[0].event)
		req.Equal("alice", sent[0].data.Get("userId").String())
		req.Equal(domain.ToUser("bob"), sent[0].target)
		req.Equal(domain.ToUser("carol"), sent[1].target)
	})

	t.Run("last participant leaving deletes the group", func(t *testing.T) {
		req := require.New(t)
		f := newGroupFixture(t)
		ctx := context.Background()

		f.chats.EXPECT().UpdateChat(domain.ChatID("g1"), gomock.Any()).DoAndReturn(applyTo(group("alice", "alice")))
		f.hub.EXPECT().Connections(ctx, domain.UserID("alice")).Return(nil, nil)

		deleted, err := f.service.LeaveGroup(ctx, "alice", "g1")

		req.NoError(err)
		req.True(deleted)
		req.Empty(f.sent())
	})

	t.Run("not a member", func(t *testing.T) {
		req := require.New(t)
		f := newGroupFixture(t)
		f.chats.EXPECT().UpdateChat(domain.ChatID("g1"), gomock.Any()).DoAndReturn(applyTo(group("alice", "alice")))

		_, err := f.service.LeaveGroup(context.Background(), "bob", "g1")

		req.ErrorIs(err, errors.ErrValidation)
	})
}

func TestGroupService_Listings(t *testing.T) {
	req := require.New(t)
	f := newGroupFixture(t)
	mine := group("alice", "alice")
	mine.ID = "g1"
	mine.JoinRequests = []domain.UserID{"dave"}
	quiet := group("alice", "alice")
	quiet.ID = "g2"
	others := group("bob", "bob", "dave")
	others.ID = "g3"

	f.chats.EXPECT().ListGroups().Return([]domain.Chat{mine, quiet, others}, nil).Times(2)

	public, err := f.service.PublicGroups("dave")
	req.NoError(err)
	req.Equal([]domain.Chat{mine, quiet}, public)

	requests, err := f.service.MyGroupRequests("alice")
	req.NoError(err)
	req.Equal([]domain.Chat{mine}, requests)
}
