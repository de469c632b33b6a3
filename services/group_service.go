package services

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/repositories"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"
)

type JoinAction string

const (
	ActionAccept JoinAction = "accept"
	ActionReject JoinAction = "reject"
)

type IGroupService interface {
	CreateGroup(ctx context.Context, admin domain.UserID, name string, members []domain.UserID) (domain.Chat, error)
	RequestToJoin(ctx context.Context, userID domain.UserID, groupID domain.ChatID) error
	HandleJoinRequest(ctx context.Context, admin domain.UserID, groupID domain.ChatID, userID domain.UserID, action JoinAction) (domain.Chat, error)
	AddMember(ctx context.Context, admin domain.UserID, groupID domain.ChatID, userID domain.UserID) (domain.Chat, error)
	UpdateGroupImage(ctx context.Context, admin domain.UserID, groupID domain.ChatID, imageURL string) (domain.Chat, error)
	LeaveGroup(ctx context.Context, userID domain.UserID, groupID domain.ChatID) (deleted bool, err error)
	GetGroup(groupID domain.ChatID) (domain.Chat, error)
	PublicGroups(userID domain.UserID) ([]domain.Chat, error)
	MyGroupRequests(admin domain.UserID) ([]domain.Chat, error)
}

type GroupService struct {
	log            *slog.Logger
	chatRepository repositories.IChatRepository
	hub            contract.IHub
	notifier       *Notifier
}

func NewGroupService(log *slog.Logger, chatRepository repositories.IChatRepository, hub contract.IHub, notifier *Notifier) *GroupService {
	return &GroupService{
		log:            log,
		chatRepository: chatRepository,
		hub:            hub,
		notifier:       notifier,
	}
}

// CreateGroup makes the creator the admin and first participant.
// Every other member is told it has been added.
func (s *GroupService) CreateGroup(ctx context.Context, admin domain.UserID, name string, members []domain.UserID) (domain.Chat, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Chat{}, fmt.Errorf("%w: groupName is required", errors.ErrValidation)
	}
	participants := append([]domain.UserID{admin}, lo.Without(lo.Uniq(lo.Compact(members)), admin)...)

	group, err := s.chatRepository.CreateChat(domain.Chat{
		IsGroupChat:  true,
		GroupName:    name,
		GroupAdmin:   admin,
		Participants: participants,
	})
	if err != nil {
		return domain.Chat{}, err
	}

	s.notifier.NotifyUsers(ctx, group.Others(admin), event.AddedToGroup, group)
	return group, nil
}

func (s *GroupService) RequestToJoin(ctx context.Context, userID domain.UserID, groupID domain.ChatID) error {
	group, err := s.mutateGroup(groupID, func(group *domain.Chat) error {
		if group.HasParticipant(userID) {
			return fmt.Errorf("%w: already a member", errors.ErrConflict)
		}
		if group.HasRequested(userID) {
			return fmt.Errorf("%w: request already sent", errors.ErrConflict)
		}
		group.JoinRequests = append(group.JoinRequests, userID)
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Notify(ctx, domain.ToUser(group.GroupAdmin), event.GroupRequest, event.GroupRequestPayload{
		GroupID:   group.ID,
		UserID:    userID,
		GroupName: group.GroupName,
	})
	return nil
}

func (s *GroupService) HandleJoinRequest(ctx context.Context, admin domain.UserID, groupID domain.ChatID, userID domain.UserID, action JoinAction) (domain.Chat, error) {
	if action != ActionAccept && action != ActionReject {
		return domain.Chat{}, fmt.Errorf("%w: action must be accept or reject", errors.ErrValidation)
	}
	status := event.RequestRejected
	if action == ActionAccept {
		status = event.RequestAccepted
	}
	group, err := s.mutateAsAdmin(admin, groupID, func(group *domain.Chat) error {
		if !group.RemoveRequest(userID) {
			return fmt.Errorf("%w: no such request", errors.ErrValidation)
		}
		if action == ActionAccept {
			group.AddParticipant(userID)
		}
		return nil
	})
	if err != nil {
		return domain.Chat{}, err
	}

	s.notifier.Notify(ctx, domain.ToUser(userID), event.RequestHandled, event.RequestHandledPayload{
		GroupID:   group.ID,
		Status:    status,
		GroupName: group.GroupName,
	})
	if status == event.RequestAccepted {
		s.notifier.Notify(ctx, domain.ToUser(userID), event.AddedToGroup, group)
	}
	return group, nil
}

func (s *GroupService) AddMember(ctx context.Context, admin domain.UserID, groupID domain.ChatID, userID domain.UserID) (domain.Chat, error) {
	if userID == "" {
		return domain.Chat{}, fmt.Errorf("%w: userId is required", errors.ErrValidation)
	}
	group, err := s.mutateAsAdmin(admin, groupID, func(group *domain.Chat) error {
		if !group.AddParticipant(userID) {
			return fmt.Errorf("%w: user already in group", errors.ErrConflict)
		}
		return nil
	})
	if err != nil {
		return domain.Chat{}, err
	}

	s.notifier.Notify(ctx, domain.ToUser(userID), event.AddedToGroup, group)
	return group, nil
}

func (s *GroupService) UpdateGroupImage(ctx context.Context, admin domain.UserID, groupID domain.ChatID, imageURL string) (domain.Chat, error) {
	if strings.TrimSpace(imageURL) == "" {
		return domain.Chat{}, fmt.Errorf("%w: imageUrl is required", errors.ErrValidation)
	}
	group, err := s.mutateAsAdmin(admin, groupID, func(group *domain.Chat) error {
		group.GroupImage = imageURL
		return nil
	})
	if err != nil {
		return domain.Chat{}, err
	}

	s.notifier.NotifyUsers(ctx, group.Participants, event.GroupUpdated, group)
	return group, nil
}

// LeaveGroup removes the user and unsubscribes its live connections from the room.
// An admin leaving hands the group to the first remaining participant,
// the last participant leaving deletes it. Pending join requests are left as they are.
func (s *GroupService) LeaveGroup(ctx context.Context, userID domain.UserID, groupID domain.ChatID) (bool, error) {
	group, err := s.mutateGroup(groupID, func(group *domain.Chat) error {
		if !group.HasParticipant(userID) {
			return fmt.Errorf("%w: not a member of this group", errors.ErrValidation)
		}
		group.RemoveParticipant(userID)
		if group.GroupAdmin == userID && len(group.Participants) > 0 {
			group.GroupAdmin = group.Participants[0]
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	deleted := len(group.Participants) == 0

	s.unsubscribe(ctx, userID, group.ID.Room())
	if !deleted {
		s.notifier.NotifyUsers(ctx, group.Participants, event.UserLeftGroup, event.UserLeftGroupPayload{
			GroupID: group.ID,
			UserID:  userID,
		})
	}
	return deleted, nil
}

func (s *GroupService) unsubscribe(ctx context.Context, userID domain.UserID, roomID domain.RoomID) {
	handles, err := s.hub.Connections(ctx, userID)
	if err != nil {
		s.log.Warn("Unable to list connections", "user_id", userID, "error", err)
		return
	}
	for _, handle := range handles {
		if err := s.hub.Leave(ctx, handle.ID, roomID); err != nil {
			s.log.Warn("Unable to leave room", "conn_id", handle.ID, "room_id", roomID, "error", err)
		}
	}
}

func (s *GroupService) GetGroup(groupID domain.ChatID) (domain.Chat, error) {
	if groupID == "" {
		return domain.Chat{}, fmt.Errorf("%w: groupId is required", errors.ErrValidation)
	}
	group, err := s.chatRepository.GetChat(groupID)
	if err != nil {
		return domain.Chat{}, err
	}
	if !group.IsGroupChat {
		return domain.Chat{}, fmt.Errorf("%w: group %s", errors.ErrNotFound, groupID)
	}
	return group, nil
}

// PublicGroups lists the groups the user could ask to join.
func (s *GroupService) PublicGroups(userID domain.UserID) ([]domain.Chat, error) {
	groups, err := s.chatRepository.ListGroups()
	if err != nil {
		return nil, err
	}
	return lo.Filter(groups, func(group domain.Chat, _ int) bool {
		return !group.HasParticipant(userID)
	}), nil
}

// MyGroupRequests lists the groups administered by the user that have pending requests.
func (s *GroupService) MyGroupRequests(admin domain.UserID) ([]domain.Chat, error) {
	groups, err := s.chatRepository.ListGroups()
	if err != nil {
		return nil, err
	}
	return lo.Filter(groups, func(group domain.Chat, _ int) bool {
		return group.IsAdmin(admin) && len(group.JoinRequests) > 0
	}), nil
}

// mutateGroup applies change to the stored group in a single repository
// transaction. change may run more than once and must only touch the group.
func (s *GroupService) mutateGroup(groupID domain.ChatID, change func(group *domain.Chat) error) (domain.Chat, error) {
	if groupID == "" {
		return domain.Chat{}, fmt.Errorf("%w: groupId is required", errors.ErrValidation)
	}
	return s.chatRepository.UpdateChat(groupID, func(group *domain.Chat) error {
		if !group.IsGroupChat {
			return fmt.Errorf("%w: group %s", errors.ErrNotFound, groupID)
		}
		return change(group)
	})
}

func (s *GroupService) mutateAsAdmin(admin domain.UserID, groupID domain.ChatID, change func(group *domain.Chat) error) (domain.Chat, error) {
	return s.mutateGroup(groupID, func(group *domain.Chat) error {
		if !group.IsAdmin(admin) {
			return fmt.Errorf("%w: only the group admin can do this", errors.ErrForbidden)
		}
		return change(group)
	})
}
