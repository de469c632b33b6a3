package services

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"context"
	"log/slog"
)

// Notifier pushes real-time events produced by a REST or socket action.
// Notification is best-effort: the action already succeeded in storage.
type Notifier struct {
	log *slog.Logger
	hub contract.IHub
}

func NewNotifier(log *slog.Logger, hub contract.IHub) *Notifier {
	return &Notifier{log: log, hub: hub}
}

func (n *Notifier) Notify(ctx context.Context, target domain.Target, name event.Name, data any) int {
	frame, err := event.Encode(name, data)
	if err != nil {
		n.log.Error("Unable to encode event", "event", name, "error", err)
		return 0
	}
	delivered, err := n.hub.Deliver(ctx, target, frame)
	if err != nil {
		n.log.Warn("Unable to deliver event", "event", name, "error", err)
		return 0
	}
	return delivered
}

// NotifyUsers sends the same event to every connection of each user.
func (n *Notifier) NotifyUsers(ctx context.Context, userIDs []domain.UserID, name event.Name, data any) {
	for _, userID := range userIDs {
		n.Notify(ctx, domain.ToUser(userID), name, data)
	}
}
