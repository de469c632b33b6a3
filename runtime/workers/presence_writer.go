package workers

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/observability"
	"chat-hub/repositories"
	"context"
	"log/slog"
)

var _ contract.Worker = (*PresenceWriterWorker)(nil)

// PresenceWriterWorker applies presence edges to the durable online flag,
// one at a time and in the order the hub detected them.
// A failed write is logged and dropped, the in-memory presence stays authoritative.
type PresenceWriterWorker struct {
	log            *slog.Logger
	userRepository repositories.IUserRepository
	presenceEvents <-chan domain.PresenceEvent
	monitor        *observability.Monitor
}

func NewPresenceWriterWorker(
	log *slog.Logger,
	userRepository repositories.IUserRepository,
	presenceEvents <-chan domain.PresenceEvent,
	monitor *observability.Monitor,
) *PresenceWriterWorker {
	return &PresenceWriterWorker{
		log:            log,
		userRepository: userRepository,
		presenceEvents: presenceEvents,
		monitor:        monitor,
	}
}

func (w *PresenceWriterWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping presence writer")
			return nil
		case evt, ok := <-w.presenceEvents:
			if !ok {
				w.log.Debug("Presence channel is closed")
				return nil
			}
			w.write(evt)
		}
	}
}

func (w *PresenceWriterWorker) write(evt domain.PresenceEvent) {
	if err := w.userRepository.SetUserOnline(evt.UserID, evt.Online(), evt.At); err != nil {
		w.log.Error("Presence not persisted", "user_id", evt.UserID, "status", evt.Status, "error", err)
		w.monitor.IncrPersistenceErrors()
		return
	}
	w.monitor.IncrPresenceWrites()
	w.log.Debug("Presence persisted", "user_id", evt.UserID, "status", evt.Status)
}
