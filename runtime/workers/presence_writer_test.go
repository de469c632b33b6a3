package workers

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/mocks"
	"chat-hub/observability"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestPresenceWriter_Persists_Edges_In_Order(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIUserRepository(ctrl)
	monitor := observability.NewMonitor()
	events := make(chan domain.PresenceEvent, 3)
	at := time.Now().UTC()

	// Given alice goes online, bob goes online, alice goes offline
	events <- domain.PresenceEvent{UserID: "alice", Status: domain.StatusOnline, At: at}
	events <- domain.PresenceEvent{UserID: "bob", Status: domain.StatusOnline, At: at}
	events <- domain.PresenceEvent{UserID: "alice", Status: domain.StatusOffline, At: at.Add(time.Minute)}
	close(events)

	// Then the writes follow the same order, the failing one does not stop the others
	gomock.InOrder(
		repository.EXPECT().SetUserOnline(domain.UserID("alice"), true, at).Return(nil),
		repository.EXPECT().SetUserOnline(domain.UserID("bob"), true, at).Return(errors.ErrUserNotFound),
		repository.EXPECT().SetUserOnline(domain.UserID("alice"), false, at.Add(time.Minute)).Return(nil),
	)

	worker := NewPresenceWriterWorker(logs.GetLoggerFromLevel(slog.LevelDebug), repository, events, monitor)
	req.NoError(worker.Run(context.Background()))

	snapshot := monitor.Snapshot()
	req.Equal(uint64(2), snapshot.PresenceWrites)
	req.Equal(uint64(1), snapshot.PersistenceErrors)
}

func TestPresenceWriter_Stops_On_Cancel(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIUserRepository(ctrl)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	worker := NewPresenceWriterWorker(logs.GetLoggerFromLevel(slog.LevelDebug), repository, make(chan domain.PresenceEvent), observability.NewMonitor())

	req.NoError(worker.Run(ctx))
}
