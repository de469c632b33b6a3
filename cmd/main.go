package main

import (
	"chat-hub/auth"
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/infrastructure/api"
	"chat-hub/infrastructure/websocket"
	"chat-hub/observability"
	"chat-hub/repositories"
	"chat-hub/runtime"
	"chat-hub/runtime/workers"
	"chat-hub/services"
	"chat-hub/session"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and owns the shutdown order, so deferred
// cleanups such as closing badger always execute.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	if !strings.EqualFold(config.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	userRepository := repositories.NewUserRepository(db)
	chatRepository := repositories.NewChatRepository(db)
	messageRepository := repositories.NewMessageRepository(db, log, config.LimitMessages)

	// 3. Nobody is connected yet: a previous crash may have left users online
	count, err := userRepository.MarkAllOffline(time.Now().UTC())
	if err != nil {
		return fmt.Errorf("presence reconciliation failed: %w", err)
	}
	log.Info("Presence reconciled", "users_marked_offline", count)

	// 4. Hub & supervised workers
	monitor := observability.NewMonitor()
	presenceEvents := make(chan domain.PresenceEvent, config.PresenceBufferSize)
	hub := runtime.NewHub(log, monitor, presenceEvents, config.CommandBufferSize, nil)

	// The supervisor outlives the signal: connections are closed first,
	// and their presence edges still need the hub and the writer.
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		hub,
		workers.NewPresenceWriterWorker(log, userRepository, presenceEvents, monitor),
		workers.NewMonitoringWorker(log, hub, monitor, config.MetricInterval),
		workers.NewChannelCapacityWorker(log, []workers.NamedChannel{
			{Name: "presence", Channel: presenceEvents},
		}, config.BacklogWarnPercent, config.MetricInterval),
	)
	supCtx, stopWorkers := context.WithCancel(context.Background())
	supervised := make(chan struct{})
	go func() {
		sup.Run(supCtx)
		close(supervised)
	}()
	defer func() {
		stopWorkers()
		<-supervised
		log.Info("Workers stopped")
	}()

	// 5. Services
	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)
	notifier := services.NewNotifier(log, hub)
	chatService := services.NewChatService(log, chatRepository, messageRepository, userRepository, notifier, monitor)
	groupService := services.NewGroupService(log, chatRepository, hub, notifier)

	// 6. Transports
	sockets := websocket.NewServer(
		log,
		tokens,
		session.NewHandler(log, hub, chatService, config.CleanupTimeout),
		hub,
		monitor,
		config.Sockets(),
	)
	router := api.NewRouter(log, tokens, api.Handlers{
		Auth:    api.NewAuthHandler(log, services.NewAuthService(userRepository, tokens)),
		Users:   api.NewUserHandler(log, services.NewUserService(userRepository)),
		Chats:   api.NewChatHandler(log, chatService),
		Groups:  api.NewGroupHandler(log, groupService),
		Debug:   api.NewDebugHandler(log, hub, monitor, db),
		Sockets: sockets,
	})

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// 7. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting chat hub", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err = <-errChan:
		return err
	}

	// 9. Stop accepting, then release every live connection.
	// Workers and badger are stopped by the defers above.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown incomplete", "error", err)
	}
	if err = sockets.Shutdown(shutdownCtx); err != nil {
		log.Warn("Some connections were not released in time", "error", err)
	}
	log.Info("Program stopped cleanly")
	return nil
}
