package websocket

import (
	"chat-hub/auth"
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/observability"
	"chat-hub/session"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/samber/lo"
)

type LimitMode string

const (
	LimitReject LimitMode = "reject"
	LimitCycle  LimitMode = "cycle"
)

var errTooManyConnections = fmt.Errorf("too many active connections")

type Config struct {
	AuthTimeout           time.Duration
	MaxConnectionsPerUser int
	LimitMode             LimitMode
	InsecureSkipVerify    bool
	Connection            ConnectionConfig
}

// Server upgrades HTTP requests to websockets and hands every authenticated
// connection to a session. It keeps track of live connections to cycle or shut them down.
type Server struct {
	log      *slog.Logger
	verifier contract.AuthVerifier
	sessions *session.Handler
	hub      contract.IHub
	monitor  *observability.Monitor
	config   Config

	mu      sync.Mutex
	conns   map[domain.ConnectionID]*Connection
	closing bool
	wg      sync.WaitGroup
}

func NewServer(
	log *slog.Logger,
	verifier contract.AuthVerifier,
	sessions *session.Handler,
	hub contract.IHub,
	monitor *observability.Monitor,
	config Config,
) *Server {
	return &Server{
		log:      log,
		verifier: verifier,
		sessions: sessions,
		hub:      hub,
		monitor:  monitor,
		config:   config,
		conns:    make(map[domain.ConnectionID]*Connection),
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.isClosing() {
		http.Error(w, "Server shutting down", http.StatusServiceUnavailable)
		return
	}

	// A credential given at upgrade time is checked before upgrading,
	// otherwise the first frame must carry it.
	var userID domain.UserID
	if credential := auth.BearerToken(r); credential != "" {
		id, err := s.verifier.Verify(credential)
		if err != nil {
			s.monitor.IncrAuthFailures()
			s.log.Debug("Upgrade refused", "remote_addr", r.RemoteAddr, "error", err)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		userID = id
		if err = s.admit(r.Context(), userID); err != nil {
			s.refuse(w, userID, err)
			return
		}
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: s.config.InsecureSkipVerify,
	})
	if err != nil {
		s.log.Error("Failed to accept websocket connection", "error", err)
		return
	}

	if userID == "" {
		if userID, err = s.authenticate(r.Context(), conn); err != nil {
			s.monitor.IncrAuthFailures()
			s.log.Debug("Authentication failed", "remote_addr", r.RemoteAddr, "error", err)
			s.rejectAuth(r.Context(), conn, "authentication failed")
			return
		}
		if err = s.admit(r.Context(), userID); err != nil {
			s.monitor.IncrConnectionsRejected()
			_ = conn.Close(websocket.StatusTryAgainLater, err.Error())
			return
		}
	}

	s.serve(r.Context(), userID, conn)
}

// serve blocks until the connection is released, so the cleanup below
// runs on every exit path of the handler.
func (s *Server) serve(ctx context.Context, userID domain.UserID, wsConn *websocket.Conn) {
	handle := domain.NewConnectionHandle(userID)
	conn := NewConnection(ctx, s.log, handle, wsConn, s.config.Connection, s.monitor)

	sess, err := s.sessions.Open(ctx, handle, conn)
	if err != nil {
		s.log.Error("Failed to open session", "user_id", userID, "error", err)
		conn.Close(websocket.StatusInternalError, "session unavailable")
		return
	}
	defer sess.Close()
	// The hub may already have evicted conn, in which case sess closes here
	conn.SetOnMessageHandler(sess.Dispatch)
	conn.SetOnCloseHandler(sess.Close)

	// Handlers are set before the connection becomes visible to cycling and shutdown.
	if !s.track(conn) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer s.untrack(handle.ID)

	s.monitor.IncrConnectionsAccepted()
	s.log.Info("User connection established", "user_id", userID, "conn_id", handle.ID)
	conn.Run()
	<-conn.Done()
}

// authenticate waits for {"event":"authenticate","data":{"token":…}} as the first frame.
func (s *Server) authenticate(ctx context.Context, conn *websocket.Conn) (domain.UserID, error) {
	type readResult struct {
		frame []byte
		err   error
	}
	result := make(chan readResult, 1)
	go func() {
		_, frame, err := conn.Read(ctx)
		result <- readResult{frame: frame, err: err}
	}()

	timer := time.NewTimer(s.config.AuthTimeout)
	defer timer.Stop()
	select {
	case <-timer.C:
		return "", fmt.Errorf("%w: no authenticate frame within %s", errors.ErrAuthentication, s.config.AuthTimeout)
	case res := <-result:
		if res.err != nil {
			return "", fmt.Errorf("%w: %v", errors.ErrAuthentication, res.err)
		}
		intent, err := session.Decode(res.frame)
		if err != nil || intent.Name != event.Authenticate {
			return "", fmt.Errorf("%w: first frame must be %s", errors.ErrAuthentication, event.Authenticate)
		}
		return s.verifier.Verify(intent.Token())
	}
}

func (s *Server) rejectAuth(ctx context.Context, conn *websocket.Conn, message string) {
	if frame, err := event.Encode(event.AuthError, event.AuthErrorPayload{Message: message}); err == nil {
		writeCtx, cancel := context.WithTimeout(ctx, s.config.Connection.WriteTimeout)
		_ = conn.Write(writeCtx, websocket.MessageText, frame)
		cancel()
	}
	_ = conn.Close(websocket.StatusPolicyViolation, message)
}

// admit enforces the per-user connection limit: either refuse the newcomer
// or close the oldest connection of the user to make room.
func (s *Server) admit(ctx context.Context, userID domain.UserID) error {
	if s.config.MaxConnectionsPerUser <= 0 {
		return nil
	}
	handles, err := s.hub.Connections(ctx, userID)
	if err != nil {
		return err
	}
	if len(handles) < s.config.MaxConnectionsPerUser {
		return nil
	}

	s.log.Warn("User connection limit reached", "user_id", userID, "count", len(handles))
	switch s.config.LimitMode {
	case LimitCycle:
		excess := handles[:len(handles)-s.config.MaxConnectionsPerUser+1]
		for _, oldest := range excess {
			// Close returns once the old connection has left the hub
			if conn, ok := s.lookup(oldest.ID); ok {
				s.log.Info("Cycling connection: closing oldest", "user_id", userID, "conn_id", oldest.ID)
				conn.Close(websocket.StatusPolicyViolation, "connection cycled by new connection")
			}
		}
		return nil
	default:
		return errTooManyConnections
	}
}

func (s *Server) refuse(w http.ResponseWriter, userID domain.UserID, err error) {
	s.monitor.IncrConnectionsRejected()
	if errors.Is(err, errTooManyConnections) {
		http.Error(w, "Too Many Active Connections", http.StatusTooManyRequests)
		return
	}
	s.log.Error("Connection limiter failed", "user_id", userID, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (s *Server) track(conn *Connection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.conns[conn.Handle().ID] = conn
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(id domain.ConnectionID) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
	s.wg.Done()
}

func (s *Server) lookup(id domain.ConnectionID) (*Connection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn, ok := s.conns[id]
	return conn, ok
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

// Shutdown refuses new connections, closes the live ones and waits
// until each of them has run its cleanup, or ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	conns := lo.Values(s.conns)
	s.mu.Unlock()

	s.log.Info("Closing all active connections", "count", len(conns))
	for _, conn := range conns {
		go conn.Close(websocket.StatusGoingAway, "server shutting down")
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
