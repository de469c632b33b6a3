package websocket

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/observability"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

var _ contract.EventSink = (*Connection)(nil)

type OverflowPolicy string

const (
	OverflowDrop       OverflowPolicy = "drop"
	OverflowDisconnect OverflowPolicy = "disconnect"
)

type ConnectionConfig struct {
	BufferSize   int
	Overflow     OverflowPolicy
	PingInterval time.Duration
	WriteTimeout time.Duration
	ReadLimit    int64
}

// MessageHandler is called from the read pump, one frame at a time.
type MessageHandler func(ctx context.Context, frame []byte)

// CloseHandler runs once, before the close handshake starts.
type CloseHandler func()

// Connection is one accepted websocket. Frames are queued in a bounded outbox
// drained by a single writer, so Consume never blocks the caller.
type Connection struct {
	handle  domain.ConnectionHandle
	conn    *websocket.Conn
	config  ConnectionConfig
	outbox  chan []byte
	monitor *observability.Monitor

	mu        sync.Mutex
	onMessage MessageHandler
	onClose   CloseHandler
	closing   bool

	readCtx   context.Context
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	done      chan struct{}

	log *slog.Logger
}

func NewConnection(
	parentCtx context.Context,
	log *slog.Logger,
	handle domain.ConnectionHandle,
	conn *websocket.Conn,
	config ConnectionConfig,
	monitor *observability.Monitor,
) *Connection {
	ctx, cancel := context.WithCancel(parentCtx)
	if config.ReadLimit > 0 {
		conn.SetReadLimit(config.ReadLimit)
	}
	return &Connection{
		handle:  handle,
		conn:    conn,
		config:  config,
		outbox:  make(chan []byte, max(config.BufferSize, 1)),
		monitor: monitor,
		readCtx: parentCtx,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		log:     log.With("conn_id", handle.ID, "user_id", handle.UserID),
	}
}

func (c *Connection) SetOnMessageHandler(handler MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMessage = handler
}

// SetOnCloseHandler may race with an eviction from Consume: when the
// connection is already closing, handler runs right away.
func (c *Connection) SetOnCloseHandler(handler CloseHandler) {
	c.mu.Lock()
	if !c.closing {
		c.onClose = handler
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	if handler != nil {
		handler()
	}
}

func (c *Connection) messageHandler() MessageHandler {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.onMessage
}

// Run starts the pumps. It returns immediately, wait on Done.
func (c *Connection) Run() {
	go c.readPump()
	go c.writePump()
	if c.config.PingInterval > 0 {
		go c.pingLoop()
	}
}

// Consume is called by the hub. On overflow the frame is dropped, or the
// connection is evicted in the background so the hub never waits on it.
func (c *Connection) Consume(frame []byte) error {
	select {
	case <-c.ctx.Done():
		return errors.ErrSinkClosed
	default:
	}
	select {
	case c.outbox <- frame:
		return nil
	default:
	}
	if c.config.Overflow == OverflowDisconnect {
		c.log.Warn("Slow consumer, closing connection", "buffer_size", cap(c.outbox))
		go c.Close(websocket.StatusPolicyViolation, "slow consumer")
	}
	return errors.ErrSinkFull
}

// readPump reads with the parent context: cancelling it mid-read would drop
// the socket before Close could send its status.
func (c *Connection) readPump() {
	defer c.Close(websocket.StatusNormalClosure, "")

	for {
		typ, frame, err := c.conn.Read(c.readCtx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && c.ctx.Err() == nil {
				c.log.Debug("Read failed", "error", err)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		if onMessage := c.messageHandler(); onMessage != nil {
			onMessage(c.ctx, frame)
		}
	}
}

func (c *Connection) writePump() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case frame := <-c.outbox:
			ctx, cancel := context.WithTimeout(c.ctx, c.config.WriteTimeout)
			err := c.conn.Write(ctx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				c.log.Debug("Write failed", "error", err)
				c.Close(websocket.StatusInternalError, "write failed")
				return
			}
		}
	}
}

// pingLoop evicts peers that stop answering pings. Pongs are read by readPump.
func (c *Connection) pingLoop() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(c.ctx, c.config.WriteTimeout)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				c.log.Debug("Ping failed", "error", err)
				c.Close(websocket.StatusPolicyViolation, "ping timeout")
				return
			}
		}
	}
}

// Close is safe to call from any goroutine and any number of times.
// It returns once the close handler has run; the handshake with the peer
// finishes in the background and Done is closed after it.
func (c *Connection) Close(status websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		c.log.Debug("Connection closing", "status", status.String(), "reason", reason)
		c.mu.Lock()
		c.closing = true
		onClose := c.onClose
		c.mu.Unlock()
		if onClose != nil {
			onClose()
		}
		go func() {
			_ = c.conn.Close(status, reason)
			c.cancel()
			if c.monitor != nil {
				c.monitor.IncrConnectionsClosed()
			}
			close(c.done)
		}()
	})
}

// Done is closed once the connection is fully released.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

func (c *Connection) Handle() domain.ConnectionHandle {
	return c.handle
}
