package main

import (
	"chat-hub/infrastructure/websocket"
	"fmt"
	"time"
)

type Config struct {
	Host           string `env:"HOST,default=0.0.0.0"`
	Port           int    `env:"PORT,default=8080"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`

	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	AuthTimeout       time.Duration `env:"AUTH_TIMEOUT,default=10s"`

	PingInterval          time.Duration `env:"PING_INTERVAL,default=30s"`
	WriteTimeout          time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	ConnectionBufferSize  int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	OverflowPolicy        string        `env:"OVERFLOW_POLICY,default=drop"`
	MaxConnectionsPerUser int           `env:"MAX_CONNECTIONS_PER_USER,default=0"`
	ConnectionLimitMode   string        `env:"CONNECTION_LIMIT_MODE,default=reject"`
	ReadLimit             int64         `env:"READ_LIMIT,default=65536"`
	WSInsecureSkipVerify  bool          `env:"WS_INSECURE_SKIP_VERIFY,default=false"`

	CommandBufferSize  int           `env:"COMMAND_BUFFER_SIZE,default=1024"`
	PresenceBufferSize int           `env:"PRESENCE_BUFFER_SIZE,default=1024"`
	RestartInterval    time.Duration `env:"RESTART_INTERVAL,default=1s"`
	MetricInterval     time.Duration `env:"METRIC_INTERVAL,default=1m"`
	BacklogWarnPercent int           `env:"BACKLOG_WARN_PERCENT,default=80"`
	LimitMessages      *int          `env:"LIMIT_MESSAGES"`
	CleanupTimeout     time.Duration `env:"CLEANUP_TIMEOUT,default=5s"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT,default=15s"`
}

func (c Config) Validate() error {
	switch websocket.OverflowPolicy(c.OverflowPolicy) {
	case websocket.OverflowDrop, websocket.OverflowDisconnect:
	default:
		return fmt.Errorf("OVERFLOW_POLICY must be drop or disconnect, got %q", c.OverflowPolicy)
	}
	switch websocket.LimitMode(c.ConnectionLimitMode) {
	case websocket.LimitReject, websocket.LimitCycle:
	default:
		return fmt.Errorf("CONNECTION_LIMIT_MODE must be reject or cycle, got %q", c.ConnectionLimitMode)
	}
	if c.ConnectionBufferSize <= 0 {
		return fmt.Errorf("CONNECTION_BUFFER_SIZE must be positive, got %d", c.ConnectionBufferSize)
	}
	return nil
}

func (c Config) Sockets() websocket.Config {
	return websocket.Config{
		AuthTimeout:           c.AuthTimeout,
		MaxConnectionsPerUser: c.MaxConnectionsPerUser,
		LimitMode:             websocket.LimitMode(c.ConnectionLimitMode),
		InsecureSkipVerify:    c.WSInsecureSkipVerify,
		Connection: websocket.ConnectionConfig{
			BufferSize:   c.ConnectionBufferSize,
			Overflow:     websocket.OverflowPolicy(c.OverflowPolicy),
			PingInterval: c.PingInterval,
			WriteTimeout: c.WriteTimeout,
			ReadLimit:    c.ReadLimit,
		},
	}
}
