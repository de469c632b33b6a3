package api

import (
	"chat-hub/contract"
	"chat-hub/observability"
	"chat-hub/repositories"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
)

const defaultInspectLimit = 200

type DebugHandler struct {
	log     *slog.Logger
	hub     contract.IHub
	monitor *observability.Monitor
	db      *badger.DB
}

func NewDebugHandler(log *slog.Logger, hub contract.IHub, monitor *observability.Monitor, db *badger.DB) *DebugHandler {
	return &DebugHandler{log: log, hub: hub, monitor: monitor, db: db}
}

// Stats handles GET /debug/stats
func (h *DebugHandler) Stats(c *gin.Context) {
	hubStats, err := h.hub.Stats(c.Request.Context())
	if err != nil {
		abort(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"hub":     hubStats,
		"metrics": h.monitor.Snapshot(),
	})
}

// Inspect handles GET /debug/inspect?prefix=chat:&limit=50
func (h *DebugHandler) Inspect(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultInspectLimit)))
	if err != nil || limit < 0 {
		limit = defaultInspectLimit
	}
	rows, err := repositories.Inspect(h.db, c.DefaultQuery("prefix", "chat:"), limit)
	if err != nil {
		abort(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prefix": c.DefaultQuery("prefix", "chat:"), "items": rows})
}
