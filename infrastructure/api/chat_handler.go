package api

import (
	"chat-hub/auth"
	"chat-hub/domain"
	"chat-hub/services"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	log     *slog.Logger
	service services.IChatService
}

func NewChatHandler(log *slog.Logger, service services.IChatService) *ChatHandler {
	return &ChatHandler{log: log, service: service}
}

// CreateOrGetChat handles POST /api/chat
func (h *ChatHandler) CreateOrGetChat(c *gin.Context) {
	var target services.ChatTarget
	if err := c.ShouldBindJSON(&target); err != nil {
		badRequest(c, err)
		return
	}
	chat, created, err := h.service.CreateOrGetChat(c.Request.Context(), auth.MustUserID(c), target)
	if err != nil {
		abort(c, h.log, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, chat)
}

// ListChats handles GET /api/chat
func (h *ChatHandler) ListChats(c *gin.Context) {
	chats, err := h.service.GetMyChats(auth.MustUserID(c))
	if err != nil {
		abort(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

// ListMessages handles GET /api/chat/:chatId/messages?cursor=
func (h *ChatHandler) ListMessages(c *gin.Context) {
	var cursor *string
	if v, ok := c.GetQuery("cursor"); ok && v != "" {
		cursor = &v
	}
	messages, next, err := h.service.GetMessages(auth.MustUserID(c), domain.ChatID(c.Param("chatId")), cursor)
	if err != nil {
		abort(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages, "nextCursor": next})
}

// SendMessage handles POST /api/chat/message
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var draft domain.MessageDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, err)
		return
	}
	message, err := h.service.SendMessage(c.Request.Context(), auth.MustUserID(c), draft)
	if err != nil {
		abort(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

type markChatReadReq struct {
	ChatID domain.ChatID `json:"chatId"`
}

// MarkChatRead handles PUT /api/chat/read
func (h *ChatHandler) MarkChatRead(c *gin.Context) {
	var req markChatReadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := h.service.MarkChatRead(auth.MustUserID(c), req.ChatID)
	if err != nil {
		abort(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": updated})
}

// MarkMessageRead handles PUT /api/chat/message/:messageId/read
func (h *ChatHandler) MarkMessageRead(c *gin.Context) {
	message, err := h.service.MarkMessageRead(auth.MustUserID(c), domain.MessageID(c.Param("messageId")))
	if err != nil {
		abort(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, message)
}
