package api

import (
	"chat-hub/auth"
	"chat-hub/services"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	log     *slog.Logger
	service services.IAuthService
}

func NewAuthHandler(log *slog.Logger, service services.IAuthService) *AuthHandler {
	return &AuthHandler{log: log, service: service}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	token, err := h.service.Register(req)
	if err != nil {
		abort(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token.String()})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	token, err := h.service.Login(req)
	if err != nil {
		abort(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token.String()})
}
