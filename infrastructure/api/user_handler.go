package api

import (
	"chat-hub/domain"
	"chat-hub/services"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	log     *slog.Logger
	service services.IUserService
}

func NewUserHandler(log *slog.Logger, service services.IUserService) *UserHandler {
	return &UserHandler{log: log, service: service}
}

// GetUser handles GET /api/user/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.service.GetProfile(domain.UserID(c.Param("id")))
	if err != nil {
		abort(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
