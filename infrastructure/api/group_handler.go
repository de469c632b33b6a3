package api

import (
	"chat-hub/auth"
	"chat-hub/domain"
	"chat-hub/services"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	log     *slog.Logger
	service services.IGroupService
}

func NewGroupHandler(log *slog.Logger, service services.IGroupService) *GroupHandler {
	return &GroupHandler{log: log, service: service}
}

type createGroupReq struct {
	GroupName string          `json:"groupName"`
	Members   []domain.UserID `json:"members"`
}

type groupReq struct {
	GroupID domain.ChatID       `json:"groupId"`
	UserID  domain.UserID       `json:"userId"`
	Action  services.JoinAction `json:"action"`
}

type groupImageReq struct {
	ImageURL string `json:"imageUrl"`
}

// CreateGroup handles POST /api/group/create
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req createGroupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	group, err := h.service.CreateGroup(c.Request.Context(), auth.MustUserID(c), req.GroupName, req.Members)
	if err != nil {
		abort(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

// RequestToJoin handles POST /api/group/request-join
func (h *GroupHandler) RequestToJoin(c *gin.Context) {
	var req groupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.service.RequestToJoin(c.Request.Context(), auth.MustUserID(c), req.GroupID); err != nil {
		abort(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Join request sent"})
}

// HandleJoinRequest handles POST /api/group/handle-request
func (h *GroupHandler) HandleJoinRequest(c *gin.Context) {
	var req groupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	group, err := h.service.HandleJoinRequest(c.Request.Context(), auth.MustUserID(c), req.GroupID, req.UserID, req.Action)
	if err != nil {
		abort(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Request %sed successfully", req.Action),
		"group":   group,
	})
}

// AddMember handles POST /api/group/add-member
func (h *GroupHandler) AddMember(c *gin.Context) {
	var req groupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	group, err := h.service.AddMember(c.Request.Context(), auth.MustUserID(c), req.GroupID, req.UserID)
	if err != nil {
		abort(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member added successfully", "group": group})
}

// LeaveGroup handles POST /api/group/leave
func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	var req groupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	deleted, err := h.service.LeaveGroup(c.Request.Context(), auth.MustUserID(c), req.GroupID)
	if err != nil {
		abort(c, h.log, err)
		return
	}
	if deleted {
		c.JSON(http.StatusOK, gin.H{"message": "Group deleted as you were the last member", "deleted": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Left group successfully", "deleted": false})
}

// UpdateGroupImage handles PUT /api/group/:groupId/image.
// The body carries the URL of an already stored image.
func (h *GroupHandler) UpdateGroupImage(c *gin.Context) {
	var req groupImageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	group, err := h.service.UpdateGroupImage(c.Request.Context(), auth.MustUserID(c), domain.ChatID(c.Param("groupId")), req.ImageURL)
	if err != nil {
		abort(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

// PublicGroups handles GET /api/group/all
func (h *GroupHandler) PublicGroups(c *gin.Context) {
	groups, err := h.service.PublicGroups(auth.MustUserID(c))
	if err != nil {
		abort(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// MyGroupRequests handles GET /api/group/requests
func (h *GroupHandler) MyGroupRequests(c *gin.Context) {
	groups, err := h.service.MyGroupRequests(auth.MustUserID(c))
	if err != nil {
		abort(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// GetGroup handles GET /api/group/:groupId
func (h *GroupHandler) GetGroup(c *gin.Context) {
	group, err := h.service.GetGroup(domain.ChatID(c.Param("groupId")))
	if err != nil {
		abort(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, group)
}
