package api

import (
	"chat-hub/auth"
	"chat-hub/contract"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth    *AuthHandler
	Users   *UserHandler
	Chats   *ChatHandler
	Groups  *GroupHandler
	Debug   *DebugHandler
	Sockets http.Handler
}

// NewRouter mounts the REST API under /api, the websocket endpoint on /ws
// and the debug endpoints under /debug.
func NewRouter(log *slog.Logger, verifier contract.AuthVerifier, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "chat-hub"})
	})

	if h.Sockets != nil {
		router.GET("/ws", gin.WrapH(h.Sockets))
	}

	debug := router.Group("/debug")
	{
		debug.GET("/stats", h.Debug.Stats)
		debug.GET("/inspect", h.Debug.Inspect)
	}

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		authRoutes.POST("/register", h.Auth.Register)
		authRoutes.POST("/login", h.Auth.Login)
	}

	authed := api.Group("")
	authed.Use(auth.Middleware(verifier))
	{
		authed.GET("/user/:id", h.Users.GetUser)

		chats := authed.Group("/chat")
		chats.POST("", h.Chats.CreateOrGetChat)
		chats.GET("", h.Chats.ListChats)
		chats.GET("/:chatId/messages", h.Chats.ListMessages)
		chats.PUT("/read", h.Chats.MarkChatRead)
		chats.POST("/message", h.Chats.SendMessage)
		chats.PUT("/message/:messageId/read", h.Chats.MarkMessageRead)

		groups := authed.Group("/group")
		groups.POST("/create", h.Groups.CreateGroup)
		groups.POST("/request-join", h.Groups.RequestToJoin)
		groups.POST("/handle-request", h.Groups.HandleJoinRequest)
		groups.POST("/add-member", h.Groups.AddMember)
		groups.POST("/leave", h.Groups.LeaveGroup)
		groups.PUT("/:groupId/image", h.Groups.UpdateGroupImage)
		groups.GET("/all", h.Groups.PublicGroups)
		groups.GET("/requests", h.Groups.MyGroupRequests)
		groups.GET("/:groupId", h.Groups.GetGroup)
	}

	return router
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}
