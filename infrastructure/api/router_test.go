package api

import (
	"bytes"
	"chat-hub/auth"
	"chat-hub/domain"
	"chat-hub/observability"
	"chat-hub/repositories"
	"chat-hub/runtime"
	"chat-hub/services"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type apiFixture struct {
	t      *testing.T
	router *gin.Engine
	tokens *auth.TokenManager
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	monitor := observability.NewMonitor()
	hub := runtime.NewHub(log, monitor, nil, 16, time.Now)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = hub.Run(ctx) }()

	limit := 2
	users := repositories.NewUserRepository(db)
	chats := repositories.NewChatRepository(db)
	notifier := services.NewNotifier(log, hub)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	router := NewRouter(log, tokens, Handlers{
		Auth:  NewAuthHandler(log, services.NewAuthService(users, tokens)),
		Users: NewUserHandler(log, services.NewUserService(users)),
		Chats: NewChatHandler(log, services.NewChatService(
			log, chats, repositories.NewMessageRepository(db, log, &limit), users, notifier, monitor,
		)),
		Groups: NewGroupHandler(log, services.NewGroupService(log, chats, hub, notifier)),
		Debug:  NewDebugHandler(log, hub, monitor, db),
	})
	return &apiFixture{t: t, router: router, tokens: tokens}
}

func (f *apiFixture) do(method, path, token string, body any) (int, gjson.Result) {
	f.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	r := httptest.NewRequest(method, path, reader)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, r)
	return w.Code, gjson.ParseBytes(w.Body.Bytes())
}

// register creates an account and returns its token and id.
func (f *apiFixture) register(name string, phone int) (string, domain.UserID) {
	f.t.Helper()
	status, body := f.do(http.MethodPost, "/api/auth/register", "", auth.RegisterRequest{
		Name:        name,
		Email:       name + "@chat.test",
		PhoneNumber: fmt.Sprintf("+3360000000%d", phone),
		Password:    "Str0ng!Passw0rd",
	})
	require.Equal(f.t, http.StatusCreated, status, body.Raw)
	token := body.Get("token").String()
	userID, err := f.tokens.Verify(token)
	require.NoError(f.t, err)
	return token, userID
}

func TestAPI_Register_And_Login(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)
	f.register("alice", 1)

	// Same email or phone again
	status, body := f.do(http.MethodPost, "/api/auth/register", "", auth.RegisterRequest{
		Name: "alice", Email: "alice@chat.test", PhoneNumber: "+33600000001", Password: "Str0ng!Passw0rd",
	})
	req.Equal(http.StatusConflict, status)
	req.Equal("conflict", body.Get("code").String())

	// Weak password
	status, body = f.do(http.MethodPost, "/api/auth/register", "", auth.RegisterRequest{
		Name: "bob", Email: "bob@chat.test", PhoneNumber: "+33600000002", Password: "weakpassword",
	})
	req.Equal(http.StatusBadRequest, status)
	req.Equal("validation", body.Get("code").String())

	status, body = f.do(http.MethodPost, "/api/auth/login", "", auth.LoginRequest{Email: "alice@chat.test", Password: "Str0ng!Passw0rd"})
	req.Equal(http.StatusOK, status)
	req.NotEmpty(body.Get("token").String())

	status, _ = f.do(http.MethodPost, "/api/auth/login", "", auth.LoginRequest{Email: "alice@chat.test", Password: "Wr0ng!Passw0rd"})
	req.Equal(http.StatusUnauthorized, status)
}

func TestAPI_User_Profile(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)
	token, aliceID := f.register("alice", 1)

	status, _ := f.do(http.MethodGet, "/api/user/"+string(aliceID), "", nil)
	req.Equal(http.StatusUnauthorized, status)

	status, body := f.do(http.MethodGet, "/api/user/"+string(aliceID), token, nil)
	req.Equal(http.StatusOK, status)
	req.Equal("alice", body.Get("name").String())
	req.False(body.Get("isOnline").Bool())
	req.False(body.Get("passwordHash").Exists())

	status, _ = f.do(http.MethodGet, "/api/user/nobody", token, nil)
	req.Equal(http.StatusNotFound, status)
}

func TestAPI_Direct_Chat_Flow(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)
	alice, _ := f.register("alice", 1)
	bob, bobID := f.register("bob", 2)
	carol, _ := f.register("carol", 3)

	// Given alice opens a chat with bob by phone number
	status, body := f.do(http.MethodPost, "/api/chat", alice, services.ChatTarget{PhoneNumber: "+33600000002"})
	req.Equal(http.StatusCreated, status)
	chatID := body.Get("id").String()

	// Opening it again by id returns the same chat
	status, body = f.do(http.MethodPost, "/api/chat", alice, services.ChatTarget{UserID: bobID})
	req.Equal(http.StatusOK, status)
	req.Equal(chatID, body.Get("id").String())

	status, _ = f.do(http.MethodPost, "/api/chat", alice, services.ChatTarget{PhoneNumber: "+33699999999"})
	req.Equal(http.StatusNotFound, status)

	// When alice sends three messages
	for _, text := range []string{"one", "two", "three"} {
		status, body = f.do(http.MethodPost, "/api/chat/message", alice, domain.MessageDraft{
			ChatID: domain.ChatID(chatID), Type: domain.MessageText, Text: text,
		})
		req.Equal(http.StatusCreated, status, body.Raw)
	}

	// Then bob sees them unread
	status, body = f.do(http.MethodGet, "/api/chat", bob, nil)
	req.Equal(http.StatusOK, status)
	req.Equal(int64(3), body.Get("0.unreadCount").Int())

	// Messages come newest first, two per page
	status, body = f.do(http.MethodGet, "/api/chat/"+chatID+"/messages", bob, nil)
	req.Equal(http.StatusOK, status)
	req.Equal(`["three","two"]`, body.Get("messages.#.text").Raw)
	cursor := body.Get("nextCursor").String()
	req.NotEmpty(cursor)
	status, body = f.do(http.MethodGet, "/api/chat/"+chatID+"/messages?cursor="+cursor, bob, nil)
	req.Equal(http.StatusOK, status)
	req.Equal(`["one"]`, body.Get("messages.#.text").Raw)

	// Reading the chat clears the unread count
	status, body = f.do(http.MethodPut, "/api/chat/read", bob, gin.H{"chatId": chatID})
	req.Equal(http.StatusOK, status)
	req.Equal(int64(3), body.Get("updated").Int())
	_, body = f.do(http.MethodGet, "/api/chat", bob, nil)
	req.Equal(int64(0), body.Get("0.unreadCount").Int())

	// Outsiders can neither read nor write
	status, _ = f.do(http.MethodGet, "/api/chat/"+chatID+"/messages", carol, nil)
	req.Equal(http.StatusForbidden, status)
	status, _ = f.do(http.MethodPost, "/api/chat/message", carol, domain.MessageDraft{
		ChatID: domain.ChatID(chatID), Type: domain.MessageText, Text: "hi",
	})
	req.Equal(http.StatusForbidden, status)
}

func TestAPI_Group_Flow(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)
	alice, _ := f.register("alice", 1)
	bob, bobID := f.register("bob", 2)

	status, body := f.do(http.MethodPost, "/api/group/create", alice, gin.H{"groupName": "gophers"})
	req.Equal(http.StatusCreated, status)
	groupID := body.Get("id").String()

	// bob only sees groups he is not in
	_, body = f.do(http.MethodGet, "/api/group/all", bob, nil)
	req.Equal(groupID, body.Get("0.id").String())

	status, _ = f.do(http.MethodPost, "/api/group/request-join", bob, gin.H{"groupId": groupID})
	req.Equal(http.StatusOK, status)
	status, _ = f.do(http.MethodPost, "/api/group/request-join", bob, gin.H{"groupId": groupID})
	req.Equal(http.StatusConflict, status)

	_, body = f.do(http.MethodGet, "/api/group/requests", alice, nil)
	req.Equal(string(bobID), body.Get("0.joinRequests.0").String())

	// Only the admin handles requests
	status, _ = f.do(http.MethodPost, "/api/group/handle-request", bob, gin.H{"groupId": groupID, "userId": bobID, "action": "accept"})
	req.Equal(http.StatusForbidden, status)
	status, body = f.do(http.MethodPost, "/api/group/handle-request", alice, gin.H{"groupId": groupID, "userId": bobID, "action": "accept"})
	req.Equal(http.StatusOK, status)
	req.Equal("Request accepted successfully", body.Get("message").String())

	status, _ = f.do(http.MethodPut, "/api/group/"+groupID+"/image", bob, gin.H{"imageUrl": "https://img.test/g.png"})
	req.Equal(http.StatusForbidden, status)
	status, body = f.do(http.MethodPut, "/api/group/"+groupID+"/image", alice, gin.H{"imageUrl": "https://img.test/g.png"})
	req.Equal(http.StatusOK, status)
	req.Equal("https://img.test/g.png", body.Get("groupImage").String())

	// The admin leaving hands the group over, the last one deletes it
	status, body = f.do(http.MethodPost, "/api/group/leave", alice, gin.H{"groupId": groupID})
	req.Equal(http.StatusOK, status)
	req.False(body.Get("deleted").Bool())
	_, body = f.do(http.MethodGet, "/api/group/"+groupID, bob, nil)
	req.Equal(string(bobID), body.Get("groupAdmin").String())

	status, _ = f.do(http.MethodPost, "/api/group/leave", alice, gin.H{"groupId": groupID})
	req.Equal(http.StatusBadRequest, status)
	status, body = f.do(http.MethodPost, "/api/group/leave", bob, gin.H{"groupId": groupID})
	req.Equal(http.StatusOK, status)
	req.True(body.Get("deleted").Bool())

	status, _ = f.do(http.MethodGet, "/api/group/"+groupID, bob, nil)
	req.Equal(http.StatusNotFound, status)
}

func TestAPI_Debug_Endpoints(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)
	f.register("alice", 1)

	status, body := f.do(http.MethodGet, "/debug/stats", "", nil)
	req.Equal(http.StatusOK, status)
	req.Equal(int64(0), body.Get("hub.online_users").Int())
	req.True(body.Get("metrics.uptime").Exists())

	status, body = f.do(http.MethodGet, "/debug/inspect?prefix=user:", "", nil)
	req.Equal(http.StatusOK, status)
	req.Equal("USER", body.Get("items.0.type").String())
}
