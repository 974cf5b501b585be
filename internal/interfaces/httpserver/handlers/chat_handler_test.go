package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/chat-api/internal/domain/chat"
	"jan-server/services/chat-api/internal/infrastructure/auth"
	"jan-server/services/chat-api/internal/interfaces/httpserver/handlers"
	"jan-server/services/chat-api/internal/interfaces/httpserver/middlewares"
	"jan-server/services/chat-api/utils/platformerrors"
)

// MockChatService is a mock implementation of handlers.ChatService.
type MockChatService struct {
	StartConversationFunc    func(ctx context.Context, ownerID, text, image string) (string, error)
	ContinueConversationFunc func(ctx context.Context, conversationID, ownerID, question, answer, image string) error
	ListConversationsFunc    func(ctx context.Context, ownerID string) ([]chat.Summary, error)
	GetConversationFunc      func(ctx context.Context, conversationID, ownerID string) (*chat.Conversation, error)
}

func (m *MockChatService) StartConversation(ctx context.Context, ownerID, text, image string) (string, error) {
	if m.StartConversationFunc != nil {
		return m.StartConversationFunc(ctx, ownerID, text, image)
	}
	return "", nil
}

func (m *MockChatService) ContinueConversation(ctx context.Context, conversationID, ownerID, question, answer, image string) error {
	if m.ContinueConversationFunc != nil {
		return m.ContinueConversationFunc(ctx, conversationID, ownerID, question, answer, image)
	}
	return nil
}

func (m *MockChatService) ListConversations(ctx context.Context, ownerID string) ([]chat.Summary, error) {
	if m.ListConversationsFunc != nil {
		return m.ListConversationsFunc(ctx, ownerID)
	}
	return nil, nil
}

func (m *MockChatService) GetConversation(ctx context.Context, conversationID, ownerID string) (*chat.Conversation, error) {
	if m.GetConversationFunc != nil {
		return m.GetConversationFunc(ctx, conversationID, ownerID)
	}
	return nil, nil
}

// asUser simulates the auth middleware having resolved a caller identity.
func asUser(subject string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("principal", auth.Principal{Subject: subject})
		c.Next()
	}
}

func newRouter(service handlers.ChatService, identity gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	if identity != nil {
		engine.Use(identity)
	}
	handler := handlers.NewChatHandler(service, zerolog.Nop())
	group := engine.Group("/v1")
	group.POST("/chats", handler.Start)
	group.GET("/chats", handler.List)
	group.GET("/chats/:id", handler.Get)
	group.PUT("/chats/:id", handler.Continue)
	return engine
}

func TestStartChat(t *testing.T) {
	service := &MockChatService{
		StartConversationFunc: func(_ context.Context, ownerID, text, image string) (string, error) {
			assert.Equal(t, "user_1", ownerID)
			assert.Equal(t, "What is the capital of France?", text)
			assert.Empty(t, image)
			return "conv_01hq3", nil
		},
	}
	router := newRouter(service, asUser("user_1"))

	body, _ := json.Marshal(map[string]string{"text": "What is the capital of France?"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chats", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "conv_01hq3", resp["id"])
}

func TestStartChatMissingText(t *testing.T) {
	called := false
	service := &MockChatService{
		StartConversationFunc: func(_ context.Context, _, _, _ string) (string, error) {
			called = true
			return "", nil
		},
	}
	router := newRouter(service, asUser("user_1"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chats", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called, "service must not be reached with an invalid payload")
}

func TestStartChatUnauthenticated(t *testing.T) {
	router := newRouter(&MockChatService{}, nil)

	body, _ := json.Marshal(map[string]string{"text": "hello"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chats", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestContinueChat(t *testing.T) {
	service := &MockChatService{
		ContinueConversationFunc: func(_ context.Context, conversationID, ownerID, question, answer, image string) error {
			assert.Equal(t, "conv_1", conversationID)
			assert.Equal(t, "user_1", ownerID)
			assert.Equal(t, "And Germany?", question)
			assert.Equal(t, "Berlin.", answer)
			assert.Empty(t, image)
			return nil
		},
	}
	router := newRouter(service, asUser("user_1"))

	body, _ := json.Marshal(map[string]string{"question": "And Germany?", "answer": "Berlin."})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/v1/chats/conv_1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestContinueChatNotFound(t *testing.T) {
	service := &MockChatService{
		ContinueConversationFunc: func(ctx context.Context, _, _, _, _, _ string) error {
			return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "conversation not found", nil)
		},
	}
	router := newRouter(service, asUser("user_2"))

	body, _ := json.Marshal(map[string]string{"answer": "Paris."})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/v1/chats/conv_missing", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContinueChatMissingAnswer(t *testing.T) {
	router := newRouter(&MockChatService{}, asUser("user_1"))

	body, _ := json.Marshal(map[string]string{"question": "And Germany?"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/v1/chats/conv_1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListChats(t *testing.T) {
	service := &MockChatService{
		ListConversationsFunc: func(_ context.Context, ownerID string) ([]chat.Summary, error) {
			assert.Equal(t, "user_1", ownerID)
			return []chat.Summary{
				{ConversationID: "conv_1", Title: "What is the capital of France?"},
				{ConversationID: "conv_2", Title: "Describe this image"},
			}, nil
		},
	}
	router := newRouter(service, asUser("user_1"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/chats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp []chat.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "conv_1", resp[0].ConversationID)
}

func TestListChatsEmpty(t *testing.T) {
	service := &MockChatService{
		ListConversationsFunc: func(_ context.Context, _ string) ([]chat.Summary, error) {
			return []chat.Summary{}, nil
		},
	}
	router := newRouter(service, asUser("new_user"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/chats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestGetChat(t *testing.T) {
	service := &MockChatService{
		GetConversationFunc: func(_ context.Context, conversationID, ownerID string) (*chat.Conversation, error) {
			assert.Equal(t, "conv_1", conversationID)
			assert.Equal(t, "user_1", ownerID)
			return &chat.Conversation{
				ID:      "conv_1",
				OwnerID: "user_1",
				Turns: []chat.Turn{
					{Role: chat.TurnRoleUser, Content: "What is the capital of France?"},
					{Role: chat.TurnRoleModel, Content: "Paris."},
				},
			}, nil
		},
	}
	router := newRouter(service, asUser("user_1"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/chats/conv_1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp chat.Conversation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "conv_1", resp.ID)
	require.Len(t, resp.Turns, 2)
	assert.Equal(t, chat.TurnRoleModel, resp.Turns[1].Role)
}

func TestGetChatOtherOwnerIsNotFound(t *testing.T) {
	service := &MockChatService{
		GetConversationFunc: func(ctx context.Context, _, _ string) (*chat.Conversation, error) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "conversation not found", nil)
		},
	}
	router := newRouter(service, asUser("user_2"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/chats/conv_1", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStorageFailureHidesDetail(t *testing.T) {
	service := &MockChatService{
		StartConversationFunc: func(ctx context.Context, _, _, _ string) (string, error) {
			return "", platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "insert failed: server selection timeout", nil)
		},
	}
	router := newRouter(service, asUser("user_1"))

	body, _ := json.Marshal(map[string]string{"text": "hello"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chats", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "server selection timeout")
}

// Keep the simulated identity helper honest against the middleware contract.
func TestPrincipalRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set("principal", auth.Principal{Subject: "user_1"})
	principal, ok := middlewares.PrincipalFromContext(c)
	require.True(t, ok)
	assert.Equal(t, "user_1", principal.Subject)
}
