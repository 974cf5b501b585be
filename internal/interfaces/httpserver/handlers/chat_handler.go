package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/chat-api/internal/domain/chat"
	"jan-server/services/chat-api/internal/interfaces/httpserver/middlewares"
	"jan-server/services/chat-api/internal/interfaces/httpserver/requests"
	"jan-server/services/chat-api/internal/interfaces/httpserver/responses"
	"jan-server/services/chat-api/utils/platformerrors"
)

// ChatService is the subset of the chat domain service the HTTP layer uses.
type ChatService interface {
	StartConversation(ctx context.Context, ownerID, text, image string) (string, error)
	ContinueConversation(ctx context.Context, conversationID, ownerID, question, answer, image string) error
	ListConversations(ctx context.Context, ownerID string) ([]chat.Summary, error)
	GetConversation(ctx context.Context, conversationID, ownerID string) (*chat.Conversation, error)
}

// ChatHandler exposes conversation endpoints.
type ChatHandler struct {
	service ChatService
	log     zerolog.Logger
}

func NewChatHandler(service ChatService, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		log:     log.With().Str("component", "chat-handler").Logger(),
	}
}

type startChatResponse struct {
	ID string `json:"id"`
}

type ackResponse struct {
	Status string `json:"status"`
}

// Start godoc
// @Summary      Start a conversation
// @Description  Creates a conversation from the caller's first message and records it in their conversation list.
// @Tags         chats
// @Accept       json
// @Produce      json
// @Param        request  body      requests.StartChatRequest  true  "Opening message"
// @Success      201      {object}  startChatResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      401      {object}  responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/chats [post]
func (h *ChatHandler) Start(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required")
		return
	}

	var req requests.StartChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "text is required")
		return
	}

	id, err := h.service.StartConversation(c.Request.Context(), principal.Subject, req.Text, req.Image)
	if err != nil {
		h.log.Error().Err(err).Msg("start conversation failed")
		responses.HandleError(c, err, "error creating chat")
		return
	}

	c.JSON(http.StatusCreated, startChatResponse{ID: id})
}

// Continue godoc
// @Summary      Continue a conversation
// @Description  Appends a question/answer exchange to an owned conversation. The question is optional; a bare answer appends a model-only turn.
// @Tags         chats
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Conversation ID"
// @Param        request  body      requests.ContinueChatRequest  true  "Exchange to append"
// @Success      200      {object}  ackResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      401      {object}  responses.ErrorResponse
// @Failure      404      {object}  responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/chats/{id} [put]
func (h *ChatHandler) Continue(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required")
		return
	}

	var req requests.ContinueChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "answer is required")
		return
	}

	err := h.service.ContinueConversation(c.Request.Context(), c.Param("id"), principal.Subject, req.Question, req.Answer, req.Image)
	if err != nil {
		h.log.Error().Err(err).Str("conversation_id", c.Param("id")).Msg("continue conversation failed")
		responses.HandleError(c, err, "error adding conversation")
		return
	}

	c.JSON(http.StatusOK, ackResponse{Status: "ok"})
}

// List godoc
// @Summary      List conversations
// @Description  Returns the caller's conversation summaries in creation order. Empty when the caller has no conversations yet.
// @Tags         chats
// @Produce      json
// @Success      200  {array}   chat.Summary
// @Failure      401  {object}  responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/chats [get]
func (h *ChatHandler) List(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required")
		return
	}

	summaries, err := h.service.ListConversations(c.Request.Context(), principal.Subject)
	if err != nil {
		h.log.Error().Err(err).Msg("list conversations failed")
		responses.HandleError(c, err, "error fetching chats")
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// Get godoc
// @Summary      Fetch a conversation
// @Description  Returns the full transcript of an owned conversation. A conversation owned by someone else is indistinguishable from a missing one.
// @Tags         chats
// @Produce      json
// @Param        id   path      string  true  "Conversation ID"
// @Success      200  {object}  chat.Conversation
// @Failure      401  {object}  responses.ErrorResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/chats/{id} [get]
func (h *ChatHandler) Get(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required")
		return
	}

	conv, err := h.service.GetConversation(c.Request.Context(), c.Param("id"), principal.Subject)
	if err != nil {
		h.log.Warn().Err(err).Str("conversation_id", c.Param("id")).Msg("get conversation failed")
		responses.HandleError(c, err, "error fetching chat")
		return
	}

	c.JSON(http.StatusOK, conv)
}
