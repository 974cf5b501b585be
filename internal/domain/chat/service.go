package chat

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"jan-server/services/chat-api/utils/chatid"
	"jan-server/services/chat-api/utils/platformerrors"
)

// Service orchestrates the conversation and index repositories. The two
// collections are independently consistent; there is no cross-document
// transaction (see StartConversation).
type Service struct {
	conversations ConversationRepository
	index         IndexRepository
	log           zerolog.Logger
}

func NewService(conversations ConversationRepository, index IndexRepository, log zerolog.Logger) *Service {
	return &Service{
		conversations: conversations,
		index:         index,
		log:           log.With().Str("component", "chat-service").Logger(),
	}
}

// StartConversation persists a new conversation holding a single user turn,
// then records its summary in the owner's index. The conversation write
// happens first: a failed index write leaves an orphan conversation (kept,
// reported as failure), while a dangling summary can never occur.
func (s *Service) StartConversation(ctx context.Context, ownerID, text, image string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "text is required", nil)
	}

	now := time.Now().UTC()
	conv := &Conversation{
		ID:      chatid.New("conv"),
		OwnerID: ownerID,
		Turns: []Turn{{
			Role:      TurnRoleUser,
			Content:   text,
			Image:     image,
			CreatedAt: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.conversations.Create(ctx, conv); err != nil {
		return "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create conversation")
	}

	summary := Summary{ConversationID: conv.ID, Title: TruncateTitle(text)}
	if err := s.index.EnsureAndAppendSummary(ctx, ownerID, summary); err != nil {
		// The conversation persisted but its summary did not. Not rolled
		// back: the invariant that matters is that a summary never points
		// at a conversation that does not exist.
		s.log.Error().Err(err).
			Str("conversation_id", conv.ID).
			Msg("conversation persisted without summary")
		return "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to record conversation summary")
	}

	return conv.ID, nil
}

// ContinueConversation appends a question/answer exchange. An empty
// question yields a model-only continuation (e.g. a regenerated answer);
// otherwise the user turn precedes the model turn and carries the image.
// The index is never touched: titles are immutable after creation.
func (s *Service) ContinueConversation(ctx context.Context, conversationID, ownerID, question, answer, image string) error {
	if strings.TrimSpace(answer) == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "answer is required", nil)
	}

	now := time.Now().UTC()
	var turns []Turn
	if question != "" {
		turns = append(turns, Turn{
			Role:      TurnRoleUser,
			Content:   question,
			Image:     image,
			CreatedAt: now,
		})
	}
	turns = append(turns, Turn{
		Role:      TurnRoleModel,
		Content:   answer,
		CreatedAt: now,
	})

	if err := s.conversations.AppendTurns(ctx, conversationID, ownerID, turns); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to append turns")
	}
	return nil
}

// ListConversations returns the owner's summaries in creation order. An
// owner with no conversations yet gets an empty list, not an error.
func (s *Service) ListConversations(ctx context.Context, ownerID string) ([]Summary, error) {
	summaries, err := s.index.ListSummaries(ctx, ownerID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list conversations")
	}
	return summaries, nil
}

// GetConversation returns the full transcript, scoped to the owner.
func (s *Service) GetConversation(ctx context.Context, conversationID, ownerID string) (*Conversation, error) {
	conv, err := s.conversations.FindByIDAndOwner(ctx, conversationID, ownerID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to get conversation")
	}
	return conv, nil
}
