package chat

import (
	"context"
	"time"
)

// TitleMaxLen bounds the summary title derived from the opening user turn.
const TitleMaxLen = 40

type TurnRole string

const (
	TurnRoleUser  TurnRole = "user"
	TurnRoleModel TurnRole = "model"
)

// Turn is a single message in a conversation. Image is only ever set on
// user turns and carries an opaque upload reference.
type Turn struct {
	Role      TurnRole  `json:"role" bson:"role"`
	Content   string    `json:"content" bson:"content"`
	Image     string    `json:"image,omitempty" bson:"image,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Conversation is one user's ordered transcript. Turns are append-only and
// never empty once the conversation is persisted.
type Conversation struct {
	ID        string    `json:"id" bson:"_id"`
	OwnerID   string    `json:"-" bson:"owner_id"`
	Turns     []Turn    `json:"turns" bson:"turns"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Summary is the (id, title) record the conversation list renders from.
// The title is derived once at creation and never recomputed.
type Summary struct {
	ConversationID string `json:"id" bson:"conversation_id"`
	Title          string `json:"title" bson:"title"`
}

// UserIndex holds one owner's summaries in creation order. At most one
// document exists per owner.
type UserIndex struct {
	OwnerID   string    `json:"owner_id" bson:"owner_id"`
	Summaries []Summary `json:"summaries" bson:"summaries"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// ConversationRepository owns the transcript collection.
//
// AppendTurns commits all of the given turns or none, and matches on
// (conversationID, ownerID) so that a conversation owned by someone else is
// indistinguishable from a missing one.
type ConversationRepository interface {
	Create(ctx context.Context, conv *Conversation) error
	AppendTurns(ctx context.Context, conversationID, ownerID string, turns []Turn) error
	FindByIDAndOwner(ctx context.Context, conversationID, ownerID string) (*Conversation, error)
}

// IndexRepository owns the per-owner summary collection.
//
// EnsureAndAppendSummary must be a single conditional upsert: concurrent
// first-use calls for one owner may never create two index documents nor
// drop either append.
type IndexRepository interface {
	EnsureAndAppendSummary(ctx context.Context, ownerID string, summary Summary) error
	ListSummaries(ctx context.Context, ownerID string) ([]Summary, error)
}

// TruncateTitle derives a summary title from the opening user text.
// Truncation counts runes and never appends an ellipsis.
func TruncateTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= TitleMaxLen {
		return text
	}
	return string(runes[:TitleMaxLen])
}
