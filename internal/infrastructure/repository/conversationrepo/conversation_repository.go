package conversationrepo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"jan-server/services/chat-api/internal/domain/chat"
	"jan-server/services/chat-api/internal/infrastructure/database"
	"jan-server/services/chat-api/internal/infrastructure/metrics"
	"jan-server/services/chat-api/utils/platformerrors"
)

// Repository is the MongoDB implementation of chat.ConversationRepository.
type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{collection: db.Collection(database.ConversationsCollection)}
}

// Create persists a new conversation document. The write either commits
// fully or fails; callers must not assume partial success.
func (r *Repository) Create(ctx context.Context, conv *chat.Conversation) error {
	start := time.Now()
	_, err := r.collection.InsertOne(ctx, conv)
	metrics.ObserveStore(database.ConversationsCollection, "insert", start, err)
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to persist conversation", err)
	}
	metrics.ConversationsStarted.Inc()
	return nil
}

// AppendTurns pushes the given turns onto the transcript in order, in one
// update. Mongo serializes writers per document, so two concurrent appends
// to the same conversation both land, in some order, never interleaved.
// The filter matches (_id, owner_id): a conversation owned by someone else
// reports not found, same as a missing one.
func (r *Repository) AppendTurns(ctx context.Context, conversationID, ownerID string, turns []chat.Turn) error {
	filter := bson.M{"_id": conversationID, "owner_id": ownerID}
	update := bson.M{
		"$push": bson.M{"turns": bson.M{"$each": turns}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	start := time.Now()
	res, err := r.collection.UpdateOne(ctx, filter, update)
	metrics.ObserveStore(database.ConversationsCollection, "append_turns", start, err)
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to append turns", err)
	}
	if res.MatchedCount == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "conversation not found", nil)
	}
	metrics.TurnsAppended.Add(float64(len(turns)))
	return nil
}

// FindByIDAndOwner loads a conversation scoped to its owner.
func (r *Repository) FindByIDAndOwner(ctx context.Context, conversationID, ownerID string) (*chat.Conversation, error) {
	filter := bson.M{"_id": conversationID, "owner_id": ownerID}

	start := time.Now()
	var conv chat.Conversation
	err := r.collection.FindOne(ctx, filter).Decode(&conv)
	metrics.ObserveStore(database.ConversationsCollection, "find_one", start, err)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "conversation not found", nil)
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to load conversation", err)
	}
	return &conv, nil
}
