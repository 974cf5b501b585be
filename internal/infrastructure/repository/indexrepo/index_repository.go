package indexrepo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"jan-server/services/chat-api/internal/domain/chat"
	"jan-server/services/chat-api/internal/infrastructure/database"
	"jan-server/services/chat-api/internal/infrastructure/metrics"
	"jan-server/services/chat-api/utils/platformerrors"
)

// Repository is the MongoDB implementation of chat.IndexRepository.
type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{collection: db.Collection(database.UserIndexesCollection)}
}

// EnsureAndAppendSummary appends the summary to the owner's index document,
// creating it if this is the owner's first conversation. One conditional
// upsert, not read-then-write: concurrent first-use calls race on the
// unique owner_id index, and the losers' upserts retry as plain appends on
// the winner's document, so no index is duplicated and no append dropped.
func (r *Repository) EnsureAndAppendSummary(ctx context.Context, ownerID string, summary chat.Summary) error {
	now := time.Now().UTC()
	filter := bson.M{"owner_id": ownerID}
	update := bson.M{
		"$push":        bson.M{"summaries": summary},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}

	start := time.Now()
	_, err := r.collection.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// Lost the first-use race: the index document now exists, append to it.
		_, err = r.collection.UpdateOne(ctx, filter, update)
	}
	metrics.ObserveStore(database.UserIndexesCollection, "upsert_summary", start, err)
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to record summary", err)
	}
	return nil
}

// ListSummaries returns the owner's summaries in creation order. An owner
// without an index document yet gets an empty list, not an error.
func (r *Repository) ListSummaries(ctx context.Context, ownerID string) ([]chat.Summary, error) {
	start := time.Now()
	var index chat.UserIndex
	err := r.collection.FindOne(ctx, bson.M{"owner_id": ownerID}).Decode(&index)
	metrics.ObserveStore(database.UserIndexesCollection, "find_one", start, err)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []chat.Summary{}, nil
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to load user index", err)
	}
	if index.Summaries == nil {
		return []chat.Summary{}, nil
	}
	return index.Summaries, nil
}
