package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"jan-server/services/chat-api/internal/config"
)

const (
	ConversationsCollection = "conversations"
	UserIndexesCollection   = "user_indexes"
)

// Connect establishes the Mongo client and verifies connectivity.
func Connect(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetTimeout(cfg.MongoTimeout)
	if cfg.MongoMaxPool > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MongoMaxPool))
	}
	if cfg.MongoMinPool > 0 {
		opts.SetMinPoolSize(uint64(cfg.MongoMinPool))
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the collection indexes at startup. The unique index
// on user_indexes.owner_id backs the at-most-one-index-per-owner guarantee:
// a losing concurrent upsert retries against the winner's document instead
// of inserting a duplicate.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log zerolog.Logger) error {
	indexes := map[string][]mongo.IndexModel{
		ConversationsCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}}},
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		UserIndexesCollection: {
			{
				Keys:    bson.D{{Key: "owner_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes for %s: %w", collection, err)
		}
		log.Debug().Str("collection", collection).Int("indexes", len(models)).Msg("ensured collection indexes")
	}
	return nil
}
