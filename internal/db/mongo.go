package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared with the SQL table names.
const (
	RoomsCollection = "band_rooms"
	UsersCollection = "users"
)

const mongoConnectTimeout = 10 * time.Second

// NewMongo connects to MongoDB and returns the named database.
func NewMongo(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, client.Database(dbName), nil
}

// PrepareMongo drops the collections when reset is set and makes sure the
// unique indexes on room_key and username exist.
func PrepareMongo(ctx context.Context, database *mongo.Database, reset bool, log *slog.Logger) error {
	if reset {
		log.Warn("RESET_DB=true detected, dropping all collections")
		for _, name := range []string{RoomsCollection, UsersCollection} {
			if err := database.Collection(name).Drop(ctx); err != nil {
				log.Warn("failed to drop collection", "collection", name, "error", err)
			}
		}
	}

	indexes := map[string]string{
		RoomsCollection: "room_key",
		UsersCollection: "username",
	}
	for collection, field := range indexes {
		model := mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
		if _, err := database.Collection(collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create %s.%s index: %w", collection, field, err)
		}
	}
	return nil
}
