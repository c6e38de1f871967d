package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection          = "users"
	friendRequestsCollection = "friend_requests"
)

// EnsureMongoIndexes creates the indexes the Mongo repositories rely on.
// The unique indexes are what turn concurrent duplicate inserts into ErrDuplicate.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	_, err = db.Collection(friendRequestsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "from_user", Value: 1}, {Key: "to_user", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_pair"),
		},
		{
			Keys:    bson.D{{Key: "to_user", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("to_status"),
		},
		{
			Keys:    bson.D{{Key: "from_user", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("from_status"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create friend_requests indexes: %w", err)
	}
	return nil
}
