package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Friend_Manager/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoFriendRequestRepository stores friend requests in the friend_requests
// collection. Pair uniqueness relies on the unique (from_user, to_user) index
// created by database.EnsureMongoIndexes.
type MongoFriendRequestRepository struct {
	collection *mongo.Collection
}

func NewMongoFriendRequestRepository(db *mongo.Database) *MongoFriendRequestRepository {
	return &MongoFriendRequestRepository{
		collection: db.Collection(friendRequestsCollection),
	}
}

func (r *MongoFriendRequestRepository) Create(ctx context.Context, req *models.FriendRequest) error {
	if req.FromUserID == req.ToUserID {
		return ErrSelfRequest
	}
	req.ID = uuid.NewString()
	req.CreatedAt = time.Now().UTC()
	req.Status = models.StatusPending

	if _, err := r.collection.InsertOne(ctx, req); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to send friend request: %w", err)
	}
	return nil
}

func (r *MongoFriendRequestRepository) GetByID(ctx context.Context, id string) (*models.FriendRequest, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoFriendRequestRepository) Find(ctx context.Context, fromUserID, toUserID string) (*models.FriendRequest, error) {
	return r.findOne(ctx, bson.M{"from_user": fromUserID, "to_user": toUserID})
}

func (r *MongoFriendRequestRepository) findOne(ctx context.Context, filter bson.M) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.collection.FindOne(ctx, filter).Decode(&request)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find friend request: %w", err)
	}
	return &request, nil
}

func (r *MongoFriendRequestRepository) ListPending(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return r.find(ctx, bson.M{"to_user": userID, "status": models.StatusPending})
}

func (r *MongoFriendRequestRepository) ListAccepted(ctx context.Context, userID string, dir Direction) ([]models.FriendRequest, error) {
	field := "from_user"
	if dir == Incoming {
		field = "to_user"
	}
	return r.find(ctx, bson.M{field: userID, "status": models.StatusAccepted})
}

func (r *MongoFriendRequestRepository) find(ctx context.Context, filter bson.M) ([]models.FriendRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find friend requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := []models.FriendRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode friend requests: %w", err)
	}
	return requests, nil
}

// UpdateStatusIfPending is a single compare-and-set on status.
func (r *MongoFriendRequestRepository) UpdateStatusIfPending(ctx context.Context, id string, status models.FriendRequestStatus) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.StatusPending},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}
