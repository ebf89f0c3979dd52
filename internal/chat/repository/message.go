package repository

import (
	"context"
	"fmt"
	chaterrors "shubakar/internal/chat/errors"
	"shubakar/pkg/config"
	mongotx "shubakar/pkg/db/mongo"
	"shubakar/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "messages"

type MessageRepository interface {
	// Create stores a message under its client-generated id. Storing the same
	// id twice returns ErrDuplicate.
	Create(ctx context.Context, msg *model.Message) error
	FindByBooking(ctx context.Context, bookingID string) ([]*model.Message, error)
}

type mongoMessageRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoMessageRepository(cfg *config.Config) MessageRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoMessageRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoMessageRepository) Create(ctx context.Context, msg *model.Message) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, msg); err != nil {
		if mongotx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", chaterrors.ErrDuplicate, msg.ID)
		}
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// FindByBooking returns the room history oldest first. Message ids are
// UUIDv7, so the id breaks ties between messages stored in the same
// millisecond in creation order.
func (r *mongoMessageRepository) FindByBooking(ctx context.Context, bookingID string) ([]*model.Message, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"booking": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find messages: %w", err)
	}
	defer cursor.Close(ctx)

	messages := []*model.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}
