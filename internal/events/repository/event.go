package repository

import (
	"context"
	"fmt"
	eventerrors "shubakar/internal/events/errors"
	"shubakar/pkg/config"
	mongotx "shubakar/pkg/db/mongo"
	"shubakar/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "events"

type EventRepository interface {
	Create(ctx context.Context, e *model.Event) error
	FindByID(ctx context.Context, id string) (*model.Event, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Event, error)
	FindByUser(ctx context.Context, userID string) ([]*model.Event, error)
	// Update and Delete only match events owned by userID.
	Update(ctx context.Context, id, userID string, set bson.M) (*model.Event, error)
	Delete(ctx context.Context, id, userID string) error
}

type mongoEventRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoEventRepository(cfg *config.Config) EventRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEventRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoEventRepository) Create(ctx context.Context, e *model.Event) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	e.CreatedAt = mongotx.Now()
	result, err := r.collection.InsertOne(ctx, e)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	e.ID = mongotx.InsertedHex(result)
	return nil
}

func (r *mongoEventRepository) FindByID(ctx context.Context, id string) (*model.Event, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, ok := mongotx.ObjectID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", eventerrors.ErrInvalidID, id)
	}

	var e model.Event
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&e); err != nil {
		if mongotx.IsNoDocuments(err) {
			return nil, fmt.Errorf("%w: %s", eventerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	return &e, nil
}

func (r *mongoEventRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Event, error) {
	objectIDs := mongotx.ObjectIDs(ids)
	if len(objectIDs) == 0 {
		return []*model.Event{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}}, nil)
}

func (r *mongoEventRepository) FindByUser(ctx context.Context, userID string) ([]*model.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	return r.find(ctx, bson.M{"user": userID}, opts)
}

func (r *mongoEventRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Event, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []*model.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

func (r *mongoEventRepository) Update(ctx context.Context, id, userID string, set bson.M) (*model.Event, error) {
	objectID, ok := mongotx.ObjectID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", eventerrors.ErrInvalidID, id)
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": objectID, "user": userID}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var e model.Event
	var err error
	if len(set) == 0 {
		err = r.collection.FindOne(ctx, filter).Decode(&e)
	} else {
		err = r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&e)
	}
	if err != nil {
		if mongotx.IsNoDocuments(err) {
			return nil, fmt.Errorf("%w: %s", eventerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return &e, nil
}

func (r *mongoEventRepository) Delete(ctx context.Context, id, userID string) error {
	objectID, ok := mongotx.ObjectID(id)
	if !ok {
		return fmt.Errorf("%w: %s", eventerrors.ErrInvalidID, id)
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID, "user": userID})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", eventerrors.ErrNotFound, id)
	}
	return nil
}
