package repository

import (
	"context"
	"fmt"
	timelineerrors "shubakar/internal/timeline/errors"
	"shubakar/pkg/config"
	mongotx "shubakar/pkg/db/mongo"
	"shubakar/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "timeline_items"

// TimelineRepository scopes every lookup and mutation to the owning account.
type TimelineRepository interface {
	Create(ctx context.Context, item *model.TimelineItem) error
	FindByUser(ctx context.Context, userID string) ([]*model.TimelineItem, error)
	Update(ctx context.Context, id, userID string, set bson.M) (*model.TimelineItem, error)
	Delete(ctx context.Context, id, userID string) error
}

type mongoTimelineRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTimelineRepository(cfg *config.Config) TimelineRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTimelineRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoTimelineRepository) Create(ctx context.Context, item *model.TimelineItem) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := mongotx.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, item)
	if err != nil {
		return fmt.Errorf("failed to create timeline item: %w", err)
	}
	item.ID = mongotx.InsertedHex(result)
	return nil
}

// FindByUser sorts by the HH:MM string, which orders correctly because it is
// zero padded.
func (r *mongoTimelineRepository) FindByUser(ctx context.Context, userID string) ([]*model.TimelineItem, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "time", Value: 1}, {Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find timeline items: %w", err)
	}
	defer cursor.Close(ctx)

	items := []*model.TimelineItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode timeline items: %w", err)
	}
	return items, nil
}

func (r *mongoTimelineRepository) Update(ctx context.Context, id, userID string, set bson.M) (*model.TimelineItem, error) {
	objectID, ok := mongotx.ObjectID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", timelineerrors.ErrInvalidID, id)
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	set["updatedAt"] = mongotx.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var item model.TimelineItem
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID, "user": userID}, bson.M{"$set": set}, opts).Decode(&item)
	if err != nil {
		if mongotx.IsNoDocuments(err) {
			return nil, fmt.Errorf("%w: %s", timelineerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update timeline item: %w", err)
	}
	return &item, nil
}

func (r *mongoTimelineRepository) Delete(ctx context.Context, id, userID string) error {
	objectID, ok := mongotx.ObjectID(id)
	if !ok {
		return fmt.Errorf("%w: %s", timelineerrors.ErrInvalidID, id)
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID, "user": userID})
	if err != nil {
		return fmt.Errorf("failed to delete timeline item: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", timelineerrors.ErrNotFound, id)
	}
	return nil
}
