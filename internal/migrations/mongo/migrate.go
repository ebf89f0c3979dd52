package mongo

import (
	"context"
	"fmt"
	"shubakar/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shubakar/internal/migrations/mongo/validators"
)

// Collection names are duplicated here so the migration job does not pull in
// every repository package.
const (
	Accounts       = "accounts"
	VendorProfiles = "vendor_profiles"
	Bookings       = "bookings"
	Events         = "events"
	Messages       = "messages"
	TimelineItems  = "timeline_items"
)

var (
	AccountsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "vendorStatus", Value: 1}}},
	}

	VendorProfilesIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_user"),
		},
		{Keys: bson.D{
			{Key: "isApproved", Value: 1},
			{Key: "services", Value: 1},
			{Key: "location.city", Value: 1},
		}},
		{Keys: bson.D{{Key: "rating.average", Value: -1}}},
	}

	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "customer", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "vendor", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	EventsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "date", Value: 1}}},
	}

	MessagesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "booking", Value: 1}, {Key: "createdAt", Value: 1}}},
	}

	TimelineItemsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "time", Value: 1}}},
	}
)

type collectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Collections() map[string]collectionDef {
	return map[string]collectionDef{
		Accounts:       {Indexes: AccountsIndexes, Validator: validators.AccountValidator},
		VendorProfiles: {Indexes: VendorProfilesIndexes, Validator: validators.VendorProfileValidator},
		Bookings:       {Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		Events:         {Indexes: EventsIndexes, Validator: validators.EventValidator},
		Messages:       {Indexes: MessagesIndexes, Validator: validators.MessageValidator},
		TimelineItems:  {Indexes: TimelineItemsIndexes, Validator: validators.TimelineItemValidator},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for name, def := range Collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
		log.Info("Collection ready", "collection", name, "indexes", len(def.Indexes))
	}

	log.Info("All migrations applied")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().
			SetValidator(validator).
			SetValidationLevel("moderate")
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}
	_, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	return err
}
