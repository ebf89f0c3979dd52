package repository

import (
	"context"
	"fmt"
	bookingserrors "shubakar/internal/bookings/errors"
	"shubakar/pkg/config"
	mongotx "shubakar/pkg/db/mongo"
	"shubakar/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "bookings"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	Find(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context, filter model.BookingFilter) (int64, error)
	UpdateStatus(ctx context.Context, id, from, to string) (*model.Booking, error)
	MarkPaid(ctx context.Context, id string, payment model.PaymentRecord) (*model.Booking, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := mongotx.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	booking.ID = mongotx.InsertedHex(result)
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, ok := mongotx.ObjectID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking); err != nil {
		if mongotx.IsNoDocuments(err) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) Find(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, FilterQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, FilterQuery(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// FilterQuery maps a listing scope onto a Mongo filter. References are
// stored as hex strings.
func FilterQuery(f model.BookingFilter) bson.M {
	query := bson.M{}
	if f.CustomerID != "" {
		query["customer"] = f.CustomerID
	}
	if f.VendorID != "" {
		query["vendor"] = f.VendorID
	}
	if f.Status != "" {
		query["status"] = f.Status
	}
	return query
}

// UpdateStatus moves the booking from one status to another. The current
// status is part of the filter, so of two racing updates only one applies.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id, from, to string) (*model.Booking, error) {
	objectID, ok := mongotx.ObjectID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "status": from}
	set := bson.M{"status": to, "updatedAt": mongotx.Now()}
	return r.conditionalSet(ctx, id, filter, set)
}

// MarkPaid records a payment. It applies only to an accepted booking that
// has not been paid yet.
func (r *mongoBookingRepository) MarkPaid(ctx context.Context, id string, payment model.PaymentRecord) (*model.Booking, error) {
	objectID, ok := mongotx.ObjectID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":           objectID,
		"status":        model.BookingStatusAccepted,
		"paymentStatus": bson.M{"$ne": model.PaymentStatusPaid},
	}
	set := bson.M{
		"paymentStatus": model.PaymentStatusPaid,
		"transactionId": payment.TransactionID,
		"paymentMethod": payment.Method,
		"paidAt":        payment.PaidAt,
		"updatedAt":     mongotx.Now(),
	}
	return r.conditionalSet(ctx, id, filter, set)
}

func (r *mongoBookingRepository) conditionalSet(ctx context.Context, id string, filter, set bson.M) (*model.Booking, error) {
	writeCtx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.Booking
	err := r.collection.FindOneAndUpdate(writeCtx, filter, bson.M{"$set": set}, opts).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if !mongotx.IsNoDocuments(err) {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	// Nothing matched: either the booking is gone or its state moved on.
	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, fmt.Errorf("%w: %s", bookingserrors.ErrStatusChanged, id)
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
