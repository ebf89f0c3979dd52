package repository

import (
	"context"
	"fmt"
	"regexp"
	vendorerrors "shubakar/internal/vendors/errors"
	"shubakar/pkg/config"
	mongotx "shubakar/pkg/db/mongo"
	"shubakar/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "vendor_profiles"
)

type VendorRepository interface {
	Create(ctx context.Context, p *model.VendorProfile) error
	FindByID(ctx context.Context, id string) (*model.VendorProfile, error)
	FindByUserID(ctx context.Context, userID string) (*model.VendorProfile, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.VendorProfile, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.VendorProfile, error)
	Count(ctx context.Context) (int64, error)
	Search(ctx context.Context, filter model.VendorSearchFilter) ([]*model.VendorProfile, error)
	Update(ctx context.Context, id string, set bson.M) (*model.VendorProfile, error)
	SetApproved(ctx context.Context, id string, approved bool) (*model.VendorProfile, error)
	Delete(ctx context.Context, id string) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoVendorRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoVendorRepository(cfg *config.Config) VendorRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoVendorRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoVendorRepository) Create(ctx context.Context, p *model.VendorProfile) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	p.CreatedAt = mongotx.Now()
	result, err := r.collection.InsertOne(ctx, p)
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: user %s", vendorerrors.ErrDuplicate, p.UserID)
		}
		return fmt.Errorf("failed to create vendor profile: %w", err)
	}
	p.ID = mongotx.InsertedHex(result)

	return nil
}

func (r *mongoVendorRepository) FindByID(ctx context.Context, id string) (*model.VendorProfile, error) {
	objectID, ok := mongotx.ObjectID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", vendorerrors.ErrInvalidID, id)
	}
	return r.findOne(ctx, bson.M{"_id": objectID}, id)
}

func (r *mongoVendorRepository) FindByUserID(ctx context.Context, userID string) (*model.VendorProfile, error) {
	return r.findOne(ctx, bson.M{"user": userID}, "user "+userID)
}

func (r *mongoVendorRepository) findOne(ctx context.Context, filter bson.M, ref string) (*model.VendorProfile, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var p model.VendorProfile
	if err := r.collection.FindOne(ctx, filter).Decode(&p); err != nil {
		if mongotx.IsNoDocuments(err) {
			return nil, fmt.Errorf("%w: %s", vendorerrors.ErrNotFound, ref)
		}
		return nil, fmt.Errorf("failed to find vendor profile: %w", err)
	}
	return &p, nil
}

func (r *mongoVendorRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.VendorProfile, error) {
	oids := mongotx.ObjectIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}}, options.Find())
}

func (r *mongoVendorRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.VendorProfile, error) {
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoVendorRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count vendor profiles: %w", err)
	}
	return count, nil
}

func (r *mongoVendorRepository) Search(ctx context.Context, f model.VendorSearchFilter) ([]*model.VendorProfile, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "rating.average", Value: -1},
		{Key: "createdAt", Value: -1},
	})
	return r.find(ctx, SearchFilter(f), opts)
}

// SearchFilter builds the public directory query. Only approved profiles are
// visible; city is a case-insensitive literal substring.
func SearchFilter(f model.VendorSearchFilter) bson.M {
	filter := bson.M{"isApproved": true}
	if f.Service != "" {
		filter["services"] = f.Service
	}
	if f.City != "" {
		filter["location.city"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.City), Options: "i"}
	}
	if f.MinPrice != nil {
		filter["priceRange.min"] = bson.M{"$gte": *f.MinPrice}
	}
	return filter
}

func (r *mongoVendorRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.VendorProfile, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendor profiles: %w", err)
	}
	defer cursor.Close(ctx)

	profiles := []*model.VendorProfile{}
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode vendor profiles: %w", err)
	}
	return profiles, nil
}

func (r *mongoVendorRepository) Update(ctx context.Context, id string, set bson.M) (*model.VendorProfile, error) {
	objectID, ok := mongotx.ObjectID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", vendorerrors.ErrInvalidID, id)
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}
	return r.findOneAndSet(ctx, objectID, set)
}

func (r *mongoVendorRepository) SetApproved(ctx context.Context, id string, approved bool) (*model.VendorProfile, error) {
	objectID, ok := mongotx.ObjectID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", vendorerrors.ErrInvalidID, id)
	}
	return r.findOneAndSet(ctx, objectID, bson.M{"isApproved": approved})
}

func (r *mongoVendorRepository) findOneAndSet(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.VendorProfile, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p model.VendorProfile
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p)
	if err != nil {
		if mongotx.IsNoDocuments(err) {
			return nil, fmt.Errorf("%w: %s", vendorerrors.ErrNotFound, id.Hex())
		}
		return nil, fmt.Errorf("failed to update vendor profile: %w", err)
	}
	return &p, nil
}

func (r *mongoVendorRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, ok := mongotx.ObjectID(id)
	if !ok {
		return fmt.Errorf("%w: %s", vendorerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete vendor profile: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", vendorerrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoVendorRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

// UpdateSet turns a partial edit into a $set document. Rating and the
// approval flag are only honoured when admin is set.
func UpdateSet(u *model.VendorProfileUpdate, admin bool) bson.M {
	set := bson.M{}
	mongotx.SetIfPresent(set, "companyName", u.CompanyName)
	mongotx.SetIfPresent(set, "description", u.Description)
	mongotx.SetIfPresent(set, "location", u.Location)
	mongotx.SetIfPresent(set, "priceRange", u.PriceRange)
	mongotx.SetIfPresent(set, "website", u.Website)
	mongotx.SetIfPresent(set, "experience", u.Experience)
	mongotx.SetIfPresent(set, "teamSize", u.TeamSize)
	mongotx.SetIfPresent(set, "documents", u.Documents)
	mongotx.SetIfPresent(set, "socialLinks", u.SocialLinks)
	mongotx.SetIfPresent(set, "bookingPolicy", u.BookingPolicy)
	mongotx.SetIfPresent(set, "foundedYear", u.FoundedYear)

	if u.Services != nil {
		set["services"] = u.Services
	}
	if u.Portfolio != nil {
		set["portfolio"] = u.Portfolio
	}
	if u.ServiceCities != nil {
		set["serviceCities"] = u.ServiceCities
	}
	if u.Awards != nil {
		set["awards"] = u.Awards
	}

	if admin {
		mongotx.SetIfPresent(set, "rating", u.Rating)
		mongotx.SetIfPresent(set, "isApproved", u.IsApproved)
	}
	return set
}
