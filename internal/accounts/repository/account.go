package repository

import (
	"context"
	"fmt"
	accounterrors "shubakar/internal/accounts/errors"
	"shubakar/pkg/config"
	mongotx "shubakar/pkg/db/mongo"
	"shubakar/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "accounts"
)

type AccountRepository interface {
	Create(ctx context.Context, a *model.Account) error
	FindByID(ctx context.Context, id string) (*model.Account, error)
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Account, error)
	UpdateName(ctx context.Context, id, name string) (*model.Account, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	LinkVendorProfile(ctx context.Context, id, profileID, vendorStatus string) error
	SetVendorStatus(ctx context.Context, id, vendorStatus string) error
	ResetToCustomer(ctx context.Context, id string) error
	SetRole(ctx context.Context, id, role string) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoAccountRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoAccountRepository(cfg *config.Config) AccountRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAccountRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoAccountRepository) Create(ctx context.Context, a *model.Account) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	a.CreatedAt = mongotx.Now()
	result, err := r.collection.InsertOne(ctx, a)
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", accounterrors.ErrDuplicateEmail, a.Email)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	a.ID = mongotx.InsertedHex(result)

	return nil
}

func (r *mongoAccountRepository) FindByID(ctx context.Context, id string) (*model.Account, error) {
	objectID, ok := mongotx.ObjectID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", accounterrors.ErrInvalidID, id)
	}
	return r.findOne(ctx, bson.M{"_id": objectID}, id)
}

// FindByEmail expects an already normalized address.
func (r *mongoAccountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.findOne(ctx, bson.M{"email": email}, email)
}

func (r *mongoAccountRepository) findOne(ctx context.Context, filter bson.M, ref string) (*model.Account, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var a model.Account
	if err := r.collection.FindOne(ctx, filter).Decode(&a); err != nil {
		if mongotx.IsNoDocuments(err) {
			return nil, fmt.Errorf("%w: %s", accounterrors.ErrNotFound, ref)
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return &a, nil
}

func (r *mongoAccountRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Account, error) {
	oids := mongotx.ObjectIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"password": 0})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer cursor.Close(ctx)

	var accounts []*model.Account
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}
	return accounts, nil
}

func (r *mongoAccountRepository) UpdateName(ctx context.Context, id, name string) (*model.Account, error) {
	objectID, ok := mongotx.ObjectID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", accounterrors.ErrInvalidID, id)
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var a model.Account
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{"name": name}}, opts).Decode(&a)
	if err != nil {
		if mongotx.IsNoDocuments(err) {
			return nil, fmt.Errorf("%w: %s", accounterrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update account name: %w", err)
	}
	return &a, nil
}

func (r *mongoAccountRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"password": hash}})
}

func (r *mongoAccountRepository) LinkVendorProfile(ctx context.Context, id, profileID, vendorStatus string) error {
	if _, ok := mongotx.ObjectID(profileID); !ok {
		return fmt.Errorf("invalid vendor profile id: %s", profileID)
	}
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{
		"vendorProfile": profileID,
		"vendorStatus":  vendorStatus,
	}})
}

func (r *mongoAccountRepository) SetVendorStatus(ctx context.Context, id, vendorStatus string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"vendorStatus": vendorStatus}})
}

// ResetToCustomer demotes an account whose vendor profile was removed.
func (r *mongoAccountRepository) ResetToCustomer(ctx context.Context, id string) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{
			"role":         model.RoleCustomer,
			"vendorStatus": model.VendorStatusNotVendor,
		},
		"$unset": bson.M{"vendorProfile": ""},
	})
}

func (r *mongoAccountRepository) SetRole(ctx context.Context, id, role string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"role": role}})
}

func (r *mongoAccountRepository) updateOne(ctx context.Context, id string, update bson.M) error {
	objectID, ok := mongotx.ObjectID(id)
	if !ok {
		return fmt.Errorf("%w: %s", accounterrors.ErrInvalidID, id)
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", accounterrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoAccountRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
