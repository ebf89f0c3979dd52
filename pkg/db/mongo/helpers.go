package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context unchanged
// with a no-op cancel function, as we cannot wrap SessionContext without breaking
// transaction semantics.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}

	return context.WithTimeout(ctx, timeout)
}

// ObjectID parses a hex id. ok is false for malformed input.
func ObjectID(hex string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(hex)
	return oid, err == nil
}

// ObjectIDs parses every id, skipping malformed ones.
func ObjectIDs(hexes []string) []primitive.ObjectID {
	oids := make([]primitive.ObjectID, 0, len(hexes))
	seen := make(map[primitive.ObjectID]struct{}, len(hexes))
	for _, h := range hexes {
		oid, ok := ObjectID(h)
		if !ok {
			continue
		}
		if _, dup := seen[oid]; dup {
			continue
		}
		seen[oid] = struct{}{}
		oids = append(oids, oid)
	}
	return oids
}

// InsertedHex returns the hex form of an InsertOne result id.
func InsertedHex(result *mongo.InsertOneResult) string {
	if result == nil {
		return ""
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return ""
}

func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

func IsNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// Now returns the timestamp precision Mongo stores.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// SetIfPresent copies non-nil pointer values into a $set document.
func SetIfPresent[T any](set bson.M, key string, value *T) {
	if value != nil {
		set[key] = *value
	}
}
