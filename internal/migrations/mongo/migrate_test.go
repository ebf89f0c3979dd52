package mongo

import (
	"testing"

	accountsrepo "shubakar/internal/accounts/repository"
	bookingsrepo "shubakar/internal/bookings/repository"
	chatrepo "shubakar/internal/chat/repository"
	eventsrepo "shubakar/internal/events/repository"
	timelinerepo "shubakar/internal/timeline/repository"
	vendorsrepo "shubakar/internal/vendors/repository"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections_MatchRepositories(t *testing.T) {
	collections := Collections()

	for _, name := range []string{
		accountsrepo.CollectionName,
		vendorsrepo.CollectionName,
		bookingsrepo.CollectionName,
		eventsrepo.CollectionName,
		chatrepo.CollectionName,
		timelinerepo.CollectionName,
	} {
		def, ok := collections[name]
		if assert.True(t, ok, "no migration for %s", name) {
			assert.NotEmpty(t, def.Indexes, name)
			assert.Contains(t, def.Validator, "$jsonSchema", name)
		}
	}
	assert.Len(t, collections, 6)
}

func TestAccountsIndexes_UniqueEmail(t *testing.T) {
	idx := AccountsIndexes[0]
	assert.Equal(t, bson.D{{Key: "email", Value: 1}}, idx.Keys)
	if assert.NotNil(t, idx.Options) && assert.NotNil(t, idx.Options.Unique) {
		assert.True(t, *idx.Options.Unique)
	}
}
