package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMigrationsAreOrdered(t *testing.T) {
	migrations := Migrations()
	require.NotEmpty(t, migrations)

	for i := 1; i < len(migrations); i++ {
		assert.Greater(t, migrations[i].Version, migrations[i-1].Version)
	}
	for _, m := range migrations {
		assert.NotNil(t, m.Up, "migration %d has no Up", m.Version)
		assert.NotNil(t, m.Down, "migration %d has no Down", m.Version)
	}
}

func TestReviewIndexesEnforceUniqueness(t *testing.T) {
	indexes := ReviewIndexes()
	require.NotEmpty(t, indexes)

	unique := indexes[0]
	keys, ok := unique.Keys.(bson.D)
	require.True(t, ok)
	assert.Equal(t, []string{"user_id", "vehicle_id", "booking_id"}, []string{keys[0].Key, keys[1].Key, keys[2].Key})
	require.NotNil(t, unique.Options)
	require.NotNil(t, unique.Options.Unique)
	assert.True(t, *unique.Options.Unique)
}

func TestUserEmailIsUnique(t *testing.T) {
	email := UserIndexes()[0]
	keys := email.Keys.(bson.D)
	assert.Equal(t, "email", keys[0].Key)
	require.NotNil(t, email.Options.Unique)
	assert.True(t, *email.Options.Unique)
}
