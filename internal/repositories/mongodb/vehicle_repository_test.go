package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"rentride/internal/models"
	"rentride/internal/utils"
	"rentride/pkg/cache"
)

func newVehicleCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewRedisCacheFromClient(client, "test:"), s
}

func vehicleDoc(t *testing.T, v *models.Vehicle) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)

	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func testVehicle(bookings ...models.Booking) *models.Vehicle {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return &models.Vehicle{
		ID:          primitive.NewObjectID(),
		Make:        "Mahindra",
		Model:       "Thar",
		Type:        "suv",
		Location:    "Goa",
		PricePerDay: 55,
		Images:      []string{},
		Bookings:    bookings,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestVehicleRepository_Reads(t *testing.T) {
	ctx := context.Background()
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("GetByID reads the store past a cached copy", func(mt *mtest.T) {
		c, _ := newVehicleCache(mt.T)
		repo := &vehicleRepository{collection: mt.Coll, cache: c}

		stale := testVehicle()
		require.NoError(mt, c.Set(ctx, utils.CacheVehiclePrefix+stale.ID.Hex(), stale, time.Minute))

		current := testVehicle(models.Booking{
			ID:        primitive.NewObjectID(),
			UserID:    primitive.NewObjectID(),
			StartDate: time.Date(2030, 2, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2030, 2, 3, 0, 0, 0, 0, time.UTC),
			Status:    models.BookingStatusConfirmed,
		})
		current.ID = stale.ID

		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, vehicleDoc(mt.T, current)))

		got, err := repo.GetByID(ctx, stale.ID)
		require.NoError(mt, err)
		assert.Len(mt, got.Bookings, 1)
		assert.Equal(mt, "find", mt.GetStartedEvent().CommandName)
	})

	mt.Run("GetCached serves the cached copy", func(mt *mtest.T) {
		c, _ := newVehicleCache(mt.T)
		repo := &vehicleRepository{collection: mt.Coll, cache: c}

		cached := testVehicle()
		require.NoError(mt, c.Set(ctx, utils.CacheVehiclePrefix+cached.ID.Hex(), cached, time.Minute))

		got, err := repo.GetCached(ctx, cached.ID)
		require.NoError(mt, err)
		assert.Equal(mt, "Thar", got.Model)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("GetCached fills the cache on a miss", func(mt *mtest.T) {
		c, s := newVehicleCache(mt.T)
		repo := &vehicleRepository{collection: mt.Coll, cache: c}

		v := testVehicle()
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, vehicleDoc(mt.T, v)))

		got, err := repo.GetCached(ctx, v.ID)
		require.NoError(mt, err)
		assert.Equal(mt, v.ID, got.ID)
		assert.True(mt, s.Exists("test:"+utils.CacheVehiclePrefix+v.ID.Hex()))
	})

	mt.Run("unknown vehicle", func(mt *mtest.T) {
		repo := &vehicleRepository{collection: mt.Coll}

		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, utils.ErrNotFound)
	})
}

func TestVehicleRepository_RecordRefund(t *testing.T) {
	ctx := context.Background()
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("adds the reference to the set", func(mt *mtest.T) {
		repo := &vehicleRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		require.NoError(mt, repo.RecordRefund(ctx, primitive.NewObjectID(), "pay_7"))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "update", started.CommandName)
		cmd := started.Command.String()
		assert.Contains(mt, cmd, "$addToSet")
		assert.Contains(mt, cmd, "refunded_payments")
		assert.Contains(mt, cmd, "pay_7")
	})

	mt.Run("unknown vehicle", func(mt *mtest.T) {
		repo := &vehicleRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.RecordRefund(ctx, primitive.NewObjectID(), "pay_7")
		assert.ErrorIs(mt, err, utils.ErrNotFound)
	})
}
