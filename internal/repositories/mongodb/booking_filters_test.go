package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rentride/internal/models"
)

func elemMatch(t *testing.T, filter bson.M) bson.M {
	t.Helper()
	not, ok := filter["bookings"].(bson.M)["$not"].(bson.M)
	require.True(t, ok)
	match, ok := not["$elemMatch"].(bson.M)
	require.True(t, ok)
	return match
}

func TestAppendBookingFilter(t *testing.T) {
	vid := primitive.NewObjectID()
	start := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 3)

	t.Run("unpaid booking guards overlap only", func(t *testing.T) {
		filter := appendBookingFilter(vid, &models.Booking{StartDate: start, EndDate: end})

		assert.Equal(t, vid, filter["_id"])
		assert.NotContains(t, filter, "bookings.payment_reference")

		match := elemMatch(t, filter)
		assert.Equal(t, bson.M{"$ne": models.BookingStatusCancelled}, match["status"])
		assert.Equal(t, bson.M{"$lte": end}, match["start_date"])
		assert.Equal(t, bson.M{"$gte": start}, match["end_date"])
		assert.NotContains(t, match, "_id")
	})

	t.Run("paid booking also guards the reference", func(t *testing.T) {
		filter := appendBookingFilter(vid, &models.Booking{StartDate: start, EndDate: end, PaymentReference: "pi_1"})
		assert.Equal(t, bson.M{"$ne": "pi_1"}, filter["bookings.payment_reference"])
	})
}

func TestUpdateDatesFilter(t *testing.T) {
	vid, bid := primitive.NewObjectID(), primitive.NewObjectID()
	start := time.Date(2030, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)

	filter := updateDatesFilter(vid, bid, start, end)
	assert.Equal(t, vid, filter["_id"])
	assert.Equal(t, bid, filter["bookings._id"])

	match := elemMatch(t, filter)
	assert.Equal(t, bson.M{"$ne": bid}, match["_id"])
	assert.Equal(t, bson.M{"$lte": end}, match["start_date"])
}
