package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rentride/internal/models"
	"rentride/internal/utils"
)

func TestReviewService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewReviewService(f.reviews, f.vehicles, f.users, f.bookings, f.log)

	author := &models.User{Name: "Wanjiru", Email: "wanjiru@example.com", Password: "x"}
	require.NoError(t, f.users.Create(ctx, author))

	v := f.vehicle(t, 30)
	b := f.book(t, v.ID, author.ID, jan(1), jan(3))
	other := f.book(t, v.ID, primitive.NewObjectID(), jan(5), jan(7))

	t.Run("rating out of range", func(t *testing.T) {
		_, err := svc.Create(ctx, author.ID, &CreateReviewRequest{VehicleID: v.ID, BookingID: b.ID, Rating: 6})
		assert.ErrorIs(t, err, utils.ErrInvalidInput)
	})

	t.Run("comment too long", func(t *testing.T) {
		_, err := svc.Create(ctx, author.ID, &CreateReviewRequest{VehicleID: v.ID, BookingID: b.ID, Rating: 4, Comment: strings.Repeat("a", 501)})
		assert.ErrorIs(t, err, utils.ErrInvalidInput)
	})

	t.Run("someone else's booking", func(t *testing.T) {
		_, err := svc.Create(ctx, author.ID, &CreateReviewRequest{VehicleID: v.ID, BookingID: other.ID, Rating: 4})
		assert.ErrorIs(t, err, utils.ErrNotFound)
	})

	t.Run("creates and links", func(t *testing.T) {
		review, err := svc.Create(ctx, author.ID, &CreateReviewRequest{VehicleID: v.ID, BookingID: b.ID, Rating: 5, Comment: " Great car "})
		require.NoError(t, err)
		assert.False(t, review.Approved)
		assert.Equal(t, "Great car", review.Comment)

		vehicle, err := f.vehicles.GetByID(ctx, v.ID)
		require.NoError(t, err)
		assert.True(t, vehicle.FindBooking(b.ID).ReviewStatus)
		assert.False(t, vehicle.FindBooking(other.ID).ReviewStatus)
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := svc.Create(ctx, author.ID, &CreateReviewRequest{VehicleID: v.ID, BookingID: b.ID, Rating: 3})
		assert.ErrorIs(t, err, utils.ErrAlreadyExists)
	})

	t.Run("listing and moderation", func(t *testing.T) {
		all, err := svc.ListByVehicle(ctx, v.ID, false)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "Wanjiru", all[0].User.Name)

		approved, err := svc.ListByVehicle(ctx, v.ID, true)
		require.NoError(t, err)
		assert.Empty(t, approved)

		_, err = svc.Approve(ctx, all[0].ID)
		require.NoError(t, err)

		approved, err = svc.ListByVehicle(ctx, v.ID, true)
		require.NoError(t, err)
		assert.Len(t, approved, 1)

		byBooking, err := svc.ListByBooking(ctx, b.ID)
		require.NoError(t, err)
		assert.Len(t, byBooking, 1)

		_, err = svc.Approve(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, utils.ErrNotFound)
	})
}

type failingLinkBookings struct {
	BookingService
}

func (failingLinkBookings) LinkReview(ctx context.Context, vehicleID, bookingID primitive.ObjectID) error {
	return errors.New("write conflict")
}

func TestReviewService_LinkFailureAllowsRetry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	author := &models.User{Name: "Tomas", Email: "tomas@example.com", Password: "x"}
	require.NoError(t, f.users.Create(ctx, author))
	v := f.vehicle(t, 30)
	b := f.book(t, v.ID, author.ID, jan(1), jan(3))
	request := &CreateReviewRequest{VehicleID: v.ID, BookingID: b.ID, Rating: 4}

	broken := NewReviewService(f.reviews, f.vehicles, f.users, failingLinkBookings{f.bookings}, f.log)
	_, err := broken.Create(ctx, author.ID, request)
	require.Error(t, err)

	exists, err := f.reviews.Exists(ctx, author.ID, v.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	svc := NewReviewService(f.reviews, f.vehicles, f.users, f.bookings, f.log)
	review, err := svc.Create(ctx, author.ID, request)
	require.NoError(t, err)
	assert.Equal(t, 4, review.Rating)

	vehicle, err := f.vehicles.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, vehicle.FindBooking(b.ID).ReviewStatus)
}
