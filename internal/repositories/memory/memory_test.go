package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rentride/internal/models"
	"rentride/internal/utils"
)

var day0 = time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)

func newBooking(startDay, endDay int) *models.Booking {
	return &models.Booking{
		ID:        primitive.NewObjectID(),
		UserID:    primitive.NewObjectID(),
		StartDate: day0.AddDate(0, 0, startDay),
		EndDate:   day0.AddDate(0, 0, endDay),
		Status:    models.BookingStatusConfirmed,
	}
}

func seedVehicle(t *testing.T) (*vehicleRepository, primitive.ObjectID) {
	t.Helper()
	repo := NewVehicleRepository().(*vehicleRepository)
	v := &models.Vehicle{Make: "Toyota", Model: "Corolla", Type: "sedan", Location: "Pune", PricePerDay: 40}
	require.NoError(t, repo.Create(context.Background(), v))
	return repo, v.ID
}

func TestVehicleRepository_AppendBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("touching ranges conflict", func(t *testing.T) {
		repo, vid := seedVehicle(t)
		_, err := repo.AppendBooking(ctx, vid, newBooking(0, 3))
		require.NoError(t, err)

		_, err = repo.AppendBooking(ctx, vid, newBooking(3, 5))
		assert.ErrorIs(t, err, utils.ErrDateConflict)

		_, err = repo.AppendBooking(ctx, vid, newBooking(4, 6))
		assert.NoError(t, err)
	})

	t.Run("cancelled bookings do not block", func(t *testing.T) {
		repo, vid := seedVehicle(t)
		b := newBooking(0, 3)
		b.Status = models.BookingStatusCancelled
		_, err := repo.AppendBooking(ctx, vid, b)
		require.NoError(t, err)

		_, err = repo.AppendBooking(ctx, vid, newBooking(1, 2))
		assert.NoError(t, err)
	})

	t.Run("duplicate payment reference", func(t *testing.T) {
		repo, vid := seedVehicle(t)
		b := newBooking(0, 3)
		b.PaymentReference = "pi_1"
		_, err := repo.AppendBooking(ctx, vid, b)
		require.NoError(t, err)

		again := newBooking(10, 12)
		again.PaymentReference = "pi_1"
		_, err = repo.AppendBooking(ctx, vid, again)
		assert.ErrorIs(t, err, utils.ErrAlreadyExists)
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		repo, _ := seedVehicle(t)
		_, err := repo.AppendBooking(ctx, primitive.NewObjectID(), newBooking(0, 3))
		assert.ErrorIs(t, err, utils.ErrNotFound)
	})

	t.Run("concurrent appends admit exactly one", func(t *testing.T) {
		repo, vid := seedVehicle(t)

		const n = 20
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.AppendBooking(ctx, vid, newBooking(0, 3))
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		ok := 0
		for err := range errs {
			if err == nil {
				ok++
			} else {
				assert.ErrorIs(t, err, utils.ErrDateConflict)
			}
		}
		assert.Equal(t, 1, ok)

		v, err := repo.GetByID(ctx, vid)
		require.NoError(t, err)
		assert.Len(t, v.Bookings, 1)
	})
}

func TestVehicleRepository_BookingMutations(t *testing.T) {
	ctx := context.Background()
	repo, vid := seedVehicle(t)

	first := newBooking(0, 3)
	second := newBooking(10, 12)
	_, err := repo.AppendBooking(ctx, vid, first)
	require.NoError(t, err)
	_, err = repo.AppendBooking(ctx, vid, second)
	require.NoError(t, err)

	t.Run("update ignores its own range", func(t *testing.T) {
		b, err := repo.UpdateBookingDates(ctx, vid, first.ID, day0.AddDate(0, 0, 1), day0.AddDate(0, 0, 4))
		require.NoError(t, err)
		assert.Equal(t, day0.AddDate(0, 0, 4), b.EndDate)
	})

	t.Run("update into another booking conflicts", func(t *testing.T) {
		_, err := repo.UpdateBookingDates(ctx, vid, first.ID, day0.AddDate(0, 0, 8), day0.AddDate(0, 0, 10))
		assert.ErrorIs(t, err, utils.ErrDateConflict)
	})

	t.Run("update unknown booking", func(t *testing.T) {
		_, err := repo.UpdateBookingDates(ctx, vid, primitive.NewObjectID(), day0, day0.AddDate(0, 0, 2))
		assert.ErrorIs(t, err, utils.ErrNotFound)
	})

	t.Run("review status", func(t *testing.T) {
		require.NoError(t, repo.SetReviewStatus(ctx, vid, second.ID))
		v, err := repo.GetByID(ctx, vid)
		require.NoError(t, err)
		assert.True(t, v.FindBooking(second.ID).ReviewStatus)
		assert.False(t, v.FindBooking(first.ID).ReviewStatus)
	})

	t.Run("remove", func(t *testing.T) {
		removed, err := repo.RemoveBooking(ctx, vid, first.ID)
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = repo.RemoveBooking(ctx, vid, first.ID)
		require.NoError(t, err)
		assert.False(t, removed)

		_, err = repo.RemoveBooking(ctx, primitive.NewObjectID(), first.ID)
		assert.ErrorIs(t, err, utils.ErrNotFound)
	})

	t.Run("find by booking user", func(t *testing.T) {
		vehicles, err := repo.FindByBookingUser(ctx, second.UserID)
		require.NoError(t, err)
		require.Len(t, vehicles, 1)
		assert.Equal(t, vid, vehicles[0].ID)
	})
}

func TestVehicleRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo, vid := seedVehicle(t)

	v, err := repo.GetByID(ctx, vid)
	require.NoError(t, err)
	v.Make = "Changed"
	v.Bookings = append(v.Bookings, *newBooking(0, 2))

	again, err := repo.GetByID(ctx, vid)
	require.NoError(t, err)
	assert.Equal(t, "Toyota", again.Make)
	assert.Empty(t, again.Bookings)
}

func TestVehicleRepository_RecordRefund(t *testing.T) {
	ctx := context.Background()
	repo, vid := seedVehicle(t)

	require.NoError(t, repo.RecordRefund(ctx, vid, "pi_9"))
	require.NoError(t, repo.RecordRefund(ctx, vid, "pi_9"))

	v, err := repo.GetByID(ctx, vid)
	require.NoError(t, err)
	assert.True(t, v.IsRefunded("pi_9"))
	assert.False(t, v.IsRefunded("pi_8"))
	assert.Len(t, v.RefundedPayments, 1)

	err = repo.RecordRefund(ctx, primitive.NewObjectID(), "pi_9")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestVehicleRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewVehicleRepository()
	for _, mk := range []string{"Honda", "Tata", "Hyundai"} {
		require.NoError(t, repo.Create(ctx, &models.Vehicle{Make: mk, Model: "X", Location: "Delhi"}))
	}

	vehicles, total, err := repo.List(ctx, &utils.PaginationParams{Page: 1, PageSize: 2, Search: "h"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total) // "h" matches Delhi too
	assert.Len(t, vehicles, 2)

	vehicles, total, err = repo.List(ctx, &utils.PaginationParams{Page: 1, PageSize: 10, Search: "tata"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Tata", vehicles[0].Make)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	u := &models.User{Name: "Asha", Email: " Asha@Example.com ", Password: "hash"}
	require.NoError(t, repo.Create(ctx, u))
	assert.Equal(t, "asha@example.com", u.Email)

	err := repo.Create(ctx, &models.User{Name: "Other", Email: "asha@example.com"})
	assert.ErrorIs(t, err, utils.ErrAlreadyExists)

	got, err := repo.GetByEmail(ctx, "ASHA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.GetByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, utils.ErrNotFound)

	users, err := repo.GetByIDs(ctx, []primitive.ObjectID{u.ID, primitive.NewObjectID()})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestReviewRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository()
	uid, vid, bid := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	rv := &models.Review{UserID: uid, VehicleID: vid, BookingID: bid, Rating: 4}
	require.NoError(t, repo.Create(ctx, rv))

	err := repo.Create(ctx, &models.Review{UserID: uid, VehicleID: vid, BookingID: bid, Rating: 5})
	assert.ErrorIs(t, err, utils.ErrAlreadyExists)

	exists, err := repo.Exists(ctx, uid, vid, bid)
	require.NoError(t, err)
	assert.True(t, exists)

	approved, err := repo.ListByVehicle(ctx, vid, true)
	require.NoError(t, err)
	assert.Empty(t, approved)

	_, err = repo.Approve(ctx, rv.ID)
	require.NoError(t, err)

	approved, err = repo.ListByVehicle(ctx, vid, true)
	require.NoError(t, err)
	assert.Len(t, approved, 1)

	byBooking, err := repo.ListByBooking(ctx, bid)
	require.NoError(t, err)
	assert.Len(t, byBooking, 1)

	require.NoError(t, repo.Delete(ctx, rv.ID))
	exists, err = repo.Exists(ctx, uid, vid, bid)
	require.NoError(t, err)
	assert.False(t, exists)
	require.NoError(t, repo.Create(ctx, &models.Review{UserID: uid, VehicleID: vid, BookingID: bid, Rating: 5}))

	assert.ErrorIs(t, repo.Delete(ctx, primitive.NewObjectID()), utils.ErrNotFound)
}
