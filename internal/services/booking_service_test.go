package services

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
	"rentride/pkg/notify"
)

func TestBookingService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("same-day range is rejected", func(t *testing.T) {
		f := newFixture(t)
		v := f.vehicle(t, 50)
		_, err := f.bookings.Create(ctx, &CreateBookingRequest{VehicleID: v.ID, UserID: primitive.NewObjectID(), StartDate: jan(10), EndDate: jan(10)})
		assert.ErrorIs(t, err, utils.ErrInvalidDateRange)
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.bookings.Create(ctx, &CreateBookingRequest{VehicleID: primitive.NewObjectID(), StartDate: jan(1), EndDate: jan(3)})
		assert.ErrorIs(t, err, utils.ErrNotFound)
	})

	t.Run("boundary-inclusive conflict", func(t *testing.T) {
		f := newFixture(t)
		v := f.vehicle(t, 50)
		f.book(t, v.ID, primitive.NewObjectID(), jan(5), jan(10))

		_, err := f.bookings.Create(ctx, &CreateBookingRequest{VehicleID: v.ID, StartDate: jan(10), EndDate: jan(15)})
		assert.ErrorIs(t, err, utils.ErrDateConflict)

		updated, err := f.bookings.Create(ctx, &CreateBookingRequest{VehicleID: v.ID, StartDate: jan(11), EndDate: jan(15), TotalPrice: 200})
		require.NoError(t, err)
		require.Len(t, updated.Bookings, 2)

		b := updated.Bookings[1]
		assert.Equal(t, models.BookingStatusConfirmed, b.Status)
		assert.False(t, b.Paid)
		assert.Empty(t, b.PaymentReference)
		assert.False(t, b.ReviewStatus)
		assert.Equal(t, 200.0, b.TotalPrice)
	})

	t.Run("publishes an event", func(t *testing.T) {
		f := newFixture(t)
		v := f.vehicle(t, 50)
		f.book(t, v.ID, primitive.NewObjectID(), jan(1), jan(2))
		assert.Equal(t, []string{notify.EventBookingCreated}, f.publisher.types())
	})
}

func TestBookingService_ConcurrentCreate(t *testing.T) {
	f := newFixture(t)
	v := f.vehicle(t, 50)
	ctx := context.Background()

	const workers = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Every range overlaps jan(10).
			_, err := f.bookings.Create(ctx, &CreateBookingRequest{
				VehicleID: v.ID,
				UserID:    primitive.NewObjectID(),
				StartDate: jan(1 + i%9),
				EndDate:   jan(10 + i%5),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if assert.ErrorIs(t, err, utils.ErrDateConflict) {
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	bookings, err := f.bookings.ListByVehicle(ctx, v.ID)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestBookingService_NoOverlapAfterMixedMutations(t *testing.T) {
	f := newFixture(t)
	v := f.vehicle(t, 50)
	ctx := context.Background()

	a := f.book(t, v.ID, primitive.NewObjectID(), jan(1), jan(3))
	b := f.book(t, v.ID, primitive.NewObjectID(), jan(5), jan(7))
	f.book(t, v.ID, primitive.NewObjectID(), jan(10), jan(12))

	_, _ = f.bookings.Update(ctx, v.ID, a.ID, jan(2), jan(6)) // conflicts with b
	_, _ = f.bookings.Update(ctx, v.ID, b.ID, jan(4), jan(8))
	_, _ = f.bookings.Create(ctx, &CreateBookingRequest{VehicleID: v.ID, StartDate: jan(8), EndDate: jan(9)})
	_, _ = f.bookings.Create(ctx, &CreateBookingRequest{VehicleID: v.ID, StartDate: jan(13), EndDate: jan(20)})

	bookings, err := f.bookings.ListByVehicle(ctx, v.ID)
	require.NoError(t, err)
	for i := range bookings {
		for j := i + 1; j < len(bookings); j++ {
			assert.False(t, bookings[i].Overlaps(bookings[j].StartDate, bookings[j].EndDate),
				"bookings %d and %d overlap", i, j)
		}
	}
}

func TestBookingService_Update(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.vehicle(t, 50)
	a := f.book(t, v.ID, primitive.NewObjectID(), jan(1), jan(5))
	f.book(t, v.ID, primitive.NewObjectID(), jan(10), jan(15))

	t.Run("overlapping another booking conflicts", func(t *testing.T) {
		_, err := f.bookings.Update(ctx, v.ID, a.ID, jan(8), jan(10))
		assert.ErrorIs(t, err, utils.ErrDateConflict)
	})

	t.Run("overlapping only itself succeeds", func(t *testing.T) {
		b, err := f.bookings.Update(ctx, v.ID, a.ID, jan(2), jan(6))
		require.NoError(t, err)
		assert.Equal(t, jan(2), b.StartDate)
		assert.Equal(t, jan(6), b.EndDate)
	})

	t.Run("missing dates", func(t *testing.T) {
		_, err := f.bookings.Update(ctx, v.ID, a.ID, jan(2), time.Time{})
		assert.ErrorIs(t, err, utils.ErrInvalidInput)
	})

	t.Run("unknown booking", func(t *testing.T) {
		_, err := f.bookings.Update(ctx, v.ID, primitive.NewObjectID(), jan(20), jan(22))
		assert.ErrorIs(t, err, utils.ErrNotFound)
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		_, err := f.bookings.Update(ctx, primitive.NewObjectID(), a.ID, jan(20), jan(22))
		assert.ErrorIs(t, err, utils.ErrNotFound)
	})
}

func TestBookingService_Cancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.vehicle(t, 50)
	a := f.book(t, v.ID, primitive.NewObjectID(), jan(1), jan(5))

	require.NoError(t, f.bookings.Cancel(ctx, v.ID, a.ID))
	bookings, err := f.bookings.ListByVehicle(ctx, v.ID)
	require.NoError(t, err)
	assert.Empty(t, bookings)

	// Cancelled dates are free again.
	f.book(t, v.ID, primitive.NewObjectID(), jan(1), jan(5))

	assert.NoError(t, f.bookings.Cancel(ctx, v.ID, primitive.NewObjectID()), "unknown booking is not an error")
	assert.ErrorIs(t, f.bookings.Cancel(ctx, primitive.NewObjectID(), a.ID), utils.ErrNotFound)
}

func TestBookingService_ListByUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v1 := f.vehicle(t, 50)
	v2 := f.vehicle(t, 80)
	user := primitive.NewObjectID()

	f.book(t, v2.ID, user, jan(20), jan(22))
	f.book(t, v1.ID, user, jan(3), jan(5))
	f.book(t, v1.ID, primitive.NewObjectID(), jan(10), jan(12))
	f.book(t, v1.ID, user, jan(14), jan(16))

	bookings, err := f.bookings.ListByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, bookings, 3)
	assert.Equal(t, jan(3), bookings[0].StartDate)
	assert.Equal(t, jan(14), bookings[1].StartDate)
	assert.Equal(t, jan(20), bookings[2].StartDate)
	assert.Equal(t, v2.ID, bookings[2].Vehicle.ID)
	assert.Equal(t, "https://cdn.example.com/corolla.jpg", bookings[0].Vehicle.Image)

	empty, err := f.bookings.ListByUser(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestBookingService_ConfirmPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("computes price server side", func(t *testing.T) {
		f := newFixture(t)
		v := f.vehicle(t, 40)
		user := primitive.NewObjectID()

		b, err := f.bookings.ConfirmPayment(ctx, &ConfirmPaymentRequest{VehicleID: v.ID, UserID: user, StartDate: jan(1), EndDate: jan(4), PaymentReference: "pi_1"})
		require.NoError(t, err)
		assert.Equal(t, 120.0, b.TotalPrice)
		assert.True(t, b.Paid)
		assert.Equal(t, "pi_1", b.PaymentReference)

		history, err := f.bookings.PaymentHistory(ctx, user)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "Toyota Corolla", history[0].Vehicle)
		assert.Equal(t, "pi_1", history[0].PaymentReference)
	})

	t.Run("idempotent on payment reference", func(t *testing.T) {
		f := newFixture(t)
		v := f.vehicle(t, 40)
		req := &ConfirmPaymentRequest{VehicleID: v.ID, UserID: primitive.NewObjectID(), StartDate: jan(1), EndDate: jan(4), PaymentReference: "pi_dup"}

		first, err := f.bookings.ConfirmPayment(ctx, req)
		require.NoError(t, err)
		second, err := f.bookings.ConfirmPayment(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		bookings, err := f.bookings.ListByVehicle(ctx, v.ID)
		require.NoError(t, err)
		assert.Len(t, bookings, 1)
	})

	t.Run("applies the conflict check", func(t *testing.T) {
		f := newFixture(t)
		v := f.vehicle(t, 40)
		f.book(t, v.ID, primitive.NewObjectID(), jan(3), jan(6))

		_, err := f.bookings.ConfirmPayment(ctx, &ConfirmPaymentRequest{VehicleID: v.ID, UserID: primitive.NewObjectID(), StartDate: jan(1), EndDate: jan(4), PaymentReference: "pi_late"})
		assert.ErrorIs(t, err, utils.ErrDateConflict)
	})

	t.Run("payment history skips unpaid bookings", func(t *testing.T) {
		f := newFixture(t)
		v := f.vehicle(t, 40)
		user := primitive.NewObjectID()
		f.book(t, v.ID, user, jan(1), jan(2))

		history, err := f.bookings.PaymentHistory(ctx, user)
		require.NoError(t, err)
		assert.Empty(t, history)
	})
}

func TestBookingService_LinkReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.vehicle(t, 40)
	a := f.book(t, v.ID, primitive.NewObjectID(), jan(1), jan(3))
	b := f.book(t, v.ID, primitive.NewObjectID(), jan(5), jan(7))

	before, err := f.vehicles.GetByID(ctx, v.ID)
	require.NoError(t, err)

	require.NoError(t, f.bookings.LinkReview(ctx, v.ID, b.ID))

	after, err := f.vehicles.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, after.FindBooking(b.ID).ReviewStatus)
	assert.Equal(t, *before.FindBooking(a.ID), *after.FindBooking(a.ID))

	expected := *before.FindBooking(b.ID)
	expected.ReviewStatus = true
	assert.Equal(t, expected, *after.FindBooking(b.ID))

	assert.ErrorIs(t, f.bookings.LinkReview(ctx, v.ID, primitive.NewObjectID()), utils.ErrNotFound)
}
