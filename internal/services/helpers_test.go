package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rentride/internal/models"
	"rentride/internal/repositories/interfaces"
	"rentride/internal/repositories/memory"
	"rentride/pkg/cache"
	"rentride/pkg/logger"
	"rentride/pkg/notify"
)

// jan returns 2024-01-<d> UTC.
func jan(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*notify.BookingEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event *notify.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	vehicles  interfaces.VehicleRepository
	users     interfaces.UserRepository
	reviews   interfaces.ReviewRepository
	publisher *recordingPublisher
	bookings  BookingService
	log       *logger.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		vehicles:  memory.NewVehicleRepository(),
		users:     memory.NewUserRepository(),
		reviews:   memory.NewReviewRepository(),
		publisher: &recordingPublisher{},
		log:       logger.NewNop(),
	}
	f.bookings = NewBookingService(f.vehicles, f.publisher, f.log)
	return f
}

func (f *fixture) vehicle(t *testing.T, pricePerDay float64) *models.Vehicle {
	t.Helper()
	v := &models.Vehicle{
		Make:        "Toyota",
		Model:       "Corolla",
		Type:        "sedan",
		Location:    "Nairobi",
		PricePerDay: pricePerDay,
		Images:      []string{"https://cdn.example.com/corolla.jpg"},
	}
	require.NoError(t, f.vehicles.Create(context.Background(), v))
	return v
}

func (f *fixture) book(t *testing.T, vehicleID, userID primitive.ObjectID, start, end time.Time) *models.Booking {
	t.Helper()
	v, err := f.bookings.Create(context.Background(), &CreateBookingRequest{
		VehicleID: vehicleID,
		UserID:    userID,
		StartDate: start,
		EndDate:   end,
	})
	require.NoError(t, err)
	return &v.Bookings[len(v.Bookings)-1]
}

func newTestCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisCacheFromClient(client, ""), s
}
