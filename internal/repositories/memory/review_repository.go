package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rentride/internal/models"
	"rentride/internal/repositories/interfaces"
	"rentride/internal/utils"
)

type reviewKey struct {
	user, vehicle, booking primitive.ObjectID
}

type reviewRepository struct {
	mu      sync.RWMutex
	reviews map[primitive.ObjectID]*models.Review
	keys    map[reviewKey]primitive.ObjectID
}

func NewReviewRepository() interfaces.ReviewRepository {
	return &reviewRepository{
		reviews: make(map[primitive.ObjectID]*models.Review),
		keys:    make(map[reviewKey]primitive.ObjectID),
	}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := reviewKey{review.UserID, review.VehicleID, review.BookingID}
	if _, ok := r.keys[key]; ok {
		return fmt.Errorf("review: %w", utils.ErrAlreadyExists)
	}

	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now().UTC()

	stored := *review
	r.reviews[review.ID] = &stored
	r.keys[key] = review.ID
	return nil
}

func (r *reviewRepository) Exists(ctx context.Context, userID, vehicleID, bookingID primitive.ObjectID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.keys[reviewKey{userID, vehicleID, bookingID}]
	return ok, nil
}

func (r *reviewRepository) ListByVehicle(ctx context.Context, vehicleID primitive.ObjectID, approvedOnly bool) ([]*models.Review, error) {
	return r.filter(func(rv *models.Review) bool {
		return rv.VehicleID == vehicleID && (!approvedOnly || rv.Approved)
	}), nil
}

func (r *reviewRepository) ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]*models.Review, error) {
	return r.filter(func(rv *models.Review) bool {
		return rv.BookingID == bookingID
	}), nil
}

func (r *reviewRepository) Approve(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rv, ok := r.reviews[id]
	if !ok {
		return nil, fmt.Errorf("review %s: %w", id.Hex(), utils.ErrNotFound)
	}
	rv.Approved = true
	c := *rv
	return &c, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rv, ok := r.reviews[id]
	if !ok {
		return fmt.Errorf("review %s: %w", id.Hex(), utils.ErrNotFound)
	}
	delete(r.keys, reviewKey{rv.UserID, rv.VehicleID, rv.BookingID})
	delete(r.reviews, id)
	return nil
}

func (r *reviewRepository) filter(keep func(*models.Review) bool) []*models.Review {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*models.Review{}
	for _, rv := range r.reviews {
		if keep(rv) {
			c := *rv
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}
