// Package memory holds mutex-guarded repositories used when no MongoDB URI
// is configured and by service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rentride/internal/models"
	"rentride/internal/repositories/interfaces"
	"rentride/internal/utils"
)

type vehicleRepository struct {
	mu       sync.Mutex
	vehicles map[primitive.ObjectID]*models.Vehicle
}

func NewVehicleRepository() interfaces.VehicleRepository {
	return &vehicleRepository{
		vehicles: make(map[primitive.ObjectID]*models.Vehicle),
	}
}

func copyVehicle(v *models.Vehicle) *models.Vehicle {
	c := *v
	c.Images = append([]string{}, v.Images...)
	if v.Thumbnails != nil {
		c.Thumbnails = append([]string{}, v.Thumbnails...)
	}
	c.Bookings = append([]models.Booking{}, v.Bookings...)
	if v.RefundedPayments != nil {
		c.RefundedPayments = append([]string{}, v.RefundedPayments...)
	}
	return &c
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	vehicle.ID = primitive.NewObjectID()
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now
	if vehicle.Images == nil {
		vehicle.Images = []string{}
	}
	if vehicle.Bookings == nil {
		vehicle.Bookings = []models.Booking{}
	}

	r.vehicles[vehicle.ID] = copyVehicle(vehicle)
	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return copyVehicle(v), nil
}

func (r *vehicleRepository) GetCached(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	return r.GetByID(ctx, id)
}

func (r *vehicleRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Vehicle, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	search := strings.ToLower(params.Search)
	matched := make([]*models.Vehicle, 0, len(r.vehicles))
	for _, v := range r.vehicles {
		if search != "" && !matchesSearch(v, search) {
			continue
		}
		c := copyVehicle(v)
		c.Bookings = nil
		matched = append(matched, c)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	skip := params.GetSkip()
	if skip >= len(matched) {
		return []*models.Vehicle{}, total, nil
	}
	end := skip + params.GetLimit()
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func matchesSearch(v *models.Vehicle, search string) bool {
	for _, field := range []string{v.Make, v.Model, v.Type, v.Location} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func (r *vehicleRepository) AddImage(ctx context.Context, id primitive.ObjectID, imageURL, thumbnailURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, err := r.get(id)
	if err != nil {
		return err
	}
	v.Images = append(v.Images, imageURL)
	if thumbnailURL != "" {
		v.Thumbnails = append(v.Thumbnails, thumbnailURL)
	}
	v.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *vehicleRepository) AppendBooking(ctx context.Context, vehicleID primitive.ObjectID, booking *models.Booking) (*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, err := r.get(vehicleID)
	if err != nil {
		return nil, err
	}
	if v.FindBookingByPaymentReference(booking.PaymentReference) != nil {
		return nil, fmt.Errorf("payment %s: %w", booking.PaymentReference, utils.ErrAlreadyExists)
	}
	if v.HasConflict(booking.StartDate, booking.EndDate, primitive.NilObjectID) {
		return nil, utils.ErrDateConflict
	}

	v.Bookings = append(v.Bookings, *booking)
	v.UpdatedAt = time.Now().UTC()
	return copyVehicle(v), nil
}

func (r *vehicleRepository) UpdateBookingDates(ctx context.Context, vehicleID, bookingID primitive.ObjectID, start, end time.Time) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, err := r.get(vehicleID)
	if err != nil {
		return nil, err
	}
	b := v.FindBooking(bookingID)
	if b == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID.Hex(), utils.ErrNotFound)
	}
	if v.HasConflict(start, end, bookingID) {
		return nil, utils.ErrDateConflict
	}

	b.StartDate = start
	b.EndDate = end
	v.UpdatedAt = time.Now().UTC()

	updated := *b
	return &updated, nil
}

func (r *vehicleRepository) RemoveBooking(ctx context.Context, vehicleID, bookingID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, err := r.get(vehicleID)
	if err != nil {
		return false, err
	}
	for i := range v.Bookings {
		if v.Bookings[i].ID == bookingID {
			v.Bookings = append(v.Bookings[:i], v.Bookings[i+1:]...)
			v.UpdatedAt = time.Now().UTC()
			return true, nil
		}
	}
	return false, nil
}

func (r *vehicleRepository) RecordRefund(ctx context.Context, vehicleID primitive.ObjectID, paymentReference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, err := r.get(vehicleID)
	if err != nil {
		return err
	}
	if !v.IsRefunded(paymentReference) {
		v.RefundedPayments = append(v.RefundedPayments, paymentReference)
		v.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (r *vehicleRepository) SetReviewStatus(ctx context.Context, vehicleID, bookingID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, err := r.get(vehicleID)
	if err != nil {
		return err
	}
	b := v.FindBooking(bookingID)
	if b == nil {
		return fmt.Errorf("booking %s: %w", bookingID.Hex(), utils.ErrNotFound)
	}
	b.ReviewStatus = true
	return nil
}

func (r *vehicleRepository) FindByBookingUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*models.Vehicle
	for _, v := range r.vehicles {
		for i := range v.Bookings {
			if v.Bookings[i].UserID == userID {
				result = append(result, copyVehicle(v))
				break
			}
		}
	}
	return result, nil
}

// get must be called with mu held.
func (r *vehicleRepository) get(id primitive.ObjectID) (*models.Vehicle, error) {
	v, ok := r.vehicles[id]
	if !ok {
		return nil, fmt.Errorf("vehicle %s: %w", id.Hex(), utils.ErrNotFound)
	}
	return v, nil
}
