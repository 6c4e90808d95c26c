package interfaces

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rentride/internal/models"
	"rentride/internal/utils"
)

// VehicleRepository persists vehicles and their embedded bookings.
//
// Every booking mutation is a single atomic store operation; none of them
// load the vehicle, change it in memory and write it back.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *models.Vehicle) error
	// GetByID always reads the store. Booking decisions must use it.
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error)
	// GetCached may serve a copy up to a few minutes old. Display only.
	GetCached(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error)
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.Vehicle, int64, error)
	AddImage(ctx context.Context, id primitive.ObjectID, imageURL, thumbnailURL string) error

	// AppendBooking adds booking unless it overlaps a blocking booking
	// (utils.ErrDateConflict) or carries a payment reference already present
	// on the vehicle (utils.ErrAlreadyExists). Returns the updated vehicle.
	AppendBooking(ctx context.Context, vehicleID primitive.ObjectID, booking *models.Booking) (*models.Vehicle, error)

	// UpdateBookingDates moves a booking unless the new range overlaps
	// another blocking booking on the same vehicle.
	UpdateBookingDates(ctx context.Context, vehicleID, bookingID primitive.ObjectID, start, end time.Time) (*models.Booking, error)

	// RemoveBooking deletes a booking. It reports false when the vehicle
	// exists but holds no such booking.
	RemoveBooking(ctx context.Context, vehicleID, bookingID primitive.ObjectID) (bool, error)

	// RecordRefund remembers that paymentReference was refunded instead of
	// booked. Recording the same reference twice is a no-op.
	RecordRefund(ctx context.Context, vehicleID primitive.ObjectID, paymentReference string) error

	// SetReviewStatus marks one booking as reviewed.
	SetReviewStatus(ctx context.Context, vehicleID, bookingID primitive.ObjectID) error

	// FindByBookingUser returns every vehicle holding a booking by userID.
	FindByBookingUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Vehicle, error)
}
