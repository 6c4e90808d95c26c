package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rentride/internal/models"
)

type ReviewRepository interface {
	// Create fails with utils.ErrAlreadyExists for a second review of the
	// same (user, vehicle, booking).
	Create(ctx context.Context, review *models.Review) error
	Exists(ctx context.Context, userID, vehicleID, bookingID primitive.ObjectID) (bool, error)
	ListByVehicle(ctx context.Context, vehicleID primitive.ObjectID, approvedOnly bool) ([]*models.Review, error)
	ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]*models.Review, error)
	Approve(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
