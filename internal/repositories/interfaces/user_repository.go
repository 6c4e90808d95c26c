package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rentride/internal/models"
)

type UserRepository interface {
	// Create fails with utils.ErrAlreadyExists when the email is taken.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error)
}
