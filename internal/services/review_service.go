package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rentride/internal/models"
	"rentride/internal/repositories/interfaces"
	"rentride/internal/utils"
	"rentride/pkg/logger"
)

type ReviewService interface {
	Create(ctx context.Context, userID primitive.ObjectID, request *CreateReviewRequest) (*models.Review, error)
	ListByVehicle(ctx context.Context, vehicleID primitive.ObjectID, approvedOnly bool) ([]*models.ReviewView, error)
	ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]*models.ReviewView, error)
	Approve(ctx context.Context, reviewID primitive.ObjectID) (*models.Review, error)
}

type CreateReviewRequest struct {
	VehicleID primitive.ObjectID
	BookingID primitive.ObjectID
	Rating    int
	Comment   string
}

type reviewService struct {
	reviewRepo     interfaces.ReviewRepository
	vehicleRepo    interfaces.VehicleRepository
	userRepo       interfaces.UserRepository
	bookingService BookingService
	logger         *logger.Logger
}

func NewReviewService(
	reviewRepo interfaces.ReviewRepository,
	vehicleRepo interfaces.VehicleRepository,
	userRepo interfaces.UserRepository,
	bookingService BookingService,
	log *logger.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo:     reviewRepo,
		vehicleRepo:    vehicleRepo,
		userRepo:       userRepo,
		bookingService: bookingService,
		logger:         log,
	}
}

func (s *reviewService) Create(ctx context.Context, userID primitive.ObjectID, request *CreateReviewRequest) (*models.Review, error) {
	if request.Rating < utils.MinRating || request.Rating > utils.MaxRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", utils.ErrInvalidInput, utils.MinRating, utils.MaxRating)
	}
	comment := strings.TrimSpace(request.Comment)
	if utf8.RuneCountInString(comment) > utils.MaxCommentLength {
		return nil, fmt.Errorf("%w: comment exceeds %d characters", utils.ErrInvalidInput, utils.MaxCommentLength)
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, request.VehicleID)
	if err != nil {
		return nil, err
	}
	booking := vehicle.FindBooking(request.BookingID)
	if booking == nil || booking.UserID != userID {
		return nil, fmt.Errorf("booking %s: %w", request.BookingID.Hex(), utils.ErrNotFound)
	}

	exists, err := s.reviewRepo.Exists(ctx, userID, request.VehicleID, request.BookingID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("review: %w", utils.ErrAlreadyExists)
	}

	review := &models.Review{
		VehicleID: request.VehicleID,
		UserID:    userID,
		BookingID: request.BookingID,
		Rating:    request.Rating,
		Comment:   comment,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	if err := s.bookingService.LinkReview(ctx, request.VehicleID, request.BookingID); err != nil {
		s.logger.WithError(err).WithBookingID(request.BookingID).Error("Failed to link review to booking")
		// Drop the unlinked review so the user can submit again.
		if delErr := s.reviewRepo.Delete(ctx, review.ID); delErr != nil {
			s.logger.WithError(delErr).WithBookingID(request.BookingID).Error("Failed to remove unlinked review")
		}
		return nil, err
	}

	return review, nil
}

func (s *reviewService) ListByVehicle(ctx context.Context, vehicleID primitive.ObjectID, approvedOnly bool) ([]*models.ReviewView, error) {
	reviews, err := s.reviewRepo.ListByVehicle(ctx, vehicleID, approvedOnly)
	if err != nil {
		return nil, err
	}
	return s.withAuthors(ctx, reviews)
}

func (s *reviewService) ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]*models.ReviewView, error) {
	reviews, err := s.reviewRepo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.withAuthors(ctx, reviews)
}

func (s *reviewService) Approve(ctx context.Context, reviewID primitive.ObjectID) (*models.Review, error) {
	review, err := s.reviewRepo.Approve(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	s.logger.WithField("review_id", reviewID.Hex()).Info("Review approved")
	return review, nil
}

func (s *reviewService) withAuthors(ctx context.Context, reviews []*models.Review) ([]*models.ReviewView, error) {
	views := make([]*models.ReviewView, 0, len(reviews))
	if len(reviews) == 0 {
		return views, nil
	}

	seen := make(map[primitive.ObjectID]bool, len(reviews))
	ids := make([]primitive.ObjectID, 0, len(reviews))
	for _, r := range reviews {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			ids = append(ids, r.UserID)
		}
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[primitive.ObjectID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	for _, r := range reviews {
		views = append(views, &models.ReviewView{
			Review: *r,
			User:   models.UserSummary{ID: r.UserID, Name: names[r.UserID]},
		})
	}
	return views, nil
}
