package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rentride/internal/metrics"
	"rentride/internal/models"
	"rentride/internal/repositories/interfaces"
	"rentride/internal/utils"
	"rentride/pkg/logger"
	"rentride/pkg/notify"
)

type BookingService interface {
	Create(ctx context.Context, request *CreateBookingRequest) (*models.Vehicle, error)
	ListByVehicle(ctx context.Context, vehicleID primitive.ObjectID) ([]models.Booking, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.UserBooking, error)
	PaymentHistory(ctx context.Context, userID primitive.ObjectID) ([]*models.PaymentHistoryEntry, error)
	GetBooking(ctx context.Context, vehicleID, bookingID primitive.ObjectID) (*models.Booking, error)
	Update(ctx context.Context, vehicleID, bookingID primitive.ObjectID, start, end time.Time) (*models.Booking, error)
	Cancel(ctx context.Context, vehicleID, bookingID primitive.ObjectID) error

	// ConfirmPayment records a paid booking. It is only reached from the
	// payment webhook and is idempotent on PaymentReference.
	ConfirmPayment(ctx context.Context, request *ConfirmPaymentRequest) (*models.Booking, error)

	LinkReview(ctx context.Context, vehicleID, bookingID primitive.ObjectID) error
}

type CreateBookingRequest struct {
	VehicleID  primitive.ObjectID
	UserID     primitive.ObjectID
	StartDate  time.Time
	EndDate    time.Time
	TotalPrice float64
}

type ConfirmPaymentRequest struct {
	VehicleID        primitive.ObjectID
	UserID           primitive.ObjectID
	StartDate        time.Time
	EndDate          time.Time
	PaymentReference string
}

type bookingService struct {
	vehicleRepo interfaces.VehicleRepository
	publisher   notify.Publisher
	logger      *logger.Logger
}

func NewBookingService(vehicleRepo interfaces.VehicleRepository, publisher notify.Publisher, log *logger.Logger) BookingService {
	return &bookingService{
		vehicleRepo: vehicleRepo,
		publisher:   publisher,
		logger:      log,
	}
}

func (s *bookingService) Create(ctx context.Context, request *CreateBookingRequest) (*models.Vehicle, error) {
	if err := utils.ValidateBookingRange(request.StartDate, request.EndDate); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ID:         primitive.NewObjectID(),
		UserID:     request.UserID,
		StartDate:  request.StartDate.UTC(),
		EndDate:    request.EndDate.UTC(),
		TotalPrice: request.TotalPrice,
		Status:     models.BookingStatusConfirmed,
		CreatedAt:  time.Now().UTC(),
	}

	vehicle, err := s.vehicleRepo.AppendBooking(ctx, request.VehicleID, booking)
	if err != nil {
		if errors.Is(err, utils.ErrDateConflict) {
			metrics.IncConflict("create")
		}
		return nil, err
	}

	metrics.IncBooking(metrics.BookingCreated)
	s.logger.LogBookingEvent(request.VehicleID, booking.ID, notify.EventBookingCreated, map[string]interface{}{
		"user_id":     request.UserID.Hex(),
		"total_price": booking.TotalPrice,
	})
	s.publish(ctx, notify.EventBookingCreated, request.VehicleID, booking)

	return vehicle, nil
}

func (s *bookingService) ListByVehicle(ctx context.Context, vehicleID primitive.ObjectID) ([]models.Booking, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Bookings == nil {
		return []models.Booking{}, nil
	}
	return vehicle.Bookings, nil
}

func (s *bookingService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.UserBooking, error) {
	vehicles, err := s.vehicleRepo.FindByBookingUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := []*models.UserBooking{}
	for _, vehicle := range vehicles {
		summary := vehicle.Summary()
		for _, booking := range vehicle.Bookings {
			if booking.UserID != userID {
				continue
			}
			result = append(result, &models.UserBooking{Booking: booking, Vehicle: summary})
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartDate.Before(result[j].StartDate)
	})
	return result, nil
}

func (s *bookingService) PaymentHistory(ctx context.Context, userID primitive.ObjectID) ([]*models.PaymentHistoryEntry, error) {
	bookings, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	history := []*models.PaymentHistoryEntry{}
	for _, b := range bookings {
		if !b.Paid {
			continue
		}
		history = append(history, &models.PaymentHistoryEntry{
			BookingID:        b.ID,
			Vehicle:          b.Vehicle.Make + " " + b.Vehicle.Model,
			StartDate:        b.StartDate,
			EndDate:          b.EndDate,
			TotalPrice:       b.TotalPrice,
			PaymentReference: b.PaymentReference,
			Status:           b.Status,
		})
	}
	return history, nil
}

func (s *bookingService) GetBooking(ctx context.Context, vehicleID, bookingID primitive.ObjectID) (*models.Booking, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	booking := vehicle.FindBooking(bookingID)
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID.Hex(), utils.ErrNotFound)
	}
	return booking, nil
}

func (s *bookingService) Update(ctx context.Context, vehicleID, bookingID primitive.ObjectID, start, end time.Time) (*models.Booking, error) {
	if err := utils.ValidateBookingRange(start, end); err != nil {
		return nil, err
	}

	booking, err := s.vehicleRepo.UpdateBookingDates(ctx, vehicleID, bookingID, start.UTC(), end.UTC())
	if err != nil {
		if errors.Is(err, utils.ErrDateConflict) {
			metrics.IncConflict("update")
		}
		return nil, err
	}

	metrics.IncBooking(metrics.BookingUpdated)
	s.logger.LogBookingEvent(vehicleID, bookingID, notify.EventBookingUpdated, map[string]interface{}{
		"start_date": utils.FormatTimeISO(booking.StartDate),
		"end_date":   utils.FormatTimeISO(booking.EndDate),
	})
	s.publish(ctx, notify.EventBookingUpdated, vehicleID, booking)

	return booking, nil
}

// Cancel removes the booking. An unknown booking id on an existing vehicle
// counts as already cancelled.
func (s *bookingService) Cancel(ctx context.Context, vehicleID, bookingID primitive.ObjectID) error {
	removed, err := s.vehicleRepo.RemoveBooking(ctx, vehicleID, bookingID)
	if err != nil {
		return err
	}
	if !removed {
		s.logger.WithVehicleID(vehicleID).WithBookingID(bookingID).Debug("Cancel of unknown booking treated as success")
		return nil
	}

	metrics.IncBooking(metrics.BookingCancelled)
	s.logger.LogBookingEvent(vehicleID, bookingID, notify.EventBookingCancelled, nil)
	s.publish(ctx, notify.EventBookingCancelled, vehicleID, &models.Booking{ID: bookingID})

	return nil
}

func (s *bookingService) ConfirmPayment(ctx context.Context, request *ConfirmPaymentRequest) (*models.Booking, error) {
	if request.PaymentReference == "" {
		return nil, fmt.Errorf("%w: payment reference is required", utils.ErrInvalidInput)
	}
	if err := utils.ValidateBookingRange(request.StartDate, request.EndDate); err != nil {
		return nil, err
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, request.VehicleID)
	if err != nil {
		return nil, err
	}
	if existing := vehicle.FindBookingByPaymentReference(request.PaymentReference); existing != nil {
		return existing, nil
	}

	booking := &models.Booking{
		ID:               primitive.NewObjectID(),
		UserID:           request.UserID,
		StartDate:        request.StartDate.UTC(),
		EndDate:          request.EndDate.UTC(),
		TotalPrice:       utils.DayCount(request.StartDate, request.EndDate) * vehicle.PricePerDay,
		Status:           models.BookingStatusConfirmed,
		Paid:             true,
		PaymentReference: request.PaymentReference,
		CreatedAt:        time.Now().UTC(),
	}

	if _, err := s.vehicleRepo.AppendBooking(ctx, request.VehicleID, booking); err != nil {
		switch {
		case errors.Is(err, utils.ErrAlreadyExists):
			// A concurrent delivery of the same payment won the append.
			return s.findByReference(ctx, request.VehicleID, request.PaymentReference)
		case errors.Is(err, utils.ErrDateConflict):
			metrics.IncConflict("confirm_payment")
		}
		return nil, err
	}

	metrics.IncBooking(metrics.BookingPaid)
	s.logger.LogBookingEvent(request.VehicleID, booking.ID, notify.EventBookingPaid, map[string]interface{}{
		"payment_reference": booking.PaymentReference,
		"total_price":       booking.TotalPrice,
	})
	s.publish(ctx, notify.EventBookingPaid, request.VehicleID, booking)

	return booking, nil
}

func (s *bookingService) LinkReview(ctx context.Context, vehicleID, bookingID primitive.ObjectID) error {
	if err := s.vehicleRepo.SetReviewStatus(ctx, vehicleID, bookingID); err != nil {
		return err
	}

	metrics.IncBooking(metrics.BookingReviewed)
	s.publish(ctx, notify.EventBookingReviewed, vehicleID, &models.Booking{ID: bookingID})
	return nil
}

func (s *bookingService) findByReference(ctx context.Context, vehicleID primitive.ObjectID, reference string) (*models.Booking, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if booking := vehicle.FindBookingByPaymentReference(reference); booking != nil {
		return booking, nil
	}
	return nil, fmt.Errorf("payment %s: %w", reference, utils.ErrNotFound)
}

func (s *bookingService) publish(ctx context.Context, eventType string, vehicleID primitive.ObjectID, booking *models.Booking) {
	if s.publisher == nil {
		return
	}

	event := &notify.BookingEvent{
		Type:             eventType,
		VehicleID:        vehicleID.Hex(),
		BookingID:        booking.ID.Hex(),
		StartDate:        booking.StartDate,
		EndDate:          booking.EndDate,
		TotalPrice:       booking.TotalPrice,
		PaymentReference: booking.PaymentReference,
		OccurredAt:       time.Now().UTC(),
	}
	if !booking.UserID.IsZero() {
		event.UserID = booking.UserID.Hex()
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithField("event", eventType).Warn("Failed to publish booking event")
	}
}
