package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Blocks reports whether a booking in this status holds its dates.
func (s BookingStatus) Blocks() bool {
	return s != BookingStatusCancelled
}

type Booking struct {
	ID               primitive.ObjectID `json:"id" bson:"_id"`
	UserID           primitive.ObjectID `json:"user_id" bson:"user_id"`
	StartDate        time.Time          `json:"start_date" bson:"start_date"`
	EndDate          time.Time          `json:"end_date" bson:"end_date"`
	TotalPrice       float64            `json:"total_price" bson:"total_price"`
	Status           BookingStatus      `json:"status" bson:"status"`
	Paid             bool               `json:"paid" bson:"paid"`
	PaymentReference string             `json:"payment_reference,omitempty" bson:"payment_reference,omitempty"`
	ReviewStatus     bool               `json:"review_status" bson:"review_status"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
}

// Overlaps applies the boundary-inclusive rule: a booking ending on day X
// conflicts with one starting on day X.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return !start.After(b.EndDate) && !end.Before(b.StartDate)
}

// UserBooking is a booking together with a summary of its vehicle.
type UserBooking struct {
	Booking
	Vehicle VehicleSummary `json:"vehicle"`
}

type PaymentHistoryEntry struct {
	BookingID        primitive.ObjectID `json:"booking_id"`
	Vehicle          string             `json:"vehicle"`
	StartDate        time.Time          `json:"start_date"`
	EndDate          time.Time          `json:"end_date"`
	TotalPrice       float64            `json:"total_price"`
	PaymentReference string             `json:"payment_reference"`
	Status           BookingStatus      `json:"status"`
}
