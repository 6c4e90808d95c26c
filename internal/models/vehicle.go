package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle is the aggregate root for bookings: a booking only exists inside
// the Bookings list of its vehicle.
type Vehicle struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Make        string             `json:"make" bson:"make"`
	Model       string             `json:"model" bson:"model"`
	Year        int                `json:"year" bson:"year"`
	Type        string             `json:"type" bson:"type"`
	Location    string             `json:"location" bson:"location"`
	Description string             `json:"description" bson:"description"`
	PricePerDay float64            `json:"price_per_day" bson:"price_per_day"`
	Images      []string           `json:"images" bson:"images"`
	Thumbnails  []string           `json:"thumbnails,omitempty" bson:"thumbnails,omitempty"`
	Bookings    []Booking          `json:"bookings" bson:"bookings"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`

	// RefundedPayments lists payment references refunded because their
	// dates were taken before the payment completed.
	RefundedPayments []string `json:"-" bson:"refunded_payments,omitempty"`
}

// FindBooking returns the booking with the given id, or nil.
func (v *Vehicle) FindBooking(bookingID primitive.ObjectID) *Booking {
	for i := range v.Bookings {
		if v.Bookings[i].ID == bookingID {
			return &v.Bookings[i]
		}
	}
	return nil
}

// FindBookingByPaymentReference returns the booking settled by ref, or nil.
func (v *Vehicle) FindBookingByPaymentReference(ref string) *Booking {
	if ref == "" {
		return nil
	}
	for i := range v.Bookings {
		if v.Bookings[i].PaymentReference == ref {
			return &v.Bookings[i]
		}
	}
	return nil
}

func (v *Vehicle) IsRefunded(ref string) bool {
	if ref == "" {
		return false
	}
	for _, r := range v.RefundedPayments {
		if r == ref {
			return true
		}
	}
	return false
}

// HasConflict reports whether [start, end] overlaps any blocking booking
// other than exclude.
func (v *Vehicle) HasConflict(start, end time.Time, exclude primitive.ObjectID) bool {
	for i := range v.Bookings {
		b := &v.Bookings[i]
		if b.ID == exclude || !b.Status.Blocks() {
			continue
		}
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func (v *Vehicle) Summary() VehicleSummary {
	s := VehicleSummary{ID: v.ID, Make: v.Make, Model: v.Model}
	if len(v.Images) > 0 {
		s.Image = v.Images[0]
	}
	return s
}

func (v *Vehicle) DisplayName() string {
	return v.Make + " " + v.Model
}

type VehicleSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Make  string             `json:"make"`
	Model string             `json:"model"`
	Image string             `json:"image"`
}
