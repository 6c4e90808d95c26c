package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	VehicleID primitive.ObjectID `json:"vehicle_id" bson:"vehicle_id"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	BookingID primitive.ObjectID `json:"booking_id" bson:"booking_id"`
	Rating    int                `json:"rating" bson:"rating"`
	Comment   string             `json:"comment" bson:"comment"`
	Approved  bool               `json:"approved" bson:"approved"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// ReviewView is a review with the author's public summary.
type ReviewView struct {
	Review
	User UserSummary `json:"user"`
}
