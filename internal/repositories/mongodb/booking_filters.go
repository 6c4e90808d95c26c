package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rentride/internal/models"
)

// overlapMatch matches an embedded booking that blocks [start, end] under
// the boundary-inclusive rule. A non-zero exclude skips that booking.
func overlapMatch(start, end time.Time, exclude primitive.ObjectID) bson.M {
	match := bson.M{
		"status":     bson.M{"$ne": models.BookingStatusCancelled},
		"start_date": bson.M{"$lte": end},
		"end_date":   bson.M{"$gte": start},
	}
	if !exclude.IsZero() {
		match["_id"] = bson.M{"$ne": exclude}
	}
	return match
}

// appendBookingFilter selects the vehicle only while booking can be added:
// no blocking overlap and, for paid bookings, no booking with the same
// payment reference.
func appendBookingFilter(vehicleID primitive.ObjectID, booking *models.Booking) bson.M {
	filter := bson.M{
		"_id": vehicleID,
		"bookings": bson.M{
			"$not": bson.M{"$elemMatch": overlapMatch(booking.StartDate, booking.EndDate, primitive.NilObjectID)},
		},
	}
	if booking.PaymentReference != "" {
		filter["bookings.payment_reference"] = bson.M{"$ne": booking.PaymentReference}
	}
	return filter
}

func updateDatesFilter(vehicleID, bookingID primitive.ObjectID, start, end time.Time) bson.M {
	return bson.M{
		"_id":          vehicleID,
		"bookings._id": bookingID,
		"bookings": bson.M{
			"$not": bson.M{"$elemMatch": overlapMatch(start, end, bookingID)},
		},
	}
}
