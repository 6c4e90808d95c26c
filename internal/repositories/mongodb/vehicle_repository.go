package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentride/internal/models"
	"rentride/internal/repositories/interfaces"
	"rentride/internal/utils"
	"rentride/pkg/database"
)

const vehicleCacheTTL = 5 * time.Minute

type vehicleRepository struct {
	collection *mongo.Collection
	cache      interfaces.Cache
}

func NewVehicleRepository(db *mongo.Database, cache interfaces.Cache) interfaces.VehicleRepository {
	return &vehicleRepository{
		collection: db.Collection(database.VehiclesCollection),
		cache:      cache,
	}
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	now := time.Now().UTC()
	vehicle.ID = primitive.NewObjectID()
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now

	// $push needs arrays, not nulls.
	if vehicle.Images == nil {
		vehicle.Images = []string{}
	}
	if vehicle.Bookings == nil {
		vehicle.Bookings = []models.Booking{}
	}

	if _, err := r.collection.InsertOne(ctx, vehicle); err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	return r.findByID(ctx, id)
}

// GetCached serves vehicle detail reads from Redis. A reader racing a
// booking write can repopulate the entry with the old document, so the
// result is never used to decide on bookings.
func (r *vehicleRepository) GetCached(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	if vehicle := r.getVehicleFromCache(ctx, id); vehicle != nil {
		return vehicle, nil
	}

	vehicle, err := r.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cacheVehicle(ctx, vehicle)
	return vehicle, nil
}

func (r *vehicleRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Vehicle, int64, error) {
	filter := bson.M{}
	if params.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(params.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"make": pattern},
			bson.M{"model": pattern},
			bson.M{"type": pattern},
			bson.M{"location": pattern},
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	opts := options.Find().
		SetSkip(int64(params.GetSkip())).
		SetLimit(int64(params.GetLimit())).
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"bookings": 0})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer cursor.Close(ctx)

	var vehicles []*models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, 0, fmt.Errorf("failed to decode vehicles: %w", err)
	}

	return vehicles, total, nil
}

func (r *vehicleRepository) AddImage(ctx context.Context, id primitive.ObjectID, imageURL, thumbnailURL string) error {
	push := bson.M{"images": imageURL}
	if thumbnailURL != "" {
		push["thumbnails"] = thumbnailURL
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$push": push, "$set": bson.M{"updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to add vehicle image: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("vehicle %s: %w", id.Hex(), utils.ErrNotFound)
	}

	r.invalidateVehicleCache(ctx, id)
	return nil
}

func (r *vehicleRepository) AppendBooking(ctx context.Context, vehicleID primitive.ObjectID, booking *models.Booking) (*models.Vehicle, error) {
	update := bson.M{
		"$push": bson.M{"bookings": booking},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var vehicle models.Vehicle
	err := r.collection.FindOneAndUpdate(ctx, appendBookingFilter(vehicleID, booking), update, opts).Decode(&vehicle)
	if err == nil {
		r.invalidateVehicleCache(ctx, vehicleID)
		return &vehicle, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to append booking: %w", err)
	}

	// The guarded update matched nothing; find out which guard failed.
	current, err := r.findByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if current.FindBookingByPaymentReference(booking.PaymentReference) != nil {
		return nil, fmt.Errorf("payment %s: %w", booking.PaymentReference, utils.ErrAlreadyExists)
	}
	return nil, utils.ErrDateConflict
}

func (r *vehicleRepository) UpdateBookingDates(ctx context.Context, vehicleID, bookingID primitive.ObjectID, start, end time.Time) (*models.Booking, error) {
	update := bson.M{
		"$set": bson.M{
			"bookings.$[b].start_date": start,
			"bookings.$[b].end_date":   end,
			"updated_at":               time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetArrayFilters(options.ArrayFilters{Filters: []interface{}{bson.M{"b._id": bookingID}}})

	var vehicle models.Vehicle
	err := r.collection.FindOneAndUpdate(ctx, updateDatesFilter(vehicleID, bookingID, start, end), update, opts).Decode(&vehicle)
	if err == nil {
		r.invalidateVehicleCache(ctx, vehicleID)
		if booking := vehicle.FindBooking(bookingID); booking != nil {
			return booking, nil
		}
		return nil, fmt.Errorf("booking %s: %w", bookingID.Hex(), utils.ErrNotFound)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	current, err := r.findByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if current.FindBooking(bookingID) == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID.Hex(), utils.ErrNotFound)
	}
	return nil, utils.ErrDateConflict
}

func (r *vehicleRepository) RemoveBooking(ctx context.Context, vehicleID, bookingID primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": vehicleID, "bookings._id": bookingID},
		bson.M{
			"$pull": bson.M{"bookings": bson.M{"_id": bookingID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove booking: %w", err)
	}

	if result.MatchedCount == 0 {
		if _, err := r.findByID(ctx, vehicleID); err != nil {
			return false, err
		}
		return false, nil
	}

	r.invalidateVehicleCache(ctx, vehicleID)
	return true, nil
}

func (r *vehicleRepository) RecordRefund(ctx context.Context, vehicleID primitive.ObjectID, paymentReference string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": vehicleID},
		bson.M{
			"$addToSet": bson.M{"refunded_payments": paymentReference},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to record refund: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("vehicle %s: %w", vehicleID.Hex(), utils.ErrNotFound)
	}
	return nil
}

func (r *vehicleRepository) SetReviewStatus(ctx context.Context, vehicleID, bookingID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": vehicleID, "bookings._id": bookingID},
		bson.M{"$set": bson.M{"bookings.$.review_status": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to link review: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("booking %s: %w", bookingID.Hex(), utils.ErrNotFound)
	}

	r.invalidateVehicleCache(ctx, vehicleID)
	return nil
}

func (r *vehicleRepository) FindByBookingUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Vehicle, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"bookings.user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to find vehicles by booking user: %w", err)
	}
	defer cursor.Close(ctx)

	var vehicles []*models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, fmt.Errorf("failed to decode vehicles: %w", err)
	}
	return vehicles, nil
}

func (r *vehicleRepository) findByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&vehicle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("vehicle %s: %w", id.Hex(), utils.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return &vehicle, nil
}

func vehicleCacheKey(id primitive.ObjectID) string {
	return utils.CacheVehiclePrefix + id.Hex()
}

func (r *vehicleRepository) cacheVehicle(ctx context.Context, vehicle *models.Vehicle) {
	if r.cache != nil {
		_ = r.cache.Set(ctx, vehicleCacheKey(vehicle.ID), vehicle, vehicleCacheTTL)
	}
}

func (r *vehicleRepository) getVehicleFromCache(ctx context.Context, id primitive.ObjectID) *models.Vehicle {
	if r.cache == nil {
		return nil
	}

	var vehicle models.Vehicle
	if err := r.cache.Get(ctx, vehicleCacheKey(id), &vehicle); err != nil {
		return nil
	}
	return &vehicle
}

func (r *vehicleRepository) invalidateVehicleCache(ctx context.Context, id primitive.ObjectID) {
	if r.cache != nil {
		_ = r.cache.Delete(ctx, vehicleCacheKey(id))
	}
}
