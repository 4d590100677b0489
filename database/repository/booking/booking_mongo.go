package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotify/database"
	"slotify/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo() BookingRepository {
	return &MongoBookingRepo{coll: database.DB().Collection("bookings")}
}

// overlapFilter matches bookings whose [start, end) interval intersects
// [from, to) for the given anchor field and id.
func overlapFilter(anchorField, anchorID string, from, to time.Time, statuses []string) bson.M {
	filter := bson.M{
		anchorField: anchorID,
		"start":     bson.M{"$lt": to},
		"end":       bson.M{"$gt": from},
	}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	return filter
}

func (repo *MongoBookingRepo) GetResourceBookings(ctx context.Context, resourceID string, from, to time.Time, statuses []string) ([]models.Booking, error) {
	return repo.findOverlapping(ctx, overlapFilter("resourceId", resourceID, from, to, statuses))
}

func (repo *MongoBookingRepo) GetLocationBookings(ctx context.Context, locationID string, from, to time.Time, statuses []string) ([]models.Booking, error) {
	return repo.findOverlapping(ctx, overlapFilter("locationId", locationID, from, to, statuses))
}

func (repo *MongoBookingRepo) findOverlapping(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

func (repo *MongoBookingRepo) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	return repo.findOne(ctx, bson.M{"id": id})
}

func (repo *MongoBookingRepo) FindByIdempotencyKey(ctx context.Context, key string) (*models.Booking, error) {
	return repo.findOne(ctx, bson.M{"idempotencyKey": key})
}

func (repo *MongoBookingRepo) findOne(ctx context.Context, filter bson.M) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := repo.coll.FindOne(ctx, filter).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking: %w", err)
	}
	return &booking, nil
}

func (repo *MongoBookingRepo) FindByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start", Value: -1}})
	cursor, err := repo.coll.Find(ctx, bson.M{"customerId": customerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching customer bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding customer bookings: %w", err)
	}
	return bookings, nil
}

func (repo *MongoBookingRepo) UpdateStatus(ctx context.Context, id, status string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := repo.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("error updating booking status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (repo *MongoBookingRepo) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"status":    models.BookingStatusPending,
		"createdAt": bson.M{"$lt": cutoff},
	}
	res, err := repo.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"status": models.BookingStatusCancelled}})
	if err != nil {
		return 0, fmt.Errorf("error expiring pending bookings: %w", err)
	}
	return res.ModifiedCount, nil
}
