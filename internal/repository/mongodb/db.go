package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"parkride/internal/repository"
)

// Collection names.
const (
	FacilitiesCollection = "parkingfacilities"
	BookingsCollection   = "parkingbookings"
	PaymentsCollection   = "payments"
)

// EnsureIndexes creates the unique and lookup indexes the repositories rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		FacilitiesCollection: {
			{Keys: bson.D{{Key: "coordinates.latitude", Value: 1}, {Key: "coordinates.longitude", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "rating", Value: -1}}},
		},
		BookingsCollection: {
			{Keys: bson.D{{Key: "bookingCode", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "facilityId", Value: 1}, {Key: "bookingStatus", Value: 1}}},
		},
		PaymentsCollection: {
			{Keys: bson.D{{Key: "transactionId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "bookingType", Value: 1}, {Key: "bookingId", Value: 1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}

// translateError maps driver errors onto repository sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicateKey
	}
	return err
}

// pageOptions applies newest-first pagination to a find.
func pageOptions(page repository.Page, sort bson.D) *options.FindOptions {
	page = page.Normalize()
	return options.Find().
		SetSort(sort).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Limit))
}

var (
	_ repository.FacilityRepository = (*FacilityRepository)(nil)
	_ repository.BookingRepository  = (*BookingRepository)(nil)
	_ repository.PaymentRepository  = (*PaymentRepository)(nil)
)
