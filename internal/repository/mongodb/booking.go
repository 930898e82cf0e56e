package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"parkride/internal/domain"
	"parkride/internal/repository"
)

// BookingRepository is a MongoDB implementation of repository.BookingRepository.
type BookingRepository struct {
	coll *mongo.Collection
}

// NewBookingRepository creates a new MongoDB booking repository.
func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{coll: db.Collection(BookingsCollection)}
}

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, b *domain.ParkingBooking) error {
	_, err := r.coll.InsertOne(ctx, toBookingDoc(b))
	return translateError(err)
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.ParkingBooking, error) {
	var doc bookingDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toDomain(), nil
}

// Delete removes a booking.
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ExistsByCode reports whether a booking code is already taken.
func (r *BookingRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"bookingCode": code}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Transition moves a booking from one status to another.
func (r *BookingRepository) Transition(ctx context.Context, id string, from, to domain.BookingStatus, cancellation *domain.Cancellation) error {
	set := bson.M{
		"bookingStatus": to,
		"updatedAt":     time.Now(),
	}
	if cancellation != nil {
		set["cancellationDetails"] = cancellationDoc{
			Reason:      cancellation.Reason,
			Fee:         cancellation.Fee,
			CancelledAt: cancellation.CancelledAt,
		}
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "bookingStatus": from}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return repository.ErrConflict
	}
	return nil
}

// SetPaymentStatus updates the booking's mirrored payment status, optionally
// only while it still mirrors from.
func (r *BookingRepository) SetPaymentStatus(ctx context.Context, id string, from, to domain.BookingPaymentStatus) error {
	filter := bson.M{"_id": id}
	if from != "" {
		filter["paymentStatus"] = from
	}

	result, err := r.coll.UpdateOne(ctx, filter,
		bson.M{"$set": bson.M{"paymentStatus": to, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		if from == "" {
			return repository.ErrNotFound
		}
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return repository.ErrConflict
	}
	return nil
}

// HasCompletedAtFacility reports whether the user has a checked-out booking at the facility.
func (r *BookingRepository) HasCompletedAtFacility(ctx context.Context, userID, facilityID string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{
		"userId":        userID,
		"facilityId":    facilityID,
		"bookingStatus": domain.BookingStatusCheckedOut,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByUser returns the user's bookings newest first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string, status domain.BookingStatus, page repository.Page) ([]*domain.ParkingBooking, int64, error) {
	query := bson.M{"userId": userID}
	if status != "" {
		query["bookingStatus"] = status
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.coll.Find(ctx, query, pageOptions(page, bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	bookings := make([]*domain.ParkingBooking, 0)
	for cursor.Next(ctx) {
		var doc bookingDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, doc.toDomain())
	}
	return bookings, total, cursor.Err()
}
