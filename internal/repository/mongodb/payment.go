package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"parkride/internal/domain"
	"parkride/internal/repository"
)

// PaymentRepository is a MongoDB implementation of repository.PaymentRepository.
type PaymentRepository struct {
	coll *mongo.Collection
}

// NewPaymentRepository creates a new MongoDB payment repository.
func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{coll: db.Collection(PaymentsCollection)}
}

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	_, err := r.coll.InsertOne(ctx, toPaymentDoc(p))
	return translateError(err)
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByBooking retrieves the payment settling the referenced booking.
func (r *PaymentRepository) GetByBooking(ctx context.Context, ref domain.BookingRef) (*domain.Payment, error) {
	return r.findOne(ctx,
		bson.M{"bookingType": ref.Type, "bookingId": ref.ID},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
}

// Update persists status and refund changes of a payment still in status from.
func (r *PaymentRepository) Update(ctx context.Context, p *domain.Payment, from domain.PaymentStatus) error {
	set := bson.M{
		"status":    p.Status,
		"updatedAt": p.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if p.Refund != nil {
		set["refundDetails"] = refundDoc{Amount: p.Refund.Amount, Reason: p.Refund.Reason, RefundedAt: p.Refund.RefundedAt}
	} else {
		update["$unset"] = bson.M{"refundDetails": ""}
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": p.ID, "status": from}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		if _, err := r.GetByID(ctx, p.ID); err != nil {
			return err
		}
		return repository.ErrConflict
	}
	return nil
}

// ListByUser returns the user's payments newest first.
func (r *PaymentRepository) ListByUser(ctx context.Context, userID string, filter repository.PaymentFilter, page repository.Page) ([]*domain.Payment, int64, error) {
	query := bson.M{"userId": userID}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.BookingType != "" {
		query["bookingType"] = filter.BookingType
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

	payments := make([]*domain.Payment, 0)
	for cursor.Next(ctx) {
		var doc paymentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, err
		}
		p, err := doc.toDomain()
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}
	return payments, total, cursor.Err()
}

func (r *PaymentRepository) findOne(ctx context.Context, query bson.M, opts ...*options.FindOneOptions) (*domain.Payment, error) {
	var doc paymentDoc
	if err := r.coll.FindOne(ctx, query, opts...).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toDomain()
}
