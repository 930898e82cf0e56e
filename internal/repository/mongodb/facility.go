package mongodb

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"parkride/internal/domain"
	"parkride/internal/repository"
)

// FacilityRepository is a MongoDB implementation of repository.FacilityRepository.
type FacilityRepository struct {
	coll *mongo.Collection
}

// NewFacilityRepository creates a new MongoDB facility repository.
func NewFacilityRepository(db *mongo.Database) *FacilityRepository {
	return &FacilityRepository{coll: db.Collection(FacilitiesCollection)}
}

// Create persists a new facility.
func (r *FacilityRepository) Create(ctx context.Context, f *domain.Facility) error {
	if err := f.ValidateVehicleRates(); err != nil {
		return err
	}
	_, err := r.coll.InsertOne(ctx, toFacilityDoc(f))
	return translateError(err)
}

// GetByID retrieves a facility by ID.
func (r *FacilityRepository) GetByID(ctx context.Context, id string) (*domain.Facility, error) {
	var doc facilityDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toDomain(), nil
}

// List returns one page of facilities matching filter, sorted by rating descending.
func (r *FacilityRepository) List(ctx context.Context, filter domain.FacilityFilter, page repository.Page) ([]*domain.Facility, int64, error) {
	query := facilityQuery(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := pageOptions(page, bson.D{{Key: "rating", Value: -1}, {Key: "_id", Value: 1}})
	facilities, err := r.find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return facilities, total, nil
}

// FindInBox returns up to limit facilities with the given status inside box.
func (r *FacilityRepository) FindInBox(ctx context.Context, box domain.BoundingBox, status domain.FacilityStatus, limit int) ([]*domain.Facility, error) {
	query := bson.M{
		"status":                status,
		"coordinates.latitude":  bson.M{"$gte": box.MinLat, "$lte": box.MaxLat},
		"coordinates.longitude": bson.M{"$gte": box.MinLng, "$lte": box.MaxLng},
	}
	return r.find(ctx, query, options.Find().SetLimit(int64(limit)))
}

// ReserveSpot atomically decrements available spots if any remain.
func (r *FacilityRepository) ReserveSpot(ctx context.Context, id string) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "availableSpots": bson.M{"$gt": 0}},
		bson.M{
			"$inc": bson.M{"availableSpots": -1},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return r.missingOr(ctx, id, repository.ErrNoSpotsAvailable)
	}
	return nil
}

// ReleaseSpot increments available spots unless already at capacity.
func (r *FacilityRepository) ReleaseSpot(ctx context.Context, id string) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{
			"_id":   id,
			"$expr": bson.M{"$lt": bson.A{"$availableSpots", "$totalSpots"}},
		},
		bson.M{
			"$inc": bson.M{"availableSpots": 1},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return r.missingOr(ctx, id, nil)
	}
	return nil
}

// SaveReviews replaces the review list and the derived rating.
func (r *FacilityRepository) SaveReviews(ctx context.Context, id string, reviews []domain.Review, rating float64) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"reviews":   toReviewDocs(reviews),
			"rating":    rating,
			"updatedAt": time.Now(),
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// missingOr distinguishes a missing facility from a failed condition.
func (r *FacilityRepository) missingOr(ctx context.Context, id string, conditionErr error) error {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return conditionErr
}

func (r *FacilityRepository) find(ctx context.Context, query any, opts *options.FindOptions) ([]*domain.Facility, error) {
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	facilities := make([]*domain.Facility, 0)
	for cursor.Next(ctx) {
		var doc facilityDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		facilities = append(facilities, doc.toDomain())
	}
	return facilities, cursor.Err()
}

// facilityQuery translates a filter into a document query.
func facilityQuery(filter domain.FacilityFilter) bson.M {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.City != "" {
		query["city"] = bson.M{"$regex": regexp.QuoteMeta(filter.City), "$options": "i"}
	}
	if len(filter.Amenities) > 0 {
		query["amenities"] = bson.M{"$all": filter.Amenities}
	}
	if filter.MinRating > 0 {
		query["rating"] = bson.M{"$gte": filter.MinRating}
	}
	if filter.VehicleType != "" {
		query["vehicleTypeRates.vehicleType"] = filter.VehicleType
	}
	return query
}
