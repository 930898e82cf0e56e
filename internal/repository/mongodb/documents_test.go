package mongodb

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"parkride/internal/domain"
)

func TestBookingDoc_CancellationOnlyWhenCancelled(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	b := &domain.ParkingBooking{
		ID:            "bk-1",
		UserID:        "user-1",
		FacilityID:    "fac-1",
		BookingStatus: domain.BookingStatusPending,
		BookingCode:   "PK-ABC123",
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	raw, err := bson.Marshal(toBookingDoc(b))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := bson.Raw(raw).LookupErr("cancellationDetails"); err == nil {
		t.Error("expected no cancellationDetails on an active booking")
	}

	b.BookingStatus = domain.BookingStatusCancelled
	b.Cancellation = &domain.Cancellation{Reason: "sick", Fee: 12, CancelledAt: now}
	raw, err = bson.Marshal(toBookingDoc(b))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	fee, err := bson.Raw(raw).LookupErr("cancellationDetails", "fee")
	if err != nil {
		t.Fatalf("expected cancellationDetails.fee: %v", err)
	}
	if fee.Double() != 12 {
		t.Errorf("expected fee 12, got %v", fee.Double())
	}

	var doc bookingDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := doc.toDomain()
	if got.Cancellation == nil || got.Cancellation.Reason != "sick" || !got.Cancellation.CancelledAt.Equal(now) {
		t.Errorf("unexpected cancellation %+v", got.Cancellation)
	}
}

func TestPaymentDoc_UnknownBookingTypeRejected(t *testing.T) {
	doc := paymentDoc{ID: "pay-1", BookingType: "hotel", BookingID: "h-1"}
	if _, err := doc.toDomain(); err == nil {
		t.Error("expected an error for an unknown booking type")
	}
}

func TestFacilityQuery(t *testing.T) {
	q := facilityQuery(domain.FacilityFilter{
		Status:      domain.FacilityStatusActive,
		City:        "new.delhi",
		Amenities:   []string{"cctv"},
		MinRating:   4,
		VehicleType: "SUV",
	})

	city, ok := q["city"].(bson.M)
	if !ok || city["$regex"] != `new\.delhi` || city["$options"] != "i" {
		t.Errorf("unexpected city clause %v", q["city"])
	}
	if q["vehicleTypeRates.vehicleType"] != "SUV" {
		t.Errorf("unexpected vehicle clause %v", q["vehicleTypeRates.vehicleType"])
	}
	if r, ok := q["rating"].(bson.M); !ok || r["$gte"] != 4.0 {
		t.Errorf("unexpected rating clause %v", q["rating"])
	}

	if empty := facilityQuery(domain.FacilityFilter{}); len(empty) != 0 {
		t.Errorf("expected empty query, got %v", empty)
	}
}
