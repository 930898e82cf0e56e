package mongodb

import (
	"context"
	"errors"
	"testing"

	"parkride/internal/domain"
)

func TestFacilityCreate_RejectsDuplicateVehicleType(t *testing.T) {
	t.Parallel()

	// No collection: validation must fail before the insert.
	repo := &FacilityRepository{}
	err := repo.Create(context.Background(), &domain.Facility{
		ID: "fac-1",
		VehicleTypeRates: []domain.VehicleTypeRate{
			{VehicleType: "SUV", HourlyMultiplier: 1.5},
			{VehicleType: "SUV", HourlyMultiplier: 1.8},
		},
	})
	if !errors.Is(err, domain.ErrDuplicateVehicleType) {
		t.Fatalf("expected ErrDuplicateVehicleType, got: %v", err)
	}
}
