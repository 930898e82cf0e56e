package domain

import (
	"errors"
	"testing"
)

func TestValidateVehicleRates(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		rates   []VehicleTypeRate
		wantErr bool
	}{
		{name: "no rates", rates: nil},
		{name: "distinct types", rates: []VehicleTypeRate{{VehicleType: "Sedan", HourlyMultiplier: 1.2}, {VehicleType: "SUV", HourlyMultiplier: 1.5}}},
		{name: "repeated type", rates: []VehicleTypeRate{{VehicleType: "Sedan", HourlyMultiplier: 1.2}, {VehicleType: "Sedan", HourlyMultiplier: 2}}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := &Facility{ID: "fac-1", VehicleTypeRates: tc.rates}
			err := f.ValidateVehicleRates()
			if tc.wantErr && !errors.Is(err, ErrDuplicateVehicleType) {
				t.Errorf("expected ErrDuplicateVehicleType, got: %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("expected no error, got: %v", err)
			}
		})
	}
}
