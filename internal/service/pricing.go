package service

import (
	"math"
	"time"

	"parkride/internal/domain"
)

const (
	// dailyThresholdHours is the stay length above which the daily tariff applies.
	dailyThresholdHours = 6

	// lateCancellationWindow is how close to start a cancellation incurs a fee.
	lateCancellationWindow = 24 * time.Hour

	// lateCancellationRate is the share of the price kept on a late cancellation.
	lateCancellationRate = 0.2
)

// PriceStay computes the price of parking vehicleType at f from start to end.
// Stays longer than six hours are billed per started day at the daily rate,
// shorter ones per exact fractional hour at the hourly rate.
func PriceStay(f *domain.Facility, vehicleType string, start, end time.Time) (float64, error) {
	rate, ok := f.VehicleRate(vehicleType)
	if !ok {
		return 0, ErrUnsupportedVehicleType
	}

	hours := end.Sub(start).Hours()
	if hours > dailyThresholdHours {
		days := math.Ceil(hours / 24)
		return f.DailyRate * days * rate.HourlyMultiplier, nil
	}
	return f.HourlyRate * hours * rate.HourlyMultiplier, nil
}

// CancellationFee returns the fee for cancelling a booking of price that starts at start.
// Cancelling after start is charged like any other late cancellation.
func CancellationFee(price float64, start, now time.Time) float64 {
	if start.Sub(now) < lateCancellationWindow {
		return lateCancellationRate * price
	}
	return 0
}

// RefundAmount returns what is given back after the fee is kept.
func RefundAmount(price, fee float64) float64 {
	return price - fee
}
