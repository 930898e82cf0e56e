package tests

import (
	"math"
	"testing"
	"time"

	"parkride/internal/domain"
	"parkride/internal/service"
)

const testCurrency = "INR"

var (
	// fixedNow is the clock every service in these tests reads.
	fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	alice = domain.Principal{UserID: "user-alice", Role: domain.RoleUser}
	bob   = domain.Principal{UserID: "user-bob", Role: domain.RoleUser}
	admin = domain.Principal{UserID: "admin-1", Role: domain.RoleAdmin}
)

// newTestFacility returns an active facility with a 50/hour and 300/day tariff.
func newTestFacility(id string, spots int) *domain.Facility {
	return &domain.Facility{
		ID:             id,
		Name:           "Facility " + id,
		Address:        "1 Station Road",
		City:           "Bangalore",
		State:          "Karnataka",
		ZipCode:        "560001",
		Coordinates:    domain.Coordinates{Latitude: 12.9716, Longitude: 77.5946},
		TotalSpots:     spots,
		AvailableSpots: spots,
		HourlyRate:     50,
		DailyRate:      300,
		Amenities:      []string{"cctv", "covered"},
		VehicleTypeRates: []domain.VehicleTypeRate{
			{VehicleType: "Hatchback", HourlyMultiplier: 1.0},
			{VehicleType: "Sedan", HourlyMultiplier: 1.2},
		},
		Status:    domain.FacilityStatusActive,
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}
}

// testEnv bundles the mocks and services of one test.
type testEnv struct {
	facilities *MockFacilityRepository
	bookings   *MockBookingRepository
	payments   *MockPaymentRepository
	cache      *MockFacilityCache
	locks      *MockLockStore
	psp        *MockPSP

	catalog       *service.CatalogService
	bookingSvc    *service.BookingService
	reviewSvc     *service.ReviewService
	paymentSvc    *service.PaymentService
	notifications *service.NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := newTestLogger()
	env := &testEnv{
		facilities: NewMockFacilityRepository(),
		bookings:   NewMockBookingRepository(),
		payments:   NewMockPaymentRepository(),
		cache:      NewMockFacilityCache(),
		locks:      NewMockLockStore(),
		psp:        &MockPSP{Succeed: true},
	}
	env.notifications = service.NewNotificationService(log)
	env.catalog = service.NewCatalogService(env.facilities, env.cache, log)
	env.bookingSvc = service.NewBookingService(
		env.facilities, env.bookings, env.payments, env.cache, env.notifications, log, testCurrency,
	).WithClock(func() time.Time { return fixedNow })
	env.reviewSvc = service.NewReviewService(env.facilities, env.bookings, env.locks, env.cache, log)
	env.paymentSvc = service.NewPaymentService(env.payments, env.bookings, env.psp, env.notifications, log)
	return env
}

// bookingRequest returns a valid sedan booking starting startIn from fixedNow.
func bookingRequest(p domain.Principal, facilityID string, startIn, length time.Duration) service.CreateBookingRequest {
	start := fixedNow.Add(startIn)
	return service.CreateBookingRequest{
		Principal:           p,
		FacilityID:          facilityID,
		StartTime:           start,
		EndTime:             start.Add(length),
		VehicleType:         "Sedan",
		VehicleLicensePlate: "KA01AB1234",
		PaymentMethod:       domain.PaymentMethodCard,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
