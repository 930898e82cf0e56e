package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"parkride/internal/domain"
	"parkride/internal/repository"
	"parkride/internal/service"
)

const (
	originLat = 12.9716
	originLng = 77.5946
)

func facilityAt(id string, lat, lng float64) *domain.Facility {
	f := newTestFacility(id, 10)
	f.Coordinates = domain.Coordinates{Latitude: lat, Longitude: lng}
	return f
}

func facilityIDs(facilities []*domain.Facility) map[string]bool {
	ids := make(map[string]bool, len(facilities))
	for _, f := range facilities {
		ids[f.ID] = true
	}
	return ids
}

func TestSearchNearby_FixedWindowAndRadius(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.facilities.AddFacility(facilityAt("here", originLat, originLng))
	env.facilities.AddFacility(facilityAt("three-km", originLat+0.03, originLng))
	// About 6.7 km away: inside a 10 km radius but outside the ±0.05° window.
	env.facilities.AddFacility(facilityAt("outside-window", originLat+0.06, originLng))
	closed := facilityAt("closed", originLat, originLng+0.01)
	closed.Status = domain.FacilityStatusMaintenance
	env.facilities.AddFacility(closed)

	testCases := []struct {
		name    string
		radius  float64
		wantIDs []string
	}{
		{name: "default radius", radius: 0, wantIDs: []string{"here", "three-km"}},
		{name: "wide radius keeps window", radius: 10, wantIDs: []string{"here", "three-km"}},
		{name: "narrow radius", radius: 2, wantIDs: []string{"here"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := env.catalog.SearchNearby(context.Background(), service.SearchRequest{
				Latitude:  originLat,
				Longitude: originLng,
				RadiusKm:  tc.radius,
			})
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			ids := facilityIDs(got)
			if len(ids) != len(tc.wantIDs) {
				t.Fatalf("expected %v, got %v", tc.wantIDs, ids)
			}
			for _, id := range tc.wantIDs {
				if !ids[id] {
					t.Errorf("expected %s in results, got %v", id, ids)
				}
			}
		})
	}
}

func TestSearchNearby_LimitAppliesBeforeDistance(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.facilities.AddFacility(facilityAt("a", originLat, originLng))
	env.facilities.AddFacility(facilityAt("b", originLat+0.001, originLng))
	env.facilities.AddFacility(facilityAt("c", originLat+0.002, originLng))

	got, err := env.catalog.SearchNearby(context.Background(), service.SearchRequest{
		Latitude:  originLat,
		Longitude: originLng,
		Limit:     2,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 results, got %d", len(got))
	}
}

func TestSearchNearby_InvalidCoordinates(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	for _, req := range []service.SearchRequest{
		{Latitude: 91, Longitude: 0},
		{Latitude: 0, Longitude: -181},
	} {
		if _, err := env.catalog.SearchNearby(context.Background(), req); !errors.Is(err, service.ErrInvalidLocation) {
			t.Errorf("expected ErrInvalidLocation for %+v, got: %v", req, err)
		}
	}
}

func TestListFacilities_FiltersAndSorts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	a := newTestFacility("a", 10)
	a.Rating = 3.5
	b := newTestFacility("b", 10)
	b.Rating = 4.8
	b.City = "Chennai"
	b.Amenities = []string{"ev_charging"}
	c := newTestFacility("c", 10)
	c.Rating = 4.1
	c.VehicleTypeRates = []domain.VehicleTypeRate{{VehicleType: "SUV", HourlyMultiplier: 1.5}}
	inactive := newTestFacility("d", 10)
	inactive.Status = domain.FacilityStatusInactive
	inactive.Rating = 5
	for _, f := range []*domain.Facility{a, b, c, inactive} {
		env.facilities.AddFacility(f)
	}

	testCases := []struct {
		name    string
		filter  domain.FacilityFilter
		wantIDs []string
	}{
		{name: "active by rating", filter: domain.FacilityFilter{}, wantIDs: []string{"b", "c", "a"}},
		{name: "city substring ignores case", filter: domain.FacilityFilter{City: "chen"}, wantIDs: []string{"b"}},
		{name: "amenity", filter: domain.FacilityFilter{Amenities: []string{"ev_charging"}}, wantIDs: []string{"b"}},
		{name: "min rating", filter: domain.FacilityFilter{MinRating: 4}, wantIDs: []string{"b", "c"}},
		{name: "vehicle type", filter: domain.FacilityFilter{VehicleType: "SUV"}, wantIDs: []string{"c"}},
		{name: "explicit inactive", filter: domain.FacilityFilter{Status: domain.FacilityStatusInactive}, wantIDs: []string{"d"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := env.catalog.ListFacilities(context.Background(), service.ListFacilitiesRequest{Filter: tc.filter})
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if len(page.Facilities) != len(tc.wantIDs) {
				t.Fatalf("expected %d facilities, got %d", len(tc.wantIDs), len(page.Facilities))
			}
			for i, id := range tc.wantIDs {
				if page.Facilities[i].ID != id {
					t.Errorf("position %d: expected %s, got %s", i, id, page.Facilities[i].ID)
				}
			}
		})
	}

	page, err := env.catalog.ListFacilities(context.Background(), service.ListFacilitiesRequest{Page: repository.Page{Number: 2, Limit: 2}})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if page.Total != 3 || page.Pages != 2 || len(page.Facilities) != 1 || page.Facilities[0].ID != "a" {
		t.Errorf("unexpected second page: total=%d pages=%d len=%d", page.Total, page.Pages, len(page.Facilities))
	}

	if _, err := env.catalog.ListFacilities(context.Background(), service.ListFacilitiesRequest{Filter: domain.FacilityFilter{Status: "demolished"}}); !errors.Is(err, service.ErrInvalidFacilityStatus) {
		t.Errorf("expected ErrInvalidFacilityStatus, got: %v", err)
	}
}

func TestGetFacility_ReadsThroughCache(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.facilities.AddFacility(newTestFacility("fac-1", 10))

	if _, err := env.catalog.GetFacility(context.Background(), "fac-1"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !env.cache.Cached("fac-1") {
		t.Fatal("expected facility to be cached after first read")
	}

	f, err := env.catalog.GetFacility(context.Background(), "fac-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if env.cache.HitCount != 1 {
		t.Errorf("expected one cache hit, got %d", env.cache.HitCount)
	}
	if f.AvailableSpots != 10 {
		t.Errorf("expected 10 spots, got %d", f.AvailableSpots)
	}

	// A booking changes availability and must drop the cached copy.
	if _, err := env.bookingSvc.CreateBooking(context.Background(), bookingRequest(alice, "fac-1", 48*time.Hour, time.Hour)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if env.cache.Cached("fac-1") {
		t.Error("expected cache entry to be invalidated by the booking")
	}
	f, err = env.catalog.GetFacility(context.Background(), "fac-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if f.AvailableSpots != 9 {
		t.Errorf("expected 9 spots after booking, got %d", f.AvailableSpots)
	}

	if _, err := env.catalog.GetFacility(context.Background(), "fac-x"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}
