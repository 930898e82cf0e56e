package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"parkride/internal/domain"
	"parkride/internal/redis"
	"parkride/internal/repository"
)

const (
	// DefaultSearchRadiusKm is used when a proximity search gives no radius.
	DefaultSearchRadiusKm = 5.0

	// DefaultSearchLimit caps the pre-filter window when no limit is given.
	DefaultSearchLimit = 10
)

// CatalogService answers facility listing, lookup and proximity queries.
type CatalogService struct {
	facilityRepo repository.FacilityRepository
	cache        redis.FacilityCacheInterface
	log          logrus.FieldLogger
}

// NewCatalogService creates a new CatalogService. cache may be nil.
func NewCatalogService(
	facilityRepo repository.FacilityRepository,
	cache redis.FacilityCacheInterface,
	log logrus.FieldLogger,
) *CatalogService {
	return &CatalogService{
		facilityRepo: facilityRepo,
		cache:        cache,
		log:          log,
	}
}

// ListFacilitiesRequest contains the filter and page for a listing.
type ListFacilitiesRequest struct {
	Filter domain.FacilityFilter
	Page   repository.Page
}

// FacilityPage is one page of a facility listing.
type FacilityPage struct {
	Facilities []*domain.Facility
	Page       repository.Page
	Total      int64
	Pages      int64
}

// ListFacilities returns facilities matching the filter, best rated first.
// An empty status filter means active facilities only.
func (s *CatalogService) ListFacilities(ctx context.Context, req ListFacilitiesRequest) (*FacilityPage, error) {
	filter := req.Filter
	if filter.Status == "" {
		filter.Status = domain.FacilityStatusActive
	}
	if !filter.Status.Valid() {
		return nil, ErrInvalidFacilityStatus
	}

	page := req.Page.Normalize()
	facilities, total, err := s.facilityRepo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}

	return &FacilityPage{
		Facilities: facilities,
		Page:       page,
		Total:      total,
		Pages:      page.Pages(total),
	}, nil
}

// GetFacility retrieves a facility, reading through the cache when one is configured.
func (s *CatalogService) GetFacility(ctx context.Context, facilityID string) (*domain.Facility, error) {
	if facilityID == "" {
		return nil, ErrInvalidFacilityID
	}

	if s.cache != nil {
		cached, err := s.cache.GetFacility(ctx, facilityID)
		if err != nil {
			s.log.WithError(err).WithField("facility_id", facilityID).Warn("facility cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	facility, err := s.facilityRepo.GetByID(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetFacility(ctx, facility); err != nil {
			s.log.WithError(err).WithField("facility_id", facilityID).Warn("facility cache write failed")
		}
	}

	return facility, nil
}

// SearchRequest contains the parameters of a proximity search.
type SearchRequest struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64 // zero means DefaultSearchRadiusKm
	Limit     int     // zero means DefaultSearchLimit
}

// SearchNearby returns active facilities within RadiusKm of the point.
// Candidates come from a fixed window of ±0.05° around the point, capped at
// Limit, and are then filtered by great-circle distance.
func (s *CatalogService) SearchNearby(ctx context.Context, req SearchRequest) ([]*domain.Facility, error) {
	if !isValidLatitude(req.Latitude) || !isValidLongitude(req.Longitude) {
		return nil, ErrInvalidLocation
	}
	if req.RadiusKm <= 0 {
		req.RadiusKm = DefaultSearchRadiusKm
	}
	if req.Limit <= 0 {
		req.Limit = DefaultSearchLimit
	}

	origin := domain.Coordinates{Latitude: req.Latitude, Longitude: req.Longitude}

	candidates, err := s.facilityRepo.FindInBox(ctx, SearchBox(origin), domain.FacilityStatusActive, req.Limit)
	if err != nil {
		return nil, err
	}

	nearby := make([]*domain.Facility, 0, len(candidates))
	for _, f := range candidates {
		if Haversine(origin, f.Coordinates) <= req.RadiusKm {
			nearby = append(nearby, f)
		}
	}
	return nearby, nil
}

// invalidateFacility drops a cached facility after its spots or reviews change.
func invalidateFacility(ctx context.Context, cache redis.FacilityCacheInterface, log logrus.FieldLogger, facilityID string) {
	if cache == nil {
		return
	}
	if err := cache.InvalidateFacility(ctx, facilityID); err != nil {
		log.WithError(err).WithField("facility_id", facilityID).Warn("facility cache invalidation failed")
	}
}
