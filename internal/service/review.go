package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"parkride/internal/domain"
	"parkride/internal/redis"
	"parkride/internal/repository"
)

const (
	reviewLockTTL      = 5 * time.Second
	reviewLockAttempts = 5
	reviewLockBackoff  = 50 * time.Millisecond
)

// ReviewService folds user reviews into facility ratings.
type ReviewService struct {
	facilityRepo repository.FacilityRepository
	bookingRepo  repository.BookingRepository
	lockStore    redis.LockStoreInterface
	cache        redis.FacilityCacheInterface
	log          logrus.FieldLogger
	now          func() time.Time

	// localLocks serialise reviews per facility when no lock store is configured.
	localMu    sync.Mutex
	localLocks map[string]*sync.Mutex
}

// NewReviewService creates a new ReviewService. lockStore and cache may be nil;
// without a lock store, reviews are serialised within this process only.
func NewReviewService(
	facilityRepo repository.FacilityRepository,
	bookingRepo repository.BookingRepository,
	lockStore redis.LockStoreInterface,
	cache redis.FacilityCacheInterface,
	log logrus.FieldLogger,
) *ReviewService {
	return &ReviewService{
		facilityRepo: facilityRepo,
		bookingRepo:  bookingRepo,
		lockStore:    lockStore,
		cache:        cache,
		log:          log,
		now:          time.Now,
		localLocks:   make(map[string]*sync.Mutex),
	}
}

// SubmitReviewRequest contains the parameters for submitting a review.
type SubmitReviewRequest struct {
	Principal  domain.Principal
	FacilityID string
	Rating     int
	Comment    string
}

// SubmitReview adds or replaces the principal's review of a facility and
// recomputes its rating as the mean of all reviews. Non-admins need a
// checked-out booking at the facility.
func (s *ReviewService) SubmitReview(ctx context.Context, req SubmitReviewRequest) (*domain.Facility, error) {
	if req.Principal.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if req.FacilityID == "" {
		return nil, ErrInvalidFacilityID
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	if _, err := s.facilityRepo.GetByID(ctx, req.FacilityID); err != nil {
		return nil, err
	}

	if !req.Principal.IsAdmin() {
		ok, err := s.bookingRepo.HasCompletedAtFacility(ctx, req.Principal.UserID, req.FacilityID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrReviewNotAllowed
		}
	}

	unlock, err := s.lockFacility(ctx, req.FacilityID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Re-read under the lock so concurrent reviews are not lost.
	facility, err := s.facilityRepo.GetByID(ctx, req.FacilityID)
	if err != nil {
		return nil, err
	}

	review := domain.Review{
		UserID:    req.Principal.UserID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: s.now(),
	}
	if i := facility.ReviewIndex(review.UserID); i >= 0 {
		facility.Reviews[i] = review
	} else {
		facility.Reviews = append(facility.Reviews, review)
	}
	facility.Rating = MeanRating(facility.Reviews)

	if err := s.facilityRepo.SaveReviews(ctx, facility.ID, facility.Reviews, facility.Rating); err != nil {
		return nil, err
	}
	invalidateFacility(ctx, s.cache, s.log, facility.ID)

	return facility, nil
}

// MeanRating returns the arithmetic mean of the review ratings, or 0 with no reviews.
func MeanRating(reviews []domain.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	return float64(total) / float64(len(reviews))
}

// lockFacility takes the per-facility review lock, retrying briefly.
func (s *ReviewService) lockFacility(ctx context.Context, facilityID string) (func(), error) {
	if s.lockStore == nil {
		return s.lockFacilityLocal(facilityID), nil
	}

	for attempt := 0; attempt < reviewLockAttempts; attempt++ {
		token, acquired, err := s.lockStore.AcquireFacilityLock(ctx, facilityID, reviewLockTTL)
		if err != nil {
			return nil, err
		}
		if acquired {
			return func() {
				if err := s.lockStore.ReleaseFacilityLock(ctx, facilityID, token); err != nil {
					s.log.WithError(err).WithField("facility_id", facilityID).Warn("failed to release facility lock")
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(reviewLockBackoff):
		}
	}
	return nil, ErrFacilityBusy
}

func (s *ReviewService) lockFacilityLocal(facilityID string) func() {
	s.localMu.Lock()
	mu, ok := s.localLocks[facilityID]
	if !ok {
		mu = &sync.Mutex{}
		s.localLocks[facilityID] = mu
	}
	s.localMu.Unlock()

	mu.Lock()
	return mu.Unlock
}
