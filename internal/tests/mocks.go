package tests

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"parkride/internal/domain"
	"parkride/internal/redis"
	"parkride/internal/repository"
)

// newTestLogger returns a logger that discards everything.
func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func paginate[T any](items []T, page repository.Page) []T {
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// ──────────────────────────────────────────────
// MOCK FACILITY REPOSITORY
// ──────────────────────────────────────────────

// MockFacilityRepository is a mock implementation of FacilityRepository.
type MockFacilityRepository struct {
	mu         sync.RWMutex
	facilities map[string]*domain.Facility

	// Counters for verification
	ReserveCallCount int32
	ReleaseCallCount int32

	// SaveDelay stalls SaveReviews to widen read-modify-write races.
	SaveDelay time.Duration

	// Error injection
	GetError     error
	ReserveError error
}

// NewMockFacilityRepository creates a new mock facility repository.
func NewMockFacilityRepository() *MockFacilityRepository {
	return &MockFacilityRepository{
		facilities: make(map[string]*domain.Facility),
	}
}

// AddFacility adds a facility to the mock repository.
func (m *MockFacilityRepository) AddFacility(f *domain.Facility) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.facilities[f.ID] = cloneFacility(f)
}

// GetFacility returns the stored facility for test assertions.
func (m *MockFacilityRepository) GetFacility(id string) *domain.Facility {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.facilities[id]
	if !ok {
		return nil
	}
	return cloneFacility(f)
}

func (m *MockFacilityRepository) Create(ctx context.Context, f *domain.Facility) error {
	if err := f.ValidateVehicleRates(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.facilities[f.ID]; ok {
		return repository.ErrDuplicateKey
	}
	m.facilities[f.ID] = cloneFacility(f)
	return nil
}

func (m *MockFacilityRepository) GetByID(ctx context.Context, id string) (*domain.Facility, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.facilities[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneFacility(f), nil
}

func (m *MockFacilityRepository) List(ctx context.Context, filter domain.FacilityFilter, page repository.Page) ([]*domain.Facility, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*domain.Facility
	for _, f := range m.facilities {
		if filter.Matches(f) {
			matched = append(matched, cloneFacility(f))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Rating != matched[j].Rating {
			return matched[i].Rating > matched[j].Rating
		}
		return matched[i].ID < matched[j].ID
	})
	return paginate(matched, page), int64(len(matched)), nil
}

func (m *MockFacilityRepository) FindInBox(ctx context.Context, box domain.BoundingBox, status domain.FacilityStatus, limit int) ([]*domain.Facility, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Facility, 0)
	for _, f := range m.facilities {
		if f.Status == status && box.Contains(f.Coordinates) {
			result = append(result, cloneFacility(f))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockFacilityRepository) ReserveSpot(ctx context.Context, id string) error {
	atomic.AddInt32(&m.ReserveCallCount, 1)
	if m.ReserveError != nil {
		return m.ReserveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.facilities[id]
	if !ok {
		return repository.ErrNotFound
	}
	if f.AvailableSpots <= 0 {
		return repository.ErrNoSpotsAvailable
	}
	f.AvailableSpots--
	return nil
}

func (m *MockFacilityRepository) ReleaseSpot(ctx context.Context, id string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.facilities[id]
	if !ok {
		return repository.ErrNotFound
	}
	if f.AvailableSpots < f.TotalSpots {
		f.AvailableSpots++
	}
	return nil
}

func (m *MockFacilityRepository) SaveReviews(ctx context.Context, id string, reviews []domain.Review, rating float64) error {
	if m.SaveDelay > 0 {
		time.Sleep(m.SaveDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.facilities[id]
	if !ok {
		return repository.ErrNotFound
	}
	f.Reviews = append([]domain.Review(nil), reviews...)
	f.Rating = rating
	return nil
}

func cloneFacility(f *domain.Facility) *domain.Facility {
	c := *f
	c.Amenities = append([]string(nil), f.Amenities...)
	c.VehicleTypeRates = append([]domain.VehicleTypeRate(nil), f.VehicleTypeRates...)
	c.Reviews = append([]domain.Review(nil), f.Reviews...)
	c.OperatingHours = append([]domain.OperatingHours(nil), f.OperatingHours...)
	return &c
}

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.ParkingBooking

	// TakenCodes are reported as existing by ExistsByCode.
	TakenCodes map[string]bool

	// Counters for verification
	CreateCallCount int32
	DeleteCallCount int32

	// Error injection
	CreateError     error
	DeleteError     error
	TransitionError error
}

// NewMockBookingRepository creates a new mock booking repository.
func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{
		bookings:   make(map[string]*domain.ParkingBooking),
		TakenCodes: make(map[string]bool),
	}
}

// AddBooking adds a booking to the mock repository.
func (m *MockBookingRepository) AddBooking(b *domain.ParkingBooking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *b
	m.bookings[b.ID] = &copy
}

// GetBooking returns the stored booking for test assertions.
func (m *MockBookingRepository) GetBooking(id string) *domain.ParkingBooking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil
	}
	copy := *b
	return &copy
}

// Count returns the number of stored bookings.
func (m *MockBookingRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings)
}

func (m *MockBookingRepository) Create(ctx context.Context, b *domain.ParkingBooking) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.bookings {
		if existing.BookingCode == b.BookingCode {
			return repository.ErrDuplicateKey
		}
	}
	copy := *b
	m.bookings[b.ID] = &copy
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.ParkingBooking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *b
	return &copy, nil
}

func (m *MockBookingRepository) Delete(ctx context.Context, id string) error {
	atomic.AddInt32(&m.DeleteCallCount, 1)
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.bookings, id)
	return nil
}

func (m *MockBookingRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.TakenCodes[code] {
		return true, nil
	}
	for _, b := range m.bookings {
		if b.BookingCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockBookingRepository) Transition(ctx context.Context, id string, from, to domain.BookingStatus, cancellation *domain.Cancellation) error {
	if m.TransitionError != nil {
		return m.TransitionError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	if b.BookingStatus != from {
		return repository.ErrConflict
	}
	b.BookingStatus = to
	if cancellation != nil {
		c := *cancellation
		b.Cancellation = &c
	}
	b.UpdatedAt = time.Now()
	return nil
}

func (m *MockBookingRepository) SetPaymentStatus(ctx context.Context, id string, from, to domain.BookingPaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	if from != "" && b.PaymentStatus != from {
		return repository.ErrConflict
	}
	b.PaymentStatus = to
	return nil
}

func (m *MockBookingRepository) HasCompletedAtFacility(ctx context.Context, userID, facilityID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bookings {
		if b.UserID == userID && b.FacilityID == facilityID && b.BookingStatus == domain.BookingStatusCheckedOut {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockBookingRepository) ListByUser(ctx context.Context, userID string, status domain.BookingStatus, page repository.Page) ([]*domain.ParkingBooking, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*domain.ParkingBooking
	for _, b := range m.bookings {
		if b.UserID != userID || (status != "" && b.BookingStatus != status) {
			continue
		}
		copy := *b
		matched = append(matched, &copy)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, page), int64(len(matched)), nil
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
	}
}

// AddPayment adds a payment to the mock repository.
func (m *MockPaymentRepository) AddPayment(p *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = clonePayment(p)
}

// Count returns the number of stored payments.
func (m *MockPaymentRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.payments {
		if existing.TransactionID == p.TransactionID {
			return repository.ErrDuplicateKey
		}
	}
	m.payments[p.ID] = clonePayment(p)
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clonePayment(p), nil
}

func (m *MockPaymentRepository) GetByBooking(ctx context.Context, ref domain.BookingRef) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.Payment
	for _, p := range m.payments {
		if p.Booking == ref && (latest == nil || p.CreatedAt.After(latest.CreatedAt)) {
			latest = p
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	return clonePayment(latest), nil
}

func (m *MockPaymentRepository) Update(ctx context.Context, p *domain.Payment, from domain.PaymentStatus) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.payments[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != from {
		return repository.ErrConflict
	}
	m.payments[p.ID] = clonePayment(p)
	return nil
}

// GetPayment returns the stored payment for test assertions.
func (m *MockPaymentRepository) GetPayment(id string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	if !ok {
		return nil
	}
	return clonePayment(p)
}

func (m *MockPaymentRepository) ListByUser(ctx context.Context, userID string, filter repository.PaymentFilter, page repository.Page) ([]*domain.Payment, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*domain.Payment
	for _, p := range m.payments {
		if p.UserID != userID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.BookingType != "" && p.Booking.Type != filter.BookingType {
			continue
		}
		matched = append(matched, clonePayment(p))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, page), int64(len(matched)), nil
}

func clonePayment(p *domain.Payment) *domain.Payment {
	c := *p
	if p.Refund != nil {
		r := *p.Refund
		c.Refund = &r
	}
	return &c
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
// Locks are keyed by facility and owned by the token handed out on acquire.
type MockLockStore struct {
	mu     sync.Mutex
	locks  map[string]string
	tokens int

	AcquireCallCount int32
	ReleaseCallCount int32
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]string),
	}
}

// Hold marks the facility lock as taken by someone else.
func (m *MockLockStore) Hold(facilityID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks[facilityID] = "held-elsewhere"
}

// Expire drops the facility lock as if its TTL ran out.
func (m *MockLockStore) Expire(facilityID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, facilityID)
}

// Owner returns the token currently holding the facility lock.
func (m *MockLockStore) Owner(facilityID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locks[facilityID]
}

func (m *MockLockStore) AcquireFacilityLock(ctx context.Context, facilityID string, ttl time.Duration) (string, bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[facilityID]; held {
		return "", false, nil
	}
	m.tokens++
	token := fmt.Sprintf("token-%d", m.tokens)
	m.locks[facilityID] = token
	return token, true, nil
}

func (m *MockLockStore) ReleaseFacilityLock(ctx context.Context, facilityID, token string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[facilityID] == token {
		delete(m.locks, facilityID)
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK FACILITY CACHE
// ──────────────────────────────────────────────

// MockFacilityCache is a mock implementation of FacilityCacheInterface.
type MockFacilityCache struct {
	mu         sync.Mutex
	facilities map[string]*domain.Facility

	HitCount        int32
	InvalidateCount int32
}

// NewMockFacilityCache creates a new mock facility cache.
func NewMockFacilityCache() *MockFacilityCache {
	return &MockFacilityCache{
		facilities: make(map[string]*domain.Facility),
	}
}

// Cached reports whether the facility is currently cached.
func (m *MockFacilityCache) Cached(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.facilities[id]
	return ok
}

func (m *MockFacilityCache) GetFacility(ctx context.Context, facilityID string) (*domain.Facility, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.facilities[facilityID]
	if !ok {
		return nil, nil
	}
	atomic.AddInt32(&m.HitCount, 1)
	return cloneFacility(f), nil
}

func (m *MockFacilityCache) SetFacility(ctx context.Context, f *domain.Facility) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.facilities[f.ID] = cloneFacility(f)
	return nil
}

func (m *MockFacilityCache) InvalidateFacility(ctx context.Context, facilityID string) error {
	atomic.AddInt32(&m.InvalidateCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.facilities, facilityID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK PSP
// ──────────────────────────────────────────────

// MockPSP is a payment service provider with a fixed outcome.
type MockPSP struct {
	Succeed bool

	// OnCharge runs while the charge is in flight.
	OnCharge func(payment *domain.Payment)

	ChargeCount int32
	RefundCount int32
}

func (m *MockPSP) Charge(ctx context.Context, payment *domain.Payment) (bool, error) {
	atomic.AddInt32(&m.ChargeCount, 1)
	if m.OnCharge != nil {
		m.OnCharge(payment)
	}
	return m.Succeed, nil
}

func (m *MockPSP) Refund(ctx context.Context, payment *domain.Payment, amount float64) error {
	atomic.AddInt32(&m.RefundCount, 1)
	return nil
}

// Ensure mocks implement interfaces.
var (
	_ repository.FacilityRepository = (*MockFacilityRepository)(nil)
	_ repository.BookingRepository  = (*MockBookingRepository)(nil)
	_ repository.PaymentRepository  = (*MockPaymentRepository)(nil)
	_ redis.LockStoreInterface      = (*MockLockStore)(nil)
	_ redis.FacilityCacheInterface  = (*MockFacilityCache)(nil)
)
