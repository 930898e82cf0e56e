package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"parkride/internal/domain"
	"parkride/internal/repository"
)

// JSONB column payloads.
type vehicleTypeRateJSON struct {
	VehicleType      string  `json:"vehicleType"`
	HourlyMultiplier float64 `json:"hourlyMultiplier,omitempty"`
}

type reviewJSON struct {
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type operatingHoursJSON struct {
	Day      string `json:"day"`
	Open     string `json:"open"`
	Close    string `json:"close"`
	IsClosed bool   `json:"isClosed"`
}

const facilityColumns = `id, name, address, city, state, zip_code, latitude, longitude, total_spots,
	available_spots, hourly_rate, daily_rate, amenities, vehicle_type_rates, rating, reviews,
	operating_hours, status, created_at, updated_at`

// FacilityRepository is a PostgreSQL implementation of repository.FacilityRepository.
type FacilityRepository struct {
	q Querier
}

// NewFacilityRepository creates a new PostgreSQL facility repository.
func NewFacilityRepository(db *sql.DB) *FacilityRepository {
	return &FacilityRepository{q: db}
}

// Create persists a new facility.
func (r *FacilityRepository) Create(ctx context.Context, f *domain.Facility) error {
	if err := f.ValidateVehicleRates(); err != nil {
		return err
	}
	rates, err := json.Marshal(toRateJSON(f.VehicleTypeRates))
	if err != nil {
		return err
	}
	reviews, err := json.Marshal(toReviewJSON(f.Reviews))
	if err != nil {
		return err
	}
	hours, err := json.Marshal(toHoursJSON(f.OperatingHours))
	if err != nil {
		return err
	}

	query := `
		INSERT INTO facilities (` + facilityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err = r.q.ExecContext(ctx, query,
		f.ID,
		f.Name,
		f.Address,
		f.City,
		f.State,
		f.ZipCode,
		f.Coordinates.Latitude,
		f.Coordinates.Longitude,
		f.TotalSpots,
		f.AvailableSpots,
		f.HourlyRate,
		f.DailyRate,
		pq.Array(nonNilStrings(f.Amenities)),
		rates,
		f.Rating,
		reviews,
		hours,
		f.Status,
		f.CreatedAt,
		f.UpdatedAt,
	)

	return translateError(err)
}

// GetByID retrieves a facility by ID.
func (r *FacilityRepository) GetByID(ctx context.Context, id string) (*domain.Facility, error) {
	query := `SELECT ` + facilityColumns + ` FROM facilities WHERE id = $1`

	f, err := scanFacility(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return f, nil
}

// List returns one page of facilities matching filter, sorted by rating descending.
func (r *FacilityRepository) List(ctx context.Context, filter domain.FacilityFilter, page repository.Page) ([]*domain.Facility, int64, error) {
	where, args, err := facilityWhere(filter)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM facilities`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	query := fmt.Sprintf(`SELECT %s FROM facilities%s ORDER BY rating DESC, id LIMIT $%d OFFSET $%d`,
		facilityColumns, where, len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset())

	facilities, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return facilities, total, nil
}

// FindInBox returns up to limit facilities with the given status inside box.
func (r *FacilityRepository) FindInBox(ctx context.Context, box domain.BoundingBox, status domain.FacilityStatus, limit int) ([]*domain.Facility, error) {
	query := `
		SELECT ` + facilityColumns + `
		FROM facilities
		WHERE status = $1
		  AND latitude BETWEEN $2 AND $3
		  AND longitude BETWEEN $4 AND $5
		LIMIT $6
	`
	return r.query(ctx, query, status, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng, limit)
}

// ReserveSpot atomically decrements available spots if any remain.
func (r *FacilityRepository) ReserveSpot(ctx context.Context, id string) error {
	query := `
		UPDATE facilities
		SET available_spots = available_spots - 1, updated_at = now()
		WHERE id = $1 AND available_spots > 0
	`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if err := requireAffected(result); err != nil {
		return r.missingOr(ctx, id, repository.ErrNoSpotsAvailable)
	}
	return nil
}

// ReleaseSpot increments available spots unless already at capacity.
func (r *FacilityRepository) ReleaseSpot(ctx context.Context, id string) error {
	query := `
		UPDATE facilities
		SET available_spots = available_spots + 1, updated_at = now()
		WHERE id = $1 AND available_spots < total_spots
	`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if err := requireAffected(result); err != nil {
		return r.missingOr(ctx, id, nil)
	}
	return nil
}

// SaveReviews replaces the review list and the derived rating.
func (r *FacilityRepository) SaveReviews(ctx context.Context, id string, reviews []domain.Review, rating float64) error {
	payload, err := json.Marshal(toReviewJSON(reviews))
	if err != nil {
		return err
	}

	query := `UPDATE facilities SET reviews = $1, rating = $2, updated_at = now() WHERE id = $3`

	result, err := r.q.ExecContext(ctx, query, payload, rating, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// missingOr distinguishes a missing facility from a failed condition.
func (r *FacilityRepository) missingOr(ctx context.Context, id string, conditionErr error) error {
	var exists bool
	if err := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM facilities WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return conditionErr
}

func (r *FacilityRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Facility, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	facilities := make([]*domain.Facility, 0)
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, err
		}
		facilities = append(facilities, f)
	}
	return facilities, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// facilityWhere builds the WHERE clause and positional args for a filter.
func facilityWhere(filter domain.FacilityFilter) (string, []any, error) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		conds = append(conds, "status = "+arg(filter.Status))
	}
	if filter.City != "" {
		conds = append(conds, "city ILIKE '%' || "+arg(likeEscaper.Replace(filter.City))+" || '%'")
	}
	if len(filter.Amenities) > 0 {
		conds = append(conds, "amenities @> "+arg(pq.Array(filter.Amenities)))
	}
	if filter.MinRating > 0 {
		conds = append(conds, "rating >= "+arg(filter.MinRating))
	}
	if filter.VehicleType != "" {
		containment, err := json.Marshal([]vehicleTypeRateJSON{{VehicleType: filter.VehicleType}})
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, "vehicle_type_rates @> "+arg(string(containment))+"::jsonb")
	}

	if len(conds) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func scanFacility(row rowScanner) (*domain.Facility, error) {
	var f domain.Facility
	var amenities pq.StringArray
	var rates, reviews, hours []byte

	if err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Address,
		&f.City,
		&f.State,
		&f.ZipCode,
		&f.Coordinates.Latitude,
		&f.Coordinates.Longitude,
		&f.TotalSpots,
		&f.AvailableSpots,
		&f.HourlyRate,
		&f.DailyRate,
		&amenities,
		&rates,
		&f.Rating,
		&reviews,
		&hours,
		&f.Status,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return nil, err
	}

	f.Amenities = []string(amenities)

	var rateRows []vehicleTypeRateJSON
	if err := json.Unmarshal(rates, &rateRows); err != nil {
		return nil, fmt.Errorf("decode vehicle_type_rates: %w", err)
	}
	for _, rr := range rateRows {
		f.VehicleTypeRates = append(f.VehicleTypeRates, domain.VehicleTypeRate{
			VehicleType:      rr.VehicleType,
			HourlyMultiplier: rr.HourlyMultiplier,
		})
	}

	var reviewRows []reviewJSON
	if err := json.Unmarshal(reviews, &reviewRows); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	for _, rr := range reviewRows {
		f.Reviews = append(f.Reviews, domain.Review{
			UserID:    rr.UserID,
			Rating:    rr.Rating,
			Comment:   rr.Comment,
			CreatedAt: rr.CreatedAt,
		})
	}

	var hourRows []operatingHoursJSON
	if err := json.Unmarshal(hours, &hourRows); err != nil {
		return nil, fmt.Errorf("decode operating_hours: %w", err)
	}
	for _, h := range hourRows {
		f.OperatingHours = append(f.OperatingHours, domain.OperatingHours{
			Day:      h.Day,
			Open:     h.Open,
			Close:    h.Close,
			IsClosed: h.IsClosed,
		})
	}

	return &f, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toRateJSON(rates []domain.VehicleTypeRate) []vehicleTypeRateJSON {
	out := make([]vehicleTypeRateJSON, 0, len(rates))
	for _, r := range rates {
		out = append(out, vehicleTypeRateJSON{VehicleType: r.VehicleType, HourlyMultiplier: r.HourlyMultiplier})
	}
	return out
}

func toReviewJSON(reviews []domain.Review) []reviewJSON {
	out := make([]reviewJSON, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, reviewJSON{UserID: r.UserID, Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt})
	}
	return out
}

func toHoursJSON(hours []domain.OperatingHours) []operatingHoursJSON {
	out := make([]operatingHoursJSON, 0, len(hours))
	for _, h := range hours {
		out = append(out, operatingHoursJSON{Day: h.Day, Open: h.Open, Close: h.Close, IsClosed: h.IsClosed})
	}
	return out
}
