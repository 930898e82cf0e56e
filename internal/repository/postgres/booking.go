package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"parkride/internal/domain"
	"parkride/internal/repository"
)

const bookingColumns = `id, user_id, facility_id, start_time, end_time, vehicle_type, vehicle_license_plate,
	price, booking_status, payment_status, payment_method, booking_code, special_instructions,
	cancellation_reason, cancellation_fee, cancelled_at, created_at, updated_at`

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, b *domain.ParkingBooking) error {
	query := `
		INSERT INTO parking_bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	reason, fee, cancelledAt := cancellationColumns(b.Cancellation)

	_, err := r.q.ExecContext(ctx, query,
		b.ID,
		b.UserID,
		b.FacilityID,
		b.StartTime,
		b.EndTime,
		b.VehicleType,
		b.VehicleLicensePlate,
		b.Price,
		b.BookingStatus,
		b.PaymentStatus,
		b.PaymentMethod,
		b.BookingCode,
		b.SpecialInstructions,
		reason,
		fee,
		cancelledAt,
		b.CreatedAt,
		b.UpdatedAt,
	)

	return translateError(err)
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.ParkingBooking, error) {
	query := `SELECT ` + bookingColumns + ` FROM parking_bookings WHERE id = $1`

	b, err := scanBooking(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return b, nil
}

// Delete removes a booking.
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM parking_bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// ExistsByCode reports whether a booking code is already taken.
func (r *BookingRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM parking_bookings WHERE booking_code = $1)`, code,
	).Scan(&exists)
	return exists, err
}

// Transition moves a booking from one status to another.
func (r *BookingRepository) Transition(ctx context.Context, id string, from, to domain.BookingStatus, cancellation *domain.Cancellation) error {
	query := `
		UPDATE parking_bookings
		SET booking_status = $1,
		    cancellation_reason = COALESCE($2, cancellation_reason),
		    cancellation_fee = COALESCE($3, cancellation_fee),
		    cancelled_at = COALESCE($4, cancelled_at),
		    updated_at = now()
		WHERE id = $5 AND booking_status = $6
	`

	reason, fee, cancelledAt := cancellationColumns(cancellation)

	result, err := r.q.ExecContext(ctx, query, to, reason, fee, cancelledAt, id, from)
	if err != nil {
		return err
	}
	if err := requireAffected(result); err != nil {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return repository.ErrConflict
	}
	return nil
}

// SetPaymentStatus updates the booking's mirrored payment status, optionally
// only while it still mirrors from.
func (r *BookingRepository) SetPaymentStatus(ctx context.Context, id string, from, to domain.BookingPaymentStatus) error {
	query := `UPDATE parking_bookings SET payment_status = $1, updated_at = now() WHERE id = $2`
	args := []any{to, id}
	if from != "" {
		query += ` AND payment_status = $3`
		args = append(args, from)
	}

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if err := requireAffected(result); err != nil {
		if from == "" {
			return err
		}
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return repository.ErrConflict
	}
	return nil
}

// HasCompletedAtFacility reports whether the user has a checked-out booking at the facility.
func (r *BookingRepository) HasCompletedAtFacility(ctx context.Context, userID, facilityID string) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM parking_bookings
			WHERE user_id = $1 AND facility_id = $2 AND booking_status = $3
		)`, userID, facilityID, domain.BookingStatusCheckedOut,
	).Scan(&exists)
	return exists, err
}

// ListByUser returns the user's bookings newest first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string, status domain.BookingStatus, page repository.Page) ([]*domain.ParkingBooking, int64, error) {
	where := ` WHERE user_id = $1`
	args := []any{userID}
	if status != "" {
		where += ` AND booking_status = $2`
		args = append(args, status)
	}

	var total int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM parking_bookings`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	query := fmt.Sprintf(`SELECT %s FROM parking_bookings%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		bookingColumns, where, len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset())

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	bookings := make([]*domain.ParkingBooking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, b)
	}
	return bookings, total, rows.Err()
}

func cancellationColumns(c *domain.Cancellation) (sql.NullString, sql.NullFloat64, sql.NullTime) {
	if c == nil {
		return sql.NullString{}, sql.NullFloat64{}, sql.NullTime{}
	}
	return sql.NullString{String: c.Reason, Valid: true},
		sql.NullFloat64{Float64: c.Fee, Valid: true},
		sql.NullTime{Time: c.CancelledAt, Valid: true}
}

func scanBooking(row rowScanner) (*domain.ParkingBooking, error) {
	var b domain.ParkingBooking
	var reason sql.NullString
	var fee sql.NullFloat64
	var cancelledAt sql.NullTime

	if err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.FacilityID,
		&b.StartTime,
		&b.EndTime,
		&b.VehicleType,
		&b.VehicleLicensePlate,
		&b.Price,
		&b.BookingStatus,
		&b.PaymentStatus,
		&b.PaymentMethod,
		&b.BookingCode,
		&b.SpecialInstructions,
		&reason,
		&fee,
		&cancelledAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if fee.Valid {
		b.Cancellation = &domain.Cancellation{
			Reason:      reason.String,
			Fee:         fee.Float64,
			CancelledAt: cancelledAt.Time,
		}
	}

	return &b, nil
}
