package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"parkride/internal/domain"
	"parkride/internal/repository"
)

const paymentColumns = `id, user_id, amount, currency, payment_method, status, booking_type, booking_id,
	transaction_id, refund_amount, refund_reason, refunded_at, created_at, updated_at`

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	amount, reason, refundedAt := refundColumns(p.Refund)

	_, err := r.q.ExecContext(ctx, query,
		p.ID,
		p.UserID,
		p.Amount,
		p.Currency,
		p.PaymentMethod,
		p.Status,
		p.Booking.Type,
		p.Booking.ID,
		p.TransactionID,
		amount,
		reason,
		refundedAt,
		p.CreatedAt,
		p.UpdatedAt,
	)

	return translateError(err)
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	p, err := scanPayment(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return p, nil
}

// GetByBooking retrieves the payment settling the referenced booking.
func (r *PaymentRepository) GetByBooking(ctx context.Context, ref domain.BookingRef) (*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments WHERE booking_type = $1 AND booking_id = $2
		ORDER BY created_at DESC LIMIT 1
	`

	p, err := scanPayment(r.q.QueryRowContext(ctx, query, ref.Type, ref.ID))
	if err != nil {
		return nil, translateError(err)
	}
	return p, nil
}

// Update persists status and refund changes of a payment still in status from.
func (r *PaymentRepository) Update(ctx context.Context, p *domain.Payment, from domain.PaymentStatus) error {
	query := `
		UPDATE payments
		SET status = $1, refund_amount = $2, refund_reason = $3, refunded_at = $4, updated_at = $5
		WHERE id = $6 AND status = $7
	`

	amount, reason, refundedAt := refundColumns(p.Refund)

	result, err := r.q.ExecContext(ctx, query, p.Status, amount, reason, refundedAt, p.UpdatedAt, p.ID, from)
	if err != nil {
		return err
	}
	if err := requireAffected(result); err != nil {
		if _, getErr := r.GetByID(ctx, p.ID); getErr != nil {
			return getErr
		}
		return repository.ErrConflict
	}
	return nil
}

// ListByUser returns the user's payments newest first.
func (r *PaymentRepository) ListByUser(ctx context.Context, userID string, filter repository.PaymentFilter, page repository.Page) ([]*domain.Payment, int64, error) {
	where := ` WHERE user_id = $1`
	args := []any{userID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.BookingType != "" {
		args = append(args, filter.BookingType)
		where += fmt.Sprintf(` AND booking_type = $%d`, len(args))
	}

	var total int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	query := fmt.Sprintf(`SELECT %s FROM payments%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		paymentColumns, where, len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset())

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	payments := make([]*domain.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}
	return payments, total, rows.Err()
}

func refundColumns(refund *domain.Refund) (sql.NullFloat64, sql.NullString, sql.NullTime) {
	if refund == nil {
		return sql.NullFloat64{}, sql.NullString{}, sql.NullTime{}
	}
	return sql.NullFloat64{Float64: refund.Amount, Valid: true},
		sql.NullString{String: refund.Reason, Valid: true},
		sql.NullTime{Time: refund.RefundedAt, Valid: true}
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var p domain.Payment
	var bookingType, bookingID string
	var refundAmount sql.NullFloat64
	var refundReason sql.NullString
	var refundedAt sql.NullTime

	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Amount,
		&p.Currency,
		&p.PaymentMethod,
		&p.Status,
		&bookingType,
		&bookingID,
		&p.TransactionID,
		&refundAmount,
		&refundReason,
		&refundedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	ref, err := domain.ParseBookingRef(bookingType, bookingID)
	if err != nil {
		return nil, err
	}
	p.Booking = ref

	if refundAmount.Valid {
		p.Refund = &domain.Refund{
			Amount:     refundAmount.Float64,
			Reason:     refundReason.String,
			RefundedAt: refundedAt.Time,
		}
	}

	return &p, nil
}
