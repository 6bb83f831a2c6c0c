package repository

import (
	"context"
	"fmt"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	FindByTxRef(ctx context.Context, txRef string) (*entity.Payment, error)

	// Business queries
	FindActiveByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error)
	FindCompletedByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error)
	TransitionStatus(ctx context.Context, paymentID uuid.UUID, from, to entity.PaymentStatus) (bool, error)
}

type paymentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRepository(db database.PgxIface, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (id, booking_id, amount, tx_ref, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		payment.ID,
		payment.BookingID,
		payment.Amount,
		payment.TxRef,
		payment.Status,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.String("booking_id", payment.BookingID.String()),
			zap.String("tx_ref", payment.TxRef),
		)
		return fmt.Errorf("create payment for booking %s: %w", payment.BookingID.String(), err)
	}

	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	query := `
		SELECT id, booking_id, amount, tx_ref, status, created_at, updated_at
		FROM payments
		WHERE id = $1
	`

	var payment entity.Payment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.Amount,
		&payment.TxRef,
		&payment.Status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by ID",
			zap.Error(err),
			zap.String("payment_id", id.String()),
		)
		return nil, fmt.Errorf("find payment by ID %s: %w", id.String(), err)
	}

	return &payment, nil
}

func (r *paymentRepository) FindByTxRef(ctx context.Context, txRef string) (*entity.Payment, error) {
	query := `
		SELECT id, booking_id, amount, tx_ref, status, created_at, updated_at
		FROM payments
		WHERE tx_ref = $1
	`

	var payment entity.Payment
	err := r.db.QueryRow(ctx, query, txRef).Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.Amount,
		&payment.TxRef,
		&payment.Status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by tx_ref",
			zap.Error(err),
			zap.String("tx_ref", txRef),
		)
		return nil, fmt.Errorf("find payment by tx_ref %s: %w", txRef, err)
	}

	return &payment, nil
}

// FindActiveByBookingID returns the latest non-failed payment for a booking.
// Initiate reuses this row instead of inserting a duplicate attempt.
func (r *paymentRepository) FindActiveByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	query := `
		SELECT id, booking_id, amount, tx_ref, status, created_at, updated_at
		FROM payments
		WHERE booking_id = $1 AND status != 'failed'
		ORDER BY created_at DESC
		LIMIT 1
	`

	var payment entity.Payment
	err := r.db.QueryRow(ctx, query, bookingID).Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.Amount,
		&payment.TxRef,
		&payment.Status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find active payment by booking ID",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find active payment for booking %s: %w", bookingID.String(), err)
	}

	return &payment, nil
}

func (r *paymentRepository) FindCompletedByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	query := `
		SELECT id, booking_id, amount, tx_ref, status, created_at, updated_at
		FROM payments
		WHERE booking_id = $1 AND status = 'completed'
		LIMIT 1
	`

	var payment entity.Payment
	err := r.db.QueryRow(ctx, query, bookingID).Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.Amount,
		&payment.TxRef,
		&payment.Status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find completed payment by booking ID",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find completed payment for booking %s: %w", bookingID.String(), err)
	}

	return &payment, nil
}

// TransitionStatus flips a payment from one status to another in a single
// conditional UPDATE. The WHERE clause on the current status makes it a
// compare-and-set: of N concurrent callers only one sees (true, nil), the
// rest lose the race and get (false, nil).
func (r *paymentRepository) TransitionStatus(ctx context.Context, paymentID uuid.UUID, from, to entity.PaymentStatus) (bool, error) {
	query := `
		UPDATE payments
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	result, err := r.db.Exec(ctx, query, paymentID, from, to)
	if err != nil {
		r.log.Error("Failed to transition payment status",
			zap.Error(err),
			zap.String("payment_id", paymentID.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return false, fmt.Errorf("transition payment %s from %s to %s: %w", paymentID.String(), string(from), string(to), err)
	}

	return result.RowsAffected() == 1, nil
}
