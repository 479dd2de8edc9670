package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

type paymentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sql.DB, logger *zap.Logger) *paymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert records the latest provider status for a reference. A reference
// cannot move to a different order.
func (r *paymentRepository) Upsert(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (reference, order_id, status, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (reference) DO UPDATE
		SET status = EXCLUDED.status, amount = EXCLUDED.amount, updated_at = EXCLUDED.updated_at
		WHERE payments.order_id = EXCLUDED.order_id
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		payment.Reference,
		payment.OrderID,
		payment.Status,
		payment.Amount,
		now,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)

	if stderrors.Is(err, sql.ErrNoRows) {
		return &errors.ErrConflict{Message: "payment reference belongs to another order"}
	}
	if err != nil {
		r.logger.Error("Failed to upsert payment", zap.Error(err))
		return err
	}

	return nil
}

func (r *paymentRepository) GetByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	query := `
		SELECT reference, order_id, status, amount, created_at, updated_at
		FROM payments
		WHERE reference = $1
	`

	var p domain.Payment
	err := r.db.QueryRowContext(ctx, query, reference).Scan(
		&p.Reference,
		&p.OrderID,
		&p.Status,
		&p.Amount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, &errors.ErrNotFound{Resource: "payment", ID: reference}
	}
	if err != nil {
		r.logger.Error("Failed to get payment", zap.Error(err))
		return nil, err
	}

	return &p, nil
}
