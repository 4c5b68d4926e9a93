package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrAttemptNotFound = errors.New("checkout attempt not found")

const attemptColumns = `id, session_id, user_id, kind, resource_id, quantity, customer_name, amount_cents, stage, payment_intent_id, failure, created_at, updated_at`

type CheckoutAttemptRepository interface {
	Create(ctx context.Context, attempt *domain.CheckoutAttempt) error
	UpdateStage(ctx context.Context, id uuid.UUID, stage domain.CheckoutStage, paymentIntentID, failure string) error
	MarkAbandonedBefore(ctx context.Context, deadline time.Time) ([]domain.CheckoutAttempt, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.CheckoutAttempt, error)
}

// DB is the part of *pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCheckoutAttemptRepository struct {
	db DB
}

func NewCheckoutAttemptRepository(db DB) CheckoutAttemptRepository {
	return &PGCheckoutAttemptRepository{db: db}
}

func (r *PGCheckoutAttemptRepository) Create(ctx context.Context, a *domain.CheckoutAttempt) error {
	err := r.db.QueryRow(ctx, `INSERT INTO checkout_attempts
		(id, session_id, user_id, kind, resource_id, quantity, customer_name, amount_cents, stage, payment_intent_id, failure)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		a.ID, a.SessionID, a.UserID, a.Kind, a.ResourceID, a.Quantity, a.CustomerName, a.AmountCents, a.Stage, a.PaymentIntentID, a.Failure).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	return errors.Wrap(err, "insert checkout attempt")
}

func (r *PGCheckoutAttemptRepository) UpdateStage(ctx context.Context, id uuid.UUID, stage domain.CheckoutStage, paymentIntentID, failure string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE checkout_attempts
		SET stage=$1, payment_intent_id=COALESCE(NULLIF($2, ''), payment_intent_id), failure=$3, updated_at=now()
		WHERE id=$4`, stage, paymentIntentID, failure, id)
	if err != nil {
		return errors.Wrap(err, "update checkout attempt")
	}
	if cmd.RowsAffected() == 0 {
		return ErrAttemptNotFound
	}
	return nil
}

// MarkAbandonedBefore closes attempts that stopped before a terminal stage
// and have not moved since deadline.
func (r *PGCheckoutAttemptRepository) MarkAbandonedBefore(ctx context.Context, deadline time.Time) ([]domain.CheckoutAttempt, error) {
	rows, err := r.db.Query(ctx, `UPDATE checkout_attempts SET stage=$1, updated_at=now()
		WHERE stage IN ($2, $3) AND updated_at <= $4
		RETURNING `+attemptColumns,
		domain.CheckoutStageAbandoned, domain.CheckoutStageStarted, domain.CheckoutStageIntentCreated, deadline)
	if err != nil {
		return nil, errors.Wrap(err, "abandon checkout attempts")
	}
	return collectAttempts(rows)
}

func (r *PGCheckoutAttemptRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.CheckoutAttempt, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(ctx, `SELECT `+attemptColumns+` FROM checkout_attempts
		WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list checkout attempts")
	}
	return collectAttempts(rows)
}

func collectAttempts(rows pgx.Rows) ([]domain.CheckoutAttempt, error) {
	defer rows.Close()

	var attempts []domain.CheckoutAttempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func scanAttempt(row pgx.Row) (domain.CheckoutAttempt, error) {
	var a domain.CheckoutAttempt
	err := row.Scan(&a.ID, &a.SessionID, &a.UserID, &a.Kind, &a.ResourceID, &a.Quantity, &a.CustomerName,
		&a.AmountCents, &a.Stage, &a.PaymentIntentID, &a.Failure, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.CheckoutAttempt{}, errors.Wrap(err, "scan checkout attempt")
	}
	return a, nil
}

var _ CheckoutAttemptRepository = (*PGCheckoutAttemptRepository)(nil)
