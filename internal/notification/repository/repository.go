package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"koppara_backend/platform/apperr"
)

const (
	opCreate         = "notification.repository.create"
	opGet            = "notification.repository.get"
	opListFeed       = "notification.repository.list_feed"
	opMarkDispatched = "notification.repository.mark_dispatched"

	targetDistributorConstraint = "notifications_target_distributor_id_fkey"

	notificationColumns = "id, title, body, category, target_tier, target_distributor_id, recipient_count, dispatched_at, created_at"
)

// Notification is a stored notification row.
type Notification struct {
	ID                  uuid.UUID
	Title               string
	Body                string
	Category            string
	TargetTier          string
	TargetDistributorID *uuid.UUID
	RecipientCount      int
	DispatchedAt        *time.Time
	CreatedAt           time.Time
}

// CreateParams contains parameters for creating a notification.
type CreateParams struct {
	Title               string
	Body                string
	Category            string
	TargetTier          string
	TargetDistributorID *uuid.UUID
}

// Repository is the notification store.
type Repository interface {
	Create(ctx context.Context, p CreateParams) (Notification, error)
	Get(ctx context.Context, id uuid.UUID) (Notification, error)
	ListFeed(ctx context.Context, distributorID uuid.UUID, tier string, limit int) ([]Notification, error)
	MarkDispatched(ctx context.Context, id uuid.UUID, recipients int, at time.Time) error
}

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new notification repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// Create inserts an undispatched notification. A target distributor that
// does not exist is reported as not found.
func (r *Repo) Create(ctx context.Context, p CreateParams) (Notification, error) {
	n, err := scanNotification(r.pool.QueryRow(ctx, `
		INSERT INTO notifications (title, body, category, target_tier, target_distributor_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+notificationColumns,
		p.Title, p.Body, p.Category, p.TargetTier, p.TargetDistributorID,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" && pgErr.ConstraintName == targetDistributorConstraint {
			return Notification{}, apperr.NotFound("distributor not found").WithOp(opCreate)
		}
		return Notification{}, apperr.StorageFailure(opCreate, err)
	}
	return n, nil
}

// Get retrieves a notification by ID.
func (r *Repo) Get(ctx context.Context, id uuid.UUID) (Notification, error) {
	n, err := scanNotification(r.pool.QueryRow(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Notification{}, apperr.NotFound("notification not found")
		}
		return Notification{}, apperr.StorageFailure(opGet, err)
	}
	return n, nil
}

// ListFeed returns the notifications addressed to one distributor, newest
// first.
func (r *Repo) ListFeed(ctx context.Context, distributorID uuid.UUID, tier string, limit int) ([]Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE (target_tier = 'all' OR target_tier = $2)
			AND (target_distributor_id IS NULL OR target_distributor_id = $1)
		ORDER BY created_at DESC, id
		LIMIT $3`,
		distributorID, tier, limit,
	)
	if err != nil {
		return nil, apperr.StorageFailure(opListFeed, err)
	}
	defer rows.Close()

	items := make([]Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, apperr.StorageFailure(opListFeed, err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StorageFailure(opListFeed, err)
	}
	return items, nil
}

// MarkDispatched records the resolved audience size. A notification is
// only marked once.
func (r *Repo) MarkDispatched(ctx context.Context, id uuid.UUID, recipients int, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET recipient_count = $2, dispatched_at = $3
		WHERE id = $1 AND dispatched_at IS NULL`,
		id, recipients, at,
	)
	if err != nil {
		return apperr.StorageFailure(opMarkDispatched, err)
	}
	return nil
}

func scanNotification(row pgx.Row) (Notification, error) {
	var n Notification
	err := row.Scan(&n.ID, &n.Title, &n.Body, &n.Category, &n.TargetTier, &n.TargetDistributorID, &n.RecipientCount, &n.DispatchedAt, &n.CreatedAt)
	return n, err
}
