package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"koppara_backend/platform/apperr"
)

const (
	prospectNotFoundMessage = "prospect not found"
	prospectColumns         = "id, distributor_id, phone, name, state, last_interaction_at, created_at"
)

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new prospects repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Upsert resolves concurrent first contacts through the
// (distributor_id, phone) unique constraint. The last interaction never
// moves backward.
func (r *Repo) Upsert(ctx context.Context, params UpsertParams) (Prospect, bool, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO prospects (distributor_id, phone, name, state, last_interaction_at, created_at)
		VALUES ($1, $2, $3, 'interested', $4, $4)
		ON CONFLICT ON CONSTRAINT prospects_distributor_phone_key DO UPDATE
		SET name = EXCLUDED.name,
			last_interaction_at = GREATEST(prospects.last_interaction_at, EXCLUDED.last_interaction_at)
		RETURNING `+prospectColumns+`, (xmax = 0) AS inserted`,
		params.DistributorID, params.Phone, params.Name, params.At,
	)

	var p Prospect
	var inserted bool
	if err := row.Scan(&p.ID, &p.DistributorID, &p.Phone, &p.Name, &p.State, &p.LastInteractionAt, &p.CreatedAt, &inserted); err != nil {
		return Prospect{}, false, apperr.StorageFailure("upsert prospect", err)
	}
	return p, inserted, nil
}

// Get retrieves a prospect owned by the distributor.
func (r *Repo) Get(ctx context.Context, distributorID, id uuid.UUID) (Prospect, error) {
	p, err := scanProspect(r.pool.QueryRow(ctx, `
		SELECT `+prospectColumns+`
		FROM prospects
		WHERE id = $1 AND distributor_id = $2`, id, distributorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Prospect{}, apperr.NotFound(prospectNotFoundMessage)
		}
		return Prospect{}, apperr.StorageFailure("get prospect", err)
	}
	return p, nil
}

// UpdateState changes the state only if it still equals from.
func (r *Repo) UpdateState(ctx context.Context, distributorID, id uuid.UUID, from, to string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE prospects
		SET state = $4
		WHERE id = $1 AND distributor_id = $2 AND state = $3`,
		id, distributorID, from, to,
	)
	if err != nil {
		return false, apperr.StorageFailure("update prospect state", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Touch refreshes the last interaction of a prospect.
func (r *Repo) Touch(ctx context.Context, distributorID, id uuid.UUID, at time.Time) (Prospect, error) {
	p, err := scanProspect(r.pool.QueryRow(ctx, `
		UPDATE prospects
		SET last_interaction_at = GREATEST(last_interaction_at, $3)
		WHERE id = $1 AND distributor_id = $2
		RETURNING `+prospectColumns, id, distributorID, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Prospect{}, apperr.NotFound(prospectNotFoundMessage)
		}
		return Prospect{}, apperr.StorageFailure("touch prospect", err)
	}
	return p, nil
}

// ListByDistributor returns a distributor's prospects, most recent interaction first.
func (r *Repo) ListByDistributor(ctx context.Context, distributorID uuid.UUID) ([]Prospect, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+prospectColumns+`
		FROM prospects
		WHERE distributor_id = $1
		ORDER BY last_interaction_at DESC, id ASC`, distributorID)
	if err != nil {
		return nil, apperr.StorageFailure("list prospects", err)
	}
	defer rows.Close()
	return scanProspects(rows, "list prospects")
}

// ListAll returns every prospect for analytics snapshots.
func (r *Repo) ListAll(ctx context.Context) ([]Prospect, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+prospectColumns+` FROM prospects ORDER BY distributor_id, id`)
	if err != nil {
		return nil, apperr.StorageFailure("list all prospects", err)
	}
	defer rows.Close()
	return scanProspects(rows, "list all prospects")
}

// Owns reports whether the prospect belongs to the distributor.
func (r *Repo) Owns(ctx context.Context, distributorID, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM prospects WHERE id = $1 AND distributor_id = $2)`,
		id, distributorID,
	).Scan(&exists)
	if err != nil {
		return false, apperr.StorageFailure("check prospect owner", err)
	}
	return exists, nil
}

func scanProspect(row pgx.Row) (Prospect, error) {
	var p Prospect
	err := row.Scan(&p.ID, &p.DistributorID, &p.Phone, &p.Name, &p.State, &p.LastInteractionAt, &p.CreatedAt)
	return p, err
}

func scanProspects(rows pgx.Rows, op string) ([]Prospect, error) {
	var items []Prospect
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, apperr.StorageFailure(op, err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StorageFailure(op, err)
	}
	return items, nil
}
