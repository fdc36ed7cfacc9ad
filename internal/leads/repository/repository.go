// Package repository stores the append-only lead history.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"koppara_backend/internal/leads/domain"
	"koppara_backend/platform/apperr"
)

const (
	opRecord  = "leads.repository.record"
	opList    = "leads.repository.list"
	opListAll = "leads.repository.list_all"

	prospectOwnerConstraint = "leads_prospect_owner_fkey"
	leadColumns             = "id, distributor_id, prospect_id, line_items, amount_cents, created_at"
)

// Lead is one shared quote.
type Lead struct {
	ID            uuid.UUID
	DistributorID uuid.UUID
	ProspectID    uuid.UUID
	LineItems     []domain.LineItem
	AmountCents   int64
	CreatedAt     time.Time
}

// RecordParams contains the fields of a new lead.
type RecordParams struct {
	DistributorID uuid.UUID
	ProspectID    uuid.UUID
	LineItems     []domain.LineItem
	AmountCents   int64
	At            time.Time
}

// Repository provides lead history storage.
type Repository interface {
	// Record appends a lead and refreshes the prospect's last interaction in
	// the same transaction.
	Record(ctx context.Context, params RecordParams) (Lead, error)
	ListByDistributor(ctx context.Context, distributorID uuid.UUID, limit, offset int) ([]Lead, int, error)
	ListAll(ctx context.Context) ([]Lead, error)
}

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Record inserts the lead. The composite foreign key on
// (prospect_id, distributor_id) rejects prospects owned by someone else.
func (r *Repo) Record(ctx context.Context, params RecordParams) (Lead, error) {
	itemsJSON, err := json.Marshal(params.LineItems)
	if err != nil {
		return Lead{}, apperr.Internal(fmt.Sprintf("encode line items: %v", err)).WithOp(opRecord)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Lead{}, apperr.StorageFailure(opRecord, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lead, err := scanLead(tx.QueryRow(ctx, `
		INSERT INTO leads (distributor_id, prospect_id, line_items, amount_cents, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+leadColumns,
		params.DistributorID, params.ProspectID, itemsJSON, params.AmountCents, params.At,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" && pgErr.ConstraintName == prospectOwnerConstraint {
			return Lead{}, domain.ForeignKeyViolation().WithOp(opRecord)
		}
		return Lead{}, apperr.StorageFailure(opRecord, err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE prospects
		SET last_interaction_at = GREATEST(last_interaction_at, $3)
		WHERE id = $1 AND distributor_id = $2`,
		params.ProspectID, params.DistributorID, params.At,
	); err != nil {
		return Lead{}, apperr.StorageFailure(opRecord, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Lead{}, apperr.StorageFailure(opRecord, err)
	}
	return lead, nil
}

// ListByDistributor returns a page of a distributor's leads, newest first.
func (r *Repo) ListByDistributor(ctx context.Context, distributorID uuid.UUID, limit, offset int) ([]Lead, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads WHERE distributor_id = $1`, distributorID).Scan(&total); err != nil {
		return nil, 0, apperr.StorageFailure(opList, err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE distributor_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, distributorID, limit, offset)
	if err != nil {
		return nil, 0, apperr.StorageFailure(opList, err)
	}
	defer rows.Close()

	items, err := scanLeads(rows, opList)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListAll returns every lead for analytics snapshots.
func (r *Repo) ListAll(ctx context.Context) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, apperr.StorageFailure(opListAll, err)
	}
	defer rows.Close()
	return scanLeads(rows, opListAll)
}

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	var itemsJSON []byte
	if err := row.Scan(&l.ID, &l.DistributorID, &l.ProspectID, &itemsJSON, &l.AmountCents, &l.CreatedAt); err != nil {
		return Lead{}, err
	}
	if err := json.Unmarshal(itemsJSON, &l.LineItems); err != nil {
		return Lead{}, fmt.Errorf("decode line items of lead %s: %w", l.ID, err)
	}
	return l, nil
}

func scanLeads(rows pgx.Rows, op string) ([]Lead, error) {
	var items []Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, apperr.StorageFailure(op, err)
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StorageFailure(op, err)
	}
	return items, nil
}
