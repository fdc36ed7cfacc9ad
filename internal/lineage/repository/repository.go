package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"koppara_backend/internal/lineage/domain"
	"koppara_backend/platform/apperr"
)

const (
	distributorNotFoundMessage = "distributor not found"
	nodeColumns                = "id, name, tier, referral_code, sponsor_id, is_organic_lead"

	// lineageLockKey is the pg_advisory_xact_lock key shared by every
	// sponsor mutation.
	lineageLockKey int64 = 0x6c696e65616765
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo implements Store with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new lineage repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Store.
var _ Store = (*Repo)(nil)

// WithinTx runs fn in a serializable transaction.
func (r *Repo) WithinTx(ctx context.Context, fn func(tx MutationTx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return apperr.StorageFailure("begin lineage transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&mutationTx{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.StorageFailure("commit lineage transaction", err)
	}
	return nil
}

// GetNode retrieves a distributor by ID.
func (r *Repo) GetNode(ctx context.Context, id uuid.UUID) (Node, error) {
	return getNode(ctx, r.pool, id, "")
}

// CountNodes returns the number of distributors.
func (r *Repo) CountNodes(ctx context.Context) (int, error) {
	return countNodes(ctx, r.pool)
}

// ListChildren returns the distributors directly sponsored by id.
func (r *Repo) ListChildren(ctx context.Context, id uuid.UUID) ([]Node, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+nodeColumns+`
		FROM distributors
		WHERE sponsor_id = $1
		ORDER BY created_at ASC, id ASC`, id)
	if err != nil {
		return nil, apperr.StorageFailure("list children", err)
	}
	defer rows.Close()

	var items []Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, apperr.StorageFailure("scan child", err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StorageFailure("list children", err)
	}
	return items, nil
}

// ListEdges returns every distributor with its sponsor pointer.
func (r *Repo) ListEdges(ctx context.Context) ([]domain.Edge, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, sponsor_id FROM distributors ORDER BY id ASC`)
	if err != nil {
		return nil, apperr.StorageFailure("list edges", err)
	}
	defer rows.Close()

	var edges []domain.Edge
	for rows.Next() {
		var e domain.Edge
		if err := rows.Scan(&e.ID, &e.SponsorID); err != nil {
			return nil, apperr.StorageFailure("scan edge", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StorageFailure("list edges", err)
	}
	return edges, nil
}

// ListAudit returns a page of audit entries, newest first, and the total count.
func (r *Repo) ListAudit(ctx context.Context, filter AuditFilter) ([]AuditEntry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM audit_log_lineage
		WHERE ($1::uuid IS NULL OR distributor_id = $1)`, filter.DistributorID,
	).Scan(&total); err != nil {
		return nil, 0, apperr.StorageFailure("count audit entries", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, actor, distributor_id, old_sponsor_id, new_sponsor_id, reason, created_at
		FROM audit_log_lineage
		WHERE ($1::uuid IS NULL OR distributor_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, filter.DistributorID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, apperr.StorageFailure("list audit entries", err)
	}
	defer rows.Close()

	var items []AuditEntry
	for rows.Next() {
		e, err := scanAudit(rows)
		if err != nil {
			return nil, 0, apperr.StorageFailure("scan audit entry", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.StorageFailure("list audit entries", err)
	}
	return items, total, nil
}

type mutationTx struct {
	q querier
}

func (t *mutationTx) LockGraph(ctx context.Context) error {
	if _, err := t.q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, lineageLockKey); err != nil {
		return apperr.StorageFailure("lock lineage", err)
	}
	return nil
}

func (t *mutationTx) LockNode(ctx context.Context, id uuid.UUID) (Node, error) {
	return getNode(ctx, t.q, id, " FOR UPDATE")
}

func (t *mutationTx) GetNode(ctx context.Context, id uuid.UUID) (Node, error) {
	return getNode(ctx, t.q, id, "")
}

func (t *mutationTx) SponsorOf(ctx context.Context, id uuid.UUID) (*uuid.UUID, bool, error) {
	var sponsor *uuid.UUID
	err := t.q.QueryRow(ctx, `SELECT sponsor_id FROM distributors WHERE id = $1`, id).Scan(&sponsor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, apperr.StorageFailure("read sponsor", err)
	}
	return sponsor, true, nil
}

func (t *mutationTx) CountNodes(ctx context.Context) (int, error) {
	return countNodes(ctx, t.q)
}

func (t *mutationTx) SetSponsor(ctx context.Context, id uuid.UUID, sponsorID *uuid.UUID) error {
	tag, err := t.q.Exec(ctx, `
		UPDATE distributors
		SET sponsor_id = $2, is_organic_lead = false
		WHERE id = $1`, id, sponsorID)
	if err != nil {
		return apperr.StorageFailure("update sponsor", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(distributorNotFoundMessage)
	}
	return nil
}

func (t *mutationTx) InsertAudit(ctx context.Context, params InsertAuditParams) (AuditEntry, error) {
	row := t.q.QueryRow(ctx, `
		INSERT INTO audit_log_lineage (actor, distributor_id, old_sponsor_id, new_sponsor_id, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, actor, distributor_id, old_sponsor_id, new_sponsor_id, reason, created_at`,
		params.Actor, params.DistributorID, params.PreviousSponsorID, params.NewSponsorID, params.Reason,
	)
	e, err := scanAudit(row)
	if err != nil {
		return AuditEntry{}, apperr.StorageFailure("insert audit entry", err)
	}
	return e, nil
}

func getNode(ctx context.Context, q querier, id uuid.UUID, suffix string) (Node, error) {
	n, err := scanNode(q.QueryRow(ctx, `SELECT `+nodeColumns+` FROM distributors WHERE id = $1`+suffix, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Node{}, apperr.NotFound(distributorNotFoundMessage)
		}
		return Node{}, apperr.StorageFailure("get distributor node", err)
	}
	return n, nil
}

func countNodes(ctx context.Context, q querier) (int, error) {
	var count int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM distributors`).Scan(&count); err != nil {
		return 0, apperr.StorageFailure("count distributors", err)
	}
	return count, nil
}

func scanNode(row pgx.Row) (Node, error) {
	var n Node
	err := row.Scan(&n.ID, &n.Name, &n.Tier, &n.ReferralCode, &n.SponsorID, &n.IsOrganicLead)
	return n, err
}

func scanAudit(row pgx.Row) (AuditEntry, error) {
	var e AuditEntry
	err := row.Scan(&e.ID, &e.Actor, &e.DistributorID, &e.PreviousSponsorID, &e.NewSponsorID, &e.Reason, &e.CreatedAt)
	return e, err
}
