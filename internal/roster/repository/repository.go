package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"koppara_backend/platform/apperr"
)

const (
	distributorNotFoundMessage = "distributor not found"
	referralCodeConstraint     = "distributors_referral_code_key"
	distributorColumns         = "id, name, email, phone, tier, referral_code, sponsor_id, is_organic_lead, created_at"
)

// ErrReferralCodeTaken is returned by Create when the generated code collides.
var ErrReferralCodeTaken = errors.New("referral code already issued")

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new roster repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a distributor by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Distributor, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+distributorColumns+` FROM distributors WHERE id = $1`, id)
	d, err := scanDistributor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Distributor{}, apperr.NotFound(distributorNotFoundMessage)
		}
		return Distributor{}, apperr.StorageFailure("get distributor by id", err)
	}
	return d, nil
}

// GetByReferralCode retrieves a distributor by referral code.
func (r *Repo) GetByReferralCode(ctx context.Context, code string) (Distributor, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+distributorColumns+` FROM distributors WHERE referral_code = $1`, code)
	d, err := scanDistributor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Distributor{}, apperr.NotFound("referral code not found")
		}
		return Distributor{}, apperr.StorageFailure("get distributor by referral code", err)
	}
	return d, nil
}

// List retrieves all distributors ordered by name.
func (r *Repo) List(ctx context.Context) ([]Distributor, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+distributorColumns+` FROM distributors ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, apperr.StorageFailure("list distributors", err)
	}
	defer rows.Close()

	return scanDistributors(rows, "list distributors")
}

// ListWithSponsor retrieves all distributors, newest first, joined with their sponsor.
func (r *Repo) ListWithSponsor(ctx context.Context) ([]DistributorWithSponsor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT d.id, d.name, d.email, d.phone, d.tier, d.referral_code, d.sponsor_id, d.is_organic_lead, d.created_at,
			s.id, s.name, s.referral_code
		FROM distributors d
		LEFT JOIN distributors s ON s.id = d.sponsor_id
		ORDER BY d.created_at DESC, d.id ASC`)
	if err != nil {
		return nil, apperr.StorageFailure("list distributors with sponsor", err)
	}
	defer rows.Close()

	var items []DistributorWithSponsor
	for rows.Next() {
		var item DistributorWithSponsor
		var sponsorID *uuid.UUID
		var sponsorName, sponsorCode *string
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Email, &item.Phone, &item.Tier, &item.ReferralCode,
			&item.SponsorID, &item.IsOrganicLead, &item.CreatedAt,
			&sponsorID, &sponsorName, &sponsorCode,
		); err != nil {
			return nil, apperr.StorageFailure("scan distributor with sponsor", err)
		}
		if sponsorID != nil {
			item.Sponsor = &SponsorSummary{ID: *sponsorID, Name: deref(sponsorName), ReferralCode: deref(sponsorCode)}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StorageFailure("list distributors with sponsor", err)
	}
	return items, nil
}

// ListTargeted retrieves the distributors a notification target resolves to.
func (r *Repo) ListTargeted(ctx context.Context, tier string, distributorID *uuid.UUID) ([]Distributor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+distributorColumns+`
		FROM distributors
		WHERE ($1 = 'all' OR tier = $1)
			AND ($2::uuid IS NULL OR id = $2)
		ORDER BY id ASC`, tier, distributorID)
	if err != nil {
		return nil, apperr.StorageFailure("list targeted distributors", err)
	}
	defer rows.Close()

	return scanDistributors(rows, "list targeted distributors")
}

// Create inserts a new root distributor. The sponsor edge is assigned
// separately through the lineage service.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Distributor, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO distributors (name, email, phone, tier, referral_code, sponsor_id, is_organic_lead)
		VALUES ($1, $2, $3, $4, $5, NULL, true)
		RETURNING `+distributorColumns,
		params.Name, params.Email, params.Phone, params.Tier, params.ReferralCode,
	)
	d, err := scanDistributor(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == referralCodeConstraint {
			return Distributor{}, ErrReferralCodeTaken
		}
		return Distributor{}, apperr.StorageFailure("create distributor", err)
	}
	return d, nil
}

// UpdateProfile changes the name and phone. Referral code and sponsor are
// never touched here.
func (r *Repo) UpdateProfile(ctx context.Context, id uuid.UUID, params UpdateProfileParams) (Distributor, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE distributors
		SET name = COALESCE($2, name),
			phone = COALESCE($3, phone)
		WHERE id = $1
		RETURNING `+distributorColumns,
		id, params.Name, params.Phone,
	)
	d, err := scanDistributor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Distributor{}, apperr.NotFound(distributorNotFoundMessage)
		}
		return Distributor{}, apperr.StorageFailure("update distributor profile", err)
	}
	return d, nil
}

// DeleteUnattached deletes the distributor only while it has no sponsor and
// no recruits.
func (r *Repo) DeleteUnattached(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM distributors d
		WHERE d.id = $1
			AND d.sponsor_id IS NULL
			AND NOT EXISTS (SELECT 1 FROM distributors c WHERE c.sponsor_id = d.id)`, id)
	if err != nil {
		return apperr.StorageFailure("delete unattached distributor", err)
	}
	return nil
}

func scanDistributor(row pgx.Row) (Distributor, error) {
	var d Distributor
	err := row.Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.Tier, &d.ReferralCode, &d.SponsorID, &d.IsOrganicLead, &d.CreatedAt)
	return d, err
}

func scanDistributors(rows pgx.Rows, op string) ([]Distributor, error) {
	var items []Distributor
	for rows.Next() {
		d, err := scanDistributor(rows)
		if err != nil {
			return nil, apperr.StorageFailure(op, err)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StorageFailure(op, err)
	}
	return items, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
