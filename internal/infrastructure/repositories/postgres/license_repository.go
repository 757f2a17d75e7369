package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
)

const licenseColumns = `id, code, duration_minutes, max_listeners, is_active, activated_at, revoked_at, created_at`

type LicenseRepository struct {
	db *pgxpool.Pool
}

func NewLicenseRepository(db *pgxpool.Pool) ports.LicenseRepository {
	return &LicenseRepository{db: db}
}

func (r *LicenseRepository) Create(ctx context.Context, lic *domain.License) error {
	query := `
		INSERT INTO licenses (id, code, duration_minutes, max_listeners, is_active, activated_at, revoked_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, query,
		lic.ID, lic.Code, lic.DurationMinutes, lic.MaxListeners,
		lic.Active, lic.ActivatedAt, lic.RevokedAt, lic.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateLicense
		}
		return fmt.Errorf("insert license: %w", err)
	}
	return nil
}

func (r *LicenseRepository) GetByID(ctx context.Context, id domain.LicenseID) (*domain.License, error) {
	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *LicenseRepository) GetByCode(ctx context.Context, code string) (*domain.License, error) {
	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE code = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, code))
}

func (r *LicenseRepository) Update(ctx context.Context, lic *domain.License) error {
	query := `
		UPDATE licenses
		SET duration_minutes = $2, max_listeners = $3, is_active = $4,
		    activated_at = $5, revoked_at = $6
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		lic.ID, lic.DurationMinutes, lic.MaxListeners,
		lic.Active, lic.ActivatedAt, lic.RevokedAt)
	if err != nil {
		return fmt.Errorf("update license: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLicenseNotFound
	}
	return nil
}

func (r *LicenseRepository) List(ctx context.Context, filter domain.LicenseFilter) ([]*domain.License, int, error) {
	where := `($1 = '' OR code ILIKE '%' || $1 || '%')
		AND ($2::boolean IS NULL OR is_active = $2)
		AND ($3::boolean IS NULL OR (revoked_at IS NOT NULL) = $3)`

	var total int
	countQuery := `SELECT count(*) FROM licenses WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, filter.Query, filter.Active, filter.Revoked).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count licenses: %w", err)
	}

	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE ` + where + `
		ORDER BY created_at DESC LIMIT $4 OFFSET $5`
	rows, err := r.db.Query(ctx, query, filter.Query, filter.Active, filter.Revoked, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list licenses: %w", err)
	}
	defer rows.Close()

	var licenses []*domain.License
	for rows.Next() {
		var lic domain.License
		if err := rows.Scan(&lic.ID, &lic.Code, &lic.DurationMinutes, &lic.MaxListeners,
			&lic.Active, &lic.ActivatedAt, &lic.RevokedAt, &lic.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan license: %w", err)
		}
		licenses = append(licenses, &lic)
	}
	return licenses, total, rows.Err()
}

func (r *LicenseRepository) scanOne(row pgx.Row) (*domain.License, error) {
	var lic domain.License
	err := row.Scan(&lic.ID, &lic.Code, &lic.DurationMinutes, &lic.MaxListeners,
		&lic.Active, &lic.ActivatedAt, &lic.RevokedAt, &lic.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLicenseNotFound
		}
		return nil, fmt.Errorf("scan license: %w", err)
	}
	return &lic, nil
}
