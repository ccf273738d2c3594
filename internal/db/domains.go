package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"serptrack/internal/models"
)

// CreateDomain inserts a new tracked domain. The URL string is immutable
// afterwards; there is deliberately no update for it.
func (d *DB) CreateDomain(ctx context.Context, domain *models.Domain) error {
	err := d.Pool.QueryRow(ctx, `
		INSERT INTO domains (user_id, url)
		VALUES ($1, $2)
		RETURNING id, is_active, created_at
	`, domain.UserID, domain.URL).Scan(&domain.ID, &domain.IsActive, &domain.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateDomain
	}
	return err
}

// GetDomainByID loads one domain.
func (d *DB) GetDomainByID(ctx context.Context, id uuid.UUID) (*models.Domain, error) {
	var domain models.Domain
	err := d.Pool.QueryRow(ctx, `
		SELECT id, user_id, url, is_active, created_at FROM domains WHERE id = $1
	`, id).Scan(&domain.ID, &domain.UserID, &domain.URL, &domain.IsActive, &domain.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDomainNotFound
	}
	if err != nil {
		return nil, err
	}
	return &domain, nil
}

// ListDomainsByUser returns all domains owned by a user, newest first.
func (d *DB) ListDomainsByUser(ctx context.Context, userID uuid.UUID) ([]models.Domain, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, user_id, url, is_active, created_at
		FROM domains
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var domains []models.Domain
	for rows.Next() {
		var domain models.Domain
		if err := rows.Scan(&domain.ID, &domain.UserID, &domain.URL, &domain.IsActive, &domain.CreatedAt); err != nil {
			return nil, err
		}
		domains = append(domains, domain)
	}
	return domains, rows.Err()
}

// SetDomainActive toggles the active flag; inactive domains are excluded
// from scheduled checks together with all their keywords.
func (d *DB) SetDomainActive(ctx context.Context, id, userID uuid.UUID, active bool) error {
	tag, err := d.Pool.Exec(ctx, `
		UPDATE domains SET is_active = $3 WHERE id = $1 AND user_id = $2
	`, id, userID, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDomainNotFound
	}
	return nil
}

// DeleteDomain removes a domain; keywords and their history cascade.
func (d *DB) DeleteDomain(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `
		DELETE FROM domains WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDomainNotFound
	}
	return nil
}
