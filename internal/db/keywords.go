package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"serptrack/internal/models"
)

// keywordColumns is the standard column list for keyword queries.
const keywordColumns = `id, domain_id, user_id, text, location, device, is_active, tags, created_at, updated_at`

// scanKeyword scans a row into a Keyword struct.
func scanKeyword(row pgx.Row) (*models.Keyword, error) {
	var kw models.Keyword
	err := row.Scan(
		&kw.ID,
		&kw.DomainID,
		&kw.UserID,
		&kw.Text,
		&kw.Location,
		&kw.Device,
		&kw.IsActive,
		&kw.Tags,
		&kw.CreatedAt,
		&kw.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeywordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &kw, nil
}

// CreateKeyword inserts a new tracked keyword.
func (d *DB) CreateKeyword(ctx context.Context, kw *models.Keyword) error {
	if kw.Tags == nil {
		kw.Tags = []string{}
	}
	err := d.Pool.QueryRow(ctx, `
		INSERT INTO keywords (domain_id, user_id, text, location, device, tags)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_active, created_at, updated_at
	`, kw.DomainID, kw.UserID, kw.Text, kw.Location, kw.Device, kw.Tags).
		Scan(&kw.ID, &kw.IsActive, &kw.CreatedAt, &kw.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateKeyword
	}
	return err
}

// GetKeywordByID loads one keyword.
func (d *DB) GetKeywordByID(ctx context.Context, id uuid.UUID) (*models.Keyword, error) {
	return scanKeyword(d.Pool.QueryRow(ctx, `
		SELECT `+keywordColumns+` FROM keywords WHERE id = $1
	`, id))
}

// ListKeywordsByUser returns all keywords owned by a user, newest first.
func (d *DB) ListKeywordsByUser(ctx context.Context, userID uuid.UUID) ([]models.Keyword, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+keywordColumns+`
		FROM keywords
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return scanKeywords(rows)
}

// UpdateKeyword edits the mutable fields of a keyword.
func (d *DB) UpdateKeyword(ctx context.Context, kw *models.Keyword) error {
	if kw.Tags == nil {
		kw.Tags = []string{}
	}
	row := d.Pool.QueryRow(ctx, `
		UPDATE keywords
		SET text = $3, location = $4, device = $5, is_active = $6, tags = $7, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`, kw.ID, kw.UserID, kw.Text, kw.Location, kw.Device, kw.IsActive, kw.Tags)

	err := row.Scan(&kw.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrKeywordNotFound
	}
	return err
}

// DeleteKeyword removes a keyword; its ranking history and notifications
// cascade.
func (d *DB) DeleteKeyword(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `
		DELETE FROM keywords WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrKeywordNotFound
	}
	return nil
}

// GetActiveKeywordsWithDomain is the scheduler's batch source: every keyword
// whose keyword and domain are both active, paired with its domain.
func (d *DB) GetActiveKeywordsWithDomain(ctx context.Context) ([]models.KeywordWithDomain, error) {
	return d.activeKeywordsWithDomain(ctx, nil)
}

// GetActiveKeywordsWithDomainByUser scopes the batch source to one user for
// manual refresh runs.
func (d *DB) GetActiveKeywordsWithDomainByUser(ctx context.Context, userID uuid.UUID) ([]models.KeywordWithDomain, error) {
	return d.activeKeywordsWithDomain(ctx, &userID)
}

func (d *DB) activeKeywordsWithDomain(ctx context.Context, userID *uuid.UUID) ([]models.KeywordWithDomain, error) {
	query := `
		SELECT k.id, k.domain_id, k.user_id, k.text, k.location, k.device, k.is_active, k.tags, k.created_at, k.updated_at,
		       d.id, d.user_id, d.url, d.is_active, d.created_at
		FROM keywords k
		JOIN domains d ON d.id = k.domain_id
		WHERE k.is_active AND d.is_active`
	args := []any{}
	if userID != nil {
		query += ` AND k.user_id = $1`
		args = append(args, *userID)
	}
	query += ` ORDER BY k.created_at`

	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []models.KeywordWithDomain
	for rows.Next() {
		var pair models.KeywordWithDomain
		if err := rows.Scan(
			&pair.Keyword.ID,
			&pair.Keyword.DomainID,
			&pair.Keyword.UserID,
			&pair.Keyword.Text,
			&pair.Keyword.Location,
			&pair.Keyword.Device,
			&pair.Keyword.IsActive,
			&pair.Keyword.Tags,
			&pair.Keyword.CreatedAt,
			&pair.Keyword.UpdatedAt,
			&pair.Domain.ID,
			&pair.Domain.UserID,
			&pair.Domain.URL,
			&pair.Domain.IsActive,
			&pair.Domain.CreatedAt,
		); err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}
	return pairs, rows.Err()
}

// scanKeywords scans multiple rows into a slice of Keywords.
func scanKeywords(rows pgx.Rows) ([]models.Keyword, error) {
	defer rows.Close()

	var keywords []models.Keyword
	for rows.Next() {
		var kw models.Keyword
		if err := rows.Scan(
			&kw.ID,
			&kw.DomainID,
			&kw.UserID,
			&kw.Text,
			&kw.Location,
			&kw.Device,
			&kw.IsActive,
			&kw.Tags,
			&kw.CreatedAt,
			&kw.UpdatedAt,
		); err != nil {
			return nil, err
		}
		keywords = append(keywords, kw)
	}
	return keywords, rows.Err()
}
