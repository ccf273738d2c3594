package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"serptrack/internal/models"
)

// CreateRanking appends one history row for a check execution. A nil
// position records "not found in the top 100" as a fact. History rows are
// never updated or deleted individually.
func (d *DB) CreateRanking(ctx context.Context, keywordID uuid.UUID, position *int) (*models.Ranking, error) {
	ranking := &models.Ranking{KeywordID: keywordID, Position: position}
	err := d.Pool.QueryRow(ctx, `
		INSERT INTO rankings (keyword_id, position)
		VALUES ($1, $2)
		RETURNING id, checked_at
	`, keywordID, position).Scan(&ranking.ID, &ranking.CheckedAt)
	if err != nil {
		return nil, err
	}
	return ranking, nil
}

// GetLatestRanking returns the most recent history row for a keyword.
func (d *DB) GetLatestRanking(ctx context.Context, keywordID uuid.UUID) (*models.Ranking, error) {
	var ranking models.Ranking
	err := d.Pool.QueryRow(ctx, `
		SELECT id, keyword_id, position, checked_at
		FROM rankings
		WHERE keyword_id = $1
		ORDER BY checked_at DESC, id DESC
		LIMIT 1
	`, keywordID).Scan(&ranking.ID, &ranking.KeywordID, &ranking.Position, &ranking.CheckedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRankingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ranking, nil
}

// GetRankingHistory returns a keyword's history since the given time,
// oldest first.
func (d *DB) GetRankingHistory(ctx context.Context, keywordID uuid.UUID, since time.Time) ([]models.Ranking, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, keyword_id, position, checked_at
		FROM rankings
		WHERE keyword_id = $1 AND checked_at >= $2
		ORDER BY checked_at
	`, keywordID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rankings []models.Ranking
	for rows.Next() {
		var ranking models.Ranking
		if err := rows.Scan(&ranking.ID, &ranking.KeywordID, &ranking.Position, &ranking.CheckedAt); err != nil {
			return nil, err
		}
		rankings = append(rankings, ranking)
	}
	return rankings, rows.Err()
}

// CountRankingsByKeyword returns the number of history rows for a keyword.
func (d *DB) CountRankingsByKeyword(ctx context.Context, keywordID uuid.UUID) (int, error) {
	var count int
	err := d.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM rankings WHERE keyword_id = $1
	`, keywordID).Scan(&count)
	return count, err
}
