package db

import (
	"context"
	"time"
)

// IncrementIPLimit atomically increments the per-IP lookup counter and
// returns the updated count. The increment and the window reset happen in a
// single upsert so concurrent requests from one IP cannot race: when the
// previous request is older than the window, the count restarts at 1.
func (d *DB) IncrementIPLimit(ctx context.Context, ip string, window time.Duration) (int, error) {
	var count int
	err := d.Pool.QueryRow(ctx, `
		INSERT INTO ip_limits (ip, count, last_request_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (ip) DO UPDATE SET
			count = CASE
				WHEN ip_limits.last_request_at < NOW() - $2::interval THEN 1
				ELSE ip_limits.count + 1
			END,
			last_request_at = NOW()
		RETURNING count
	`, ip, window).Scan(&count)
	return count, err
}
