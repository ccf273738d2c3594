package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// GetSetting reads one runtime setting. Provider selection and API keys go
// through here on every operation so admin changes take effect without a
// restart.
func (d *DB) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := d.Pool.QueryRow(ctx, `
		SELECT value FROM settings WHERE key = $1
	`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrSettingNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting upserts one runtime setting.
func (d *DB) SetSetting(ctx context.Context, key, value string) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	return err
}
