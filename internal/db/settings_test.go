package db

import (
	"context"
	"testing"
)

func TestSettings(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	if _, err := db.GetSetting(ctx, "ranking_provider"); err != ErrSettingNotFound {
		t.Errorf("GetSetting() on empty table error = %v, want ErrSettingNotFound", err)
	}

	if err := db.SetSetting(ctx, "ranking_provider", "serpapi"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	value, err := db.GetSetting(ctx, "ranking_provider")
	if err != nil {
		t.Fatalf("GetSetting() error = %v", err)
	}
	if value != "serpapi" {
		t.Errorf("GetSetting() = %q, want %q", value, "serpapi")
	}

	// Upsert overwrites in place.
	if err := db.SetSetting(ctx, "ranking_provider", "scrapingrobot"); err != nil {
		t.Fatalf("SetSetting() overwrite error = %v", err)
	}
	value, err = db.GetSetting(ctx, "ranking_provider")
	if err != nil {
		t.Fatalf("GetSetting() error = %v", err)
	}
	if value != "scrapingrobot" {
		t.Errorf("GetSetting() after overwrite = %q, want %q", value, "scrapingrobot")
	}
}
