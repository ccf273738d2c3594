package db

import (
	"context"
	"testing"
	"time"
)

func TestCreateAndGetLatestRanking(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, db)
	domain := createTestDomain(t, db, user, "example.com")
	kw := createTestKeyword(t, db, user, domain, "latest ranking")

	first := 12
	if _, err := db.CreateRanking(ctx, kw.ID, &first); err != nil {
		t.Fatalf("CreateRanking() error = %v", err)
	}
	second := 7
	created, err := db.CreateRanking(ctx, kw.ID, &second)
	if err != nil {
		t.Fatalf("CreateRanking() error = %v", err)
	}

	latest, err := db.GetLatestRanking(ctx, kw.ID)
	if err != nil {
		t.Fatalf("GetLatestRanking() error = %v", err)
	}
	if latest.ID != created.ID {
		t.Errorf("GetLatestRanking() id = %s, want most recent %s", latest.ID, created.ID)
	}
	if latest.Position == nil || *latest.Position != 7 {
		t.Errorf("GetLatestRanking() position = %v, want 7", latest.Position)
	}
}

func TestGetLatestRanking_NullPosition(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, db)
	domain := createTestDomain(t, db, user, "example.com")
	kw := createTestKeyword(t, db, user, domain, "never ranked")

	// A "not found" check still appends a row, with a NULL position.
	if _, err := db.CreateRanking(ctx, kw.ID, nil); err != nil {
		t.Fatalf("CreateRanking() error = %v", err)
	}

	latest, err := db.GetLatestRanking(ctx, kw.ID)
	if err != nil {
		t.Fatalf("GetLatestRanking() error = %v", err)
	}
	if latest.Position != nil {
		t.Errorf("GetLatestRanking() position = %v, want nil", *latest.Position)
	}
	if latest.Found() {
		t.Error("Found() = true for a nil position")
	}
}

func TestGetLatestRanking_NoHistory(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, db)
	domain := createTestDomain(t, db, user, "example.com")
	kw := createTestKeyword(t, db, user, domain, "unchecked")

	if _, err := db.GetLatestRanking(ctx, kw.ID); err != ErrRankingNotFound {
		t.Errorf("GetLatestRanking() error = %v, want ErrRankingNotFound", err)
	}
}

func TestGetRankingHistory(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, db)
	domain := createTestDomain(t, db, user, "example.com")
	kw := createTestKeyword(t, db, user, domain, "history keyword")

	positions := []int{20, 15, 9}
	for i := range positions {
		if _, err := db.CreateRanking(ctx, kw.ID, &positions[i]); err != nil {
			t.Fatalf("CreateRanking() error = %v", err)
		}
	}

	history, err := db.GetRankingHistory(ctx, kw.ID, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("GetRankingHistory() error = %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("GetRankingHistory() returned %d rows, want 3", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].CheckedAt.Before(history[i-1].CheckedAt) {
			t.Error("GetRankingHistory() rows not in chronological order")
		}
	}

	// A cutoff in the future excludes everything.
	empty, err := db.GetRankingHistory(ctx, kw.ID, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("GetRankingHistory() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("GetRankingHistory() with future cutoff returned %d rows", len(empty))
	}
}
