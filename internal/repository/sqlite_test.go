package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mr1hm/go-raid-alerts/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	return db
}

func testAlert(id, primary string, createdAt time.Time) *models.Alert {
	return &models.Alert{
		ID:          id,
		SourceID:    1641260594,
		SourceTitle: "monitor",
		Primary:     primary,
		Threats:     []string{primary},
		Proximity:   "city",
		Text:        "‼️🚀 Балістика · 🟠 МІСТО",
		CreatedAt:   createdAt,
	}
}

func TestSQLiteDB_AddAndGetAlert(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	alert := testAlert("a1", "Ballistic", now)
	alert.Threats = []string{"Ballistic", "Shahed"}
	alert.Urgent = true
	alert.Nationwide = true

	// Add
	if err := db.AddAlert(ctx, alert); err != nil {
		t.Fatalf("AddAlert failed: %v", err)
	}

	// Get
	got, err := db.GetAlert(ctx, "a1")
	if err != nil {
		t.Fatalf("GetAlert failed: %v", err)
	}
	if got.Text != alert.Text {
		t.Errorf("expected text %q, got %q", alert.Text, got.Text)
	}
	if len(got.Threats) != 2 || got.Threats[1] != "Shahed" {
		t.Errorf("expected threats [Ballistic Shahed], got %v", got.Threats)
	}
	if !got.Urgent || !got.Nationwide || got.Status {
		t.Errorf("flags not round-tripped: %+v", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("expected created_at %v, got %v", now, got.CreatedAt)
	}
}

func TestSQLiteDB_GetAlert_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.GetAlert(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteDB_AddAlert_DuplicateID(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	if err := db.AddAlert(ctx, testAlert("dup", "Shahed", time.Now())); err != nil {
		t.Fatalf("AddAlert failed: %v", err)
	}
	if err := db.AddAlert(ctx, testAlert("dup", "Shahed", time.Now())); err == nil {
		t.Error("expected error for duplicate id")
	}
}

func TestSQLiteDB_ListAlerts_WithFilters(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	alerts := []*models.Alert{
		testAlert("b1", "Ballistic", now.Add(-3*time.Hour)),
		testAlert("b2", "Ballistic", now.Add(-time.Minute)),
		testAlert("s1", "Shahed", now.Add(-2*time.Minute)),
		testAlert("s2", "Shahed", now),
	}
	alerts[1].Urgent = true
	for _, a := range alerts {
		if err := db.AddAlert(ctx, a); err != nil {
			t.Fatalf("AddAlert failed: %v", err)
		}
	}

	// Newest first
	results, err := db.ListAlerts(ctx, Filter{})
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	if len(results) != 4 || results[0].ID != "s2" || results[3].ID != "b1" {
		t.Errorf("expected 4 alerts newest first, got %d", len(results))
	}

	// Primary filter
	ballistic := "Ballistic"
	results, err = db.ListAlerts(ctx, Filter{Primary: &ballistic})
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 ballistic alerts, got %d", len(results))
	}

	// Since filter
	since := now.Add(-time.Hour)
	results, err = db.ListAlerts(ctx, Filter{Since: &since})
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 alerts in the last hour, got %d", len(results))
	}

	// Urgent filter
	urgent := true
	results, err = db.ListAlerts(ctx, Filter{Urgent: &urgent})
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "b2" {
		t.Errorf("expected only b2 to be urgent, got %v", results)
	}

	// Limit and offset
	results, err = db.ListAlerts(ctx, Filter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	if len(results) != 2 || results[0].ID != "b2" {
		t.Errorf("expected page [b2 s1], got %v", results)
	}
}

func TestSQLiteDB_PurgeBefore(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	db.AddAlert(ctx, testAlert("old", "Shahed", now.Add(-96*time.Hour)))
	db.AddAlert(ctx, testAlert("older", "Shahed", now.Add(-100*time.Hour)))
	db.AddAlert(ctx, testAlert("fresh", "Shahed", now.Add(-time.Hour)))

	n, err := db.PurgeBefore(ctx, now.Add(-72*time.Hour))
	if err != nil {
		t.Fatalf("PurgeBefore failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 purged, got %d", n)
	}

	results, _ := db.ListAlerts(ctx, Filter{})
	if len(results) != 1 || results[0].ID != "fresh" {
		t.Errorf("expected only fresh alert to remain, got %v", results)
	}
}

func TestSQLiteDB_Subscribers(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	subs, err := db.ListSubscribers(ctx)
	if err != nil {
		t.Fatalf("ListSubscribers failed: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("expected no subscribers, got %d", len(subs))
	}

	// Adding twice is a no-op
	for _, id := range []int64{100, 200, 100} {
		if err := db.AddSubscriber(ctx, id); err != nil {
			t.Fatalf("AddSubscriber(%d) failed: %v", id, err)
		}
	}
	subs, _ = db.ListSubscribers(ctx)
	if len(subs) != 2 {
		t.Errorf("expected 2 subscribers, got %d", len(subs))
	}

	removed, err := db.RemoveSubscriber(ctx, 100)
	if err != nil {
		t.Fatalf("RemoveSubscriber failed: %v", err)
	}
	if !removed {
		t.Error("expected subscriber 100 to be removed")
	}

	removed, err = db.RemoveSubscriber(ctx, 100)
	if err != nil {
		t.Fatalf("RemoveSubscriber failed: %v", err)
	}
	if removed {
		t.Error("expected second removal to report false")
	}

	subs, _ = db.ListSubscribers(ctx)
	if len(subs) != 1 || subs[0].ChatID != 200 {
		t.Errorf("expected only subscriber 200, got %v", subs)
	}
}

func TestSQLiteDB_Persistence(t *testing.T) {
	path := t.TempDir() + "/data/raid-alerts.db"
	ctx := context.Background()

	db, err := NewSQLiteDB(path)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	db.AddSubscriber(ctx, 42)
	db.Close()

	db, err = NewSQLiteDB(path)
	if err != nil {
		t.Fatalf("failed to reopen db: %v", err)
	}
	defer db.Close()

	subs, _ := db.ListSubscribers(ctx)
	if len(subs) != 1 || subs[0].ChatID != 42 {
		t.Errorf("expected subscriber to survive reopen, got %v", subs)
	}
}
