package store_test

import (
	"testing"

	"github.com/prospectr/prospectr-go/internal/models"
	"github.com/prospectr/prospectr-go/internal/store"
	"github.com/prospectr/prospectr-go/internal/testutil"
)

func createTestJob(t *testing.T, s *store.Store) int64 {
	t.Helper()
	user, err := s.CreateUser("itemuser", "hash", "user")
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	job, err := s.CreateJob(user.ID, "mockprofile", "leads.xlsx", "/tmp/leads.xlsx", 0)
	if err != nil {
		t.Fatalf("Failed to create test job: %v", err)
	}
	return job.ID
}

func TestCreateItemsPreservesOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	jobID := createTestJob(t, s)

	urls := []string{
		"https://example.com/in/alice",
		"https://example.com/in/bob",
		"https://example.com/in/carol",
	}
	if err := s.CreateItems(jobID, urls); err != nil {
		t.Fatalf("CreateItems failed: %v", err)
	}

	items, err := s.ListItemsByJob(jobID)
	if err != nil {
		t.Fatalf("ListItemsByJob failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	for i, item := range items {
		if item.SourceURL != urls[i] {
			t.Errorf("Expected item %d to be '%s', got '%s'", i, urls[i], item.SourceURL)
		}
		if item.Position != i {
			t.Errorf("Expected position %d, got %d", i, item.Position)
		}
		if item.Status != models.ItemStatusPending {
			t.Errorf("Expected status 'pending', got '%s'", item.Status)
		}
	}
}

func TestListUnprocessedItems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	jobID := createTestJob(t, s)
	s.CreateItems(jobID, []string{
		"https://example.com/in/alice",
		"https://example.com/in/bob",
		"https://example.com/in/carol",
	})

	items, _ := s.ListItemsByJob(jobID)
	s.MarkItemSuccess(items[0].ID, &models.ProfileData{FirstName: "Alice"})
	s.MarkItemFailed(items[1].ID, "not_found", "profile not found", 0)

	unprocessed, err := s.ListUnprocessedItems(jobID)
	if err != nil {
		t.Fatalf("ListUnprocessedItems failed: %v", err)
	}
	if len(unprocessed) != 1 {
		t.Fatalf("Expected 1 unprocessed item, got %d", len(unprocessed))
	}
	if unprocessed[0].SourceURL != "https://example.com/in/carol" {
		t.Errorf("Expected carol to be unprocessed, got '%s'", unprocessed[0].SourceURL)
	}
}

func TestMarkItemSuccessStoresPayload(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	jobID := createTestJob(t, s)
	s.CreateItems(jobID, []string{"https://example.com/in/alice"})
	items, _ := s.ListItemsByJob(jobID)

	profile := &models.ProfileData{
		FirstName: "Alice",
		LastName:  "Smith",
		Headline:  "Engineer",
		Skills:    []string{"go", "sql"},
	}
	if err := s.MarkItemSuccess(items[0].ID, profile); err != nil {
		t.Fatalf("MarkItemSuccess failed: %v", err)
	}

	items, _ = s.ListItemsByJob(jobID)
	if items[0].Status != models.ItemStatusSuccess {
		t.Errorf("Expected status 'success', got '%s'", items[0].Status)
	}
	if items[0].Profile == nil {
		t.Fatal("Expected stored profile payload")
	}
	if items[0].Profile.FirstName != "Alice" || len(items[0].Profile.Skills) != 2 {
		t.Errorf("Stored profile does not match: %+v", items[0].Profile)
	}
}

func TestMarkItemRetryingAndFailed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	jobID := createTestJob(t, s)
	s.CreateItems(jobID, []string{"https://example.com/in/alice"})
	items, _ := s.ListItemsByJob(jobID)
	itemID := items[0].ID

	if err := s.MarkItemRetrying(itemID, 1, "rate_limit", "rate limited"); err != nil {
		t.Fatalf("MarkItemRetrying failed: %v", err)
	}
	items, _ = s.ListItemsByJob(jobID)
	if items[0].Status != models.ItemStatusRetrying || items[0].RetryCount != 1 {
		t.Errorf("Expected retrying/1, got %s/%d", items[0].Status, items[0].RetryCount)
	}

	if err := s.MarkItemFailed(itemID, "rate_limit", "rate limited", 2); err != nil {
		t.Fatalf("MarkItemFailed failed: %v", err)
	}
	items, _ = s.ListItemsByJob(jobID)
	if items[0].Status != models.ItemStatusFailed {
		t.Errorf("Expected status 'failed', got '%s'", items[0].Status)
	}
	if items[0].ErrorKind != "rate_limit" {
		t.Errorf("Expected error kind 'rate_limit', got '%s'", items[0].ErrorKind)
	}
	if items[0].RetryCount != 2 {
		t.Errorf("Expected retry count 2, got %d", items[0].RetryCount)
	}
}

func TestResetInFlightItems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	jobID := createTestJob(t, s)
	s.CreateItems(jobID, []string{
		"https://example.com/in/alice",
		"https://example.com/in/bob",
		"https://example.com/in/carol",
	})
	items, _ := s.ListItemsByJob(jobID)
	s.MarkItemProcessing(items[0].ID)
	s.MarkItemRetrying(items[1].ID, 1, "rate_limit", "rate limited")
	s.MarkItemSuccess(items[2].ID, &models.ProfileData{FirstName: "Carol"})

	if err := s.ResetInFlightItems(); err != nil {
		t.Fatalf("ResetInFlightItems failed: %v", err)
	}

	items, _ = s.ListItemsByJob(jobID)
	if items[0].Status != models.ItemStatusPending || items[1].Status != models.ItemStatusPending {
		t.Errorf("Expected in-flight items reset to 'pending', got '%s' and '%s'", items[0].Status, items[1].Status)
	}
	if items[2].Status != models.ItemStatusSuccess {
		t.Errorf("Expected terminal item untouched, got '%s'", items[2].Status)
	}
}

func TestCountItemsByJob(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	jobID := createTestJob(t, s)

	count, err := s.CountItemsByJob(jobID)
	if err != nil {
		t.Fatalf("CountItemsByJob failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 items, got %d", count)
	}

	s.CreateItems(jobID, []string{"https://example.com/in/alice", "https://example.com/in/bob"})
	count, _ = s.CountItemsByJob(jobID)
	if count != 2 {
		t.Errorf("Expected 2 items, got %d", count)
	}
}
