package store_test

import (
	"testing"
	"time"

	"github.com/prospectr/prospectr-go/internal/store"
	"github.com/prospectr/prospectr-go/internal/testutil"
)

func TestUpsertConnectedAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	user, _ := s.CreateUser("alice", "hash", "user")

	expiry := time.Now().Add(time.Hour)
	if err := s.UpsertConnectedAccount(user.ID, "talentlens", "token-1", "refresh-1", &expiry); err != nil {
		t.Fatalf("UpsertConnectedAccount failed: %v", err)
	}

	token, err := s.GetAccessToken(user.ID, "talentlens")
	if err != nil {
		t.Fatalf("GetAccessToken failed: %v", err)
	}
	if token != "token-1" {
		t.Errorf("Expected 'token-1', got '%s'", token)
	}

	// Upserting again replaces the credential instead of duplicating it.
	if err := s.UpsertConnectedAccount(user.ID, "talentlens", "token-2", "", nil); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}
	token, _ = s.GetAccessToken(user.ID, "talentlens")
	if token != "token-2" {
		t.Errorf("Expected 'token-2' after upsert, got '%s'", token)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM connected_accounts").Scan(&count)
	if count != 1 {
		t.Errorf("Expected 1 account row, got %d", count)
	}
}

func TestGetAccessTokenMissingAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	user, _ := s.CreateUser("alice", "hash", "user")

	token, err := s.GetAccessToken(user.ID, "talentlens")
	if err != nil {
		t.Fatalf("GetAccessToken failed: %v", err)
	}
	if token != "" {
		t.Errorf("Expected empty token for unconnected account, got '%s'", token)
	}
}

func TestListAndDeleteConnectedAccounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	user, _ := s.CreateUser("alice", "hash", "user")

	s.UpsertConnectedAccount(user.ID, "talentlens", "t1", "", nil)
	s.UpsertConnectedAccount(user.ID, "mockprofile", "t2", "", nil)

	accounts, err := s.ListConnectedAccounts(user.ID)
	if err != nil {
		t.Fatalf("ListConnectedAccounts failed: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("Expected 2 accounts, got %d", len(accounts))
	}

	if err := s.DeleteConnectedAccount(user.ID, "talentlens"); err != nil {
		t.Fatalf("DeleteConnectedAccount failed: %v", err)
	}
	accounts, _ = s.ListConnectedAccounts(user.ID)
	if len(accounts) != 1 || accounts[0].ProviderID != "mockprofile" {
		t.Errorf("Expected only mockprofile to remain, got %+v", accounts)
	}
}
