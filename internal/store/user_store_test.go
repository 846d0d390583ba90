package store_test

import (
	"testing"
	"time"

	"github.com/prospectr/prospectr-go/internal/store"
	"github.com/prospectr/prospectr-go/internal/testutil"
)

func TestCreateAndGetUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	user, err := s.CreateUser("alice", "hashedpw", "admin")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == 0 {
		t.Error("Expected a non-zero user ID")
	}

	fetched, err := s.GetUserByUsername("alice")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if fetched.Role != "admin" {
		t.Errorf("Expected role 'admin', got '%s'", fetched.Role)
	}
	if fetched.PasswordHash != "hashedpw" {
		t.Errorf("Expected stored hash, got '%s'", fetched.PasswordHash)
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	s.CreateUser("alice", "hash1", "user")
	_, err := s.CreateUser("alice", "hash2", "user")
	if err == nil {
		t.Error("Expected error for duplicate username, got nil")
	}
}

func TestSessionLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	user, _ := s.CreateUser("alice", "hash", "user")

	token, err := s.CreateSession(user.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	fetched, err := s.GetUserFromSession(token)
	if err != nil {
		t.Fatalf("GetUserFromSession failed: %v", err)
	}
	if fetched.ID != user.ID {
		t.Errorf("Expected user %d, got %d", user.ID, fetched.ID)
	}

	if err := s.DeleteSession(token); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := s.GetUserFromSession(token); err == nil {
		t.Error("Expected error for deleted session, got nil")
	}
}

func TestGetUserFromExpiredSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	user, _ := s.CreateUser("alice", "hash", "user")

	db.Exec("INSERT INTO sessions (token, user_id, expiry) VALUES ('expired-token', ?, ?)",
		user.ID, time.Now().Add(-time.Hour))

	if _, err := s.GetUserFromSession("expired-token"); err == nil {
		t.Error("Expected error for expired session, got nil")
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	user, _ := s.CreateUser("alice", "hash", "user")

	db.Exec("INSERT INTO sessions (token, user_id, expiry) VALUES ('old', ?, ?)", user.ID, time.Now().Add(-time.Hour))
	db.Exec("INSERT INTO sessions (token, user_id, expiry) VALUES ('fresh', ?, ?)", user.ID, time.Now().Add(time.Hour))

	deleted, err := s.DeleteExpiredSessions()
	if err != nil {
		t.Fatalf("DeleteExpiredSessions failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted session, got %d", deleted)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count)
	if count != 1 {
		t.Errorf("Expected 1 remaining session, got %d", count)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	user, _ := s.CreateUser("alice", "hash", "user")
	s.CreateSession(user.ID)
	s.CreateJob(user.ID, "mockprofile", "a.xlsx", "/tmp/a.xlsx", 0)

	if err := s.DeleteUser(user.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	var sessions, jobs int
	db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&sessions)
	db.QueryRow("SELECT COUNT(*) FROM extraction_jobs").Scan(&jobs)
	if sessions != 0 || jobs != 0 {
		t.Errorf("Expected cascading delete, got %d sessions and %d jobs", sessions, jobs)
	}
}
