package test_utils

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
)

// StoreTestUser inserts a user row and returns its id. Item and budget rows
// reference a user, so repository tests need one.
func StoreTestUser(t *testing.T, db *sql.DB) int {
	t.Helper()

	result, err := db.Exec(
		"INSERT INTO user (uid, username, display_name) VALUES (?, ?, ?)",
		uuid.NewString(), "test_user_"+uuid.NewString(), "Test User",
	)
	if err != nil {
		t.Fatalf("Failed to insert test user: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read test user id: %v", err)
	}
	return int(id)
}
