package services

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orgdir/identity-backend/v1/models"
)

// SetupSQLiteTestDB creates an in-memory SQLite database for testing.
// TranslateError is enabled so unique-key violations surface as
// gorm.ErrDuplicatedKey, the same way the Postgres driver reports them.
func SetupSQLiteTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to SQLite test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Organisation{},
		&models.OrganisationUser{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// CleanupTestData removes all rows between test cases, children first
func CleanupTestData(t *testing.T, db *gorm.DB) {
	t.Helper()

	if err := db.Exec("DELETE FROM organisation_users").Error; err != nil {
		t.Logf("Warning: failed to cleanup organisation_users: %v", err)
	}
	if err := db.Exec("DELETE FROM organisations").Error; err != nil {
		t.Logf("Warning: failed to cleanup organisations: %v", err)
	}
	if err := db.Exec("DELETE FROM users").Error; err != nil {
		t.Logf("Warning: failed to cleanup users: %v", err)
	}
}
