package crud

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wtfBlogger/domain"
)

// testDB opens a fresh in-memory sqlite database and runs the migrations.
// Every test gets its own database, named after the test, so tests can
// never observe each other's state.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	err = db.AutoMigrate(
		domain.User{},
		domain.OAuth{},
		domain.Group{},
		domain.Post{},
		domain.Comment{},
		domain.Follow{},
	)
	if err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

// testUser creates a user through the UserService, so all the usual
// normalization and hashing happens.
func testUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	us := NewUserService(db, "test-hmac-key", "test-pepper")
	user := &domain.User{
		Username: username,
		Name:     "Test " + username,
		Email:    username + "@example.com",
		Password: "password123",
	}
	if err := us.Create(context.Background(), user); err != nil {
		t.Fatalf("creating test user %q: %v", username, err)
	}
	return user
}
