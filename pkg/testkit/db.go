// Package testkit holds the helpers service and controller tests share: a
// throwaway sqlite database, a scripted outbound HTTP transport and a JSON
// client for the API.
package testkit

import (
	"testing"

	"github.com/google/uuid"
	"github.com/tiffinbox/tiffin/pkg/database"
	"github.com/tiffinbox/tiffin/pkg/migration"
	"gorm.io/gorm"
)

// DB opens a private in-memory sqlite database, runs every registered
// migration on it and closes it when the test ends. Import the migrations
// package for its side effects before calling DB.
func DB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("testkit: open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if _, err := migration.New(db).Run(); err != nil {
		t.Fatalf("testkit: migrate: %v", err)
	}
	return db
}
