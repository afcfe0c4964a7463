// Package testdb opens throwaway SQLite databases carrying the full GORM schema.
package testdb

import (
	"fmt"
	"testing"

	"tracker/internal/infra/persistence/model"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // cgo driver behind gorm.io/driver/sqlite
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a private in-memory database, migrated and with foreign keys enforced.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the shared-cache database alive and serializes writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))

	return db
}

// SeedAccount inserts a bare local account and returns its id.
func SeedAccount(t testing.TB, db *gorm.DB, email string) uuid.UUID {
	t.Helper()

	account := &model.AccountModel{Email: email, Provider: "local"}
	require.NoError(t, db.Create(account).Error)

	return account.ID
}
