// Package testdb opens migrated SQLite databases for tests.
package testdb

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"warehouse.GO/model/entity"
)

// Open returns a file-backed SQLite database with every model migrated. The file is removed
// when the test ends. A file is used instead of :memory: so concurrent transactions share it.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	entity.PasswordCost = bcrypt.MinCost
	path := filepath.Join(t.TempDir(), fmt.Sprintf("warehouse_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
		os.Remove(path)
	})
	if err := db.AutoMigrate(entity.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
