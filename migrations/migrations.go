// Package migrations holds the versioned MySQL schema and runs it with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"warehouse.GO/model/entity"
)

//go:embed sql/*.sql
var files embed.FS

// Source returns the embedded migration files.
func Source() (source.Driver, error) {
	return iofs.New(files, "sql")
}

// New builds a migrator on the MySQL connection behind db.
func New(db *gorm.DB) (*migrate.Migrate, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	src, err := Source()
	if err != nil {
		return nil, err
	}
	driver, err := mysql.WithInstance(sqlDB, &mysql.Config{})
	if err != nil {
		return nil, err
	}
	return migrate.NewWithInstance("iofs", src, "mysql", driver)
}

// Up applies every pending migration. An up-to-date schema is not an error.
func Up(db *gorm.DB) (uint, error) {
	m, err := New(db)
	if err != nil {
		return 0, err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, err
	}
	return version(m)
}

// Down rolls back steps migrations.
func Down(db *gorm.DB, steps int) (uint, error) {
	if steps <= 0 {
		steps = 1
	}
	m, err := New(db)
	if err != nil {
		return 0, err
	}
	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, err
	}
	return version(m)
}

func version(m *migrate.Migrate) (uint, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if dirty {
		return v, fmt.Errorf("migrations: database is dirty at version %d", v)
	}
	return v, nil
}

// Auto creates or updates the tables from the gorm models. Used for SQLite and local setups.
func Auto(db *gorm.DB) error {
	return db.AutoMigrate(entity.All()...)
}
