package config

import (
	"fmt"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MySQLDSN builds the MySQL DSN from MYSQL_DSN or the MYSQL_* parts.
func MySQLDSN() string {
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=Local&multiStatements=true",
		os.Getenv("MYSQL_USER"), os.Getenv("MYSQL_PASS"),
		GetEnv("MYSQL_HOST", "localhost"), GetEnv("MYSQL_PORT", "3306"),
		GetEnv("MYSQL_DB", "warehouse"))
}

func NewDB() (*gorm.DB, error) {
	logMode := logger.Warn
	switch os.Getenv("GORM_LOG") {
	case "off":
		logMode = logger.Silent
	case "info":
		logMode = logger.Info
	}

	gormLogger := logger.New(
		GetLogger(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logMode,
			IgnoreRecordNotFoundError: true,
		},
	)
	cfg := &gorm.Config{Logger: gormLogger, TranslateError: true}

	var dialector gorm.Dialector
	switch GetEnv("DB_DRIVER", "mysql") {
	case "sqlite":
		dialector = sqlite.Open(GetEnv("SQLITE_PATH", "warehouse.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	default:
		dialector = mysql.Open(MySQLDSN())
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(getEnvInt("DB_MAX_OPEN_CONNS", 25))
	sqlDB.SetMaxIdleConns(getEnvInt("DB_MAX_IDLE_CONNS", 10))
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}
