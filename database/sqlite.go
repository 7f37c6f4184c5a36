package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database bundles the raw connection used for migrations and the ORM handle used by repositories
type Database struct {
	SQL  *sql.DB
	Gorm *gorm.DB
}

// dsn builds a go-sqlite3 DSN that enables foreign keys on every pooled connection
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

// OpenDB opens the SQLite database and verifies the connection
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// InitializeDatabase opens the database, runs migrations and wraps the connection in gorm
func InitializeDatabase(ctx context.Context, path string, logger *zap.Logger) (*Database, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	gdb, err := gorm.Open(sqlite.New(sqlite.Config{
		DriverName: "sqlite3",
		Conn:       db,
	}), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	logger.Info("database initialized", zap.String("path", path))
	return &Database{SQL: db, Gorm: gdb}, nil
}

// Close closes the underlying connection
func (d *Database) Close() error {
	if d == nil || d.SQL == nil {
		return nil
	}
	return d.SQL.Close()
}
