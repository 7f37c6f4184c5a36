package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/blogem/audio-library/database/migrations"
	"github.com/blogem/audio-library/logging"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// gooseUpContext is a seam for tests
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies every pending embedded migration
func RunMigrations(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(logging.NewGooseLogger(logger))

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}
