package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
)

//go:embed migrations/001_initial.up.sql
var initialMigrationSQL string

//go:embed migrations/002_credential_hashing.up.sql
var credentialHashingSQL string

var requiredTables = []string{
	"users",
	"tasks",
	"audit_entries",
}

func (db *DB) EnsureSchema(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	exists, err := db.hasAllRequiredTables(ctx)
	if err != nil {
		return fmt.Errorf("check existing tables: %w", err)
	}

	if !exists {
		slog.Info("database schema missing tables; applying initial migration")
		if _, err := db.Pool.Exec(ctx, initialMigrationSQL); err != nil {
			return fmt.Errorf("apply initial migration: %w", err)
		}

		exists, err = db.hasAllRequiredTables(ctx)
		if err != nil {
			return fmt.Errorf("re-check tables after migration: %w", err)
		}

		if !exists {
			return fmt.Errorf("schema initialization incomplete: required tables are still missing")
		}
	}

	// 002: credential hashing columns (hash+salt alongside the legacy
	// plaintext column).
	if err := db.applyCredentialHashing(ctx); err != nil {
		return fmt.Errorf("apply credential hashing migration: %w", err)
	}

	slog.Info("database schema ensured")
	return nil
}

// applyCredentialHashing runs migration 002 idempotently. The SQL uses
// IF NOT EXISTS so it is safe to re-run.
func (db *DB) applyCredentialHashing(ctx context.Context) error {
	var hasColumn bool
	err := db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_schema = 'public'
			  AND table_name = 'users'
			  AND column_name = 'password_hash'
		)
	`).Scan(&hasColumn)
	if err != nil {
		return fmt.Errorf("check password_hash column: %w", err)
	}

	if !hasColumn {
		slog.Info("applying credential hashing migration (002)")
		if _, err := db.Pool.Exec(ctx, credentialHashingSQL); err != nil {
			return fmt.Errorf("exec credential hashing SQL: %w", err)
		}
		slog.Info("credential hashing migration applied")
	}

	return nil
}

func (db *DB) hasAllRequiredTables(ctx context.Context) (bool, error) {
	var count int
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_name = ANY($1)
	`, requiredTables).Scan(&count)
	if err != nil {
		return false, err
	}

	return count == len(requiredTables), nil
}
