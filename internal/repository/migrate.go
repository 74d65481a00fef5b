package repository

import (
	"context"
	"fmt"
	"log/slog"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const recordsTable = "medical_records"

// Migrate creates the medical_records table and its indexes if missing.
func Migrate(ctx context.Context, drv *entsql.Driver, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	blob := "BLOB"
	if drv.Dialect() == dialect.Postgres {
		blob = "BYTEA"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS medical_records (
	id VARCHAR(36) PRIMARY KEY,
	filename TEXT NOT NULL,
	source_path TEXT NOT NULL DEFAULT '',
	content_type VARCHAR(128) NOT NULL,
	byte_size BIGINT NOT NULL DEFAULT 0,
	content ` + blob + `,
	content_hash VARCHAR(64) NOT NULL DEFAULT '',
	status VARCHAR(16) NOT NULL DEFAULT 'pending',
	raw_text TEXT,
	structured_data TEXT,
	strategy VARCHAR(32),
	error_message TEXT,
	pet_name TEXT,
	species TEXT,
	breed TEXT,
	age TEXT,
	owner_name TEXT,
	diagnosis TEXT,
	treatment TEXT,
	veterinarian TEXT,
	visit_date TEXT,
	created_at VARCHAR(40) NOT NULL,
	updated_at VARCHAR(40) NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS medical_records_status_idx ON medical_records (status)`,
		`CREATE INDEX IF NOT EXISTS medical_records_created_at_idx ON medical_records (created_at)`,
		`CREATE INDEX IF NOT EXISTS medical_records_content_hash_idx ON medical_records (content_hash)`,
	}
	for _, q := range stmts {
		if err := drv.Exec(ctx, q, []any{}, nil); err != nil {
			logger.Error("migration failed", "table", recordsTable, "error", err)
			return fmt.Errorf("migrate %s: %w", recordsTable, err)
		}
	}
	logger.Info("migration complete", "table", recordsTable, "dialect", drv.Dialect())
	return nil
}
