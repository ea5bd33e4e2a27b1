package db

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS pending_authorizations (
		token         TEXT PRIMARY KEY,
		nonce         TEXT NOT NULL,
		connection    TEXT NOT NULL DEFAULT '',
		provider      TEXT NOT NULL,
		code_verifier TEXT NOT NULL DEFAULT '',
		redirect_uri  TEXT NOT NULL,
		created_at    TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS credentials (
		id            TEXT PRIMARY KEY,
		connection    TEXT NOT NULL DEFAULT '',
		id_token      TEXT NOT NULL DEFAULT '',
		access_token  TEXT NOT NULL DEFAULT '',
		token_type    TEXT NOT NULL DEFAULT '',
		refresh_token TEXT NOT NULL DEFAULT '',
		subject       TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS credentials_created_at_idx ON credentials (created_at)`,
}

// Migrate creates the tables used by lockflow. It is safe to run repeatedly.
func Migrate(ctx context.Context, conn DBTX) error {
	for _, stmt := range schema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
