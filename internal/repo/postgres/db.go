package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// ErrLedgerUnavailable marks writes attempted without a database. Reads
// degrade to empty results instead; an enforcement decision must never
// be made against a counter that could not be written.
var ErrLedgerUnavailable = errors.New("strike ledger is unavailable")

func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, nil
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS strikes (
		chat_id      BIGINT NOT NULL,
		user_id      BIGINT NOT NULL,
		strike_count INTEGER NOT NULL DEFAULT 0,
		username     TEXT,
		PRIMARY KEY (chat_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS actions (
		id           BIGSERIAL PRIMARY KEY,
		chat_id      BIGINT NOT NULL,
		user_id      BIGINT NOT NULL,
		action       TEXT NOT NULL,
		reason       TEXT,
		strike_count INTEGER,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS actions_chat_created_idx
		ON actions (chat_id, created_at)`,
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func nullableString(value string) interface{} {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return trimmed
}
