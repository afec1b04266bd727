package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// migrations are applied in order, each in its own transaction. Applied
// versions are tracked in schema_migrations.
var migrations = []struct {
	version int
	name    string
	sql     string
}{
	{1, "enums", `
		DO $$ BEGIN
			CREATE TYPE user_role AS ENUM ('admin', 'client');
		EXCEPTION WHEN duplicate_object THEN NULL; END $$;
		DO $$ BEGIN
			CREATE TYPE currency AS ENUM ('FC', 'USD');
		EXCEPTION WHEN duplicate_object THEN NULL; END $$;
		DO $$ BEGIN
			CREATE TYPE transaction_type AS ENUM ('deposit', 'transfer', 'purchase', 'money_creation');
		EXCEPTION WHEN duplicate_object THEN NULL; END $$;
		DO $$ BEGIN
			CREATE TYPE transaction_status AS ENUM ('pending', 'completed', 'failed');
		EXCEPTION WHEN duplicate_object THEN NULL; END $$;`},
	{2, "users_and_wallets", `
		CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY,
			email         TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			first_name    TEXT NOT NULL DEFAULT '',
			last_name     TEXT NOT NULL DEFAULT '',
			role          user_role NOT NULL DEFAULT 'client',
			is_blocked    BOOLEAN NOT NULL DEFAULT false,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT users_email_key UNIQUE (email)
		);
		CREATE TABLE IF NOT EXISTS wallets (
			id          UUID PRIMARY KEY,
			user_id     UUID NOT NULL UNIQUE REFERENCES users(id),
			balance_fc  NUMERIC(12,2) NOT NULL DEFAULT 0 CONSTRAINT wallets_balance_fc_check CHECK (balance_fc >= 0),
			balance_usd NUMERIC(12,2) NOT NULL DEFAULT 0 CONSTRAINT wallets_balance_usd_check CHECK (balance_usd >= 0),
			version     BIGINT NOT NULL DEFAULT 0,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);`},
	{3, "products", `
		CREATE TABLE IF NOT EXISTS products (
			id          UUID PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price       NUMERIC(12,2) NOT NULL CHECK (price > 0),
			currency    currency NOT NULL,
			stock       INTEGER NOT NULL DEFAULT 0 CONSTRAINT products_stock_check CHECK (stock >= 0),
			image_url   TEXT,
			is_active   BOOLEAN NOT NULL DEFAULT true,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);`},
	{4, "transactions", `
		CREATE TABLE IF NOT EXISTS transactions (
			id           UUID PRIMARY KEY,
			type         transaction_type NOT NULL,
			from_user_id UUID REFERENCES users(id),
			to_user_id   UUID REFERENCES users(id),
			amount       NUMERIC(12,2) NOT NULL CHECK (amount > 0),
			currency     currency NOT NULL,
			description  TEXT,
			product_id   UUID REFERENCES products(id),
			status       transaction_status NOT NULL DEFAULT 'completed',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS transactions_from_user_idx ON transactions (from_user_id, created_at);
		CREATE INDEX IF NOT EXISTS transactions_to_user_idx ON transactions (to_user_id, created_at);

		-- Ledger records are append-only.
		CREATE OR REPLACE FUNCTION transactions_immutable() RETURNS trigger AS $$
		BEGIN
			RAISE EXCEPTION 'transactions are append-only';
		END $$ LANGUAGE plpgsql;
		DROP TRIGGER IF EXISTS transactions_no_update ON transactions;
		CREATE TRIGGER transactions_no_update BEFORE UPDATE OR DELETE ON transactions
			FOR EACH ROW EXECUTE FUNCTION transactions_immutable();`},
	{5, "notifications", `
		CREATE TABLE IF NOT EXISTS notifications (
			id         UUID PRIMARY KEY,
			user_id    UUID NOT NULL REFERENCES users(id),
			title      TEXT NOT NULL,
			message    TEXT NOT NULL,
			is_read    BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS notifications_user_idx ON notifications (user_id, created_at DESC);`},
}

// Migrate applies every pending migration and returns how many ran.
func Migrate(ctx context.Context, db *sql.DB) (int, error) {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := 0
	for _, m := range migrations {
		var exists bool
		if err := db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.version).Scan(&exists); err != nil {
			return applied, fmt.Errorf("check migration %d: %w", m.version, err)
		}
		if exists {
			continue
		}

		if err := applyMigration(ctx, db, m.version, m.name, m.sql); err != nil {
			return applied, err
		}
		log.Printf("[DB] Applied migration %d_%s", m.version, m.name)
		applied++
	}
	return applied, nil
}

func applyMigration(ctx context.Context, db *sql.DB, version int, name, stmt string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("apply migration %d_%s: %w", version, name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, version, name); err != nil {
		return fmt.Errorf("record migration %d: %w", version, err)
	}
	return tx.Commit()
}
