package db

import (
	"database/sql"
)

// MigrateUp creates the accounts schema if it does not exist.
// The credit balance carries a CHECK constraint as a second line of defense;
// the repository's guarded UPDATE is the primary one.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS accounts (
    id         SERIAL PRIMARY KEY,
    email      TEXT NOT NULL UNIQUE,
    name       TEXT NOT NULL DEFAULT '',
    password   TEXT NOT NULL,
    credits    INTEGER NOT NULL DEFAULT 0 CHECK (credits >= 0),
    active     BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ DEFAULT now()
)`); err != nil {
		return err
	}

	indexes := []string{
		// メールでのログイン検索用
		`CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email)`,
		// アクティブアカウント絞り込み用(WHERE active = TRUE)
		`CREATE INDEX IF NOT EXISTS idx_accounts_active ON accounts(active) WHERE active = TRUE`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}

// MigrateDown rolls back the database schema.
// Use with caution: this will delete all account data.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP INDEX IF EXISTS idx_accounts_active`,
		`DROP INDEX IF EXISTS idx_accounts_email`,
		`DROP TABLE IF EXISTS accounts CASCADE`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
