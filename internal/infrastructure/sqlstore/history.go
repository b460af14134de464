package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4/source"
)

// migrationHistoryTable lists every applied migration, one row each, in the
// order it was applied. schema_migrations only keeps the latest version.
const migrationHistoryTable = "schema_migration_history"

// AppliedMigration is one row of the migration history.
type AppliedMigration struct {
	Version    uint
	Identifier string
	AppliedAt  time.Time
}

func createHistoryTable(db *sql.DB, dialect Dialect) error {
	seq := "INTEGER PRIMARY KEY AUTOINCREMENT"
	appliedAt := "TIMESTAMP"
	if dialect == Postgres {
		seq = "BIGSERIAL PRIMARY KEY"
		appliedAt = "TIMESTAMPTZ"
	}

	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		seq %s,
		version BIGINT NOT NULL UNIQUE,
		identifier TEXT NOT NULL,
		applied_at %s NOT NULL
	)`, migrationHistoryTable, seq, appliedAt)

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create migration history: %w", err)
	}
	return nil
}

// recordApplied writes a history row for every source version up to and
// including current, walking the source in version order. Versions already
// recorded are left alone, so databases migrated before the history table
// existed get backfilled on their next start.
func recordApplied(db *sql.DB, dialect Dialect, src source.Driver, current uint) (int, error) {
	if err := createHistoryTable(db, dialect); err != nil {
		return 0, err
	}

	insert := dialect.Rebind(fmt.Sprintf(
		`INSERT INTO %s (version, identifier, applied_at) VALUES (?, ?, ?)
		ON CONFLICT (version) DO NOTHING`, migrationHistoryTable))

	recorded := 0
	version, err := src.First()
	for err == nil && version <= current {
		identifier, rerr := upIdentifier(src, version)
		if rerr != nil {
			return recorded, rerr
		}

		res, xerr := db.Exec(insert, int64(version), identifier, time.Now().UTC())
		if xerr != nil {
			return recorded, fmt.Errorf("failed to record migration %d: %w", version, xerr)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			recorded++
		}

		version, err = src.Next(version)
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return recorded, fmt.Errorf("failed to walk migrations: %w", err)
	}
	return recorded, nil
}

func upIdentifier(src source.Driver, version uint) (string, error) {
	r, identifier, err := src.ReadUp(version)
	if err != nil {
		return "", fmt.Errorf("failed to read migration %d: %w", version, err)
	}
	r.Close()
	return identifier, nil
}

// AppliedMigrations returns the migration history in application order.
func AppliedMigrations(db *sql.DB) ([]AppliedMigration, error) {
	rows, err := db.Query(fmt.Sprintf(
		`SELECT version, identifier, applied_at FROM %s ORDER BY seq`, migrationHistoryTable))
	if err != nil {
		return nil, fmt.Errorf("failed to read migration history: %w", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var (
			version int64
			m       AppliedMigration
			at      timestamp
		)
		if err := rows.Scan(&version, &m.Identifier, &at); err != nil {
			return nil, fmt.Errorf("failed to scan migration history: %w", err)
		}
		m.Version = uint(version)
		m.AppliedAt = at.Time
		applied = append(applied, m)
	}
	return applied, rows.Err()
}
