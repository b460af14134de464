package sqlstore

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

const migrationsTable = "schema_migrations"

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies pending migrations in version order. Already applied
// versions are skipped, so calling it on every start is safe. When dir is
// empty the migrations embedded in the binary are used. Each applied
// migration's identifier is appended to the history table.
func Migrate(db *sql.DB, dialect Dialect, databaseURL, dir string, logger *zap.Logger) error {
	driver, release, err := migrationDriver(db, dialect, databaseURL)
	if err != nil {
		return err
	}
	defer release()

	src, sourceName, err := migrationSource(dialect, dir)
	if err != nil {
		return err
	}
	defer src.Close()

	m, err := migrate.NewWithInstance(sourceName, src, string(dialect), driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	m.Log = migrateLogger{logger: logger.Sugar()}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	fields := []zap.Field{
		zap.String("dialect", string(dialect)),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	}
	if err == nil && !dirty {
		recorded, err := recordApplied(db, dialect, src, version)
		if err != nil {
			return err
		}
		applied, err := AppliedMigrations(db)
		if err != nil {
			return err
		}
		fields = append(fields, zap.Int("newly_recorded", recorded))
		if len(applied) > 0 {
			fields = append(fields, zap.String("latest", applied[len(applied)-1].Identifier))
		}
	}
	logger.Info("migrations applied", fields...)

	return nil
}

// migrationDriver returns the database driver and a release func. The
// postgres driver pins and later closes its own pool, so it gets a separate
// one. SQLite reuses db because a second pool would not see a :memory:
// database, and closing the driver would close db.
func migrationDriver(db *sql.DB, dialect Dialect, databaseURL string) (database.Driver, func(), error) {
	switch dialect {
	case Postgres:
		migrationDB, err := sql.Open("postgres", databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database for migrations: %w", err)
		}
		driver, err := postgres.WithInstance(migrationDB, &postgres.Config{MigrationsTable: migrationsTable})
		if err != nil {
			migrationDB.Close()
			return nil, nil, fmt.Errorf("failed to create migration driver: %w", err)
		}
		return driver, func() { driver.Close() }, nil
	case SQLite:
		driver, err := sqlite3.WithInstance(db, &sqlite3.Config{MigrationsTable: migrationsTable})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create migration driver: %w", err)
		}
		return driver, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
}

func migrationSource(dialect Dialect, dir string) (source.Driver, string, error) {
	if dir != "" {
		src, err := source.Open(fmt.Sprintf("file://%s", dir))
		if err != nil {
			return nil, "", fmt.Errorf("failed to open migrations in %s: %w", dir, err)
		}
		return src, "file", nil
	}

	src, err := iofs.New(migrationsFS, "migrations/"+string(dialect))
	if err != nil {
		return nil, "", fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	return src, "iofs", nil
}

type migrateLogger struct {
	logger *zap.SugaredLogger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.logger.Infof(format, v...)
}

func (l migrateLogger) Verbose() bool {
	return false
}
