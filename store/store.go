// Package store records tracker trajectories into a SQLite database so runs
// can be queried and replayed after the video has been processed.
package store

import (
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	"github.com/swdee/go-playertrack"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// pragmas applied to the connection when opening a database
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
}

// DB is a trajectory database
type DB struct {
	*sql.DB
}

// Open opens or creates the database at path and migrates it to the latest
// schema version
func Open(path string) (*DB, error) {

	sqlDB, err := sql.Open("sqlite", path)

	if err != nil {
		return nil, errors.Wrapf(err, "unable to open database %s", path)
	}

	// a single connection keeps the pragmas in effect for every statement
	sqlDB.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, errors.Wrapf(err, "unable to execute %q", p)
		}
	}

	db := &DB{sqlDB}

	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return db, nil
}

// MigrateUp runs all pending migrations, it is a no-op when the schema is
// already current
func (db *DB) MigrateUp() error {

	m, err := db.newMigrate()

	if err != nil {
		return err
	}

	// m is not closed as that would close the underlying connection

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "migration up failed")
	}

	return nil
}

// SchemaVersion returns the applied migration version and dirty state
func (db *DB) SchemaVersion() (uint, bool, error) {

	m, err := db.newMigrate()

	if err != nil {
		return 0, false, err
	}

	version, dirty, err := m.Version()

	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}

	return version, dirty, err
}

// newMigrate creates a migrate instance reading the embedded migrations
func (db *DB) newMigrate() (*migrate.Migrate, error) {

	src, err := iofs.New(migrationsFS, "migrations")

	if err != nil {
		return nil, errors.Wrap(err, "unable to read embedded migrations")
	}

	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})

	if err != nil {
		return nil, errors.Wrap(err, "unable to create sqlite migrate driver")
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)

	if err != nil {
		return nil, errors.Wrap(err, "unable to create migrate instance")
	}

	m.Log = migrateLogger{}

	return m, nil
}

// migrateLogger implements migrate.Logger
type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	playertrack.Logf("[migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool {
	return false
}
