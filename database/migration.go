package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"

	"github.com/mbolis/teamsurvey/log"
)

//go:embed migrations/*.sql
var schemaFiles embed.FS

// migrateDB applies every pending migration. A schema left dirty by an
// earlier failed run is reported rather than forced.
func migrateDB(db *sql.DB) error {
	src, err := iofs.New(schemaFiles, "migrations")
	if err != nil {
		return errors.Wrap(err, "migrations source")
	}

	dst, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return errors.Wrap(err, "migrations target")
	}

	migrator, err := migrate.NewWithInstance("iofs", src, "sqlite3", dst)
	if err != nil {
		return errors.Wrap(err, "migrations init")
	}

	version, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return errors.Wrap(err, "schema version")
	}
	if dirty {
		return fmt.Errorf("schema version %d is dirty, fix it by hand", version)
	}

	err = migrator.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Debugf("db.migrate: schema at version %d", version)
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "migrate up")
	}

	version, _, _ = migrator.Version()
	log.Infof("db.migrate: schema upgraded to version %d", version)
	return nil
}
