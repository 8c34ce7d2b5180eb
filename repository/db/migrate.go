package db

import (
	"errors"
	"log"

	domain "taskdeck/internal/domain/errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migration applies all pending migrations from migratePath against the
// database at dbDSN. Running on an up-to-date schema is not an error.
func Migration(dbDSN, migratePath string) error {
	if dbDSN == "" || migratePath == "" {
		return domain.ErrBadRequest
	}

	m, err := migrate.New("file://"+migratePath, dbDSN)
	if err != nil {
		log.Println("[ERROR] failed to initialize migrations:", err)
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Println("[ERROR] failed to close migration source:", srcErr)
		}
		if dbErr != nil {
			log.Println("[ERROR] failed to close migration database:", dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Println("[ERROR] failed to apply migrations:", err)
		return err
	}
	return nil
}
