// Package helper runs the schema migrations under migrations/postgres.
package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"

	"appointer/config"
)

const (
	ActionUp     = "up"
	ActionDown   = "down"
	ActionStepUp = "step-up"
	ActionDrop   = "drop"

	sourceURL = "file://migrations/postgres"
)

var ErrUnknownAction = errors.New("unknown migration action")

// Actions lists what Runner accepts, in the order shown to operators.
var Actions = []string{ActionUp, ActionDown, ActionStepUp, ActionDrop}

func databaseURL(cfg *config.Config) string {
	pg := cfg.DB.Postgres
	name := pg.Write.Name

	if pg.Prefix != "" {
		name = pg.Prefix + name
	}

	query := url.Values{}
	query.Set("sslmode", pg.Write.SSLMode)

	if pg.MigrationTable != "" {
		query.Set("x-migrations-table", pg.MigrationTable)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(pg.Write.Username, pg.Write.Password),
		Host:     net.JoinHostPort(pg.Write.Host, pg.Write.Port),
		Path:     "/" + name,
		RawQuery: query.Encode(),
	}

	return u.String()
}

func apply(mig *migrate.Migrate, action string) error {
	switch action {
	case ActionUp:
		return mig.Up()
	case ActionDown:
		return mig.Steps(-1)
	case ActionStepUp:
		return mig.Steps(1)
	case ActionDrop:
		return mig.Down()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

func Runner(cfg *config.Config, action string) (err error) {
	mig, err := migrate.New(sourceURL, databaseURL(cfg))
	if err != nil {
		return fmt.Errorf("error creating migrate instance: %w", err)
	}

	defer func() {
		srcErr, dbErr := mig.Close()
		if err == nil {
			err = errors.Join(srcErr, dbErr)
		}
	}()

	if err = apply(mig, action); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration %s: %w", action, err)
	}

	version, dirty, vErr := mig.Version()
	if vErr != nil && !errors.Is(vErr, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", vErr)
	}

	log.Info().Str("action", action).Uint("version", version).Bool("dirty", dirty).Msg("Database migration finished")

	return nil
}

func Up(cfg *config.Config) error {
	return Runner(cfg, ActionUp)
}
