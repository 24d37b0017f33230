package commands

import (
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
	_ "modernc.org/sqlite"              // sqlite driver

	"github.com/leapstack-labs/semql/internal/cli/config"
	"github.com/leapstack-labs/semql/pkg/catalog"
)

// openProvider builds the schema provider from the configuration: a
// live database when a DSN is configured, else a YAML schema file, else
// an empty provider that resolves no table.
func openProvider(cfg *config.Config) (catalog.Provider, func(), error) {
	if cfg.Database != "" {
		driver, flavor, err := driverFor(cfg.Driver)
		if err != nil {
			return nil, nil, err
		}
		db, err := sql.Open(driver, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return catalog.NewDB(db, flavor), func() { _ = db.Close() }, nil
	}

	if cfg.SchemaFile != "" {
		mem, err := catalog.LoadFile(cfg.SchemaFile)
		if err != nil {
			return nil, nil, err
		}
		return mem, func() {}, nil
	}

	return catalog.NewMemory(), func() {}, nil
}

func driverFor(name string) (string, catalog.Flavor, error) {
	switch name {
	case "", "duckdb":
		return "duckdb", catalog.FlavorDuckDB, nil
	case "sqlite":
		return "sqlite", catalog.FlavorSQLite, nil
	}
	return "", "", fmt.Errorf("unknown driver %q (expected duckdb or sqlite)", name)
}
