// Package config provides configuration management for the semql CLI.
//
// Configuration is layered: defaults, then the semql.yaml project file,
// then SEMQL_-prefixed environment variables, then explicit CLI flags.
package config

// Default configuration values.
const (
	DefaultDriver = "duckdb"
	DefaultOutput = "table"
)

// Config holds the resolved CLI configuration.
type Config struct {
	// SchemaFile points at a YAML schema description used to resolve
	// table and column names when no database is configured.
	SchemaFile string `koanf:"schema"`

	// Database is a driver DSN; when set, table metadata is read from
	// the live database instead of a schema file.
	Database string `koanf:"database"`

	// Driver selects the database driver for Database (duckdb or
	// sqlite).
	Driver string `koanf:"driver"`

	// Output selects the render format (table or json).
	Output string `koanf:"output"`

	Verbose bool `koanf:"verbose"`

	// NoColor disables styled statement output.
	NoColor bool `koanf:"no_color"`
}
