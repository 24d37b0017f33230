package catalog

import (
	"database/sql"
	"fmt"
	"strings"
)

// Flavor selects the introspection queries for a live database.
type Flavor string

// Supported database flavors.
const (
	FlavorDuckDB Flavor = "duckdb"
	FlavorSQLite Flavor = "sqlite"
)

// DB is a Provider backed by a live database connection. It answers
// table lookups from the database's own catalog views, so resolution
// reflects whatever schema the connection currently sees.
type DB struct {
	db     *sql.DB
	flavor Flavor
}

// NewDB creates a database-backed provider.
func NewDB(db *sql.DB, flavor Flavor) *DB {
	return &DB{db: db, flavor: flavor}
}

// dbTable is the Table handle returned by DB.
type dbTable struct {
	schema string
	name   string
}

func (t *dbTable) Name() string { return t.name }

func (t *dbTable) Path() []string {
	if t.schema != "" {
		return []string{t.schema, t.name}
	}
	return []string{t.name}
}

// FindTable looks the name path up in the database catalog. The last
// path element is the table name; an optional second-to-last element
// narrows the schema.
func (d *DB) FindTable(path []string) (Table, bool) {
	if len(path) == 0 {
		return nil, false
	}
	name := path[len(path)-1]
	var schema string
	if len(path) >= 2 {
		schema = path[len(path)-2]
	}

	switch d.flavor {
	case FlavorSQLite:
		row := d.db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND lower(name) = lower(?)`,
			name,
		)
		var found string
		if err := row.Scan(&found); err != nil {
			return nil, false
		}
		return &dbTable{name: found}, true
	default: // duckdb
		query := `SELECT table_schema, table_name FROM information_schema.tables WHERE lower(table_name) = lower(?)`
		args := []any{name}
		if schema != "" {
			query += ` AND lower(table_schema) = lower(?)`
			args = append(args, schema)
		}
		row := d.db.QueryRow(query, args...)
		var foundSchema, foundName string
		if err := row.Scan(&foundSchema, &foundName); err != nil {
			return nil, false
		}
		return &dbTable{schema: foundSchema, name: foundName}, true
	}
}

// Tables enumerates the tables visible to the connection, columns
// included.
func (d *DB) Tables() ([]TableDef, error) {
	var rows *sql.Rows
	var err error
	switch d.flavor {
	case FlavorSQLite:
		rows, err = d.db.Query(
			`SELECT '', name FROM sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%' ORDER BY name`,
		)
	default: // duckdb
		rows, err = d.db.Query(
			`SELECT table_schema, table_name FROM information_schema.tables ORDER BY table_schema, table_name`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var defs []TableDef
	for rows.Next() {
		var def TableDef
		if err := rows.Scan(&def.Schema, &def.Name); err != nil {
			return nil, fmt.Errorf("scanning tables: %w", err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}

	for i := range defs {
		columns, err := d.Attributes(&dbTable{schema: defs[i].Schema, name: defs[i].Name})
		if err != nil {
			return nil, err
		}
		defs[i].Columns = columns
	}
	return defs, nil
}

// Attributes introspects the columns of a previously found table.
func (d *DB) Attributes(t Table) ([]Attribute, error) {
	dt, ok := t.(*dbTable)
	if !ok {
		return nil, &UnknownTableError{Name: t.Name()}
	}

	var rows *sql.Rows
	var err error
	switch d.flavor {
	case FlavorSQLite:
		rows, err = d.db.Query(`SELECT name, type, hidden FROM pragma_table_xinfo(?)`, dt.name)
	default: // duckdb
		rows, err = d.db.Query(
			`SELECT column_name, data_type FROM information_schema.columns WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position`,
			dt.schema, dt.name,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing columns of %s: %w", dt.name, err)
	}
	defer rows.Close()

	var attrs []Attribute
	for rows.Next() {
		var attr Attribute
		switch d.flavor {
		case FlavorSQLite:
			var hidden int
			if err := rows.Scan(&attr.Name, &attr.Type, &hidden); err != nil {
				return nil, fmt.Errorf("scanning columns of %s: %w", dt.name, err)
			}
			attr.Hidden = hidden != 0
		default:
			if err := rows.Scan(&attr.Name, &attr.Type); err != nil {
				return nil, fmt.Errorf("scanning columns of %s: %w", dt.name, err)
			}
			attr.Hidden = strings.HasPrefix(attr.Name, "_")
		}
		attrs = append(attrs, attr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing columns of %s: %w", dt.name, err)
	}
	return attrs, nil
}
