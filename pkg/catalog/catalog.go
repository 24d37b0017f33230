// Package catalog provides schema metadata lookup for semantic resolution.
//
// A Provider answers two questions for the resolver: does a table with a
// given qualified name exist, and what attributes does it carry. Providers
// never see query text; they only serve metadata.
package catalog

import "strings"

// Attribute describes one column of a table.
type Attribute struct {
	Name   string
	Type   string
	Hidden bool // system columns, excluded from wildcard expansion
}

// Table is a handle to a table known to a Provider.
type Table interface {
	// Name returns the bare table name.
	Name() string
	// Path returns the qualified name parts, outermost first
	// (catalog, schema, name); leading parts may be absent.
	Path() []string
}

// Provider resolves table metadata for the semantic resolver.
type Provider interface {
	// FindTable matches a dotted name path against known tables.
	// The path is matched as a suffix of the table's qualified name,
	// case-insensitively. Returns false if no table matches.
	FindTable(path []string) (Table, bool)

	// Attributes lists the attributes of a table previously returned
	// by FindTable. May fail (e.g. a live connection dropped); the
	// resolver converts such failures into diagnostics.
	Attributes(t Table) ([]Attribute, error)
}

// Lister is implemented by providers that can enumerate their tables.
type Lister interface {
	// Tables returns the full definitions of every known table.
	Tables() ([]TableDef, error)
}

// PathMatches reports whether want is a case-insensitive suffix of have.
// It is the shared matching rule for qualified table names.
func PathMatches(have, want []string) bool {
	if len(want) == 0 || len(want) > len(have) {
		return false
	}
	offset := len(have) - len(want)
	for i, part := range want {
		if !strings.EqualFold(have[offset+i], part) {
			return false
		}
	}
	return true
}
