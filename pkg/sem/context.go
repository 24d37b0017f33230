package sem

import (
	"strings"

	"github.com/leapstack-labs/semql/pkg/catalog"
)

// SourceResolutionResult is a qualified name resolved to a visible rows
// source: either a real table or a correlation alias target. It doubles
// as a symbol definition for the resolved name.
type SourceResolutionResult struct {
	Source RowsSource
	Table  catalog.Table // set when the name matched a real table
	Alias  *Symbol       // set when the name matched a correlation alias
}

// SymbolClass returns table-alias for alias matches, table otherwise.
func (r *SourceResolutionResult) SymbolClass() SymbolClass {
	if r.Alias != nil {
		return ClassTableAlias
	}
	return ClassTable
}

// layerKind discriminates the immutable context layers.
type layerKind int

const (
	layerBase     layerKind = iota // empty scope over a schema provider
	layerTable                     // makes a real table resolvable as a source
	layerAlias                     // makes a correlation alias resolvable as a source
	layerTuple                     // overrides the visible result column tuple
	layerCombined                  // concatenates two contexts (joins)
	layerHidden                    // hides source visibility, keeps the tuple
)

// DataContext is an immutable, chainable scope: the set of sources
// visible by name plus the ordered result column tuple at one point of
// the rows source tree. Every operation layers a new context over the
// receiver; contexts are never mutated after construction and are
// safely shared between sibling branches.
type DataContext struct {
	kind     layerKind
	parent   *DataContext
	provider catalog.Provider

	table      catalog.Table // layerTable
	tableOwner RowsSource    // layerTable: source owning the table
	alias      *Symbol       // layerAlias
	source     RowsSource    // layerAlias: aliased source
	columns    []*Symbol     // layerTuple
	right      *DataContext  // layerCombined
}

// NewDataContext creates an empty scope over a schema provider. The
// provider may be nil, in which case no real table resolves.
func NewDataContext(provider catalog.Provider) *DataContext {
	return &DataContext{kind: layerBase, provider: provider}
}

// Provider returns the schema provider this scope chain was built over.
func (c *DataContext) Provider() catalog.Provider { return c.provider }

// layer creates a child layer inheriting the provider.
func (c *DataContext) layer(kind layerKind) *DataContext {
	return &DataContext{kind: kind, parent: c, provider: c.provider}
}

// ExtendWithRealTable layers a context making the table's qualified
// name resolvable as a source owned by the given rows source.
func (c *DataContext) ExtendWithRealTable(t catalog.Table, owner RowsSource) *DataContext {
	next := c.layer(layerTable)
	next.table = t
	next.tableOwner = owner
	return next
}

// ExtendWithTableAlias layers a context making the alias resolvable as
// a source for the aliased rows source's output columns.
func (c *DataContext) ExtendWithTableAlias(alias *Symbol, source RowsSource) *DataContext {
	next := c.layer(layerAlias)
	next.alias = alias
	next.source = source
	return next
}

// OverrideResultTuple layers a context replacing the visible result
// column tuple while retaining source visibility.
func (c *DataContext) OverrideResultTuple(columns []*Symbol) *DataContext {
	next := c.layer(layerTuple)
	next.columns = columns
	return next
}

// Combine concatenates two contexts' source visibility and column
// tuples, left then right. Used for joins and cross products.
func (c *DataContext) Combine(other *DataContext) *DataContext {
	next := c.layer(layerCombined)
	next.right = other
	return next
}

// HideSources layers a context discarding source and alias visibility
// while retaining the result column tuple. This is the scope boundary
// at a SELECT projection: outer references may see this level's output
// columns but not its FROM-clause names.
func (c *DataContext) HideSources() *DataContext {
	return c.layer(layerHidden)
}

// FindRealTable resolves a table existing outside the query via the
// schema provider.
func (c *DataContext) FindRealTable(path []string) (catalog.Table, bool) {
	if c.provider == nil {
		return nil, false
	}
	return c.provider.FindTable(path)
}

// ResolveSource matches a dotted name path against the visible real
// tables and correlation aliases, innermost layer first. Returns nil
// when nothing matches.
func (c *DataContext) ResolveSource(path []string) *SourceResolutionResult {
	if len(path) == 0 {
		return nil
	}
	switch c.kind {
	case layerBase, layerHidden:
		// A hidden layer is a hard scope boundary; the base layer has
		// no sources at all.
		return nil
	case layerAlias:
		if len(path) == 1 && strings.EqualFold(path[0], c.alias.Name()) {
			return &SourceResolutionResult{Source: c.source, Alias: c.alias}
		}
		return c.parent.ResolveSource(path)
	case layerTable:
		if catalog.PathMatches(c.table.Path(), path) {
			return &SourceResolutionResult{Source: c.tableOwner, Table: c.table}
		}
		return c.parent.ResolveSource(path)
	case layerCombined:
		if r := c.parent.ResolveSource(path); r != nil {
			return r
		}
		return c.right.ResolveSource(path)
	default: // layerTuple
		return c.parent.ResolveSource(path)
	}
}

// ResolveColumn looks a bare column name up in the current result
// tuple. The first match wins; no multi-match ambiguity is flagged.
// Returns nil when no column matches.
func (c *DataContext) ResolveColumn(name string) SymbolDefinition {
	for _, col := range c.Columns() {
		if strings.EqualFold(col.Name(), name) {
			if def := col.Definition(); def != nil {
				return def
			}
			return &SymbolReference{Symbol: col}
		}
	}
	return nil
}

// Columns returns the ordered result column tuple visible here.
func (c *DataContext) Columns() []*Symbol {
	switch c.kind {
	case layerBase:
		return nil
	case layerTuple:
		return c.columns
	case layerCombined:
		left := c.parent.Columns()
		right := c.right.Columns()
		combined := make([]*Symbol, 0, len(left)+len(right))
		combined = append(combined, left...)
		return append(combined, right...)
	default:
		return c.parent.Columns()
	}
}
