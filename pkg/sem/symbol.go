// Package sem performs static semantic resolution of parsed SQL SELECT
// statements: for every identifier occurrence it determines what the
// identifier refers to (table, column, alias, or nothing), classifies
// it, and records diagnostics for unresolved or ambiguous references.
//
// Resolution is a single-threaded, recursive-descent pass over a rows
// source tree. It binds names only; it performs no type inference and
// executes nothing.
package sem

import (
	"github.com/leapstack-labs/semql/pkg/catalog"
	"github.com/leapstack-labs/semql/pkg/token"
)

// SymbolClass classifies a resolved symbol.
type SymbolClass int

// Symbol classes. A symbol starts as ClassUnknown and is classified
// exactly once.
const (
	ClassUnknown SymbolClass = iota
	ClassCatalog
	ClassSchema
	ClassTable
	ClassTableAlias
	ClassColumn
	ClassColumnDerived // computed or aliased result column
	ClassError
)

var classNames = map[SymbolClass]string{
	ClassUnknown:       "unknown",
	ClassCatalog:       "catalog",
	ClassSchema:        "schema",
	ClassTable:         "table",
	ClassTableAlias:    "table-alias",
	ClassColumn:        "column",
	ClassColumnDerived: "column-derived",
	ClassError:         "error",
}

func (c SymbolClass) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return "unknown"
}

// SymbolDefinition is what a symbol resolves to. Implementations are
// ObjectDefinition (a catalog object), SymbolEntry (another occurrence,
// e.g. an alias), SourceResolutionResult (a resolved rows source), and
// SymbolReference (an existing column symbol).
type SymbolDefinition interface {
	SymbolClass() SymbolClass
}

// ObjectDefinition binds a symbol to a catalog object.
type ObjectDefinition struct {
	Table     catalog.Table
	Attribute *catalog.Attribute // nil when the object is the table itself
	Class     SymbolClass
}

// SymbolClass returns the class assigned to the bound object.
func (d *ObjectDefinition) SymbolClass() SymbolClass { return d.Class }

// SymbolReference is a definition pointing at an existing column symbol,
// used when a bare column name resolves against a result tuple whose
// symbol carries no definition of its own.
type SymbolReference struct {
	Symbol *Symbol
}

// SymbolClass returns the referenced symbol's class, or column-derived
// when the referenced symbol is still unclassified.
func (r *SymbolReference) SymbolClass() SymbolClass {
	if c := r.Symbol.Class(); c != ClassUnknown {
		return c
	}
	return ClassColumnDerived
}

// Symbol is a uniquely named entity encountered in the source text,
// deduplicated by normalized name. It owns the set of textual
// occurrences (entries) referring to it. Classification and definition
// are each set at most once.
type Symbol struct {
	name    string
	entries []*SymbolEntry
	class   SymbolClass
	def     SymbolDefinition
}

// NewSymbol creates an unclassified symbol.
func NewSymbol(name string) *Symbol {
	return &Symbol{name: name}
}

// Name returns the symbol's name as first seen in the source.
func (s *Symbol) Name() string { return s.name }

// Class returns the symbol's classification.
func (s *Symbol) Class() SymbolClass { return s.class }

// SetClass assigns the classification. A symbol is classified exactly
// once; a second assignment is an invariant violation.
func (s *Symbol) SetClass(c SymbolClass) error {
	if s.class != ClassUnknown {
		return ErrAlreadyClassified
	}
	s.class = c
	return nil
}

// Definition returns the symbol's definition, or nil if unresolved.
func (s *Symbol) Definition() SymbolDefinition { return s.def }

// SetDefinition assigns the definition and derives the classification
// from it when the symbol is not classified yet. The definition is set
// at most once.
func (s *Symbol) SetDefinition(def SymbolDefinition) error {
	if def == nil {
		return nil
	}
	if s.def != nil {
		return ErrSymbolRedefined
	}
	s.def = def
	if c := def.SymbolClass(); c != ClassUnknown && s.class == ClassUnknown {
		s.class = c
	}
	return nil
}

// Entries returns all occurrences referring to this symbol.
func (s *Symbol) Entries() []*SymbolEntry { return s.entries }

// NewEntry records a new occurrence of this symbol at the given span.
func (s *Symbol) NewEntry(span token.Span) *SymbolEntry {
	e := &SymbolEntry{symbol: s, span: span}
	s.entries = append(s.entries, e)
	return e
}

// Merge folds another symbol's occurrences into this one and returns
// the receiver as the canonical symbol. Entries of the other symbol are
// re-pointed; when the names differ the receiver's name wins.
func (s *Symbol) Merge(other *Symbol) *Symbol {
	if other == nil || other == s {
		return s
	}
	for _, e := range other.entries {
		e.symbol = s
		s.entries = append(s.entries, e)
	}
	other.entries = nil
	return s
}

// markError classifies a symbol as erroneous if it has no class yet.
// Soft failures never abort the pass, so a symbol that already carries
// a classification keeps it.
func markError(s *Symbol) {
	if s.class == ClassUnknown {
		s.class = ClassError
	}
}

// SymbolEntry is one textual occurrence of a symbol. The entry holds a
// weak back-reference to its symbol and its own set-once definition
// slot, used when an occurrence resolves independently of the symbol's
// other occurrences (e.g. join correlation names).
type SymbolEntry struct {
	symbol *Symbol
	span   token.Span
	def    SymbolDefinition
}

// Name returns the owning symbol's name.
func (e *SymbolEntry) Name() string { return e.symbol.name }

// Symbol returns the owning symbol.
func (e *SymbolEntry) Symbol() *Symbol { return e.symbol }

// Span returns the occurrence's source span.
func (e *SymbolEntry) Span() token.Span { return e.span }

// Definition returns the entry's own definition if set, falling back
// to the owning symbol's definition.
func (e *SymbolEntry) Definition() SymbolDefinition {
	if e.def != nil {
		return e.def
	}
	return e.symbol.def
}

// SetDefinition assigns the entry's own definition, at most once.
func (e *SymbolEntry) SetDefinition(def SymbolDefinition) error {
	if def == nil {
		return nil
	}
	if e.def != nil {
		return ErrEntryRedefined
	}
	e.def = def
	return nil
}

// SymbolClass makes an entry usable as a definition for another symbol
// (alias chains). It reports the entry's resolved class, or unknown
// when the entry has no definition of its own.
func (e *SymbolEntry) SymbolClass() SymbolClass {
	if e.def != nil {
		return e.def.SymbolClass()
	}
	return ClassUnknown
}
