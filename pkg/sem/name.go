package sem

import "strings"

// QualifiedName is a dotted name occurrence (catalog.schema.entity);
// the catalog and schema parts are optional. Each part is a separate
// symbol entry so the parts classify independently.
type QualifiedName struct {
	Catalog *SymbolEntry
	Schema  *SymbolEntry
	Entity  *SymbolEntry
}

// Parts returns the name components, outermost first.
func (n *QualifiedName) Parts() []string {
	var parts []string
	if n.Catalog != nil {
		parts = append(parts, n.Catalog.Name())
	}
	if n.Schema != nil {
		parts = append(parts, n.Schema.Name())
	}
	return append(parts, n.Entity.Name())
}

// String returns the dotted form of the name.
func (n *QualifiedName) String() string {
	return strings.Join(n.Parts(), ".")
}

// SetDefinition binds the entity part to the given definition and
// classifies the qualifier parts. Qualifier symbols shared with other
// occurrences keep their earlier classification.
func (n *QualifiedName) SetDefinition(def SymbolDefinition) error {
	if err := n.Entity.SetDefinition(def); err != nil {
		return err
	}
	entity := n.Entity.Symbol()
	if entity.Class() == ClassUnknown {
		c := def.SymbolClass()
		if c == ClassUnknown {
			c = ClassTable
		}
		if err := entity.SetClass(c); err != nil {
			return err
		}
	}
	if n.Schema != nil && n.Schema.Symbol().Class() == ClassUnknown {
		if err := n.Schema.Symbol().SetClass(ClassSchema); err != nil {
			return err
		}
	}
	if n.Catalog != nil && n.Catalog.Symbol().Class() == ClassUnknown {
		if err := n.Catalog.Symbol().SetClass(ClassCatalog); err != nil {
			return err
		}
	}
	return nil
}

// MarkError classifies all unclassified parts of the name as erroneous.
func (n *QualifiedName) MarkError() {
	markError(n.Entity.Symbol())
	if n.Schema != nil {
		markError(n.Schema.Symbol())
	}
	if n.Catalog != nil {
		markError(n.Catalog.Symbol())
	}
}
