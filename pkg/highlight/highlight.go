// Package highlight renders resolved symbol classifications: styled
// terminal output for the CLI and semantic token kinds for editor
// integration.
package highlight

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/semql/pkg/sem"
)

var (
	catalogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))

	schemaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))

	tableStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	aliasStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Italic(true)

	columnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	derivedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true).
			Underline(true)
)

var classStyles = map[sem.SymbolClass]lipgloss.Style{
	sem.ClassCatalog:       catalogStyle,
	sem.ClassSchema:        schemaStyle,
	sem.ClassTable:         tableStyle,
	sem.ClassTableAlias:    aliasStyle,
	sem.ClassColumn:        columnStyle,
	sem.ClassColumnDerived: derivedStyle,
	sem.ClassError:         errorStyle,
}

// ClassOf determines the display class of one symbol occurrence: the
// occurrence's resolved definition wins over the symbol-wide class,
// unless the definition itself carries no class (alias defining
// occurrences do not).
func ClassOf(e *sem.SymbolEntry) sem.SymbolClass {
	if def := e.Definition(); def != nil {
		if c := def.SymbolClass(); c != sem.ClassUnknown {
			return c
		}
	}
	return e.Symbol().Class()
}

// Render re-emits the statement text with every resolved symbol
// occurrence styled by its class. Unclassified occurrences pass
// through unstyled.
func Render(sql string, entries []*sem.SymbolEntry) string {
	var out strings.Builder
	last := 0
	for _, e := range entries {
		span := e.Span()
		if span.Start.Offset < last || span.End.Offset > len(sql) {
			continue
		}
		style, ok := classStyles[ClassOf(e)]
		if !ok {
			continue
		}
		out.WriteString(sql[last:span.Start.Offset])
		out.WriteString(style.Render(sql[span.Start.Offset:span.End.Offset]))
		last = span.End.Offset
	}
	out.WriteString(sql[last:])
	return out.String()
}

// TokenType names follow the LSP semantic token conventions so editor
// clients can consume classifications directly.
func TokenType(c sem.SymbolClass) string {
	switch c {
	case sem.ClassCatalog, sem.ClassSchema:
		return "namespace"
	case sem.ClassTable:
		return "class"
	case sem.ClassTableAlias:
		return "variable"
	case sem.ClassColumn:
		return "property"
	case sem.ClassColumnDerived:
		return "parameter"
	default:
		return ""
	}
}
