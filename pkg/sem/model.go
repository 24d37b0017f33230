package sem

import (
	"context"

	"github.com/leapstack-labs/semql/pkg/catalog"
)

// SelectionModel is the resolved form of one SELECT statement: the
// rows source tree plus the universe of symbol entries collected while
// building it. One model serves exactly one statement.
type SelectionModel struct {
	source  RowsSource
	entries []*SymbolEntry
}

// NewSelectionModel creates a model over a rows source tree and its
// symbol-entry universe.
func NewSelectionModel(source RowsSource, entries []*SymbolEntry) *SelectionModel {
	return &SelectionModel{source: source, entries: entries}
}

// Source returns the top-level rows source.
func (m *SelectionModel) Source() RowsSource { return m.source }

// AllEntries returns every symbol occurrence of the statement, in
// source order. Consumers read each entry's resolved class and
// definition to drive highlighting and completion.
func (m *SelectionModel) AllEntries() []*SymbolEntry { return m.entries }

// Propagate runs the resolution pass: one depth-first traversal of the
// rows source tree against the initial scope. A non-nil error reports a
// broken propagation order, never a semantic problem.
func (m *SelectionModel) Propagate(ctx *DataContext, rec *RecognitionContext) error {
	_, err := m.source.PropagateContext(ctx, rec)
	return err
}

// ResultColumns returns the statement's output schema: the resolved
// top-level column tuple. Fails with ErrNotResolved before Propagate.
func (m *SelectionModel) ResultColumns() ([]*Symbol, error) {
	resolved, err := m.source.Context()
	if err != nil {
		return nil, err
	}
	return resolved.Columns(), nil
}

// Resolve is the top-level driver: it resolves a model against a
// schema provider and returns the collected diagnostics. The context
// bounds the pass; cancellation stops traversal with a terminal
// diagnostic.
func Resolve(ctx context.Context, model *SelectionModel, provider catalog.Provider) ([]Diagnostic, error) {
	rec := NewRecognitionContext(ctx)
	if err := model.Propagate(NewDataContext(provider), rec); err != nil {
		return rec.Diagnostics(), err
	}
	return rec.Diagnostics(), nil
}
