package sem

// ValueExpression is one node of a scalar or boolean expression tree.
// Expressions consume a context to resolve the column references and
// subqueries they contain; they own no context of their own.
type ValueExpression interface {
	// PropagateContext resolves identifiers within the expression
	// against the given scope, recording semantic problems in rec.
	PropagateContext(ctx *DataContext, rec *RecognitionContext) error

	// TrivialColumnSymbol returns the referenced column's symbol for a
	// bare column reference, nil otherwise. Projection expansion uses
	// it to preserve column identity when no alias is given.
	TrivialColumnSymbol() *Symbol
}

// SubqueryExpression is a subquery used as a value (scalar subquery,
// EXISTS, IN (SELECT ...)). The inner rows source tree resolves against
// the current context, which is what enables correlated subqueries.
type SubqueryExpression struct {
	Source RowsSource
}

// PropagateContext propagates the inner rows source tree.
func (e *SubqueryExpression) PropagateContext(ctx *DataContext, rec *RecognitionContext) error {
	_, err := e.Source.PropagateContext(ctx, rec)
	return err
}

// TrivialColumnSymbol returns nil; a subquery is never a bare column.
func (e *SubqueryExpression) TrivialColumnSymbol() *Symbol { return nil }

// FlattenedExpression is a compound expression reduced to its operand
// list. Operator structure is irrelevant to name resolution, so nested
// arithmetic, comparisons, and function calls flatten into one node.
type FlattenedExpression struct {
	Operands []ValueExpression
}

// PropagateContext resolves every operand.
func (e *FlattenedExpression) PropagateContext(ctx *DataContext, rec *RecognitionContext) error {
	for _, operand := range e.Operands {
		if err := operand.PropagateContext(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// TrivialColumnSymbol returns nil; a compound expression is not a bare
// column reference even when it contains exactly one.
func (e *FlattenedExpression) TrivialColumnSymbol() *Symbol { return nil }

// LiteralExpression is a constant leaf; it resolves nothing.
type LiteralExpression struct{}

// PropagateContext is a no-op for literals.
func (e *LiteralExpression) PropagateContext(*DataContext, *RecognitionContext) error { return nil }

// TrivialColumnSymbol returns nil.
func (e *LiteralExpression) TrivialColumnSymbol() *Symbol { return nil }

// ColumnReferenceExpression is a column reference, optionally qualified
// with a table name.
type ColumnReferenceExpression struct {
	TableName *QualifiedName // nil for unqualified references
	Column    *SymbolEntry
}

// TrivialColumnSymbol returns the referenced column's symbol.
func (e *ColumnReferenceExpression) TrivialColumnSymbol() *Symbol {
	return e.Column.Symbol()
}

// propagateColumnDefinition binds the occurrence to the resolved
// definition, or classifies it erroneous with a diagnostic.
func (e *ColumnReferenceExpression) propagateColumnDefinition(def SymbolDefinition, rec *RecognitionContext) error {
	if def == nil {
		markError(e.Column.Symbol())
		rec.AppendEntryError(e.Column, "Column not found in dataset")
		return nil
	}
	return e.Column.SetDefinition(def)
}

// PropagateContext resolves the reference: a qualified name resolves
// its source first and looks the column up in that source's output
// tuple; an unqualified name resolves directly against the current
// tuple.
func (e *ColumnReferenceExpression) PropagateContext(ctx *DataContext, rec *RecognitionContext) error {
	if e.TableName == nil {
		return e.propagateColumnDefinition(ctx.ResolveColumn(e.Column.Name()), rec)
	}

	rr := ctx.ResolveSource(e.TableName.Parts())
	if rr == nil {
		e.TableName.MarkError()
		rec.AppendEntryError(e.TableName.Entity, "Table or subquery not found")
		return nil
	}
	if err := e.TableName.SetDefinition(rr); err != nil {
		return err
	}
	sourceCtx, err := rr.Source.Context()
	if err != nil {
		return err
	}
	return e.propagateColumnDefinition(sourceCtx.ResolveColumn(e.Column.Name()), rec)
}
