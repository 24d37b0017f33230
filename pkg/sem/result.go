package sem

// SublistSpec is one element of a parsed select list: a single
// expression with an optional alias, a qualified wildcard (t.*), or a
// bare wildcard (*).
type SublistSpec interface {
	expand(ctx *DataContext, rec *RecognitionContext) ([]*Symbol, error)
}

// ColumnSpec is a single projected expression with an optional alias.
type ColumnSpec struct {
	Expr  ValueExpression
	Alias *SymbolEntry // nil when no AS clause is present
}

// expand resolves the expression and determines the output column
// symbol: the alias if given (classified column-derived regardless of
// whether the expression resolved), the referenced column for a bare
// reference, or a fresh unnamed placeholder.
func (s *ColumnSpec) expand(ctx *DataContext, rec *RecognitionContext) ([]*Symbol, error) {
	if err := s.Expr.PropagateContext(ctx, rec); err != nil {
		return nil, err
	}

	if s.Alias != nil {
		column := s.Alias.Symbol()
		if err := column.SetDefinition(s.Alias); err != nil {
			return nil, err
		}
		if column.Class() == ClassUnknown {
			if err := column.SetClass(ClassColumnDerived); err != nil {
				return nil, err
			}
		}
		return []*Symbol{column}, nil
	}

	if column := s.Expr.TrivialColumnSymbol(); column != nil {
		return []*Symbol{column}, nil
	}
	return []*Symbol{NewSymbol("?")}, nil
}

// TupleSpec is a qualified wildcard: table.* over a visible source.
type TupleSpec struct {
	TableName *QualifiedName
}

// expand emits the resolved source's entire column tuple, or nothing
// with a diagnostic when the name is not a visible source.
func (s *TupleSpec) expand(ctx *DataContext, rec *RecognitionContext) ([]*Symbol, error) {
	rr := ctx.ResolveSource(s.TableName.Parts())
	if rr == nil {
		s.TableName.MarkError()
		rec.AppendEntryError(s.TableName.Entity, "The table doesn't participate in this context")
		return nil, nil
	}
	if err := s.TableName.SetDefinition(rr); err != nil {
		return nil, err
	}
	sourceCtx, err := rr.Source.Context()
	if err != nil {
		return nil, err
	}
	return sourceCtx.Columns(), nil
}

// CompleteTupleSpec is the bare wildcard: the current context's column
// tuple, unchanged.
type CompleteTupleSpec struct{}

func (s *CompleteTupleSpec) expand(ctx *DataContext, _ *RecognitionContext) ([]*Symbol, error) {
	return ctx.Columns(), nil
}

// SelectionResult is the parsed select list: an ordered sequence of
// sublist specs expanded left to right.
type SelectionResult struct {
	Sublists []SublistSpec
}

// NewSelectionResult creates a selection result over the given specs.
func NewSelectionResult(sublists ...SublistSpec) *SelectionResult {
	return &SelectionResult{Sublists: sublists}
}

// ExpandColumns produces the ordered output column symbols for the
// select list against the given context.
func (r *SelectionResult) ExpandColumns(ctx *DataContext, rec *RecognitionContext) ([]*Symbol, error) {
	var columns []*Symbol
	for _, sublist := range r.Sublists {
		expanded, err := sublist.expand(ctx, rec)
		if err != nil {
			return nil, err
		}
		columns = append(columns, expanded...)
	}
	return columns, nil
}
