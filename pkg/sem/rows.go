package sem

import (
	"github.com/leapstack-labs/semql/pkg/catalog"
	"github.com/leapstack-labs/semql/pkg/token"
)

// RowsSource is one node of the FROM-clause structure: a table, join,
// subquery, set operation, filter, or projection. A node is resolved by
// exactly one PropagateContext call; the resolved context is memoized
// and exposed read-only through Context.
type RowsSource interface {
	// PropagateContext resolves the node against the incoming scope,
	// recording semantic problems in rec. Called at most once per node;
	// a second call fails with ErrAlreadyResolved. A non-nil error
	// signals a broken propagation order, never a semantic problem.
	PropagateContext(ctx *DataContext, rec *RecognitionContext) (*DataContext, error)

	// Context returns the memoized resolved context, or ErrNotResolved
	// before propagation.
	Context() (*DataContext, error)
}

// baseSource carries the resolve-once memoization shared by all rows
// source variants.
type baseSource struct {
	resolved *DataContext
}

// Context returns the resolved context, or ErrNotResolved.
func (b *baseSource) Context() (*DataContext, error) {
	if b.resolved == nil {
		return nil, ErrNotResolved
	}
	return b.resolved, nil
}

// begin guards a propagation call: rejects re-propagation and honors
// pass cancellation before any state is touched.
func (b *baseSource) begin(rec *RecognitionContext) error {
	if b.resolved != nil {
		return ErrAlreadyResolved
	}
	return rec.interrupted()
}

// finish memoizes the resolved context.
func (b *baseSource) finish(ctx *DataContext) *DataContext {
	b.resolved = ctx
	return ctx
}

// EmptySource is a rows source producing no tables and no columns; it
// propagates the incoming context unchanged. It backs FROM-less
// selects and table value constructors.
type EmptySource struct {
	baseSource
}

// NewEmptySource creates an empty rows source.
func NewEmptySource() *EmptySource { return &EmptySource{} }

// PropagateContext passes the incoming context through unchanged.
func (s *EmptySource) PropagateContext(ctx *DataContext, rec *RecognitionContext) (*DataContext, error) {
	if err := s.begin(rec); err != nil {
		return nil, err
	}
	return s.finish(ctx), nil
}

// TableSource references a real table by qualified name. It doubles as
// the symbol definition for that name once resolved.
type TableSource struct {
	baseSource
	name  *QualifiedName
	table catalog.Table
}

// NewTableSource creates a table reference node.
func NewTableSource(name *QualifiedName) *TableSource {
	return &TableSource{name: name}
}

// Name returns the referenced qualified name.
func (t *TableSource) Name() *QualifiedName { return t.name }

// Table returns the resolved table handle, or nil before resolution or
// on failure.
func (t *TableSource) Table() catalog.Table { return t.table }

// SymbolClass makes a table source usable as a symbol definition.
func (t *TableSource) SymbolClass() SymbolClass {
	if t.table != nil {
		return ClassTable
	}
	return ClassError
}

// PropagateContext resolves the table via the schema provider. A
// missing table or failed attribute listing is a diagnostic, not a
// failure of the pass.
func (t *TableSource) PropagateContext(ctx *DataContext, rec *RecognitionContext) (*DataContext, error) {
	if err := t.begin(rec); err != nil {
		return nil, err
	}

	table, ok := ctx.FindRealTable(t.name.Parts())
	if !ok {
		t.name.MarkError()
		rec.AppendEntryError(t.name.Entity, "Table not found")
		return t.finish(ctx), nil
	}

	t.table = table
	if err := t.name.SetDefinition(t); err != nil {
		return nil, err
	}

	ctx = ctx.ExtendWithRealTable(table, t)
	attrs, err := ctx.Provider().Attributes(table)
	if err != nil {
		rec.AppendErrorCause(t.name.Entity.Span(), "Failed to resolve table columns", err)
		return t.finish(ctx), nil
	}

	columns := make([]*Symbol, 0, len(attrs))
	for i := range attrs {
		attr := attrs[i]
		if attr.Hidden {
			continue
		}
		sym := NewSymbol(attr.Name)
		if err := sym.SetDefinition(&ObjectDefinition{Table: table, Attribute: &attr, Class: ClassColumn}); err != nil {
			return nil, err
		}
		columns = append(columns, sym)
	}
	return t.finish(ctx.OverrideResultTuple(columns)), nil
}

// CorrelatedSource wraps a source with a correlation alias and an
// optional positional column rename list.
type CorrelatedSource struct {
	baseSource
	source      RowsSource
	alias       *SymbolEntry
	columnNames []*SymbolEntry
}

// NewCorrelatedSource creates an alias wrapper over a source.
func NewCorrelatedSource(source RowsSource, alias *SymbolEntry, columnNames []*SymbolEntry) *CorrelatedSource {
	return &CorrelatedSource{source: source, alias: alias, columnNames: columnNames}
}

// PropagateContext propagates through the wrapped source, layers the
// alias, and applies the positional column renames if present. Extra
// rename names beyond the available columns are ignored.
func (c *CorrelatedSource) PropagateContext(ctx *DataContext, rec *RecognitionContext) (*DataContext, error) {
	if err := c.begin(rec); err != nil {
		return nil, err
	}

	inner, err := c.source.PropagateContext(ctx, rec)
	if err != nil {
		return nil, err
	}
	// The alias replaces the wrapped source's own name, so the layer
	// goes over the incoming scope rather than the wrapped context: the
	// original table name must not stay visible through the alias. The
	// alias resolves to this node, not the wrapped source, because a
	// qualified reference through the alias must see the renamed tuple.
	result := ctx.ExtendWithTableAlias(c.alias.Symbol(), c).OverrideResultTuple(inner.Columns())
	if err := c.alias.Symbol().SetDefinition(c.alias); err != nil {
		return nil, err
	}
	if c.alias.Symbol().Class() == ClassUnknown {
		if err := c.alias.Symbol().SetClass(ClassTableAlias); err != nil {
			return nil, err
		}
	}

	if len(c.columnNames) > 0 {
		existing := result.Columns()
		columns := make([]*Symbol, len(existing))
		copy(columns, existing)
		for i := 0; i < len(columns) && i < len(c.columnNames); i++ {
			renamed := c.columnNames[i]
			if err := renamed.SetDefinition(columns[i].Definition()); err != nil {
				return nil, err
			}
			if err := renamed.Symbol().SetDefinition(renamed); err != nil {
				return nil, err
			}
			columns[i] = renamed.Symbol()
		}
		result = result.OverrideResultTuple(columns)
	}

	return c.finish(result), nil
}

// CrossJoinSource is a cross product of two branches. Each branch is
// resolved against the same incoming context; neither sees its sibling.
type CrossJoinSource struct {
	baseSource
	left, right RowsSource
}

// NewCrossJoinSource creates a cross join node.
func NewCrossJoinSource(left, right RowsSource) *CrossJoinSource {
	return &CrossJoinSource{left: left, right: right}
}

// PropagateContext combines the branch contexts left-then-right.
func (j *CrossJoinSource) PropagateContext(ctx *DataContext, rec *RecognitionContext) (*DataContext, error) {
	if err := j.begin(rec); err != nil {
		return nil, err
	}
	left, err := j.left.PropagateContext(ctx, rec)
	if err != nil {
		return nil, err
	}
	right, err := j.right.PropagateContext(ctx, rec)
	if err != nil {
		return nil, err
	}
	return j.finish(left.Combine(right)), nil
}

// NaturalJoinSource is a qualified or natural join: two branches with
// either a USING column list or an ON condition.
type NaturalJoinSource struct {
	baseSource
	left, right   RowsSource
	condition     ValueExpression
	columnsToJoin []*SymbolEntry
}

// NewConditionJoinSource creates a join with an ON condition. The
// condition resolves against the combined context of both branches.
func NewConditionJoinSource(left, right RowsSource, condition ValueExpression) *NaturalJoinSource {
	return &NaturalJoinSource{left: left, right: right, condition: condition}
}

// NewUsingJoinSource creates a join with explicit USING column names.
// Each name must resolve on both sides.
func NewUsingJoinSource(left, right RowsSource, columns []*SymbolEntry) *NaturalJoinSource {
	return &NaturalJoinSource{left: left, right: right, columnsToJoin: columns}
}

// PropagateContext resolves both branches from the incoming context,
// checks the USING names against each side, and resolves the ON
// condition against the combined context.
func (j *NaturalJoinSource) PropagateContext(ctx *DataContext, rec *RecognitionContext) (*DataContext, error) {
	if err := j.begin(rec); err != nil {
		return nil, err
	}
	left, err := j.left.PropagateContext(ctx, rec)
	if err != nil {
		return nil, err
	}
	right, err := j.right.PropagateContext(ctx, rec)
	if err != nil {
		return nil, err
	}

	for _, column := range j.columnsToJoin {
		sym := column.Symbol()
		leftDef := left.ResolveColumn(column.Name())
		rightDef := right.ResolveColumn(column.Name())
		if leftDef != nil && rightDef != nil {
			if sym.Class() == ClassUnknown {
				if err := sym.SetClass(ClassColumn); err != nil {
					return nil, err
				}
			}
			if err := sym.SetDefinition(column); err != nil {
				return nil, err
			}
		} else {
			if leftDef != nil {
				rec.AppendEntryError(column, "Column not found to the right of join")
			} else {
				rec.AppendEntryError(column, "Column not found to the left of join")
			}
			markError(sym)
		}
	}

	combined := left.Combine(right)
	if j.condition != nil {
		if err := j.condition.PropagateContext(combined, rec); err != nil {
			return nil, err
		}
	}
	return j.finish(combined), nil
}

// SetOpKind discriminates set operations.
type SetOpKind int

// Set operation kinds.
const (
	SetUnion SetOpKind = iota
	SetIntersect
	SetExcept
)

func (k SetOpKind) String() string {
	switch k {
	case SetIntersect:
		return "INTERSECT"
	case SetExcept:
		return "EXCEPT"
	default:
		return "UNION"
	}
}

// SetOperationSource is a UNION, INTERSECT, or EXCEPT of two branches,
// optionally narrowed to an explicit corresponding column list.
type SetOperationSource struct {
	baseSource
	kind          SetOpKind
	span          token.Span
	left, right   RowsSource
	corresponding []*SymbolEntry
}

// NewSetOperationSource creates a set operation node. The span locates
// the operator for mismatch diagnostics; corresponding may be empty for
// positional matching.
func NewSetOperationSource(kind SetOpKind, span token.Span, left, right RowsSource, corresponding []*SymbolEntry) *SetOperationSource {
	return &SetOperationSource{kind: kind, span: span, left: left, right: right, corresponding: corresponding}
}

// Kind returns the set operation kind.
func (s *SetOperationSource) Kind() SetOpKind { return s.kind }

// PropagateContext resolves both branches from the same incoming
// context and builds the result tuple: positional merge when no
// corresponding list is given, otherwise exactly the listed columns
// checked against both branches. Mismatches are diagnosed but the
// tuple is still emitted best-effort.
func (s *SetOperationSource) PropagateContext(ctx *DataContext, rec *RecognitionContext) (*DataContext, error) {
	if err := s.begin(rec); err != nil {
		return nil, err
	}
	left, err := s.left.PropagateContext(ctx, rec)
	if err != nil {
		return nil, err
	}
	right, err := s.right.PropagateContext(ctx, rec)
	if err != nil {
		return nil, err
	}

	mismatch := false
	var result *DataContext

	if len(s.corresponding) == 0 {
		leftColumns := left.Columns()
		rightColumns := right.Columns()
		n := len(leftColumns)
		if len(rightColumns) > n {
			n = len(rightColumns)
		}
		columns := make([]*Symbol, 0, n)
		for i := 0; i < n; i++ {
			switch {
			case i >= len(leftColumns):
				columns = append(columns, rightColumns[i])
				mismatch = true
			case i >= len(rightColumns):
				columns = append(columns, leftColumns[i])
				mismatch = true
			default:
				columns = append(columns, leftColumns[i].Merge(rightColumns[i]))
			}
		}
		// The left branch context stays the working scope; the merge
		// only defines the exposed column tuple.
		result = left.OverrideResultTuple(columns)
	} else {
		columns := make([]*Symbol, 0, len(s.corresponding))
		for _, column := range s.corresponding {
			leftDef := left.ResolveColumn(column.Name())
			rightDef := right.ResolveColumn(column.Name())
			if leftDef == nil || rightDef == nil {
				mismatch = true
				markError(column.Symbol())
			} else {
				if column.Symbol().Class() == ClassUnknown {
					if err := column.Symbol().SetClass(ClassColumn); err != nil {
						return nil, err
					}
				}
				if column.Symbol().Definition() == nil {
					if err := column.Symbol().SetDefinition(column); err != nil {
						return nil, err
					}
				}
			}
			columns = append(columns, column.Symbol())
		}
		result = ctx.OverrideResultTuple(columns)
	}

	if mismatch {
		rec.AppendError(s.span, s.kind.String()+" requires corresponding column sets to match")
	}
	return s.finish(result), nil
}

// SelectionFilterSource holds the WHERE, HAVING, GROUP BY, and ORDER BY
// clauses over a FROM source. Filters do not alter the visible columns;
// the wrapped source's context passes through unchanged.
type SelectionFilterSource struct {
	baseSource
	from                            RowsSource
	where, having, groupBy, orderBy ValueExpression
}

// NewSelectionFilterSource creates a filter wrapper; absent clauses are
// nil and skipped.
func NewSelectionFilterSource(from RowsSource, where, having, groupBy, orderBy ValueExpression) *SelectionFilterSource {
	return &SelectionFilterSource{from: from, where: where, having: having, groupBy: groupBy, orderBy: orderBy}
}

// PropagateContext resolves the FROM source and then each present
// clause against its context.
func (f *SelectionFilterSource) PropagateContext(ctx *DataContext, rec *RecognitionContext) (*DataContext, error) {
	if err := f.begin(rec); err != nil {
		return nil, err
	}
	result, err := f.from.PropagateContext(ctx, rec)
	if err != nil {
		return nil, err
	}
	for _, clause := range []ValueExpression{f.where, f.having, f.groupBy, f.orderBy} {
		if clause == nil {
			continue
		}
		if err := clause.PropagateContext(result, rec); err != nil {
			return nil, err
		}
	}
	return f.finish(result), nil
}

// ProjectionSource is the SELECT list over a FROM source. It is the
// scope boundary: after projection the inner table and alias names are
// no longer visible above this node.
type ProjectionSource struct {
	baseSource
	from   RowsSource
	result *SelectionResult
}

// NewProjectionSource creates a projection node.
func NewProjectionSource(from RowsSource, result *SelectionResult) *ProjectionSource {
	return &ProjectionSource{from: from, result: result}
}

// PropagateContext expands the select list against the FROM context,
// overrides the result tuple, and hides the sources.
func (p *ProjectionSource) PropagateContext(ctx *DataContext, rec *RecognitionContext) (*DataContext, error) {
	if err := p.begin(rec); err != nil {
		return nil, err
	}
	inner, err := p.from.PropagateContext(ctx, rec)
	if err != nil {
		return nil, err
	}
	columns, err := p.result.ExpandColumns(inner, rec)
	if err != nil {
		return nil, err
	}
	return p.finish(inner.OverrideResultTuple(columns).HideSources()), nil
}
