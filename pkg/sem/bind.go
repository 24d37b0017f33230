package sem

import (
	"context"
	"sort"

	"github.com/leapstack-labs/semql/pkg/catalog"
	"github.com/leapstack-labs/semql/pkg/parser"
)

// Bind lowers a parsed select statement into a selection model ready
// for resolution. Binding is pure construction: it allocates symbols
// and wires the rows source tree, but resolves nothing.
func Bind(stmt *parser.SelectStmt) *SelectionModel {
	b := &binder{}
	source := b.bindBody(stmt.Body)
	sort.SliceStable(b.entries, func(i, j int) bool {
		return b.entries[i].Span().Start.Offset < b.entries[j].Span().Start.Offset
	})
	return NewSelectionModel(source, b.entries)
}

// Analyze parses, binds, and resolves one statement against a schema
// provider. Parse errors fail the call; semantic problems come back as
// diagnostics alongside the resolved model.
func Analyze(ctx context.Context, sql string, provider catalog.Provider) (*SelectionModel, []Diagnostic, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return nil, nil, err
	}
	model := Bind(stmt)
	diags, err := Resolve(ctx, model, provider)
	if err != nil {
		return nil, diags, err
	}
	return model, diags, nil
}

// binder accumulates the symbol occurrences of one statement while
// lowering the syntax tree. Every occurrence gets its own symbol; two
// occurrences of the same name are tied together during resolution,
// not here.
type binder struct {
	entries []*SymbolEntry
}

func (b *binder) entry(id parser.Ident) *SymbolEntry {
	e := NewSymbol(id.Name).NewEntry(id.Span)
	b.entries = append(b.entries, e)
	return e
}

func (b *binder) entryOrNil(id *parser.Ident) *SymbolEntry {
	if id == nil {
		return nil
	}
	return b.entry(*id)
}

func (b *binder) entryList(ids []parser.Ident) []*SymbolEntry {
	if len(ids) == 0 {
		return nil
	}
	entries := make([]*SymbolEntry, len(ids))
	for i, id := range ids {
		entries[i] = b.entry(id)
	}
	return entries
}

// qualifiedName maps a dotted name of up to three parts onto the
// catalog/schema/entity slots, innermost part last.
func (b *binder) qualifiedName(name *parser.QualName) *QualifiedName {
	parts := name.Parts
	qn := &QualifiedName{Entity: b.entry(parts[len(parts)-1])}
	if len(parts) >= 2 {
		qn.Schema = b.entry(parts[len(parts)-2])
	}
	if len(parts) >= 3 {
		qn.Catalog = b.entry(parts[len(parts)-3])
	}
	return qn
}

// ---------- rows sources ----------

func (b *binder) bindBody(body *parser.SelectBody) RowsSource {
	source := b.bindCore(body.First)
	for _, clause := range body.Ops {
		corresponding := b.entryList(clause.Corresponding)
		right := b.bindCore(clause.Right)

		var kind SetOpKind
		switch clause.Op {
		case parser.SetOpIntersect:
			kind = SetIntersect
		case parser.SetOpExcept:
			kind = SetExcept
		default:
			kind = SetUnion
		}
		source = NewSetOperationSource(kind, clause.OpSpan, source, right, corresponding)
	}
	return source
}

func (b *binder) bindCore(core *parser.SelectCore) RowsSource {
	var source RowsSource
	if core.From == nil {
		source = NewEmptySource()
	} else {
		source = b.bindFrom(core.From)
	}

	where := b.bindOptExpr(core.Where)
	groupBy := b.bindExprList(core.GroupBy)
	having := b.bindOptExpr(core.Having)
	orderBy := b.bindOrderBy(core)
	if where != nil || groupBy != nil || having != nil || orderBy != nil {
		source = NewSelectionFilterSource(source, where, having, groupBy, orderBy)
	}

	return NewProjectionSource(source, b.bindSelectItems(core.Items))
}

// bindOrderBy folds the ORDER BY expressions together with LIMIT and
// OFFSET into one post-filter expression list.
func (b *binder) bindOrderBy(core *parser.SelectCore) ValueExpression {
	var operands []ValueExpression
	for _, item := range core.OrderBy {
		operands = append(operands, b.bindExpr(item.Expr))
	}
	if core.Limit != nil {
		operands = append(operands, b.bindExpr(core.Limit))
	}
	if core.Offset != nil {
		operands = append(operands, b.bindExpr(core.Offset))
	}
	if len(operands) == 0 {
		return nil
	}
	return &FlattenedExpression{Operands: operands}
}

func (b *binder) bindSelectItems(items []parser.SelectItem) *SelectionResult {
	sublists := make([]SublistSpec, 0, len(items))
	for _, item := range items {
		switch {
		case item.Star:
			sublists = append(sublists, &CompleteTupleSpec{})
		case item.TableStar != nil:
			sublists = append(sublists, &TupleSpec{TableName: b.qualifiedName(item.TableStar)})
		default:
			sublists = append(sublists, &ColumnSpec{
				Expr:  b.bindExpr(item.Expr),
				Alias: b.entryOrNil(item.Alias),
			})
		}
	}
	return NewSelectionResult(sublists...)
}

func (b *binder) bindFrom(from *parser.FromClause) RowsSource {
	left := b.bindTableRef(from.Source)
	for _, join := range from.Joins {
		right := b.bindTableRef(join.Right)
		switch {
		case join.Condition != nil:
			left = NewConditionJoinSource(left, right, b.bindExpr(join.Condition))
		case len(join.Using) > 0:
			left = NewUsingJoinSource(left, right, b.entryList(join.Using))
		case join.Natural:
			left = NewUsingJoinSource(left, right, nil)
		default:
			left = NewCrossJoinSource(left, right)
		}
	}
	return left
}

func (b *binder) bindTableRef(ref parser.TableRef) RowsSource {
	switch r := ref.(type) {
	case *parser.TableName:
		var source RowsSource = NewTableSource(b.qualifiedName(&r.Name))
		if r.Alias != nil {
			source = NewCorrelatedSource(source, b.entry(*r.Alias), b.entryList(r.AliasColumns))
		}
		return source
	case *parser.DerivedTable:
		inner := b.bindBody(r.Select.Body)
		return NewCorrelatedSource(inner, b.entry(*r.Alias), b.entryList(r.AliasColumns))
	}
	return NewEmptySource()
}

// ---------- value expressions ----------

func (b *binder) bindOptExpr(e parser.Expr) ValueExpression {
	if e == nil {
		return nil
	}
	return b.bindExpr(e)
}

func (b *binder) bindExprList(exprs []parser.Expr) ValueExpression {
	if len(exprs) == 0 {
		return nil
	}
	operands := make([]ValueExpression, len(exprs))
	for i, e := range exprs {
		operands[i] = b.bindExpr(e)
	}
	return &FlattenedExpression{Operands: operands}
}

// bindExpr lowers an expression. Operator structure is irrelevant to
// name resolution, so compound expressions flatten to their column
// references and subqueries; only a bare column reference survives as
// itself, which is what keeps it trivial for select-list expansion.
func (b *binder) bindExpr(e parser.Expr) ValueExpression {
	if ref, ok := e.(*parser.ColumnRef); ok {
		return b.bindColumnRef(ref)
	}
	operands := b.collect(e, nil)
	if len(operands) == 0 {
		return &LiteralExpression{}
	}
	return &FlattenedExpression{Operands: operands}
}

func (b *binder) bindColumnRef(ref *parser.ColumnRef) *ColumnReferenceExpression {
	expr := &ColumnReferenceExpression{Column: b.entry(ref.Column)}
	if ref.Table != nil {
		expr.TableName = b.qualifiedName(ref.Table)
	}
	return expr
}

func (b *binder) bindSubquery(stmt *parser.SelectStmt) *SubqueryExpression {
	return &SubqueryExpression{Source: b.bindBody(stmt.Body)}
}

// collect walks an expression tree appending the resolvable operands
// in source order.
func (b *binder) collect(e parser.Expr, operands []ValueExpression) []ValueExpression {
	switch x := e.(type) {
	case nil:
	case *parser.ColumnRef:
		operands = append(operands, b.bindColumnRef(x))
	case *parser.Literal:
	case *parser.BinaryExpr:
		operands = b.collect(x.Left, operands)
		operands = b.collect(x.Right, operands)
	case *parser.UnaryExpr:
		operands = b.collect(x.Expr, operands)
	case *parser.ParenExpr:
		operands = b.collect(x.Expr, operands)
	case *parser.FuncCall:
		for _, arg := range x.Args {
			operands = b.collect(arg, operands)
		}
	case *parser.CaseExpr:
		operands = b.collect(x.Operand, operands)
		for _, when := range x.Whens {
			operands = b.collect(when.Condition, operands)
			operands = b.collect(when.Result, operands)
		}
		operands = b.collect(x.Else, operands)
	case *parser.InExpr:
		operands = b.collect(x.Expr, operands)
		for _, value := range x.Values {
			operands = b.collect(value, operands)
		}
		if x.Query != nil {
			operands = append(operands, b.bindSubquery(x.Query))
		}
	case *parser.BetweenExpr:
		operands = b.collect(x.Expr, operands)
		operands = b.collect(x.Low, operands)
		operands = b.collect(x.High, operands)
	case *parser.IsNullExpr:
		operands = b.collect(x.Expr, operands)
	case *parser.LikeExpr:
		operands = b.collect(x.Expr, operands)
		operands = b.collect(x.Pattern, operands)
	case *parser.SubqueryExpr:
		operands = append(operands, b.bindSubquery(x.Select))
	case *parser.ExistsExpr:
		operands = append(operands, b.bindSubquery(x.Select))
	}
	return operands
}
