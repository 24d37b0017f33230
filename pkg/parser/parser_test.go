package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/semql/pkg/parser"
	"github.com/leapstack-labs/semql/pkg/token"
)

func mustParse(t *testing.T, sql string) *parser.SelectStmt {
	t.Helper()
	stmt, err := parser.Parse(sql)
	require.NoError(t, err)
	require.NotNil(t, stmt)
	return stmt
}

// ---------- Select list ----------

func TestParseSelectItems(t *testing.T) {
	tests := []struct {
		name  string
		sql   string
		check func(t *testing.T, core *parser.SelectCore)
	}{
		{
			name: "bare star",
			sql:  "SELECT * FROM orders",
			check: func(t *testing.T, core *parser.SelectCore) {
				require.Len(t, core.Items, 1)
				assert.True(t, core.Items[0].Star)
			},
		},
		{
			name: "qualified star",
			sql:  "SELECT o.* FROM orders o",
			check: func(t *testing.T, core *parser.SelectCore) {
				require.Len(t, core.Items, 1)
				star := core.Items[0].TableStar
				require.NotNil(t, star)
				require.Len(t, star.Parts, 1)
				assert.Equal(t, "o", star.Parts[0].Name)
			},
		},
		{
			name: "qualified column after star lookahead",
			sql:  "SELECT o.id FROM orders o",
			check: func(t *testing.T, core *parser.SelectCore) {
				require.Len(t, core.Items, 1)
				ref, ok := core.Items[0].Expr.(*parser.ColumnRef)
				require.True(t, ok)
				assert.Equal(t, "id", ref.Column.Name)
				require.NotNil(t, ref.Table)
				assert.Equal(t, "o", ref.Table.Parts[0].Name)
			},
		},
		{
			name: "qualified column resumes as expression",
			sql:  "SELECT o.amount + 1 FROM orders o",
			check: func(t *testing.T, core *parser.SelectCore) {
				require.Len(t, core.Items, 1)
				bin, ok := core.Items[0].Expr.(*parser.BinaryExpr)
				require.True(t, ok)
				assert.Equal(t, token.PLUS, bin.Op)
				_, ok = bin.Left.(*parser.ColumnRef)
				assert.True(t, ok)
			},
		},
		{
			name: "alias with AS",
			sql:  "SELECT amount AS total FROM orders",
			check: func(t *testing.T, core *parser.SelectCore) {
				require.NotNil(t, core.Items[0].Alias)
				assert.Equal(t, "total", core.Items[0].Alias.Name)
			},
		},
		{
			name: "alias without AS",
			sql:  "SELECT amount total FROM orders",
			check: func(t *testing.T, core *parser.SelectCore) {
				require.NotNil(t, core.Items[0].Alias)
				assert.Equal(t, "total", core.Items[0].Alias.Name)
			},
		},
		{
			name: "distinct",
			sql:  "SELECT DISTINCT id FROM orders",
			check: func(t *testing.T, core *parser.SelectCore) {
				assert.True(t, core.Distinct)
			},
		},
		{
			name: "multiple items",
			sql:  "SELECT id, o.*, count(*) FROM orders o",
			check: func(t *testing.T, core *parser.SelectCore) {
				require.Len(t, core.Items, 3)
				assert.NotNil(t, core.Items[1].TableStar)
				call, ok := core.Items[2].Expr.(*parser.FuncCall)
				require.True(t, ok)
				assert.True(t, call.Star)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := mustParse(t, tt.sql)
			tt.check(t, stmt.Body.First)
		})
	}
}

// ---------- FROM and joins ----------

func TestParseJoins(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		joinType parser.JoinType
		natural  bool
		hasCond  bool
		using    int
	}{
		{name: "comma", sql: "SELECT 1 FROM a, b", joinType: parser.JoinComma},
		{name: "cross", sql: "SELECT 1 FROM a CROSS JOIN b", joinType: parser.JoinCross},
		{name: "inner on", sql: "SELECT 1 FROM a JOIN b ON a.id = b.id", joinType: parser.JoinInner, hasCond: true},
		{name: "explicit inner", sql: "SELECT 1 FROM a INNER JOIN b ON a.id = b.id", joinType: parser.JoinInner, hasCond: true},
		{name: "left outer", sql: "SELECT 1 FROM a LEFT OUTER JOIN b ON a.id = b.id", joinType: parser.JoinLeft, hasCond: true},
		{name: "right", sql: "SELECT 1 FROM a RIGHT JOIN b ON a.id = b.id", joinType: parser.JoinRight, hasCond: true},
		{name: "full", sql: "SELECT 1 FROM a FULL JOIN b ON a.id = b.id", joinType: parser.JoinFull, hasCond: true},
		{name: "using", sql: "SELECT 1 FROM a JOIN b USING (id, name)", joinType: parser.JoinInner, using: 2},
		{name: "natural", sql: "SELECT 1 FROM a NATURAL JOIN b", joinType: parser.JoinInner, natural: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := mustParse(t, tt.sql)
			from := stmt.Body.First.From
			require.NotNil(t, from)
			require.Len(t, from.Joins, 1)

			join := from.Joins[0]
			assert.Equal(t, tt.joinType, join.Type)
			assert.Equal(t, tt.natural, join.Natural)
			assert.Equal(t, tt.hasCond, join.Condition != nil)
			assert.Len(t, join.Using, tt.using)
		})
	}
}

func TestParseTableReferences(t *testing.T) {
	t.Run("qualified name with alias columns", func(t *testing.T) {
		stmt := mustParse(t, "SELECT 1 FROM cat.sch.orders AS o (a, b)")
		ref, ok := stmt.Body.First.From.Source.(*parser.TableName)
		require.True(t, ok)
		require.Len(t, ref.Name.Parts, 3)
		assert.Equal(t, "cat", ref.Name.Parts[0].Name)
		assert.Equal(t, "orders", ref.Name.Last().Name)
		require.NotNil(t, ref.Alias)
		assert.Equal(t, "o", ref.Alias.Name)
		require.Len(t, ref.AliasColumns, 2)
		assert.Equal(t, "b", ref.AliasColumns[1].Name)
	})

	t.Run("derived table", func(t *testing.T) {
		stmt := mustParse(t, "SELECT t.a FROM (SELECT id FROM orders) AS t (a)")
		ref, ok := stmt.Body.First.From.Source.(*parser.DerivedTable)
		require.True(t, ok)
		require.NotNil(t, ref.Select)
		require.NotNil(t, ref.Alias)
		assert.Equal(t, "t", ref.Alias.Name)
		require.Len(t, ref.AliasColumns, 1)
	})

	t.Run("derived table requires alias", func(t *testing.T) {
		_, err := parser.Parse("SELECT 1 FROM (SELECT id FROM orders)")
		require.Error(t, err)
		var perr *parser.ParseError
		require.ErrorAs(t, err, &perr)
		assert.Contains(t, perr.Message, "derived table requires an alias")
	})
}

// ---------- Clauses ----------

func TestParseClauses(t *testing.T) {
	stmt := mustParse(t, `
		SELECT customer_id, sum(amount) AS total
		FROM orders
		WHERE amount > 0
		GROUP BY customer_id
		HAVING sum(amount) > 100
		ORDER BY total DESC, customer_id
		LIMIT 10 OFFSET 5`)

	core := stmt.Body.First
	assert.NotNil(t, core.Where)
	require.Len(t, core.GroupBy, 1)
	assert.NotNil(t, core.Having)
	require.Len(t, core.OrderBy, 2)
	assert.True(t, core.OrderBy[0].Desc)
	assert.False(t, core.OrderBy[1].Desc)
	assert.NotNil(t, core.Limit)
	assert.NotNil(t, core.Offset)
}

// ---------- Set operations ----------

func TestParseSetOperations(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		op   parser.SetOp
		all  bool
	}{
		{name: "union", sql: "SELECT a FROM t UNION SELECT b FROM u", op: parser.SetOpUnion},
		{name: "union all", sql: "SELECT a FROM t UNION ALL SELECT b FROM u", op: parser.SetOpUnion, all: true},
		{name: "union distinct", sql: "SELECT a FROM t UNION DISTINCT SELECT b FROM u", op: parser.SetOpUnion},
		{name: "intersect", sql: "SELECT a FROM t INTERSECT SELECT b FROM u", op: parser.SetOpIntersect},
		{name: "except", sql: "SELECT a FROM t EXCEPT SELECT b FROM u", op: parser.SetOpExcept},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := mustParse(t, tt.sql)
			require.Len(t, stmt.Body.Ops, 1)
			clause := stmt.Body.Ops[0]
			assert.Equal(t, tt.op, clause.Op)
			assert.Equal(t, tt.all, clause.All)
			require.NotNil(t, clause.Right)
		})
	}
}

func TestParseCorresponding(t *testing.T) {
	stmt := mustParse(t, "SELECT a, b FROM t UNION CORRESPONDING BY (a) SELECT a, c FROM u")
	require.Len(t, stmt.Body.Ops, 1)
	require.Len(t, stmt.Body.Ops[0].Corresponding, 1)
	assert.Equal(t, "a", stmt.Body.Ops[0].Corresponding[0].Name)

	// Without BY the column list stays empty and merge is positional.
	stmt = mustParse(t, "SELECT a FROM t UNION CORRESPONDING SELECT a FROM u")
	require.Len(t, stmt.Body.Ops, 1)
	assert.Nil(t, stmt.Body.Ops[0].Corresponding)
}

func TestSetOperationSpanCoversOperator(t *testing.T) {
	stmt := mustParse(t, "SELECT a FROM t UNION SELECT b FROM u")
	require.Len(t, stmt.Body.Ops, 1)
	span := stmt.Body.Ops[0].OpSpan
	assert.Equal(t, 16, span.Start.Offset)
	assert.Equal(t, 1, span.Start.Line)
	assert.Equal(t, 17, span.Start.Column)
}

func TestSetOperationsChainLeft(t *testing.T) {
	// a UNION b EXCEPT c applies the UNION first.
	stmt := mustParse(t, "SELECT a FROM t UNION SELECT b FROM u EXCEPT SELECT c FROM v")
	require.NotNil(t, stmt.Body.First)
	require.Len(t, stmt.Body.Ops, 2)
	assert.Equal(t, parser.SetOpUnion, stmt.Body.Ops[0].Op)
	assert.Equal(t, parser.SetOpExcept, stmt.Body.Ops[1].Op)
	ref, ok := stmt.Body.Ops[1].Right.From.Source.(*parser.TableName)
	require.True(t, ok)
	assert.Equal(t, "v", ref.Name.Last().Name)
}

// ---------- Expressions ----------

func TestParseExpressionPrecedence(t *testing.T) {
	stmt := mustParse(t, "SELECT a + b * c FROM t")
	add, ok := stmt.Body.First.Items[0].Expr.(*parser.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.PLUS, add.Op)
	mul, ok := add.Right.(*parser.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.STAR, mul.Op)
}

func TestParseBooleanPrecedence(t *testing.T) {
	stmt := mustParse(t, "SELECT 1 FROM t WHERE a = 1 OR b = 2 AND NOT c = 3")
	or, ok := stmt.Body.First.Where.(*parser.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.OR, or.Op)
	and, ok := or.Right.(*parser.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.AND, and.Op)
	not, ok := and.Right.(*parser.UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.NOT, not.Op)
}

func TestParsePredicates(t *testing.T) {
	tests := []struct {
		name  string
		sql   string
		check func(t *testing.T, expr parser.Expr)
	}{
		{
			name: "is null",
			sql:  "SELECT 1 FROM t WHERE a IS NULL",
			check: func(t *testing.T, expr parser.Expr) {
				isNull, ok := expr.(*parser.IsNullExpr)
				require.True(t, ok)
				assert.False(t, isNull.Not)
			},
		},
		{
			name: "is not null",
			sql:  "SELECT 1 FROM t WHERE a IS NOT NULL",
			check: func(t *testing.T, expr parser.Expr) {
				isNull, ok := expr.(*parser.IsNullExpr)
				require.True(t, ok)
				assert.True(t, isNull.Not)
			},
		},
		{
			name: "between",
			sql:  "SELECT 1 FROM t WHERE a BETWEEN 1 AND 10",
			check: func(t *testing.T, expr parser.Expr) {
				between, ok := expr.(*parser.BetweenExpr)
				require.True(t, ok)
				assert.NotNil(t, between.Low)
				assert.NotNil(t, between.High)
			},
		},
		{
			name: "not between",
			sql:  "SELECT 1 FROM t WHERE a NOT BETWEEN 1 AND 10",
			check: func(t *testing.T, expr parser.Expr) {
				between, ok := expr.(*parser.BetweenExpr)
				require.True(t, ok)
				assert.True(t, between.Not)
			},
		},
		{
			name: "in values",
			sql:  "SELECT 1 FROM t WHERE a IN (1, 2, 3)",
			check: func(t *testing.T, expr parser.Expr) {
				in, ok := expr.(*parser.InExpr)
				require.True(t, ok)
				assert.Len(t, in.Values, 3)
				assert.Nil(t, in.Query)
			},
		},
		{
			name: "in subquery",
			sql:  "SELECT 1 FROM t WHERE a IN (SELECT id FROM u)",
			check: func(t *testing.T, expr parser.Expr) {
				in, ok := expr.(*parser.InExpr)
				require.True(t, ok)
				assert.NotNil(t, in.Query)
				assert.Empty(t, in.Values)
			},
		},
		{
			name: "not like",
			sql:  "SELECT 1 FROM t WHERE a NOT LIKE 'x%'",
			check: func(t *testing.T, expr parser.Expr) {
				like, ok := expr.(*parser.LikeExpr)
				require.True(t, ok)
				assert.True(t, like.Not)
			},
		},
		{
			name: "exists",
			sql:  "SELECT 1 FROM t WHERE EXISTS (SELECT 1 FROM u)",
			check: func(t *testing.T, expr parser.Expr) {
				exists, ok := expr.(*parser.ExistsExpr)
				require.True(t, ok)
				assert.NotNil(t, exists.Select)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := mustParse(t, tt.sql)
			tt.check(t, stmt.Body.First.Where)
		})
	}
}

func TestParseCase(t *testing.T) {
	stmt := mustParse(t, "SELECT CASE WHEN a > 0 THEN 'pos' ELSE 'neg' END FROM t")
	caseExpr, ok := stmt.Body.First.Items[0].Expr.(*parser.CaseExpr)
	require.True(t, ok)
	assert.Nil(t, caseExpr.Operand)
	require.Len(t, caseExpr.Whens, 1)
	assert.NotNil(t, caseExpr.Else)

	stmt = mustParse(t, "SELECT CASE a WHEN 1 THEN 'one' WHEN 2 THEN 'two' END FROM t")
	caseExpr, ok = stmt.Body.First.Items[0].Expr.(*parser.CaseExpr)
	require.True(t, ok)
	assert.NotNil(t, caseExpr.Operand)
	require.Len(t, caseExpr.Whens, 2)
	assert.Nil(t, caseExpr.Else)
}

func TestParseFuncCall(t *testing.T) {
	stmt := mustParse(t, "SELECT count(DISTINCT customer_id), coalesce(a, b, 0) FROM orders")
	items := stmt.Body.First.Items

	count, ok := items[0].Expr.(*parser.FuncCall)
	require.True(t, ok)
	assert.Equal(t, "count", count.Name.Name)
	assert.True(t, count.Distinct)
	require.Len(t, count.Args, 1)

	coalesce, ok := items[1].Expr.(*parser.FuncCall)
	require.True(t, ok)
	require.Len(t, coalesce.Args, 3)
}

func TestParseScalarSubquery(t *testing.T) {
	stmt := mustParse(t, "SELECT (SELECT max(id) FROM orders) FROM t")
	sub, ok := stmt.Body.First.Items[0].Expr.(*parser.SubqueryExpr)
	require.True(t, ok)
	require.NotNil(t, sub.Select)
}

// ---------- Errors ----------

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{name: "empty select list", sql: "SELECT"},
		{name: "missing from target", sql: "SELECT a FROM"},
		{name: "dangling join", sql: "SELECT 1 FROM a JOIN"},
		{name: "group without by", sql: "SELECT a FROM t GROUP a"},
		{name: "between missing and", sql: "SELECT 1 FROM t WHERE a BETWEEN 1 10"},
		{name: "unclosed paren", sql: "SELECT (1 + 2 FROM t"},
		{name: "trailing garbage", sql: "SELECT 1 FROM t t t"},
		{name: "is without operand", sql: "SELECT 1 FROM t WHERE a IS 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.sql)
			require.Error(t, err)
			var perr *parser.ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestParseErrorCarriesPosition(t *testing.T) {
	_, err := parser.Parse("SELECT a FROM t WHERE")
	require.Error(t, err)
	var perr *parser.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Pos.Line)
	assert.Equal(t, len("SELECT a FROM t WHERE"), perr.Pos.Offset)
}

func TestParseTrailingSemicolon(t *testing.T) {
	stmt := mustParse(t, "SELECT id FROM orders;")
	require.NotNil(t, stmt.Body)

	_, err := parser.Parse("SELECT id FROM orders; SELECT 1")
	require.Error(t, err)
}
