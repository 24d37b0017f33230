package sem_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/semql/pkg/catalog"
	"github.com/leapstack-labs/semql/pkg/parser"
	"github.com/leapstack-labs/semql/pkg/sem"
)

func mustBind(t *testing.T, sql string) *sem.SelectionModel {
	t.Helper()
	stmt, err := parser.Parse(sql)
	require.NoError(t, err)
	return sem.Bind(stmt)
}

func testProvider() *catalog.Memory {
	return catalog.NewMemory(
		catalog.TableDef{
			Name: "orders",
			Columns: []catalog.Attribute{
				{Name: "id", Type: "integer"},
				{Name: "customer_id", Type: "integer"},
				{Name: "amount", Type: "decimal"},
				{Name: "_etag", Type: "varchar", Hidden: true},
			},
		},
		catalog.TableDef{
			Name: "customers",
			Columns: []catalog.Attribute{
				{Name: "id", Type: "integer"},
				{Name: "name", Type: "varchar"},
				{Name: "email", Type: "varchar"},
			},
		},
	)
}

func analyze(t *testing.T, sql string) (*sem.SelectionModel, []sem.Diagnostic) {
	t.Helper()
	model, diags, err := sem.Analyze(context.Background(), sql, testProvider())
	require.NoError(t, err)
	return model, diags
}

func columnNames(t *testing.T, model *sem.SelectionModel) []string {
	t.Helper()
	columns, err := model.ResultColumns()
	require.NoError(t, err)
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name()
	}
	return names
}

// ---------- Result column expansion ----------

func TestResultColumns(t *testing.T) {
	tests := []struct {
		name      string
		sql       string
		wantCols  []string
		wantDiags int
	}{
		{
			name:     "plain columns",
			sql:      "SELECT id, name FROM customers",
			wantCols: []string{"id", "name"},
		},
		{
			name:     "bare wildcard skips hidden columns",
			sql:      "SELECT * FROM orders",
			wantCols: []string{"id", "customer_id", "amount"},
		},
		{
			name:     "qualified wildcard alongside a column",
			sql:      "SELECT o.id, o.* FROM orders AS o",
			wantCols: []string{"id", "id", "customer_id", "amount"},
		},
		{
			name:     "alias names the output column",
			sql:      "SELECT amount * 2 AS total FROM orders",
			wantCols: []string{"total"},
		},
		{
			name:     "aliased bare reference keeps the alias",
			sql:      "SELECT id AS renamed FROM orders",
			wantCols: []string{"renamed"},
		},
		{
			name:     "computed column without alias gets a placeholder",
			sql:      "SELECT amount + 1 FROM orders",
			wantCols: []string{"?"},
		},
		{
			name:     "select without from",
			sql:      "SELECT 1",
			wantCols: []string{"?"},
		},
		{
			name:     "cross join concatenates both tuples",
			sql:      "SELECT * FROM orders, customers",
			wantCols: []string{"id", "customer_id", "amount", "id", "name", "email"},
		},
		{
			name:      "unresolvable qualified wildcard expands to nothing",
			sql:       "SELECT o.id, x.* FROM orders AS o",
			wantCols:  []string{"id"},
			wantDiags: 1,
		},
		{
			name:     "derived table with column renames",
			sql:      "SELECT t.a, t.b FROM (SELECT id, amount, customer_id FROM orders) AS t (a, b)",
			wantCols: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, diags := analyze(t, tt.sql)
			assert.Equal(t, tt.wantCols, columnNames(t, model))
			assert.Len(t, diags, tt.wantDiags)
		})
	}
}

// ---------- Diagnostics ----------

func TestDiagnostics(t *testing.T) {
	tests := []struct {
		name         string
		sql          string
		wantMessages []string
	}{
		{
			name:         "unknown table",
			sql:          "SELECT x FROM nope",
			wantMessages: []string{"Table not found", "Column not found in dataset"},
		},
		{
			name:         "unknown column",
			sql:          "SELECT wrong FROM orders",
			wantMessages: []string{"Column not found in dataset"},
		},
		{
			name:         "qualified wildcard over an invisible source",
			sql:          "SELECT x.* FROM orders",
			wantMessages: []string{"The table doesn't participate in this context"},
		},
		{
			name:         "using column missing on the left",
			sql:          "SELECT * FROM orders JOIN customers USING (email)",
			wantMessages: []string{"Column not found to the left of join"},
		},
		{
			name:         "using column missing on the right",
			sql:          "SELECT * FROM customers JOIN orders USING (email)",
			wantMessages: []string{"Column not found to the right of join"},
		},
		{
			name:         "inner table name hidden behind the projection",
			sql:          "SELECT t.x, orders.id FROM (SELECT id AS x FROM orders) AS t",
			wantMessages: []string{"Table or subquery not found"},
		},
		{
			name:         "union branch arity mismatch",
			sql:          "SELECT id, amount FROM orders UNION SELECT id FROM customers",
			wantMessages: []string{"UNION requires corresponding column sets to match"},
		},
		{
			name:         "corresponding column missing in a branch",
			sql:          "SELECT * FROM orders INTERSECT CORRESPONDING BY (name) SELECT * FROM customers",
			wantMessages: []string{"INTERSECT requires corresponding column sets to match"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := analyze(t, tt.sql)
			require.Len(t, diags, len(tt.wantMessages))
			for i, want := range tt.wantMessages {
				assert.Contains(t, diags[i].Message, want)
			}
		})
	}
}

func TestCleanStatementsProduceNoDiagnostics(t *testing.T) {
	tests := []string{
		"SELECT id FROM orders WHERE amount > 100",
		"SELECT o.id, c.name FROM orders o JOIN customers c ON o.customer_id = c.id",
		"SELECT * FROM orders JOIN customers USING (id)",
		"SELECT id FROM orders UNION SELECT id FROM customers",
		"SELECT * FROM orders UNION CORRESPONDING BY (id) SELECT * FROM customers",
		"SELECT customer_id, count(*) FROM orders GROUP BY customer_id HAVING count(*) > 1 ORDER BY customer_id LIMIT 10",
		"SELECT id FROM orders o WHERE EXISTS (SELECT id FROM customers c WHERE c.id = o.customer_id)",
		"SELECT name FROM customers WHERE id IN (SELECT customer_id FROM orders)",
		"SELECT upper(name) AS loud FROM customers",
	}

	for _, sql := range tests {
		t.Run(sql, func(t *testing.T) {
			_, diags := analyze(t, sql)
			assert.Empty(t, diags)
		})
	}
}

func TestDiagnosticCarriesPosition(t *testing.T) {
	_, diags := analyze(t, "SELECT x FROM nope")
	require.NotEmpty(t, diags)
	assert.True(t, diags[0].Span.IsValid())
	assert.Equal(t, 1, diags[0].Span.Start.Line)
	assert.Equal(t, 15, diags[0].Span.Start.Column)
}

// ---------- Symbol classification ----------

func classByName(model *sem.SelectionModel) map[string]sem.SymbolClass {
	classes := make(map[string]sem.SymbolClass)
	for _, e := range model.AllEntries() {
		class := e.Symbol().Class()
		if def := e.Definition(); def != nil && def.SymbolClass() != sem.ClassUnknown {
			class = def.SymbolClass()
		}
		if _, seen := classes[e.Name()]; !seen {
			classes[e.Name()] = class
		}
	}
	return classes
}

func TestSymbolClassification(t *testing.T) {
	model, diags := analyze(t, "SELECT o.id, amount AS total FROM orders AS o")
	require.Empty(t, diags)

	classes := classByName(model)
	assert.Equal(t, sem.ClassTable, classes["orders"])
	assert.Equal(t, sem.ClassTableAlias, classes["o"])
	assert.Equal(t, sem.ClassColumn, classes["id"])
	assert.Equal(t, sem.ClassColumn, classes["amount"])
	assert.Equal(t, sem.ClassColumnDerived, classes["total"])
}

func TestAliasIsAlwaysDerivedEvenForBareReference(t *testing.T) {
	model, diags := analyze(t, "SELECT id AS renamed FROM orders")
	require.Empty(t, diags)
	assert.Equal(t, sem.ClassColumnDerived, classByName(model)["renamed"])
}

func TestUnresolvedSymbolIsMarkedErroneous(t *testing.T) {
	model, _ := analyze(t, "SELECT wrong FROM orders")
	assert.Equal(t, sem.ClassError, classByName(model)["wrong"])
}

func TestEntriesAreOrderedBySourcePosition(t *testing.T) {
	model, _ := analyze(t, "SELECT id, name FROM customers")
	entries := model.AllEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, "id", entries[0].Name())
	assert.Equal(t, "name", entries[1].Name())
	assert.Equal(t, "customers", entries[2].Name())
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Span().Start.Offset, entries[i].Span().Start.Offset)
	}
}

// ---------- Derived tables and correlation ----------

func TestDerivedTableRenameListIsPositional(t *testing.T) {
	// Extra rename names beyond the subquery's columns are ignored.
	model, diags := analyze(t, "SELECT t.a FROM (SELECT id FROM orders) AS t (a, b, c)")
	assert.Empty(t, diags)
	assert.Equal(t, []string{"a"}, columnNames(t, model))

	// A rename name past the tuple resolves nowhere.
	_, diags = analyze(t, "SELECT t.b FROM (SELECT id FROM orders) AS t (a, b, c)")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "Column not found in dataset")
}

func TestCorrelatedSubquerySeesOuterAliases(t *testing.T) {
	_, diags := analyze(t,
		"SELECT id FROM orders o WHERE amount > (SELECT count(*) FROM customers c WHERE c.id = o.customer_id)")
	assert.Empty(t, diags)
}

func TestCorrelationAliasHidesTableName(t *testing.T) {
	// Once aliased, the original table name is no longer a visible
	// source; only the alias reaches the table's columns.
	model, diags := analyze(t, "SELECT orders.id, x.* FROM orders AS x")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "Table or subquery not found")
	assert.Equal(t, []string{"id", "id", "customer_id", "amount"}, columnNames(t, model))

	classes := classByName(model)
	assert.Equal(t, sem.ClassError, classes["orders"])
	assert.Equal(t, sem.ClassTableAlias, classes["x"])
}

func TestSetOperationExposesLeftScope(t *testing.T) {
	// The merged tuple carries the left branch's column names.
	model, diags := analyze(t, "SELECT id, name FROM customers UNION SELECT id, amount FROM orders")
	assert.Empty(t, diags)
	assert.Equal(t, []string{"id", "name"}, columnNames(t, model))
}

func TestSetOperationArityMismatchKeepsWiderTuple(t *testing.T) {
	// The merged tuple spans the wider branch; unmatched positions carry
	// the column of whichever branch has them.
	model, diags := analyze(t, "SELECT id FROM customers UNION SELECT id, amount FROM orders")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "UNION requires corresponding column sets to match")
	assert.Equal(t, []string{"id", "amount"}, columnNames(t, model))

	model, diags = analyze(t, "SELECT id, name FROM customers UNION SELECT id FROM orders")
	require.Len(t, diags, 1)
	assert.Equal(t, []string{"id", "name"}, columnNames(t, model))
}

func TestSetOperationsApplyLeftToRight(t *testing.T) {
	// (a UNION b) EXCEPT c: both operations pair columns against a two
	// column left side, so each reports its own arity mismatch.
	_, diags := analyze(t,
		"SELECT id, amount FROM orders UNION SELECT id FROM customers EXCEPT SELECT id FROM customers")
	require.Len(t, diags, 2)
	assert.Contains(t, diags[0].Message, "UNION requires corresponding column sets to match")
	assert.Contains(t, diags[1].Message, "EXCEPT requires corresponding column sets to match")
}

// ---------- Propagation protocol ----------

func TestPropagateExactlyOnce(t *testing.T) {
	provider := testProvider()
	stmt := mustBind(t, "SELECT id FROM orders")

	rec := sem.NewRecognitionContext(context.Background())
	require.NoError(t, stmt.Propagate(sem.NewDataContext(provider), rec))

	err := stmt.Propagate(sem.NewDataContext(provider), rec)
	require.ErrorIs(t, err, sem.ErrAlreadyResolved)
}

func TestResultColumnsBeforePropagation(t *testing.T) {
	stmt := mustBind(t, "SELECT id FROM orders")
	_, err := stmt.ResultColumns()
	require.ErrorIs(t, err, sem.ErrNotResolved)
}

func TestCancelledResolutionTerminates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stmt := mustBind(t, "SELECT id FROM orders")
	diags, err := sem.Resolve(ctx, stmt, testProvider())
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "resolution interrupted")
}

func TestNilProviderResolvesNoTables(t *testing.T) {
	stmt := mustBind(t, "SELECT id FROM orders")
	diags, err := sem.Resolve(context.Background(), stmt, nil)
	require.NoError(t, err)
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0].Message, "Table not found")
}
