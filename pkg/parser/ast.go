package parser

import "github.com/leapstack-labs/semql/pkg/token"

// Ident is an identifier occurrence with its source span.
type Ident struct {
	Name string
	Span token.Span
}

// QualName is a dotted name (up to catalog.schema.name).
type QualName struct {
	Parts []Ident
}

// Last returns the final (entity) part of the name.
func (n *QualName) Last() Ident { return n.Parts[len(n.Parts)-1] }

// SelectStmt represents a complete SELECT statement.
type SelectStmt struct {
	Body *SelectBody
	Span token.Span
}

// SetOp represents the type of set operation between select bodies.
type SetOp int

// Set operation types.
const (
	SetOpNone SetOp = iota
	SetOpUnion
	SetOpIntersect
	SetOpExcept
)

// SelectBody represents a select with possible chained set operations.
// Operations apply left to right: a UNION b EXCEPT c combines a with b
// first.
type SelectBody struct {
	First *SelectCore
	Ops   []SetOpClause
}

// SetOpClause is one set operation joining everything to its left with
// its right-hand select core.
type SetOpClause struct {
	Op            SetOp
	All           bool // UNION ALL
	OpSpan        token.Span
	Corresponding []Ident // CORRESPONDING BY (col, ...); nil otherwise
	Right         *SelectCore
}

// SelectCore represents the core SELECT clause.
type SelectCore struct {
	Distinct bool
	Items    []SelectItem
	From     *FromClause
	Where    Expr
	GroupBy  []Expr
	Having   Expr
	OrderBy  []OrderByItem
	Limit    Expr
	Offset   Expr
}

// SelectItem represents an item in the SELECT list.
type SelectItem struct {
	Star      bool      // SELECT *
	TableStar *QualName // SELECT t.*
	Expr      Expr
	Alias     *Ident // AS alias
}

// OrderByItem represents an item in the ORDER BY clause.
type OrderByItem struct {
	Expr Expr
	Desc bool
}

// FromClause represents the FROM clause.
type FromClause struct {
	Source TableRef
	Joins  []*Join
}

// JoinType represents the type of join.
type JoinType string

// Join types.
const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
	JoinFull  JoinType = "FULL"
	JoinCross JoinType = "CROSS"
	// JoinComma is the implicit cross join using comma syntax.
	JoinComma JoinType = ","
)

// Join represents a JOIN clause.
type Join struct {
	Type      JoinType
	Natural   bool
	Right     TableRef
	Condition Expr    // ON clause (mutually exclusive with Using)
	Using     []Ident // USING (col1, col2)
}

// TableRef represents a table reference in the FROM clause.
type TableRef interface {
	tableRefNode()
}

// TableName references a table by qualified name, with an optional
// correlation alias and alias column list.
type TableName struct {
	Name         QualName
	Alias        *Ident
	AliasColumns []Ident
}

func (*TableName) tableRefNode() {}

// DerivedTable is a subquery in the FROM clause.
type DerivedTable struct {
	Select       *SelectStmt
	Alias        *Ident
	AliasColumns []Ident
}

func (*DerivedTable) tableRefNode() {}

// Expr represents an expression.
type Expr interface {
	exprNode()
}

// ColumnRef represents a column reference, optionally qualified.
type ColumnRef struct {
	Table  *QualName // nil for unqualified references
	Column Ident
}

func (*ColumnRef) exprNode() {}

// LiteralType represents the type of a literal.
type LiteralType int

// Literal value types.
const (
	LiteralNumber LiteralType = iota
	LiteralString
	LiteralBool
	LiteralNull
)

// Literal represents a literal value.
type Literal struct {
	Type  LiteralType
	Value string
}

func (*Literal) exprNode() {}

// BinaryExpr represents a binary expression.
type BinaryExpr struct {
	Left  Expr
	Op    token.TokenType
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// UnaryExpr represents a unary expression.
type UnaryExpr struct {
	Op   token.TokenType
	Expr Expr
}

func (*UnaryExpr) exprNode() {}

// FuncCall represents a function call.
type FuncCall struct {
	Name     Ident
	Distinct bool
	Star     bool // COUNT(*)
	Args     []Expr
}

func (*FuncCall) exprNode() {}

// CaseExpr represents a CASE expression.
type CaseExpr struct {
	Operand Expr // CASE operand WHEN ... (optional)
	Whens   []WhenClause
	Else    Expr
}

func (*CaseExpr) exprNode() {}

// WhenClause represents a WHEN branch of a CASE expression.
type WhenClause struct {
	Condition Expr
	Result    Expr
}

// ParenExpr represents a parenthesized expression.
type ParenExpr struct {
	Expr Expr
}

func (*ParenExpr) exprNode() {}

// InExpr represents an IN expression.
type InExpr struct {
	Expr   Expr
	Not    bool
	Values []Expr      // IN (1, 2, 3)
	Query  *SelectStmt // IN (SELECT ...)
}

func (*InExpr) exprNode() {}

// BetweenExpr represents a BETWEEN expression.
type BetweenExpr struct {
	Expr Expr
	Not  bool
	Low  Expr
	High Expr
}

func (*BetweenExpr) exprNode() {}

// IsNullExpr represents an IS [NOT] NULL expression.
type IsNullExpr struct {
	Expr Expr
	Not  bool
}

func (*IsNullExpr) exprNode() {}

// LikeExpr represents a LIKE expression.
type LikeExpr struct {
	Expr    Expr
	Not     bool
	Pattern Expr
}

func (*LikeExpr) exprNode() {}

// SubqueryExpr represents a scalar subquery used as an expression.
type SubqueryExpr struct {
	Select *SelectStmt
}

func (*SubqueryExpr) exprNode() {}

// ExistsExpr represents an EXISTS expression.
type ExistsExpr struct {
	Not    bool
	Select *SelectStmt
}

func (*ExistsExpr) exprNode() {}
