package parser

import (
	"fmt"

	"github.com/leapstack-labs/semql/pkg/token"
)

// Parser parses SQL SELECT statements.
type Parser struct {
	lexer *Lexer
	cur   token.Token
	peek  token.Token
}

// Parse parses a single SELECT statement, optionally terminated by a
// semicolon.
func Parse(input string) (*SelectStmt, error) {
	p := &Parser{lexer: NewLexer(input)}
	p.next()
	p.next()

	stmt, err := p.parseSelectStmt()
	if err != nil {
		return nil, err
	}
	p.match(token.SEMICOLON)
	if !p.check(token.EOF) {
		return nil, p.errorf("unexpected token %s after statement", p.cur.Type)
	}
	return stmt, nil
}

// next advances the token window.
func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.lexer.NextToken()
}

// check reports whether the current token has the given type.
func (p *Parser) check(t token.TokenType) bool { return p.cur.Type == t }

// match consumes the current token if it has the given type.
func (p *Parser) match(t token.TokenType) bool {
	if p.cur.Type == t {
		p.next()
		return true
	}
	return false
}

// expect consumes the current token or fails.
func (p *Parser) expect(t token.TokenType) (token.Token, error) {
	if p.cur.Type != t {
		return token.Token{}, p.errorf("unexpected token %s, expected %s", p.cur.Type, t)
	}
	tok := p.cur
	p.next()
	return tok, nil
}

// errorf builds a ParseError at the current position.
func (p *Parser) errorf(format string, args ...any) error {
	return &ParseError{Pos: p.cur.Span.Start, Message: fmt.Sprintf(format, args...)}
}

// parseIdent consumes an identifier.
func (p *Parser) parseIdent() (Ident, error) {
	tok, err := p.expect(token.IDENT)
	if err != nil {
		return Ident{}, err
	}
	return Ident{Name: tok.Literal, Span: tok.Span}, nil
}

// parseIdentList parses a parenthesized identifier list.
func (p *Parser) parseIdentList() ([]Ident, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var idents []Ident
	for {
		id, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		idents = append(idents, id)
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return idents, nil
}

// parseQualName parses ident(.ident)* up to three parts.
func (p *Parser) parseQualName() (QualName, error) {
	var name QualName
	for {
		id, err := p.parseIdent()
		if err != nil {
			return name, err
		}
		name.Parts = append(name.Parts, id)
		if len(name.Parts) == 3 || !p.check(token.DOT) || p.peek.Type != token.IDENT {
			return name, nil
		}
		p.next() // consume dot
	}
}

// ---------- Statements ----------

func (p *Parser) parseSelectStmt() (*SelectStmt, error) {
	start := p.cur.Span.Start
	body, err := p.parseSelectBody()
	if err != nil {
		return nil, err
	}
	return &SelectStmt{
		Body: body,
		Span: token.Span{Start: start, End: p.cur.Span.Start},
	}, nil
}

func (p *Parser) parseSelectBody() (*SelectBody, error) {
	core, err := p.parseSelectCore()
	if err != nil {
		return nil, err
	}
	body := &SelectBody{First: core}

	for {
		var op SetOp
		switch p.cur.Type {
		case token.UNION:
			op = SetOpUnion
		case token.INTERSECT:
			op = SetOpIntersect
		case token.EXCEPT:
			op = SetOpExcept
		default:
			return body, nil
		}
		clause := SetOpClause{Op: op, OpSpan: p.cur.Span}
		p.next()

		if p.match(token.ALL) {
			clause.All = true
		} else {
			p.match(token.DISTINCT)
		}
		if p.match(token.CORRESPONDING) {
			if p.match(token.BY) {
				cols, err := p.parseIdentList()
				if err != nil {
					return nil, err
				}
				clause.Corresponding = cols
			}
		}

		right, err := p.parseSelectCore()
		if err != nil {
			return nil, err
		}
		clause.Right = right
		body.Ops = append(body.Ops, clause)
	}
}

func (p *Parser) parseSelectCore() (*SelectCore, error) {
	if _, err := p.expect(token.SELECT); err != nil {
		return nil, err
	}
	core := &SelectCore{}

	if p.match(token.DISTINCT) {
		core.Distinct = true
	} else {
		p.match(token.ALL)
	}

	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		core.Items = append(core.Items, item)
		if !p.match(token.COMMA) {
			break
		}
	}

	if p.match(token.FROM) {
		from, err := p.parseFromClause()
		if err != nil {
			return nil, err
		}
		core.From = from
	}
	if p.match(token.WHERE) {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		core.Where = expr
	}
	if p.check(token.GROUP) {
		p.next()
		if _, err := p.expect(token.BY); err != nil {
			return nil, err
		}
		for {
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			core.GroupBy = append(core.GroupBy, expr)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if p.match(token.HAVING) {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		core.Having = expr
	}
	if p.check(token.ORDER) {
		p.next()
		if _, err := p.expect(token.BY); err != nil {
			return nil, err
		}
		for {
			item := OrderByItem{}
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			item.Expr = expr
			if p.match(token.DESC) {
				item.Desc = true
			} else {
				p.match(token.ASC)
			}
			core.OrderBy = append(core.OrderBy, item)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if p.match(token.LIMIT) {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		core.Limit = expr
		if p.match(token.OFFSET) {
			off, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			core.Offset = off
		}
	}
	return core, nil
}

func (p *Parser) parseSelectItem() (SelectItem, error) {
	if p.match(token.STAR) {
		return SelectItem{Star: true}, nil
	}

	// Look for "name(.name)*.*" before falling into expression parsing.
	if p.check(token.IDENT) && p.peek.Type == token.DOT {
		name, star, err := p.parseMaybeStarName()
		if err != nil {
			return SelectItem{}, err
		}
		if star {
			return SelectItem{TableStar: name}, nil
		}
		// Re-interpret the consumed name as a column reference and keep
		// parsing the expression around it.
		expr, err := p.continueExpr(columnRefFromQualName(name))
		if err != nil {
			return SelectItem{}, err
		}
		return p.finishSelectItem(expr)
	}

	expr, err := p.parseExpr()
	if err != nil {
		return SelectItem{}, err
	}
	return p.finishSelectItem(expr)
}

// finishSelectItem parses the optional [AS] alias after an expression.
func (p *Parser) finishSelectItem(expr Expr) (SelectItem, error) {
	item := SelectItem{Expr: expr}
	if p.match(token.AS) {
		alias, err := p.parseIdent()
		if err != nil {
			return item, err
		}
		item.Alias = &alias
	} else if p.check(token.IDENT) {
		alias := Ident{Name: p.cur.Literal, Span: p.cur.Span}
		p.next()
		item.Alias = &alias
	}
	return item, nil
}

// parseMaybeStarName parses a dotted name that may terminate in ".*".
func (p *Parser) parseMaybeStarName() (*QualName, bool, error) {
	var name QualName
	for {
		id, err := p.parseIdent()
		if err != nil {
			return nil, false, err
		}
		name.Parts = append(name.Parts, id)
		if !p.check(token.DOT) {
			return &name, false, nil
		}
		p.next() // consume dot
		if p.match(token.STAR) {
			return &name, true, nil
		}
	}
}

// columnRefFromQualName turns a parsed dotted chain into a column
// reference: last part is the column, the rest qualify it.
func columnRefFromQualName(name *QualName) Expr {
	ref := &ColumnRef{Column: name.Last()}
	if len(name.Parts) > 1 {
		ref.Table = &QualName{Parts: name.Parts[:len(name.Parts)-1]}
	}
	return ref
}

// ---------- FROM clause ----------

func (p *Parser) parseFromClause() (*FromClause, error) {
	source, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	from := &FromClause{Source: source}

	for {
		switch {
		case p.match(token.COMMA):
			right, err := p.parseTableRef()
			if err != nil {
				return nil, err
			}
			from.Joins = append(from.Joins, &Join{Type: JoinComma, Right: right})
		case p.check(token.CROSS) || p.check(token.NATURAL) || p.check(token.INNER) ||
			p.check(token.LEFT) || p.check(token.RIGHT) || p.check(token.FULL) || p.check(token.JOIN):
			join, err := p.parseJoin()
			if err != nil {
				return nil, err
			}
			from.Joins = append(from.Joins, join)
		default:
			return from, nil
		}
	}
}

func (p *Parser) parseJoin() (*Join, error) {
	join := &Join{Type: JoinInner}
	join.Natural = p.match(token.NATURAL)

	switch {
	case p.match(token.CROSS):
		join.Type = JoinCross
	case p.match(token.INNER):
	case p.match(token.LEFT):
		join.Type = JoinLeft
		p.match(token.OUTER)
	case p.match(token.RIGHT):
		join.Type = JoinRight
		p.match(token.OUTER)
	case p.match(token.FULL):
		join.Type = JoinFull
		p.match(token.OUTER)
	}
	if _, err := p.expect(token.JOIN); err != nil {
		return nil, err
	}

	right, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	join.Right = right

	if join.Type != JoinCross && !join.Natural {
		switch {
		case p.match(token.ON):
			cond, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			join.Condition = cond
		case p.match(token.USING):
			cols, err := p.parseIdentList()
			if err != nil {
				return nil, err
			}
			join.Using = cols
		}
	}
	return join, nil
}

func (p *Parser) parseTableRef() (TableRef, error) {
	if p.check(token.LPAREN) {
		p.next()
		if !p.check(token.SELECT) {
			return nil, p.errorf("unexpected token %s, expected SELECT", p.cur.Type)
		}
		stmt, err := p.parseSelectStmt()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		derived := &DerivedTable{Select: stmt}
		alias, aliasColumns, err := p.parseCorrelation()
		if err != nil {
			return nil, err
		}
		if alias == nil {
			return nil, p.errorf("derived table requires an alias")
		}
		derived.Alias = alias
		derived.AliasColumns = aliasColumns
		return derived, nil
	}

	name, err := p.parseQualName()
	if err != nil {
		return nil, err
	}
	ref := &TableName{Name: name}
	alias, aliasColumns, err := p.parseCorrelation()
	if err != nil {
		return nil, err
	}
	ref.Alias = alias
	ref.AliasColumns = aliasColumns
	return ref, nil
}

// parseCorrelation parses the optional [AS] alias [(col, ...)] suffix
// of a table reference.
func (p *Parser) parseCorrelation() (*Ident, []Ident, error) {
	var alias *Ident
	if p.match(token.AS) {
		id, err := p.parseIdent()
		if err != nil {
			return nil, nil, err
		}
		alias = &id
	} else if p.check(token.IDENT) {
		id := Ident{Name: p.cur.Literal, Span: p.cur.Span}
		p.next()
		alias = &id
	}
	if alias == nil {
		return nil, nil, nil
	}
	var columns []Ident
	if p.check(token.LPAREN) {
		cols, err := p.parseIdentList()
		if err != nil {
			return nil, nil, err
		}
		columns = cols
	}
	return alias, columns, nil
}
