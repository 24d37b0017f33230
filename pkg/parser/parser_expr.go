package parser

import "github.com/leapstack-labs/semql/pkg/token"

// parseExpr parses a full expression (lowest precedence: OR).
func (p *Parser) parseExpr() (Expr, error) {
	return p.parseOr()
}

// continueExpr resumes expression parsing around an already-parsed
// primary. Used by the select-list parser after it has consumed a
// dotted name looking for "t.*".
func (p *Parser) continueExpr(left Expr) (Expr, error) {
	left, err := p.parseMultiplicativeRest(left)
	if err != nil {
		return nil, err
	}
	left, err = p.parseAdditiveRest(left)
	if err != nil {
		return nil, err
	}
	left, err = p.parseComparisonRest(left)
	if err != nil {
		return nil, err
	}
	left, err = p.parseAndRest(left)
	if err != nil {
		return nil, err
	}
	return p.parseOrRest(left)
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	return p.parseOrRest(left)
}

func (p *Parser) parseOrRest(left Expr) (Expr, error) {
	for p.check(token.OR) {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: token.OR, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	return p.parseAndRest(left)
}

func (p *Parser) parseAndRest(left Expr) (Expr, error) {
	for p.check(token.AND) {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: token.AND, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Expr, error) {
	if p.match(token.NOT) {
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: token.NOT, Expr: inner}, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return p.parseComparisonRest(left)
}

// parseComparisonRest parses the comparison and predicate suffixes
// (=, <>, IS NULL, BETWEEN, IN, LIKE) following left.
func (p *Parser) parseComparisonRest(left Expr) (Expr, error) {
	switch p.cur.Type {
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE:
		op := p.cur.Type
		p.next()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Left: left, Op: op, Right: right}, nil
	case token.IS:
		p.next()
		not := p.match(token.NOT)
		switch {
		case p.match(token.NULL):
			return &IsNullExpr{Expr: left, Not: not}, nil
		case p.check(token.TRUE) || p.check(token.FALSE):
			lit := &Literal{Type: LiteralBool, Value: p.cur.Literal}
			p.next()
			expr := Expr(&BinaryExpr{Left: left, Op: token.IS, Right: lit})
			if not {
				expr = &UnaryExpr{Op: token.NOT, Expr: expr}
			}
			return expr, nil
		default:
			return nil, p.errorf("unexpected token %s after IS", p.cur.Type)
		}
	case token.NOT, token.BETWEEN, token.IN, token.LIKE:
		not := p.match(token.NOT)
		switch {
		case p.match(token.BETWEEN):
			low, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.AND); err != nil {
				return nil, err
			}
			high, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			return &BetweenExpr{Expr: left, Not: not, Low: low, High: high}, nil
		case p.match(token.IN):
			return p.parseInRest(left, not)
		case p.match(token.LIKE):
			pattern, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			return &LikeExpr{Expr: left, Not: not, Pattern: pattern}, nil
		default:
			// A bare NOT here belongs to an enclosing boolean context.
			return nil, p.errorf("unexpected token %s after NOT", p.cur.Type)
		}
	}
	return left, nil
}

// parseInRest parses the parenthesized part of an IN predicate.
func (p *Parser) parseInRest(left Expr, not bool) (Expr, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	in := &InExpr{Expr: left, Not: not}
	if p.check(token.SELECT) {
		stmt, err := p.parseSelectStmt()
		if err != nil {
			return nil, err
		}
		in.Query = stmt
	} else {
		for {
			value, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			in.Values = append(in.Values, value)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return in, nil
}

func (p *Parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	return p.parseAdditiveRest(left)
}

func (p *Parser) parseAdditiveRest(left Expr) (Expr, error) {
	for p.check(token.PLUS) || p.check(token.MINUS) || p.check(token.DPIPE) {
		op := p.cur.Type
		p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.parseMultiplicativeRest(left)
}

func (p *Parser) parseMultiplicativeRest(left Expr) (Expr, error) {
	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT) {
		op := p.cur.Type
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.check(token.MINUS) || p.check(token.PLUS) {
		op := p.cur.Type
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, Expr: inner}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expr, error) {
	switch p.cur.Type {
	case token.NUMBER:
		lit := &Literal{Type: LiteralNumber, Value: p.cur.Literal}
		p.next()
		return lit, nil
	case token.STRING:
		lit := &Literal{Type: LiteralString, Value: p.cur.Literal}
		p.next()
		return lit, nil
	case token.TRUE, token.FALSE:
		lit := &Literal{Type: LiteralBool, Value: p.cur.Literal}
		p.next()
		return lit, nil
	case token.NULL:
		p.next()
		return &Literal{Type: LiteralNull}, nil
	case token.CASE:
		return p.parseCase()
	case token.EXISTS:
		p.next()
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		stmt, err := p.parseSelectStmt()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ExistsExpr{Select: stmt}, nil
	case token.LPAREN:
		p.next()
		if p.check(token.SELECT) {
			stmt, err := p.parseSelectStmt()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			return &SubqueryExpr{Select: stmt}, nil
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ParenExpr{Expr: inner}, nil
	case token.IDENT:
		return p.parseNameOrCall()
	}
	return nil, p.errorf("unexpected token %s in expression", p.cur.Type)
}

// parseNameOrCall parses a dotted name or a function call.
func (p *Parser) parseNameOrCall() (Expr, error) {
	name, err := p.parseQualName()
	if err != nil {
		return nil, err
	}

	if len(name.Parts) == 1 && p.check(token.LPAREN) {
		p.next()
		call := &FuncCall{Name: name.Parts[0]}
		if p.match(token.DISTINCT) {
			call.Distinct = true
		}
		switch {
		case p.match(token.STAR):
			call.Star = true
		case p.check(token.RPAREN):
		default:
			for {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				call.Args = append(call.Args, arg)
				if !p.match(token.COMMA) {
					break
				}
			}
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return call, nil
	}

	return columnRefFromQualName(&name), nil
}

func (p *Parser) parseCase() (Expr, error) {
	p.next() // consume CASE
	expr := &CaseExpr{}

	if !p.check(token.WHEN) {
		operand, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		expr.Operand = operand
	}
	for p.match(token.WHEN) {
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.THEN); err != nil {
			return nil, err
		}
		result, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		expr.Whens = append(expr.Whens, WhenClause{Condition: cond, Result: result})
	}
	if p.match(token.ELSE) {
		alt, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		expr.Else = alt
	}
	if _, err := p.expect(token.END); err != nil {
		return nil, err
	}
	return expr, nil
}
