// Package token defines the lexical token types for the SQL front end.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT  // identifier
	NUMBER // 123, 45.67, 1e10
	STRING // 'hello'

	// Operators
	PLUS      // +
	MINUS     // -
	STAR      // *
	SLASH     // /
	PERCENT   // %
	DPIPE     // ||
	EQ        // =
	NE        // != or <>
	LT        // <
	GT        // >
	LE        // <=
	GE        // >=
	DOT       // .
	COMMA     // ,
	LPAREN    // (
	RPAREN    // )
	SEMICOLON // ;

	// Keywords (alphabetical)
	ALL
	AND
	AS
	ASC
	BETWEEN
	BY
	CASE
	CORRESPONDING
	CROSS
	DESC
	DISTINCT
	ELSE
	END
	EXCEPT
	EXISTS
	FALSE
	FROM
	FULL
	GROUP
	HAVING
	IN
	INNER
	INTERSECT
	IS
	JOIN
	LEFT
	LIKE
	LIMIT
	NATURAL
	NOT
	NULL
	OFFSET
	ON
	OR
	ORDER
	OUTER
	RIGHT
	SELECT
	THEN
	TRUE
	UNION
	USING
	WHEN
	WHERE
)

// Token is a lexical token with its literal text and source span.
type Token struct {
	Type    TokenType
	Literal string
	Span    Span
}

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",

	PLUS:      "+",
	MINUS:     "-",
	STAR:      "*",
	SLASH:     "/",
	PERCENT:   "%",
	DPIPE:     "||",
	EQ:        "=",
	NE:        "<>",
	LT:        "<",
	GT:        ">",
	LE:        "<=",
	GE:        ">=",
	DOT:       ".",
	COMMA:     ",",
	LPAREN:    "(",
	RPAREN:    ")",
	SEMICOLON: ";",

	ALL:           "ALL",
	AND:           "AND",
	AS:            "AS",
	ASC:           "ASC",
	BETWEEN:       "BETWEEN",
	BY:            "BY",
	CASE:          "CASE",
	CORRESPONDING: "CORRESPONDING",
	CROSS:         "CROSS",
	DESC:          "DESC",
	DISTINCT:      "DISTINCT",
	ELSE:          "ELSE",
	END:           "END",
	EXCEPT:        "EXCEPT",
	EXISTS:        "EXISTS",
	FALSE:         "FALSE",
	FROM:          "FROM",
	FULL:          "FULL",
	GROUP:         "GROUP",
	HAVING:        "HAVING",
	IN:            "IN",
	INNER:         "INNER",
	INTERSECT:     "INTERSECT",
	IS:            "IS",
	JOIN:          "JOIN",
	LEFT:          "LEFT",
	LIKE:          "LIKE",
	LIMIT:         "LIMIT",
	NATURAL:       "NATURAL",
	NOT:           "NOT",
	NULL:          "NULL",
	OFFSET:        "OFFSET",
	ON:            "ON",
	OR:            "OR",
	ORDER:         "ORDER",
	OUTER:         "OUTER",
	RIGHT:         "RIGHT",
	SELECT:        "SELECT",
	THEN:          "THEN",
	TRUE:          "TRUE",
	UNION:         "UNION",
	USING:         "USING",
	WHEN:          "WHEN",
	WHERE:         "WHERE",
}

var keywords = map[string]TokenType{
	"all":           ALL,
	"and":           AND,
	"as":            AS,
	"asc":           ASC,
	"between":       BETWEEN,
	"by":            BY,
	"case":          CASE,
	"corresponding": CORRESPONDING,
	"cross":         CROSS,
	"desc":          DESC,
	"distinct":      DISTINCT,
	"else":          ELSE,
	"end":           END,
	"except":        EXCEPT,
	"exists":        EXISTS,
	"false":         FALSE,
	"from":          FROM,
	"full":          FULL,
	"group":         GROUP,
	"having":        HAVING,
	"in":            IN,
	"inner":         INNER,
	"intersect":     INTERSECT,
	"is":            IS,
	"join":          JOIN,
	"left":          LEFT,
	"like":          LIKE,
	"limit":         LIMIT,
	"natural":       NATURAL,
	"not":           NOT,
	"null":          NULL,
	"offset":        OFFSET,
	"on":            ON,
	"or":            OR,
	"order":         ORDER,
	"outer":         OUTER,
	"right":         RIGHT,
	"select":        SELECT,
	"then":          THEN,
	"true":          TRUE,
	"union":         UNION,
	"using":         USING,
	"when":          WHEN,
	"where":         WHERE,
}

// LookupIdent returns the keyword token type for an identifier,
// or IDENT if it is not a keyword. Keyword matching is case-insensitive.
func LookupIdent(ident string) TokenType {
	if t, ok := keywords[lower(ident)]; ok {
		return t
	}
	return IDENT
}

// lower is an ASCII-only lowercase fold. SQL keywords are ASCII.
func lower(s string) string {
	b := []byte(s)
	changed := false
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}
