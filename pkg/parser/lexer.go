// Package parser provides the SQL front end for semantic resolution:
// a lexer and recursive-descent parser for the SELECT statement family.
package parser

import (
	"strings"

	"github.com/leapstack-labs/semql/pkg/token"
)

// Lexer tokenizes SQL input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{Line: l.line, Column: l.col, Offset: l.pos}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()

	switch {
	case l.ch == 0:
		return l.emit(token.EOF, "", pos)
	case isLetter(l.ch) || l.ch == '_':
		return l.readIdentifier(pos)
	case l.ch == '"':
		return l.readQuotedIdentifier(pos)
	case isDigit(l.ch):
		return l.readNumber(pos)
	case l.ch == '\'':
		return l.readString(pos)
	}

	ch := l.ch
	switch ch {
	case '+':
		l.readChar()
		return l.emit(token.PLUS, "+", pos)
	case '-':
		l.readChar()
		return l.emit(token.MINUS, "-", pos)
	case '*':
		l.readChar()
		return l.emit(token.STAR, "*", pos)
	case '/':
		l.readChar()
		return l.emit(token.SLASH, "/", pos)
	case '%':
		l.readChar()
		return l.emit(token.PERCENT, "%", pos)
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			l.readChar()
			return l.emit(token.DPIPE, "||", pos)
		}
	case '=':
		l.readChar()
		return l.emit(token.EQ, "=", pos)
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return l.emit(token.NE, "!=", pos)
		}
	case '<':
		switch l.peekChar() {
		case '>':
			l.readChar()
			l.readChar()
			return l.emit(token.NE, "<>", pos)
		case '=':
			l.readChar()
			l.readChar()
			return l.emit(token.LE, "<=", pos)
		default:
			l.readChar()
			return l.emit(token.LT, "<", pos)
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return l.emit(token.GE, ">=", pos)
		}
		l.readChar()
		return l.emit(token.GT, ">", pos)
	case '.':
		l.readChar()
		return l.emit(token.DOT, ".", pos)
	case ',':
		l.readChar()
		return l.emit(token.COMMA, ",", pos)
	case ';':
		l.readChar()
		return l.emit(token.SEMICOLON, ";", pos)
	case '(':
		l.readChar()
		return l.emit(token.LPAREN, "(", pos)
	case ')':
		l.readChar()
		return l.emit(token.RPAREN, ")", pos)
	}

	l.readChar()
	return l.emit(token.ILLEGAL, string(ch), pos)
}

// emit builds a token spanning from start to the current position.
func (l *Lexer) emit(t token.TokenType, literal string, start token.Position) token.Token {
	return token.Token{
		Type:    t,
		Literal: literal,
		Span:    token.Span{Start: start, End: l.currentPos()},
	}
}

// skipWhitespaceAndComments skips spaces, line comments (--) and block
// comments (/* */).
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '-' && l.peekChar() == '-':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			for l.ch != 0 && !(l.ch == '*' && l.peekChar() == '/') {
				l.readChar()
			}
			if l.ch != 0 {
				l.readChar()
				l.readChar()
			}
		default:
			return
		}
	}
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier(start token.Position) token.Token {
	begin := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	literal := l.input[begin:l.pos]
	return l.emit(token.LookupIdent(literal), literal, start)
}

// readQuotedIdentifier reads a "quoted" identifier; doubled quotes
// escape a literal quote.
func (l *Lexer) readQuotedIdentifier(start token.Position) token.Token {
	l.readChar() // consume opening quote
	var sb strings.Builder
	for {
		if l.ch == 0 {
			return l.emit(token.ILLEGAL, sb.String(), start)
		}
		if l.ch == '"' {
			if l.peekChar() == '"' {
				sb.WriteByte('"')
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar()
			break
		}
		sb.WriteByte(l.ch)
		l.readChar()
	}
	return l.emit(token.IDENT, sb.String(), start)
}

// readNumber reads an integer or decimal literal.
func (l *Lexer) readNumber(start token.Position) token.Token {
	begin := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.emit(token.NUMBER, l.input[begin:l.pos], start)
}

// readString reads a 'single quoted' string literal; doubled quotes
// escape a literal quote.
func (l *Lexer) readString(start token.Position) token.Token {
	l.readChar() // consume opening quote
	var sb strings.Builder
	for {
		if l.ch == 0 {
			return l.emit(token.ILLEGAL, sb.String(), start)
		}
		if l.ch == '\'' {
			if l.peekChar() == '\'' {
				sb.WriteByte('\'')
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar()
			break
		}
		sb.WriteByte(l.ch)
		l.readChar()
	}
	return l.emit(token.STRING, sb.String(), start)
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
