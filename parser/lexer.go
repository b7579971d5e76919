package parser

import (
	"strings"
	"unicode"

	"github.com/sqldef-tools/sqliteddl/token"
)

// Lexer pulls Tokens off a rune stream with one-rune lookahead. It never
// fails: malformed input becomes an UNKNOWN token carrying the offending
// text, and scanning continues from there.
type Lexer struct {
	runes []rune
	pos   int

	item    rune
	hasItem bool

	nextItem rune
	hasNext  bool

	itemIndex int
	nextIndex int
}

// NewLexer primes a Lexer over src with two advances, matching the
// two-priming-advance setup of a one-character-lookahead pull cursor.
func NewLexer(src string) *Lexer {
	l := &Lexer{runes: []rune(src)}
	l.advance()
	l.advance()
	return l
}

func (l *Lexer) advance() {
	l.item, l.hasItem = l.nextItem, l.hasNext
	l.itemIndex = l.nextIndex
	if l.pos < len(l.runes) {
		l.nextItem, l.hasNext = l.runes[l.pos], true
		l.nextIndex = l.pos
		l.pos++
	} else {
		l.nextItem, l.hasNext = 0, false
		l.nextIndex = len(l.runes)
	}
}

// Pos returns the rune offset of the token Scan is about to produce.
func (l *Lexer) Pos() int {
	return l.itemIndex
}

// Tokens materializes the whole token stream from src, trivia included.
// A schema's worth of DDL is small enough that a strict buffer is fine
// (see the laziness note in the design notes); Scan is still available for
// callers that want a true pull interface.
func Tokens(src string) []token.Token {
	l := NewLexer(src)
	var out []token.Token
	for {
		tk, ok := l.Scan()
		if !ok {
			return out
		}
		out = append(out, tk)
	}
}

// Scan returns the next token and true, or the zero Token and false once
// the stream is exhausted.
func (l *Lexer) Scan() (token.Token, bool) {
	if !l.hasItem {
		return token.Token{}, false
	}

	switch {
	case isSpace(l.item):
		return l.scanSpace(), true
	case isDigit(l.item) || (l.item == '.' && l.hasNext && isDigit(l.nextItem)):
		return l.scanNumber(), true
	case isIdentStart(l.item):
		return l.scanIdentifier(), true
	case l.item == '\'' || l.item == '"':
		return l.scanString(), true
	case l.item == '`' || l.item == '[':
		return l.scanEnclosedID(), true
	default:
		return l.scanSymbol(), true
	}
}

func (l *Lexer) scanSpace() token.Token {
	s := string(l.item)
	l.advance()
	if tk, ok := token.Interned[s]; ok {
		return tk
	}
	return token.Token{Kind: token.WHITESPACE, Val: s}
}

func (l *Lexer) scanSymbol() token.Token {
	one := string(l.item)
	if l.hasNext {
		two := one + string(l.nextItem)
		switch two {
		case "--", "# ":
			return l.scanSingleLineComment()
		case "/*":
			return l.scanMultiLineComment()
		}
		if tk, ok := token.Interned[two]; ok {
			l.advance()
			l.advance()
			return tk
		}
	}
	if tk, ok := token.Interned[one]; ok {
		l.advance()
		return tk
	}
	l.advance()
	return token.Token{Kind: token.UNKNOWN, Val: one}
}

func (l *Lexer) scanSingleLineComment() token.Token {
	l.advance() // consume first char of "--" / "# "
	l.advance() // consume second char
	var sb strings.Builder
	for l.hasItem && l.item != '\n' {
		sb.WriteRune(l.item)
		l.advance()
	}
	if l.hasItem {
		l.advance() // consume trailing newline
	}
	return token.Token{Kind: token.SINGLE_LINE_COMMENT, Val: sb.String()}
}

func (l *Lexer) scanMultiLineComment() token.Token {
	l.advance() // consume /
	l.advance() // consume *
	var sb strings.Builder
	for l.hasItem && l.hasNext && !(l.item == '*' && l.nextItem == '/') {
		sb.WriteRune(l.item)
		l.advance()
	}
	if !l.hasItem || !l.hasNext {
		if l.hasItem {
			sb.WriteRune(l.item)
			l.advance()
		}
		return token.Token{Kind: token.UNKNOWN, Val: "/*" + sb.String()}
	}
	l.advance() // consume *
	l.advance() // consume /
	return token.Token{Kind: token.MULTI_LINE_COMMENT, Val: sb.String()}
}

func (l *Lexer) scanIdentifier() token.Token {
	id := l.readIdentChars()
	upper := strings.ToUpper(id)
	switch {
	case upper == "B" && l.hasItem && (l.item == '\'' || l.item == '"'):
		return l.scanBinary()
	case upper == "X" && l.hasItem && (l.item == '\'' || l.item == '"'):
		return l.scanBlob()
	default:
		if tk, ok := token.Interned[upper]; ok {
			return tk
		}
		return token.Token{Kind: token.RAW_ID, Val: id}
	}
}

func (l *Lexer) readIdentChars() string {
	var sb strings.Builder
	for l.hasItem && isIdentPart(l.item) {
		sb.WriteRune(l.item)
		l.advance()
	}
	return sb.String()
}

func (l *Lexer) scanBlob() token.Token {
	delim := l.item
	l.advance()
	hex := l.readHexDigits()
	if !l.hasItem || l.item != delim {
		return token.Token{Kind: token.UNKNOWN, Val: string(delim) + hex}
	}
	l.advance()
	return token.Token{Kind: token.BLOB, Val: hex}
}

func (l *Lexer) scanBinary() token.Token {
	delim := l.item
	l.advance()
	bits := l.readBinaryDigits()
	if !l.hasItem || l.item != delim {
		return token.Token{Kind: token.UNKNOWN, Val: string(delim) + bits}
	}
	l.advance()
	return token.Token{Kind: token.BINARY, Val: bits}
}

func (l *Lexer) scanNumber() token.Token {
	firstPart := l.readFractionalLiteral()
	if strings.ContainsAny(firstPart, "eE") {
		return token.Token{Kind: token.FLOAT, Val: firstPart}
	}
	if l.hasItem && l.item == '.' {
		l.advance()
		secondPart := l.readFractionalLiteral()
		return token.Token{Kind: token.FLOAT, Val: firstPart + "." + secondPart}
	}
	if firstPart == "0" && l.hasItem && (l.item == 'x' || l.item == 'X') {
		x := l.item
		l.advance()
		if l.hasItem && isHexDigit(l.item) {
			return token.Token{Kind: token.HEX, Val: l.readHexDigits()}
		}
		return token.Token{Kind: token.UNKNOWN, Val: "0" + string(x)}
	}
	return token.Token{Kind: token.INT, Val: firstPart}
}

func (l *Lexer) readFractionalLiteral() string {
	decimal := l.readIntLiteral()
	if l.hasItem && (l.item == 'e' || l.item == 'E') {
		l.advance()
		sign := ""
		if l.hasItem && (l.item == '+' || l.item == '-') {
			sign = string(l.item)
			l.advance()
		}
		exponent := l.readIntLiteral()
		return decimal + "e" + sign + exponent
	}
	return decimal
}

func (l *Lexer) readIntLiteral() string {
	var sb strings.Builder
	for l.hasItem && isDigit(l.item) {
		sb.WriteRune(l.item)
		l.advance()
	}
	return sb.String()
}

func (l *Lexer) readHexDigits() string {
	var sb strings.Builder
	for l.hasItem && isHexDigit(l.item) {
		sb.WriteRune(l.item)
		l.advance()
	}
	return sb.String()
}

func (l *Lexer) readBinaryDigits() string {
	var sb strings.Builder
	for l.hasItem && (l.item == '0' || l.item == '1') {
		sb.WriteRune(l.item)
		l.advance()
	}
	return sb.String()
}

func (l *Lexer) scanString() token.Token {
	delim := l.item
	l.advance()
	var sb strings.Builder
	for l.hasItem && (l.item != delim || (l.hasNext && l.nextItem == delim)) {
		if l.item == delim {
			l.advance() // consume the first half of a doubled delimiter
		}
		sb.WriteRune(l.item)
		l.advance()
	}
	if !l.hasItem {
		return token.Token{Kind: token.UNKNOWN, Val: string(delim) + sb.String()}
	}
	l.advance() // consume closing delimiter
	if delim == '\'' {
		return token.Token{Kind: token.STD_STR, Val: sb.String()}
	}
	return token.Token{Kind: token.STD_DELIMITED_ID, Val: sb.String()}
}

func (l *Lexer) scanEnclosedID() token.Token {
	open := l.item
	delim := closingDelim(open)
	l.advance()
	var sb strings.Builder
	for l.hasItem && l.item != delim {
		sb.WriteRune(l.item)
		l.advance()
	}
	if !l.hasItem {
		return token.Token{Kind: token.UNKNOWN, Val: string(open) + sb.String()}
	}
	l.advance() // consume closing delimiter
	return token.Token{Kind: token.NON_STD_DELIMITED_ID, Val: sb.String()}
}

func closingDelim(open rune) rune {
	if open == '[' {
		return ']'
	}
	return open
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$'
}
