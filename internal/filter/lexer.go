package filter

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// keywords maps case-insensitive word forms to token kinds. The word
// comparison operators mirror the symbolic ones so "price gt 10" and
// "price > 10" lex identically.
var keywords = map[string]TokenKind{
	"and":   TokenAnd,
	"or":    TokenOr,
	"not":   TokenNot,
	"eq":    TokenEq,
	"ne":    TokenNe,
	"gt":    TokenGt,
	"ge":    TokenGe,
	"lt":    TokenLt,
	"le":    TokenLe,
	"true":  TokenTrue,
	"false": TokenFalse,
	"null":  TokenNull,
}

// Lex tokenizes a filter expression. The returned slice always ends
// with a TokenEOF. Errors carry the byte offset of the offending input.
func Lex(src string) ([]Token, error) {
	l := &lexer{src: src}
	var tokens []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens, nil
		}
	}
}

type lexer struct {
	src string
	pos int
}

func (l *lexer) next() (Token, error) {
	l.skipSpace()
	start := l.pos
	if l.pos >= len(l.src) {
		return Token{Kind: TokenEOF, Offset: start}, nil
	}

	c := l.src[l.pos]
	switch {
	case c == '(':
		l.pos++
		return Token{Kind: TokenLParen, Text: "(", Offset: start}, nil
	case c == ')':
		l.pos++
		return Token{Kind: TokenRParen, Text: ")", Offset: start}, nil
	case c == ',':
		l.pos++
		return Token{Kind: TokenComma, Text: ",", Offset: start}, nil
	case c == '+':
		l.pos++
		return Token{Kind: TokenPlus, Text: "+", Offset: start}, nil
	case c == '-':
		l.pos++
		return Token{Kind: TokenMinus, Text: "-", Offset: start}, nil
	case c == '*':
		l.pos++
		return Token{Kind: TokenStar, Text: "*", Offset: start}, nil
	case c == '/':
		l.pos++
		return Token{Kind: TokenSlash, Text: "/", Offset: start}, nil
	case c == '%':
		l.pos++
		return Token{Kind: TokenPercent, Text: "%", Offset: start}, nil

	case c == '=':
		if l.peekAt(1) == '=' {
			l.pos += 2
			return Token{Kind: TokenEq, Text: "==", Offset: start}, nil
		}
		return Token{}, syntaxErrf(start, "unexpected '=' (use '==' for equality)")
	case c == '!':
		if l.peekAt(1) == '=' {
			l.pos += 2
			return Token{Kind: TokenNe, Text: "!=", Offset: start}, nil
		}
		l.pos++
		return Token{Kind: TokenNot, Text: "!", Offset: start}, nil
	case c == '>':
		if l.peekAt(1) == '=' {
			l.pos += 2
			return Token{Kind: TokenGe, Text: ">=", Offset: start}, nil
		}
		l.pos++
		return Token{Kind: TokenGt, Text: ">", Offset: start}, nil
	case c == '<':
		if l.peekAt(1) == '=' {
			l.pos += 2
			return Token{Kind: TokenLe, Text: "<=", Offset: start}, nil
		}
		l.pos++
		return Token{Kind: TokenLt, Text: "<", Offset: start}, nil
	case c == '&':
		if l.peekAt(1) == '&' {
			l.pos += 2
			return Token{Kind: TokenAnd, Text: "&&", Offset: start}, nil
		}
		return Token{}, syntaxErrf(start, "unexpected '&' (use '&&' for conjunction)")
	case c == '|':
		if l.peekAt(1) == '|' {
			l.pos += 2
			return Token{Kind: TokenOr, Text: "||", Offset: start}, nil
		}
		return Token{}, syntaxErrf(start, "unexpected '|' (use '||' for disjunction)")

	case c == '\'' || c == '"':
		return l.lexString(c)

	case c >= '0' && c <= '9':
		return l.lexNumber()

	default:
		r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
		if isIdentStart(r) {
			return l.lexIdent()
		}
		return Token{}, syntaxErrf(start, "unexpected character %q", r)
	}
}

func (l *lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

// lexString scans a quoted literal. Both single and double quotes are
// accepted; backslash escapes the quote character, backslash, n, and t.
func (l *lexer) lexString(quote byte) (Token, error) {
	start := l.pos
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case quote:
			l.pos++
			return Token{Kind: TokenString, Text: b.String(), Offset: start}, nil
		case '\\':
			if l.pos+1 >= len(l.src) {
				return Token{}, syntaxErrf(l.pos, "unterminated escape sequence")
			}
			esc := l.src[l.pos+1]
			switch esc {
			case quote, '\\':
				b.WriteByte(esc)
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				return Token{}, syntaxErrf(l.pos, "invalid escape sequence '\\%c'", esc)
			}
			l.pos += 2
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return Token{}, syntaxErrf(start, "unterminated string literal")
}

// lexNumber scans an integer or float literal. A float has a decimal
// point with digits on both sides, or an exponent.
func (l *lexer) lexNumber() (Token, error) {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}

	isFloat := false
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		if l.pos+1 >= len(l.src) || !isDigit(l.src[l.pos+1]) {
			return Token{}, syntaxErrf(l.pos, "digit required after decimal point")
		}
		isFloat = true
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		exp := l.pos + 1
		if exp < len(l.src) && (l.src[exp] == '+' || l.src[exp] == '-') {
			exp++
		}
		if exp >= len(l.src) || !isDigit(l.src[exp]) {
			return Token{}, syntaxErrf(l.pos, "digit required in exponent")
		}
		isFloat = true
		l.pos = exp
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}

	kind := TokenInt
	if isFloat {
		kind = TokenFloat
	}
	return Token{Kind: kind, Text: l.src[start:l.pos], Offset: start}, nil
}

// lexIdent scans an identifier, which may be a dotted field path.
// Keywords are recognized case-insensitively; a dotted path is never a
// keyword.
func (l *lexer) lexIdent() (Token, error) {
	start := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentPart(r) {
			break
		}
		l.pos += size
		// A dot continues the path only if followed by another
		// identifier character.
		if l.pos < len(l.src) && l.src[l.pos] == '.' {
			nr, _ := utf8.DecodeRuneInString(l.src[l.pos+1:])
			if isIdentStart(nr) {
				l.pos++
			}
		}
	}

	text := l.src[start:l.pos]
	if !strings.Contains(text, ".") {
		if kind, ok := keywords[strings.ToLower(text)]; ok {
			return Token{Kind: kind, Text: text, Offset: start}, nil
		}
	}
	return Token{Kind: TokenIdent, Text: text, Offset: start}, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
