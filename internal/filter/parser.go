package filter

import (
	"strconv"
	"strings"

	"github.com/querygrid/querygrid/internal/value"
)

// Parse lexes and parses a filter expression into an Expr tree.
//
// Grammar, loosest binding first:
//
//	or     = and { ("||" | "or") and }
//	and    = cmp { ("&&" | "and") cmp }
//	cmp    = add [ compare-op add ]          (non-associative)
//	add    = mul { ("+" | "-") mul }
//	mul    = unary { ("*" | "/" | "%") unary }
//	unary  = ("!" | "not" | "-") unary | primary
//	primary = literal | field | call | "(" or ")"
//
// Trailing input after a complete expression is a syntax error.
func Parse(src string) (Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, syntaxErrf(0, "empty expression")
	}
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != TokenEOF {
		return nil, syntaxErrf(tok.Offset, "unexpected %s after expression", tok.Kind)
	}
	return expr, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind TokenKind) (Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return Token{}, syntaxErrf(tok.Offset, "expected %s, found %s", kind, tok.Kind)
	}
	return p.advance(), nil
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == TokenOr {
		op := p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: OpOr, L: left, R: right, Offset: op.Offset}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseCmp()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == TokenAnd {
		op := p.advance()
		right, err := p.parseCmp()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: OpAnd, L: left, R: right, Offset: op.Offset}
	}
	return left, nil
}

var cmpOps = map[TokenKind]Op{
	TokenEq: OpEq,
	TokenNe: OpNe,
	TokenGt: OpGt,
	TokenGe: OpGe,
	TokenLt: OpLt,
	TokenLe: OpLe,
}

// parseCmp parses at most one comparison: comparisons do not chain, so
// "a < b < c" is rejected at the second operator.
func (p *parser) parseCmp() (Expr, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	op, ok := cmpOps[p.peek().Kind]
	if !ok {
		return left, nil
	}
	tok := p.advance()
	right, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	if next, chained := cmpOps[p.peek().Kind]; chained {
		return nil, syntaxErrf(p.peek().Offset, "comparisons do not chain (unexpected %s)", next)
	}
	return &Binary{Op: op, L: left, R: right, Offset: tok.Offset}, nil
}

func (p *parser) parseAdd() (Expr, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for {
		var op Op
		switch p.peek().Kind {
		case TokenPlus:
			op = OpAdd
		case TokenMinus:
			op = OpSub
		default:
			return left, nil
		}
		tok := p.advance()
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, L: left, R: right, Offset: tok.Offset}
	}
}

func (p *parser) parseMul() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op Op
		switch p.peek().Kind {
		case TokenStar:
			op = OpMul
		case TokenSlash:
			op = OpDiv
		case TokenPercent:
			op = OpMod
		default:
			return left, nil
		}
		tok := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, L: left, R: right, Offset: tok.Offset}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	switch p.peek().Kind {
	case TokenNot:
		tok := p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: OpNot, X: x, Offset: tok.Offset}, nil
	case TokenMinus:
		tok := p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		// Fold negation into numeric literals so "-3" is a literal,
		// not a unary node.
		if lit, ok := x.(*Literal); ok {
			switch v := lit.Val.(type) {
			case value.Int:
				return &Literal{Val: value.Int(-int64(v)), Offset: tok.Offset}, nil
			case value.Float:
				return &Literal{Val: value.Float(-float64(v)), Offset: tok.Offset}, nil
			}
		}
		return &Unary{Op: OpNeg, X: x, Offset: tok.Offset}, nil
	default:
		return p.parsePrimary()
	}
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Kind {
	case TokenLParen:
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return expr, nil

	case TokenString:
		p.advance()
		return &Literal{Val: value.String(tok.Text), Offset: tok.Offset}, nil

	case TokenInt:
		p.advance()
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, syntaxErrf(tok.Offset, "integer literal out of range: %s", tok.Text)
		}
		return &Literal{Val: value.Int(n), Offset: tok.Offset}, nil

	case TokenFloat:
		p.advance()
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, syntaxErrf(tok.Offset, "invalid float literal: %s", tok.Text)
		}
		return &Literal{Val: value.Float(f), Offset: tok.Offset}, nil

	case TokenTrue:
		p.advance()
		return &Literal{Val: value.Bool(true), Offset: tok.Offset}, nil

	case TokenFalse:
		p.advance()
		return &Literal{Val: value.Bool(false), Offset: tok.Offset}, nil

	case TokenNull:
		p.advance()
		return &Literal{Val: value.Null{}, Offset: tok.Offset}, nil

	case TokenIdent:
		p.advance()
		if p.peek().Kind == TokenLParen {
			return p.parseCallArgs(tok)
		}
		return &Field{Path: tok.Text, Offset: tok.Offset}, nil

	default:
		return nil, syntaxErrf(tok.Offset, "unexpected %s", tok.Kind)
	}
}

// parseCallArgs parses the parenthesized argument list of a call whose
// name token has already been consumed.
func (p *parser) parseCallArgs(name Token) (Expr, error) {
	if strings.Contains(name.Text, ".") {
		return nil, syntaxErrf(name.Offset, "function name %q cannot contain dots", name.Text)
	}
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}

	call := &Call{Name: strings.ToLower(name.Text), Offset: name.Offset}
	if p.peek().Kind == TokenRParen {
		p.advance()
		return call, nil
	}
	for {
		arg, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		switch p.peek().Kind {
		case TokenComma:
			p.advance()
		case TokenRParen:
			p.advance()
			return call, nil
		default:
			return nil, syntaxErrf(p.peek().Offset, "expected ',' or ')' in argument list, found %s", p.peek().Kind)
		}
	}
}
