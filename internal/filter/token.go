package filter

import "fmt"

// TokenKind classifies a lexed token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenString
	TokenInt
	TokenFloat
	TokenTrue
	TokenFalse
	TokenNull

	TokenEq  // == or eq
	TokenNe  // != or ne
	TokenGt  // > or gt
	TokenGe  // >= or ge
	TokenLt  // < or lt
	TokenLe  // <= or le

	TokenAnd // && or and
	TokenOr  // || or or
	TokenNot // ! or not

	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent

	TokenLParen
	TokenRParen
	TokenComma
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of input"
	case TokenIdent:
		return "identifier"
	case TokenString:
		return "string literal"
	case TokenInt:
		return "integer literal"
	case TokenFloat:
		return "float literal"
	case TokenTrue:
		return "true"
	case TokenFalse:
		return "false"
	case TokenNull:
		return "null"
	case TokenEq:
		return "=="
	case TokenNe:
		return "!="
	case TokenGt:
		return ">"
	case TokenGe:
		return ">="
	case TokenLt:
		return "<"
	case TokenLe:
		return "<="
	case TokenAnd:
		return "&&"
	case TokenOr:
		return "||"
	case TokenNot:
		return "!"
	case TokenPlus:
		return "+"
	case TokenMinus:
		return "-"
	case TokenStar:
		return "*"
	case TokenSlash:
		return "/"
	case TokenPercent:
		return "%"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenComma:
		return ","
	default:
		return fmt.Sprintf("token(%d)", int(k))
	}
}

// Token is one lexed unit of a filter expression.
type Token struct {
	Kind   TokenKind
	Text   string // literal text; for TokenString, the unescaped content
	Offset int    // byte offset into the source expression
}
