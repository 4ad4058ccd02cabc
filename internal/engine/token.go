package engine

import "fmt"

// TokenKind classifies a lexical token.
type TokenKind int

const (
	// TokError carries a lexing failure in Val. It ends lexical analysis.
	TokError TokenKind = iota
	TokEOF
	TokNewline
	TokSemicolon

	TokIdent
	TokNumber
	TokString

	TokLet
	TokConst
	TokIf
	TokElse
	TokTrue
	TokFalse

	TokLParen
	TokRParen
	TokLBrace
	TokRBrace
	TokColon
	TokComma
	TokAssign
	TokPlus
	TokMinus
	TokStar
	TokSlash
)

var keywords = map[string]TokenKind{
	"let":   TokLet,
	"const": TokConst,
	"if":    TokIf,
	"else":  TokElse,
	"true":  TokTrue,
	"false": TokFalse,
}

var punctuation = map[rune]TokenKind{
	'(': TokLParen,
	')': TokRParen,
	'{': TokLBrace,
	'}': TokRBrace,
	':': TokColon,
	',': TokComma,
	'=': TokAssign,
	'+': TokPlus,
	'-': TokMinus,
	'*': TokStar,
	'/': TokSlash,
	';': TokSemicolon,
}

// Token is one lexeme with the position of its first rune.
type Token struct {
	Kind   TokenKind
	Val    string
	Line   int
	Column int
}

// Maximum length of a literal before truncation in diagnostics
const maxLiteralLen = 20

func (t Token) String() string {
	switch t.Kind {
	case TokError:
		return "error: " + t.Val
	case TokEOF:
		return "end of input"
	case TokNewline:
		return "end of line"
	case TokString:
		if len(t.Val) > maxLiteralLen {
			return fmt.Sprintf("%q…", t.Val[:maxLiteralLen])
		}
		return fmt.Sprintf("%q", t.Val)
	default:
		if len(t.Val) > maxLiteralLen {
			return fmt.Sprintf("‘%.*s…’", maxLiteralLen, t.Val)
		}
		return "‘" + t.Val + "’"
	}
}

func (k TokenKind) endsStatement() bool {
	return k == TokSemicolon || k == TokNewline || k == TokEOF
}
