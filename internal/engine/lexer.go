package engine

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const eof rune = -1

type lexFn func(*lexer) lexFn

// lexer is a pull-based state machine. Tokens are produced only when the
// parser asks for the next one, so a source file is never tokenized ahead of
// the statement being executed.
type lexer struct {
	input string // The input string to lex
	start int    // The start of the current token in input
	pos   int    // The pos of the cursor in input
	width int    // Width of the last rune lexed

	line, col           int // Position of the cursor
	prevLine, prevCol   int // Position before the last rune
	startLine, startCol int // Position of the current token

	parens int // Open parentheses; newlines inside them are whitespace
	state  lexFn
	queue  []Token
}

func newLexer(input string) *lexer {
	return &lexer{
		input:     input,
		line:      1,
		col:       1,
		startLine: 1,
		startCol:  1,
		state:     lexDefault,
	}
}

// Next returns the next token. Once input is exhausted or an error token has
// been produced it keeps returning a TokEOF.
func (l *lexer) Next() Token {
	for len(l.queue) == 0 && l.state != nil {
		l.state = l.state(l)
	}
	if len(l.queue) == 0 {
		return Token{Kind: TokEOF, Line: l.line, Column: l.col}
	}
	t := l.queue[0]
	l.queue = l.queue[1:]
	return t
}

func (l *lexer) emit(kind TokenKind) {
	l.emitVal(kind, l.input[l.start:l.pos])
}

func (l *lexer) emitVal(kind TokenKind, val string) {
	l.queue = append(l.queue, Token{
		Kind:   kind,
		Val:    val,
		Line:   l.startLine,
		Column: l.startCol,
	})
	l.ignore()
}

func (l *lexer) ignore() {
	l.start = l.pos
	l.startLine, l.startCol = l.line, l.col
}

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	var r rune
	r, l.width = utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += l.width
	l.prevLine, l.prevCol = l.line, l.col
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// backup may only be called once per call of next.
func (l *lexer) backup() {
	if l.width == 0 {
		return
	}
	l.pos -= l.width
	l.line, l.col = l.prevLine, l.prevCol
	l.width = 0
}

func (l *lexer) errorf(format string, args ...any) lexFn {
	l.queue = append(l.queue, Token{
		Kind:   TokError,
		Val:    fmt.Sprintf(format, args...),
		Line:   l.startLine,
		Column: l.startCol,
	})
	return nil
}

func lexDefault(l *lexer) lexFn {
	for {
		switch r := l.next(); {
		case r == eof:
			l.emit(TokEOF)
			return nil
		case r == '\n':
			if l.parens > 0 {
				l.ignore()
				continue
			}
			l.emit(TokNewline)
			return lexDefault
		case unicode.IsSpace(r):
			l.ignore()
		case r == '/' && l.peek() == '/':
			return lexComment
		case r == '"' || r == '\'':
			return lexString(r)
		case isDigit(r):
			l.backup()
			return lexNumber
		case isIdentStart(r):
			l.backup()
			return lexIdent
		default:
			kind, ok := punctuation[r]
			if !ok {
				return l.errorf("unexpected character %q", r)
			}
			switch kind {
			case TokLParen:
				l.parens++
			case TokRParen:
				if l.parens > 0 {
					l.parens--
				}
			}
			l.emit(kind)
			return lexDefault
		}
	}
}

func lexComment(l *lexer) lexFn {
	for {
		if r := l.next(); r == '\n' || r == eof {
			l.backup()
			l.ignore()
			return lexDefault
		}
	}
}

func lexIdent(l *lexer) lexFn {
	for r := l.next(); isIdentStart(r) || isDigit(r); r = l.next() {
	}
	l.backup()

	word := l.input[l.start:l.pos]
	if kind, ok := keywords[word]; ok {
		l.emit(kind)
	} else {
		l.emit(TokIdent)
	}
	return lexDefault
}

func lexNumber(l *lexer) lexFn {
	digits := func() {
		for r := l.next(); isDigit(r); r = l.next() {
		}
		l.backup()
	}

	digits()
	if l.peek() == '.' {
		l.next()
		if !isDigit(l.peek()) {
			return l.errorf("malformed number %q", l.input[l.start:l.pos])
		}
		digits()
	}
	if r := l.peek(); isIdentStart(r) {
		return l.errorf("malformed number %q", l.input[l.start:l.pos]+string(r))
	}
	l.emit(TokNumber)
	return lexDefault
}

func lexString(quote rune) lexFn {
	return func(l *lexer) lexFn {
		var sb strings.Builder
		for {
			switch r := l.next(); r {
			case eof, '\n':
				return l.errorf("unterminated string literal")
			case quote:
				l.emitVal(TokString, sb.String())
				return lexDefault
			case '\\':
				esc := l.next()
				switch esc {
				case 'n':
					sb.WriteRune('\n')
				case 't':
					sb.WriteRune('\t')
				case '\\', '"', '\'':
					sb.WriteRune(esc)
				case eof:
					return l.errorf("unterminated string literal")
				default:
					return l.errorf("invalid escape sequence \\%c", esc)
				}
			default:
				sb.WriteRune(r)
			}
		}
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}
