package engine

import "strconv"

// parser turns the token stream into statements one at a time.
type parser struct {
	lex     *lexer
	cache   *Token
	version Version
}

func newParser(source string, version Version) *parser {
	return &parser{lex: newLexer(source), version: version}
}

func (p *parser) next() Token {
	var t Token
	if p.cache != nil {
		t, p.cache = *p.cache, nil
	} else {
		t = p.lex.Next()
	}
	return t
}

func (p *parser) peek() Token {
	if p.cache == nil {
		t := p.lex.Next()
		p.cache = &t
	}
	return *p.cache
}

func (p *parser) expect(kind TokenKind, want string) (Token, *Error) {
	t := p.next()
	if t.Kind != kind {
		return t, errExpected{want, t}.toError()
	}
	return t, nil
}

// skipSeparators consumes empty statements.
func (p *parser) skipSeparators() {
	for k := p.peek().Kind; k == TokNewline || k == TokSemicolon; k = p.peek().Kind {
		p.next()
	}
}

// more reports whether another statement follows.
func (p *parser) more() bool {
	p.skipSeparators()
	return p.peek().Kind != TokEOF
}

// statement parses the next top-level statement. It returns nil at end of
// input.
func (p *parser) statement() (Stmt, error) {
	p.skipSeparators()
	if p.peek().Kind == TokEOF {
		return nil, nil
	}
	stmt, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) parseStmt() (Stmt, *Error) {
	var (
		stmt Stmt
		err  *Error
	)

	switch t := p.peek(); t.Kind {
	case TokError:
		return nil, errorAt(StageLex, p.next(), "%s", t.Val)
	case TokLet, TokConst:
		stmt, err = p.parseDecl()
	case TokIf:
		// Blocks end in ‘}’ and need no terminator.
		return p.parseIf()
	case TokIdent:
		stmt, err = p.parseIdentStmt()
	default:
		x, xerr := p.parseExpr()
		if xerr != nil {
			return nil, xerr
		}
		stmt = &ExprStmt{node{t}, x}
	}
	if err != nil {
		return nil, err
	}
	return stmt, p.endStmt()
}

func (p *parser) endStmt() *Error {
	switch t := p.peek(); {
	case t.Kind.endsStatement():
		if t.Kind != TokEOF {
			p.next()
		}
		return nil
	case t.Kind == TokRBrace:
		return nil
	default:
		return errExpected{"‘;’", p.next()}.toError()
	}
}

func (p *parser) parseDecl() (Stmt, *Error) {
	kw := p.next()
	if kw.Kind == TokConst {
		if err := p.require(V1_1, kw, "const declarations"); err != nil {
			return nil, err
		}
	}

	name, err := p.expect(TokIdent, "a variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokColon, "‘:’"); err != nil {
		return nil, err
	}
	typTok, err := p.expect(TokIdent, "a type")
	if err != nil {
		return nil, err
	}
	typ, ok := parseValueType(typTok.Val)
	if !ok {
		return nil, errorAt(StageParse, typTok, "unknown type %s", typTok)
	}
	if typ == TypeBoolean {
		if err := p.require(V1_1, typTok, "the boolean type"); err != nil {
			return nil, err
		}
	}

	decl := &DeclStmt{node: node{kw}, Const: kw.Kind == TokConst, Name: name.Val, Type: typ}
	if p.peek().Kind != TokAssign {
		if decl.Const {
			return nil, errorAt(StageParse, name, "const %s must be initialized", name.Val)
		}
		return decl, nil
	}
	p.next()
	if decl.Value, err = p.parseExpr(); err != nil {
		return nil, err
	}
	return decl, nil
}

// parseIdentStmt handles assignments and expression statements that start
// with an identifier, such as builtin calls.
func (p *parser) parseIdentStmt() (Stmt, *Error) {
	t := p.next()
	if p.peek().Kind == TokAssign {
		p.next()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &AssignStmt{node{t}, t.Val, x}, nil
	}

	x, err := p.parseExprFrom(t)
	if err != nil {
		return nil, err
	}
	return &ExprStmt{node{t}, x}, nil
}

func (p *parser) parseIf() (Stmt, *Error) {
	kw := p.next()
	if err := p.require(V1_1, kw, "if statements"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLParen, "‘(’"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRParen, "‘)’"); err != nil {
		return nil, err
	}

	stmt := &IfStmt{node: node{kw}, Cond: cond}
	if stmt.Then, err = p.parseBlock(); err != nil {
		return nil, err
	}

	// A newline may separate ‘}’ from ‘else’. If no ‘else’ follows it was
	// the statement terminator anyway.
	if p.peek().Kind == TokNewline {
		p.next()
	}
	if p.peek().Kind == TokElse {
		p.next()
		if stmt.Else, err = p.parseBlock(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *parser) parseBlock() ([]Stmt, *Error) {
	if _, err := p.expect(TokLBrace, "‘{’"); err != nil {
		return nil, err
	}
	stmts := make([]Stmt, 0)
	for {
		p.skipSeparators()
		switch t := p.peek(); t.Kind {
		case TokRBrace:
			p.next()
			return stmts, nil
		case TokEOF:
			return nil, errExpected{"‘}’", p.next()}.toError()
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

func (p *parser) parseExpr() (Expr, *Error) {
	return p.parseExprFrom(p.next())
}

// parseExprFrom parses an expression whose first token has already been
// consumed.
func (p *parser) parseExprFrom(first Token) (Expr, *Error) {
	l, err := p.parseTerm(first)
	if err != nil {
		return nil, err
	}
	for k := p.peek().Kind; k == TokPlus || k == TokMinus; k = p.peek().Kind {
		op := p.next()
		r, err := p.parseTerm(p.next())
		if err != nil {
			return nil, err
		}
		l = &BinaryExpr{node{op}, op.Kind, l, r}
	}
	return l, nil
}

func (p *parser) parseTerm(first Token) (Expr, *Error) {
	l, err := p.parseUnary(first)
	if err != nil {
		return nil, err
	}
	for k := p.peek().Kind; k == TokStar || k == TokSlash; k = p.peek().Kind {
		op := p.next()
		r, err := p.parseUnary(p.next())
		if err != nil {
			return nil, err
		}
		l = &BinaryExpr{node{op}, op.Kind, l, r}
	}
	return l, nil
}

func (p *parser) parseUnary(t Token) (Expr, *Error) {
	if t.Kind == TokMinus {
		x, err := p.parseUnary(p.next())
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{node{t}, TokMinus, x}, nil
	}
	return p.parsePrimary(t)
}

func (p *parser) parsePrimary(t Token) (Expr, *Error) {
	switch t.Kind {
	case TokNumber:
		v, err := strconv.ParseFloat(t.Val, 64)
		if err != nil {
			return nil, errorAt(StageParse, t, "invalid number %s", t)
		}
		return &NumberLit{node{t}, v}, nil
	case TokString:
		return &StringLit{node{t}, t.Val}, nil
	case TokTrue, TokFalse:
		if err := p.require(V1_1, t, "boolean literals"); err != nil {
			return nil, err
		}
		return &BoolLit{node{t}, t.Kind == TokTrue}, nil
	case TokIdent:
		if p.peek().Kind == TokLParen {
			return p.parseCall(t)
		}
		return &Ident{node{t}, t.Val}, nil
	case TokLParen:
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen, "‘)’"); err != nil {
			return nil, err
		}
		return x, nil
	default:
		return nil, errExpected{"an expression", t}.toError()
	}
}

func (p *parser) parseCall(name Token) (Expr, *Error) {
	b, ok := builtins[name.Val]
	if !ok {
		return nil, errorAt(StageParse, name, "unknown function %s", name.Val)
	}
	if err := p.require(b.since, name, name.Val); err != nil {
		return nil, err
	}

	p.next() // ‘(’
	call := &CallExpr{node: node{name}, Name: name.Val, Args: make([]Expr, 0, 1)}
	if p.peek().Kind == TokRParen {
		p.next()
	} else {
		for {
			x, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, x)

			t := p.next()
			if t.Kind == TokRParen {
				break
			}
			if t.Kind != TokComma {
				return nil, errExpected{"‘,’ or ‘)’", t}.toError()
			}
		}
	}

	if n := len(call.Args); n < b.minArgs || n > b.maxArgs {
		return nil, errorAt(StageParse, name, "%s takes %s, got %d", name.Val, b.arity(), n)
	}
	return call, nil
}

func (p *parser) require(min Version, t Token, feature string) *Error {
	if p.version.AtLeast(min) {
		return nil
	}
	return errorAt(StageParse, t, "%s not supported in version %s", feature, p.version)
}
