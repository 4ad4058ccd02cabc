package engine

// Stmt is one executable statement.
type Stmt interface {
	Pos() Token
}

// Expr is an expression evaluated to a value.
type Expr interface {
	Pos() Token
}

type node struct {
	tok Token
}

func (n node) Pos() Token { return n.tok }

type (
	// DeclStmt is ‘let name: type = value’ or its const form. Value is nil
	// for a bare declaration.
	DeclStmt struct {
		node
		Const bool
		Name  string
		Type  ValueType
		Value Expr
	}

	AssignStmt struct {
		node
		Name  string
		Value Expr
	}

	ExprStmt struct {
		node
		X Expr
	}

	IfStmt struct {
		node
		Cond Expr
		Then []Stmt
		Else []Stmt
	}
)

type (
	NumberLit struct {
		node
		Value float64
	}

	StringLit struct {
		node
		Value string
	}

	BoolLit struct {
		node
		Value bool
	}

	Ident struct {
		node
		Name string
	}

	UnaryExpr struct {
		node
		Op TokenKind
		X  Expr
	}

	BinaryExpr struct {
		node
		Op   TokenKind
		L, R Expr
	}

	CallExpr struct {
		node
		Name string
		Args []Expr
	}
)
