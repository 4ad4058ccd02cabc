package engine

import (
	"github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
)

// interpreter executes statements against an execution context. All state
// lives in the context's memory.
type interpreter struct {
	ctx execution.Context
	env func(string) string
}

func (in *interpreter) exec(stmt Stmt) error {
	switch s := stmt.(type) {
	case *DeclStmt:
		return in.execDecl(s)
	case *AssignStmt:
		return in.execAssign(s)
	case *ExprStmt:
		if call, ok := s.X.(*CallExpr); ok {
			_, err := in.call(call)
			return err
		}
		_, err := in.eval(s.X)
		return err
	case *IfStmt:
		return in.execIf(s)
	}
	return errorAt(StageRuntime, stmt.Pos(), "unsupported statement")
}

func (in *interpreter) execDecl(s *DeclStmt) error {
	mem := in.ctx.Memory()
	if mem.Declared(s.Name) {
		return errorAt(StageRuntime, s.Pos(), "variable %s is already declared", s.Name)
	}

	binding := execution.Binding{Kind: s.Type.String(), Constant: s.Const}
	if s.Value != nil {
		v, err := in.typed(s.Value, s.Type, s.Name)
		if err != nil {
			return err
		}
		binding.Value = v
	}
	mem.Declare(s.Name, binding)
	return nil
}

func (in *interpreter) execAssign(s *AssignStmt) error {
	mem := in.ctx.Memory()
	b, ok := mem.Lookup(s.Name)
	if !ok {
		return errorAt(StageRuntime, s.Pos(), "variable %s is not declared", s.Name)
	}
	if b.Constant {
		return errorAt(StageRuntime, s.Pos(), "cannot assign to constant %s", s.Name)
	}

	typ, _ := parseValueType(b.Kind)
	v, err := in.typed(s.Value, typ, s.Name)
	if err != nil {
		return err
	}
	mem.Assign(s.Name, v)
	return nil
}

func (in *interpreter) execIf(s *IfStmt) error {
	v, err := in.eval(s.Cond)
	if err != nil {
		return err
	}
	cond, ok := coerce(v, TypeBoolean)
	if !ok {
		return errorAt(StageRuntime, s.Cond.Pos(), "condition must be a boolean, got %s", typeOf(v))
	}

	body := s.Else
	if cond.(bool) {
		body = s.Then
	}
	return in.execBlock(body)
}

// execBlock runs body in a child scope and always restores the parent.
func (in *interpreter) execBlock(body []Stmt) error {
	parent := in.ctx.Memory()
	in.ctx.SetMemory(parent.Child())
	defer in.ctx.SetMemory(parent)

	for _, stmt := range body {
		if err := in.exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// typed evaluates x and converts it to the type of variable name.
func (in *interpreter) typed(x Expr, want ValueType, name string) (any, error) {
	v, err := in.eval(x)
	if err != nil {
		return nil, err
	}
	out, ok := coerce(v, want)
	if !ok {
		if _, isInput := v.(input); isInput {
			return nil, errorAt(StageRuntime, x.Pos(), "cannot convert %q to %s for %s", format(v), want, name)
		}
		return nil, errorAt(StageRuntime, x.Pos(), "cannot assign %s to %s of type %s", typeOf(v), name, want)
	}
	return out, nil
}

func (in *interpreter) eval(x Expr) (any, error) {
	switch e := x.(type) {
	case *NumberLit:
		return e.Value, nil
	case *StringLit:
		return e.Value, nil
	case *BoolLit:
		return e.Value, nil
	case *Ident:
		b, ok := in.ctx.Memory().Lookup(e.Name)
		if !ok {
			return nil, errorAt(StageRuntime, e.Pos(), "variable %s is not declared", e.Name)
		}
		if b.Value == nil {
			return nil, errorAt(StageRuntime, e.Pos(), "variable %s is not initialized", e.Name)
		}
		return b.Value, nil
	case *UnaryExpr:
		v, err := in.eval(e.X)
		if err != nil {
			return nil, err
		}
		n, ok := coerce(v, TypeNumber)
		if !ok {
			return nil, errorAt(StageRuntime, e.Pos(), "cannot negate %s", typeOf(v))
		}
		return -n.(float64), nil
	case *BinaryExpr:
		return in.evalBinary(e)
	case *CallExpr:
		if builtins[e.Name].void {
			return nil, errorAt(StageRuntime, e.Pos(), "%s does not return a value", e.Name)
		}
		return in.call(e)
	}
	return nil, errorAt(StageRuntime, x.Pos(), "unsupported expression")
}

func (in *interpreter) evalBinary(e *BinaryExpr) (any, error) {
	l, err := in.eval(e.L)
	if err != nil {
		return nil, err
	}
	r, err := in.eval(e.R)
	if err != nil {
		return nil, err
	}

	// ‘+’ concatenates as soon as either side is text that is not a number.
	if e.Op == TokPlus {
		ln, lok := coerce(l, TypeNumber)
		rn, rok := coerce(r, TypeNumber)
		if lok && rok {
			return ln.(float64) + rn.(float64), nil
		}
		if typeOf(l) == TypeBoolean || typeOf(r) == TypeBoolean {
			if typeOf(l) != TypeString && typeOf(r) != TypeString {
				return nil, errorAt(StageRuntime, e.Pos(), "cannot add %s and %s", typeOf(l), typeOf(r))
			}
		}
		return format(l) + format(r), nil
	}

	ln, lok := coerce(l, TypeNumber)
	rn, rok := coerce(r, TypeNumber)
	if !lok || !rok {
		return nil, errorAt(StageRuntime, e.Pos(), "operator %s needs numbers, got %s and %s", e.Pos(), typeOf(l), typeOf(r))
	}
	a, b := ln.(float64), rn.(float64)
	switch e.Op {
	case TokMinus:
		return a - b, nil
	case TokStar:
		return a * b, nil
	case TokSlash:
		if b == 0 {
			return nil, errorAt(StageRuntime, e.Pos(), "division by zero")
		}
		return a / b, nil
	}
	return nil, errorAt(StageRuntime, e.Pos(), "unsupported operator %s", e.Pos())
}

func (in *interpreter) call(c *CallExpr) (any, error) {
	b := builtins[c.Name]
	args := make([]any, len(c.Args))
	for i, x := range c.Args {
		v, err := in.eval(x)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return b.call(in, c, args)
}
