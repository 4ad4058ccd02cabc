package engine

import "fmt"

type builtin struct {
	since   Version
	minArgs int
	maxArgs int
	// void builtins are only valid as statements.
	void bool
	call func(in *interpreter, call *CallExpr, args []any) (any, error)
}

func (b builtin) arity() string {
	switch {
	case b.minArgs == b.maxArgs && b.minArgs == 1:
		return "1 argument"
	case b.minArgs == b.maxArgs:
		return fmt.Sprintf("%d arguments", b.minArgs)
	default:
		return fmt.Sprintf("%d to %d arguments", b.minArgs, b.maxArgs)
	}
}

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"println":   {since: V1_0, minArgs: 1, maxArgs: 1, void: true, call: biPrint},
		"print":     {since: V1_0, minArgs: 1, maxArgs: 1, void: true, call: biPrint},
		"read":      {since: V1_0, minArgs: 0, maxArgs: 1, call: biRead},
		"readInput": {since: V1_1, minArgs: 1, maxArgs: 1, call: biReadInput},
		"readEnv":   {since: V1_1, minArgs: 1, maxArgs: 1, call: biReadEnv},
	}
}

func biPrint(in *interpreter, _ *CallExpr, args []any) (any, error) {
	in.ctx.Emit(format(args[0]))
	return nil, nil
}

func biRead(in *interpreter, _ *CallExpr, args []any) (any, error) {
	def := ""
	if len(args) == 1 {
		def = format(args[0])
	}
	v, err := in.ctx.Read(def)
	if err != nil {
		return nil, err
	}
	return input(v), nil
}

func biReadInput(in *interpreter, _ *CallExpr, args []any) (any, error) {
	if prompt := format(args[0]); prompt != "" {
		in.ctx.Emit(prompt)
	}
	v, err := in.ctx.Read("")
	if err != nil {
		return nil, err
	}
	return input(v), nil
}

func biReadEnv(in *interpreter, _ *CallExpr, args []any) (any, error) {
	return input(in.env(format(args[0]))), nil
}
