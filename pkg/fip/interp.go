package fip

import (
	"context"
	"os"
	"path/filepath"
)

// EvaluateFile is the CLI's entry point for running a file (`fip <file>`,
// spec §6): read, parse,
// and evaluate path, returning the value its last top-level form produced
// alongside the Module view of its bindings so callers (tests, a REPL) can
// inspect what the program exported.
func EvaluateFile(ctx context.Context, path string) (Value, *Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, newRuntimeError(Location{File: path}, "reading %s: %v", path, err)
	}

	prog, err := ParseFile(path, string(src))
	if err != nil {
		return nil, nil, err
	}

	loader := NewModuleLoader(ctx, filepath.Dir(path))
	env := StdEnv().Child()
	ev := NewEvaluator(ctx, loader)

	result, err := ev.EvalProgram(prog, env)
	if err != nil {
		return nil, nil, err
	}

	mod := &Module{Env: env, Exports: map[string]Value{}}
	for name, v := range env.vars {
		mod.Exports[name] = v
	}
	return result, mod, nil
}

// AnalyzeFile is the CLI's `fip lint` entry point: a static pass that
// parses path and collects every purity/predicate suffix violation without
// evaluating anything. Unlike the witness scan checkPuritySuffixes itself —
// which deliberately stops at a nested FuncLit so the dynamic backstop in
// eval.go can take over at call time — AnalyzeFile recurses into every
// nested function literal too, since a lint pass has no call time to defer
// to and should surface every violation in the file up front.
func AnalyzeFile(path string) ([]Diagnostic, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, newRuntimeError(Location{File: path}, "reading %s: %v", path, err)
	}

	prog, err := ParseFile(path, string(src))
	if err != nil {
		if diag, ok := err.(Diagnostic); ok {
			return []Diagnostic{diag}, nil
		}
		return nil, err
	}

	var diags []Diagnostic
	for _, form := range prog.Forms {
		walkFuncLits(form, func(fn *FuncLit) {
			if err := checkPuritySuffixes(fn); err != nil {
				if diag, ok := err.(Diagnostic); ok {
					diags = append(diags, diag)
				}
			}
		})
	}
	return diags, nil
}

// walkFuncLits visits every FuncLit reachable from e, including ones
// nested inside other FuncLit bodies, calling visit on each.
func walkFuncLits(e Expr, visit func(*FuncLit)) {
	if e == nil {
		return
	}
	if fn, ok := e.(*FuncLit); ok {
		visit(fn)
		walkFuncLits(fn.Body, visit)
		return
	}
	switch n := e.(type) {
	case *StringLit:
		for _, seg := range n.Segments {
			walkFuncLits(seg.Expr, visit)
		}
	case *ArrayLit:
		for _, el := range n.Elements {
			walkFuncLits(el, visit)
		}
	case *ObjectLit:
		for _, f := range n.Fields {
			walkFuncLits(f.Spread, visit)
			walkFuncLits(f.Value, visit)
		}
	case *SpreadExpr:
		walkFuncLits(n.Value, visit)
	case *BinaryOp:
		walkFuncLits(n.Left, visit)
		walkFuncLits(n.Right, visit)
	case *UnaryOp:
		walkFuncLits(n.Operand, visit)
	case *Call:
		walkFuncLits(n.Callee, visit)
		for _, a := range n.Args {
			walkFuncLits(a, visit)
		}
	case *PropertyAccess:
		walkFuncLits(n.Object, visit)
	case *Await:
		walkFuncLits(n.Value, visit)
	case *Block:
		for _, f := range n.Forms {
			walkFuncLits(f, visit)
		}
	case *Binding:
		walkFuncLits(n.Value, visit)
	}
}
