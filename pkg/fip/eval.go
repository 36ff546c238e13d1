package fip

import (
	"context"
	"strings"
)

// Evaluator walks an AST against an Environment chain. impure is threaded
// through every recursive call rather than stored on the Evaluator itself:
// it names whether the *currently executing function* is allowed to invoke
// impure operations, and changes every time evaluation crosses into a new
// function body (spec §4.4).
type Evaluator struct {
	ctx    context.Context
	loader *ModuleLoader
}

// NewEvaluator builds an Evaluator. ctx carries the Stdout/Stderr streams
// (pkg/ioctx) that log!/trace! write to, plus cancellation for wait!/http
// builtins. loader resolves `use` statements; it may be nil for evaluating
// standalone expressions that perform no imports (e.g. in tests).
func NewEvaluator(ctx context.Context, loader *ModuleLoader) *Evaluator {
	return &Evaluator{ctx: ctx, loader: loader}
}

func (ev *Evaluator) Context() context.Context { return ev.ctx }

// EvalProgram evaluates every top-level form directly in env, in order.
// Per spec §4.5/§9 every top-level binding is therefore automatically
// visible as a module export once the caller reads it back out of env.
func (ev *Evaluator) EvalProgram(prog *Program, env *Environment) (Value, error) {
	var result Value = NullValue{}
	for _, form := range prog.Forms {
		v, err := ev.Eval(form, env, true)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

// Eval reduces a single AST node to a Value.
func (ev *Evaluator) Eval(e Expr, env *Environment, impure bool) (Value, error) {
	switch n := e.(type) {
	case *NumberLit:
		return NumberValue{Val: n.Value}, nil
	case *BoolLit:
		return BoolValue{Val: n.Value}, nil
	case *NullLit:
		return NullValue{}, nil
	case *StringLit:
		return ev.evalString(n, env, impure)
	case *Ident:
		v, ok := env.Get(n.Name)
		if !ok {
			return nil, newRuntimeError(n.Loc(), "undefined identifier %q", n.Name)
		}
		return v, nil
	case *ArrayLit:
		return ev.evalArrayLit(n, env, impure)
	case *ObjectLit:
		return ev.evalObjectLit(n, env, impure)
	case *SpreadExpr:
		return ev.Eval(n.Value, env, impure)
	case *BinaryOp:
		return ev.evalBinary(n, env, impure)
	case *UnaryOp:
		return ev.evalUnary(n, env, impure)
	case *Call:
		return ev.evalCall(n, env, impure)
	case *PropertyAccess:
		return ev.evalProperty(n, env, impure)
	case *Await:
		return ev.evalAwait(n, env, impure)
	case *Block:
		return ev.evalBlock(n, env, impure)
	case *FuncLit:
		return ev.evalFuncLit(n, env)
	case *Binding:
		return ev.evalBindingForm(n, env, impure)
	case *Use:
		return ev.evalUse(n, env)
	default:
		return nil, newRuntimeError(e.Loc(), "cannot evaluate node of type %T", e)
	}
}

// evalBlock implements the composable-block pipeline rule of spec §4.2/
// §4.3: a nested scope is opened, every form runs in order (bindings
// populate that scope for forms after them but never touch the running
// value). Each later form's value, if callable, is invoked with the
// running value as its single argument; a non-callable value simply
// replaces the running value. Grounded on original_source/src/interpreter.rs's
// eval_block (lines 2089-2121): `f: (x) { x  increment  increment  identity }`
// called as `f(1)` threads 1 -> increment(1)=2 -> increment(2)=3 ->
// identity(3)=3. An empty block, or one with only bindings, evaluates to
// Null.
func (ev *Evaluator) evalBlock(b *Block, env *Environment, impure bool) (Value, error) {
	child := env.Child()
	var current Value = NullValue{}
	started := false
	for _, form := range b.Forms {
		v, err := ev.Eval(form, child, impure)
		if err != nil {
			return nil, err
		}
		if _, isBinding := form.(*Binding); isBinding {
			continue
		}
		if !started {
			current = v
			started = true
			continue
		}
		if callee, ok := AsCallable(v); ok {
			current, err = ev.Apply(form.Loc(), callee, []Value{current}, impure)
			if err != nil {
				return nil, err
			}
		} else {
			current = v
		}
	}
	return current, nil
}

func (ev *Evaluator) evalFuncLit(n *FuncLit, env *Environment) (Value, error) {
	if err := checkPuritySuffixes(n); err != nil {
		return nil, err
	}
	return &FunctionValue{
		Name:      n.Name,
		Params:    n.Params,
		Body:      n.Body,
		Env:       env,
		Impure:    n.Impure,
		Predicate: n.Predicate,
		Async:     n.Async,
	}, nil
}

func (ev *Evaluator) evalBindingForm(n *Binding, env *Environment, impure bool) (Value, error) {
	val, err := ev.Eval(n.Value, env, impure)
	if err != nil {
		return nil, err
	}
	if err := bindPattern(n.Pattern, val, env, n.Loc()); err != nil {
		return nil, err
	}
	return val, nil
}

// bindPattern destructures val against pat, defining names into env.
// Missing array positions and missing object keys bind Null rather than
// erroring (spec §4.2 destructuring, confirmed against
// original_source/src/interpreter.rs's pattern-matching tests).
func bindPattern(pat Pattern, val Value, env *Environment, loc Location) error {
	switch p := pat.(type) {
	case *IdentPattern:
		return env.Define(p.Name, val, loc)
	case *ArrayPattern:
		arr, _ := val.(ArrayValue)
		for i, sub := range p.Elements {
			var elemVal Value = NullValue{}
			if i < len(arr.Elements) {
				elemVal = arr.Elements[i]
			}
			if err := bindPattern(sub, elemVal, env, loc); err != nil {
				return err
			}
		}
		return nil
	case *ObjectPattern:
		obj, isObj := val.(*ObjectValue)
		for _, f := range p.Fields {
			var fieldVal Value = NullValue{}
			if isObj {
				if v, ok := obj.Get(f.Key); ok {
					fieldVal = v
				}
			}
			if f.Nested != nil {
				if err := bindPattern(f.Nested, fieldVal, env, loc); err != nil {
					return err
				}
			} else if err := env.Define(f.Key, fieldVal, loc); err != nil {
				return err
			}
		}
		return nil
	default:
		return newRuntimeError(loc, "unsupported pattern type %T", pat)
	}
}

func (ev *Evaluator) evalUse(n *Use, env *Environment) (Value, error) {
	if ev.loader == nil {
		return nil, newRuntimeError(n.Loc(), "use %q: no module loader configured", n.ModulePath)
	}
	mod, err := ev.loader.Load(n.ModulePath, n.Loc())
	if err != nil {
		return nil, err
	}

	lookup := func(name string) (Value, error) {
		v, ok := mod.Exports[name]
		if !ok {
			return nil, newRuntimeError(n.Loc(), "module %q has no export %q", n.ModulePath, name)
		}
		return v, nil
	}

	switch n.Form {
	case UseSingle:
		v, err := lookup(n.Names[0])
		if err != nil {
			return nil, err
		}
		if err := env.Define(n.Names[0], v, n.Loc()); err != nil {
			return nil, err
		}
		return v, nil
	case UseSelective:
		var last Value = NullValue{}
		for _, name := range n.Names {
			v, err := lookup(name)
			if err != nil {
				return nil, err
			}
			if err := env.Define(name, v, n.Loc()); err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil
	case UseNamespace:
		v, err := lookup(n.Names[0])
		if err != nil {
			return nil, err
		}
		if err := env.Define(n.Alias, v, n.Loc()); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, newRuntimeError(n.Loc(), "unknown use form")
	}
}

func (ev *Evaluator) evalString(n *StringLit, env *Environment, impure bool) (Value, error) {
	var sb strings.Builder
	for _, seg := range n.Segments {
		if seg.Expr == nil {
			sb.WriteString(seg.Literal)
			continue
		}
		v, err := ev.Eval(seg.Expr, env, impure)
		if err != nil {
			return nil, err
		}
		sb.WriteString(InterpolateString(v))
	}
	return StringValue{Val: sb.String()}, nil
}

func (ev *Evaluator) evalArrayLit(n *ArrayLit, env *Environment, impure bool) (Value, error) {
	var elems []Value
	for _, el := range n.Elements {
		if sp, ok := el.(*SpreadExpr); ok {
			v, err := ev.Eval(sp.Value, env, impure)
			if err != nil {
				return nil, err
			}
			arr, ok := v.(ArrayValue)
			if !ok {
				return nil, newRuntimeError(sp.Loc(), "cannot spread a %s into an array", v.Kind())
			}
			elems = append(elems, arr.Elements...)
			continue
		}
		v, err := ev.Eval(el, env, impure)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	return ArrayValue{Elements: elems}, nil
}

func (ev *Evaluator) evalObjectLit(n *ObjectLit, env *Environment, impure bool) (Value, error) {
	obj := NewObject()
	for _, f := range n.Fields {
		if f.Spread != nil {
			v, err := ev.Eval(f.Spread, env, impure)
			if err != nil {
				return nil, err
			}
			src, ok := v.(*ObjectValue)
			if !ok {
				return nil, newRuntimeError(f.Spread.Loc(), "cannot spread a %s into an object", v.Kind())
			}
			for _, k := range src.Keys {
				obj = obj.With(k, src.Fields[k])
			}
			continue
		}
		v, err := ev.Eval(f.Value, env, impure)
		if err != nil {
			return nil, err
		}
		obj = obj.With(f.Key, v)
	}
	return obj, nil
}

func (ev *Evaluator) evalUnary(n *UnaryOp, env *Environment, impure bool) (Value, error) {
	v, err := ev.Eval(n.Operand, env, impure)
	if err != nil {
		return nil, err
	}
	num, ok := v.(NumberValue)
	if !ok {
		return nil, &TypeMismatchError{Loc: n.Loc(), Operator: n.Op, Operands: []string{v.Kind()}}
	}
	if n.Op == "-" {
		return NumberValue{Val: -num.Val}, nil
	}
	return num, nil
}

func (ev *Evaluator) evalBinary(n *BinaryOp, env *Environment, impure bool) (Value, error) {
	if n.Op == "&" || n.Op == "|" {
		return ev.evalShortCircuit(n, env, impure)
	}

	left, err := ev.Eval(n.Left, env, impure)
	if err != nil {
		return nil, err
	}
	right, err := ev.Eval(n.Right, env, impure)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "=":
		return BoolValue{Val: ValuesEqual(left, right)}, nil
	case "≠":
		return BoolValue{Val: !ValuesEqual(left, right)}, nil
	}

	ln, lok := left.(NumberValue)
	rn, rok := right.(NumberValue)
	if !lok || !rok {
		return nil, &TypeMismatchError{Loc: n.Loc(), Operator: n.Op, Operands: []string{left.Kind(), right.Kind()}}
	}
	switch n.Op {
	case "+":
		return NumberValue{Val: ln.Val + rn.Val}, nil
	case "-":
		return NumberValue{Val: ln.Val - rn.Val}, nil
	case "*":
		return NumberValue{Val: ln.Val * rn.Val}, nil
	case "/":
		if rn.Val == 0 {
			return nil, newRuntimeError(n.Loc(), "division by zero")
		}
		return NumberValue{Val: ln.Val / rn.Val}, nil
	case "<":
		return BoolValue{Val: ln.Val < rn.Val}, nil
	case ">":
		return BoolValue{Val: ln.Val > rn.Val}, nil
	case "<=":
		return BoolValue{Val: ln.Val <= rn.Val}, nil
	case ">=":
		return BoolValue{Val: ln.Val >= rn.Val}, nil
	default:
		return nil, newRuntimeError(n.Loc(), "unknown operator %q", n.Op)
	}
}

func (ev *Evaluator) evalShortCircuit(n *BinaryOp, env *Environment, impure bool) (Value, error) {
	left, err := ev.Eval(n.Left, env, impure)
	if err != nil {
		return nil, err
	}
	lb, ok := left.(BoolValue)
	if !ok {
		return nil, &TypeMismatchError{Loc: n.Loc(), Operator: n.Op, Operands: []string{left.Kind()}}
	}
	if n.Op == "&" && !lb.Val {
		return BoolValue{Val: false}, nil
	}
	if n.Op == "|" && lb.Val {
		return BoolValue{Val: true}, nil
	}
	right, err := ev.Eval(n.Right, env, impure)
	if err != nil {
		return nil, err
	}
	rb, ok := right.(BoolValue)
	if !ok {
		return nil, &TypeMismatchError{Loc: n.Loc(), Operator: n.Op, Operands: []string{right.Kind()}}
	}
	return rb, nil
}

// evalProperty implements the short-circuit chaining rule of spec §4.3:
// accessing a property of Null, or a missing key on an Object, yields Null
// rather than raising — a chain like a.b.c never errors partway through.
func (ev *Evaluator) evalProperty(n *PropertyAccess, env *Environment, impure bool) (Value, error) {
	obj, err := ev.Eval(n.Object, env, impure)
	if err != nil {
		return nil, err
	}
	if _, isNull := obj.(NullValue); isNull {
		return NullValue{}, nil
	}
	if arr, isArr := obj.(ArrayValue); isArr {
		if v, ok := bindArrayMethod(arr, n.Property); ok {
			return v, nil
		}
		return nil, newRuntimeError(n.Loc(), "cannot access property %q of a %s", n.Property, obj.Kind())
	}
	if prom, isProm := obj.(PromiseValue); isProm {
		if v, ok := bindPromiseMethod(prom, n.Property); ok {
			return v, nil
		}
		return nil, newRuntimeError(n.Loc(), "cannot access property %q of a %s", n.Property, obj.Kind())
	}
	ov, ok := obj.(*ObjectValue)
	if !ok {
		return nil, newRuntimeError(n.Loc(), "cannot access property %q of a %s", n.Property, obj.Kind())
	}
	v, found := ov.Get(n.Property)
	if !found {
		return NullValue{}, nil
	}
	return v, nil
}

func (ev *Evaluator) evalAwait(n *Await, env *Environment, impure bool) (Value, error) {
	v, err := ev.Eval(n.Value, env, impure)
	if err != nil {
		return nil, err
	}
	prom, ok := v.(PromiseValue)
	if !ok {
		return v, nil
	}
	return ev.awaitPromise(prom, n.Loc())
}

func (ev *Evaluator) evalCall(n *Call, env *Environment, impure bool) (Value, error) {
	calleeVal, err := ev.Eval(n.Callee, env, impure)
	if err != nil {
		return nil, err
	}
	callable, ok := AsCallable(calleeVal)
	if !ok {
		return nil, newRuntimeError(n.Loc(), "%s is not callable", DisplayString(calleeVal))
	}

	var args []Value
	for _, a := range n.Args {
		if sp, ok := a.(*SpreadExpr); ok {
			v, err := ev.Eval(sp.Value, env, impure)
			if err != nil {
				return nil, err
			}
			arr, ok := v.(ArrayValue)
			if !ok {
				return nil, newRuntimeError(sp.Loc(), "cannot spread a %s into a call's arguments", v.Kind())
			}
			args = append(args, arr.Elements...)
			continue
		}
		v, err := ev.Eval(a, env, impure)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	return ev.Apply(n.Loc(), callable, args, impure)
}

// Apply is the single auto-currying dispatch point (spec §3/§9): fewer
// arguments than the callable's remaining arity yields a new partially
// applied callable; exactly enough arguments invokes it; too many is a
// runtime error rather than silently ignored.
func (ev *Evaluator) Apply(loc Location, callable Callable, args []Value, callerImpure bool) (Value, error) {
	if len(args) > callable.Arity() {
		return nil, newRuntimeError(loc, "%s called with %d argument(s) but accepts at most %d",
			callable.DisplayName(), len(args), callable.Arity())
	}
	if err := checkDynamicPurity(loc, !callerImpure, callable); err != nil {
		return nil, err
	}

	switch c := callable.(type) {
	case *FunctionValue:
		if len(args) < c.Arity() {
			return c.withApplied(args), nil
		}
		return ev.callFunction(loc, c, args)
	case *BuiltinValue:
		if len(args) < c.Arity() {
			return c.withApplied(args), nil
		}
		return ev.callBuiltin(loc, c, args)
	default:
		return nil, newRuntimeError(loc, "unsupported callable type %T", callable)
	}
}

func (ev *Evaluator) callFunction(loc Location, fn *FunctionValue, args []Value) (Value, error) {
	allArgs := append(append([]Value{}, fn.Applied...), args...)
	callEnv := fn.Env.Child()
	for i, param := range fn.Params {
		if err := callEnv.Define(param, allArgs[i], loc); err != nil {
			return nil, err
		}
	}
	result, err := ev.evalBlock(fn.Body, callEnv, fn.Impure)
	if !fn.Async {
		return result, err
	}
	// An async function's call always succeeds, settling a Promise rather
	// than propagating a Go error directly (spec §9's synchronous-stub
	// latitude; see promise.go).
	return newSettledPromise(result, err), nil
}

func (ev *Evaluator) callBuiltin(loc Location, b *BuiltinValue, args []Value) (result Value, err error) {
	allArgs := append(append([]Value{}, b.Applied...), args...)
	defer func() {
		if r := recover(); r != nil {
			err = wrapBuiltinPanic(loc, b.Def.Name, r)
		}
	}()
	return b.Def.Impl(ev, loc, allArgs)
}
