package fip

import (
	"fmt"
	"time"

	"github.com/fip-lang/fip/pkg/ioctx"
)

func init() {
	registerStdlib()
}

// registerStdlib installs the builtins enumerated in spec §5, grounded on
// original_source/src/interpreter.rs's install_builtins. Arithmetic and
// higher-order list builtins are pure; log!, trace!, for-each!, wait!, and
// repeat! are impure and require an impure caller per spec §4.4.
func registerStdlib() {
	Builtin("log!").
		Doc("writes a value's display form to stdout, followed by a newline").
		Impure().
		Params("message").
		Impl(func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			fmt.Fprintln(ioctx.Stdout(ev.Context()), DisplayString(args[0]))
			return NullValue{}, nil
		})

	Builtin("trace!").
		Doc("writes a labeled value's display form to stderr and returns the value unchanged").
		Impure().
		Params("label", "value").
		Impl(func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			fmt.Fprintf(ioctx.Stderr(ev.Context()), "(trace) %s: %s\n", DisplayString(args[0]), DisplayString(args[1]))
			return args[1], nil
		})

	Builtin("identity").
		Doc("returns its argument unchanged").
		Params("x").
		Impl(func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			return args[0], nil
		})

	Builtin("defined?").
		Doc("reports whether a value is anything other than Null").
		Params("value").
		Impl(func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			_, isNull := args[0].(NullValue)
			return BoolValue{Val: !isNull}, nil
		})

	Builtin("increment").
		Doc("adds one to a Number").
		Params("number").
		Impl(func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			n, err := argNumber(args, 0, "increment")
			if err != nil {
				return nil, err
			}
			return NumberValue{Val: n + 1}, nil
		})

	Builtin("decrement").
		Doc("subtracts one from a Number").
		Params("number").
		Impl(func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			n, err := argNumber(args, 0, "decrement")
			if err != nil {
				return nil, err
			}
			return NumberValue{Val: n - 1}, nil
		})

	Builtin("add").Params("a", "b").Impl(numberBinop("add", func(a, b int64) int64 { return a + b }))
	Builtin("subtract").Params("a", "b").Impl(numberBinop("subtract", func(a, b int64) int64 { return a - b }))
	Builtin("multiply").Params("a", "b").Impl(numberBinop("multiply", func(a, b int64) int64 { return a * b }))

	Builtin("divide").
		Doc("truncating integer division; division by zero is a runtime error").
		Params("a", "b").
		Impl(func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			a, err := argNumber(args, 0, "divide")
			if err != nil {
				return nil, err
			}
			b, err := argNumber(args, 1, "divide")
			if err != nil {
				return nil, err
			}
			if b == 0 {
				return nil, newRuntimeError(loc, "divide received division by zero")
			}
			return NumberValue{Val: a / b}, nil
		})

	Builtin("divide-by").
		Doc("like divide with its arguments flipped, so `divide-by(d)` curries into a reusable divisor").
		Params("b", "a").
		Impl(func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			b, err := argNumber(args, 0, "divide-by")
			if err != nil {
				return nil, err
			}
			a, err := argNumber(args, 1, "divide-by")
			if err != nil {
				return nil, err
			}
			if b == 0 {
				return nil, newRuntimeError(loc, "divide-by received division by zero")
			}
			return NumberValue{Val: a / b}, nil
		})

	Builtin("sum").
		Doc("adds every Number in an Array together, starting from zero").
		Params("list").
		Impl(func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			items, err := argArray(args, 0, "sum")
			if err != nil {
				return nil, err
			}
			var total int64
			for _, item := range items {
				n, ok := item.(NumberValue)
				if !ok {
					return nil, newRuntimeError(loc, "sum: expected every element to be a Number, found %s", item.Kind())
				}
				total += n.Val
			}
			return NumberValue{Val: total}, nil
		})

	Builtin("and?").Params("a", "b").Impl(boolBinop("and?", func(a, b bool) bool { return a && b }))
	Builtin("or?").Params("a", "b").Impl(boolBinop("or?", func(a, b bool) bool { return a || b }))

	Builtin("map").
		Doc("applies fn to every element of list, returning a new Array").
		Params("fn", "list").
		Impl(func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			fn, err := argCallable(args, 0, "map")
			if err != nil {
				return nil, err
			}
			if err := requireArity(fn, 1, "map"); err != nil {
				return nil, err
			}
			items, err := argArray(args, 1, "map")
			if err != nil {
				return nil, err
			}
			out := make([]Value, len(items))
			for i, item := range items {
				v, err := ev.Apply(loc, fn, []Value{item}, false)
				if err != nil {
					return nil, err
				}
				out[i] = v
			}
			return ArrayValue{Elements: out}, nil
		})

	Builtin("reduce").
		Doc("folds fn(accumulator, element) over list starting from init").
		Params("fn", "init", "list").
		Impl(func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			fn, err := argCallable(args, 0, "reduce")
			if err != nil {
				return nil, err
			}
			if err := requireArity(fn, 2, "reduce"); err != nil {
				return nil, err
			}
			items, err := argArray(args, 2, "reduce")
			if err != nil {
				return nil, err
			}
			acc := args[1]
			for _, item := range items {
				acc, err = ev.Apply(loc, fn, []Value{acc, item}, false)
				if err != nil {
					return nil, err
				}
			}
			return acc, nil
		})

	Builtin("filter").
		Doc("keeps elements of list for which predicate returns true").
		Params("predicate", "list").
		Impl(func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			pred, err := argCallable(args, 0, "filter")
			if err != nil {
				return nil, err
			}
			if err := requireArity(pred, 1, "filter"); err != nil {
				return nil, err
			}
			items, err := argArray(args, 1, "filter")
			if err != nil {
				return nil, err
			}
			var out []Value
			for _, item := range items {
				keep, err := ev.Apply(loc, pred, []Value{item}, false)
				if err != nil {
					return nil, err
				}
				kb, ok := keep.(BoolValue)
				if !ok {
					return nil, newRuntimeError(loc, "filter: predicate must return a Boolean, found %s", keep.Kind())
				}
				if kb.Val {
					out = append(out, item)
				}
			}
			return ArrayValue{Elements: out}, nil
		})

	Builtin("every?").
		Doc("reports whether predicate is true for every element of list (vacuously true for an empty list)").
		Params("predicate", "list").
		Impl(quantifier("every?", func(count, total int) bool { return count == total }))

	Builtin("some?").
		Doc("reports whether predicate is true for at least one element of list").
		Params("predicate", "list").
		Impl(quantifier("some?", func(count, total int) bool { return count > 0 }))

	Builtin("none?").
		Doc("reports whether predicate is false for every element of list (vacuously true for an empty list)").
		Params("predicate", "list").
		Impl(quantifier("none?", func(count, total int) bool { return count == 0 }))

	Builtin("for-each!").
		Doc("calls an impure fn once per element of list, discarding its results").
		Impure().
		Params("fn", "list").
		Impl(func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			fn, err := argCallable(args, 0, "for-each!")
			if err != nil {
				return nil, err
			}
			if !fn.IsImpure() {
				return nil, newRuntimeError(loc, "for-each! requires an impure (!) function")
			}
			if err := requireArity(fn, 1, "for-each!"); err != nil {
				return nil, err
			}
			items, err := argArray(args, 1, "for-each!")
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				if _, err := ev.Apply(loc, fn, []Value{item}, true); err != nil {
					return nil, err
				}
			}
			return NullValue{}, nil
		})

	Builtin("wait!").
		Doc("blocks synchronously for the given number of milliseconds, then returns Null").
		Impure().
		Params("milliseconds").
		Impl(func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			ms, err := argNumber(args, 0, "wait!")
			if err != nil {
				return nil, err
			}
			if ms < 0 {
				return nil, newRuntimeError(loc, "wait! received a negative duration")
			}
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ev.Context().Done():
				return nil, newRuntimeError(loc, "wait! interrupted: %v", ev.Context().Err())
			}
			return NullValue{}, nil
		})

	Builtin("repeat!").
		Doc("calls an impure zero-argument fn count times, discarding its results").
		Impure().
		Params("count", "fn").
		Impl(func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			count, err := argNumber(args, 0, "repeat!")
			if err != nil {
				return nil, err
			}
			fn, err := argCallable(args, 1, "repeat!")
			if err != nil {
				return nil, err
			}
			if !fn.IsImpure() {
				return nil, newRuntimeError(loc, "repeat! requires an impure (!) function")
			}
			if err := requireArity(fn, 0, "repeat!"); err != nil {
				return nil, err
			}
			for i := int64(0); i < count; i++ {
				if _, err := ev.Apply(loc, fn, nil, true); err != nil {
					return nil, err
				}
			}
			return NullValue{}, nil
		})

	Builtin("if").
		Doc("calls then-fn() if condition is true, else-fn() otherwise; both must be zero-argument functions").
		Params("condition", "then-fn", "else-fn").
		Impl(func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			cond, err := argBool(args, 0, "if")
			if err != nil {
				return nil, err
			}
			branch, err := argCallable(args, 1, "if")
			if err != nil {
				return nil, err
			}
			if !cond {
				branch, err = argCallable(args, 2, "if")
				if err != nil {
					return nil, err
				}
			}
			if err := requireArity(branch, 0, "if"); err != nil {
				return nil, err
			}
			return ev.Apply(loc, branch, nil, false)
		})
}

func numberBinop(name string, f func(a, b int64) int64) BuiltinImpl {
	return func(ev *Evaluator, loc Location, args []Value) (Value, error) {
		a, err := argNumber(args, 0, name)
		if err != nil {
			return nil, err
		}
		b, err := argNumber(args, 1, name)
		if err != nil {
			return nil, err
		}
		return NumberValue{Val: f(a, b)}, nil
	}
}

func boolBinop(name string, f func(a, b bool) bool) BuiltinImpl {
	return func(ev *Evaluator, loc Location, args []Value) (Value, error) {
		a, err := argBool(args, 0, name)
		if err != nil {
			return nil, err
		}
		b, err := argBool(args, 1, name)
		if err != nil {
			return nil, err
		}
		return BoolValue{Val: f(a, b)}, nil
	}
}

func quantifier(name string, satisfied func(matched, total int) bool) BuiltinImpl {
	return func(ev *Evaluator, loc Location, args []Value) (Value, error) {
		pred, err := argCallable(args, 0, name)
		if err != nil {
			return nil, err
		}
		if err := requireArity(pred, 1, name); err != nil {
			return nil, err
		}
		items, err := argArray(args, 1, name)
		if err != nil {
			return nil, err
		}
		matched := 0
		for _, item := range items {
			result, err := ev.Apply(loc, pred, []Value{item}, false)
			if err != nil {
				return nil, err
			}
			rb, ok := result.(BoolValue)
			if !ok {
				return nil, newRuntimeError(loc, "%s: predicate must return a Boolean, found %s", name, result.Kind())
			}
			if rb.Val {
				matched++
			}
		}
		return BoolValue{Val: satisfied(matched, len(items))}, nil
	}
}

// arrayMethodNames backs the `.map`/`.filter`/... property-access sugar on
// Array values (spec §9): accessing one of these names on an Array yields
// a callable that takes the builtin's arguments other than the list (just
// the callback, or the callback and initial value for reduce) and invokes
// the matching global builtin with the receiver threaded into its list
// position. `xs.map(f)` reads as `map(f, xs)`.
var arrayMethodNames = map[string]bool{
	"map": true, "filter": true, "reduce": true,
	"every?": true, "some?": true, "none?": true, "for-each!": true,
}

// bindArrayMethod builds the receiver-bound callable for arr.<name>, or
// reports ok=false if name does not name an array method.
func bindArrayMethod(arr ArrayValue, name string) (Value, bool) {
	if !arrayMethodNames[name] {
		return nil, false
	}
	def, ok := builtinRegistry[name]
	if !ok {
		return nil, false
	}
	if name == "reduce" {
		return &BuiltinValue{Def: &BuiltinDef{
			Name:   def.Name,
			Params: []string{"fn", "init"},
			Impure: def.Impure,
			Impl: func(ev *Evaluator, loc Location, args []Value) (Value, error) {
				return def.Impl(ev, loc, []Value{args[0], args[1], arr})
			},
		}}, true
	}
	return &BuiltinValue{Def: &BuiltinDef{
		Name:   def.Name,
		Params: []string{"fn"},
		Impure: def.Impure,
		Impl: func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			return def.Impl(ev, loc, []Value{args[0], arr})
		},
	}}, true
}
