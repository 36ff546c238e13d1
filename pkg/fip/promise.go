package fip

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// promiseState is eagerly settled at construction time: the language has no
// real concurrency primitive to suspend on, so spec §9's latitude to
// implement async/Promise "as synchronous stubs without altering core
// semantics" is taken literally here. original_source/src/interpreter.rs
// parses `async`/`await` syntax but never evaluates either, so this whole
// file has no teacher-side behavior to match — only its identity (a settled
// value plus an opaque id, per spec §3) and the shape of Promise.all, which
// is grounded on golang.org/x/sync/errgroup the way the rest of the pack
// uses it for fan-out-with-first-error aggregation.
type promiseState struct {
	value Value
	err   error
}

func newSettledPromise(value Value, err error) PromiseValue {
	return PromiseValue{ID: uuid.New(), state: &promiseState{value: value, err: err}}
}

// awaitPromise unwraps a settled Promise, turning a rejection into a
// RuntimeError (spec §7: "awaiting a rejected Promise" is a named failure).
func (ev *Evaluator) awaitPromise(p PromiseValue, loc Location) (Value, error) {
	if p.state.err != nil {
		return nil, newRuntimeError(loc, "awaited a rejected Promise: %v", p.state.err)
	}
	return p.state.value, nil
}

func init() {
	RegisterGlobal("Promise", buildPromiseNamespace())
}

func buildPromiseNamespace() *ObjectValue {
	ns := NewObject()
	ns = ns.With("resolve", &BuiltinValue{Def: &BuiltinDef{
		Name: "Promise.resolve", Params: []string{"value"},
		Impl: func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			return newSettledPromise(args[0], nil), nil
		},
	}})
	ns = ns.With("reject", &BuiltinValue{Def: &BuiltinDef{
		Name: "Promise.reject", Params: []string{"reason"},
		Impl: func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			return newSettledPromise(NullValue{}, fmt.Errorf("%s", DisplayString(args[0]))), nil
		},
	}})
	ns = ns.With("all", &BuiltinValue{Def: &BuiltinDef{
		Name: "Promise.all", Params: []string{"list"},
		Impl: promiseAllImpl,
	}})
	return ns
}

// promiseAllImpl awaits every Promise in list concurrently via an
// errgroup, short-circuiting on the first rejection; non-Promise elements
// pass through unchanged, matching Promise.all's usual leniency.
func promiseAllImpl(ev *Evaluator, loc Location, args []Value) (Value, error) {
	items, err := argArray(args, 0, "Promise.all")
	if err != nil {
		return nil, err
	}
	results := make([]Value, len(items))
	g, _ := errgroup.WithContext(ev.Context())
	for i, item := range items {
		i, item := i, item
		prom, ok := item.(PromiseValue)
		if !ok {
			results[i] = item
			continue
		}
		g.Go(func() error {
			v, err := ev.awaitPromise(prom, loc)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ArrayValue{Elements: results}, nil
}

// bindPromiseMethod backs `.then` property-access sugar on Promise values.
func bindPromiseMethod(prom PromiseValue, name string) (Value, bool) {
	if name != "then" {
		return nil, false
	}
	return &BuiltinValue{Def: &BuiltinDef{
		Name:   "then",
		Params: []string{"fn"},
		Impl: func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			fn, err := argCallable(args, 0, "then")
			if err != nil {
				return nil, err
			}
			if err := requireArity(fn, 1, "then"); err != nil {
				return nil, err
			}
			if prom.state.err != nil {
				return prom, nil
			}
			result, err := ev.Apply(loc, fn, []Value{prom.state.value}, fn.IsImpure())
			if err != nil {
				return newSettledPromise(nil, err), nil
			}
			return newSettledPromise(result, nil), nil
		},
	}}, true
}
