package fip

import (
	"fmt"
	"log/slog"
)

// BuiltinImpl is a native builtin's body. allArgs already holds every
// argument the call ultimately supplied, in parameter order — partial
// application is resolved by Apply before Impl ever runs.
type BuiltinImpl func(ev *Evaluator, loc Location, allArgs []Value) (Value, error)

// BuiltinDef is one entry in the standard library, analogous to a
// FunctionValue but backed by Go code instead of a Block.
type BuiltinDef struct {
	Name   string
	Doc    string
	Params []string
	Impure bool
	Impl   BuiltinImpl
}

var builtinRegistry = map[string]*BuiltinDef{}

// globalRegistry holds non-function standard-library globals, namely the
// Promise namespace object; see promise.go.
var globalRegistry = map[string]Value{}

// Register adds def to the global builtin registry. Called by Impl at the
// end of the BuiltinBuilder chain; exported so other packages assembling a
// custom stdlib subset could register their own.
func Register(def *BuiltinDef) {
	slog.Debug("registering builtin", "name", def.Name, "impure", def.Impure, "params", def.Params)
	builtinRegistry[def.Name] = def
}

// RegisterGlobal binds a non-function value under name in every StdEnv.
func RegisterGlobal(name string, v Value) {
	slog.Debug("registering stdlib global", "name", name)
	globalRegistry[name] = v
}

// StdEnv returns a fresh root Environment with every registered builtin
// and standard-library global value bound under its name, suitable as the
// parent of a module's top-level environment.
func StdEnv() *Environment {
	env := NewEnvironment()
	for name, def := range builtinRegistry {
		env.vars[name] = &BuiltinValue{Def: def}
	}
	for name, v := range globalRegistry {
		env.vars[name] = v
	}
	return env
}

// BuiltinBuilder is a fluent constructor for BuiltinDef, mirroring the
// registration idiom the interpreter's evaluator itself follows for
// FunctionValue: a name, a parameter list, a purity flag, then a body.
type BuiltinBuilder struct {
	def *BuiltinDef
}

func Builtin(name string) *BuiltinBuilder {
	return &BuiltinBuilder{def: &BuiltinDef{Name: name}}
}

func (b *BuiltinBuilder) Doc(doc string) *BuiltinBuilder {
	b.def.Doc = doc
	return b
}

func (b *BuiltinBuilder) Impure() *BuiltinBuilder {
	b.def.Impure = true
	return b
}

func (b *BuiltinBuilder) Params(names ...string) *BuiltinBuilder {
	b.def.Params = names
	return b
}

// Impl sets the implementation, registers the builtin, and returns the
// finished definition so callers can also reuse it directly (e.g. Array
// property sugar binding the receiver as the first applied argument).
func (b *BuiltinBuilder) Impl(fn BuiltinImpl) *BuiltinDef {
	b.def.Impl = fn
	Register(b.def)
	return b.def
}

func argNumber(args []Value, i int, who string) (int64, error) {
	n, ok := args[i].(NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s: expected a Number for argument %d, found %s", who, i+1, args[i].Kind())
	}
	return n.Val, nil
}

func argBool(args []Value, i int, who string) (bool, error) {
	b, ok := args[i].(BoolValue)
	if !ok {
		return false, fmt.Errorf("%s: expected a Boolean for argument %d, found %s", who, i+1, args[i].Kind())
	}
	return b.Val, nil
}

func argArray(args []Value, i int, who string) ([]Value, error) {
	a, ok := args[i].(ArrayValue)
	if !ok {
		return nil, fmt.Errorf("%s: expected an Array for argument %d, found %s", who, i+1, args[i].Kind())
	}
	return a.Elements, nil
}

func argCallable(args []Value, i int, who string) (Callable, error) {
	c, ok := AsCallable(args[i])
	if !ok {
		return nil, fmt.Errorf("%s: expected a callable for argument %d, found %s", who, i+1, args[i].Kind())
	}
	return c, nil
}

// requireArity errors if c does not accept exactly n more arguments; several
// higher-order builtins (map, filter, reduce...) call their callback with a
// fixed number of arguments and should fail fast on a mismatched arity
// rather than silently returning a further partial application.
func requireArity(c Callable, n int, who string) error {
	if c.Arity() != n {
		return fmt.Errorf("%s: callback must accept exactly %d argument(s), found %d", who, n, c.Arity())
	}
	return nil
}
