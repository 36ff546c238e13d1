package fip

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Value is the sum of runtime shapes enumerated in spec §3.
type Value interface {
	Kind() string
}

type NumberValue struct{ Val int64 }

func (NumberValue) Kind() string { return "Number" }

type StringValue struct{ Val string }

func (StringValue) Kind() string { return "String" }

type BoolValue struct{ Val bool }

func (BoolValue) Kind() string { return "Boolean" }

type NullValue struct{}

func (NullValue) Kind() string { return "Null" }

// ArrayValue is structurally immutable: every operation that would mutate
// it (spread, index-update helpers) builds a new slice.
type ArrayValue struct{ Elements []Value }

func (ArrayValue) Kind() string { return "Array" }

// ObjectValue preserves insertion order for iteration via Keys, alongside
// the Fields lookup map. Structurally immutable for the same reason as
// ArrayValue.
type ObjectValue struct {
	Keys   []string
	Fields map[string]Value
}

func (ObjectValue) Kind() string { return "Object" }

func NewObject() *ObjectValue {
	return &ObjectValue{Fields: map[string]Value{}}
}

// With returns a new ObjectValue with key set to val, preserving existing
// key order and appending key if it is new.
func (o *ObjectValue) With(key string, val Value) *ObjectValue {
	next := &ObjectValue{Fields: make(map[string]Value, len(o.Fields)+1)}
	next.Keys = append(next.Keys, o.Keys...)
	for k, v := range o.Fields {
		next.Fields[k] = v
	}
	if _, exists := next.Fields[key]; !exists {
		next.Keys = append(next.Keys, key)
	}
	next.Fields[key] = val
	return next
}

func (o *ObjectValue) Get(key string) (Value, bool) {
	v, ok := o.Fields[key]
	return v, ok
}

// Callable is satisfied by every Value that can appear on the left of a
// call expression: FunctionValue and BuiltinValue, each possibly
// partially applied.
type Callable interface {
	Value
	Arity() int
	RemainingParams() []string
	IsImpure() bool
	DisplayName() string
}

// FunctionValue is a user-defined closure. Applied holds arguments
// already supplied by a prior partial call; RemainingParams is Params
// minus len(Applied).
type FunctionValue struct {
	Name      string
	Params    []string
	Body      *Block
	Env       *Environment
	Impure    bool
	Predicate bool
	Async     bool
	Applied   []Value
}

func (*FunctionValue) Kind() string { return "Function" }
func (f *FunctionValue) Arity() int { return len(f.Params) - len(f.Applied) }
func (f *FunctionValue) RemainingParams() []string {
	return f.Params[len(f.Applied):]
}
func (f *FunctionValue) IsImpure() bool { return f.Impure }
func (f *FunctionValue) DisplayName() string {
	if f.Name == "" {
		return "<anonymous>"
	}
	return f.Name
}

// withApplied returns a new FunctionValue with extra appended to Applied,
// sharing Params/Body/Env with f (spec §3: partial application records
// the remaining-parameters tail, closing over the same captured
// environment).
func (f *FunctionValue) withApplied(extra []Value) *FunctionValue {
	applied := make([]Value, 0, len(f.Applied)+len(extra))
	applied = append(applied, f.Applied...)
	applied = append(applied, extra...)
	next := *f
	next.Applied = applied
	return &next
}

// BuiltinValue is a reference into the builtin registry, possibly
// carrying partial arguments.
type BuiltinValue struct {
	Def     *BuiltinDef
	Applied []Value
}

func (*BuiltinValue) Kind() string { return "Builtin" }
func (b *BuiltinValue) Arity() int { return len(b.Def.Params) - len(b.Applied) }
func (b *BuiltinValue) RemainingParams() []string {
	return b.Def.Params[len(b.Applied):]
}
func (b *BuiltinValue) IsImpure() bool       { return b.Def.Impure }
func (b *BuiltinValue) DisplayName() string  { return b.Def.Name }

func (b *BuiltinValue) withApplied(extra []Value) *BuiltinValue {
	applied := make([]Value, 0, len(b.Applied)+len(extra))
	applied = append(applied, b.Applied...)
	applied = append(applied, extra...)
	return &BuiltinValue{Def: b.Def, Applied: applied}
}

// PromiseValue is a settled-or-pending handle to a future Value with
// opaque identity (spec §3), backed by promiseState.
type PromiseValue struct {
	ID    uuid.UUID
	state *promiseState
}

func (PromiseValue) Kind() string { return "Promise" }

func AsCallable(v Value) (Callable, bool) {
	c, ok := v.(Callable)
	return c, ok
}

// ValuesEqual implements spec §3's structural, type-strict equality.
func ValuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case NumberValue:
		bv, ok := b.(NumberValue)
		return ok && av.Val == bv.Val
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av.Val == bv.Val
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av.Val == bv.Val
	case NullValue:
		_, ok := b.(NullValue)
		return ok
	case ArrayValue:
		bv, ok := b.(ArrayValue)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !ValuesEqual(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *ObjectValue:
		bv, ok := b.(*ObjectValue)
		if !ok || len(av.Keys) != len(bv.Keys) {
			return false
		}
		for k, v := range av.Fields {
			other, ok := bv.Fields[k]
			if !ok || !ValuesEqual(v, other) {
				return false
			}
		}
		return true
	case *FunctionValue:
		bv, ok := b.(*FunctionValue)
		return ok && av == bv
	case *BuiltinValue:
		bv, ok := b.(*BuiltinValue)
		return ok && av.Def == bv.Def && len(av.Applied) == len(bv.Applied)
	case PromiseValue:
		bv, ok := b.(PromiseValue)
		return ok && av.ID == bv.ID
	default:
		return false
	}
}

// DisplayString is the canonical textual form shared by log!, trace!, and
// error messages (spec §4.3). Null renders as "null" here; top-level
// interpolation of Null is handled separately by InterpolateString.
func DisplayString(v Value) string {
	switch vv := v.(type) {
	case NumberValue:
		return strconv.FormatInt(vv.Val, 10)
	case StringValue:
		return vv.Val
	case BoolValue:
		return strconv.FormatBool(vv.Val)
	case NullValue:
		return "null"
	case ArrayValue:
		parts := make([]string, len(vv.Elements))
		for i, e := range vv.Elements {
			parts[i] = nestedDisplayString(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *ObjectValue:
		parts := make([]string, len(vv.Keys))
		for i, k := range vv.Keys {
			parts[i] = fmt.Sprintf("%s: %s", k, nestedDisplayString(vv.Fields[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *FunctionValue:
		return fmt.Sprintf("<fn %s>", vv.DisplayName())
	case *BuiltinValue:
		return fmt.Sprintf("<builtin %s>", vv.DisplayName())
	case PromiseValue:
		return "<promise>"
	default:
		return fmt.Sprintf("%v", vv)
	}
}

// nestedDisplayString is DisplayString but quotes strings, matching the
// way array/object elements render distinctly from their top-level form.
func nestedDisplayString(v Value) string {
	if s, ok := v.(StringValue); ok {
		return strconv.Quote(s.Val)
	}
	return DisplayString(v)
}

// InterpolateString renders v for embedding inside a string literal:
// identical to DisplayString except a top-level Null renders as "" rather
// than "null" (spec §4.3).
func InterpolateString(v Value) string {
	if _, ok := v.(NullValue); ok {
		return ""
	}
	return DisplayString(v)
}
