package fip

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalSrc(t *testing.T, src string) (Value, error) {
	t.Helper()
	prog, err := ParseFile("test.fip", src)
	require.NoError(t, err)
	ev := NewEvaluator(context.Background(), nil)
	return ev.EvalProgram(prog, StdEnv().Child())
}

func mustEval(t *testing.T, src string) Value {
	t.Helper()
	v, err := evalSrc(t, src)
	require.NoError(t, err)
	return v
}

func TestEvalArithmetic(t *testing.T) {
	cases := map[string]int64{
		"1 + 2 * 3": 7,
		"(1 + 2) * 3": 9,
		"10 - 3 - 2": 5,
		"7 / 2": 3,
		"-5 + 2": -3,
	}
	for src, want := range cases {
		v := mustEval(t, src)
		assert.Equal(t, NumberValue{Val: want}, v, src)
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	_, err := evalSrc(t, "1 / 0")
	require.Error(t, err)
	var rt *RuntimeError
	require.ErrorAs(t, err, &rt)
}

func TestEvalComparisonAndEquality(t *testing.T) {
	assert.Equal(t, BoolValue{Val: true}, mustEval(t, "1 < 2"))
	assert.Equal(t, BoolValue{Val: true}, mustEval(t, `"a" = "a"`))
	assert.Equal(t, BoolValue{Val: true}, mustEval(t, "1 ≠ 2"))
	assert.Equal(t, BoolValue{Val: false}, mustEval(t, "[1,2] = [1,3]"))
	assert.Equal(t, BoolValue{Val: true}, mustEval(t, "[1,2] = [1,2]"))
}

func TestEvalShortCircuit(t *testing.T) {
	// `&` should not evaluate its right side when the left is false — this
	// would error on a division by zero if it were evaluated.
	v := mustEval(t, "false & (1 / 0 = 0)")
	assert.Equal(t, BoolValue{Val: false}, v)

	v = mustEval(t, "true | (1 / 0 = 0)")
	assert.Equal(t, BoolValue{Val: true}, v)
}

func TestEvalStringInterpolation(t *testing.T) {
	v := mustEval(t, `name: "world"
"hello <name>!"`)
	assert.Equal(t, StringValue{Val: "hello world!"}, v)
}

func TestEvalNullInterpolatesAsEmpty(t *testing.T) {
	v := mustEval(t, `"x=<null>"`)
	assert.Equal(t, StringValue{Val: "x="}, v)
}

func TestEvalCompositeLiterals(t *testing.T) {
	v := mustEval(t, `base: {a: 1}
{...base, b: 2}`).(*ObjectValue)
	a, _ := v.Get("a")
	b, _ := v.Get("b")
	assert.Equal(t, NumberValue{Val: 1}, a)
	assert.Equal(t, NumberValue{Val: 2}, b)

	arr := mustEval(t, "rest: [2, 3]\n[1, ...rest, 4]").(ArrayValue)
	require.Len(t, arr.Elements, 4)
	assert.Equal(t, NumberValue{Val: 4}, arr.Elements[3])
}

func TestEvalPropertyAccessShortCircuits(t *testing.T) {
	assert.Equal(t, NullValue{}, mustEval(t, "null.foo"))
	assert.Equal(t, NullValue{}, mustEval(t, "{a: 1}.missing"))
	assert.Equal(t, NumberValue{Val: 1}, mustEval(t, "{a: 1}.a"))
}

func TestEvalCurrying(t *testing.T) {
	v := mustEval(t, `add3: (a, b, c) { a + b + c }
add3(1)(2)(3)`)
	assert.Equal(t, NumberValue{Val: 6}, v)

	v = mustEval(t, `add3: (a, b, c) { a + b + c }
add3(1, 2)(3)`)
	assert.Equal(t, NumberValue{Val: 6}, v)
}

func TestEvalCallArityOverflow(t *testing.T) {
	_, err := evalSrc(t, `f: (a) { a }
f(1, 2)`)
	require.Error(t, err)
}

func TestEvalDestructuring(t *testing.T) {
	t.Run("array pattern with missing positions", func(t *testing.T) {
		v := mustEval(t, `[a, b, c]: [1, 2]
c`)
		assert.Equal(t, NullValue{}, v)
	})

	t.Run("object pattern shorthand and missing key", func(t *testing.T) {
		v := mustEval(t, `{x, y}: {x: 1}
y`)
		assert.Equal(t, NullValue{}, v)
	})

	t.Run("nested object pattern", func(t *testing.T) {
		v := mustEval(t, `{point: {x, y}}: {point: {x: 1, y: 2}}
x + y`)
		assert.Equal(t, NumberValue{Val: 3}, v)
	})
}

func TestEvalMutationErrorOnRedefinition(t *testing.T) {
	_, err := evalSrc(t, "x: 1\nx: 2")
	require.Error(t, err)
	var mut *MutationError
	require.ErrorAs(t, err, &mut)
}

func TestEvalComposableBlock(t *testing.T) {
	v := mustEval(t, `{
  a: 1
  b: 2
  a + b
}`)
	assert.Equal(t, NumberValue{Val: 3}, v)
}

func TestEvalComposableBlockAppliesFunctionsInSequence(t *testing.T) {
	// Mirrors original_source's composable_block_applies_functions_in_sequence:
	// each non-binding line after the first is invoked with the running
	// value when it's callable, so 1 -> increment -> increment -> identity
	// threads 1 -> 2 -> 3 -> identity(3) = 3.
	v := mustEval(t, `f: (x) {
  x
  increment
  increment
  identity
}
f(1)`)
	assert.Equal(t, NumberValue{Val: 3}, v)
}

func TestEvalComposableBlockBindingsDoNotJoinPipeline(t *testing.T) {
	// A binding line's own value must never become the running value, even
	// when its right-hand side is itself callable.
	v := mustEval(t, `f: (x) {
  x
  increment
  unused: identity
  increment
}
f(1)`)
	assert.Equal(t, NumberValue{Val: 3}, v)
}

func TestEvalUndefinedIdentifier(t *testing.T) {
	_, err := evalSrc(t, "nope")
	require.Error(t, err)
}

func TestEvalPuritySuffixViolations(t *testing.T) {
	t.Run("impure witness without ! suffix", func(t *testing.T) {
		_, err := evalSrc(t, `bad: (x) { log!(x) }`)
		require.Error(t, err)
		var suf *SuffixError
		require.ErrorAs(t, err, &suf)
	})

	t.Run("! suffix without impure witness", func(t *testing.T) {
		_, err := evalSrc(t, `bad!: (x) { x + 1 }`)
		require.Error(t, err)
	})

	t.Run("boolean result without ? suffix", func(t *testing.T) {
		_, err := evalSrc(t, `bad: (x) { x = 1 }`)
		require.Error(t, err)
	})

	t.Run("? suffix without boolean result", func(t *testing.T) {
		_, err := evalSrc(t, `bad?: (x) { x + 1 }`)
		require.Error(t, err)
	})

	t.Run("nested function literal is its own scope", func(t *testing.T) {
		// The outer function only returns a function value; it performs no
		// impure operation itself, even though its body defines one.
		v := mustEval(t, `make: () { (x) ! { log!(x) } }
identity(make)`)
		_, ok := AsCallable(v)
		assert.True(t, ok)
	})
}

func TestEvalDynamicPurityBackstop(t *testing.T) {
	_, err := evalSrc(t, `callback: (f) { f(1) }
callback((x) ! { log!(x) })`)
	require.Error(t, err)
	var suf *SuffixError
	require.ErrorAs(t, err, &suf)
}

func TestEvalIfBuiltin(t *testing.T) {
	v := mustEval(t, `if(1 < 2, () { "yes" }, () { "no" })`)
	assert.Equal(t, StringValue{Val: "yes"}, v)
}

func TestEvalIfLazyBranches(t *testing.T) {
	// The unselected branch must never run, or this would divide by zero.
	v := mustEval(t, `if(false, () { 1 / 0 }, () { 42 })`)
	assert.Equal(t, NumberValue{Val: 42}, v)
}

func TestEvalHigherOrderListBuiltins(t *testing.T) {
	assert.Equal(t, ArrayValue{Elements: []Value{
		NumberValue{Val: 2}, NumberValue{Val: 4}, NumberValue{Val: 6},
	}}, mustEval(t, "map((x) { x * 2 }, [1,2,3])"))

	assert.Equal(t, NumberValue{Val: 6}, mustEval(t, "reduce((acc, x) { acc + x }, 0, [1,2,3])"))

	assert.Equal(t, ArrayValue{Elements: []Value{NumberValue{Val: 2}}},
		mustEval(t, "filter((x) ? { x = 2 }, [1,2,3])"))

	assert.Equal(t, BoolValue{Val: true}, mustEval(t, "every?((x) ? { x > 0 }, [1,2,3])"))
	assert.Equal(t, BoolValue{Val: false}, mustEval(t, "some?((x) ? { x > 5 }, [1,2,3])"))
	assert.Equal(t, BoolValue{Val: true}, mustEval(t, "none?((x) ? { x > 5 }, [1,2,3])"))
}

func TestEvalArrayMethodSugar(t *testing.T) {
	v := mustEval(t, "[1,2,3].map((x) { x + 1 })")
	assert.Equal(t, ArrayValue{Elements: []Value{
		NumberValue{Val: 2}, NumberValue{Val: 3}, NumberValue{Val: 4},
	}}, v)

	v = mustEval(t, "[1,2,3].reduce((acc, x) { acc + x }, 0)")
	assert.Equal(t, NumberValue{Val: 6}, v)
}

func TestEvalForEachRequiresImpureCallback(t *testing.T) {
	_, err := evalSrc(t, `for-each!((x) { x }, [1,2,3])`)
	require.Error(t, err)
}

func TestEvalAwaitOnNonPromisePassesThrough(t *testing.T) {
	assert.Equal(t, NumberValue{Val: 1}, mustEval(t, "await 1"))
}

func TestEvalAsyncFunctionSettlesPromise(t *testing.T) {
	v := mustEval(t, `async fetch: (x) { x + 1 }
await fetch(1)`)
	assert.Equal(t, NumberValue{Val: 2}, v)
}

func TestEvalSpreadIntoCallArgs(t *testing.T) {
	v := mustEval(t, `add3: (a, b, c) { a + b + c }
args: [1, 2, 3]
add3(...args)`)
	assert.Equal(t, NumberValue{Val: 6}, v)
}
