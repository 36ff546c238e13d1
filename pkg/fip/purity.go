package fip

import "strings"

// checkPuritySuffixes performs the static witness scan spec §4.4 requires
// at function-definition time. It is authoritative: a mismatch between a
// function literal's `!`/`?` suffix and what its body actually does is a
// SuffixError regardless of whether the mismatch would ever be observed at
// run time.
//
// This diverges deliberately from original_source/src/interpreter.rs, which
// enforces purity dynamically at call time and lets its witness scan
// recurse into nested lambda bodies. Spec §4.4 requires a static scan that
// stops at nested function literals, so that is what runs here; eval.go
// layers a defensive dynamic check (checkDynamicPurity) on top for the
// cases a purely syntactic scan cannot see through, such as a pure function
// invoking an impure callable received as an argument.
func checkPuritySuffixes(fn *FuncLit) error {
	witness := containsImpurityWitness(fn.Body)
	if witness && !fn.Impure {
		return &SuffixError{
			Loc:  fn.Loc(),
			Name: displayFuncName(fn),
			Message: "references or calls an impure (!) operation in its body " +
				"but is not itself marked impure; add a trailing ! to its name",
		}
	}
	if fn.Impure && !witness {
		return &SuffixError{
			Loc:     fn.Loc(),
			Name:    displayFuncName(fn),
			Message: "is marked impure (!) but its body performs no impure operation",
		}
	}

	final := lastForm(fn.Body)
	boolResult := final != nil && isBooleanResultExpr(final)
	if boolResult && !fn.Predicate {
		return &SuffixError{
			Loc:  fn.Loc(),
			Name: displayFuncName(fn),
			Message: "always produces a boolean result but is not marked as a " +
				"predicate; add a trailing ? to its name",
		}
	}
	if fn.Predicate && !boolResult {
		return &SuffixError{
			Loc:     fn.Loc(),
			Name:    displayFuncName(fn),
			Message: "is marked as a predicate (?) but its final expression is not a boolean result",
		}
	}
	return nil
}

func displayFuncName(fn *FuncLit) string {
	if fn.Name != "" {
		return fn.Name
	}
	return "<anonymous function>"
}

func lastForm(body *Block) Expr {
	if body == nil || len(body.Forms) == 0 {
		return nil
	}
	return body.Forms[len(body.Forms)-1]
}

func containsImpurityWitness(body *Block) bool {
	if body == nil {
		return false
	}
	for _, form := range body.Forms {
		if walkExpr(form, isImpurityWitness) {
			return true
		}
	}
	return false
}

func isImpurityWitness(e Expr) bool {
	switch n := e.(type) {
	case *Ident:
		return strings.HasSuffix(n.Name, "!")
	case *PropertyAccess:
		return strings.HasSuffix(n.Property, "!")
	}
	return false
}

// isBooleanResultExpr reports whether e is guaranteed to evaluate to a
// Boolean: a literal, a comparison or `&`/`|`, a call to a `?`-suffixed
// callable, or a three-argument call to `if` whose both branches are
// themselves boolean-result expressions.
func isBooleanResultExpr(e Expr) bool {
	switch n := e.(type) {
	case *BoolLit:
		return true
	case *BinaryOp:
		switch n.Op {
		case "=", "≠", "<", ">", "<=", ">=", "&", "|":
			return true
		}
		return false
	case *Call:
		switch callee := n.Callee.(type) {
		case *Ident:
			if strings.HasSuffix(callee.Name, "?") {
				return true
			}
			if callee.Name == "if" && len(n.Args) == 3 {
				return isBooleanResultExpr(unwrapThunk(n.Args[1])) && isBooleanResultExpr(unwrapThunk(n.Args[2]))
			}
		case *PropertyAccess:
			if strings.HasSuffix(callee.Property, "?") {
				return true
			}
		}
		return false
	case *Block:
		return isBooleanResultExpr(lastForm(n))
	}
	return false
}

// unwrapThunk sees through a zero-argument function literal passed as an
// `if` branch to the expression it would actually produce, so the
// predicate-suffix scan can judge `if(cond, () { true }, () { false })` the
// same way it judges a bare boolean expression.
func unwrapThunk(e Expr) Expr {
	if fn, ok := e.(*FuncLit); ok {
		return lastForm(fn.Body)
	}
	return e
}

// walkExpr descends through e's sub-expressions, calling pred on every node
// visited, and reports whether pred ever matched. It deliberately does not
// descend into a nested FuncLit's parameters or body: the witness scan is
// scoped to the immediately enclosing function only.
func walkExpr(e Expr, pred func(Expr) bool) bool {
	if e == nil {
		return false
	}
	if pred(e) {
		return true
	}
	switch n := e.(type) {
	case *StringLit:
		for _, seg := range n.Segments {
			if seg.Expr != nil && walkExpr(seg.Expr, pred) {
				return true
			}
		}
	case *ArrayLit:
		for _, el := range n.Elements {
			if walkExpr(el, pred) {
				return true
			}
		}
	case *ObjectLit:
		for _, f := range n.Fields {
			if f.Spread != nil && walkExpr(f.Spread, pred) {
				return true
			}
			if f.Value != nil && walkExpr(f.Value, pred) {
				return true
			}
		}
	case *SpreadExpr:
		return walkExpr(n.Value, pred)
	case *BinaryOp:
		return walkExpr(n.Left, pred) || walkExpr(n.Right, pred)
	case *UnaryOp:
		return walkExpr(n.Operand, pred)
	case *Call:
		if walkExpr(n.Callee, pred) {
			return true
		}
		for _, a := range n.Args {
			if walkExpr(a, pred) {
				return true
			}
		}
	case *PropertyAccess:
		return walkExpr(n.Object, pred)
	case *Await:
		return walkExpr(n.Value, pred)
	case *Block:
		for _, f := range n.Forms {
			if walkExpr(f, pred) {
				return true
			}
		}
	case *Binding:
		return walkExpr(n.Value, pred)
	case *FuncLit:
		// Nested function literals are their own scope for the witness
		// scan; spec §4.4 stops here rather than recursing into Body.
	}
	return false
}

// checkDynamicPurity is the defensive backstop layered on top of the
// static scan: if the current evaluation context is pure (not marked
// impure) and it is about to invoke a callee that is itself impure, that is
// a suffix violation even though no syntactic witness could see it coming
// (e.g. an impure callback threaded in as an argument).
func checkDynamicPurity(loc Location, callerIsPure bool, callee Callable) error {
	if callerIsPure && callee.IsImpure() {
		return &SuffixError{
			Loc:     loc,
			Name:    callee.DisplayName(),
			Message: "impure operation invoked from a context that is not marked impure",
		}
	}
	return nil
}
