package fip

// NumberLit is an integer literal.
type NumberLit struct {
	baseNode
	Value int64
}

func (*NumberLit) exprNode() {}

// BoolLit is `true` or `false`.
type BoolLit struct {
	baseNode
	Value bool
}

func (*BoolLit) exprNode() {}

// NullLit is `null`.
type NullLit struct{ baseNode }

func (*NullLit) exprNode() {}

// StringSegment is one piece of a string literal: either literal text or
// an interpolated expression carved out of `<...>`.
type StringSegment struct {
	Literal string
	Expr    Expr // nil when Literal is set
}

// StringLit is a double-quoted string, decomposed into literal and
// interpolated segments by the parser.
type StringLit struct {
	baseNode
	Segments []StringSegment
}

func (*StringLit) exprNode() {}

// ArrayLit is `[ ...elements ]`. Elements may include SpreadExpr.
type ArrayLit struct {
	baseNode
	Elements []Expr
}

func (*ArrayLit) exprNode() {}

// ObjectField is one `key: value` pair or `...expr` spread inside an
// object literal.
type ObjectField struct {
	Key    string // empty when Spread is set
	Value  Expr
	Spread Expr // non-nil for `...expr`
}

// ObjectLit is `{ ...fields }`.
type ObjectLit struct {
	baseNode
	Fields []ObjectField
}

func (*ObjectLit) exprNode() {}

// SpreadExpr wraps `...expr` wherever it appears as a standalone
// sub-expression (array-literal elements go through ArrayLit.Elements
// directly as SpreadExpr values).
type SpreadExpr struct {
	baseNode
	Value Expr
}

func (*SpreadExpr) exprNode() {}
