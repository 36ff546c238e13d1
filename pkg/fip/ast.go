package fip

// Node is any parsed syntax tree element. Every concrete node type reports
// its own source location so evaluator errors can point back at it.
type Node interface {
	Loc() Location
}

// Expr is the umbrella for anything eval can reduce to a Value. Statements
// are, per spec §2, a degenerate form of expression at file scope: Binding
// and Use both implement Expr so a Block's form list is uniformly
// []Expr.
type Expr interface {
	Node
	exprNode()
}

type baseNode struct {
	loc Location
}

func (b baseNode) Loc() Location { return b.loc }

// Program is a parsed file: a flat sequence of top-level forms.
type Program struct {
	baseNode
	Forms []Expr
}
