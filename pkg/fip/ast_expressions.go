package fip

// Ident is a bare identifier reference.
type Ident struct {
	baseNode
	Name string
}

func (*Ident) exprNode() {}

// BinaryOp is one of the §4.2 binary operators; all are left-associative.
type BinaryOp struct {
	baseNode
	Op    string // "+", "-", "*", "/", "=", "≠", "<", ">", "<=", ">=", "&", "|"
	Left  Expr
	Right Expr
}

func (*BinaryOp) exprNode() {}

// UnaryOp is a prefix `-` or `+` applied to a single operand.
type UnaryOp struct {
	baseNode
	Op      string
	Operand Expr
}

func (*UnaryOp) exprNode() {}

// Call is `callee(args...)`.
type Call struct {
	baseNode
	Callee Expr
	Args   []Expr
}

func (*Call) exprNode() {}

// PropertyAccess is `object.name`.
type PropertyAccess struct {
	baseNode
	Object   Expr
	Property string
}

func (*PropertyAccess) exprNode() {}

// Await is `await expr`.
type Await struct {
	baseNode
	Value Expr
}

func (*Await) exprNode() {}

// Block is a brace-delimited sequence of forms; its value is governed by
// the composable-block rule of spec §4.3.
type Block struct {
	baseNode
	Forms []Expr
}

func (*Block) exprNode() {}

// FuncLit is `(params) [!|?] { body }`. Name is the diagnostic name
// carried for error messages when the literal is the right-hand side of a
// named binding; it is empty for genuinely anonymous literals.
type FuncLit struct {
	baseNode
	Name      string
	Params    []string
	Body      *Block
	Impure    bool
	Predicate bool
	Async     bool
}

func (*FuncLit) exprNode() {}
