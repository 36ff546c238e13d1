package fip

// Binding is `pattern : expr`, a top-level or block-level declaration.
type Binding struct {
	baseNode
	Pattern Pattern
	Value   Expr
}

func (*Binding) exprNode() {}

// UseForm distinguishes the three `use` surface forms of spec §4.2/§4.5.
type UseForm int

const (
	UseSingle    UseForm = iota // use NAME from "path"
	UseSelective                // use { a, b } from "path"
	UseNamespace                // use NAME as ALIAS from "path"
)

// Use is a `use` statement. Names holds the single binding name for
// UseSingle/UseNamespace, or the selected export list for UseSelective.
// Alias is set only for UseNamespace.
type Use struct {
	baseNode
	Form       UseForm
	Names      []string
	Alias      string
	ModulePath string
}

func (*Use) exprNode() {}
