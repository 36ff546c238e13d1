package fip

// Pattern is the left-hand side of a Binding: either a plain identifier or
// an array/object destructuring pattern nested to arbitrary depth.
type Pattern interface {
	patternNode()
}

// IdentPattern binds the whole value to a single name.
type IdentPattern struct {
	Name string
}

func (*IdentPattern) patternNode() {}

// ArrayPattern destructures an Array positionally; missing positions bind
// Null.
type ArrayPattern struct {
	Elements []Pattern
}

func (*ArrayPattern) patternNode() {}

// ObjectPatternField is `key` (shorthand, binds `key` from the field named
// `key`) or `key: pattern` (binds the field named `key` through a nested
// pattern).
type ObjectPatternField struct {
	Key     string
	Nested  Pattern // nil for shorthand
}

// ObjectPattern destructures an Object by key; absent keys bind Null.
type ObjectPattern struct {
	Fields []ObjectPatternField
}

func (*ObjectPattern) patternNode() {}
