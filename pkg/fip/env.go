package fip

// Environment is a mapping from identifier to Value plus a link to a
// parent environment (spec §3). Lookups walk the chain; definitions
// insert into the innermost frame only.
type Environment struct {
	vars   map[string]Value
	parent *Environment
}

// NewEnvironment creates a root frame with no parent, such as a module's
// root environment.
func NewEnvironment() *Environment {
	return &Environment{vars: map[string]Value{}}
}

// Child creates a new frame whose parent is e. Frames form a tree rooted
// at each module's root frame; a child is always strictly newer than its
// parent, so the graph cannot contain cycles.
func (e *Environment) Child() *Environment {
	return &Environment{vars: map[string]Value{}, parent: e}
}

// Get walks the chain looking for name.
func (e *Environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Define binds name to val in this frame. Rebinding an already-present
// name in the same frame is a Mutation error (spec §3/§7); shadowing a
// name from a parent frame is allowed.
func (e *Environment) Define(name string, val Value, loc Location) error {
	if _, exists := e.vars[name]; exists {
		return &MutationError{Loc: loc, Name: name}
	}
	e.vars[name] = val
	return nil
}

// Module is a fully evaluated top-level environment plus the set of
// identifiers it exports. Per spec §4.5/§9, every top-level binding is
// exported; there is no explicit export clause in the surface syntax.
type Module struct {
	Env     *Environment
	Exports map[string]Value
}
