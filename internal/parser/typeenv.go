package parser

import "github.com/Swanchick/kyryl-script-sub000/internal/types"

// TypeEnv is the parser's compile-time mirror of the runtime Environment
// (spec §3 "Type environment"): a tree of scopes mapping identifiers to
// DataType, with a parent pointer that Lookup climbs.
type TypeEnv struct {
	parent *TypeEnv
	vars   map[string]types.DataType
}

// NewTypeEnv creates a root type scope.
func NewTypeEnv() *TypeEnv {
	return &TypeEnv{vars: make(map[string]types.DataType)}
}

// Child creates a nested scope (e.g. for a function body or block).
func (t *TypeEnv) Child() *TypeEnv {
	return &TypeEnv{parent: t, vars: make(map[string]types.DataType)}
}

// Define binds name to dt in this scope, shadowing any ancestor binding.
func (t *TypeEnv) Define(name string, dt types.DataType) {
	t.vars[name] = dt
}

// Lookup climbs the scope chain looking for name.
func (t *TypeEnv) Lookup(name string) (types.DataType, bool) {
	if dt, ok := t.vars[name]; ok {
		return dt, true
	}
	if t.parent != nil {
		return t.parent.Lookup(name)
	}
	return types.DataType{}, false
}
