// Package host defines the ABI through which the core consumes
// host-provided callables (spec §6 "Host function ABI", C9). The core
// only depends on this interface; concrete standard-library functions
// live outside the core in package stdlib.
package host

import (
	"github.com/Swanchick/kyryl-script-sub000/internal/object"
	"github.com/Swanchick/kyryl-script-sub000/internal/types"
)

// Func is a host-provided callable. It receives its arguments already
// evaluated, plus the calling environment (needed to dereference list
// and tuple element cells, and to allocate fresh cells for any aggregate
// it constructs), and returns a Result<Value, error> (spec §6).
type Func func(args []object.Value, env *object.Environment) (object.Value, error)

// Entry pairs a callable with the return type the static checker uses to
// type its call sites (spec §6: "Its declared return_type is registered
// with the function").
type Entry struct {
	Fn         Func
	ReturnType types.DataType
}

// Registry is a keyed table of name → (function pointer, return type)
// (spec §6). It is owned by a single Interpreter instance, never shared
// process-wide (spec §5).
type Registry struct {
	entries map[string]Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds or replaces the entry for name.
func (r *Registry) Register(name string, returnType types.DataType, fn Func) {
	r.entries[name] = Entry{Fn: fn, ReturnType: returnType}
}

// Lookup returns the entry registered for name, if any.
func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Names returns every registered host function name, used by the parser
// to seed the type environment with HostFunction-typed bindings.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}
