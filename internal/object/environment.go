// Package object implements the runtime value model (Value) and the
// lexically scoped, cell-indirected Environment that the evaluator reads
// and writes (spec §3 "Environments", §4.5).
package object

import "github.com/Swanchick/kyryl-script-sub000/internal/diagnostics"

// CellID uniquely identifies a storage cell for the lifetime of the
// interpreter that allocated it. Two identifiers anywhere in the
// environment tree may share a CellID — that is exactly how aliasing is
// expressed (spec §3 Invariants).
type CellID uint64

// Counter hands out monotonically increasing cell ids. Each Interpreter
// owns exactly one Counter (spec §5): never a package-level global, so
// multiple interpreters never collide or race.
type Counter struct {
	next uint64
}

// NewCounter returns a fresh, zeroed Counter.
func NewCounter() *Counter { return &Counter{} }

// Next returns the next unused CellID.
func (c *Counter) Next() CellID {
	c.next++
	return CellID(c.next)
}

type slotKind int

const (
	slotOwned slotKind = iota
	slotForward
)

type slot struct {
	kind    slotKind
	value   Value  // valid when kind == slotOwned
	forward CellID // valid when kind == slotForward
}

// Environment is one scope in the lexical scope chain: a name→cell-id map
// plus a cell-id→slot map, with a parent pointer (spec §3 Environments).
type Environment struct {
	parent  *Environment
	names   map[string]CellID
	cells   map[CellID]slot
	counter *Counter
}

// NewEnvironment creates a root (parentless) scope owned by counter.
func NewEnvironment(counter *Counter) *Environment {
	return &Environment{
		names:   make(map[string]CellID),
		cells:   make(map[CellID]slot),
		counter: counter,
	}
}

// NewChild creates a scope nested under e, sharing e's counter.
func (e *Environment) NewChild() *Environment {
	return &Environment{
		parent:  e,
		names:   make(map[string]CellID),
		cells:   make(map[CellID]slot),
		counter: e.counter,
	}
}

// Parent returns the enclosing scope, or nil for the root.
func (e *Environment) Parent() *Environment { return e.parent }

// sameScopeHasCell reports whether id has a slot in this exact scope
// (Owned or Forward), without climbing to ancestors.
func (e *Environment) sameScopeHasCell(id CellID) bool {
	_, ok := e.cells[id]
	return ok
}

// existsChain reports whether id resolves to a slot anywhere in this
// scope or an ancestor (Exists, spec §4.5).
func (e *Environment) existsChain(id CellID) bool {
	if _, ok := e.cells[id]; ok {
		return true
	}
	if e.parent != nil {
		return e.parent.existsChain(id)
	}
	return false
}

// usedChain reports whether any name in this scope or an ancestor
// currently maps to id.
func (e *Environment) usedChain(id CellID) bool {
	for _, v := range e.names {
		if v == id {
			return true
		}
	}
	if e.parent != nil {
		return e.parent.usedChain(id)
	}
	return false
}

func (e *Environment) createOwned(name string, v Value) {
	id := e.counter.Next()
	v.ref = &id
	e.cells[id] = slot{kind: slotOwned, value: v}
	e.names[name] = id
}

func (e *Environment) createForward(name string, id CellID) {
	e.names[name] = id
	e.cells[id] = slot{kind: slotForward, forward: id}
}

// DefineAlias binds name in this scope as a Forward reference to id,
// unconditionally — including for a primitive-kind cell. Used for
// for-loop list iteration (spec §4.6: "each iteration defines name bound
// to the element's cell (alias — mutations through name affect the list
// cell)"), which aliases an element's cell regardless of whether the
// element is a primitive or an aggregate. This is deliberately separate
// from Define's aggregate-only aliasing rule, which governs rebinding
// (`let b = a;`) and function-parameter passing instead.
func (e *Environment) DefineAlias(name string, id CellID) {
	e.createForward(name, id)
}

// Define binds name to value in this scope (spec §4.5 define).
//
// Aliasing only ever applies to List/Tuple: if value carries a
// back-reference to a cell already owned by this exact scope and already
// reachable from some name, the new name aliases that same cell.
// Otherwise, if it carries any back-reference at all, this scope gets a
// Forward slot pointing at it (the cell itself lives in an ancestor, or
// was freshly allocated by the expression that produced value and is
// about to be installed).
//
// A primitive (Integer/Float/String/Boolean) value always gets a brand
// new owned cell regardless of any back-reference, so `let a = 5; let b
// = a; b++;` leaves a untouched and passing a primitive into a function
// parameter copies it (spec §8 invariant, §4.6 "call-by-value for
// primitives created inline").
func (e *Environment) Define(name string, v Value) error {
	if v.ref != nil && (v.Kind == List || v.Kind == Tuple) {
		r := *v.ref
		if e.sameScopeHasCell(r) && e.usedChain(r) {
			e.names[name] = r
			return nil
		}
		e.createForward(name, r)
		return nil
	}
	e.createOwned(name, v)
	return nil
}

// DefineFreshCell forces a brand-new owned cell regardless of v's existing
// back-reference, returning the id it was given. Used when evaluating
// list/tuple/literal elements that must each get their own identity
// before being linked into an aggregate.
func (e *Environment) DefineFreshCell(v Value) CellID {
	id := e.counter.Next()
	v.ref = &id
	e.cells[id] = slot{kind: slotOwned, value: v}
	return id
}

// GetByID resolves a cell id to its value, climbing Forward slots and
// ancestor scopes as needed (spec §4.5 lookup/get_by_reference).
func (e *Environment) GetByID(id CellID) (Value, error) {
	if s, ok := e.cells[id]; ok {
		switch s.kind {
		case slotOwned:
			return s.value, nil
		case slotForward:
			if e.parent == nil {
				return Value{}, diagnostics.RuntimeErrorf(0, "missing parent environment on exit")
			}
			return e.parent.GetByID(s.forward)
		}
	}
	if e.parent != nil {
		return e.parent.GetByID(id)
	}
	return Value{}, diagnostics.RuntimeErrorf(0, "reference %d not found", id)
}

// Lookup resolves name by climbing the name chain, then the cell chain
// (spec §4.5 lookup).
func (e *Environment) Lookup(name string) (Value, error) {
	if id, ok := e.names[name]; ok {
		if s, ok2 := e.cells[id]; ok2 {
			switch s.kind {
			case slotOwned:
				return s.value, nil
			case slotForward:
				if e.parent == nil {
					return Value{}, diagnostics.RuntimeErrorf(0, "missing parent environment on exit")
				}
				return e.parent.GetByID(s.forward)
			}
		}
	}
	if e.parent != nil {
		return e.parent.Lookup(name)
	}
	return Value{}, diagnostics.RuntimeErrorf(0, "variable %s does not exist", name)
}

func (e *Environment) findNameID(name string) (CellID, bool) {
	if id, ok := e.names[name]; ok {
		return id, true
	}
	if e.parent != nil {
		return e.parent.findNameID(name)
	}
	return 0, false
}

// AssignByID writes v into whichever ancestor scope owns id (spec §4.5
// assign_by_id). Used by index-assignment and ++/--, which address a
// cell directly rather than by name.
func (e *Environment) AssignByID(id CellID, v Value) error {
	if s, ok := e.cells[id]; ok {
		switch s.kind {
		case slotOwned:
			v.ref = &id
			e.cells[id] = slot{kind: slotOwned, value: v}
			return nil
		case slotForward:
			if e.parent == nil {
				return diagnostics.RuntimeErrorf(0, "missing parent environment on exit")
			}
			return e.parent.AssignByID(s.forward, v)
		}
	}
	if e.parent != nil {
		return e.parent.AssignByID(id, v)
	}
	return diagnostics.RuntimeErrorf(0, "reference %d not found", id)
}

// Assign rebinds an existing name's value without changing its type
// (spec §4.5 assign).
func (e *Environment) Assign(name string, v Value) error {
	existing, err := e.Lookup(name)
	if err != nil {
		return err
	}
	if !existing.Type().Equal(v.Type()) {
		return diagnostics.RuntimeErrorf(0, "cannot assign %s to variable %q of type %s", v.Type(), name, existing.Type())
	}
	id, ok := e.findNameID(name)
	if !ok {
		return diagnostics.RuntimeErrorf(0, "variable %s does not exist", name)
	}
	return e.AssignByID(id, v)
}

// Exists reports whether id is reachable from this scope (spec §4.5).
func (e *Environment) Exists(id CellID) bool { return e.existsChain(id) }

// SameScope reports whether id has a slot in this exact scope, not an
// ancestor (spec §4.5).
func (e *Environment) SameScope(id CellID) bool { return e.sameScopeHasCell(id) }

// PromoteToParent moves an owned cell from this scope into the parent
// scope without changing its id (spec §4.5 promote_to_parent). It is a
// no-op if id is not owned by this exact scope (e.g. it was only ever a
// Forward alias here, or already lives in an ancestor).
func (e *Environment) PromoteToParent(id CellID) error {
	s, ok := e.cells[id]
	if !ok || s.kind != slotOwned {
		return nil
	}
	if e.parent == nil {
		return diagnostics.RuntimeErrorf(0, "missing parent environment on exit")
	}
	delete(e.cells, id)
	e.parent.cells[id] = s
	return nil
}
