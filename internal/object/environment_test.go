package object

import (
	"testing"

	"github.com/Swanchick/kyryl-script-sub000/internal/types"
)

func TestDefineAndLookup(t *testing.T) {
	env := NewEnvironment(NewCounter())

	if err := env.Define("x", IntValue(5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := env.Lookup("x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Int != 5 {
		t.Fatalf("got %d, want 5", got.Int)
	}
}

func TestAliasingThroughRebinding(t *testing.T) {
	// let a = [1,2,3]; let b = a; -- b must share a's cells.
	env := NewEnvironment(NewCounter())

	id1 := env.DefineFreshCell(IntValue(1))
	list := ListValue([]CellID{id1}, types.Basic(types.Int))
	if err := env.Define("a", list); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, err := env.Lookup("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := env.Define("b", a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Expect a and b to resolve to the same cell id.
	aAgain, _ := env.Lookup("a")
	bAgain, _ := env.Lookup("b")
	if *aAgain.Ref() != *bAgain.Ref() {
		t.Fatalf("expected a and b to share a cell id, got %v vs %v", aAgain.Ref(), bAgain.Ref())
	}
}

func TestRebindingPrimitiveDoesNotAlias(t *testing.T) {
	// let a = 5; let b = a; -- b must get its own cell, unlike List/Tuple.
	env := NewEnvironment(NewCounter())

	if err := env.Define("a", IntValue(5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, err := env.Lookup("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := env.Define("b", a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	aAgain, _ := env.Lookup("a")
	bAgain, _ := env.Lookup("b")
	if *aAgain.Ref() == *bAgain.Ref() {
		t.Fatalf("expected a and b to own distinct cells, both point at %v", aAgain.Ref())
	}
}

func TestDefineAliasAliasesPrimitiveCell(t *testing.T) {
	// for (x in xs) must alias even a primitive element's cell, unlike Define.
	env := NewEnvironment(NewCounter())
	id := env.DefineFreshCell(IntValue(7))
	child := env.NewChild()

	child.DefineAlias("x", id)
	if err := env.AssignByID(id, IntValue(8)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := child.Lookup("x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Int != 8 {
		t.Fatalf("expected alias to observe mutation through shared cell, got %d", got.Int)
	}
}

func TestAssignRejectsTypeChange(t *testing.T) {
	env := NewEnvironment(NewCounter())
	if err := env.Define("x", IntValue(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := env.Assign("x", StringValue("oops")); err == nil {
		t.Fatalf("expected a type error when assigning string into an int variable")
	}
}

func TestChildScopeSeesParentButNotViceVersa(t *testing.T) {
	parent := NewEnvironment(NewCounter())
	if err := parent.Define("x", IntValue(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	child := parent.NewChild()

	if _, err := child.Lookup("x"); err != nil {
		t.Fatalf("expected child to see parent's x: %v", err)
	}
	if err := child.Define("y", IntValue(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := parent.Lookup("y"); err == nil {
		t.Fatalf("expected parent to NOT see child's y")
	}
}

func TestPromoteToParentMovesOwnership(t *testing.T) {
	parent := NewEnvironment(NewCounter())
	child := parent.NewChild()

	id := child.DefineFreshCell(IntValue(42))
	if !child.SameScope(id) {
		t.Fatalf("expected child to own the fresh cell")
	}

	if err := child.PromoteToParent(id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if child.SameScope(id) {
		t.Fatalf("expected child to no longer own the cell after promotion")
	}
	if !parent.SameScope(id) {
		t.Fatalf("expected parent to own the cell after promotion")
	}
}

func TestAssignByIDWritesThroughForwardChain(t *testing.T) {
	parent := NewEnvironment(NewCounter())
	if err := parent.Define("x", IntValue(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	child := parent.NewChild()

	v, err := child.Lookup("x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := child.AssignByID(*v.Ref(), IntValue(99)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := parent.Lookup("x")
	if got.Int != 99 {
		t.Fatalf("got %d, want 99", got.Int)
	}
}
