// Package evaluator walks a typed AST (spec C10) against a cell-based
// object.Environment, dispatching host calls through a host.Registry.
package evaluator

import (
	"context"

	"github.com/Swanchick/kyryl-script-sub000/internal/ast"
	"github.com/Swanchick/kyryl-script-sub000/internal/diagnostics"
	"github.com/Swanchick/kyryl-script-sub000/internal/host"
	"github.com/Swanchick/kyryl-script-sub000/internal/object"
)

// Evaluator owns the single cell-id Counter for one running program (spec
// §5: never process-wide) and the host.Registry call-site functions
// dispatch through.
type Evaluator struct {
	counter  *object.Counter
	registry *host.Registry
}

// New creates an Evaluator with a fresh cell counter.
func New(registry *host.Registry) *Evaluator {
	return &Evaluator{counter: object.NewCounter(), registry: registry}
}

// NewRootEnv creates the top-level Environment for a program run by e,
// with every host function in e's registry bound under its name.
func (e *Evaluator) NewRootEnv() *object.Environment {
	env := object.NewEnvironment(e.counter)
	if e.registry != nil {
		for _, name := range e.registry.Names() {
			entry, _ := e.registry.Lookup(name)
			_ = env.Define(name, object.HostFunctionValue(name, entry.ReturnType))
		}
	}
	return env
}

// signal is the internal control-flow carrier threaded back up through
// execStatements: either "keep going" (signalNone) or a return in flight
// (signalReturn, carrying a Value). The current grammar has no
// break/continue keyword, so loop bodies only ever propagate signalReturn.
type signalKind int

const (
	signalNone signalKind = iota
	signalReturn
)

type signal struct {
	kind  signalKind
	value object.Value
}

var noSignal = signal{kind: signalNone}

// Run evaluates every top-level statement of prog in env in order (spec
// C10 "program entry"). ctx is checked between top-level statements and at
// each loop iteration (SPEC_FULL §5), so an embedder can cancel a running
// script.
func (e *Evaluator) Run(ctx context.Context, prog *ast.Program, env *object.Environment) error {
	_, err := e.execStatements(ctx, prog.Statements, env)
	return err
}

func (e *Evaluator) execStatements(ctx context.Context, stmts []ast.Statement, env *object.Environment) (signal, error) {
	for _, stmt := range stmts {
		if err := ctx.Err(); err != nil {
			return noSignal, diagnostics.RuntimeErrorf(stmt.GetToken().Position.Line, "execution cancelled: %v", err)
		}
		sig, err := e.execStatement(ctx, stmt, env)
		if err != nil {
			return noSignal, err
		}
		if sig.kind != signalNone {
			return sig, nil
		}
	}
	return noSignal, nil
}

func (e *Evaluator) execStatement(ctx context.Context, stmt ast.Statement, env *object.Environment) (signal, error) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		return noSignal, e.execVariableDeclaration(ctx, s, env)
	case *ast.FunctionDeclaration:
		return noSignal, e.execFunctionDeclaration(s, env)
	case *ast.Use:
		return noSignal, e.execUse(ctx, s, env)
	case *ast.Assignment:
		return noSignal, e.execAssignment(ctx, s, env)
	case *ast.AssignmentIndex:
		return noSignal, e.execAssignmentIndex(ctx, s, env)
	case *ast.AddValue:
		return noSignal, e.execCompoundAssignment(ctx, s.Token.Position.Line, s.Name, s.Value, env, addCombine)
	case *ast.RemoveValue:
		return noSignal, e.execCompoundAssignment(ctx, s.Token.Position.Line, s.Name, s.Value, env, subCombine)
	case *ast.Return:
		return e.execReturn(ctx, s, env)
	case *ast.If:
		return e.execIf(ctx, s, env)
	case *ast.While:
		return e.execWhile(ctx, s, env)
	case *ast.ForLoop:
		return e.execFor(ctx, s, env)
	case *ast.ExpressionStatement:
		_, err := e.eval(ctx, s.Expr, env)
		return noSignal, err
	default:
		return noSignal, diagnostics.RuntimeErrorf(stmt.GetToken().Position.Line, "unhandled statement type %T", stmt)
	}
}

func (e *Evaluator) execVariableDeclaration(ctx context.Context, s *ast.VariableDeclaration, env *object.Environment) error {
	if s.Init == nil {
		return env.Define(s.Name, object.NullValue())
	}
	v, err := e.eval(ctx, s.Init, env)
	if err != nil {
		return err
	}
	return env.Define(s.Name, v)
}

// execFunctionDeclaration installs the function under its own name,
// closing over env so a subsequent call (including a recursive
// self-call) can resolve free names (spec §4.6 "function value captures
// its defining environment").
func (e *Evaluator) execFunctionDeclaration(s *ast.FunctionDeclaration, env *object.Environment) error {
	fn := &object.FunctionValue{
		ReturnType: s.ReturnType,
		Parameters: s.Parameters,
		Body:       s.Body,
		Captured:   env,
	}
	return env.Define(s.Name, object.FunctionValueOf(fn))
}

// execUse evaluates the imported module's pub declarations directly in
// the importer's environment (spec's inline-binding resolution, SPEC_FULL
// §4.7): the statements were already resolved and type-checked by the
// module loader at parse time, so at runtime this is just another
// execStatements pass over them.
func (e *Evaluator) execUse(ctx context.Context, s *ast.Use, env *object.Environment) error {
	_, err := e.execStatements(ctx, s.BindingsBody, env)
	return err
}

func (e *Evaluator) execAssignment(ctx context.Context, s *ast.Assignment, env *object.Environment) error {
	v, err := e.eval(ctx, s.Value, env)
	if err != nil {
		return err
	}
	return env.Assign(s.Name, v)
}

type combineFn func(line int, l, r object.Value) (object.Value, error)

func addCombine(line int, l, r object.Value) (object.Value, error) { return numericAdd(line, l, r) }
func subCombine(line int, l, r object.Value) (object.Value, error) { return numericSub(line, l, r) }

func (e *Evaluator) execCompoundAssignment(ctx context.Context, line int, name string, rhs ast.Expression, env *object.Environment, combine combineFn) error {
	current, err := env.Lookup(name)
	if err != nil {
		return err
	}
	rv, err := e.eval(ctx, rhs, env)
	if err != nil {
		return err
	}
	result, err := combine(line, current, rv)
	if err != nil {
		return err
	}
	return env.Assign(name, result)
}

// execAssignmentIndex walks a chain of `[index]` steps and writes the
// final value into the cell the chain resolves to (spec §4.6 index
// assignment mutates the aliased cell in place, visible through every
// alias of the containing list).
func (e *Evaluator) execAssignmentIndex(ctx context.Context, s *ast.AssignmentIndex, env *object.Environment) error {
	base, err := env.Lookup(s.Name)
	if err != nil {
		return err
	}

	if base.Kind == object.String {
		return e.execStringIndexAssignment(ctx, s, base, env)
	}
	if base.Kind != object.List {
		return diagnostics.RuntimeErrorf(s.Token.Position.Line, "cannot index into non-list value")
	}

	// Walk every index but the last to find the target list.
	cur := base
	for i := 0; i < len(s.Indices)-1; i++ {
		idx, err := e.evalIndexInt(ctx, s.Indices[i], env)
		if err != nil {
			return err
		}
		id, err := cellAt(s.Token.Position.Line, cur, idx)
		if err != nil {
			return err
		}
		next, err := env.GetByID(id)
		if err != nil {
			return err
		}
		if next.Kind != object.List {
			return diagnostics.RuntimeErrorf(s.Token.Position.Line, "cannot index into non-list value")
		}
		cur = next
	}

	lastIdx, err := e.evalIndexInt(ctx, s.Indices[len(s.Indices)-1], env)
	if err != nil {
		return err
	}
	cellID, err := cellAt(s.Token.Position.Line, cur, lastIdx)
	if err != nil {
		return err
	}

	v, err := e.eval(ctx, s.Value, env)
	if err != nil {
		return err
	}
	return env.AssignByID(cellID, v)
}

// execStringIndexAssignment splices a single rune into the named string
// variable in place (spec §4.6: "only a single index is allowed, and RHS
// must be a 1-character string"), grounded on
// original_source/src/interpreter/interpret_statement.rs
// interpret_assign_string_index. Unlike list index assignment, a string
// carries no per-character cells, so the whole variable is rebound
// through env.Assign rather than AssignByID on an element.
func (e *Evaluator) execStringIndexAssignment(ctx context.Context, s *ast.AssignmentIndex, base object.Value, env *object.Environment) error {
	idx, err := e.evalIndexInt(ctx, s.Indices[0], env)
	if err != nil {
		return err
	}
	runes := []rune(base.Str)
	if idx < 0 || idx >= len(runes) {
		return diagnostics.RuntimeErrorf(s.Token.Position.Line, "index %d out of range (length %d)", idx, len(runes))
	}

	v, err := e.eval(ctx, s.Value, env)
	if err != nil {
		return err
	}
	if v.Kind != object.String {
		return diagnostics.RuntimeErrorf(s.Token.Position.Line, "string index assignment requires a string value, got %s", v.Type())
	}
	rv := []rune(v.Str)
	if len(rv) != 1 {
		return diagnostics.RuntimeErrorf(s.Token.Position.Line, "string index assignment requires a 1-character string, got %d", len(rv))
	}

	runes[idx] = rv[0]
	return env.Assign(s.Name, object.StringValue(string(runes)))
}

func (e *Evaluator) evalIndexInt(ctx context.Context, expr ast.Expression, env *object.Environment) (int, error) {
	v, err := e.eval(ctx, expr, env)
	if err != nil {
		return 0, err
	}
	return int(v.Int), nil
}

func cellAt(line int, list object.Value, idx int) (object.CellID, error) {
	if idx < 0 || idx >= len(list.Elements) {
		return 0, diagnostics.RuntimeErrorf(line, "index %d out of range (length %d)", idx, len(list.Elements))
	}
	return list.Elements[idx], nil
}

func (e *Evaluator) execReturn(ctx context.Context, s *ast.Return, env *object.Environment) (signal, error) {
	if s.Value == nil {
		return signal{kind: signalReturn, value: object.NullValue()}, nil
	}
	v, err := e.eval(ctx, s.Value, env)
	if err != nil {
		return noSignal, err
	}
	return signal{kind: signalReturn, value: v}, nil
}

func (e *Evaluator) execIf(ctx context.Context, s *ast.If, env *object.Environment) (signal, error) {
	cond, err := e.eval(ctx, s.Cond, env)
	if err != nil {
		return noSignal, err
	}
	if cond.Bool {
		child := env.NewChild()
		sig, err := e.execStatements(ctx, s.ThenBody, child)
		if err != nil {
			return noSignal, err
		}
		return e.promoteSignal(sig, child), nil
	}
	if s.ElseBody != nil {
		child := env.NewChild()
		sig, err := e.execStatements(ctx, s.ElseBody, child)
		if err != nil {
			return noSignal, err
		}
		return e.promoteSignal(sig, child), nil
	}
	return noSignal, nil
}

func (e *Evaluator) execWhile(ctx context.Context, s *ast.While, env *object.Environment) (signal, error) {
	for {
		if err := ctx.Err(); err != nil {
			return noSignal, diagnostics.RuntimeErrorf(s.Token.Position.Line, "execution cancelled: %v", err)
		}
		cond, err := e.eval(ctx, s.Cond, env)
		if err != nil {
			return noSignal, err
		}
		if !cond.Bool {
			return noSignal, nil
		}
		child := env.NewChild()
		sig, err := e.execStatements(ctx, s.Body, child)
		if err != nil {
			return noSignal, err
		}
		if sig.kind != signalNone {
			return e.promoteSignal(sig, child), nil
		}
	}
}

// execFor iterates a List by aliasing each element cell under the loop
// variable's name (mutating the loop variable mutates the underlying
// list element), or a String by producing a fresh, unaliased
// single-rune string value per iteration (spec §4.6 for-loop semantics,
// resolved in SPEC_FULL §4.6: code-point iteration).
func (e *Evaluator) execFor(ctx context.Context, s *ast.ForLoop, env *object.Environment) (signal, error) {
	iterVal, err := e.eval(ctx, s.IterExpr, env)
	if err != nil {
		return noSignal, err
	}

	switch iterVal.Kind {
	case object.List:
		for _, cellID := range iterVal.Elements {
			if err := ctx.Err(); err != nil {
				return noSignal, diagnostics.RuntimeErrorf(s.Token.Position.Line, "execution cancelled: %v", err)
			}
			child := env.NewChild()
			child.DefineAlias(s.VarName, cellID)
			sig, err := e.execStatements(ctx, s.Body, child)
			if err != nil {
				return noSignal, err
			}
			if sig.kind != signalNone {
				return e.promoteSignal(sig, child), nil
			}
		}
	case object.String:
		for _, r := range iterVal.Str {
			if err := ctx.Err(); err != nil {
				return noSignal, diagnostics.RuntimeErrorf(s.Token.Position.Line, "execution cancelled: %v", err)
			}
			child := env.NewChild()
			if err := child.Define(s.VarName, object.StringValue(string(r))); err != nil {
				return noSignal, err
			}
			sig, err := e.execStatements(ctx, s.Body, child)
			if err != nil {
				return noSignal, err
			}
			if sig.kind != signalNone {
				return e.promoteSignal(sig, child), nil
			}
		}
	default:
		return noSignal, diagnostics.RuntimeErrorf(s.Token.Position.Line, "cannot iterate over non-list, non-string value")
	}
	return noSignal, nil
}
