package evaluator

import (
	"context"

	"github.com/Swanchick/kyryl-script-sub000/internal/ast"
	"github.com/Swanchick/kyryl-script-sub000/internal/diagnostics"
	"github.com/Swanchick/kyryl-script-sub000/internal/object"
)

func (e *Evaluator) evalFunctionCall(ctx context.Context, ex *ast.FunctionCall, env *object.Environment) (object.Value, error) {
	fnVal, err := env.Lookup(ex.Name)
	if err != nil {
		return object.Value{}, err
	}

	switch fnVal.Kind {
	case object.HostFunction:
		return e.callHostFunction(ctx, ex, fnVal, env)
	case object.Function:
		return e.callFunction(ctx, ex, fnVal, env)
	default:
		return object.Value{}, diagnostics.RuntimeErrorf(ex.Token.Position.Line, "%q is not callable", ex.Name)
	}
}

// callHostFunction dispatches to whatever package registered fnVal.HostName
// with the Evaluator's host.Registry (spec §6 host ABI). Host calls carry
// no parameter typing (spec §3: HostFunction(return_type) only), so the
// args are simply evaluated and handed over.
func (e *Evaluator) callHostFunction(ctx context.Context, ex *ast.FunctionCall, fnVal object.Value, env *object.Environment) (object.Value, error) {
	entry, ok := e.registry.Lookup(fnVal.HostName)
	if !ok {
		return object.Value{}, diagnostics.RuntimeErrorf(ex.Token.Position.Line, "host function %q is not registered", fnVal.HostName)
	}
	args := make([]object.Value, len(ex.Args))
	for i, a := range ex.Args {
		v, err := e.eval(ctx, a, env)
		if err != nil {
			return object.Value{}, err
		}
		args[i] = v
	}
	return entry.Fn(args, env)
}

// callFunction implements the call semantics of spec §4.6: a fresh frame
// scoped under the function's CAPTURED (defining) environment — not the
// caller's — so free identifiers resolve lexically; parameters bound via
// Environment.Define so argument aliasing (spec §4.5) applies exactly as
// it would for a `let`; and, on return, any List/Tuple element cells the
// function body allocated for itself are promoted out of the frame
// before it is discarded, so the returned aggregate's element identity
// survives past the call (spec §4.6 "promote on return").
func (e *Evaluator) callFunction(ctx context.Context, ex *ast.FunctionCall, fnVal object.Value, env *object.Environment) (object.Value, error) {
	fn := fnVal.Fn
	if len(ex.Args) != len(fn.Parameters) {
		return object.Value{}, diagnostics.RuntimeErrorf(ex.Token.Position.Line, "%s expects %d argument(s), got %d", ex.Name, len(fn.Parameters), len(ex.Args))
	}

	frame := fn.Captured.NewChild()
	for i, argExpr := range ex.Args {
		v, err := e.eval(ctx, argExpr, env)
		if err != nil {
			return object.Value{}, err
		}
		if want := fn.Parameters[i].DataType; v.Kind != object.Null && !v.Type().Equal(want) {
			return object.Value{}, diagnostics.RuntimeErrorf(ex.Token.Position.Line, "%s argument %d: expected %s, got %s", ex.Name, i+1, want, v.Type())
		}
		if err := frame.Define(fn.Parameters[i].Name, v); err != nil {
			return object.Value{}, err
		}
	}

	sig, err := e.execStatements(ctx, fn.Body, frame)
	if err != nil {
		return object.Value{}, err
	}

	var result object.Value
	if sig.kind == signalReturn {
		result = sig.value
	} else {
		result = object.NullValue()
	}
	if result.Kind != object.Null && !result.Type().Equal(fn.ReturnType) {
		return object.Value{}, diagnostics.RuntimeErrorf(ex.Token.Position.Line, "%s must return %s, got %s", ex.Name, fn.ReturnType, result.Type())
	}

	return e.promoteOutOfFrame(result, frame), nil
}

// promoteOutOfFrame clears the returned value's own back-reference (its
// binding cell, if any, belongs to frame and is about to become
// unreachable) and promotes every List/Tuple element cell the value still
// points into, directly or through nesting, out of frame and into
// frame.Parent() — repeating the same promotion any nested if/while/for
// block already performed when the return signal crossed its own scope
// boundary on the way up (see promoteSignal).
func (e *Evaluator) promoteOutOfFrame(v object.Value, frame *object.Environment) object.Value {
	v = v.ClearRef()
	if v.Kind == object.List || v.Kind == object.Tuple {
		for _, id := range v.Elements {
			e.promoteCellRecursive(id, frame)
		}
	}
	return v
}

// promoteSignal is called whenever a Return signal crosses a nested
// block's scope boundary (if/while/for body) on its way back up to the
// enclosing scope. It performs the same element-cell promotion as
// promoteOutOfFrame, one scope level at a time, so that by the time the
// signal reaches the function's top-level frame every element cell the
// returned aggregate depends on has already been relocated out of
// whichever block originally allocated it.
func (e *Evaluator) promoteSignal(sig signal, from *object.Environment) signal {
	if sig.kind != signalReturn {
		return sig
	}
	if sig.value.Kind == object.List || sig.value.Kind == object.Tuple {
		for _, id := range sig.value.Elements {
			e.promoteCellRecursive(id, from)
		}
	}
	return sig
}

// promoteCellRecursive moves id from from's own cell table into its
// parent's, first recursing into any nested List/Tuple the cell holds so
// that the whole chain (not just the outermost identity) survives the
// scope transition. It is a no-op when from does not itself own id.
func (e *Evaluator) promoteCellRecursive(id object.CellID, from *object.Environment) {
	if !from.SameScope(id) {
		return
	}
	if v, err := from.GetByID(id); err == nil && (v.Kind == object.List || v.Kind == object.Tuple) {
		for _, nested := range v.Elements {
			e.promoteCellRecursive(nested, from)
		}
	}
	_ = from.PromoteToParent(id)
}
