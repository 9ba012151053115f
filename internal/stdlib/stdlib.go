// Package stdlib implements the host-provided functions the core assumes
// exist (spec §6): print, println, len, range, ref, plus two
// supplementary entries — uuid and typeName — that exercise the Host
// Function Registry ABI beyond the five spec.md names (SPEC_FULL §6).
//
// None of this package is part of the interpreter core; it is wired in by
// the CLI exactly the way an embedder would register its own builtins
// (spec §1 "Explicitly out of scope").
package stdlib

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Swanchick/kyryl-script-sub000/internal/diagnostics"
	"github.com/Swanchick/kyryl-script-sub000/internal/host"
	"github.com/Swanchick/kyryl-script-sub000/internal/object"
	"github.com/Swanchick/kyryl-script-sub000/internal/types"
)

// Register installs the standard library into reg. Output goes to w
// (print/println); everything else is pure.
func Register(reg *host.Registry, w io.Writer) {
	reg.Register("print", types.NewVoid(nil), printFn(w))
	reg.Register("println", types.NewVoid(nil), printlnFn(w))
	reg.Register("len", types.Basic(types.Int), lenFn)
	reg.Register("range", types.NewList(types.Basic(types.Int)), rangeFn)
	reg.Register("ref", types.Basic(types.Int), refFn)
	reg.Register("uuid", types.Basic(types.String), uuidFn)
	reg.Register("typeName", types.Basic(types.String), typeNameFn)
}

func printFn(w io.Writer) host.Func {
	return func(args []object.Value, env *object.Environment) (object.Value, error) {
		for _, a := range args {
			fmt.Fprint(w, a.Display(env))
		}
		return object.NullValue(), nil
	}
}

func printlnFn(w io.Writer) host.Func {
	inner := printFn(w)
	return func(args []object.Value, env *object.Environment) (object.Value, error) {
		if _, err := inner(args, env); err != nil {
			return object.Value{}, err
		}
		fmt.Fprintln(w)
		return object.NullValue(), nil
	}
}

// lenFn returns the code-point length of a string, or the element count
// of a list (spec §6; code-point length chosen per SPEC_FULL §4.6 for
// consistency with code-point string indexing).
func lenFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return object.Value{}, diagnostics.RuntimeErrorf(0, "len expects exactly one argument")
	}
	switch args[0].Kind {
	case object.String:
		return object.IntValue(int32(utf8.RuneCountInString(args[0].Str))), nil
	case object.List:
		return object.IntValue(int32(len(args[0].Elements))), nil
	default:
		return object.Value{}, diagnostics.RuntimeErrorf(0, "len: unsupported type %s", args[0].Type())
	}
}

// rangeFn returns [0, 1, ..., n-1] as a fresh list, each element its own
// owned cell (spec: list elements are cell-ids, not embedded values).
func rangeFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 || args[0].Kind != object.Integer {
		return object.Value{}, diagnostics.RuntimeErrorf(0, "range expects one int argument")
	}
	n := args[0].Int
	if n < 0 {
		return object.Value{}, diagnostics.RuntimeErrorf(0, "range: negative length %d", n)
	}
	ids := make([]object.CellID, 0, n)
	for i := int32(0); i < n; i++ {
		ids = append(ids, env.DefineFreshCell(object.IntValue(i)))
	}
	return object.ListValue(ids, types.Basic(types.Int)), nil
}

// refFn exposes the back-reference cell id of its argument as an Int, or
// null if the value carries none (grounded in original_source's
// ks_ref.rs; useful for debugging aliasing).
func refFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return object.Value{}, diagnostics.RuntimeErrorf(0, "ref expects exactly one argument")
	}
	if r := args[0].Ref(); r != nil {
		return object.IntValue(int32(*r)), nil
	}
	return object.NullValue(), nil
}

func uuidFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 0 {
		return object.Value{}, diagnostics.RuntimeErrorf(0, "uuid expects no arguments")
	}
	return object.StringValue(uuid.NewString()), nil
}

func typeNameFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return object.Value{}, diagnostics.RuntimeErrorf(0, "typeName expects exactly one argument")
	}
	return object.StringValue(args[0].Type().String()), nil
}
