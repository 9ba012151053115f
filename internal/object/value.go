package object

import (
	"fmt"
	"strings"

	"github.com/Swanchick/kyryl-script-sub000/internal/ast"
	"github.com/Swanchick/kyryl-script-sub000/internal/types"
)

// Kind discriminates the ValueType variants of spec §3 "Values".
type Kind int

const (
	Null Kind = iota
	Integer
	Float
	String
	Boolean
	List
	Tuple
	Function
	HostFunction
)

// FunctionValue is the payload of a Function-kind Value: a closure over
// the environment in which the literal was evaluated (spec §4.6
// "function(params) -> T block").
type FunctionValue struct {
	ReturnType types.DataType
	Parameters []ast.Parameter
	Body       []ast.Statement
	Captured   *Environment
}

// Value is a tagged runtime value, optionally carrying the id of the
// cell it was read from (spec §3 "back-reference"). The back-reference
// is what lets Environment.Define decide whether a rebinding should alias
// existing storage or allocate fresh storage.
type Value struct {
	ref *CellID

	Kind Kind

	Int   int32
	Flt   float64
	Str   string
	Bool  bool

	// List / Tuple: elements are cell ids, not embedded values, so that
	// e.g. `list[i]++` mutates a cell observable from every alias of the
	// list (spec §3).
	Elements    []CellID
	ElementType types.DataType // List only
	TupleType   types.DataType // Tuple only (Kind field redundant with Kind==Tuple)

	Fn *FunctionValue

	HostReturnType types.DataType
	HostName       string
}

// Ref returns the cell id this value was read from, if any.
func (v Value) Ref() *CellID { return v.ref }

// WithRef returns a copy of v carrying back-reference id.
func (v Value) WithRef(id CellID) Value {
	v.ref = &id
	return v
}

// ClearRef returns a copy of v with no back-reference. Used when a
// returned value's owning cell was torn down along with its frame (spec
// §4.6 call semantics: "clear the back-reference").
func (v Value) ClearRef() Value {
	v.ref = nil
	return v
}

func NullValue() Value                { return Value{Kind: Null} }
func IntValue(i int32) Value          { return Value{Kind: Integer, Int: i} }
func FloatValue(f float64) Value      { return Value{Kind: Float, Flt: f} }
func StringValue(s string) Value      { return Value{Kind: String, Str: s} }
func BoolValue(b bool) Value          { return Value{Kind: Boolean, Bool: b} }

func ListValue(elems []CellID, elemType types.DataType) Value {
	return Value{Kind: List, Elements: elems, ElementType: elemType}
}

func TupleValue(elems []CellID, tupleType types.DataType) Value {
	return Value{Kind: Tuple, Elements: elems, TupleType: tupleType}
}

func FunctionValueOf(fn *FunctionValue) Value {
	return Value{Kind: Function, Fn: fn}
}

func HostFunctionValue(name string, ret types.DataType) Value {
	return Value{Kind: HostFunction, HostName: name, HostReturnType: ret}
}

// Type computes the static DataType this runtime value carries, used by
// the evaluator's runtime type checks (assignment, return-type
// verification, call argument matching) which mirror the parser's static
// checks (spec §4.4, §4.5, §4.6).
func (v Value) Type() types.DataType {
	switch v.Kind {
	case Null:
		return types.NewVoid(nil)
	case Integer:
		return types.Basic(types.Int)
	case Float:
		return types.Basic(types.Float)
	case String:
		return types.Basic(types.String)
	case Boolean:
		return types.Basic(types.Bool)
	case List:
		return types.NewList(v.ElementType)
	case Tuple:
		return v.TupleType
	case Function:
		params := make([]types.DataType, len(v.Fn.Parameters))
		for i, p := range v.Fn.Parameters {
			params[i] = p.DataType
		}
		return types.NewFunction(params, v.Fn.ReturnType)
	case HostFunction:
		return types.NewHostFunction(v.HostReturnType)
	default:
		return types.NewVoid(nil)
	}
}

// Display renders a value the way print/println and tuple/list string
// conversion do (spec §8 scenarios, e.g. `println(xs[1])` → `7`).
// Elements stored as cell ids are looked up in env, since a bare Value
// carries only ids, not nested Values.
func (v Value) Display(env *Environment) string {
	switch v.Kind {
	case Null:
		return "null"
	case Integer:
		return fmt.Sprintf("%d", v.Int)
	case Float:
		return formatFloat(v.Flt)
	case String:
		return v.Str
	case Boolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case List:
		parts := make([]string, len(v.Elements))
		for i, id := range v.Elements {
			elem, err := env.GetByID(id)
			if err != nil {
				parts[i] = "<error>"
				continue
			}
			parts[i] = elem.Display(env)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Tuple:
		parts := make([]string, len(v.Elements))
		for i, id := range v.Elements {
			elem, err := env.GetByID(id)
			if err != nil {
				parts[i] = "<error>"
				continue
			}
			parts[i] = elem.Display(env)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case Function:
		return "<function>"
	case HostFunction:
		return "<host function " + v.HostName + ">"
	default:
		return "<unknown>"
	}
}

func formatFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Equal implements the `==`/`!=` value comparison (spec §4.4: equal types
// only). Caller must already have verified the two values share a type.
func Equal(a, b Value, env *Environment) (bool, error) {
	switch a.Kind {
	case Null:
		return true, nil
	case Integer:
		return a.Int == b.Int, nil
	case Float:
		return a.Flt == b.Flt, nil
	case String:
		return a.Str == b.Str, nil
	case Boolean:
		return a.Bool == b.Bool, nil
	case List, Tuple:
		if len(a.Elements) != len(b.Elements) {
			return false, nil
		}
		for i := range a.Elements {
			av, err := env.GetByID(a.Elements[i])
			if err != nil {
				return false, err
			}
			bv, err := env.GetByID(b.Elements[i])
			if err != nil {
				return false, err
			}
			eq, err := Equal(av, bv, env)
			if err != nil || !eq {
				return eq, err
			}
		}
		return true, nil
	default:
		return false, nil
	}
}
