// Package types implements the closed data-type lattice shared by the
// parser's inline semantic analyzer and the evaluator's runtime checks.
package types

import "strings"

// Kind identifies which variant of DataType a value is.
type Kind int

const (
	Int Kind = iota
	Float
	String
	Bool
	Void
	List
	Tuple
	Function
	HostFunction
	Module
)

// DataType is a node in the closed type lattice. Equality is structural and
// recursive (see Equal), never pointer identity.
type DataType struct {
	Kind Kind

	// List
	Element *DataType

	// Tuple
	Elements []DataType

	// Function / HostFunction
	Params  []DataType
	Returns *DataType

	// Void
	Inner *DataType // reserved; never read by the evaluator (spec §9)

	// Module
	ModuleName string
}

func Basic(k Kind) DataType { return DataType{Kind: k} }

func NewList(elem DataType) DataType { return DataType{Kind: List, Element: &elem} }

func NewTuple(elems ...DataType) DataType { return DataType{Kind: Tuple, Elements: elems} }

func NewFunction(params []DataType, ret DataType) DataType {
	return DataType{Kind: Function, Params: params, Returns: &ret}
}

func NewHostFunction(ret DataType) DataType {
	return DataType{Kind: HostFunction, Returns: &ret}
}

func NewVoid(inner *DataType) DataType { return DataType{Kind: Void, Inner: inner} }

func NewModule(name string) DataType { return DataType{Kind: Module, ModuleName: name} }

// IsVoid reports whether a type is the Void variant, regardless of its
// (unused) inner slot.
func (d DataType) IsVoid() bool { return d.Kind == Void }

// IsNumeric reports whether a type is Int or Float.
func (d DataType) IsNumeric() bool { return d.Kind == Int || d.Kind == Float }

// Equal reports whether two types are structurally identical.
func (d DataType) Equal(other DataType) bool {
	if d.Kind != other.Kind {
		return false
	}
	switch d.Kind {
	case List:
		return d.Element.Equal(*other.Element)
	case Tuple:
		if len(d.Elements) != len(other.Elements) {
			return false
		}
		for i := range d.Elements {
			if !d.Elements[i].Equal(other.Elements[i]) {
				return false
			}
		}
		return true
	case Function, HostFunction:
		if d.Kind == Function {
			if len(d.Params) != len(other.Params) {
				return false
			}
			for i := range d.Params {
				if !d.Params[i].Equal(other.Params[i]) {
					return false
				}
			}
		}
		return d.Returns.Equal(*other.Returns)
	case Module:
		return d.ModuleName == other.ModuleName
	default:
		return true
	}
}

// String renders the type the way source-level type annotations and
// diagnostic messages spell it.
func (d DataType) String() string {
	switch d.Kind {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Bool:
		return "bool"
	case Void:
		return "void"
	case List:
		return "[" + d.Element.String() + "]"
	case Tuple:
		parts := make([]string, len(d.Elements))
		for i, e := range d.Elements {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case Function:
		parts := make([]string, len(d.Params))
		for i, p := range d.Params {
			parts[i] = p.String()
		}
		return "function(" + strings.Join(parts, ", ") + "): " + d.Returns.String()
	case HostFunction:
		return "hostfunction(): " + d.Returns.String()
	case Module:
		return "module " + d.ModuleName
	default:
		return "<unknown>"
	}
}
