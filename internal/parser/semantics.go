package parser

import (
	"github.com/Swanchick/kyryl-script-sub000/internal/ast"
	"github.com/Swanchick/kyryl-script-sub000/internal/types"
)

// binaryType implements the operator typing table of spec §4.4.
func binaryType(line int, op ast.Operator, l, r types.DataType) (types.DataType, error) {
	if l.IsVoid() || r.IsVoid() {
		return types.DataType{}, semErr(line, "operation on null value")
	}

	switch op {
	case ast.OpAdd:
		switch {
		case l.Kind == types.Int && r.Kind == types.Int:
			return types.Basic(types.Int), nil
		case l.IsNumeric() && r.IsNumeric():
			return types.Basic(types.Float), nil
		case l.Kind == types.String && r.Kind == types.String:
			return types.Basic(types.String), nil
		default:
			return types.DataType{}, semErr(line, "cannot apply '+' to %s and %s", l, r)
		}

	case ast.OpSub, ast.OpMul, ast.OpDiv:
		switch {
		case l.Kind == types.Int && r.Kind == types.Int:
			return types.Basic(types.Int), nil
		case l.IsNumeric() && r.IsNumeric():
			return types.Basic(types.Float), nil
		default:
			return types.DataType{}, semErr(line, "cannot apply '%s' to %s and %s", op, l, r)
		}

	case ast.OpAnd, ast.OpOr:
		if l.Kind == types.Bool && r.Kind == types.Bool {
			return types.Basic(types.Bool), nil
		}
		return types.DataType{}, semErr(line, "cannot apply '%s' to %s and %s", op, l, r)

	case ast.OpEq, ast.OpNotEq:
		if !l.Equal(r) {
			return types.DataType{}, semErr(line, "cannot compare %s with %s", l, r)
		}
		return types.Basic(types.Bool), nil

	case ast.OpLt, ast.OpLtEq, ast.OpGt, ast.OpGtEq:
		if l.IsNumeric() && r.IsNumeric() {
			return types.Basic(types.Bool), nil
		}
		return types.DataType{}, semErr(line, "cannot compare %s with %s using '%s'", l, r, op)

	default:
		return types.DataType{}, semErr(line, "unsupported binary operator %q", op)
	}
}

// unaryType implements the prefix-unary row of spec §4.4.
func unaryType(line int, op ast.Operator, inner types.DataType) (types.DataType, error) {
	if inner.IsVoid() {
		return types.DataType{}, semErr(line, "operation on null value")
	}
	switch op {
	case ast.OpNeg:
		if inner.Kind == types.Int || inner.Kind == types.Float {
			return inner, nil
		}
		return types.DataType{}, semErr(line, "cannot negate %s", inner)
	case ast.OpNot:
		if inner.Kind == types.Bool {
			return inner, nil
		}
		return types.DataType{}, semErr(line, "cannot apply '!' to %s", inner)
	default:
		return types.DataType{}, semErr(line, "unsupported unary operator %q", op)
	}
}

// postfixIncDecType implements the `++`/`--` row of spec §4.4.
func postfixIncDecType(line int, inner types.DataType) (types.DataType, error) {
	if inner.Kind == types.Int || inner.Kind == types.Float {
		return inner, nil
	}
	return types.DataType{}, semErr(line, "cannot apply '++'/'--' to %s", inner)
}

// acceptsVoidInit reports whether a void/null RHS may initialize a
// variable declared with declaredType (spec §4.3: "RHS is void/null,
// which may initialize any declared type").
func acceptsVoidInit(rhs types.DataType) bool {
	return rhs.IsVoid()
}
