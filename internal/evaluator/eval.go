package evaluator

import (
	"context"

	"github.com/Swanchick/kyryl-script-sub000/internal/ast"
	"github.com/Swanchick/kyryl-script-sub000/internal/diagnostics"
	"github.com/Swanchick/kyryl-script-sub000/internal/object"
	"github.com/Swanchick/kyryl-script-sub000/internal/types"
)

func (e *Evaluator) eval(ctx context.Context, expr ast.Expression, env *object.Environment) (object.Value, error) {
	switch ex := expr.(type) {
	case *ast.NullLiteral:
		return object.NullValue(), nil
	case *ast.IntLiteral:
		return object.IntValue(ex.Value), nil
	case *ast.FloatLiteral:
		return object.FloatValue(ex.Value), nil
	case *ast.StringLiteral:
		return object.StringValue(ex.Value), nil
	case *ast.BoolLiteral:
		return object.BoolValue(ex.Value), nil
	case *ast.Identifier:
		return env.Lookup(ex.Name)
	case *ast.ListLiteral:
		return e.evalListLiteral(ctx, ex, env)
	case *ast.TupleLiteral:
		return e.evalTupleLiteral(ctx, ex, env)
	case *ast.FunctionLiteral:
		return e.evalFunctionLiteral(ex, env)
	case *ast.IdentifierIndex:
		return e.evalIdentifierIndex(ctx, ex, env)
	case *ast.TupleIndex:
		return e.evalTupleIndex(ctx, ex, env)
	case *ast.BinaryOp:
		return e.evalBinaryOp(ctx, ex, env)
	case *ast.UnaryOp:
		return e.evalUnaryOp(ctx, ex, env)
	case *ast.FrontUnaryOp:
		return e.evalFrontUnaryOp(ctx, ex, env)
	case *ast.FunctionCall:
		return e.evalFunctionCall(ctx, ex, env)
	default:
		return object.Value{}, diagnostics.RuntimeErrorf(expr.GetToken().Position.Line, "unhandled expression type %T", expr)
	}
}

func (e *Evaluator) evalListLiteral(ctx context.Context, ex *ast.ListLiteral, env *object.Environment) (object.Value, error) {
	ids := make([]object.CellID, len(ex.Elements))
	var elemType types.DataType
	for i, elemExpr := range ex.Elements {
		v, err := e.eval(ctx, elemExpr, env)
		if err != nil {
			return object.Value{}, err
		}
		if i == 0 {
			elemType = v.Type()
		}
		ids[i] = env.DefineFreshCell(v)
	}
	return object.ListValue(ids, elemType), nil
}

func (e *Evaluator) evalTupleLiteral(ctx context.Context, ex *ast.TupleLiteral, env *object.Environment) (object.Value, error) {
	ids := make([]object.CellID, len(ex.Elements))
	elemTypes := make([]types.DataType, len(ex.Elements))
	for i, elemExpr := range ex.Elements {
		v, err := e.eval(ctx, elemExpr, env)
		if err != nil {
			return object.Value{}, err
		}
		elemTypes[i] = v.Type()
		ids[i] = env.DefineFreshCell(v)
	}
	return object.TupleValue(ids, types.NewTuple(elemTypes...)), nil
}

func (e *Evaluator) evalFunctionLiteral(ex *ast.FunctionLiteral, env *object.Environment) (object.Value, error) {
	fn := &object.FunctionValue{
		ReturnType: ex.ReturnType,
		Parameters: ex.Parameters,
		Body:       ex.Body,
		Captured:   env,
	}
	return object.FunctionValueOf(fn), nil
}

func (e *Evaluator) evalIdentifierIndex(ctx context.Context, ex *ast.IdentifierIndex, env *object.Environment) (object.Value, error) {
	target, err := e.eval(ctx, ex.Target, env)
	if err != nil {
		return object.Value{}, err
	}
	idxVal, err := e.eval(ctx, ex.Index, env)
	if err != nil {
		return object.Value{}, err
	}
	idx := int(idxVal.Int)

	switch target.Kind {
	case object.List:
		if idx < 0 || idx >= len(target.Elements) {
			return object.Value{}, diagnostics.RuntimeErrorf(ex.Token.Position.Line, "index %d out of range (length %d)", idx, len(target.Elements))
		}
		id := target.Elements[idx]
		v, err := env.GetByID(id)
		if err != nil {
			return object.Value{}, err
		}
		return v.WithRef(id), nil
	case object.String:
		runes := []rune(target.Str)
		if idx < 0 || idx >= len(runes) {
			return object.Value{}, diagnostics.RuntimeErrorf(ex.Token.Position.Line, "index %d out of range (length %d)", idx, len(runes))
		}
		return object.StringValue(string(runes[idx])), nil
	default:
		return object.Value{}, diagnostics.RuntimeErrorf(ex.Token.Position.Line, "cannot index into non-list, non-string value")
	}
}

func (e *Evaluator) evalTupleIndex(ctx context.Context, ex *ast.TupleIndex, env *object.Environment) (object.Value, error) {
	cur, err := e.eval(ctx, ex.Target, env)
	if err != nil {
		return object.Value{}, err
	}
	var id object.CellID
	for _, idx := range ex.Indices {
		if cur.Kind != object.Tuple {
			return object.Value{}, diagnostics.RuntimeErrorf(ex.Token.Position.Line, "cannot apply '.' to non-tuple value")
		}
		if int(idx) < 0 || int(idx) >= len(cur.Elements) {
			return object.Value{}, diagnostics.RuntimeErrorf(ex.Token.Position.Line, "tuple index %d out of range", idx)
		}
		id = cur.Elements[idx]
		cur, err = env.GetByID(id)
		if err != nil {
			return object.Value{}, err
		}
	}
	return cur.WithRef(id), nil
}

func (e *Evaluator) evalUnaryOp(ctx context.Context, ex *ast.UnaryOp, env *object.Environment) (object.Value, error) {
	inner, err := e.eval(ctx, ex.Inner, env)
	if err != nil {
		return object.Value{}, err
	}
	switch ex.Op {
	case ast.OpNeg:
		if inner.Kind == object.Integer {
			return object.IntValue(-inner.Int), nil
		}
		return object.FloatValue(-inner.Flt), nil
	case ast.OpNot:
		return object.BoolValue(!inner.Bool), nil
	default:
		return object.Value{}, diagnostics.RuntimeErrorf(ex.Token.Position.Line, "unsupported unary operator %q", ex.Op)
	}
}

// evalFrontUnaryOp implements e++/e-- (spec §4.6): reads the current
// value through its cell, computes the incremented value, writes it back
// through the same cell (visible to every alias), and yields the
// PRE-increment value as the expression's result.
func (e *Evaluator) evalFrontUnaryOp(ctx context.Context, ex *ast.FrontUnaryOp, env *object.Environment) (object.Value, error) {
	cur, err := e.eval(ctx, ex.Inner, env)
	if err != nil {
		return object.Value{}, err
	}
	if cur.Ref() == nil {
		return object.Value{}, diagnostics.RuntimeErrorf(ex.Token.Position.Line, "'%s' requires an addressable value", ex.Op)
	}

	var next object.Value
	switch cur.Kind {
	case object.Integer:
		delta := int32(1)
		if ex.Op == ast.OpDecr {
			delta = -1
		}
		next = object.IntValue(cur.Int + delta)
	case object.Float:
		delta := 1.0
		if ex.Op == ast.OpDecr {
			delta = -1
		}
		next = object.FloatValue(cur.Flt + delta)
	default:
		return object.Value{}, diagnostics.RuntimeErrorf(ex.Token.Position.Line, "cannot apply '%s' to a non-numeric value", ex.Op)
	}

	if err := env.AssignByID(*cur.Ref(), next); err != nil {
		return object.Value{}, err
	}
	return cur, nil
}

func (e *Evaluator) evalBinaryOp(ctx context.Context, ex *ast.BinaryOp, env *object.Environment) (object.Value, error) {
	left, err := e.eval(ctx, ex.Left, env)
	if err != nil {
		return object.Value{}, err
	}

	// Short-circuit &&/||: the right operand is only evaluated when it
	// can change the result (spec §4.4 implies standard short-circuit
	// boolean semantics for these two operators).
	switch ex.Op {
	case ast.OpAnd:
		if !left.Bool {
			return object.BoolValue(false), nil
		}
		right, err := e.eval(ctx, ex.Right, env)
		if err != nil {
			return object.Value{}, err
		}
		return object.BoolValue(right.Bool), nil
	case ast.OpOr:
		if left.Bool {
			return object.BoolValue(true), nil
		}
		right, err := e.eval(ctx, ex.Right, env)
		if err != nil {
			return object.Value{}, err
		}
		return object.BoolValue(right.Bool), nil
	}

	right, err := e.eval(ctx, ex.Right, env)
	if err != nil {
		return object.Value{}, err
	}

	line := ex.Token.Position.Line
	switch ex.Op {
	case ast.OpAdd:
		return numericAdd(line, left, right)
	case ast.OpSub:
		return numericSub(line, left, right)
	case ast.OpMul:
		return numericMul(line, left, right)
	case ast.OpDiv:
		return numericDiv(line, left, right)
	case ast.OpEq:
		eq, err := object.Equal(left, right, env)
		return object.BoolValue(eq), err
	case ast.OpNotEq:
		eq, err := object.Equal(left, right, env)
		return object.BoolValue(!eq), err
	case ast.OpLt:
		return object.BoolValue(numericLess(left, right)), nil
	case ast.OpLtEq:
		return object.BoolValue(numericLess(left, right) || numericEqualValue(left, right)), nil
	case ast.OpGt:
		return object.BoolValue(!numericLess(left, right) && !numericEqualValue(left, right)), nil
	case ast.OpGtEq:
		return object.BoolValue(!numericLess(left, right)), nil
	default:
		return object.Value{}, diagnostics.RuntimeErrorf(line, "unsupported binary operator %q", ex.Op)
	}
}

func asFloat(v object.Value) float64 {
	if v.Kind == object.Integer {
		return float64(v.Int)
	}
	return v.Flt
}

func numericLess(l, r object.Value) bool { return asFloat(l) < asFloat(r) }

func numericEqualValue(l, r object.Value) bool { return asFloat(l) == asFloat(r) }

func numericAdd(line int, l, r object.Value) (object.Value, error) {
	if l.Kind == object.String && r.Kind == object.String {
		return object.StringValue(l.Str + r.Str), nil
	}
	if l.Kind == object.Integer && r.Kind == object.Integer {
		return object.IntValue(l.Int + r.Int), nil
	}
	if (l.Kind == object.Integer || l.Kind == object.Float) && (r.Kind == object.Integer || r.Kind == object.Float) {
		return object.FloatValue(asFloat(l) + asFloat(r)), nil
	}
	return object.Value{}, diagnostics.RuntimeErrorf(line, "cannot apply '+' to incompatible values")
}

func numericSub(line int, l, r object.Value) (object.Value, error) {
	if l.Kind == object.Integer && r.Kind == object.Integer {
		return object.IntValue(l.Int - r.Int), nil
	}
	if (l.Kind == object.Integer || l.Kind == object.Float) && (r.Kind == object.Integer || r.Kind == object.Float) {
		return object.FloatValue(asFloat(l) - asFloat(r)), nil
	}
	return object.Value{}, diagnostics.RuntimeErrorf(line, "cannot apply '-' to incompatible values")
}

func numericMul(line int, l, r object.Value) (object.Value, error) {
	if l.Kind == object.Integer && r.Kind == object.Integer {
		return object.IntValue(l.Int * r.Int), nil
	}
	if (l.Kind == object.Integer || l.Kind == object.Float) && (r.Kind == object.Integer || r.Kind == object.Float) {
		return object.FloatValue(asFloat(l) * asFloat(r)), nil
	}
	return object.Value{}, diagnostics.RuntimeErrorf(line, "cannot apply '*' to incompatible values")
}

func numericDiv(line int, l, r object.Value) (object.Value, error) {
	if l.Kind == object.Integer && r.Kind == object.Integer {
		if r.Int == 0 {
			return object.Value{}, diagnostics.RuntimeErrorf(line, "division by zero")
		}
		return object.IntValue(l.Int / r.Int), nil
	}
	if (l.Kind == object.Integer || l.Kind == object.Float) && (r.Kind == object.Integer || r.Kind == object.Float) {
		rf := asFloat(r)
		if rf == 0 {
			return object.Value{}, diagnostics.RuntimeErrorf(line, "division by zero")
		}
		return object.FloatValue(asFloat(l) / rf), nil
	}
	return object.Value{}, diagnostics.RuntimeErrorf(line, "cannot apply '/' to incompatible values")
}
