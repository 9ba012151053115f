package parser

import (
	"strconv"

	"github.com/Swanchick/kyryl-script-sub000/internal/ast"
	"github.com/Swanchick/kyryl-script-sub000/internal/token"
	"github.com/Swanchick/kyryl-script-sub000/internal/types"
)

// parseExpression is the grammar's `expr`, lowest precedence (spec §4.3).
func (p *Parser) parseExpression() (ast.Expression, types.DataType, error) {
	return p.parseLogicOr()
}

func (p *Parser) parseLogicOr() (ast.Expression, types.DataType, error) {
	left, lt, err := p.parseLogicAnd()
	if err != nil {
		return nil, types.DataType{}, err
	}
	for p.at(token.OR) {
		tok := p.advance()
		right, rt, err := p.parseLogicAnd()
		if err != nil {
			return nil, types.DataType{}, err
		}
		result, err := binaryType(tok.Position.Line, ast.OpOr, lt, rt)
		if err != nil {
			return nil, types.DataType{}, err
		}
		left = &ast.BinaryOp{Token: tok, Left: left, Op: ast.OpOr, Right: right}
		lt = result
	}
	return left, lt, nil
}

func (p *Parser) parseLogicAnd() (ast.Expression, types.DataType, error) {
	left, lt, err := p.parseEquality()
	if err != nil {
		return nil, types.DataType{}, err
	}
	for p.at(token.AND) {
		tok := p.advance()
		right, rt, err := p.parseEquality()
		if err != nil {
			return nil, types.DataType{}, err
		}
		result, err := binaryType(tok.Position.Line, ast.OpAnd, lt, rt)
		if err != nil {
			return nil, types.DataType{}, err
		}
		left = &ast.BinaryOp{Token: tok, Left: left, Op: ast.OpAnd, Right: right}
		lt = result
	}
	return left, lt, nil
}

func (p *Parser) parseEquality() (ast.Expression, types.DataType, error) {
	left, lt, err := p.parseComparison()
	if err != nil {
		return nil, types.DataType{}, err
	}
	for p.at(token.EQ) || p.at(token.NOT_EQ) {
		tok := p.advance()
		op := ast.OpEq
		if tok.Type == token.NOT_EQ {
			op = ast.OpNotEq
		}
		right, rt, err := p.parseComparison()
		if err != nil {
			return nil, types.DataType{}, err
		}
		result, err := binaryType(tok.Position.Line, op, lt, rt)
		if err != nil {
			return nil, types.DataType{}, err
		}
		left = &ast.BinaryOp{Token: tok, Left: left, Op: op, Right: right}
		lt = result
	}
	return left, lt, nil
}

func (p *Parser) parseComparison() (ast.Expression, types.DataType, error) {
	left, lt, err := p.parseAdditive()
	if err != nil {
		return nil, types.DataType{}, err
	}
	for p.at(token.LT) || p.at(token.LT_EQ) || p.at(token.GT) || p.at(token.GT_EQ) {
		tok := p.advance()
		var op ast.Operator
		switch tok.Type {
		case token.LT:
			op = ast.OpLt
		case token.LT_EQ:
			op = ast.OpLtEq
		case token.GT:
			op = ast.OpGt
		case token.GT_EQ:
			op = ast.OpGtEq
		}
		right, rt, err := p.parseAdditive()
		if err != nil {
			return nil, types.DataType{}, err
		}
		result, err := binaryType(tok.Position.Line, op, lt, rt)
		if err != nil {
			return nil, types.DataType{}, err
		}
		left = &ast.BinaryOp{Token: tok, Left: left, Op: op, Right: right}
		lt = result
	}
	return left, lt, nil
}

func (p *Parser) parseAdditive() (ast.Expression, types.DataType, error) {
	left, lt, err := p.parseMultiplicative()
	if err != nil {
		return nil, types.DataType{}, err
	}
	for p.at(token.PLUS) || p.at(token.MINUS) {
		tok := p.advance()
		op := ast.OpAdd
		if tok.Type == token.MINUS {
			op = ast.OpSub
		}
		right, rt, err := p.parseMultiplicative()
		if err != nil {
			return nil, types.DataType{}, err
		}
		result, err := binaryType(tok.Position.Line, op, lt, rt)
		if err != nil {
			return nil, types.DataType{}, err
		}
		left = &ast.BinaryOp{Token: tok, Left: left, Op: op, Right: right}
		lt = result
	}
	return left, lt, nil
}

func (p *Parser) parseMultiplicative() (ast.Expression, types.DataType, error) {
	left, lt, err := p.parseUnary()
	if err != nil {
		return nil, types.DataType{}, err
	}
	for p.at(token.ASTERISK) || p.at(token.SLASH) {
		tok := p.advance()
		op := ast.OpMul
		if tok.Type == token.SLASH {
			op = ast.OpDiv
		}
		right, rt, err := p.parseUnary()
		if err != nil {
			return nil, types.DataType{}, err
		}
		result, err := binaryType(tok.Position.Line, op, lt, rt)
		if err != nil {
			return nil, types.DataType{}, err
		}
		left = &ast.BinaryOp{Token: tok, Left: left, Op: op, Right: right}
		lt = result
	}
	return left, lt, nil
}

func (p *Parser) parseUnary() (ast.Expression, types.DataType, error) {
	if p.at(token.MINUS) || p.at(token.BANG) {
		tok := p.advance()
		op := ast.OpNeg
		if tok.Type == token.BANG {
			op = ast.OpNot
		}
		inner, it, err := p.parseUnary()
		if err != nil {
			return nil, types.DataType{}, err
		}
		result, err := unaryType(tok.Position.Line, op, it)
		if err != nil {
			return nil, types.DataType{}, err
		}
		return &ast.UnaryOp{Token: tok, Op: op, Inner: inner}, result, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expression, types.DataType, error) {
	expr, dt, err := p.parsePrimary()
	if err != nil {
		return nil, types.DataType{}, err
	}

	for {
		switch p.cur().Type {
		case token.LBRACKET:
			tok := p.advance()
			if dt.Kind != types.List && dt.Kind != types.String {
				return nil, types.DataType{}, semErr(tok.Position.Line, "cannot index into %s", dt)
			}
			idx, idxType, err := p.parseExpression()
			if err != nil {
				return nil, types.DataType{}, err
			}
			if idxType.Kind != types.Int {
				return nil, types.DataType{}, semErr(tok.Position.Line, "index must be int, got %s", idxType)
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, types.DataType{}, err
			}
			result := types.Basic(types.String)
			if dt.Kind == types.List {
				result = *dt.Element
			}
			expr = &ast.IdentifierIndex{Token: tok, Target: expr, Index: idx}
			dt = result

		case token.DOT:
			tok := p.advance()
			if dt.Kind != types.Tuple {
				return nil, types.DataType{}, semErr(tok.Position.Line, "'.' index requires a tuple, got %s", dt)
			}
			var indices []int32
			resultType := dt
			for {
				idxTok, err := p.expect(token.INT)
				if err != nil {
					return nil, types.DataType{}, err
				}
				n, convErr := strconv.ParseInt(idxTok.Lexeme, 10, 32)
				if convErr != nil {
					return nil, types.DataType{}, semErr(idxTok.Position.Line, "invalid tuple index %q", idxTok.Lexeme)
				}
				if int(n) < 0 || int(n) >= len(resultType.Elements) {
					return nil, types.DataType{}, semErr(idxTok.Position.Line, "tuple index %d out of range for %s", n, resultType)
				}
				indices = append(indices, int32(n))
				resultType = resultType.Elements[n]
				if p.at(token.DOT) && resultType.Kind == types.Tuple {
					p.advance()
					continue
				}
				break
			}
			expr = &ast.TupleIndex{Token: tok, Target: expr, Indices: indices}
			dt = resultType

		case token.LPAREN:
			call, ok := expr.(*ast.Identifier)
			if !ok {
				return nil, types.DataType{}, semErr(p.line(), "call target must be a named function")
			}
			fnType, found := p.types.Lookup(call.Name)
			if !found {
				return nil, types.DataType{}, semErr(p.line(), "unknown identifier %q", call.Name)
			}
			tok := p.cur()
			args, argTypes, err := p.parseArgs()
			if err != nil {
				return nil, types.DataType{}, err
			}
			result, err := p.checkCall(tok.Position.Line, call.Name, fnType, argTypes)
			if err != nil {
				return nil, types.DataType{}, err
			}
			expr = &ast.FunctionCall{Token: tok, Name: call.Name, Args: args}
			dt = result

		case token.INCR, token.DECR:
			tok := p.advance()
			op := ast.OpIncr
			if tok.Type == token.DECR {
				op = ast.OpDecr
			}
			if !isAddressable(expr) {
				return nil, types.DataType{}, semErr(tok.Position.Line, "'%s' requires an assignable target", op)
			}
			result, err := postfixIncDecType(tok.Position.Line, dt)
			if err != nil {
				return nil, types.DataType{}, err
			}
			expr = &ast.FrontUnaryOp{Token: tok, Op: op, Inner: expr}
			dt = result

		default:
			return expr, dt, nil
		}
	}
}

func isAddressable(e ast.Expression) bool {
	switch e.(type) {
	case *ast.Identifier, *ast.IdentifierIndex, *ast.TupleIndex:
		return true
	default:
		return false
	}
}

// checkCall implements the call-typing row of spec §4.4: Function values
// are checked for arity and per-parameter types (a void argument accepts
// any parameter type); HostFunction values carry no parameter
// information to check against (spec §3: HostFunction(return_type) only).
func (p *Parser) checkCall(line int, name string, fnType types.DataType, argTypes []types.DataType) (types.DataType, error) {
	switch fnType.Kind {
	case types.HostFunction:
		return *fnType.Returns, nil
	case types.Function:
		if len(fnType.Params) != len(argTypes) {
			return types.DataType{}, semErr(line, "%s expects %d argument(s), got %d", name, len(fnType.Params), len(argTypes))
		}
		for i, want := range fnType.Params {
			got := argTypes[i]
			if got.IsVoid() {
				continue
			}
			if !want.Equal(got) {
				return types.DataType{}, semErr(line, "%s argument %d: expected %s, got %s", name, i+1, want, got)
			}
		}
		return *fnType.Returns, nil
	default:
		return types.DataType{}, semErr(line, "%q is not callable", name)
	}
}

func (p *Parser) parseArgs() ([]ast.Expression, []types.DataType, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, nil, err
	}
	var args []ast.Expression
	var argTypes []types.DataType
	for !p.at(token.RPAREN) {
		if len(args) > 0 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, nil, err
			}
		}
		arg, dt, err := p.parseExpression()
		if err != nil {
			return nil, nil, err
		}
		args = append(args, arg)
		argTypes = append(argTypes, dt)
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, nil, err
	}
	return args, argTypes, nil
}

// parsePrimary handles `primary := literal | IDENT | '(' expr ')' |
// list_lit | tuple_lit | fn_literal`.
func (p *Parser) parsePrimary() (ast.Expression, types.DataType, error) {
	switch p.cur().Type {
	case token.NULL:
		tok := p.advance()
		return &ast.NullLiteral{Token: tok}, types.NewVoid(nil), nil

	case token.INT:
		tok := p.advance()
		n, err := strconv.ParseInt(tok.Lexeme, 10, 32)
		if err != nil {
			return nil, types.DataType{}, parseErr(tok.Position.Line, "invalid integer literal %q", tok.Lexeme)
		}
		return &ast.IntLiteral{Token: tok, Value: int32(n)}, types.Basic(types.Int), nil

	case token.FLOAT:
		tok := p.advance()
		f, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, types.DataType{}, parseErr(tok.Position.Line, "invalid float literal %q", tok.Lexeme)
		}
		return &ast.FloatLiteral{Token: tok, Value: f}, types.Basic(types.Float), nil

	case token.STRING:
		tok := p.advance()
		return &ast.StringLiteral{Token: tok, Value: tok.Lexeme}, types.Basic(types.String), nil

	case token.TRUE, token.FALSE:
		tok := p.advance()
		return &ast.BoolLiteral{Token: tok, Value: tok.Type == token.TRUE}, types.Basic(types.Bool), nil

	case token.IDENT:
		tok := p.advance()
		dt, ok := p.types.Lookup(tok.Lexeme)
		if !ok {
			return nil, types.DataType{}, semErr(tok.Position.Line, "unknown identifier %q", tok.Lexeme)
		}
		return &ast.Identifier{Token: tok, Name: tok.Lexeme}, dt, nil

	case token.LBRACKET:
		return p.parseListLiteral()

	case token.LPAREN:
		return p.parseParenOrTuple()

	case token.FUNCTION:
		return p.parseFunctionLiteral()

	default:
		return nil, types.DataType{}, parseErr(p.line(), "unexpected token %s (%q) in expression", p.cur().Type, p.cur().Lexeme)
	}
}

func (p *Parser) parseListLiteral() (ast.Expression, types.DataType, error) {
	tok, err := p.expect(token.LBRACKET)
	if err != nil {
		return nil, types.DataType{}, err
	}
	var elems []ast.Expression
	var elemType types.DataType
	for !p.at(token.RBRACKET) {
		if len(elems) > 0 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, types.DataType{}, err
			}
		}
		e, dt, err := p.parseExpression()
		if err != nil {
			return nil, types.DataType{}, err
		}
		if len(elems) == 0 {
			elemType = dt
		} else if !elemType.Equal(dt) {
			return nil, types.DataType{}, semErr(tok.Position.Line, "list element %d has type %s, expected %s", len(elems), dt, elemType)
		}
		elems = append(elems, e)
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, types.DataType{}, err
	}
	if len(elems) == 0 {
		return nil, types.DataType{}, semErr(tok.Position.Line, "cannot infer element type of an empty list literal")
	}
	return &ast.ListLiteral{Token: tok, Elements: elems}, types.NewList(elemType), nil
}

func (p *Parser) parseParenOrTuple() (ast.Expression, types.DataType, error) {
	tok, err := p.expect(token.LPAREN)
	if err != nil {
		return nil, types.DataType{}, err
	}

	if p.at(token.RPAREN) {
		p.advance()
		return &ast.TupleLiteral{Token: tok}, types.NewTuple(), nil
	}

	first, firstType, err := p.parseExpression()
	if err != nil {
		return nil, types.DataType{}, err
	}

	if p.at(token.COMMA) {
		elems := []ast.Expression{first}
		elemTypes := []types.DataType{firstType}
		for p.at(token.COMMA) {
			p.advance()
			if p.at(token.RPAREN) {
				break // trailing comma
			}
			e, dt, err := p.parseExpression()
			if err != nil {
				return nil, types.DataType{}, err
			}
			elems = append(elems, e)
			elemTypes = append(elemTypes, dt)
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, types.DataType{}, err
		}
		return &ast.TupleLiteral{Token: tok, Elements: elems}, types.NewTuple(elemTypes...), nil
	}

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, types.DataType{}, err
	}
	return first, firstType, nil
}

func (p *Parser) parseFunctionLiteral() (ast.Expression, types.DataType, error) {
	tok, err := p.expect(token.FUNCTION)
	if err != nil {
		return nil, types.DataType{}, err
	}
	params, paramTypes, err := p.parseParams()
	if err != nil {
		return nil, types.DataType{}, err
	}
	retType := types.NewVoid(nil)
	if p.at(token.COLON) {
		p.advance()
		retType, err = p.parseType()
		if err != nil {
			return nil, types.DataType{}, err
		}
	}

	outerReturn := p.returnType
	outerTypes := p.types
	p.returnType = &retType
	p.types = outerTypes.Child()
	for _, prm := range params {
		p.types.Define(prm.Name, prm.DataType)
	}
	body, err := p.parseFunctionBody()
	p.types = outerTypes
	p.returnType = outerReturn
	if err != nil {
		return nil, types.DataType{}, err
	}

	return &ast.FunctionLiteral{Token: tok, Parameters: params, ReturnType: retType, Body: body},
		types.NewFunction(paramTypes, retType), nil
}

// parseFunctionBody parses the `{ stmt* }` of a function, in the scope
// already set up by the caller (parseFunctionLiteral / function decl),
// without opening another nested scope for the block itself — parameters
// and body locals share one scope, matching spec's description of a
// function body being "parsed in a child type-env containing its
// parameters".
func (p *Parser) parseFunctionBody() ([]ast.Statement, error) {
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var stmts []ast.Statement
	for !p.at(token.RBRACE) {
		if p.at(token.EOF) {
			return nil, parseErr(p.line(), "unexpected end of file, expected '}'")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) parseParams() ([]ast.Parameter, []types.DataType, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, nil, err
	}
	var params []ast.Parameter
	var paramTypes []types.DataType
	for !p.at(token.RPAREN) {
		if len(params) > 0 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, nil, err
			}
		}
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, nil, err
		}
		dt, err := p.parseType()
		if err != nil {
			return nil, nil, err
		}
		params = append(params, ast.Parameter{Name: nameTok.Lexeme, DataType: dt})
		paramTypes = append(paramTypes, dt)
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, nil, err
	}
	return params, paramTypes, nil
}
