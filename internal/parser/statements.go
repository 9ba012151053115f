package parser

import (
	"github.com/Swanchick/kyryl-script-sub000/internal/ast"
	"github.com/Swanchick/kyryl-script-sub000/internal/token"
	"github.com/Swanchick/kyryl-script-sub000/internal/types"
)

// parseVariableDeclaration handles `['pub'] 'let' IDENT [':' type] ['='
// expr] ';'` (spec §4.3). When a type annotation is present, the RHS must
// match it unless the RHS is void/null. When absent, the declared type is
// inferred from the RHS, which must then be present.
func (p *Parser) parseVariableDeclaration(public bool) (ast.Statement, error) {
	tok, err := p.expect(token.LET)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	var declared *types.DataType
	if p.at(token.COLON) {
		p.advance()
		dt, err := p.parseType()
		if err != nil {
			return nil, err
		}
		declared = &dt
	}

	var init ast.Expression
	var initType types.DataType
	hasInit := false
	if p.at(token.ASSIGN) {
		p.advance()
		init, initType, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
		hasInit = true
	}

	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	var finalType types.DataType
	switch {
	case declared != nil && hasInit:
		if !acceptsVoidInit(initType) && !declared.Equal(initType) {
			return nil, semErr(tok.Position.Line, "cannot initialize %s with %s", declared, initType)
		}
		finalType = *declared
	case declared != nil && !hasInit:
		finalType = *declared
	case declared == nil && hasInit:
		if initType.IsVoid() {
			return nil, semErr(tok.Position.Line, "cannot infer type of %q from a void initializer", nameTok.Lexeme)
		}
		finalType = initType
	default:
		return nil, semErr(tok.Position.Line, "variable %q needs either a type annotation or an initializer", nameTok.Lexeme)
	}

	p.types.Define(nameTok.Lexeme, finalType)

	return &ast.VariableDeclaration{
		Token:        tok,
		Name:         nameTok.Lexeme,
		Public:       public,
		DeclaredType: declared,
		Init:         init,
	}, nil
}

// parseFunctionDeclaration handles `['pub'] 'function' IDENT '(' params
// ')' [':' type] block`. The function's own name/type is defined before its
// body is parsed, so self-recursive calls resolve (spec's resolved Open
// Question: only self-recursion, not forward references between siblings).
func (p *Parser) parseFunctionDeclaration(public bool) (ast.Statement, error) {
	tok, err := p.expect(token.FUNCTION)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	params, paramTypes, err := p.parseParams()
	if err != nil {
		return nil, err
	}

	retType := types.NewVoid(nil)
	if p.at(token.COLON) {
		p.advance()
		retType, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}

	p.types.Define(nameTok.Lexeme, types.NewFunction(paramTypes, retType))

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
		return nil, err
	}

	return &ast.FunctionDeclaration{
		Token:      tok,
		Name:       nameTok.Lexeme,
		Public:     public,
		ReturnType: retType,
		Parameters: params,
		Body:       body,
	}, nil
}

// parseUseStatement handles `'use' IDENT {'.' IDENT} ';'`, including the
// leading `root` keyword (spec §4.7 / SPEC_FULL §4.7): it asks the resolver
// for the pub surface of the named module and inlines it into the current
// type scope.
func (p *Parser) parseUseStatement() (ast.Statement, error) {
	tok, err := p.expect(token.USE)
	if err != nil {
		return nil, err
	}

	var segs []string
	if p.at(token.ROOT) {
		segs = append(segs, "root")
		p.advance()
	} else {
		first, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		segs = append(segs, first.Lexeme)
	}
	for p.at(token.DOT) {
		p.advance()
		seg, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg.Lexeme)
	}

	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	dotted := segs[0]
	for _, s := range segs[1:] {
		dotted += "." + s
	}

	if p.resolver == nil {
		return nil, semErr(tok.Position.Line, "use statements are not supported in this context")
	}
	resolved, err := p.resolver.ResolveUse(p.dir, dotted, p.root)
	if err != nil {
		return nil, err
	}
	for name, dt := range resolved.Exports {
		p.types.Define(name, dt)
	}

	return &ast.Use{Token: tok, FileName: dotted, BindingsBody: resolved.Statements}, nil
}

// parseIf handles `'if' '(' expr ')' block ['else' (if | block)]`.
func (p *Parser) parseIf() (ast.Statement, error) {
	tok, err := p.expect(token.IF)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, condType, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if condType.Kind != types.Bool {
		return nil, semErr(tok.Position.Line, "if condition must be bool, got %s", condType)
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	thenBody, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	var elseBody []ast.Statement
	if p.at(token.ELSE) {
		p.advance()
		if p.at(token.IF) {
			nested, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			elseBody = []ast.Statement{nested}
		} else {
			elseBody, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
	}

	return &ast.If{Token: tok, Cond: cond, ThenBody: thenBody, ElseBody: elseBody}, nil
}

// parseWhile handles `'while' '(' expr ')' block`.
func (p *Parser) parseWhile() (ast.Statement, error) {
	tok, err := p.expect(token.WHILE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, condType, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if condType.Kind != types.Bool {
		return nil, semErr(tok.Position.Line, "while condition must be bool, got %s", condType)
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{Token: tok, Cond: cond, Body: body}, nil
}

// parseFor handles `'for' '(' IDENT 'in' expr ')' block`, where expr must
// be a List or String (spec §4.6: iterating a List aliases its elements;
// iterating a String yields fresh, unaliased single-character strings).
func (p *Parser) parseFor() (ast.Statement, error) {
	tok, err := p.expect(token.FOR)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.IN); err != nil {
		return nil, err
	}
	iter, iterType, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	var elemType types.DataType
	switch iterType.Kind {
	case types.List:
		elemType = *iterType.Element
	case types.String:
		elemType = types.Basic(types.String)
	default:
		return nil, semErr(tok.Position.Line, "cannot iterate over %s", iterType)
	}

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	outer := p.types
	p.types = outer.Child()
	p.types.Define(nameTok.Lexeme, elemType)
	body, err := p.parseStatementsUntilBrace()
	p.types = outer
	if err != nil {
		return nil, err
	}

	return &ast.ForLoop{Token: tok, VarName: nameTok.Lexeme, IterExpr: iter, Body: body}, nil
}

// parseStatementsUntilBrace parses `{ stmt* }` in the CURRENT type scope
// (the caller has already pushed the loop variable's scope), unlike
// parseBlock which pushes its own child scope.
func (p *Parser) parseStatementsUntilBrace() ([]ast.Statement, error) {
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

// parseReturn handles `'return' [expr] ';'`, checking the result against
// the enclosing function's declared return type.
func (p *Parser) parseReturn() (ast.Statement, error) {
	tok, err := p.expect(token.RETURN)
	if err != nil {
		return nil, err
	}
	if p.returnType == nil {
		return nil, semErr(tok.Position.Line, "'return' outside of a function")
	}

	if p.at(token.SEMI) {
		p.advance()
		if !p.returnType.IsVoid() {
			return nil, semErr(tok.Position.Line, "function must return %s, got void", p.returnType)
		}
		return &ast.Return{Token: tok}, nil
	}

	value, valueType, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	if !acceptsVoidInit(valueType) && !p.returnType.Equal(valueType) {
		return nil, semErr(tok.Position.Line, "function must return %s, got %s", p.returnType, valueType)
	}
	return &ast.Return{Token: tok, Value: value}, nil
}

// parseAssignmentOrExpressionStatement disambiguates `IDENT ('=' | '[' |
// '+=' | '-=') ...` assignment forms from a bare expression statement,
// per spec §4.3's statement grammar. Only a leading identifier can start
// an assignment target; anything else falls through to an expression
// statement.
func (p *Parser) parseAssignmentOrExpressionStatement() (ast.Statement, error) {
	if p.at(token.IDENT) && isAssignmentStart(p.peek(1).Type) {
		return p.parseAssignmentLike()
	}

	expr, _, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	tok := expr.GetToken()
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{Token: tok, Expr: expr}, nil
}

func isAssignmentStart(t token.Type) bool {
	switch t {
	case token.ASSIGN, token.LBRACKET, token.PLUS_ASSIGN, token.MINUS_ASSIGN:
		return true
	default:
		return false
	}
}

// parseAssignmentLike handles `IDENT '=' expr ';'`, `IDENT ('[' expr ']')+
// '=' expr ';'`, `IDENT '+=' expr ';'`, and `IDENT '-=' expr ';'`.
func (p *Parser) parseAssignmentLike() (ast.Statement, error) {
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	declaredType, ok := p.types.Lookup(nameTok.Lexeme)
	if !ok {
		return nil, semErr(nameTok.Position.Line, "unknown identifier %q", nameTok.Lexeme)
	}

	if p.at(token.LBRACKET) && declaredType.Kind == types.String {
		return p.parseStringIndexAssignment(nameTok)
	}

	if p.at(token.LBRACKET) {
		var indices []ast.Expression
		targetType := declaredType
		for p.at(token.LBRACKET) {
			tok := p.advance()
			if targetType.Kind != types.List {
				return nil, semErr(tok.Position.Line, "cannot index into %s", targetType)
			}
			idx, idxType, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if idxType.Kind != types.Int {
				return nil, semErr(tok.Position.Line, "index must be int, got %s", idxType)
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			indices = append(indices, idx)
			targetType = *targetType.Element
		}
		assignTok, err := p.expect(token.ASSIGN)
		if err != nil {
			return nil, err
		}
		value, valueType, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		if !acceptsVoidInit(valueType) && !targetType.Equal(valueType) {
			return nil, semErr(assignTok.Position.Line, "cannot assign %s into element of type %s", valueType, targetType)
		}
		return &ast.AssignmentIndex{Token: nameTok, Name: nameTok.Lexeme, Indices: indices, Value: value}, nil
	}

	switch p.cur().Type {
	case token.ASSIGN:
		tok := p.advance()
		value, valueType, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		if !acceptsVoidInit(valueType) && !declaredType.Equal(valueType) {
			return nil, semErr(tok.Position.Line, "cannot assign %s to %q of type %s", valueType, nameTok.Lexeme, declaredType)
		}
		return &ast.Assignment{Token: nameTok, Name: nameTok.Lexeme, Value: value}, nil

	case token.PLUS_ASSIGN:
		tok := p.advance()
		value, valueType, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		if _, err := binaryType(tok.Position.Line, ast.OpAdd, declaredType, valueType); err != nil {
			return nil, err
		}
		return &ast.AddValue{Token: nameTok, Name: nameTok.Lexeme, Value: value}, nil

	case token.MINUS_ASSIGN:
		tok := p.advance()
		value, valueType, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		if _, err := binaryType(tok.Position.Line, ast.OpSub, declaredType, valueType); err != nil {
			return nil, err
		}
		return &ast.RemoveValue{Token: nameTok, Name: nameTok.Lexeme, Value: value}, nil

	default:
		return nil, parseErr(p.line(), "expected assignment operator, got %s", p.cur().Type)
	}
}

// parseStringIndexAssignment handles `IDENT '[' expr ']' '=' expr ';'`
// against a string-typed name (spec §4.6: "For strings, only a single
// index is allowed, and RHS must be a 1-character string; the character
// is spliced in-place"). Only one bracket pair is accepted; the
// 1-character check on the RHS is a runtime check in the evaluator since
// the static type system does not track string length.
func (p *Parser) parseStringIndexAssignment(nameTok token.Token) (ast.Statement, error) {
	tok, err := p.expect(token.LBRACKET)
	if err != nil {
		return nil, err
	}
	idx, idxType, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if idxType.Kind != types.Int {
		return nil, semErr(tok.Position.Line, "index must be int, got %s", idxType)
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	if p.at(token.LBRACKET) {
		return nil, semErr(p.line(), "only a single index is allowed for string assignment")
	}
	assignTok, err := p.expect(token.ASSIGN)
	if err != nil {
		return nil, err
	}
	value, valueType, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	if valueType.Kind != types.String {
		return nil, semErr(assignTok.Position.Line, "string index assignment requires a string value, got %s", valueType)
	}
	return &ast.AssignmentIndex{Token: nameTok, Name: nameTok.Lexeme, Indices: []ast.Expression{idx}, Value: value}, nil
}
