// Package parser implements the recursive-descent parser with inline
// semantic analysis (spec §4.3, §4.4, C5): it produces a typed AST and
// rejects ill-typed programs at parse time rather than in a later pass.
package parser

import (
	"github.com/Swanchick/kyryl-script-sub000/internal/ast"
	"github.com/Swanchick/kyryl-script-sub000/internal/diagnostics"
	"github.com/Swanchick/kyryl-script-sub000/internal/lexer"
	"github.com/Swanchick/kyryl-script-sub000/internal/token"
	"github.com/Swanchick/kyryl-script-sub000/internal/types"
)

// Parser walks a token Stream, building an AST while maintaining a
// parallel TypeEnv (spec §4.3).
type Parser struct {
	stream *lexer.Stream
	file   string
	dir    string // directory containing file, for relative `use` resolution
	root   string // project root directory, for `use root.*`

	types *TypeEnv

	// returnType is the declared return type of the function currently
	// being parsed, or nil at the top level (spec §4.3: "the parser also
	// tracks function return context").
	returnType *types.DataType

	resolver ModuleResolver
}

// New creates a Parser over stream. file/dir/root locate it for error
// messages and `use` resolution; resolver may be nil if `use` statements
// are not expected to appear (e.g. when parsing a module that itself
// forbids imports — not currently exercised, but keeps the zero value
// usable in isolated parser tests).
func New(stream *lexer.Stream, file, dir, root string, typeEnv *TypeEnv, resolver ModuleResolver) *Parser {
	if typeEnv == nil {
		typeEnv = NewTypeEnv()
	}
	return &Parser{stream: stream, file: file, dir: dir, root: root, types: typeEnv, resolver: resolver}
}

// RegisterHost pre-declares a host function's name/type in the parser's
// top-level type scope (spec C9: the static checker must see host
// functions as callables with a declared return type).
func (p *Parser) RegisterHost(name string, ret types.DataType) {
	p.types.Define(name, types.NewHostFunction(ret))
}

// LookupType exposes the parser's top-level type scope to the module
// loader, which needs each `pub` declaration's resolved static type to
// build a ResolvedModule's Exports (spec §4.7) after ParseProgram
// returns.
func (p *Parser) LookupType(name string) (types.DataType, bool) {
	return p.types.Lookup(name)
}

func (p *Parser) cur() token.Token    { return p.stream.Current() }
func (p *Parser) peek(n int) token.Token { return p.stream.Peek(n) }
func (p *Parser) line() int           { return p.cur().Position.Line }

func (p *Parser) advance() token.Token { return p.stream.Advance() }

func (p *Parser) at(t token.Type) bool { return p.cur().Type == t }

// expect advances past tok's type or returns a ParseError.
func (p *Parser) expect(t token.Type) (token.Token, error) {
	if !p.at(t) {
		return token.Token{}, diagnostics.ParseErrorf(p.line(), "expected %s, got %s (%q)", t, p.cur().Type, p.cur().Lexeme)
	}
	return p.advance(), nil
}

func parseErr(line int, format string, args ...any) error {
	return diagnostics.ParseErrorf(line, format, args...)
}

func semErr(line int, format string, args ...any) error {
	return diagnostics.SemanticErrorf(line, format, args...)
}

// ParseProgram parses every top-level statement until EOF (spec grammar
// `program := { top_stmt } EOF`).
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{File: p.file}
	for !p.at(token.EOF) {
		stmt, err := p.parseTopStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	return prog, nil
}

// parseTopStatement handles `top_stmt := use_stmt | [pub] (var_decl |
// fn_decl) | stmt`.
func (p *Parser) parseTopStatement() (ast.Statement, error) {
	if p.at(token.USE) {
		return p.parseUseStatement()
	}

	public := false
	if p.at(token.PUB) {
		public = true
		p.advance()
	}

	switch p.cur().Type {
	case token.LET:
		return p.parseVariableDeclaration(public)
	case token.FUNCTION:
		return p.parseFunctionDeclaration(public)
	default:
		if public {
			return nil, parseErr(p.line(), "'pub' may only precede a variable or function declaration")
		}
		return p.parseStatement()
	}
}

// parseStatement handles `stmt := assignment | if | while | for | return |
// expr_stmt`, including the bare-block-less control-flow forms plus a
// `let` appearing inside a function body (the grammar's `var_decl` is
// reachable from any statement position, not just top level).
func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.cur().Type {
	case token.LET:
		return p.parseVariableDeclaration(false)
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.RETURN:
		return p.parseReturn()
	default:
		return p.parseAssignmentOrExpressionStatement()
	}
}

// parseBlock parses `{ stmt* }` in a fresh child type scope; it is used
// for the bodies of if/else and while.
func (p *Parser) parseBlock() ([]ast.Statement, error) {
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	outer := p.types
	p.types = outer.Child()
	defer func() { p.types = outer }()

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
