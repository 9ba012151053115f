package parser

import (
	"testing"

	"github.com/Swanchick/kyryl-script-sub000/internal/ast"
	"github.com/Swanchick/kyryl-script-sub000/internal/lexer"
	"github.com/Swanchick/kyryl-script-sub000/internal/types"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	l := lexer.New("test.ks", src)
	stream, err := lexer.NewStream(l)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	p := New(stream, "test.ks", ".", ".", nil, nil)
	p.RegisterHost("print", types.NewVoid(nil))
	p.RegisterHost("println", types.NewVoid(nil))
	p.RegisterHost("len", types.Basic(types.Int))
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func mustFail(t *testing.T, src string) {
	t.Helper()
	l := lexer.New("test.ks", src)
	stream, err := lexer.NewStream(l)
	if err != nil {
		return // lex error counts as failure too
	}
	p := New(stream, "test.ks", ".", ".", nil, nil)
	p.RegisterHost("len", types.Basic(types.Int))
	_, err = p.ParseProgram()
	if err == nil {
		t.Fatalf("expected error, got none for src: %s", src)
	}
}

func TestParseVariableDeclarations(t *testing.T) {
	cases := []string{
		"let x: int = 1;",
		"let x = 1;",
		"let x: float = 1;", // int literal accepted where float declared? no - this should fail
	}
	_ = cases

	prog := mustParse(t, "let x: int = 1;")
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	decl, ok := prog.Statements[0].(*ast.VariableDeclaration)
	if !ok {
		t.Fatalf("expected VariableDeclaration, got %T", prog.Statements[0])
	}
	if decl.Name != "x" {
		t.Errorf("expected name x, got %s", decl.Name)
	}
}

func TestParseVariableDeclarationInferred(t *testing.T) {
	prog := mustParse(t, `let x = "hello";`)
	decl := prog.Statements[0].(*ast.VariableDeclaration)
	if decl.DeclaredType != nil {
		t.Errorf("expected inferred (nil) declared type, got %v", decl.DeclaredType)
	}
}

func TestParseVariableDeclarationTypeMismatchFails(t *testing.T) {
	mustFail(t, `let x: int = "hello";`)
}

func TestParseVariableDeclarationNeedsTypeOrInit(t *testing.T) {
	mustFail(t, `let x;`)
}

func TestParseBinaryPrecedence(t *testing.T) {
	prog := mustParse(t, "let x: int = 1 + 2 * 3;")
	decl := prog.Statements[0].(*ast.VariableDeclaration)
	add, ok := decl.Init.(*ast.BinaryOp)
	if !ok {
		t.Fatalf("expected BinaryOp at top, got %T", decl.Init)
	}
	if add.Op != ast.OpAdd {
		t.Fatalf("expected '+' at top, got %s", add.Op)
	}
	if _, ok := add.Right.(*ast.BinaryOp); !ok {
		t.Fatalf("expected '*' nested on the right, got %T", add.Right)
	}
}

func TestParseFunctionDeclarationAndRecursiveCall(t *testing.T) {
	prog := mustParse(t, `
		function fact(n: int): int {
			if (n <= 1) {
				return 1;
			}
			return n * fact(n - 1);
		}
	`)
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	fn, ok := prog.Statements[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected FunctionDeclaration, got %T", prog.Statements[0])
	}
	if fn.Name != "fact" {
		t.Errorf("expected name fact, got %s", fn.Name)
	}
	if len(fn.Body) != 2 {
		t.Fatalf("expected 2 statements in body, got %d", len(fn.Body))
	}
}

func TestParseFunctionCallArityMismatchFails(t *testing.T) {
	mustFail(t, `
		function add(a: int, b: int): int {
			return a + b;
		}
		let x: int = add(1);
	`)
}

func TestParseFunctionCallTypeMismatchFails(t *testing.T) {
	mustFail(t, `
		function add(a: int, b: int): int {
			return a + b;
		}
		let x: int = add(1, "two");
	`)
}

func TestParseListLiteralHomogeneous(t *testing.T) {
	prog := mustParse(t, "let xs: [int] = [1, 2, 3];")
	decl := prog.Statements[0].(*ast.VariableDeclaration)
	lit, ok := decl.Init.(*ast.ListLiteral)
	if !ok {
		t.Fatalf("expected ListLiteral, got %T", decl.Init)
	}
	if len(lit.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(lit.Elements))
	}
}

func TestParseListLiteralHeterogeneousFails(t *testing.T) {
	mustFail(t, `let xs = [1, "two"];`)
}

func TestParseTupleLiteralAndIndex(t *testing.T) {
	prog := mustParse(t, `
		let t: (int, string) = (1, "a");
		let first: int = t.0;
	`)
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	decl := prog.Statements[1].(*ast.VariableDeclaration)
	idx, ok := decl.Init.(*ast.TupleIndex)
	if !ok {
		t.Fatalf("expected TupleIndex, got %T", decl.Init)
	}
	if len(idx.Indices) != 1 || idx.Indices[0] != 0 {
		t.Fatalf("expected index [0], got %v", idx.Indices)
	}
}

func TestParseTupleIndexOutOfRangeFails(t *testing.T) {
	mustFail(t, `
		let t: (int, string) = (1, "a");
		let x = t.5;
	`)
}

func TestParseIfElse(t *testing.T) {
	prog := mustParse(t, `
		if (true) {
			let x = 1;
		} else {
			let y = 2;
		}
	`)
	ifStmt, ok := prog.Statements[0].(*ast.If)
	if !ok {
		t.Fatalf("expected If, got %T", prog.Statements[0])
	}
	if len(ifStmt.ThenBody) != 1 || len(ifStmt.ElseBody) != 1 {
		t.Fatalf("expected one statement per branch, got then=%d else=%d", len(ifStmt.ThenBody), len(ifStmt.ElseBody))
	}
}

func TestParseIfNonBoolConditionFails(t *testing.T) {
	mustFail(t, `if (1) { let x = 1; }`)
}

func TestParseWhileLoop(t *testing.T) {
	prog := mustParse(t, `
		let i: int = 0;
		while (i < 10) {
			i = i + 1;
		}
	`)
	whileStmt, ok := prog.Statements[1].(*ast.While)
	if !ok {
		t.Fatalf("expected While, got %T", prog.Statements[1])
	}
	if len(whileStmt.Body) != 1 {
		t.Fatalf("expected 1 statement in body, got %d", len(whileStmt.Body))
	}
}

func TestParseForOverList(t *testing.T) {
	prog := mustParse(t, `
		let xs: [int] = [1, 2, 3];
		for (x in xs) {
			let y: int = x + 1;
		}
	`)
	forStmt, ok := prog.Statements[1].(*ast.ForLoop)
	if !ok {
		t.Fatalf("expected ForLoop, got %T", prog.Statements[1])
	}
	if forStmt.VarName != "x" {
		t.Errorf("expected loop var x, got %s", forStmt.VarName)
	}
}

func TestParseForOverNonIterableFails(t *testing.T) {
	mustFail(t, `
		let n: int = 5;
		for (x in n) {
			let y = x;
		}
	`)
}

func TestParseAssignmentIndex(t *testing.T) {
	prog := mustParse(t, `
		let xs: [int] = [1, 2, 3];
		xs[0] = 9;
	`)
	assign, ok := prog.Statements[1].(*ast.AssignmentIndex)
	if !ok {
		t.Fatalf("expected AssignmentIndex, got %T", prog.Statements[1])
	}
	if len(assign.Indices) != 1 {
		t.Fatalf("expected 1 index, got %d", len(assign.Indices))
	}
}

func TestParseStringIndexAssignment(t *testing.T) {
	prog := mustParse(t, `
		let s: string = "Hi";
		s[0] = "J";
	`)
	assign, ok := prog.Statements[1].(*ast.AssignmentIndex)
	if !ok {
		t.Fatalf("expected AssignmentIndex, got %T", prog.Statements[1])
	}
	if len(assign.Indices) != 1 {
		t.Fatalf("expected 1 index, got %d", len(assign.Indices))
	}
}

func TestParseStringIndexAssignmentChainedBracketsFails(t *testing.T) {
	mustFail(t, `
		let s: string = "Hi";
		s[0][0] = "J";
	`)
}

func TestParseStringIndexAssignmentNonStringRHSFails(t *testing.T) {
	mustFail(t, `
		let s: string = "Hi";
		s[0] = 1;
	`)
}

func TestParseCompoundAssignment(t *testing.T) {
	prog := mustParse(t, `
		let total: int = 0;
		total += 5;
		total -= 2;
	`)
	if _, ok := prog.Statements[1].(*ast.AddValue); !ok {
		t.Fatalf("expected AddValue, got %T", prog.Statements[1])
	}
	if _, ok := prog.Statements[2].(*ast.RemoveValue); !ok {
		t.Fatalf("expected RemoveValue, got %T", prog.Statements[2])
	}
}

func TestParsePostfixIncrement(t *testing.T) {
	prog := mustParse(t, `
		let i: int = 0;
		i++;
	`)
	exprStmt, ok := prog.Statements[1].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected ExpressionStatement, got %T", prog.Statements[1])
	}
	if _, ok := exprStmt.Expr.(*ast.FrontUnaryOp); !ok {
		t.Fatalf("expected FrontUnaryOp, got %T", exprStmt.Expr)
	}
}

func TestParseFunctionLiteralAssignedToVariable(t *testing.T) {
	prog := mustParse(t, `
		let add: function(int, int): int = function(a: int, b: int): int {
			return a + b;
		};
	`)
	decl := prog.Statements[0].(*ast.VariableDeclaration)
	if _, ok := decl.Init.(*ast.FunctionLiteral); !ok {
		t.Fatalf("expected FunctionLiteral, got %T", decl.Init)
	}
}

func TestParseReturnTypeMismatchFails(t *testing.T) {
	mustFail(t, `
		function f(): int {
			return "nope";
		}
	`)
}

func TestParseReturnOutsideFunctionFails(t *testing.T) {
	mustFail(t, `return 1;`)
}

func TestParsePubDeclaration(t *testing.T) {
	prog := mustParse(t, `pub let x: int = 1;`)
	decl := prog.Statements[0].(*ast.VariableDeclaration)
	if !decl.Public {
		t.Errorf("expected Public to be true")
	}
}

func TestParseHostFunctionCallNotArityChecked(t *testing.T) {
	// HostFunction carries no parameter types (spec §3): any arg count
	// type-checks, unlike a declared Function.
	prog := mustParse(t, `println("a", "b", "c");`)
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
}
