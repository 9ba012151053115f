package evaluator

import (
	"bytes"
	"context"
	"testing"

	"github.com/Swanchick/kyryl-script-sub000/internal/ast"
	"github.com/Swanchick/kyryl-script-sub000/internal/host"
	"github.com/Swanchick/kyryl-script-sub000/internal/lexer"
	"github.com/Swanchick/kyryl-script-sub000/internal/object"
	"github.com/Swanchick/kyryl-script-sub000/internal/parser"
	"github.com/Swanchick/kyryl-script-sub000/internal/stdlib"
)

// run lexes, parses and evaluates src with the standard library
// registered, returning whatever print/println wrote plus any error.
func run(t *testing.T, src string) (string, *object.Environment, error) {
	t.Helper()
	var buf bytes.Buffer
	reg := host.NewRegistry()
	stdlib.Register(reg, &buf)

	l := lexer.New("test.ks", src)
	stream, err := lexer.NewStream(l)
	if err != nil {
		return "", nil, err
	}
	p := parser.New(stream, "test.ks", ".", ".", nil, nil)
	for _, name := range reg.Names() {
		entry, _ := reg.Lookup(name)
		p.RegisterHost(name, entry.ReturnType)
	}
	prog, err := p.ParseProgram()
	if err != nil {
		return "", nil, err
	}

	ev := New(reg)
	env := ev.NewRootEnv()
	if err := ev.Run(context.Background(), prog, env); err != nil {
		return buf.String(), env, err
	}
	return buf.String(), env, nil
}

func mustRun(t *testing.T, src string) (string, *object.Environment) {
	t.Helper()
	out, env, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v\nsource:\n%s", err, src)
	}
	return out, env
}

func TestEvalArithmetic(t *testing.T) {
	out, _ := mustRun(t, `println(1 + 2 * 3);`)
	if out != "7\n" {
		t.Errorf("got %q, want %q", out, "7\n")
	}
}

func TestEvalFloatPromotion(t *testing.T) {
	out, _ := mustRun(t, `println(1 + 2.5);`)
	if out != "3.5\n" {
		t.Errorf("got %q, want %q", out, "3.5\n")
	}
}

func TestEvalStringConcat(t *testing.T) {
	out, _ := mustRun(t, `println("foo" + "bar");`)
	if out != "foobar\n" {
		t.Errorf("got %q, want %q", out, "foobar\n")
	}
}

func TestEvalIfElse(t *testing.T) {
	out, _ := mustRun(t, `
		if (1 < 2) {
			println("yes");
		} else {
			println("no");
		}
	`)
	if out != "yes\n" {
		t.Errorf("got %q, want %q", out, "yes\n")
	}
}

func TestEvalWhileLoop(t *testing.T) {
	out, _ := mustRun(t, `
		let i: int = 0;
		while (i < 3) {
			println(i);
			i = i + 1;
		}
	`)
	if out != "0\n1\n2\n" {
		t.Errorf("got %q, want %q", out, "0\n1\n2\n")
	}
}

func TestEvalForOverList(t *testing.T) {
	out, _ := mustRun(t, `
		let xs: [int] = [1, 2, 3];
		for (x in xs) {
			println(x);
		}
	`)
	if out != "1\n2\n3\n" {
		t.Errorf("got %q, want %q", out, "1\n2\n3\n")
	}
}

func TestEvalForOverListAliasesElements(t *testing.T) {
	out, _ := mustRun(t, `
		let xs: [int] = [1, 2, 3];
		for (x in xs) {
			x++;
		}
		println(xs);
	`)
	if out != "[2, 3, 4]\n" {
		t.Errorf("got %q, want %q", out, "[2, 3, 4]\n")
	}
}

func TestEvalForOverStringIsNotAliased(t *testing.T) {
	out, _ := mustRun(t, `
		let s: string = "ab";
		for (c in s) {
			println(c);
		}
		println(s);
	`)
	if out != "a\nb\nab\n" {
		t.Errorf("got %q, want %q", out, "a\nb\nab\n")
	}
}

func TestEvalRecursiveFunction(t *testing.T) {
	out, _ := mustRun(t, `
		function fact(n: int): int {
			if (n <= 1) {
				return 1;
			}
			return n * fact(n - 1);
		}
		println(fact(5));
	`)
	if out != "120\n" {
		t.Errorf("got %q, want %q", out, "120\n")
	}
}

func TestEvalFunctionReturningListPreservesElements(t *testing.T) {
	out, _ := mustRun(t, `
		function makeList(): [int] {
			let xs: [int] = [1, 2, 3];
			return xs;
		}
		let ys: [int] = makeList();
		println(ys);
	`)
	if out != "[1, 2, 3]\n" {
		t.Errorf("got %q, want %q", out, "[1, 2, 3]\n")
	}
}

func TestEvalFunctionReturningListAllocatedInNestedIf(t *testing.T) {
	out, _ := mustRun(t, `
		function makeList(flag: bool): [int] {
			if (flag) {
				let xs: [int] = [9, 8, 7];
				return xs;
			}
			return [0];
		}
		println(makeList(true));
	`)
	if out != "[9, 8, 7]\n" {
		t.Errorf("got %q, want %q", out, "[9, 8, 7]\n")
	}
}

func TestEvalAliasingThroughAssignment(t *testing.T) {
	out, _ := mustRun(t, `
		let a: [int] = [1, 2, 3];
		let b: [int] = a;
		b[0] = 99;
		println(a);
	`)
	if out != "[99, 2, 3]\n" {
		t.Errorf("got %q, want %q", out, "[99, 2, 3]\n")
	}
}

func TestEvalTupleIndex(t *testing.T) {
	out, _ := mustRun(t, `
		let t: (int, string) = (1, "a");
		println(t.0);
		println(t.1);
	`)
	if out != "1\na\n" {
		t.Errorf("got %q, want %q", out, "1\na\n")
	}
}

func TestEvalCompoundAssignment(t *testing.T) {
	out, _ := mustRun(t, `
		let total: int = 10;
		total += 5;
		total -= 3;
		println(total);
	`)
	if out != "12\n" {
		t.Errorf("got %q, want %q", out, "12\n")
	}
}

func TestEvalHostLenAndRange(t *testing.T) {
	out, _ := mustRun(t, `
		println(len("hello"));
		println(len(range(4)));
	`)
	if out != "5\n4\n" {
		t.Errorf("got %q, want %q", out, "5\n4\n")
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	_, _, err := run(t, `let x: int = 1 / 0;`)
	if err == nil {
		t.Fatalf("expected division-by-zero error, got none")
	}
}

func TestEvalClosureCapturesDefiningScope(t *testing.T) {
	out, _ := mustRun(t, `
		let makeAdder: function(int): function(int): int = function(base: int): function(int): int {
			return function(x: int): int {
				return x + base;
			};
		};
		let addFive: function(int): int = makeAdder(5);
		println(addFive(10));
	`)
	if out != "15\n" {
		t.Errorf("got %q, want %q", out, "15\n")
	}
}

func TestEvalPrimitiveNotAliasedThroughAssignment(t *testing.T) {
	out, _ := mustRun(t, `
		let a: int = 5;
		let b: int = a;
		b++;
		println(a);
		println(b);
	`)
	if out != "5\n6\n" {
		t.Errorf("got %q, want %q", out, "5\n6\n")
	}
}

func TestEvalPrimitiveParameterIsCallByValue(t *testing.T) {
	out, _ := mustRun(t, `
		function inc(n: int) {
			n++;
		}
		let x: int = 5;
		inc(x);
		println(x);
	`)
	if out != "5\n" {
		t.Errorf("got %q, want %q", out, "5\n")
	}
}

func TestEvalStringIndexAssignment(t *testing.T) {
	out, _ := mustRun(t, `
		let s: string = "Hi";
		s[0] = "J";
		println(s);
	`)
	if out != "Ji\n" {
		t.Errorf("got %q, want %q", out, "Ji\n")
	}
}

func TestEvalStringIndexAssignmentRejectsMultiCharRHS(t *testing.T) {
	_, _, err := run(t, `
		let s: string = "Hi";
		s[0] = "JJ";
	`)
	if err == nil {
		t.Fatalf("expected error for multi-character RHS, got none")
	}
}

func TestEvalStringIndexAssignmentOutOfRange(t *testing.T) {
	_, _, err := run(t, `
		let s: string = "Hi";
		s[5] = "J";
	`)
	if err == nil {
		t.Fatalf("expected out-of-range error, got none")
	}
}

var _ = ast.OpAdd // keep ast import alive for potential future AST-shape assertions
