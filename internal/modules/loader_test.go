package modules

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Swanchick/kyryl-script-sub000/internal/evaluator"
	"github.com/Swanchick/kyryl-script-sub000/internal/host"
	"github.com/Swanchick/kyryl-script-sub000/internal/lexer"
	"github.com/Swanchick/kyryl-script-sub000/internal/parser"
	"github.com/Swanchick/kyryl-script-sub000/internal/stdlib"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func runFile(t *testing.T, dir, entryFile string) string {
	t.Helper()
	return runFileIn(t, dir, dir, entryFile)
}

func runFileIn(t *testing.T, dir, root, entryFile string) string {
	t.Helper()
	var buf bytes.Buffer
	reg := host.NewRegistry()
	stdlib.Register(reg, &buf)

	path := filepath.Join(dir, entryFile)
	src, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	l := lexer.New(path, string(src))
	stream, err := lexer.NewStream(l)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	loader := New()
	p := parser.New(stream, path, dir, root, nil, loader)
	for _, name := range reg.Names() {
		entry, _ := reg.Lookup(name)
		p.RegisterHost(name, entry.ReturnType)
	}
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	ev := evaluator.New(reg)
	env := ev.NewRootEnv()
	if err := ev.Run(context.Background(), prog, env); err != nil {
		t.Fatalf("eval error: %v", err)
	}
	return buf.String()
}

func TestResolveUseSingleFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "greet.ks", `pub function greet(): string { return "hi"; }`)
	writeFile(t, dir, "main.ks", `
		use greet;
		println(greet());
	`)
	out := runFile(t, dir, "main.ks")
	if out != "hi\n" {
		t.Errorf("got %q, want %q", out, "hi\n")
	}
}

func TestResolveUseDirectoryModule(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "mathx")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, sub, "mod.ks", `pub let pi: float = 3.5;`)
	writeFile(t, dir, "main.ks", `
		use mathx;
		println(pi);
	`)
	out := runFile(t, dir, "main.ks")
	if out != "3.5\n" {
		t.Errorf("got %q, want %q", out, "3.5\n")
	}
}

func TestResolveUseOnlyExportsPub(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "priv.ks", `
		let secret: int = 1;
		pub let visible: int = 2;
	`)
	writeFile(t, dir, "main.ks", `
		use priv;
		println(secret);
	`)
	path := filepath.Join(dir, "main.ks")
	src, _ := os.ReadFile(path)
	l := lexer.New(path, string(src))
	stream, err := lexer.NewStream(l)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	p := parser.New(stream, path, dir, dir, nil, New())
	if _, err := p.ParseProgram(); err == nil {
		t.Fatalf("expected error referencing non-pub name, got none")
	}
}

func TestResolveUseMissingModuleFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.ks", `use nope;`)
	path := filepath.Join(dir, "main.ks")
	src, _ := os.ReadFile(path)
	l := lexer.New(path, string(src))
	stream, err := lexer.NewStream(l)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	p := parser.New(stream, path, dir, dir, nil, New())
	if _, err := p.ParseProgram(); err == nil {
		t.Fatalf("expected error for missing module, got none")
	}
}

func TestResolveUseRootKeyword(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, dir, "shared.ks", `pub let answer: int = 42;`)
	writeFile(t, sub, "main.ks", `
		use root.shared;
		println(answer);
	`)
	out := runFileIn(t, sub, dir, "main.ks")
	if out != "42\n" {
		t.Errorf("got %q, want %q", out, "42\n")
	}
}
