// Package ks is the embeddable pipeline orchestrator (spec §6 "CLI"):
// Source Reader -> Lexer -> Parser+Analyzer -> Evaluator -> Module
// Loader, wired together the way pkg/cli/entry.go wires funxy's own
// backend, lexer and module loader (SPEC_FULL's chosen teacher).
package ks

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/Swanchick/kyryl-script-sub000/internal/config"
	"github.com/Swanchick/kyryl-script-sub000/internal/diagnostics"
	"github.com/Swanchick/kyryl-script-sub000/internal/evaluator"
	"github.com/Swanchick/kyryl-script-sub000/internal/host"
	"github.com/Swanchick/kyryl-script-sub000/internal/lexer"
	"github.com/Swanchick/kyryl-script-sub000/internal/modules"
	"github.com/Swanchick/kyryl-script-sub000/internal/parser"
	"github.com/Swanchick/kyryl-script-sub000/internal/stdlib"
)

// Run reads, parses and evaluates the source file at path, writing
// print/println output to stdout. It returns the typed diagnostics.Error
// on failure; the caller (cmd/ks) is responsible for formatting and exit
// codes.
func Run(ctx context.Context, path string, stdout io.Writer) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return diagnostics.IOErrorf("cannot resolve path %q: %v", path, err)
	}
	if !config.HasSourceExt(abs) {
		return diagnostics.IOErrorf("%q does not have the %s extension", path, config.SourceFileExt)
	}

	dir := filepath.Dir(abs)
	proj, err := config.Load(dir)
	if err != nil {
		return diagnostics.IOErrorf("cannot read ks.yaml in %q: %v", dir, err)
	}

	src, err := os.ReadFile(abs)
	if err != nil {
		return diagnostics.IOErrorf("cannot read %q: %v", path, err)
	}

	reg := host.NewRegistry()
	stdlib.Register(reg, stdout)

	lx := lexer.New(abs, string(src))
	stream, err := lexer.NewStream(lx)
	if err != nil {
		return err
	}

	loader := modules.New()
	p := parser.New(stream, abs, dir, proj.RootDir, nil, loader)
	for _, name := range reg.Names() {
		entry, _ := reg.Lookup(name)
		p.RegisterHost(name, entry.ReturnType)
	}

	prog, err := p.ParseProgram()
	if err != nil {
		return err
	}

	ev := evaluator.New(reg)
	env := ev.NewRootEnv()
	return ev.Run(ctx, prog, env)
}

// ColorEnabled resolves SPEC_FULL §6's colorOutput setting against
// whether w looks like a terminal (mirrors funxy's own go-isatty use in
// internal/evaluator/builtins_term.go, applied here to CLI error output
// rather than a builtin).
func ColorEnabled(setting config.ColorOutput, w *os.File) bool {
	switch setting {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())
	}
}

// FormatError renders err the way the CLI prints it to stderr (spec §6),
// wrapping the layer label in ANSI red when color is enabled.
func FormatError(err error, color bool) string {
	msg := diagnostics.Format(err)
	if !color {
		return msg
	}
	if e, ok := err.(*diagnostics.Error); ok {
		return fmt.Sprintf("\x1b[31m%s\x1b[0m%s", e.Layer, strings.TrimPrefix(msg, string(e.Layer)))
	}
	return msg
}
