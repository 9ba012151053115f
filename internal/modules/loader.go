// Package modules implements C11, the module loader: it re-enters the
// lexer/parser pipeline for each file a `use` statement names, resolves
// the spec §4.7 path rules (`a.b.c` -> `a/b/c.ks` or `a/b/c/mod.ks`,
// `root.a.b` relative to the project root), and hands the parser package
// back a ResolvedModule through the parser.ModuleResolver interface it
// already depends on (avoiding a modules <-> parser import cycle, since
// this package is the one that drives a parser.Parser per file, not the
// other way around).
package modules

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Swanchick/kyryl-script-sub000/internal/ast"
	"github.com/Swanchick/kyryl-script-sub000/internal/config"
	"github.com/Swanchick/kyryl-script-sub000/internal/diagnostics"
	"github.com/Swanchick/kyryl-script-sub000/internal/lexer"
	"github.com/Swanchick/kyryl-script-sub000/internal/parser"
	"github.com/Swanchick/kyryl-script-sub000/internal/types"
)

// Loader resolves and caches `use` targets for one interpreter run. It is
// not safe for concurrent use — a fresh Loader belongs to one CLI
// invocation / one top-level Run (mirrors the Evaluator's one-per-run
// ownership, spec §5).
type Loader struct {
	cache   map[string]*parser.ResolvedModule
	loading map[string]bool // cycle detection: files currently being resolved
}

// New creates an empty Loader.
func New() *Loader {
	return &Loader{
		cache:   make(map[string]*parser.ResolvedModule),
		loading: make(map[string]bool),
	}
}

// ResolveUse implements parser.ModuleResolver. fromDir is the directory of
// the file containing the `use` statement; dottedPath is the dotted
// segment chain after `use` (its first segment is literally "root" when
// the statement used the `root` keyword); rootDir is the project root
// (spec's `root` keyword target, SPEC_FULL §4.7).
func (l *Loader) ResolveUse(fromDir, dottedPath, rootDir string) (*parser.ResolvedModule, error) {
	segs := strings.Split(dottedPath, ".")
	baseDir := fromDir
	if segs[0] == "root" {
		baseDir = rootDir
		segs = segs[1:]
		if len(segs) == 0 {
			return nil, diagnostics.IOErrorf("'use root;' names no module")
		}
	}

	path, err := resolvePath(baseDir, segs)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, diagnostics.IOErrorf("cannot resolve module path %q: %v", path, err)
	}

	if cached, ok := l.cache[abs]; ok {
		return cached, nil
	}
	if l.loading[abs] {
		return nil, diagnostics.IOErrorf("import cycle detected at %q", abs)
	}

	resolved, err := l.load(abs, rootDir)
	if err != nil {
		return nil, err
	}
	l.cache[abs] = resolved
	return resolved, nil
}

// resolvePath implements spec §4.7's two candidate forms: a plain file
// `<dir>/a/b/c.ks`, or a directory module `<dir>/a/b/c/mod.ks`. The file
// form is tried first.
func resolvePath(baseDir string, segs []string) (string, error) {
	joined := filepath.Join(append([]string{baseDir}, segs...)...)

	asFile := joined + config.SourceFileExt
	if info, err := os.Stat(asFile); err == nil && !info.IsDir() {
		return asFile, nil
	}

	asModule := filepath.Join(joined, config.ModuleFileName)
	if info, err := os.Stat(asModule); err == nil && !info.IsDir() {
		return asModule, nil
	}

	return "", diagnostics.IOErrorf("cannot find module %q (looked for %s and %s)", strings.Join(segs, "."), asFile, asModule)
}

// load reads, lexes and parses the file at abs, re-entering the whole
// C2-C5 pipeline with the same rootDir the caller is resolving against
// (so a transitively-imported module's own `use root.*` statements still
// resolve against the top-level project root, not its own directory),
// then extracts its `pub` surface (spec §4.7 inline binding: only `pub`
// declarations are exported, in declaration order).
func (l *Loader) load(abs, rootDir string) (*parser.ResolvedModule, error) {
	l.loading[abs] = true
	defer delete(l.loading, abs)

	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, diagnostics.IOErrorf("cannot read module %q: %v", abs, err)
	}

	lx := lexer.New(abs, string(src))
	stream, lexErr := lexer.NewStream(lx)
	if lexErr != nil {
		return nil, attachFile(lexErr, abs)
	}

	p := parser.New(stream, abs, filepath.Dir(abs), rootDir, nil, l)
	prog, parseErr := p.ParseProgram()
	if parseErr != nil {
		return nil, attachFile(parseErr, abs)
	}

	exports := make(map[string]types.DataType)
	var stmts []ast.Statement
	for _, stmt := range prog.Statements {
		name, public, ok := exportedName(stmt)
		if !ok || !public {
			continue
		}
		dt, found := p.LookupType(name)
		if !found {
			return nil, diagnostics.IOErrorf("internal error: exported name %q has no resolved type in %q", name, abs)
		}
		exports[name] = dt
		stmts = append(stmts, stmt)
	}

	return &parser.ResolvedModule{Exports: exports, Statements: stmts}, nil
}

func exportedName(stmt ast.Statement) (name string, public bool, ok bool) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		return s.Name, s.Public, true
	case *ast.FunctionDeclaration:
		return s.Name, s.Public, true
	default:
		return "", false, false
	}
}

func attachFile(err error, abs string) error {
	if de, ok := err.(*diagnostics.Error); ok {
		return de.WithFile(abs)
	}
	return err
}
