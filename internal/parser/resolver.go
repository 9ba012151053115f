package parser

import (
	"github.com/Swanchick/kyryl-script-sub000/internal/ast"
	"github.com/Swanchick/kyryl-script-sub000/internal/types"
)

// ResolvedModule is what a ModuleResolver hands back for a `use` path:
// the pub-only surface the importing file's parser needs to type-check
// and inline (spec §4.7, SPEC_FULL §4.7 binding-style resolution).
type ResolvedModule struct {
	// Exports maps each pub binding's name to its static type.
	Exports map[string]types.DataType
	// Statements holds only the pub declarations (VariableDeclaration /
	// FunctionDeclaration), in the order they were declared, ready to be
	// spliced into the importer's AST and evaluated in the importer's
	// environment (spec's "inline" resolution for `use`).
	Statements []ast.Statement
}

// ModuleResolver re-enters the C2–C5 pipeline for an imported file (spec
// C11, §4.7). It is implemented by package modules; the parser only
// depends on this interface to avoid modules ↔ parser import cycle, since
// the module loader itself drives a Parser for every file it loads.
type ModuleResolver interface {
	ResolveUse(fromDir string, dottedPath string, rootDir string) (*ResolvedModule, error)
}
