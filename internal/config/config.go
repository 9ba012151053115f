// Package config holds project-level constants and the optional ks.yaml
// project file (SPEC_FULL §4.1, §A3): source/module file extension
// conventions, and the root-directory / color-output settings the CLI
// resolves before the core pipeline ever runs.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceFileExt is the extension of an individual KyrylScript source file
// (spec §9 "Source file format").
const SourceFileExt = ".ks"

// ModuleFileName is the file a directory-style module resolves to when
// `use a.b` names a directory rather than a single file (spec §4.7).
const ModuleFileName = "mod.ks"

// ColorOutput selects when the CLI colorizes stderr diagnostics.
type ColorOutput string

const (
	ColorAuto   ColorOutput = "auto"
	ColorAlways ColorOutput = "always"
	ColorNever  ColorOutput = "never"
)

// Project is the resolved ks.yaml, always populated with defaults even
// when no file exists on disk.
type Project struct {
	RootDir     string      `yaml:"rootDir"`
	ColorOutput ColorOutput `yaml:"colorOutput"`
}

// Default returns a Project with rootDir defaulted to dir and colorOutput
// set to auto.
func Default(dir string) Project {
	return Project{RootDir: dir, ColorOutput: ColorAuto}
}

// Load reads ks.yaml from dir, the directory containing the top-level
// source file (spec's project root). A missing file is not an error —
// Load returns Default(dir) unchanged. A present but malformed file is.
func Load(dir string) (Project, error) {
	proj := Default(dir)

	path := filepath.Join(dir, "ks.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return proj, nil
		}
		return proj, err
	}

	if err := yaml.Unmarshal(data, &proj); err != nil {
		return Default(dir), err
	}

	if proj.RootDir == "" {
		proj.RootDir = dir
	} else if !filepath.IsAbs(proj.RootDir) {
		proj.RootDir = filepath.Join(dir, proj.RootDir)
	}
	switch proj.ColorOutput {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		proj.ColorOutput = ColorAuto
	}
	return proj, nil
}

// TrimSourceExt strips SourceFileExt from name, returning name unchanged
// if it doesn't carry that extension.
func TrimSourceExt(name string) string {
	if strings.HasSuffix(name, SourceFileExt) {
		return name[:len(name)-len(SourceFileExt)]
	}
	return name
}

// HasSourceExt reports whether path carries the recognized source
// extension.
func HasSourceExt(path string) bool {
	return strings.HasSuffix(path, SourceFileExt)
}
