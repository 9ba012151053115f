// Command ks runs a single KyrylScript source file (spec §6 "CLI"):
// `ks <source-file>`, exit 0 on success, non-zero with a one-line
// message on stderr otherwise.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Swanchick/kyryl-script-sub000/internal/config"
	"github.com/Swanchick/kyryl-script-sub000/pkg/ks"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: ks <source-file>\n")
		os.Exit(1)
	}

	path := os.Args[1]

	colorSetting := config.ColorAuto
	if abs, err := filepath.Abs(path); err == nil {
		if proj, err := config.Load(filepath.Dir(abs)); err == nil {
			colorSetting = proj.ColorOutput
		}
	}
	color := ks.ColorEnabled(colorSetting, os.Stderr)

	if err := ks.Run(context.Background(), path, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, ks.FormatError(err, color))
		os.Exit(1)
	}
}
