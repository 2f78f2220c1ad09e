package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	tnctx "github.com/randalmurphal/tidynote/context"
)

// readInput assembles note text from --file values and positional args.
// With neither, or with the single argument "-", stdin is read.
func (a *app) readInput(files, args []string) (string, error) {
	builder := tnctx.NewInputBuilder(a.workDir).WithLogger(a.logger)

	for _, f := range files {
		var err error
		if strings.ContainsAny(f, "*?[") {
			err = builder.AddGlob(f)
		} else {
			err = builder.AddFile(f)
		}
		if err != nil {
			return "", err
		}
	}

	switch {
	case len(args) == 1 && args[0] == "-", len(args) == 0 && len(files) == 0:
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		builder.AddContent("stdin", data)
	case len(args) > 0:
		builder.AddContent("args", []byte(joinArgs(args)))
	}

	if builder.FileCount() == 0 {
		return "", fmt.Errorf("no input matched %s", strings.Join(files, ", "))
	}
	return builder.Build()
}

// path resolves p against the working directory.
func (a *app) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.workDir, p)
}
