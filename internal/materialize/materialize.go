// Package materialize installs an application and its dependencies into a
// scratch directory that the bundler then walks.
package materialize

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/shell"

	oerrors "github.com/bluesnow/cli/internal/errors"
	"github.com/bluesnow/cli/internal/output"
)

// DefaultPython is the interpreter used to run pip when none is configured.
const DefaultPython = "python3"

// Spec describes what to materialize. It is passed explicitly to the
// bundler rather than read from ambient state.
type Spec struct {
	// Sources are pip requirement specifiers or local paths, e.g. ".".
	Sources []string

	// PipArgs are extra arguments appended to the pip command line.
	PipArgs []string
}

// Materializer fills dir with the modules described by spec.
type Materializer interface {
	Materialize(ctx context.Context, dir string, spec Spec) error
}

// Pip installs sources with `python -m pip install --target`.
type Pip struct {
	// Python is the interpreter to run; DefaultPython when empty.
	Python string
}

// Materialize runs pip once. Any failure is reported as a dependency
// install error carrying the tail of pip's output.
func (p Pip) Materialize(ctx context.Context, dir string, spec Spec) error {
	python := p.Python
	if python == "" {
		python = DefaultPython
	}

	args := []string{"-m", "pip", "install", "--target", dir}
	args = append(args, spec.Sources...)
	args = append(args, spec.PipArgs...)

	output.Debug("running pip", "python", python, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, python, args...)
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	if err := cmd.Run(); err != nil {
		return oerrors.NewDependencyInstallError(
			fmt.Sprintf("%s -m pip install failed:\n%s", python, tail(combined.String(), 20)),
			err,
		)
	}

	output.Debug("pip finished", "output_bytes", combined.Len())
	return nil
}

// Copy copies local source trees into the scratch directory without
// resolving any dependencies. A source that is a single file is copied to
// the directory root.
type Copy struct{}

// Materialize copies every source into dir.
func (Copy) Materialize(ctx context.Context, dir string, spec Spec) error {
	for _, src := range spec.Sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := copySource(src, dir); err != nil {
			return oerrors.NewDependencyInstallError(fmt.Sprintf("copying %s", src), err)
		}
	}
	return nil
}

func copySource(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return fmt.Errorf("symbolic link %s is not supported", src)
	}
	if !info.IsDir() {
		return copyFile(src, filepath.Join(dst, filepath.Base(src)))
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0o755)
		case d.Type()&fs.ModeSymlink != 0:
			return fmt.Errorf("symbolic link %s is not supported", path)
		default:
			return copyFile(path, target)
		}
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// SplitArgs splits a pip argument string with shell quoting rules, e.g.
// `--index-url "$INDEX" --no-deps`. Variables expand from the environment.
func SplitArgs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	fields, err := shell.Fields(s, nil)
	if err != nil {
		return nil, oerrors.NewConfigurationError(
			fmt.Sprintf("invalid pip arguments %q: %v", s, err),
			"Quote arguments the way a POSIX shell would.",
		)
	}
	return fields, nil
}

func tail(s string, lines int) string {
	parts := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(parts) > lines {
		parts = parts[len(parts)-lines:]
	}
	return strings.Join(parts, "\n")
}
