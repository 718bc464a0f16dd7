// Package walk enumerates a materialized dependency tree and classifies its
// files into loadable Python modules and packages.
package walk

import (
	"io/fs"
	"iter"
	"path/filepath"
	"strings"

	oerrors "github.com/bluesnow/cli/internal/errors"
)

const (
	sourceSuffix = ".py"
	packageInit  = "__init__.py"
	bytecodeDir  = "__pycache__"
	distInfo     = ".dist-info"
)

// FileEntry is a regular file found under the walked root.
type FileEntry struct {
	// Path is the absolute path of the file.
	Path string

	// Rel is the path relative to the walked root, using the host separator.
	Rel string
}

// Module is the classification of a FileEntry.
type Module struct {
	// Name is the dotted module name, e.g. "pkg.mod".
	Name string

	// IsPackage is true for __init__.py files; Name is then the directory.
	IsPackage bool
}

// Pruned reports whether a directory with the given base name is skipped
// entirely, contents included.
func Pruned(name string) bool {
	return name == bytecodeDir || strings.HasSuffix(name, distInfo)
}

// Files walks root depth-first and yields every regular file outside pruned
// directories. The sequence is lazy and stops at the first error, which is
// yielded as a filesystem error. Symbolic links abort the walk.
func Files(root string) iter.Seq2[FileEntry, error] {
	return func(yield func(FileEntry, error) bool) {
		abs, err := filepath.Abs(root)
		if err != nil {
			yield(FileEntry{}, oerrors.NewFilesystemError("resolving root", root, err))
			return
		}

		stopped := false
		walkErr := filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return oerrors.NewFilesystemError("walking tree", path, err)
			}

			switch {
			case d.Type()&fs.ModeSymlink != 0:
				return oerrors.NewFilesystemError("symbolic links are not supported", path, nil)
			case d.IsDir():
				if path != abs && Pruned(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			case !d.Type().IsRegular():
				return oerrors.NewFilesystemError("not a regular file", path, nil)
			}

			rel, err := filepath.Rel(abs, path)
			if err != nil {
				return oerrors.NewFilesystemError("relativizing path", path, err)
			}
			if !yield(FileEntry{Path: path, Rel: rel}, nil) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})
		if walkErr != nil && !stopped {
			yield(FileEntry{}, walkErr)
		}
	}
}

// Classify maps a file to its module. Files that are not Python sources are
// reported with ok == false. So is an __init__.py at the root itself, which
// has no package name.
func Classify(entry FileEntry) (Module, bool) {
	rel := filepath.ToSlash(entry.Rel)
	base := filepath.Base(entry.Path)

	var modPath string
	isPackage := false
	switch {
	case base == packageInit:
		modPath = filepath.ToSlash(filepath.Dir(entry.Rel))
		isPackage = true
	case len(base) > len(sourceSuffix) && strings.HasSuffix(base, sourceSuffix):
		modPath = strings.TrimSuffix(rel, sourceSuffix)
	default:
		return Module{}, false
	}

	if modPath == "." || modPath == "" {
		return Module{}, false
	}

	return Module{
		Name:      strings.ReplaceAll(modPath, "/", "."),
		IsPackage: isPackage,
	}, true
}
