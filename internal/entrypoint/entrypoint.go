// Package entrypoint parses entry point declarations of the form
// "name = module:callable [extras]".
package entrypoint

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	oerrors "github.com/bluesnow/cli/internal/errors"
)

var (
	pattern    = regexp.MustCompile(`^\s*(?P<name>.+?)\s*=\s*(?P<module>[\w.]+)\s*(?::\s*(?P<attr>[\w.]+))?\s*(?P<extras>\[.*\])?\s*$`)
	identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

const formatHint = "Entry points are written as name=module:callable, e.g. run=pkg.cli:main"

// EntryPoint is a named pairing of a module and a callable inside it.
type EntryPoint struct {
	// Name names the generated artifact.
	Name string

	// Module is the dotted module path imported at artifact run time.
	Module string

	// Attrs is the attribute chain resolved against Module.
	Attrs []string

	// Extras are accepted for compatibility and otherwise ignored.
	Extras []string
}

// Callable returns the dotted attribute path.
func (e EntryPoint) Callable() string {
	return strings.Join(e.Attrs, ".")
}

// String renders the declaration in its canonical form.
func (e EntryPoint) String() string {
	return fmt.Sprintf("%s = %s:%s", e.Name, e.Module, e.Callable())
}

// FileName is the artifact file name for this entry point.
func (e EntryPoint) FileName() string {
	return e.Name + ".py"
}

// Parse parses a single entry point declaration.
func Parse(s string) (EntryPoint, error) {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return EntryPoint{}, invalid(s, "expected name=module:callable")
	}

	name := m[pattern.SubexpIndex("name")]
	module := m[pattern.SubexpIndex("module")]
	attr := m[pattern.SubexpIndex("attr")]
	extras := m[pattern.SubexpIndex("extras")]

	if err := validateName(name); err != nil {
		return EntryPoint{}, invalid(s, err.Error())
	}
	if !dotted(module) {
		return EntryPoint{}, invalid(s, fmt.Sprintf("module %q is not a dotted name", module))
	}
	if attr == "" {
		return EntryPoint{}, invalid(s, "missing callable after ':'")
	}
	if !dotted(attr) {
		return EntryPoint{}, invalid(s, fmt.Sprintf("callable %q is not a dotted name", attr))
	}

	ep := EntryPoint{
		Name:   name,
		Module: module,
		Attrs:  strings.Split(attr, "."),
	}
	if extras != "" {
		for _, e := range strings.Split(strings.Trim(extras, "[]"), ",") {
			if e = strings.TrimSpace(e); e != "" {
				ep.Extras = append(ep.Extras, e)
			}
		}
	}
	return ep, nil
}

// ParseAll parses every declaration, preserving order. Duplicate names are
// rejected since they would map to the same artifact.
func ParseAll(specs []string) ([]EntryPoint, error) {
	eps := make([]EntryPoint, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		ep, err := Parse(s)
		if err != nil {
			return nil, err
		}
		if seen[ep.Name] {
			return nil, oerrors.NewConfigurationError(
				fmt.Sprintf("duplicate entry point name %q", ep.Name),
				"Each entry point produces <name>.py, so names must be unique.",
			)
		}
		seen[ep.Name] = true
		eps = append(eps, ep)
	}
	return eps, nil
}

type pyproject struct {
	Project struct {
		Scripts    map[string]string `toml:"scripts"`
		GUIScripts map[string]string `toml:"gui-scripts"`
	} `toml:"project"`
}

// FromPyProject reads console and GUI scripts from a pyproject.toml file.
// Declarations are returned sorted by name.
func FromPyProject(path string) ([]EntryPoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oerrors.NewFilesystemError("reading pyproject", path, err)
	}

	var doc pyproject
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, &oerrors.DetailError{
			Type:     "configuration error",
			Message:  fmt.Sprintf("parsing TOML: %v", err),
			Location: path,
			Cause:    oerrors.ErrConfiguration,
		}
	}

	var specs []string
	for _, table := range []map[string]string{doc.Project.Scripts, doc.Project.GUIScripts} {
		names := make([]string, 0, len(table))
		for name := range table {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			specs = append(specs, name+"="+table[name])
		}
	}
	return ParseAll(specs)
}

func validateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("invalid name %q", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("name %q must not contain path separators", name)
	case strings.TrimSpace(name) != name:
		return fmt.Errorf("name %q has surrounding whitespace", name)
	}
	return nil
}

func dotted(s string) bool {
	for _, part := range strings.Split(s, ".") {
		if !identifier.MatchString(part) {
			return false
		}
	}
	return true
}

func invalid(spec, reason string) error {
	return oerrors.NewConfigurationError(
		fmt.Sprintf("invalid entry point %q: %s", spec, reason),
		formatHint,
	)
}
