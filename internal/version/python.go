package version

import (
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strconv"
	"time"
)

// MinPython is the oldest interpreter whose import machinery the generated
// bootstrap supports (importlib.machinery.ModuleSpec, lzma).
var MinPython = [2]int{3, 4}

var pythonVersionRegex = regexp.MustCompile(`Python (\d+)\.(\d+)(?:\.(\d+))?`)

// PythonInfo describes the interpreter used for dependency installation.
type PythonInfo struct {
	// Version is the interpreter version, e.g. "3.12.1".
	Version string `json:"version"`

	// Path is the resolved interpreter path.
	Path string `json:"path"`

	// Found indicates the interpreter was found.
	Found bool `json:"found"`

	// Compatible indicates Version is at least MinPython.
	Compatible bool `json:"compatible"`

	// Message provides additional information about compatibility.
	Message string `json:"message,omitempty"`
}

// DetectPython finds python on PATH and reports its version.
func DetectPython(ctx context.Context, python string) PythonInfo {
	path, err := exec.LookPath(python)
	if err != nil {
		return PythonInfo{
			Message: python + " not found in PATH",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, "--version")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return PythonInfo{
			Path:    path,
			Found:   true,
			Message: "failed to get python version: " + err.Error(),
		}
	}

	v, major, minor, ok := ParsePythonVersion(out.String())
	if !ok {
		return PythonInfo{
			Path:    path,
			Found:   true,
			Message: "failed to parse python version from output: " + out.String(),
		}
	}

	info := PythonInfo{
		Version:    v,
		Path:       path,
		Found:      true,
		Compatible: Compatible(major, minor),
		Message:    "compatible",
	}
	if !info.Compatible {
		info.Message = "incompatible - need Python " + strconv.Itoa(MinPython[0]) + "." + strconv.Itoa(MinPython[1]) + " or newer"
	}
	return info
}

// ParsePythonVersion extracts the version from `python --version` output.
func ParsePythonVersion(output string) (version string, major, minor int, ok bool) {
	m := pythonVersionRegex.FindStringSubmatch(output)
	if m == nil {
		return "", 0, 0, false
	}
	major, _ = strconv.Atoi(m[1])
	minor, _ = strconv.Atoi(m[2])

	version = m[1] + "." + m[2]
	if m[3] != "" {
		version += "." + m[3]
	}
	return version, major, minor, true
}

// Compatible reports whether major.minor is at least MinPython.
func Compatible(major, minor int) bool {
	if major != MinPython[0] {
		return major > MinPython[0]
	}
	return minor >= MinPython[1]
}

// String returns a human-readable python info string.
func (p PythonInfo) String() string {
	if !p.Found {
		return "  Python:    not found"
	}
	if p.Version == "" {
		return "  Python:    " + p.Path + " (" + p.Message + ")"
	}
	return "  Python:    " + p.Version + " (" + p.Message + ") " + p.Path
}
