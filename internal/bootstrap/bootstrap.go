// Package bootstrap renders the self-executing artifact: a fixed Python
// program that installs an import hook serving the embedded module table,
// then runs one entry point.
package bootstrap

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/bluesnow/cli/internal/entrypoint"
	"github.com/bluesnow/cli/internal/table"
)

//go:embed bootstrap.py.tmpl
var skeleton string

const (
	dataMarker = "{{DATA}}"
	mainMarker = "{{MAIN}}"
)

// TableFunc writes the module table entries, without braces, to w.
type TableFunc func(w io.Writer) error

// Input is everything that varies between artifacts.
type Input struct {
	EntryPoint entrypoint.EntryPoint
	Compressed bool
	Table      TableFunc
}

// MainStanza returns the invocation line run only under __main__.
func MainStanza(ep entrypoint.EntryPoint) string {
	return fmt.Sprintf("    import %s as m; m.%s()", ep.Module, ep.Callable())
}

// Render writes a complete artifact to w. It is pure text substitution: the
// table is streamed in at the DATA marker and nothing is compiled or run.
func Render(w io.Writer, in Input) error {
	bw := bufio.NewWriter(w)

	scanner := bufio.NewScanner(strings.NewReader(skeleton))
	for scanner.Scan() {
		line := scanner.Text()
		switch line {
		case dataMarker:
			bw.WriteString("DATA = {")
			if in.Table != nil {
				if err := bw.Flush(); err != nil {
					return err
				}
				if err := in.Table(w); err != nil {
					return err
				}
			}
			bw.WriteString("}\n")
			bw.WriteString("DATA_COMPRESSED = ")
			bw.WriteString(table.PyBool(in.Compressed))
			bw.WriteString("\n")
		case mainMarker:
			bw.WriteString(MainStanza(in.EntryPoint))
			bw.WriteString("\n")
		default:
			bw.WriteString(line)
			bw.WriteString("\n")
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanning bootstrap skeleton: %w", err)
	}

	return bw.Flush()
}
