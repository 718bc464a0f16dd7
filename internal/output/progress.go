package output

import (
	"github.com/charmbracelet/log"

	"github.com/bluesnow/cli/internal/table"
)

// ProgressFunc returns a table progress sink that logs each module at debug
// level on l. A nil logger uses the global one.
func ProgressFunc(l *log.Logger) table.ProgressFunc {
	return func(p table.Progress) {
		target := l
		if target == nil {
			target = logger
		}
		target.Debug("embedding module",
			"ordinal", p.Ordinal,
			"module", p.Module,
			"file", p.File,
		)
	}
}
