package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	oerrors "github.com/bluesnow/cli/internal/errors"
)

// Execute runs root through fang. Errors the command layer has already
// reported are not printed a second time.
func Execute(ctx context.Context, root *cobra.Command, version string) error {
	return fang.Execute(
		ctx,
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler),
	)
}

func errorHandler(w io.Writer, styles fang.Styles, err error) {
	var exitErr *oerrors.ExitError
	if errors.As(err, &exitErr) && exitErr.Printed {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
