// Package main is the entry point for the bluesnow CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bluesnow/cli/internal/cmd"
	oerrors "github.com/bluesnow/cli/internal/errors"
	"github.com/bluesnow/cli/internal/version"
)

func main() {
	rootCmd := cmd.NewRootCmd()

	info := version.Get()
	versionString := fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.GitCommit, info.BuildDate)

	if err := cmd.Execute(context.Background(), rootCmd, versionString); err != nil {
		os.Exit(oerrors.ExitCodeFromError(err))
	}
}
