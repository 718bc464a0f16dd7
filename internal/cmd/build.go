package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bluesnow/cli/internal/bundler"
	"github.com/bluesnow/cli/internal/codec"
	"github.com/bluesnow/cli/internal/config"
	"github.com/bluesnow/cli/internal/entrypoint"
	oerrors "github.com/bluesnow/cli/internal/errors"
	"github.com/bluesnow/cli/internal/materialize"
	"github.com/bluesnow/cli/internal/output"
)

type buildOptions struct {
	sources   []string
	output    string
	compress  bool
	codec     string
	python    string
	pipArgs   string
	noInstall bool
	pyproject string
}

// NewBuildCmd creates the build command.
func NewBuildCmd(cfg *config.GlobalConfig) *cobra.Command {
	opts := &buildOptions{}

	c := &cobra.Command{
		Use:   "build [name=module:callable ...]",
		Short: "Bundle an application into one executable per entry point",
		Long: `Install the sources and their dependencies into a scratch directory, then
write <output>/<name>.py for every entry point.

Entry points come from the arguments, then from --pyproject scripts. When
neither supplies any, entryPoints from the config file are used.`,
		Example: `  # Bundle the project in the current directory
  bluesnow build run=myapp.cli:main

  # Compressed, from an explicit pyproject, without resolving dependencies
  bluesnow build -c --pyproject pyproject.toml --no-install -s src`,
		RunE: func(c *cobra.Command, args []string) error {
			return runBuild(c, args, cfg, opts)
		},
	}

	c.Flags().StringArrayVarP(&opts.sources, "source", "s", []string{"."}, "Requirement or local path to install (repeatable)")
	c.Flags().StringVarP(&opts.output, "output", "o", "", "Output directory (env: BLUESNOW_OUTPUT, default "+config.DefaultOutput+")")
	c.Flags().BoolVarP(&opts.compress, "compress", "c", false, "Compress embedded modules (env: BLUESNOW_COMPRESS)")
	c.Flags().StringVar(&opts.codec, "codec", "", "Compression codec: xz or zlib (env: BLUESNOW_CODEC)")
	c.Flags().StringVar(&opts.python, "python", "", "Python interpreter that runs pip (env: BLUESNOW_PYTHON)")
	c.Flags().StringVar(&opts.pipArgs, "pip-args", "", "Extra pip arguments, shell quoted (env: BLUESNOW_PIP_ARGS)")
	c.Flags().BoolVar(&opts.noInstall, "no-install", false, "Copy sources as-is instead of running pip")
	c.Flags().StringVar(&opts.pyproject, "pyproject", "", "Read entry points from [project.scripts] in this pyproject.toml")

	return c
}

func runBuild(c *cobra.Command, args []string, cfg *config.GlobalConfig, opts *buildOptions) error {
	if cfg.LoadErr != nil {
		return cfg.LoadErr
	}

	settings, values, err := config.ResolveSettings(cfg.Config, opts.flagValues(c))
	if err != nil {
		return err
	}
	config.LogResolvedValues(values)

	eps, err := collectEntryPoints(args, opts.pyproject, settings.EntryPoints)
	if err != nil {
		return err
	}

	name := codec.None
	if settings.Compress {
		name, err = codec.Parse(settings.Codec)
		if err != nil {
			return err
		}
	}

	pipArgs, err := materialize.SplitArgs(settings.PipArgs)
	if err != nil {
		return err
	}

	var m materialize.Materializer = materialize.Pip{Python: settings.Python}
	if opts.noInstall {
		m = materialize.Copy{}
	}

	b := bundler.New(bundler.Options{
		OutputDir:    settings.Output,
		Codec:        name,
		Materializer: spinning{inner: m, title: "Installing dependencies..."},
	})

	artifacts, err := b.Process(c.Context(), materialize.Spec{Sources: opts.sources, PipArgs: pipArgs}, eps)
	if err != nil {
		return err
	}

	report(artifacts, settings.Output, cfg.Verbose)
	return nil
}

func (o *buildOptions) flagValues(c *cobra.Command) config.FlagValues {
	var fv config.FlagValues
	flags := c.Flags()
	if flags.Changed("output") {
		fv.Output = config.Some(o.output)
	}
	if flags.Changed("compress") {
		fv.Compress = config.Some(o.compress)
	}
	if flags.Changed("codec") {
		fv.Codec = config.Some(o.codec)
	}
	if flags.Changed("python") {
		fv.Python = config.Some(o.python)
	}
	if flags.Changed("pip-args") {
		fv.PipArgs = config.Some(o.pipArgs)
	}
	return fv
}

// collectEntryPoints merges arguments and pyproject scripts, falling back to
// the configured entry points when both are empty.
func collectEntryPoints(args []string, pyproject string, configured []string) ([]entrypoint.EntryPoint, error) {
	eps, err := entrypoint.ParseAll(args)
	if err != nil {
		return nil, err
	}

	if pyproject != "" {
		scripts, err := entrypoint.FromPyProject(pyproject)
		if err != nil {
			return nil, err
		}
		output.Debug("entry points from pyproject", "path", pyproject, "count", len(scripts))
		eps = append(eps, scripts...)
	}

	if len(eps) == 0 && len(configured) > 0 {
		output.Debug("using entry points from config", "count", len(configured))
		return entrypoint.ParseAll(configured)
	}

	if len(eps) == 0 {
		return nil, oerrors.NewConfigurationError(
			"no entry points given",
			"Pass name=module:callable arguments, --pyproject, or set entryPoints in the config file.",
		)
	}
	return eps, nil
}

func report(artifacts []bundler.Artifact, outDir string, verbose bool) {
	rows := make([]output.ArtifactRow, 0, len(artifacts))
	files := make(map[string]string, len(artifacts))
	for _, a := range artifacts {
		rows = append(rows, output.ArtifactRow{
			Name:     a.Name,
			Path:     a.Path,
			Modules:  a.Modules,
			Packages: a.Packages,
			Bytes:    a.Bytes,
			Digest:   a.Digest,
		})
		files[filepath.Base(a.Path)] = fmt.Sprintf("%d modules, %s", a.Modules, output.FormatSize(a.Bytes))
	}

	output.Println(output.RenderArtifactTable(rows))
	if verbose {
		output.Print(output.RenderFileTree(outDir, files))
	}
	output.Println(output.FormatCheckmark(fmt.Sprintf("Bundled %d artifact(s) into %s", len(artifacts), outDir)))
}

// spinning shows a spinner while the wrapped materializer runs.
type spinning struct {
	inner materialize.Materializer
	title string
}

func (s spinning) Materialize(ctx context.Context, dir string, spec materialize.Spec) error {
	return output.RunWithSpinner(ctx, func(ctx context.Context) error {
		return s.inner.Materialize(ctx, dir, spec)
	}, output.WithTitle(s.title))
}
