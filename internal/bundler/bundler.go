// Package bundler turns a materialized dependency tree into one
// self-executing artifact per entry point.
package bundler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/bluesnow/cli/internal/bootstrap"
	"github.com/bluesnow/cli/internal/codec"
	"github.com/bluesnow/cli/internal/entrypoint"
	oerrors "github.com/bluesnow/cli/internal/errors"
	"github.com/bluesnow/cli/internal/materialize"
	"github.com/bluesnow/cli/internal/output"
	"github.com/bluesnow/cli/internal/table"
	"github.com/bluesnow/cli/internal/walk"
)

// artifactMode is the permission set on every produced artifact.
const artifactMode os.FileMode = 0o755

// Options configures a Bundler.
type Options struct {
	// OutputDir receives one <name>.py per entry point. Created if missing.
	OutputDir string

	// Codec compresses embedded modules. Empty or codec.None embeds raw source.
	Codec codec.Name

	// Materializer fills the scratch directory. Required.
	Materializer materialize.Materializer

	// ChunkSize is the file read size; table.DefaultChunkSize when zero.
	ChunkSize int

	// Progress observes each embedded module (optional).
	Progress table.ProgressFunc
}

// Artifact describes one written output file.
type Artifact struct {
	Name     string
	Path     string
	Modules  int
	Packages int
	Bytes    int64
	Digest   string
}

// Bundler orchestrates one bundling run.
type Bundler struct {
	opts Options
}

// New creates a Bundler.
func New(opts Options) *Bundler {
	return &Bundler{opts: opts}
}

// Compressed reports whether artifacts embed compressed payloads.
func (b *Bundler) Compressed() bool {
	return b.opts.Codec != "" && b.opts.Codec != codec.None
}

// Process materializes deps into a scratch directory, then writes one
// artifact per entry point. The scratch directory is removed on every exit
// path. Entry points are validated before any I/O.
func (b *Bundler) Process(ctx context.Context, deps materialize.Spec, eps []entrypoint.EntryPoint) ([]Artifact, error) {
	if err := validate(eps); err != nil {
		return nil, err
	}
	if b.opts.Materializer == nil {
		return nil, oerrors.NewConfigurationError("no dependency materializer configured", "")
	}
	if b.Compressed() {
		if _, err := codec.New(b.opts.Codec); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(b.opts.OutputDir, 0o755); err != nil {
		return nil, oerrors.NewFilesystemError("creating output directory", b.opts.OutputDir, err)
	}

	scratch, err := os.MkdirTemp("", "bluesnow-*")
	if err != nil {
		return nil, oerrors.NewFilesystemError("creating scratch directory", "", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(scratch); rmErr != nil {
			output.Warn("removing scratch directory", "path", scratch, "error", rmErr)
		}
	}()

	output.Debug("materializing dependencies", "scratch", scratch, "sources", deps.Sources)
	if err := b.opts.Materializer.Materialize(ctx, scratch, deps); err != nil {
		return nil, err
	}

	artifacts := make([]Artifact, 0, len(eps))
	for _, ep := range eps {
		if err := ctx.Err(); err != nil {
			return artifacts, err
		}

		art, err := b.writeArtifact(ctx, scratch, ep)
		if err != nil {
			return artifacts, fmt.Errorf("building %s: %w", ep.Name, err)
		}
		artifacts = append(artifacts, art)
	}

	return artifacts, nil
}

// writeArtifact renders one artifact into a temp file next to its final
// path, marks it executable and renames it into place.
func (b *Bundler) writeArtifact(ctx context.Context, scratch string, ep entrypoint.EntryPoint) (Artifact, error) {
	alog := output.ArtifactLogger(ep.Name)
	alog.Debug("rendering artifact", "entrypoint", ep.String())

	dest := filepath.Join(b.opts.OutputDir, ep.FileName())

	tmp, err := os.CreateTemp(b.opts.OutputDir, ep.FileName()+".tmp.*")
	if err != nil {
		return Artifact{}, oerrors.NewFilesystemError("creating artifact", dest, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	hash := sha256.New()
	counter := &countingWriter{}
	w := io.MultiWriter(tmp, hash, counter)

	tw := &table.Writer{
		Codec:     b.opts.Codec,
		ChunkSize: b.opts.ChunkSize,
		Progress:  b.progress(alog),
	}
	if !b.Compressed() {
		tw.Codec = codec.None
	}

	var stats table.Stats
	err = bootstrap.Render(w, bootstrap.Input{
		EntryPoint: ep,
		Compressed: b.Compressed(),
		Table: func(dst io.Writer) error {
			var werr error
			stats, werr = tw.WriteEntries(ctx, dst, walk.Files(scratch))
			return werr
		},
	})
	if err != nil {
		return Artifact{}, err
	}

	if err := tmp.Chmod(artifactMode); err != nil {
		return Artifact{}, oerrors.NewFilesystemError("setting artifact mode", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return Artifact{}, oerrors.NewFilesystemError("closing artifact", tmpPath, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return Artifact{}, oerrors.NewFilesystemError("renaming artifact", dest, err)
	}
	committed = true

	art := Artifact{
		Name:     ep.Name,
		Path:     dest,
		Modules:  stats.Modules,
		Packages: stats.Packages,
		Bytes:    counter.n,
		Digest:   "sha256:" + hex.EncodeToString(hash.Sum(nil)),
	}
	alog.Info("wrote artifact",
		"path", dest,
		"modules", art.Modules,
		"raw", stats.RawBytes,
		"payload", stats.PayloadBytes,
	)
	return art, nil
}

func (b *Bundler) progress(alog *log.Logger) table.ProgressFunc {
	if b.opts.Progress != nil {
		return b.opts.Progress
	}
	return output.ProgressFunc(alog)
}

// validate rejects an empty entry point list and duplicate artifact names.
func validate(eps []entrypoint.EntryPoint) error {
	if len(eps) == 0 {
		return oerrors.NewConfigurationError(
			"no entry points given",
			"pass at least one name=module:callable, or set entryPoints in config",
		)
	}

	seen := make(map[string]bool, len(eps))
	for _, ep := range eps {
		if ep.Name == "" || ep.Module == "" || len(ep.Attrs) == 0 {
			return oerrors.NewConfigurationError(
				fmt.Sprintf("incomplete entry point %q", ep.String()),
				"entry points have the form name=module:callable",
			)
		}
		if seen[ep.Name] {
			return oerrors.NewConfigurationError(
				fmt.Sprintf("duplicate entry point name %q", ep.Name),
				"each entry point writes <name>.py, so names must be unique",
			)
		}
		seen[ep.Name] = true
	}
	return nil
}

type countingWriter struct {
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
