// Package table serializes classified modules into the embedded module table
// of a generated artifact: a Python dict literal mapping dotted module names
// to (is_package, payload) tuples.
package table

import (
	"bufio"
	"context"
	"errors"
	"io"
	"iter"
	"os"

	"github.com/bluesnow/cli/internal/codec"
	oerrors "github.com/bluesnow/cli/internal/errors"
	"github.com/bluesnow/cli/internal/walk"
)

// DefaultChunkSize is the read size used when Writer.ChunkSize is unset.
const DefaultChunkSize = 4096

// Progress describes one module about to be serialized.
type Progress struct {
	Ordinal int
	Module  string
	File    string
}

// ProgressFunc observes serialization progress. It never affects output.
type ProgressFunc func(Progress)

// Stats summarizes a serialized table.
type Stats struct {
	Modules      int
	Packages     int
	RawBytes     int64
	PayloadBytes int64
}

// Writer streams module table entries. Only one chunk of one file is
// resident at a time.
type Writer struct {
	// Codec compresses each module payload; codec.None embeds raw bytes.
	Codec codec.Name

	// ChunkSize is the file read size.
	ChunkSize int

	// Progress is called before each module is written (optional).
	Progress ProgressFunc
}

// WriteEntries writes one `'name':(is_package,payload),` entry per
// classifiable file in files. The caller supplies the surrounding braces.
// Files that are not Python sources are skipped silently.
func (tw *Writer) WriteEntries(ctx context.Context, w io.Writer, files iter.Seq2[walk.FileEntry, error]) (Stats, error) {
	var stats Stats

	bw := bufio.NewWriter(w)
	buf := make([]byte, tw.chunkSize())

	for entry, err := range files {
		if err != nil {
			return stats, err
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		mod, ok := walk.Classify(entry)
		if !ok {
			continue
		}

		stats.Modules++
		if mod.IsPackage {
			stats.Packages++
		}
		if tw.Progress != nil {
			tw.Progress(Progress{Ordinal: stats.Modules, Module: mod.Name, File: entry.Rel})
		}

		raw, payload, err := tw.writeModule(bw, entry, mod, buf)
		stats.RawBytes += raw
		stats.PayloadBytes += payload
		if err != nil {
			return stats, err
		}
	}

	if err := bw.Flush(); err != nil {
		return stats, oerrors.NewFilesystemError("writing module table", "", err)
	}
	return stats, nil
}

func (tw *Writer) writeModule(bw *bufio.Writer, entry walk.FileEntry, mod walk.Module, buf []byte) (raw, payload int64, err error) {
	f, err := os.Open(entry.Path)
	if err != nil {
		return 0, 0, oerrors.NewFilesystemError("opening module source", entry.Path, err)
	}
	defer f.Close()

	comp, err := codec.New(tw.codecName())
	if err != nil {
		return 0, 0, err
	}

	bw.WriteString(PyString(mod.Name))
	bw.WriteString(":(")
	bw.WriteString(PyBool(mod.IsPackage))
	bw.WriteByte(',')

	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			raw += int64(n)
			part, err := comp.Feed(buf[:n])
			if err != nil {
				return raw, payload, err
			}
			if len(part) > 0 {
				payload += int64(len(part))
				bw.WriteString(PyBytes(part))
				bw.WriteString("\\\n")
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return raw, payload, oerrors.NewFilesystemError("reading module source", entry.Path, readErr)
		}
	}

	tail, err := comp.Finish()
	if err != nil {
		return raw, payload, err
	}
	payload += int64(len(tail))
	bw.WriteString(PyBytes(tail))
	if _, err := bw.WriteString("),"); err != nil {
		return raw, payload, oerrors.NewFilesystemError("writing module table", entry.Path, err)
	}
	return raw, payload, nil
}

func (tw *Writer) chunkSize() int {
	if tw.ChunkSize > 0 {
		return tw.ChunkSize
	}
	return DefaultChunkSize
}

func (tw *Writer) codecName() codec.Name {
	if tw.Codec == "" {
		return codec.None
	}
	return tw.Codec
}
