// Package codec implements the per-module streaming compressors used to
// build embedded module payloads.
package codec

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zlib"
	"github.com/ulikunitz/xz"

	oerrors "github.com/bluesnow/cli/internal/errors"
)

// Name identifies a compression codec.
type Name string

const (
	// None passes chunks through unchanged.
	None Name = "none"

	// XZ produces .xz streams, readable by Python's lzma.decompress.
	XZ Name = "xz"

	// Zlib produces zlib streams, readable by Python's zlib.decompress.
	Zlib Name = "zlib"
)

// XZMagic is the header every xz stream starts with. The generated bootstrap
// uses it to pick the matching decompressor.
var XZMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

// ValidNames returns all compressing codec names.
func ValidNames() []string {
	return []string{string(XZ), string(Zlib)}
}

// Parse converts a user supplied codec name. The empty string selects XZ.
func Parse(s string) (Name, error) {
	switch Name(strings.ToLower(strings.TrimSpace(s))) {
	case "", XZ:
		return XZ, nil
	case Zlib:
		return Zlib, nil
	case None:
		return None, nil
	default:
		return "", oerrors.NewConfigurationError(
			fmt.Sprintf("unknown codec %q", s),
			fmt.Sprintf("Valid codecs: %s", strings.Join(ValidNames(), ", ")),
		)
	}
}

// Compressor is a stateful filter over an ordered sequence of byte chunks.
//
// Feed returns the compressed bytes produced so far, which may be empty while
// the compressor buffers. Finish flushes the remaining state and must be
// called exactly once; the compressor is unusable afterwards.
type Compressor interface {
	Feed(chunk []byte) ([]byte, error)
	Finish() ([]byte, error)
}

// New returns a fresh compressor. Compression state never spans modules, so
// callers create one per module.
func New(name Name) (Compressor, error) {
	switch name {
	case None:
		return &passthrough{}, nil
	case XZ:
		s := &stream{}
		w, err := xz.NewWriter(&s.buf)
		if err != nil {
			return nil, fmt.Errorf("creating xz writer: %w", err)
		}
		s.w = w
		return s, nil
	case Zlib:
		s := &stream{}
		s.w = zlib.NewWriter(&s.buf)
		return s, nil
	default:
		return nil, oerrors.NewConfigurationError(fmt.Sprintf("unknown codec %q", name), "")
	}
}

type passthrough struct {
	finished bool
}

func (p *passthrough) Feed(chunk []byte) ([]byte, error) {
	if p.finished {
		return nil, oerrors.NewCompressionError("feed after finish")
	}
	return chunk, nil
}

func (p *passthrough) Finish() ([]byte, error) {
	if p.finished {
		return nil, oerrors.NewCompressionError("finish called twice")
	}
	p.finished = true
	return []byte{}, nil
}

// stream adapts a compressing io.WriteCloser into a Compressor by draining
// the sink buffer after every write.
type stream struct {
	buf      bytes.Buffer
	w        io.WriteCloser
	finished bool
}

func (s *stream) Feed(chunk []byte) ([]byte, error) {
	if s.finished {
		return nil, oerrors.NewCompressionError("feed after finish")
	}
	if _, err := s.w.Write(chunk); err != nil {
		s.finished = true
		return nil, oerrors.NewCompressionError(err.Error())
	}
	return s.drain(), nil
}

func (s *stream) Finish() ([]byte, error) {
	if s.finished {
		return nil, oerrors.NewCompressionError("finish called twice")
	}
	s.finished = true
	if err := s.w.Close(); err != nil {
		return nil, oerrors.NewCompressionError(err.Error())
	}
	return s.drain(), nil
}

func (s *stream) drain() []byte {
	out := bytes.Clone(s.buf.Bytes())
	s.buf.Reset()
	if out == nil {
		out = []byte{}
	}
	return out
}

// Decompress inflates a complete payload produced by a compressor of the
// given codec.
func Decompress(name Name, payload []byte) ([]byte, error) {
	var r io.Reader
	switch name {
	case None:
		return payload, nil
	case XZ:
		xr, err := xz.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("opening xz stream: %w", err)
		}
		r = xr
	case Zlib:
		zr, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("opening zlib stream: %w", err)
		}
		defer zr.Close()
		r = zr
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
	return io.ReadAll(r)
}
