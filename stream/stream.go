// Package stream implements the two wire dialects a translation pipeline
// exchanges blocks over: Apertium's bracket-tagged stream and VISL's
// angle-bracket pseudo-tag stream (spec.md §6's "Stream framing
// interface"). Both satisfy transfuse.StreamDialect for the extraction
// side; GetBlock and Detect support the injection side's read path.
package stream

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	transfuse "github.com/apertium/transfuse-go"
)

// Dialect frames blocks onto the wire and reads them back. BlockOpen,
// BlockBody, and BlockClose satisfy transfuse.StreamDialect directly;
// GetBlock and Header cover the read-back and staging-directory-header
// halves of spec.md §6 that StreamDialect alone does not model.
type Dialect interface {
	BlockOpen(id string) string
	BlockBody(body string) string
	BlockClose(id string) string

	// Header renders the stream's first line, which carries the staging
	// directory path GetTmpdir recovers on the other end.
	Header(tmpdir string) string

	// GetTmpdir parses the staging directory path out of a stream's
	// first line, returning "" if the line doesn't match this dialect.
	GetTmpdir(headerLine string) string

	// GetBlock reads the next block from r, returning its id and body.
	// ok is false at EOF; a line that isn't a block is skipped.
	GetBlock(r *bufio.Reader) (id, body string, ok bool, err error)
}

// ApertiumMarker and VISLMarker are the substrings Detect looks for in a
// stream's first line, per spec.md §6: "detection is by substring of the
// first line."
const (
	ApertiumMarker = "[transfuse:"
	VISLMarker     = "<STREAMCMD:TRANSFUSE:"
)

// Detect picks a Dialect by inspecting headerLine for ApertiumMarker or
// VISLMarker, mirroring inject.cpp's Streams::detect branch.
func Detect(headerLine string) (Dialect, error) {
	switch {
	case strings.Contains(headerLine, ApertiumMarker):
		return Apertium{}, nil
	case strings.Contains(headerLine, VISLMarker):
		return VISL{}, nil
	default:
		return nil, fmt.Errorf("could not detect stream dialect from header line %q", headerLine)
	}
}

// ReadHeader reads and returns the stream's first line (without its
// trailing newline), the line GetTmpdir and Detect both operate on.
func ReadHeader(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var (
	_ transfuse.StreamDialect = Apertium{}
	_ transfuse.StreamDialect = VISL{}
	_ Dialect                 = Apertium{}
	_ Dialect                 = VISL{}
)
