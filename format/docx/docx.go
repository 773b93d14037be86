// Package docx is the WordprocessingML format driver: it unpacks a .docx
// ZIP container, hands word/document.xml to the core's generic XML
// parser, and repacks the container with a modified document.xml on
// reconstruction, leaving every other archive member untouched — the
// same indexed-ZIP-member shape as docx2md/docx.Parser, adapted from a
// read-only markdown converter to a round-trippable in-place editor.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	transfuse "github.com/apertium/transfuse-go"
)

const documentPart = "word/document.xml"

// Package is a parsed .docx container: word/document.xml decoded into
// the core's generic Node tree, plus every other archive member
// preserved verbatim for Render to reassemble byte-identically.
type Package struct {
	Document *transfuse.Node
	parts    []part
}

type part struct {
	name string
	data []byte
	mode uint16 // zip.FileHeader.Method
}

// Parse unpacks a .docx ZIP container from data.
func Parse(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("format/docx: opening archive: %w", err)
	}

	pkg := &Package{}
	var docXML []byte
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("format/docx: reading %s: %w", f.Name, err)
		}
		buf, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("format/docx: reading %s: %w", f.Name, err)
		}
		if f.Name == documentPart {
			docXML = buf
		}
		pkg.parts = append(pkg.parts, part{name: f.Name, data: buf, mode: f.Method})
	}
	if docXML == nil {
		return nil, fmt.Errorf("format/docx: missing %s", documentPart)
	}

	root, err := transfuse.ParseXML(string(docXML))
	if err != nil {
		return nil, &transfuseParseError{err}
	}
	pkg.Document = root
	return pkg, nil
}

// Body locates the <w:body> element within pkg.Document, the container
// Document.Extract needs (document.go's wrapper contract): one level
// above the w:p paragraphs that are the real top-level block elements.
func (pkg *Package) Body() *transfuse.Node {
	var body *transfuse.Node
	transfuse.Walk(pkg.Document, func(n *transfuse.Node) {
		if body == nil && n.Type == transfuse.ElementNode && transfuse.LocalName(n.Name) == "body" {
			body = n
		}
	})
	return body
}

// Render repacks the container, replacing word/document.xml with the
// (possibly mutated) in-memory tree and copying every other member
// through with its original bytes and compression method. Only each
// member's name and method are carried over into the new headers, so
// other header fields (such as modification times) are not preserved.
func (pkg *Package) Render(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, p := range pkg.parts {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: p.name, Method: p.mode})
		if err != nil {
			return fmt.Errorf("format/docx: writing %s: %w", p.name, err)
		}
		data := p.data
		if p.name == documentPart {
			data = []byte(transfuse.SerializeXML(pkg.Document))
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("format/docx: writing %s: %w", p.name, err)
		}
	}
	return zw.Close()
}

type transfuseParseError struct{ cause error }

func (e *transfuseParseError) Error() string {
	return fmt.Sprintf("format/docx: parsing %s: %v", documentPart, e.cause)
}

func (e *transfuseParseError) Unwrap() error { return e.cause }
