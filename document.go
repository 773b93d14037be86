package transfuse

import "io"

// Document implements the top-level Extract/Inject lifecycle (spec.md
// §2), sequencing the component pipeline the way gotlai.Translator
// sequences cache lookup, rate limiting, retry, and provider call around
// a single Translate operation.
type Document struct {
	tags    *TagClassification
	state   StateStore
	dialect StreamDialect
	policy  ReservedSentinelPolicy
	diagW   io.Writer
	diags   []Diagnostic
}

// NewDocument constructs a Document ready for Extract/Inject, configured
// by opts (spec.md §3's DocumentOption). tags and state are required;
// WithStreamDialect is required before calling Extract. Diagnostics are
// discarded unless WithDiagnostics names a sink, mirroring
// cmd/gotlai/main.go's run(args, stdout, stderr io.Writer) shape of
// passing an io.Writer down rather than hard-coding os.Stderr.
func NewDocument(tags *TagClassification, state StateStore, opts ...DocumentOption) *Document {
	d := &Document{
		tags:   tags,
		state:  state,
		policy: RejectReservedSentinels,
		diagW:  io.Discard,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Diagnostics returns every non-fatal Diagnostic collected by the most
// recent Extract or Inject call.
func (d *Document) Diagnostics() []Diagnostic {
	return d.diags
}

// record appends diags to d.diags and writes each to the configured
// diagnostic sink (spec.md §7: Missing and Truncation are non-fatal and
// reported, not just returned as an error).
func (d *Document) record(diags []Diagnostic) {
	for _, diag := range diags {
		d.diags = append(d.diags, diag)
		_, _ = io.WriteString(d.diagW, diag.String()+"\n")
	}
}

// Extract runs the full extraction pipeline (spec.md §2) over root:
//
//  1. Whitespace Folder.Save, on the original tree.
//  2. Style Serializer.SaveStyles, folding inline structure to sentinel
//     text and protected_inline elements to <tf-protect> wrappers.
//  3. Protection Folder.Fold, coalescing <tf-protect> islands into
//     synthetic "P" styles (left as literal XML at block boundaries,
//     wrapping markers elsewhere).
//  4. A first Style Cleanup pass, "before the stream goes out" (spec.md
//     §4.5), canonicalizing marker/whitespace adjacency before the
//     content is handed to Block Extraction.
//  5. Re-parse the cleaned string: the Style Serializer's output has no
//     inline elements left (they are now plain sentinel text), so the
//     re-parsed tree is flattened exactly as scenario S1 requires.
//  6. Block Extractor.Extract, walking the flattened tree and emitting
//     blocks to the wire while mutating text/attributes with block
//     markers.
//  7. A plain re-serialize of the mutated flattened tree: this is
//     content.xml.
//
// Returns the blocks to send downstream, the framed wire buffer, and
// content.xml. root is mutated in place by steps 1 and 6.
func (d *Document) Extract(root *Node) (blocks []ExtractedBlock, wire string, contentXML string, err error) {
	d.diags = nil
	if d.dialect == nil {
		return nil, "", "", &StreamError{Message: "no stream dialect configured"}
	}

	folder := &WhitespaceFolder{Tags: d.tags}
	folder.Save(root)

	serializer := &StyleSerializer{Tags: d.tags, State: d.state}
	styled, err := serializer.SaveStyles(root)
	if err != nil {
		return nil, "", "", err
	}
	if d.policy == EscapeReservedSentinels {
		styled = escapeSentinels(styled)
	}

	protector := &ProtectionFolder{State: d.state}
	folded, trunc, err := protector.Fold(styled)
	if err != nil {
		return nil, "", "", err
	}
	if trunc != nil {
		d.record([]Diagnostic{{Err: trunc}})
	}

	cleaned := CleanupStyles(folded)

	flattened, err := ParseXML(wrapFragment(cleaned))
	if err != nil {
		return nil, "", "", &ParseError{Message: "re-parsing styled content", Cause: err}
	}

	extractor := &BlockExtractor{Tags: d.tags, Dialect: d.dialect}
	blocks, wire, err = extractor.Extract(flattened)
	if err != nil {
		return nil, "", "", err
	}

	return blocks, wire, SerializeChildrenXML(flattened), nil
}

// Inject runs the Reconstruction pipeline (spec.md §4.6) over content.xml
// and the translated blocks, returning the restored top-level siblings —
// a format driver splices these into the body element it extracted them
// from (see format/html.Body, format/docx.Package.Body).
func (d *Document) Inject(contentXML string, blocks []ExtractedBlock) ([]*Node, error) {
	d.diags = nil
	r := &Reconstructor{Tags: d.tags, State: d.state}
	roots, diags, err := r.Inject(contentXML, blocks)
	d.record(diags)
	if err != nil {
		return nil, err
	}
	return roots, nil
}

// wrapFragment wraps a fragment in a synthetic root element so ParseXML
// (which expects a single top-level element) can re-parse the Style
// Serializer's output, which is a sequence of siblings, not one element.
// The wrapper is discarded by the caller (it reads flattened.Children),
// never written to content.xml.
func wrapFragment(fragment string) string {
	return "<tf-root>" + fragment + "</tf-root>"
}
