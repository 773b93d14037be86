package transfuse

import (
	"encoding/base64"
	"regexp"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// translatableRe matches the alphanumeric predicate spec.md §4.3 requires
// before a text node or attribute value is treated as a block candidate:
// at least one character in [\w\p{L}\p{N}\p{M}].
var translatableRe = regexp.MustCompile(`[\w\p{L}\p{N}\p{M}]`)

// bareMarkerOnlyRe matches a text node whose entire content is a single
// bare protected-inline marker (spec.md §4.6 step 4) with nothing else
// around it — structural placeholder, not translatable content.
var bareMarkerOnlyRe = regexp.MustCompile(`^\x{E020}[^\x{E021}]*\x{E021}$`)

// BlockExtractor implements extract_blocks (spec.md §4.3): walks the
// flattened DOM (the tree re-parsed from the Style Serializer's output),
// turning eligible text nodes and attribute values into opaque blocks on
// the Stream and replacing their content in the tree with block markers.
type BlockExtractor struct {
	Tags    *TagClassification
	Dialect StreamDialect
	counter int
}

// ExtractedBlock is one block emitted to the stream, mirroring
// gotlai.TextNode's field shape.
type ExtractedBlock struct {
	ID       string
	Ordinal  int
	Hash     string
	Body     string
	NodeType string // "text" or "attr"
	Context  string // e.g. the owning attribute name, or parent tag
	Metadata map[string]string
}

// Extract walks root, producing blocks in document order and mutating
// the tree's text/attribute content with block markers. The returned
// wire buffer is the Stream's framed block sequence.
func (e *BlockExtractor) Extract(root *Node) ([]ExtractedBlock, string, error) {
	var blocks []ExtractedBlock
	var wire []byte
	txt := len(e.Tags.ParentsAllow) == 0
	if err := e.walk(root, txt, &blocks, &wire); err != nil {
		return nil, "", err
	}
	return blocks, string(wire), nil
}

func (e *BlockExtractor) walk(n *Node, txt bool, blocks *[]ExtractedBlock, wire *[]byte) error {
	if n.Type != ElementNode {
		return nil
	}

	if n.HasAttr(attrProtect) || e.Tags.IsProtected(n.Name) {
		return nil
	}

	for _, a := range n.Attrs {
		if !e.Tags.IsTagAttr(a.Name) {
			continue
		}
		if !translatableRe.MatchString(a.Value) {
			continue
		}
		blk, err := e.mint(a.Value, "attr", a.Name)
		if err != nil {
			return err
		}
		*blocks = append(*blocks, blk)
		e.emit(wire, blk)
		n.SetAttr(a.Name, wrapBlockMarker(blk.ID, blk.Body))
	}

	childTxt := txt
	if e.Tags.AllowsParent(n.Name) {
		if len(e.Tags.ParentsDirect) == 0 || e.Tags.IsDirectParent(n.Name) {
			childTxt = true
		}
	}

	if childTxt && len(n.Children) > 0 {
		if body, ok := e.extractableText(n); ok {
			blk, err := e.mint(body, "text", n.Name)
			if err != nil {
				return err
			}
			*blocks = append(*blocks, blk)
			e.emit(wire, blk)
			e.replaceTextWithMarker(n, blk)
			return nil
		}
	}

	for _, c := range n.Children {
		if err := e.walk(c, childTxt, blocks, wire); err != nil {
			return err
		}
	}
	return nil
}

// extractableText reports whether n's children form a single translatable
// text run (the flattened representation: after Style Serializer + reparse,
// an allowed parent's inline content collapses to one text node containing
// embedded inline sentinel markers as plain characters).
func (e *BlockExtractor) extractableText(n *Node) (string, bool) {
	if len(n.Children) != 1 || n.Children[0].Type != TextNode {
		return "", false
	}
	body := n.Children[0].Data
	if bareMarkerOnlyRe.MatchString(body) {
		return "", false
	}
	if !translatableRe.MatchString(body) {
		return "", false
	}
	return body, true
}

func (e *BlockExtractor) replaceTextWithMarker(n *Node, blk ExtractedBlock) {
	n.Children[0].Data = wrapBlockMarker(blk.ID, blk.Body)
}

// mint does not reject reserved sentinels in body: by this stage a
// translatable run legitimately carries inline style markers (spec.md §4.2)
// minted earlier in the pipeline. Leaked sentinels from the original
// source text are rejected upstream, in StyleSerializer.serializeNode.
func (e *BlockExtractor) mint(body, nodeType, context string) (ExtractedBlock, error) {
	e.counter++
	id := BlockID(e.counter, body)
	return ExtractedBlock{
		ID:       id,
		Ordinal:  e.counter,
		Hash:     id,
		Body:     body,
		NodeType: nodeType,
		Context:  context,
	}, nil
}

func (e *BlockExtractor) emit(wire *[]byte, blk ExtractedBlock) {
	*wire = append(*wire, []byte(e.Dialect.BlockOpen(blk.ID))...)
	*wire = append(*wire, []byte(e.Dialect.BlockBody(blk.Body))...)
	*wire = append(*wire, []byte(e.Dialect.BlockClose(blk.ID))...)
}

// BlockID computes the content-addressed identifier "<ordinal>-<base64url(hash)>"
// per spec.md §3. The hash is 64-bit xxhash folded to 32 bits (see
// DESIGN.md Open Question 3: no true xxh32 exists in the retrieved pack).
func BlockID(ordinal int, body string) string {
	h := xxhash.Sum64String(body)
	folded := uint32(h) ^ uint32(h>>32)
	buf := []byte{byte(folded >> 24), byte(folded >> 16), byte(folded >> 8), byte(folded)}
	return strconv.Itoa(ordinal) + "-" + base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(buf)
}

// wrapBlockMarker renders the TFB_OPEN_B/E id TFB_CLOSE_B/E pair around
// body, per spec.md §3's Block Marker grammar.
func wrapBlockMarker(id, body string) string {
	var b []byte
	b = appendBlockFraming(b, id)
	b = append(b, body...)
	b = appendBlockFraming(b, id)
	return string(b)
}

func appendBlockFraming(b []byte, id string) []byte {
	b = append(b, string(BlockOpenB)...)
	b = append(b, id...)
	b = append(b, string(BlockOpenE)...)
	return b
}
