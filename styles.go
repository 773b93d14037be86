package transfuse

import "strings"

// StyleSerializer implements save_styles (spec.md §4.2): walks the DOM
// and produces a UTF-8 string in which inline elements are folded into
// sentinel-framed kind:hash tokens and everything else is literal XML.
type StyleSerializer struct {
	Tags  *TagClassification
	State StateStore
}

// SaveStyles serializes root's subtree per spec.md §4.2.
func (s *StyleSerializer) SaveStyles(root *Node) (string, error) {
	var b strings.Builder
	if err := s.serializeChildren(&b, root, false); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *StyleSerializer) serializeChildren(b *strings.Builder, n *Node, protect bool) error {
	for _, c := range n.Children {
		if err := s.serializeNode(b, c, protect); err != nil {
			return err
		}
	}
	return nil
}

func (s *StyleSerializer) serializeNode(b *strings.Builder, n *Node, protect bool) error {
	switch n.Type {
	case TextNode, CDataNode:
		if r, bad := ContainsReservedSentinel(n.Data); bad {
			return &StreamError{Message: "reserved sentinel " + string(r) + " found in source text"}
		}
		b.WriteString(escapeXMLText(n.Data, false))
		return nil
	}

	// ElementNode
	isProtected := protect || s.Tags.IsProtected(n.Name) || n.HasAttr(attrProtect)

	if isProtected {
		b.WriteString(OpenTag(n, true))
		if err := s.serializeChildren(b, n, true); err != nil {
			return err
		}
		b.WriteString(CloseTag(n))
		return nil
	}

	if s.Tags.IsProtectedInline(n.Name) {
		b.WriteString("<tf-protect>")
		b.WriteString(SelfCloseTagOrPair(n))
		b.WriteString("</tf-protect>")
		return nil
	}

	if s.Tags.IsInline(n.Name) && !firstChildProtected(s.Tags, n) && !isOnlyChild(s.Tags, n) && !hasBlockChild(s.Tags, n) {
		open := OpenTag(n, false)
		closeTag := CloseTag(n)
		hash, err := s.State.Style(LocalName(n.Name), open, closeTag)
		if err != nil {
			return &StateError{Op: "style", Cause: err}
		}
		b.WriteRune(InlineOpenB)
		b.WriteString(LocalName(n.Name))
		b.WriteByte(':')
		b.WriteString(hash)
		b.WriteRune(InlineOpenE)
		if err := s.serializeChildren(b, n, false); err != nil {
			return err
		}
		b.WriteRune(InlineClose)
		return nil
	}

	b.WriteString(OpenTag(n, false))
	if err := s.serializeChildren(b, n, false); err != nil {
		return err
	}
	b.WriteString(CloseTag(n))
	return nil
}

// SelfCloseTagOrPair renders n as self-closing if it has no children,
// otherwise as an open/children/close triple, for the rare protected_inline
// element that does carry children (e.g. a non-empty w:tab-like element).
func SelfCloseTagOrPair(n *Node) string {
	if len(n.Children) == 0 {
		return SelfCloseTag(n, true)
	}
	var b strings.Builder
	b.WriteString(OpenTag(n, true))
	for _, c := range n.Children {
		if c.Type == TextNode || c.Type == CDataNode {
			b.WriteString(escapeXMLText(c.Data, false))
		}
	}
	b.WriteString(CloseTag(n))
	return b.String()
}

func firstChildProtected(tags *TagClassification, n *Node) bool {
	for _, c := range n.Children {
		if c.Type == ElementNode {
			return tags.IsProtected(c.Name) || c.HasAttr(attrProtect)
		}
		if c.Type == TextNode && isWhitespaceOnly(c.Data) {
			continue
		}
		return false
	}
	return false
}

// isOnlyChild reports whether n is the sole element child of its parent
// (text siblings allowed only if pure whitespace), recursively up through
// inline parents, per spec.md §4.2.
func isOnlyChild(tags *TagClassification, n *Node) bool {
	parent := n.Parent
	if parent == nil {
		return true
	}
	count := 0
	for _, c := range parent.Children {
		if c.Type == ElementNode {
			count++
		} else if c.Type == TextNode && !isWhitespaceOnly(c.Data) {
			return false
		}
	}
	if count != 1 {
		return false
	}
	if tags.IsInline(parent.Name) {
		return isOnlyChild(tags, parent)
	}
	return true
}

// hasBlockChild reports whether n contains any descendant element that is
// neither inline nor protected-inline, per spec.md §4.2.
func hasBlockChild(tags *TagClassification, n *Node) bool {
	for _, c := range n.Children {
		if c.Type != ElementNode {
			continue
		}
		if !tags.IsInline(c.Name) && !tags.IsProtectedInline(c.Name) {
			return true
		}
		if hasBlockChild(tags, c) {
			return true
		}
	}
	return false
}
