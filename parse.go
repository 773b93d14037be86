package transfuse

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// ParseXML parses a complete XML document into the generic Node tree,
// preserving attribute order and namespace prefixes as written. Used both
// for the initial document parse and for the Block Extractor's re-parse
// of the Style Serializer's flattened output (spec.md §4.3 contract).
func ParseXML(content string) (*Node, error) {
	dec := xml.NewDecoder(strings.NewReader(content))
	dec.Strict = false

	var root *Node
	var stack []*Node

	for {
		tok, err := dec.RawToken()
		if err != nil {
			if err.Error() == "EOF" {
				if len(stack) > 0 {
					return nil, fmt.Errorf("unclosed element <%s>", stack[len(stack)-1].Name)
				}
				break
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := NewElement(qualifiedName(t.Name))
			for _, a := range t.Attr {
				n.Attrs = append(n.Attrs, Attr{Name: qualifiedName(a.Name), Value: a.Value})
			}
			if len(stack) > 0 {
				stack[len(stack)-1].AppendChild(n)
			} else {
				root = n
			}
			stack = append(stack, n)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unbalanced closing tag %s", t.Name.Local)
			}
			if top := stack[len(stack)-1]; top.Name != qualifiedName(t.Name) {
				return nil, fmt.Errorf("element <%s> closed by </%s>", top.Name, qualifiedName(t.Name))
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			stack[len(stack)-1].AppendChild(NewText(string(t)))

		case xml.Comment, xml.ProcInst, xml.Directive:
			// not part of the translatable structure; dropped
		}
	}

	if root == nil {
		return nil, fmt.Errorf("empty document")
	}
	return root, nil
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// SerializeXML renders the full tree back to a plain XML string,
// including tf-* attributes (they ride along until Restore consumes
// them), used by cmd/transfuse for injected.xml and by format/docx's
// Render.
func SerializeXML(root *Node) string {
	var b strings.Builder
	serializeNode(&b, root)
	return b.String()
}

// SerializeChildrenXML renders root's children (not root itself) back to
// a plain XML string, used to unwrap the synthetic fragment root Document
// introduces for re-parsing the Style Serializer's sibling sequence.
func SerializeChildrenXML(root *Node) string {
	var b strings.Builder
	for _, c := range root.Children {
		serializeNode(&b, c)
	}
	return b.String()
}

func serializeNode(b *strings.Builder, n *Node) {
	switch n.Type {
	case TextNode:
		b.WriteString(escapeXMLText(n.Data, false))
		return
	case CDataNode:
		b.WriteString("<![CDATA[")
		b.WriteString(n.Data)
		b.WriteString("]]>")
		return
	}
	if len(n.Children) == 0 {
		b.WriteString(SelfCloseTag(n, true))
		return
	}
	b.WriteString(OpenTag(n, true))
	for _, c := range n.Children {
		serializeNode(b, c)
	}
	b.WriteString(CloseTag(n))
}
