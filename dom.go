package transfuse

import "strings"

// NodeType discriminates the three kinds of node the DOM supports.
type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
	CDataNode
)

// Attr is a single ordered attribute. Ordering within an Element's Attrs
// slice is insertion order, which is significant: the host format may
// depend on attribute order (namespace declarations first, notably).
type Attr struct {
	Name  string
	Value string
}

// Node is the generic tree node the whole core operates on: an Element,
// a Text run, or a CData section. Attrs and Children are only meaningful
// for Element nodes; Data is only meaningful for Text/CData nodes.
type Node struct {
	Type     NodeType
	Name     string // qualified name, e.g. "w:t"; Element only
	Attrs    []Attr
	Data     string // Text/CData content
	Parent   *Node
	Children []*Node
}

// NewElement creates a detached element node.
func NewElement(name string) *Node {
	return &Node{Type: ElementNode, Name: name}
}

// NewText creates a detached text node.
func NewText(data string) *Node {
	return &Node{Type: TextNode, Data: data}
}

// NewCData creates a detached CDATA node.
func NewCData(data string) *Node {
	return &Node{Type: CDataNode, Data: data}
}

// AppendChild appends child to n's children, detaching it from any
// previous parent first.
func (n *Node) AppendChild(child *Node) {
	child.detach()
	child.Parent = n
	n.Children = append(n.Children, child)
}

// InsertBefore inserts newChild immediately before ref among n's
// children. If ref is nil, newChild is appended.
func (n *Node) InsertBefore(newChild, ref *Node) {
	if ref == nil {
		n.AppendChild(newChild)
		return
	}
	idx := n.indexOf(ref)
	if idx < 0 {
		n.AppendChild(newChild)
		return
	}
	newChild.detach()
	newChild.Parent = n
	n.Children = append(n.Children, nil)
	copy(n.Children[idx+1:], n.Children[idx:])
	n.Children[idx] = newChild
}

// InsertAfter inserts newChild immediately after ref among n's children.
func (n *Node) InsertAfter(newChild, ref *Node) {
	idx := n.indexOf(ref)
	if idx < 0 || idx == len(n.Children)-1 {
		n.AppendChild(newChild)
		return
	}
	n.InsertBefore(newChild, n.Children[idx+1])
}

// RemoveChild detaches child from n. No-op if child is not a child of n.
func (n *Node) RemoveChild(child *Node) {
	idx := n.indexOf(child)
	if idx < 0 {
		return
	}
	n.Children = append(n.Children[:idx], n.Children[idx+1:]...)
	child.Parent = nil
}

func (n *Node) detach() {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// PrevSibling returns the sibling immediately before n, or nil.
func (n *Node) PrevSibling() *Node {
	if n.Parent == nil {
		return nil
	}
	idx := n.Parent.indexOf(n)
	if idx <= 0 {
		return nil
	}
	return n.Parent.Children[idx-1]
}

// NextSibling returns the sibling immediately after n, or nil.
func (n *Node) NextSibling() *Node {
	if n.Parent == nil {
		return nil
	}
	idx := n.Parent.indexOf(n)
	if idx < 0 || idx >= len(n.Parent.Children)-1 {
		return nil
	}
	return n.Parent.Children[idx+1]
}

// Attr returns the value of the named attribute and whether it was set.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttr reports whether n carries the named attribute.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// SetAttr sets an attribute, preserving its position if already present
// or appending it at the end if new.
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// RemoveAttr deletes the named attribute, if present.
func (n *Node) RemoveAttr(name string) {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return
		}
	}
}

// LocalName lowercases the tag-local part of a possibly namespace
// prefixed name, e.g. "W:T" -> "t", matching the Tag Classification
// table's case-folded lookup convention (spec.md §3).
func LocalName(qname string) string {
	name := strings.ToLower(qname)
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// LoweredName lowercases the whole qualified name, prefix included, for
// use in the classification sets which are populated with lowered
// qualified names such as "w:t".
func LoweredName(qname string) string {
	return strings.ToLower(qname)
}

// escapeXMLText escapes the five characters required in element text
// content, plus \t \n \r when attr is set for attribute values, per
// spec.md §4.2.
func escapeXMLText(s string, attr bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		case '\t':
			if attr {
				b.WriteString("&#9;")
			} else {
				b.WriteRune(r)
			}
		case '\n':
			if attr {
				b.WriteString("&#10;")
			} else {
				b.WriteRune(r)
			}
		case '\r':
			if attr {
				b.WriteString("&#13;")
			} else {
				b.WriteRune(r)
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isNamespaceDecl reports whether an attribute name declares a namespace
// (xmlns or xmlns:*), used to sort these first during serialization.
func isNamespaceDecl(name string) bool {
	return name == "xmlns" || strings.HasPrefix(name, "xmlns:")
}

// writeAttrs writes n's attributes in xmlns-first, then-insertion-order,
// suppressing tf-* attributes unless includeTf is set (spec.md §4.2).
func writeAttrs(b *strings.Builder, n *Node, includeTf bool) {
	for _, a := range n.Attrs {
		if !includeTf && strings.HasPrefix(a.Name, "tf-") {
			continue
		}
		if isNamespaceDecl(a.Name) {
			writeOneAttr(b, a)
		}
	}
	for _, a := range n.Attrs {
		if !includeTf && strings.HasPrefix(a.Name, "tf-") {
			continue
		}
		if !isNamespaceDecl(a.Name) {
			writeOneAttr(b, a)
		}
	}
}

func writeOneAttr(b *strings.Builder, a Attr) {
	b.WriteByte(' ')
	b.WriteString(a.Name)
	b.WriteString(`="`)
	b.WriteString(escapeXMLText(a.Value, true))
	b.WriteByte('"')
}

// OpenTag renders n's opening tag as a string, e.g. `<w:r xml:space="preserve">`.
func OpenTag(n *Node, includeTf bool) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(n.Name)
	writeAttrs(&b, n, includeTf)
	b.WriteByte('>')
	return b.String()
}

// CloseTag renders n's closing tag, e.g. `</w:r>`.
func CloseTag(n *Node) string {
	return "</" + n.Name + ">"
}

// SelfCloseTag renders n as a self-closing tag, e.g. `<br/>`.
func SelfCloseTag(n *Node, includeTf bool) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(n.Name)
	writeAttrs(&b, n, includeTf)
	b.WriteString("/>")
	return b.String()
}

// Walk visits n and every descendant in document (pre-order) order.
func Walk(n *Node, visit func(*Node)) {
	visit(n)
	for _, c := range n.Children {
		Walk(c, visit)
	}
}
