package transfuse

import "regexp"

// Two distinct whitespace vocabularies, per spec.md §4.1: the narrow
// class (no line terminators) used when classifying whether a text node
// is whitespace-only, and the wider "blank" class (line terminators and
// every Unicode separator) used when trimming the prefix/suffix of a
// mixed text node. Grounded on dom.cpp's rx_space_only vs rx_blank_*
// regex pair.
var (
	wsOnlyRe     = regexp.MustCompile(`^[\t \p{Zs}]+$`)
	blankPrefix  = regexp.MustCompile(`^[\s\p{Z}]+`)
	blankSuffix  = regexp.MustCompile(`[\s\p{Z}]+$`)
)

func isWhitespaceOnly(s string) bool {
	return s != "" && wsOnlyRe.MatchString(s)
}

const (
	attrSpacePrefix = "tf-space-prefix"
	attrSpaceSuffix = "tf-space-suffix"
	attrSpaceBefore = "tf-space-before"
	attrSpaceAfter  = "tf-space-after"
	attrProtect     = "tf-protect"
)

// WhitespaceFolder implements the Whitespace Folder component (spec.md
// §4.1): Save canonicalizes whitespace-only text nodes and the leading/
// trailing whitespace of mixed text nodes into tf-space-* attributes;
// Create and Restore reverse the process.
type WhitespaceFolder struct {
	Tags *TagClassification
}

// Save walks root pre-order, skipping descent into protected elements,
// folding whitespace into tf-space-* attributes.
func (w *WhitespaceFolder) Save(n *Node) {
	if n.Type != ElementNode {
		return
	}
	if w.Tags.IsProtected(n.Name) || n.HasAttr(attrProtect) {
		return
	}

	children := append([]*Node(nil), n.Children...)
	var keep []*Node

	for i, child := range children {
		if child.Type != TextNode {
			keep = append(keep, child)
			continue
		}

		if isWhitespaceOnly(child.Data) {
			var left, right *Node
			if i > 0 {
				left = children[i-1]
			}
			if i < len(children)-1 {
				right = children[i+1]
			}
			w.foldWhitespaceOnly(n, left, right, child.Data)
			continue // drop the whitespace-only node
		}

		prefix := blankPrefix.FindString(child.Data)
		suffix := blankSuffix.FindString(child.Data)
		if len(prefix)+len(suffix) > len(child.Data) {
			// the whole node is blank under the wide class but missed
			// isWhitespaceOnly (e.g. pure newlines); treat as suffix-only
			prefix = ""
		}
		rest := child.Data[len(prefix) : len(child.Data)-len(suffix)]

		if prefix != "" {
			var left *Node
			if i > 0 {
				left = children[i-1]
			}
			w.attachAfterOrPrefix(n, left, prefix)
		}
		if suffix != "" {
			var right *Node
			if i < len(children)-1 {
				right = children[i+1]
			}
			w.attachBeforeOrSuffix(n, right, suffix)
		}

		child.Data = rest
		keep = append(keep, child)
	}

	n.Children = keep
	for _, c := range n.Children {
		w.Save(c)
	}
}

// foldWhitespaceOnly implements the policy table for a whitespace-only
// text node with neighbors left/right (spec.md §4.1).
func (w *WhitespaceFolder) foldWhitespaceOnly(parent, left, right *Node, data string) {
	switch {
	case left == nil:
		parent.SetAttr(attrSpacePrefix, data)
	case right == nil:
		parent.SetAttr(attrSpaceSuffix, data)
	case left.Type == ElementNode:
		left.SetAttr(attrSpaceAfter, data)
	case right.Type == ElementNode:
		right.SetAttr(attrSpaceBefore, data)
	case left.Type == TextNode:
		left.Data += data
	default:
		parent.SetAttr(attrSpaceSuffix, data)
	}
}

func (w *WhitespaceFolder) attachAfterOrPrefix(parent, left *Node, data string) {
	if left != nil && left.Type == ElementNode {
		left.SetAttr(attrSpaceAfter, data)
		return
	}
	parent.SetAttr(attrSpacePrefix, data)
}

func (w *WhitespaceFolder) attachBeforeOrSuffix(parent, right *Node, data string) {
	if right != nil && right.Type == ElementNode {
		right.SetAttr(attrSpaceBefore, data)
		return
	}
	parent.SetAttr(attrSpaceSuffix, data)
}

// Create synthesizes fresh text nodes for tf-space-* attributes whose
// neighbor text node no longer exists (the translation may have removed
// it), so Restore always has a text node to prepend/append to.
func (w *WhitespaceFolder) Create(n *Node) {
	if n.Type != ElementNode {
		return
	}
	for _, c := range append([]*Node(nil), n.Children...) {
		w.Create(c)
	}

	parent := n.Parent
	if parent != nil {
		if v, ok := n.Attr(attrSpaceAfter); ok && v != "" {
			next := n.NextSibling()
			if next == nil || next.Type != TextNode {
				parent.InsertAfter(NewText(""), n)
			}
		}
		if v, ok := n.Attr(attrSpaceBefore); ok && v != "" {
			prev := n.PrevSibling()
			if prev == nil || prev.Type != TextNode {
				parent.InsertBefore(NewText(""), n)
			}
		}
	}
	if v, ok := n.Attr(attrSpacePrefix); ok && v != "" {
		if len(n.Children) == 0 || n.Children[0].Type != TextNode {
			first := NewText("")
			first.Parent = n
			n.Children = append([]*Node{first}, n.Children...)
		}
	}
	if v, ok := n.Attr(attrSpaceSuffix); ok && v != "" {
		if len(n.Children) == 0 || n.Children[len(n.Children)-1].Type != TextNode {
			n.AppendChild(NewText(""))
		}
	}
}

// Restore walks the DOM after Create and, for each element carrying
// tf-space-* attributes, prepends/appends whitespace to the adjacent
// text node and removes the attribute. Order per spec.md §4.1:
// tf-space-after -> sibling after; tf-space-prefix -> first child;
// tf-space-before -> sibling before; tf-space-suffix -> last child.
func (w *WhitespaceFolder) Restore(n *Node) {
	if n.Type != ElementNode {
		return
	}

	if v, ok := n.Attr(attrSpaceAfter); ok {
		if next := n.NextSibling(); next != nil && next.Type == TextNode {
			next.Data = v + next.Data
		}
		n.RemoveAttr(attrSpaceAfter)
	}
	if v, ok := n.Attr(attrSpacePrefix); ok {
		if len(n.Children) > 0 && n.Children[0].Type == TextNode {
			n.Children[0].Data = v + n.Children[0].Data
		}
		n.RemoveAttr(attrSpacePrefix)
	}
	if v, ok := n.Attr(attrSpaceBefore); ok {
		if prev := n.PrevSibling(); prev != nil && prev.Type == TextNode {
			prev.Data += v
		}
		n.RemoveAttr(attrSpaceBefore)
	}
	if v, ok := n.Attr(attrSpaceSuffix); ok {
		if len(n.Children) > 0 && n.Children[len(n.Children)-1].Type == TextNode {
			n.Children[len(n.Children)-1].Data += v
		}
		n.RemoveAttr(attrSpaceSuffix)
	}

	for _, c := range append([]*Node(nil), n.Children...) {
		w.Restore(c)
	}
}
