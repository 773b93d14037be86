// Package html is the HTML format driver: it converts between raw HTML
// text and the generic transfuse.Node tree, the role gotlai's
// processor.HTMLProcessor plays for a goquery/x-net tree, adapted from a
// hash-keyed TextNode slice to the core's in-place marker-mutated DOM.
package html

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"

	transfuse "github.com/apertium/transfuse-go"
)

// Parse reads an HTML document and returns it as a transfuse.Node tree
// rooted at a synthetic "#document" element. Parsing goes through
// goquery, the way gotlai's HTMLProcessor.Extract does, so the same
// tag-soup repair (implicit html/head/body insertion, auto-closing)
// happens before the tree is walked node-by-node into the core's generic
// representation.
func Parse(r io.Reader) (*transfuse.Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("format/html: parse: %w", err)
	}
	if len(doc.Nodes) == 0 {
		return nil, fmt.Errorf("format/html: empty document")
	}
	root := doc.Nodes[0]
	for root.Parent != nil {
		root = root.Parent
	}
	return convert(root), nil
}

func convert(n *xhtml.Node) *transfuse.Node {
	switch n.Type {
	case xhtml.DocumentNode:
		d := transfuse.NewElement("#document")
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == xhtml.DoctypeNode {
				continue
			}
			d.AppendChild(convert(c))
		}
		return d
	case xhtml.ElementNode:
		e := transfuse.NewElement(n.Data)
		for _, a := range n.Attr {
			name := a.Key
			if a.Namespace != "" {
				name = a.Namespace + ":" + a.Key
			}
			e.SetAttr(name, a.Val)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			e.AppendChild(convert(c))
		}
		return e
	case xhtml.CommentNode:
		return &transfuse.Node{Type: transfuse.CDataNode, Name: "#comment", Data: n.Data}
	default: // TextNode
		return transfuse.NewText(n.Data)
	}
}

// Body locates the <body> element within a tree returned by Parse — the
// container document.Document.Extract needs, one level above the real
// top-level block elements, per Document.Extract's wrapper contract
// (document.go). Returns nil if root carries no body (a bare fragment).
func Body(root *transfuse.Node) *transfuse.Node {
	var body *transfuse.Node
	transfuse.Walk(root, func(n *transfuse.Node) {
		if body == nil && n.Type == transfuse.ElementNode && n.Name == "body" {
			body = n
		}
	})
	return body
}

// Render serializes root (as returned by Parse, with its <body> content
// possibly replaced by a restored tree) back to HTML, going back through
// x/net/html.Render the way goquery.Document.Html does internally.
// tf-* scratch attributes are dropped; any left over at this point is
// itself a bug upstream (Document.Inject is expected to have cleaned
// them all up).
func Render(w io.Writer, root *transfuse.Node) error {
	return xhtml.Render(w, unconvert(root))
}

func unconvert(n *transfuse.Node) *xhtml.Node {
	switch n.Type {
	case transfuse.ElementNode:
		if n.Name == "#document" {
			doc := &xhtml.Node{Type: xhtml.DocumentNode}
			for _, c := range n.Children {
				doc.AppendChild(unconvert(c))
			}
			return doc
		}
		e := &xhtml.Node{Type: xhtml.ElementNode, Data: n.Name}
		for _, a := range n.Attrs {
			if strings.HasPrefix(a.Name, "tf-") {
				continue
			}
			e.Attr = append(e.Attr, xhtml.Attribute{Key: a.Name, Val: a.Value})
		}
		for _, c := range n.Children {
			e.AppendChild(unconvert(c))
		}
		return e
	case transfuse.CDataNode:
		return &xhtml.Node{Type: xhtml.CommentNode, Data: n.Data}
	default: // TextNode
		return &xhtml.Node{Type: xhtml.TextNode, Data: n.Data}
	}
}
