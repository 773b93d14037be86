package transfuse

import "testing"

func TestNodeAttrSetGet(t *testing.T) {
	n := NewElement("p")
	n.SetAttr("class", "intro")
	v, ok := n.Attr("class")
	if !ok || v != "intro" {
		t.Errorf("got (%q, %v)", v, ok)
	}
	n.SetAttr("class", "body")
	if v, _ := n.Attr("class"); v != "body" {
		t.Errorf("expected overwrite, got %q", v)
	}
	if len(n.Attrs) != 1 {
		t.Errorf("expected attribute position preserved, got %d attrs", len(n.Attrs))
	}
}

func TestNodeRemoveAttr(t *testing.T) {
	n := NewElement("p")
	n.SetAttr("a", "1")
	n.SetAttr("b", "2")
	n.RemoveAttr("a")
	if n.HasAttr("a") {
		t.Error("expected a to be removed")
	}
	if v, ok := n.Attr("b"); !ok || v != "2" {
		t.Errorf("b should survive removal of a, got (%q, %v)", v, ok)
	}
}

func TestAppendChildDetachesFromPreviousParent(t *testing.T) {
	p1 := NewElement("p")
	p2 := NewElement("div")
	child := NewText("x")
	p1.AppendChild(child)
	p2.AppendChild(child)

	if len(p1.Children) != 0 {
		t.Error("expected child removed from original parent")
	}
	if len(p2.Children) != 1 || child.Parent != p2 {
		t.Error("expected child attached to new parent")
	}
}

func TestInsertBeforeAndAfter(t *testing.T) {
	parent := NewElement("p")
	a := NewText("a")
	b := NewText("b")
	c := NewText("c")
	parent.AppendChild(a)
	parent.AppendChild(c)
	parent.InsertBefore(b, c)

	if len(parent.Children) != 3 || parent.Children[1] != b {
		t.Fatalf("expected [a b c], got %v", parent.Children)
	}

	d := NewText("d")
	parent.InsertAfter(d, a)
	if parent.Children[1] != d {
		t.Fatalf("expected d right after a, got %v", parent.Children)
	}
}

func TestPrevNextSibling(t *testing.T) {
	parent := NewElement("p")
	a, b, c := NewText("a"), NewText("b"), NewText("c")
	parent.AppendChild(a)
	parent.AppendChild(b)
	parent.AppendChild(c)

	if b.PrevSibling() != a || b.NextSibling() != c {
		t.Error("unexpected sibling links")
	}
	if a.PrevSibling() != nil || c.NextSibling() != nil {
		t.Error("expected nil at the ends")
	}
}

func TestLocalNameAndLoweredName(t *testing.T) {
	if LocalName("W:T") != "t" {
		t.Errorf("got %q", LocalName("W:T"))
	}
	if LocalName("p") != "p" {
		t.Errorf("got %q", LocalName("p"))
	}
	if LoweredName("W:T") != "w:t" {
		t.Errorf("got %q", LoweredName("W:T"))
	}
}

func TestOpenTagSuppressesTfAttrsByDefault(t *testing.T) {
	n := NewElement("p")
	n.SetAttr("class", "x")
	n.SetAttr("tf-space-prefix", " ")
	if got := OpenTag(n, false); got != `<p class="x">` {
		t.Errorf("got %q", got)
	}
	if got := OpenTag(n, true); got != `<p class="x" tf-space-prefix=" ">` {
		t.Errorf("got %q", got)
	}
}

func TestWriteAttrsNamespacesFirst(t *testing.T) {
	n := NewElement("p")
	n.SetAttr("class", "x")
	n.SetAttr("xmlns:w", "uri")
	got := OpenTag(n, false)
	want := `<p xmlns:w="uri" class="x">`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEscapeXMLText(t *testing.T) {
	if got := escapeXMLText(`<a & "b" 'c'>`, false); got != `&lt;a &amp; &quot;b&quot; &apos;c&apos;&gt;` {
		t.Errorf("got %q", got)
	}
	if got := escapeXMLText(`"b"`, true); got != `&quot;b&quot;` {
		t.Errorf("got %q", got)
	}
}

func TestSelfCloseTag(t *testing.T) {
	n := NewElement("br")
	if got := SelfCloseTag(n, false); got != "<br/>" {
		t.Errorf("got %q", got)
	}
}

func TestWalkVisitsPreOrder(t *testing.T) {
	root := NewElement("p")
	a := NewElement("a")
	b := NewElement("b")
	root.AppendChild(a)
	root.AppendChild(b)

	var order []string
	Walk(root, func(n *Node) {
		if n.Type == ElementNode {
			order = append(order, n.Name)
		}
	})
	if len(order) != 3 || order[0] != "p" || order[1] != "a" || order[2] != "b" {
		t.Errorf("got %v", order)
	}
}
