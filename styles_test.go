package transfuse

import "testing"

func TestSaveStylesFoldsInlineElement(t *testing.T) {
	root := ParseXMLMust(t, "<p>Hello <b>world</b>!</p>")
	state := newTestStateStore()
	s := &StyleSerializer{Tags: HTML, State: state}

	got, err := s.SaveStyles(root)
	if err != nil {
		t.Fatalf("SaveStyles: %v", err)
	}

	want := "Hello " + string(InlineOpenB) + "b:1" + string(InlineOpenE) + "world" + string(InlineClose) + "!"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	open, close, ok, err := state.StyleByHash("b", "1")
	if err != nil || !ok {
		t.Fatalf("StyleByHash: ok=%v err=%v", ok, err)
	}
	if open != "<b>" || close != "</b>" {
		t.Errorf("got (%q, %q)", open, close)
	}
}

func TestSaveStylesLeavesBlockElementLiteral(t *testing.T) {
	root := ParseXMLMust(t, "<div><p>hi</p></div>")
	state := newTestStateStore()
	s := &StyleSerializer{Tags: HTML, State: state}

	got, err := s.SaveStyles(root)
	if err != nil {
		t.Fatalf("SaveStyles: %v", err)
	}
	if got != "<p>hi</p>" {
		t.Errorf("got %q", got)
	}
}

func TestSaveStylesProtectedInlineWrapped(t *testing.T) {
	root := ParseXMLMust(t, "<p>a<br/>b</p>")
	state := newTestStateStore()
	s := &StyleSerializer{Tags: HTML, State: state}

	got, err := s.SaveStyles(root)
	if err != nil {
		t.Fatalf("SaveStyles: %v", err)
	}
	want := "a<tf-protect><br/></tf-protect>b"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSaveStylesProtectedElementKeepsChildrenLiteral(t *testing.T) {
	root := ParseXMLMust(t, "<p>before<script>1 &lt; 2</script>after</p>")
	state := newTestStateStore()
	s := &StyleSerializer{Tags: HTML, State: state}

	got, err := s.SaveStyles(root)
	if err != nil {
		t.Fatalf("SaveStyles: %v", err)
	}
	want := "before<script>1 &lt; 2</script>after"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSaveStylesRejectsReservedSentinelInText(t *testing.T) {
	root := ParseXMLMust(t, "<p>x</p>")
	root.Children[0].Data = "bad" + string(InlineOpenB) + "text"
	state := newTestStateStore()
	s := &StyleSerializer{Tags: HTML, State: state}

	if _, err := s.SaveStyles(root); err == nil {
		t.Error("expected an error for reserved sentinel in source text")
	}
}

func TestIsOnlyChildSkipsWhitespaceSiblings(t *testing.T) {
	root := ParseXMLMust(t, "<p>  <b>x</b>  </p>")
	if !isOnlyChild(HTML, root.Children[1]) {
		t.Error("expected <b> to be the only element child, ignoring whitespace text")
	}
}

func TestHasBlockChildDetectsBlockDescendant(t *testing.T) {
	root := ParseXMLMust(t, "<span><div>x</div></span>")
	if !hasBlockChild(HTML, root) {
		t.Error("expected div (block) child to be detected")
	}
}
