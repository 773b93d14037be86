package transfuse

import "testing"

type fakeDialect struct{}

func (fakeDialect) BlockOpen(id string) string   { return "<<" + id + ">>" }
func (fakeDialect) BlockBody(body string) string { return body }
func (fakeDialect) BlockClose(id string) string  { return "<</" + id + ">>" }

func TestBlockExtractorExtractsTextUnderAllowedParent(t *testing.T) {
	root := ParseXMLMust(t, "<tf-root><p>hello world</p></tf-root>")
	e := &BlockExtractor{Tags: HTML, Dialect: fakeDialect{}}

	blocks, wire, err := e.Extract(root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Body != "hello world" {
		t.Errorf("got body %q", blocks[0].Body)
	}
	if blocks[0].Ordinal != 1 {
		t.Errorf("got ordinal %d", blocks[0].Ordinal)
	}

	p := root.Children[0]
	if len(p.Children) != 1 || p.Children[0].Type != TextNode {
		t.Fatalf("expected text replaced with a marker, got %+v", p.Children)
	}
	want := string(BlockOpenB) + blocks[0].ID + string(BlockOpenE) + "hello world" +
		string(BlockOpenB) + blocks[0].ID + string(BlockOpenE)
	if p.Children[0].Data != want {
		t.Errorf("got %q, want %q", p.Children[0].Data, want)
	}

	wantWire := "<<" + blocks[0].ID + ">>hello world<</" + blocks[0].ID + ">>"
	if wire != wantWire {
		t.Errorf("got wire %q, want %q", wire, wantWire)
	}
}

func TestBlockExtractorSkipsNonTranslatableText(t *testing.T) {
	root := ParseXMLMust(t, "<tf-root><p>   </p></tf-root>")
	e := &BlockExtractor{Tags: HTML, Dialect: fakeDialect{}}

	blocks, _, err := e.Extract(root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("expected no blocks for whitespace-only text, got %d", len(blocks))
	}
}

func TestBlockExtractorSkipsProtectedSubtree(t *testing.T) {
	root := ParseXMLMust(t, "<tf-root><p><script>var x = 1</script></p></tf-root>")
	e := &BlockExtractor{Tags: HTML, Dialect: fakeDialect{}}

	blocks, _, err := e.Extract(root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("expected protected content to be skipped, got %d blocks", len(blocks))
	}
}

func TestBlockExtractorSkipsBareProtectedMarker(t *testing.T) {
	root := ParseXMLMust(t, "<tf-root><div>"+string(BlockOpenB)+"P:1"+string(BlockOpenE)+"</div></tf-root>")
	e := &BlockExtractor{Tags: HTML, Dialect: fakeDialect{}}

	blocks, _, err := e.Extract(root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("expected a bare protected marker to be left alone, got %d blocks", len(blocks))
	}
}

func TestBlockExtractorExtractsEmbeddedInlineMarker(t *testing.T) {
	hash := "1"
	body := "hello " + string(InlineOpenB) + "b:" + hash + string(InlineOpenE) + "world" + string(InlineClose) + "!"
	root := ParseXMLMust(t, "<tf-root><p>"+body+"</p></tf-root>")
	e := &BlockExtractor{Tags: HTML, Dialect: fakeDialect{}}

	blocks, _, err := e.Extract(root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(blocks) != 1 || blocks[0].Body != body {
		t.Fatalf("expected one block carrying the embedded inline marker verbatim, got %+v", blocks)
	}
}

func TestBlockExtractorExtractsTagAttr(t *testing.T) {
	root := ParseXMLMust(t, `<tf-root><img alt="a cat"/></tf-root>`)
	e := &BlockExtractor{Tags: HTML, Dialect: fakeDialect{}}

	blocks, _, err := e.Extract(root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(blocks) != 1 || blocks[0].Body != "a cat" || blocks[0].NodeType != "attr" {
		t.Fatalf("got %+v", blocks)
	}
}

func TestBlockIDFormat(t *testing.T) {
	id := BlockID(1, "hello")
	if id == "" {
		t.Fatal("expected non-empty id")
	}
	parts := 0
	for _, r := range id {
		if r == '-' {
			parts++
		}
	}
	if parts != 1 {
		t.Errorf("expected exactly one '-' separator, got id %q", id)
	}
	if id[:1] != "1" {
		t.Errorf("expected id to start with ordinal, got %q", id)
	}
}

func TestBlockIDDeterministic(t *testing.T) {
	if BlockID(1, "hello") != BlockID(1, "hello") {
		t.Error("expected deterministic id for identical (ordinal, body)")
	}
	if BlockID(1, "hello") == BlockID(1, "goodbye") {
		t.Error("expected different bodies to produce different ids")
	}
}

func TestWrapBlockMarkerFraming(t *testing.T) {
	got := wrapBlockMarker("1-abc", "hello")
	want := string(BlockOpenB) + "1-abc" + string(BlockOpenE) + "hello" + string(BlockOpenB) + "1-abc" + string(BlockOpenE)
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
