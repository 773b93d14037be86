package html

import (
	"strings"
	"testing"

	transfuse "github.com/apertium/transfuse-go"
)

func TestParseFindsBodyAndTextContent(t *testing.T) {
	root, err := Parse(strings.NewReader(`<html><body><p>Hello <b>world</b>!</p></body></html>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	body := Body(root)
	if body == nil {
		t.Fatal("expected a body element")
	}
	if len(body.Children) != 1 || body.Children[0].Name != "p" {
		t.Fatalf("got body children %+v", body.Children)
	}
}

func TestRenderRoundTripsSimpleMarkup(t *testing.T) {
	root, err := Parse(strings.NewReader(`<html><body><p>Hello <b>world</b>!</p></body></html>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var buf strings.Builder
	if err := Render(&buf, root); err != nil {
		t.Fatalf("Render: %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, "<p>Hello <b>world</b>!</p>") {
		t.Errorf("got %q", got)
	}
}

func TestRenderDropsScratchAttributes(t *testing.T) {
	root, err := Parse(strings.NewReader(`<html><body><p>x</p></body></html>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p := Body(root).Children[0]
	p.SetAttr("tf-space-prefix", "  ")

	var buf strings.Builder
	if err := Render(&buf, root); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(buf.String(), "tf-space-prefix") {
		t.Errorf("expected tf-* scratch attributes to be dropped, got %q", buf.String())
	}
}

func TestParseDetectsComment(t *testing.T) {
	root, err := Parse(strings.NewReader(`<html><body><!-- note --><p>x</p></body></html>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	body := Body(root)
	if len(body.Children) == 0 || body.Children[0].Type != transfuse.CDataNode {
		t.Fatalf("expected comment converted to a CDataNode, got %+v", body.Children)
	}
}
