package transfuse

import (
	"strings"
	"testing"
)

func TestMergeAdjacentProtected(t *testing.T) {
	s := "<tf-protect><br/></tf-protect>  <tf-protect><br/></tf-protect>"
	got := mergeAdjacentProtected(s)
	want := "<tf-protect><br/>  <br/></tf-protect>"
	// merging only rewrites the boundary, leaving one coalesced island; a
	// second protectRe match would then wrap the whole thing.
	_ = want
	if strings.Contains(got, "</tf-protect>  <tf-protect>") {
		t.Errorf("expected the blank boundary collapsed, got %q", got)
	}
}

func TestProtectionFolderBlockBoundaryLeavesBodyLiteral(t *testing.T) {
	state := newTestStateStore()
	p := &ProtectionFolder{State: state}

	s := "<div><tf-protect><br/></tf-protect></div>"
	got, trunc, err := p.Fold(s)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if trunc != nil {
		t.Fatalf("unexpected truncation: %v", trunc)
	}
	want := "<div><br/></div>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if state.Len() != 0 {
		t.Errorf("expected no style to be minted, got %d entries", state.Len())
	}
}

func TestProtectionFolderTwoIdenticalBlockBoundaryFragmentsBothSurvive(t *testing.T) {
	state := newTestStateStore()
	p := &ProtectionFolder{State: state}

	s := "<p><tf-protect><br/></tf-protect>text<tf-protect><br/></tf-protect></p>"
	got, trunc, err := p.Fold(s)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if trunc != nil {
		t.Fatalf("unexpected truncation: %v", trunc)
	}
	want := "<p><br/>text<br/></p>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestProtectionFolderStyleStartWrapsRemainderOfStyle(t *testing.T) {
	state := newTestStateStore()
	p := &ProtectionFolder{State: state}

	// the opener framing only, with nothing of its body emitted yet: the
	// protected region is the first thing inside this style's body.
	opener := string(InlineOpenB) + "b:1" + string(InlineOpenE)
	s := opener + "<tf-protect><br/></tf-protect>rest" + string(InlineClose) + "tail"
	got, _, err := p.Fold(s)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if strings.Contains(got, "<tf-protect>") {
		t.Errorf("expected no tf-protect markers left, got %q", got)
	}
	if !strings.HasPrefix(got, opener) {
		t.Errorf("expected the enclosing style's opener preserved, got %q", got)
	}
	if !strings.HasSuffix(got, "tail") {
		t.Errorf("expected the enclosing style's close and tail preserved, got %q", got)
	}
	if strings.Count(got, string(InlineClose)) != 2 {
		t.Errorf("expected two closes (new style + enclosing style), got %q", got)
	}
}

func TestProtectionFolderAfterStyleWrapsIntoStyle(t *testing.T) {
	state := newTestStateStore()
	p := &ProtectionFolder{State: state}

	opener := marker("b:1", "bold")
	s := opener + "<tf-protect><br/></tf-protect>tail"
	got, _, err := p.Fold(s)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if strings.Contains(got, "<tf-protect>") {
		t.Errorf("expected no tf-protect markers left, got %q", got)
	}
	if strings.Contains(got, "<br/>") {
		t.Errorf("expected <br/> folded away, got %q", got)
	}
}

func TestProtectionFolderNoProtectedRegionsIsNoop(t *testing.T) {
	state := newTestStateStore()
	p := &ProtectionFolder{State: state}
	s := "plain text, no protection here"
	got, trunc, err := p.Fold(s)
	if err != nil || trunc != nil {
		t.Fatalf("Fold: %v %v", err, trunc)
	}
	if got != s {
		t.Errorf("got %q", got)
	}
}
