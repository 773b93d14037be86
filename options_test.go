package transfuse

import (
	"strings"
	"testing"
)

func TestWithDiagnosticsWritesEachDiagnostic(t *testing.T) {
	var buf strings.Builder
	state := newTestStateStore()
	doc := NewDocument(HTML, state, WithDiagnostics(&buf))

	content := wrapBlockMarker("2-xyz", "untranslated text")
	if _, err := doc.Inject(content, nil); err != nil {
		t.Fatalf("Inject: %v", err)
	}

	if !strings.Contains(buf.String(), "2-xyz") {
		t.Errorf("expected the diagnostic sink to record the missing block id, got %q", buf.String())
	}
}

func TestWithDiagnosticsDefaultsToDiscard(t *testing.T) {
	state := newTestStateStore()
	doc := NewDocument(HTML, state)

	content := wrapBlockMarker("2-xyz", "untranslated text")
	if _, err := doc.Inject(content, nil); err != nil {
		t.Fatalf("Inject: %v", err)
	}
	if len(doc.Diagnostics()) != 1 {
		t.Fatalf("expected the diagnostic to still be collected even with no sink configured")
	}
}
