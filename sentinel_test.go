package transfuse

import "testing"

func TestContainsReservedSentinel(t *testing.T) {
	if _, bad := ContainsReservedSentinel("plain text"); bad {
		t.Error("plain text should not contain a reserved sentinel")
	}
	r, bad := ContainsReservedSentinel("before" + string(InlineOpenB) + "after")
	if !bad {
		t.Fatal("expected a reserved sentinel")
	}
	if r != InlineOpenB {
		t.Errorf("got %q", r)
	}
}

func TestEscapeUnescapeSentinelsRoundTrip(t *testing.T) {
	original := "a" + string(InlineOpenB) + "b" + string(BlockOpenE) + "c"
	escaped := escapeSentinels(original)
	if _, bad := ContainsReservedSentinel(escaped); bad {
		t.Error("escaped text should no longer contain a bare reserved sentinel")
	}
	restored := unescapeSentinels(escaped)
	if restored != original {
		t.Errorf("got %q, want %q", restored, original)
	}
}

func TestEscapeSentinelsNoOpOnPlainText(t *testing.T) {
	s := "nothing special here"
	if escapeSentinels(s) != s {
		t.Error("expected no change for text with no reserved sentinels")
	}
}

func TestReservedSentinelsAreDistinct(t *testing.T) {
	seen := make(map[rune]bool)
	for _, r := range reservedSentinels {
		if seen[r] {
			t.Errorf("duplicate sentinel %U", r)
		}
		seen[r] = true
	}
	if len(reservedSentinels) != 6 {
		t.Errorf("expected 6 reserved sentinels, got %d", len(reservedSentinels))
	}
}
