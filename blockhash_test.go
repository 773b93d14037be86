package transfuse

import "testing"

func TestHashBlockBodyStableAndTrimmed(t *testing.T) {
	a := hashBlockBody("hello world")
	b := hashBlockBody("  hello world  ")
	if a != b {
		t.Error("expected whitespace trimming to make these equal")
	}
	c := hashBlockBody("hello world!")
	if a == c {
		t.Error("expected different bodies to hash differently")
	}
}
