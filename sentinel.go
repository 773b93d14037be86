package transfuse

import (
	"strings"
	"unicode/utf8"
)

// Sentinel Alphabet: fixed private-use code points that delimit inline
// and block markers in the textual stream. None of these may occur in a
// source document or in translated text; SaveStyles rejects source text
// that already contains one (see WithReservedSentinelPolicy).
const (
	InlineOpenB  = '' // TFI_OPEN_B: opens "kind:hash" framing of an inline marker
	InlineOpenE  = '' // TFI_OPEN_E: closes the framing, opens the body
	InlineClose  = '' // TFI_CLOSE: closes the body
	FormatScratch = '' // TF_SENTINEL: reserved for format pre-pass scratch use

	BlockOpenB  = '' // TFB_OPEN_B / protected-inline marker open
	BlockOpenE  = '' // TFB_OPEN_E / protected-inline marker close
)

// reservedSentinels is every code point §6 reserves at the wire level.
var reservedSentinels = []rune{InlineOpenB, InlineOpenE, InlineClose, FormatScratch, BlockOpenB, BlockOpenE}

// ContainsReservedSentinel reports whether s contains any code point from
// the reserved sentinel alphabet, and if so, which one.
func ContainsReservedSentinel(s string) (rune, bool) {
	for _, r := range s {
		for _, res := range reservedSentinels {
			if r == res {
				return r, true
			}
		}
	}
	return 0, false
}

// ReservedSentinelPolicy controls what happens when source text already
// contains a reserved sentinel code point. Inject does not consult it.
// spec.md §9 leaves this an open question ("do not guess intent"); see
// DESIGN.md Open Question 1 for the resolution this module implements.
type ReservedSentinelPolicy int

const (
	// RejectReservedSentinels aborts extraction with a fatal StreamError.
	// This is the default.
	RejectReservedSentinels ReservedSentinelPolicy = iota
	// EscapeReservedSentinels replaces each occurrence with a private
	// escape sequence that round-trips but is not itself a sentinel.
	EscapeReservedSentinels
)

const sentinelEscapePrefix = "esc:"

// escapeSentinels rewrites reserved sentinel code points in s into a
// reversible escape sequence built from the scratch sentinel, used only
// when the document's policy is EscapeReservedSentinels.
func escapeSentinels(s string) string {
	var b strings.Builder
	for _, r := range s {
		escaped := false
		for _, res := range reservedSentinels {
			if r == res {
				b.WriteString(sentinelEscapePrefix)
				b.WriteRune(r)
				b.WriteRune(FormatScratch)
				escaped = true
				break
			}
		}
		if !escaped {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// unescapeSentinels reverses escapeSentinels.
func unescapeSentinels(s string) string {
	var b strings.Builder
	for len(s) > 0 {
		idx := strings.Index(s, sentinelEscapePrefix)
		if idx < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:idx])
		rest := s[idx+len(sentinelEscapePrefix):]
		r, size := utf8.DecodeRuneInString(rest)
		b.WriteRune(r)
		rest = rest[size:]
		// skip the trailing FormatScratch terminator
		_, size2 := utf8.DecodeRuneInString(rest)
		s = rest[size2:]
	}
	return b.String()
}
