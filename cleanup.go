package transfuse

import (
	"regexp"
	"unicode"
)

// The five idempotent rewrites cleanup_styles applies (spec.md §4.5).
// RE2 has no backreferences within a pattern, so rule 5 (merge identical
// consecutive markers) is implemented as a manual scan rather than a
// single regex, unlike rules 1-4.
var (
	cleanupPrefixLettersIn = regexp.MustCompile(`([\p{L}\p{N}\p{M}]+)(` + inlineOpenerPattern + `)([\p{L}\p{N}\p{M}])`)
	cleanupSuffixLettersIn = regexp.MustCompile(`([\p{L}\p{N}\p{M}])(` + string(InlineClose) + `)([\p{L}\p{N}\p{M}]+)`)
	cleanupLeadingSpaceOut = regexp.MustCompile(`(` + inlineOpenerPattern + `)([\s\p{Z}]+)`)
	cleanupTrailingSpaceOut = regexp.MustCompile(`([\s\p{Z}]+)(` + string(InlineClose) + `)`)
)

// inlineOpenerPattern matches one full "U+E011 kind:hash U+E012" opener.
const inlineOpenerPattern = `\x{E011}[^\x{E012}\x{E011}]*\x{E012}`

var markerTokenRe = regexp.MustCompile(`\x{E011}([^\x{E012}]*)\x{E012}`)

// CleanupStyles implements cleanup_styles (spec.md §4.5): four regex
// rewrites plus a fifth merge pass, applied after extraction and again
// after injection. Designed so each rewrite is monotone (marker count
// never increases), making the whole function idempotent.
func CleanupStyles(s string) string {
	s = cleanupPrefixLettersIn.ReplaceAllString(s, "$2$1$3")
	s = cleanupSuffixLettersIn.ReplaceAllString(s, "$1$3$2")
	s = cleanupLeadingSpaceOut.ReplaceAllString(s, "$2$1")
	s = cleanupTrailingSpaceOut.ReplaceAllString(s, "$2$1")
	s = mergeIdenticalConsecutive(s)
	return s
}

// mergeIdenticalConsecutive collapses
// U+E011 k:h U+E012 body1 U+E013 [ws] U+E011 k:h U+E012 body2 U+E013
// into U+E011 k:h U+E012 body1 ws body2 U+E013, repeatedly, left to right.
func mergeIdenticalConsecutive(s string) string {
	runes := []rune(s)
	var out []rune
	i := 0
	for i < len(runes) {
		kindHash, body, end, ok := matchMarkerAt(runes, i)
		if !ok {
			out = append(out, runes[i])
			i++
			continue
		}
		// greedily absorb subsequent identical markers separated by blank
		j := end
		mergedBody := body
		for {
			wsEnd := j
			for wsEnd < len(runes) && isBlankRune(runes[wsEnd]) {
				wsEnd++
			}
			nextKindHash, nextBody, nextEnd, ok2 := matchMarkerAt(runes, wsEnd)
			if !ok2 || nextKindHash != kindHash {
				break
			}
			mergedBody += string(runes[j:wsEnd]) + nextBody
			j = nextEnd
		}
		out = append(out, InlineOpenB)
		out = append(out, []rune(kindHash)...)
		out = append(out, InlineOpenE)
		out = append(out, []rune(mergedBody)...)
		out = append(out, InlineClose)
		i = j
	}
	return string(out)
}

// matchMarkerAt reports whether a full inline marker starts at i, and if
// so returns its kind:hash, body, and the index just past the marker.
func matchMarkerAt(runes []rune, i int) (kindHash, body string, end int, ok bool) {
	if i >= len(runes) || runes[i] != InlineOpenB {
		return "", "", 0, false
	}
	j := i + 1
	start := j
	for j < len(runes) && runes[j] != InlineOpenE {
		j++
	}
	if j >= len(runes) {
		return "", "", 0, false
	}
	kindHash = string(runes[start:j])
	bodyStart := j + 1
	depth := 1
	k := bodyStart
	for k < len(runes) {
		switch runes[k] {
		case InlineOpenB:
			depth++
		case InlineClose:
			depth--
			if depth == 0 {
				return kindHash, string(runes[bodyStart:k]), k + 1, true
			}
		}
		k++
	}
	return "", "", 0, false
}

func isBlankRune(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || unicode.In(r, unicode.Zs, unicode.Zl, unicode.Zp)
}
