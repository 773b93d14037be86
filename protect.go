package transfuse

import (
	"regexp"
	"strings"
)

// mergeAdjacentProtected implements Pass A of protect_to_styles
// (spec.md §4.4): coalesces protected islands separated only by blank
// text, `</tf-protect> W <tf-protect>` -> `W`.
var mergeAdjacentProtectedRe = regexp.MustCompile(`</tf-protect>([\s\p{Z}]*)<tf-protect>`)

func mergeAdjacentProtected(s string) string {
	for {
		next := mergeAdjacentProtectedRe.ReplaceAllString(s, "$1")
		if next == s {
			return s
		}
		s = next
	}
}

var (
	protectRe = regexp.MustCompile(`<tf-protect>((?s).*?)</tf-protect>`)

	blockStartSuffix = regexp.MustCompile(`>[\s\p{Zs}]*$`)
	blockEndPrefix   = regexp.MustCompile(`^[\s\p{Zs}]*<`)
	styleStartSuffix = regexp.MustCompile(inlineOpenerPattern + `[\s\p{Zs}]*$`)
	afterStyleSuffix = regexp.MustCompile(string(InlineClose) + `[\s\p{Zs}]*$`)
	plainTokenSuffix = regexp.MustCompile(`[^>\s\p{Z}\x{E012}]+[\s\p{Zs}]*$`)

	trailingMarkerRe  = regexp.MustCompile(inlineOpenerPattern + `[^\x{E011}\x{E013}]*` + string(InlineClose) + `$`)
	trailingTokenRe   = regexp.MustCompile(`[^>\s\p{Z}\x{E012}]+$`)
	styleOpenerOnlyRe = regexp.MustCompile(inlineOpenerPattern)
)

// ProtectionFolder implements protect_to_styles (spec.md §4.4): after
// serialization, rewrites <tf-protect>...</tf-protect> regions into
// synthetic inline styles attached to an adjacent token or style. At a
// block boundary, or wherever there is nothing to attach a marker to,
// the protected body is left in place literally — the content was
// already safe to leave untranslated, so nothing needs to be minted.
type ProtectionFolder struct {
	State StateStore
}

const protectionFoldCap = 100

// Fold runs Pass A then Pass B on s, returning the folded buffer and any
// non-fatal TruncationError if the iteration cap was hit.
func (p *ProtectionFolder) Fold(s string) (string, *TruncationError, error) {
	s = mergeAdjacentProtected(s)

	for i := 0; i < protectionFoldCap; i++ {
		loc := protectRe.FindStringSubmatchIndex(s)
		if loc == nil {
			return s, nil, nil
		}
		matchStart, matchEnd := loc[0], loc[1]
		bodyStart, bodyEnd := loc[2], loc[3]
		prefix := s[:matchStart]
		suffix := s[matchEnd:]
		body := s[bodyStart:bodyEnd]

		next, err := p.applyDisposition(prefix, body, suffix)
		if err != nil {
			return s, nil, err
		}
		s = next
	}

	// one more check: cap hit but maybe it just converged on iteration 100
	if protectRe.FindStringIndex(s) == nil {
		return s, nil, nil
	}
	return s, &TruncationError{Stage: "protect", Iterations: protectionFoldCap}, nil
}

func (p *ProtectionFolder) applyDisposition(prefix, body, suffix string) (string, error) {
	switch {
	case blockStartSuffix.MatchString(prefix):
		// start of a block: nothing precedes the protected content on
		// this line worth attaching to, so it stays put (dom.cpp's
		// rx_block_start branch, `ns += tmp_lxs[0]`).
		return prefix + body + suffix, nil

	case blockEndPrefix.MatchString(suffix):
		// end of a block: symmetric with the case above.
		return prefix + body + suffix, nil

	case styleStartSuffix.MatchString(prefix):
		return p.insertIntoEnclosingStyle(prefix, body, suffix)

	case afterStyleSuffix.MatchString(prefix):
		loc := trailingMarkerRe.FindStringIndex(prefix)
		if loc == nil {
			return prefix + body + suffix, nil
		}
		preceding := prefix[loc[0]:loc[1]]
		head := prefix[:loc[0]]
		wrapped, err := p.wrapMarker("", body, preceding)
		if err != nil {
			return "", err
		}
		return head + wrapped + suffix, nil

	case plainTokenSuffix.MatchString(prefix):
		loc := trailingTokenRe.FindStringIndex(prefix)
		if loc == nil {
			return prefix + body + suffix, nil
		}
		preceding := prefix[loc[0]:loc[1]]
		head := prefix[:loc[0]]
		wrapped, err := p.wrapMarker("", body, preceding)
		if err != nil {
			return "", err
		}
		return head + wrapped + suffix, nil

	default:
		return prefix + body + suffix, nil
	}
}

// insertIntoEnclosingStyle implements disposition 3 (spec.md §4.4): the
// protected content sits right at the start of an existing style's body.
// Rather than minting a marker of its own at that position, it mints a
// new "P" style and splices its open/close pair around the remainder of
// the enclosing style's body, from here up to that style's own close
// (dom.cpp's rx_ifx_start branch).
func (p *ProtectionFolder) insertIntoEnclosingStyle(prefix, body, suffix string) (string, error) {
	matchLoc := styleStartSuffix.FindStringIndex(prefix)
	openerLoc := styleOpenerOnlyRe.FindStringIndex(prefix[matchLoc[0]:matchLoc[1]])
	openerEnd := matchLoc[0] + openerLoc[1]
	head := prefix[:openerEnd]
	betweenOpenerAndProtect := prefix[openerEnd:]

	closeIdx := strings.Index(suffix, string(InlineClose))
	if closeIdx < 0 {
		// malformed input: the enclosing style never closes. Leave the
		// protected content in place rather than emit an unterminated
		// marker.
		return prefix + body + suffix, nil
	}

	hash, err := p.State.Style("P", body, "")
	if err != nil {
		return "", &StateError{Op: "style", Cause: err}
	}
	newOpen := string(InlineOpenB) + "P:" + hash + string(InlineOpenE)
	wrapped := betweenOpenerAndProtect + suffix[:closeIdx]
	rest := suffix[closeIdx:] // the enclosing style's own close, untouched

	return head + newOpen + wrapped + string(InlineClose) + rest, nil
}

// wrapMarker mints a "P" style for (open, close) and renders it as a
// full body-bearing U+E011-family inline marker wrapping wrapped.
func (p *ProtectionFolder) wrapMarker(open, close, wrapped string) (string, error) {
	hash, err := p.State.Style("P", open, close)
	if err != nil {
		return "", &StateError{Op: "style", Cause: err}
	}
	return string(InlineOpenB) + "P:" + hash + string(InlineOpenE) + wrapped + string(InlineClose), nil
}
