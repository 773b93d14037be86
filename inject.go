package transfuse

import (
	"regexp"
	"strings"
)

// blockOpenTokenRe matches one block-marker framing token (either the
// open or close half — they are textually identical, see wrapBlockMarker).
// Because RE2 cannot backreference the captured id inside the same
// pattern, stray-marker stripping below verifies the id match in Go code
// instead of in the regex (see stripUnmatchedBlocks).
var blockOpenTokenRe = regexp.MustCompile(`\x{E020}([^\x{E021}]*)\x{E021}`)

// Reconstructor implements inject() (spec.md §4.6): block substitution,
// stray marker scrub, cleanup, repeated marker expansion, re-parse, and
// whitespace restoration.
type Reconstructor struct {
	Tags  *TagClassification
	State StateStore
}

// Inject runs the full reconstruction pipeline and returns the restored
// top-level siblings (content.xml, like the Style Serializer's output it
// reverses, is a sequence of siblings, not one element — see
// wrapFragment) plus any non-fatal diagnostics collected along the way.
func (r *Reconstructor) Inject(content string, blocks []ExtractedBlock) ([]*Node, []Diagnostic, error) {
	var diags []Diagnostic

	content, blockDiags := r.substituteBlocks(content, blocks)
	diags = append(diags, blockDiags...)

	content, strayDiags := r.stripUnmatchedBlocks(content)
	diags = append(diags, strayDiags...)

	content = CleanupStyles(content)

	content, err := r.expandMarkersUntilStable(content)
	if err != nil {
		return nil, diags, err
	}

	wrapped, err := ParseXML(wrapFragment(content))
	if err != nil {
		return nil, diags, &ParseError{Message: "re-parsing injected content", Cause: err}
	}

	folder := &WhitespaceFolder{Tags: r.Tags}
	folder.Create(wrapped)
	folder.Restore(wrapped)

	return wrapped.Children, diags, nil
}

// substituteBlocks implements reconstruction step 1: for each translated
// block, replace every TFB_OPEN_B id TFB_OPEN_E ... TFB_CLOSE_B id
// TFB_CLOSE_E occurrence in content with the translated body.
func (r *Reconstructor) substituteBlocks(content string, blocks []ExtractedBlock) (string, []Diagnostic) {
	var diags []Diagnostic
	for _, blk := range blocks {
		framing := string(BlockOpenB) + blk.ID + string(BlockOpenE)
		pairRe := regexp.MustCompile(`(?s)` + regexp.QuoteMeta(framing) + `.*?` + regexp.QuoteMeta(framing))
		if !pairRe.MatchString(content) {
			diags = append(diags, Diagnostic{Err: &MissingError{Kind: "block", ID: blk.ID}})
			continue
		}
		content = pairRe.ReplaceAllLiteralString(content, blk.Body)
	}
	return content, diags
}

// stripUnmatchedBlocks implements reconstruction step 2: any block
// marker pair left in content belongs to a block the translator omitted
// (spec.md §8 scenario S6) — log it and strip the framing, keeping the
// body (the original extracted text) in place. A token whose payload is
// a "kind:hash" pair is not a block marker at all — it is a bare
// protected-inline marker (spec.md §5), which BlockID never produces
// (block ids are "<ordinal>-<hash>", never containing ':') and which is
// left for expandMarkersUntilStable to expand instead.
func (r *Reconstructor) stripUnmatchedBlocks(content string) (string, []Diagnostic) {
	var diags []Diagnostic
	searchFrom := 0
	for {
		loc := blockOpenTokenRe.FindStringSubmatchIndex(content[searchFrom:])
		if loc == nil {
			return content, diags
		}
		start, end := searchFrom+loc[0], searchFrom+loc[1]
		id := content[searchFrom+loc[2] : searchFrom+loc[3]]
		if strings.Contains(id, ":") {
			searchFrom = end
			continue
		}
		framing := content[start:end]
		rest := content[end:]
		closeIdx := indexOf(rest, framing)
		if closeIdx < 0 {
			searchFrom = end
			continue
		}
		body := rest[:closeIdx]
		after := rest[closeIdx+len(framing):]
		diags = append(diags, Diagnostic{Err: &MissingError{Kind: "block", ID: id}})
		content = content[:start] + body + after
		searchFrom = start
	}
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

// expandMarkersUntilStable implements reconstruction step 4: repeatedly
// expand inline markers (substituting open+body+close from the State
// Store) and protected-inline markers (substituting open+close, no
// body) until a pass makes no changes — nested markers need multiple
// passes.
func (r *Reconstructor) expandMarkersUntilStable(content string) (string, error) {
	for {
		next, changed, err := r.expandOnePass(content)
		if err != nil {
			return content, err
		}
		if !changed {
			return next, nil
		}
		content = next
	}
}

func (r *Reconstructor) expandOnePass(content string) (string, bool, error) {
	runes := []rune(content)
	var out []rune
	changed := false
	i := 0
	for i < len(runes) {
		switch runes[i] {
		case InlineOpenB:
			kindHash, body, end, ok := matchMarkerAt(runes, i)
			if !ok {
				out = append(out, runes[i])
				i++
				continue
			}
			open, close, found, err := r.lookupStyle(kindHash)
			if err != nil {
				return "", false, err
			}
			if !found {
				out = append(out, runes[i:end]...)
				i = end
				continue
			}
			out = append(out, []rune(open)...)
			out = append(out, []rune(body)...)
			out = append(out, []rune(close)...)
			changed = true
			i = end

		case BlockOpenB:
			kindHash, end, ok := matchBareMarkerAt(runes, i)
			if !ok {
				out = append(out, runes[i])
				i++
				continue
			}
			open, close, found, err := r.lookupStyle(kindHash)
			if err != nil {
				return "", false, err
			}
			if !found {
				out = append(out, runes[i:end]...)
				i = end
				continue
			}
			out = append(out, []rune(open)...)
			out = append(out, []rune(close)...)
			changed = true
			i = end

		default:
			out = append(out, runes[i])
			i++
		}
	}
	return string(out), changed, nil
}

func (r *Reconstructor) lookupStyle(kindHash string) (open, close string, found bool, err error) {
	kind, hash, ok := splitKindHash(kindHash)
	if !ok {
		return "", "", false, nil
	}
	open, close, ok, serr := r.State.StyleByHash(kind, hash)
	if serr != nil {
		return "", "", false, &StateError{Op: "styleByHash", Cause: serr}
	}
	return open, close, ok, nil
}

func splitKindHash(s string) (kind, hash string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

// matchBareMarkerAt reports whether a bare protected-inline marker
// (U+E020 kind:hash U+E021, no body) starts at i.
func matchBareMarkerAt(runes []rune, i int) (kindHash string, end int, ok bool) {
	if i >= len(runes) || runes[i] != BlockOpenB {
		return "", 0, false
	}
	j := i + 1
	for j < len(runes) && runes[j] != BlockOpenE {
		j++
	}
	if j >= len(runes) {
		return "", 0, false
	}
	return string(runes[i+1 : j]), j + 1, true
}
