package transfuse

// TagClassification is a per-format configuration loaded once, exposing
// the six case-folded name sets and the attribute-name set spec.md §3
// requires. Names are stored lowered-qualified (e.g. "w:t"), matching
// LoweredName's convention.
//
// Grounded on gotlai/types.go's RTLLanguages/IgnoredTags package-level
// map-literal tables, and on original_source/src/format-docx.cpp's
// dom->tags_parents_allow = make_xmlChars(...) assignment pattern: a
// format driver configures the shared classification once, up front.
type TagClassification struct {
	Inline          map[string]bool
	Protected       map[string]bool
	ProtectedInline map[string]bool
	Raw             map[string]bool
	ParentsAllow    map[string]bool
	ParentsDirect   map[string]bool
	TagAttrs        map[string]bool
}

func newSet(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// IsInline reports whether name is classified inline.
func (t *TagClassification) IsInline(name string) bool { return t.Inline[LoweredName(name)] }

// IsProtected reports whether name is classified protected.
func (t *TagClassification) IsProtected(name string) bool { return t.Protected[LoweredName(name)] }

// IsProtectedInline reports whether name is classified protected_inline.
func (t *TagClassification) IsProtectedInline(name string) bool {
	return t.ProtectedInline[LoweredName(name)]
}

// IsRaw reports whether name is classified raw (verbatim text content).
func (t *TagClassification) IsRaw(name string) bool { return t.Raw[LoweredName(name)] }

// AllowsParent reports whether name is a parents_allow element (a
// container whose direct text children are translatable).
func (t *TagClassification) AllowsParent(name string) bool { return t.ParentsAllow[LoweredName(name)] }

// IsDirectParent reports whether name is in parents_direct.
func (t *TagClassification) IsDirectParent(name string) bool { return t.ParentsDirect[LoweredName(name)] }

// IsTagAttr reports whether attr carries translatable text on any
// element (e.g. "alt", "title").
func (t *TagClassification) IsTagAttr(attr string) bool { return t.TagAttrs[LoweredName(attr)] }

// HTML is the built-in classification for HTML documents/fragments,
// grounded on gotlai/types.go's IgnoredTags table (script/style/etc. are
// carried over as "raw" or "protected" here) and general HTML inline
// element knowledge.
var HTML = &TagClassification{
	Inline: newSet(
		"a", "b", "i", "u", "em", "strong", "span", "small", "sub", "sup",
		"abbr", "cite", "code", "kbd", "mark", "s", "samp", "var", "q",
		"time", "font", "big", "tt", "strike", "ins", "del",
	),
	Protected: newSet("script", "style", "svg", "math", "template", "noscript"),
	ProtectedInline: newSet(
		"br", "img", "input", "hr", "wbr", "area", "base", "col", "embed",
		"source", "track",
	),
	Raw:           newSet("script", "style", "pre", "textarea", "code"),
	ParentsAllow:  newSet("p", "div", "li", "td", "th", "h1", "h2", "h3", "h4", "h5", "h6", "span", "a", "figcaption", "blockquote"),
	ParentsDirect: newSet(),
	TagAttrs:      newSet("alt", "title", "placeholder", "aria-label", "value"),
}

// DOCX is the built-in classification for OOXML WordprocessingML, grounded
// on original_source/src/format-docx.cpp's tags_parents_allow assignment
// ("tf-text", "w:t") and its treatment of "w:hyperlink" as an inline
// wrapper and "w:tbl"/"w:drawing" as protected structural content.
var DOCX = &TagClassification{
	Inline:          newSet("w:r", "w:hyperlink", "w:ins", "w:del"),
	Protected:       newSet("w:tbl", "w:drawing", "w:pict", "w:object", "w:fldsimple", "mc:alternatecontent"),
	ProtectedInline: newSet("w:br", "w:tab", "w:cr", "w:nobreakhyphen"),
	Raw:             newSet("w:t"),
	ParentsAllow:    newSet("tf-text", "w:t"),
	ParentsDirect:   newSet(),
	TagAttrs:        newSet(),
}

// ODT is the built-in classification for OpenDocument text content,
// grounded on the same shape as DOCX but with ODF element names.
var ODT = &TagClassification{
	Inline:          newSet("text:span", "text:a", "text:note-citation"),
	Protected:       newSet("table:table", "draw:frame", "draw:g", "office:annotation"),
	ProtectedInline: newSet("text:line-break", "text:tab", "text:s"),
	Raw:             newSet(),
	ParentsAllow:    newSet("text:p", "text:h", "text:span"),
	ParentsDirect:   newSet(),
	TagAttrs:        newSet(),
}

// PPTX is the built-in classification for OOXML PresentationML.
var PPTX = &TagClassification{
	Inline:          newSet("a:r"),
	Protected:       newSet("p:pic", "a:graphicframe", "p:graphicframe"),
	ProtectedInline: newSet("a:br"),
	Raw:             newSet("a:t"),
	ParentsAllow:    newSet("tf-text", "a:t"),
	ParentsDirect:   newSet(),
	TagAttrs:        newSet(),
}
