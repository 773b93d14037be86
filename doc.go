// Package transfuse implements the extract/restore engine that bridges a
// structured document tree (DOCX/ODT/PPTX/HTML) and a linear translation
// pipeline that operates on plain text streams.
//
// Extraction flattens a DOM into a stream in which every translatable
// region is an opaque, content-addressed block of text decorated with
// minimal inline-style markers. Reconstruction reverses every step after
// the translated stream comes back, producing a document in which every
// untranslated structural detail is byte-identical to the source except
// where translated text legitimately substitutes for original text.
//
// Basic usage:
//
//	doc := transfuse.NewDocument(transfuse.HTML, state.NewMemoryStore(), transfuse.WithStreamDialect(stream.Apertium{}))
//	blocks, wire, content, err := doc.Extract(root)
//	// content is persisted as content.xml; wire is handed to the translator
//	restored, err := doc.Inject(content, translatedBlocks)
package transfuse
