package transfuse

// ProcessedDocument is the result of a full Extract or Inject call,
// mirroring gotlai.ProcessedContent's "counts alongside content" shape:
// callers that just want pass/fail use the error return of Extract/Inject
// directly, but a staging-directory driver (cmd/transfuse) reports these
// counts to its operator.
type ProcessedDocument struct {
	ContentXML    string // content.xml, present after ExtractDocument
	Blocks        []ExtractedBlock
	Wire          string
	BlocksEmitted int
	StylesMinted  int
	Warnings      int
}

// ExtractDocument runs Extract and wraps its results with the counts a
// staging-directory driver reports to its operator.
func (d *Document) ExtractDocument(root *Node) (*ProcessedDocument, error) {
	before := d.stateLen()
	blocks, wire, contentXML, err := d.Extract(root)
	if err != nil {
		return nil, err
	}
	return &ProcessedDocument{
		ContentXML:    contentXML,
		Blocks:        blocks,
		Wire:          wire,
		BlocksEmitted: len(blocks),
		StylesMinted:  d.stateLen() - before,
		Warnings:      len(d.diags),
	}, nil
}

// InjectDocument runs Inject and wraps its restored top-level siblings
// with the counts a staging-directory driver reports to its operator.
func (d *Document) InjectDocument(contentXML string, blocks []ExtractedBlock) ([]*Node, *ProcessedDocument, error) {
	roots, err := d.Inject(contentXML, blocks)
	if err != nil {
		return nil, nil, err
	}
	return roots, &ProcessedDocument{
		Blocks:        blocks,
		BlocksEmitted: len(blocks),
		Warnings:      len(d.diags),
	}, nil
}

// stateLen reports the state store's current entry count when it exposes
// one, for StylesMinted bookkeeping. Stores that don't (e.g. a Redis-backed
// one shared across processes, where "minted by this call" isn't a
// meaningful local count) report zero.
func (d *Document) stateLen() int {
	if counter, ok := d.state.(interface{ Len() int }); ok {
		return counter.Len()
	}
	return 0
}
