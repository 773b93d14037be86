package transfuse

// StreamDialect frames extracted blocks onto the wire format a particular
// translation pipeline expects (spec.md §5). Apertium's stream format and
// VISL CG format both wrap a block body between a pair of tagged tokens;
// implementations live in the stream subpackage, satisfy this interface
// directly and are passed in by the cmd driver, keeping the root package
// free of a direct import on either wire format.
type StreamDialect interface {
	// BlockOpen renders the opening token for block id.
	BlockOpen(id string) string
	// BlockBody renders body as it should appear between the open and
	// close tokens (escaping any characters the dialect reserves).
	BlockBody(body string) string
	// BlockClose renders the closing token for block id.
	BlockClose(id string) string
}
