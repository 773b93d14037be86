package transfuse

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// hashBlockBody computes a stable SHA-256 hash of a block's trimmed body,
// used by BlockDiff to recognize unchanged blocks across two extractions
// of revised source documents. This is distinct from the xxhash-based
// Block Identifier in blocks.go, which must match the wire protocol; this
// hash is purely an internal diffing key and never appears on the wire.
// Grounded on gotlai/hash.go's HashText.
func hashBlockBody(body string) string {
	trimmed := strings.TrimSpace(body)
	sum := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(sum[:])
}
