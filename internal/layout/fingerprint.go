package layout

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint computes the content hash used as the cache key. Two documents
// whose text is byte-identical after whitespace normalization map to the
// same fingerprint.
func Fingerprint(fullText string) string {
	sum := sha256.Sum256([]byte(Normalize(fullText)))
	return hex.EncodeToString(sum[:])
}
