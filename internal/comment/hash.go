package comment

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainForest is the domain separation prefix for forest digests.
// The version suffix allows a future change of algorithm.
const DomainForest = "threadboard/forest/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest computes a content digest of the whole forest. Two forests have
// the same digest exactly when their canonical JSON is identical, so any
// edit at any depth changes it, including edits that keep the node count.
func Digest(f Forest) (string, error) {
	canonical, err := MarshalCanonical(f)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	return hashWithDomain(DomainForest, canonical), nil
}
