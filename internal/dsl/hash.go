package dsl

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainDocument prefixes document fingerprints. The version suffix allows
// a future algorithm migration.
const DomainDocument = "secdsl/document/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes a content id for a document. Two documents that
// differ only in whitespace, key order or number spelling ("2" vs "2.0")
// share a fingerprint.
func Fingerprint(doc *Document) (string, error) {
	obj, err := documentValue(doc)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}

	return hashWithDomain(DomainDocument, canonical), nil
}

