package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix leaves room for a
// future algorithm change.
const (
	DomainEntity = "schemata/entity/v1"
	DomainSchema = "schemata/schema/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash hashes an entity's class and encoded fields.
// Two entities with equal fields share a content hash but never an identity.
func ContentHash(class string, fields IRObject) (string, error) {
	canonical, err := MarshalCanonical(IRObject{
		"class":  IRString(class),
		"fields": fields,
	})
	if err != nil {
		return "", fmt.Errorf("ContentHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEntity, canonical), nil
}

// SchemaHash hashes an encoded schema document so stores can detect that they
// were written against a different class table.
func SchemaHash(doc IRValue) (string, error) {
	canonical, err := MarshalCanonical(doc)
	if err != nil {
		return "", fmt.Errorf("SchemaHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSchema, canonical), nil
}
