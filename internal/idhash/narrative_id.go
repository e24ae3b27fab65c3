// Package idhash computes deterministic identifiers for persisted records.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
)

// narrativeIDLen is the number of hex characters kept from the full digest.
const narrativeIDLen = 16

// ComputeNarrativeID computes a stable narrative ID from a canonical name.
// Formula: SHA256(canonical_name), hex-encoded, truncated to 16 characters.
// The ID never changes once assigned to an entry, even when the canonical
// name is later recomputed from a newer proposal.
func ComputeNarrativeID(canonicalName string) string {
	hash := sha256.Sum256([]byte(canonicalName))
	return hex.EncodeToString(hash[:])[:narrativeIDLen]
}

// ResolveCollision deterministically suffixes an ID until it is absent from
// taken. Collisions are resolved rather than reported: two distinct
// canonical names hashing to the same truncated digest must still get
// distinct, reproducible IDs.
func ResolveCollision(id string, taken func(string) bool) string {
	for taken(id) {
		id += "x"
	}
	return id
}
