package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey returns the key of a rendered artifact for the given DOT
	// hash and output format.
	ArtifactKey(dotHash, format string) string
}

// DefaultKeyer produces unscoped keys of the form "artifact:<format>:<hash>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey keeps the format readable so one format can be purged with a
// pattern like "artifact:png:*".
func (DefaultKeyer) ArtifactKey(dotHash, format string) string {
	return "artifact:" + format + ":" + dotHash
}

// Hash returns the hex SHA-256 of a DOT text. Two runs that emit the same
// DOT, token state included, share every artifact.
func Hash(dot []byte) string {
	sum := sha256.Sum256(dot)
	return hex.EncodeToString(sum[:])
}
