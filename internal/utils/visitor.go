package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// VisitorID derives the stable pseudonymous visitor identifier from the
// request attributes and the server-side secret. Missing ip or user agent
// degrade to empty strings: the result still identifies *a* visitor, it just
// collides across everyone with the same gap. That is accepted, not an
// error.
func VisitorID(ip, userAgent, secret string) string {
	sum := sha256.Sum256([]byte(ip + userAgent + secret))
	return hex.EncodeToString(sum[:])
}
