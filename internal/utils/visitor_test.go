package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisitorIDDeterministic(t *testing.T) {
	a := VisitorID("203.0.113.7", "Mozilla/5.0", "secret")
	b := VisitorID("203.0.113.7", "Mozilla/5.0", "secret")

	assert.Equal(t, a, b)
	assert.Len(t, a, 64) // hex sha256
}

func TestVisitorIDSensitivity(t *testing.T) {
	base := VisitorID("203.0.113.7", "Mozilla/5.0", "secret")

	assert.NotEqual(t, base, VisitorID("203.0.113.8", "Mozilla/5.0", "secret"))
	assert.NotEqual(t, base, VisitorID("203.0.113.7", "curl/8.0", "secret"))
	assert.NotEqual(t, base, VisitorID("203.0.113.7", "Mozilla/5.0", "other-secret"))
}

func TestVisitorIDMissingAttributes(t *testing.T) {
	// Missing ip or user agent still yields an id; all such visitors
	// collide, which is accepted.
	a := VisitorID("", "", "secret")
	b := VisitorID("", "", "secret")

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}
