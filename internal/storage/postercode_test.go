package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPosterCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code := NewPosterCode()
		assert.Len(t, code, posterCodeLen)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(posterAlphabet, ch), "unexpected char %q", ch)
		}
		seen[code] = true
	}
	// 1000 draws from a 30^8 space should not collide.
	assert.Len(t, seen, 1000)
}
