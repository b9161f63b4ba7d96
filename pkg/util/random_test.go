package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateResetCode(t *testing.T) {
	seen := make(map[int]bool)

	for i := 0; i < 1000; i++ {
		code, err := GenerateResetCode()
		require.NoError(t, err)

		assert.GreaterOrEqual(t, code, 100000)
		assert.LessOrEqual(t, code, 999999)

		seen[code] = true
	}

	// 1000 draws from a 900k range should not all collide
	assert.Greater(t, len(seen), 900)
}
