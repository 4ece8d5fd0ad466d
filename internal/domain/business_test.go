package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBusinessKey(t *testing.T) {
	for _, key := range BusinessKeys() {
		parsed, err := ParseBusinessKey(string(key))
		require.NoError(t, err)
		assert.Equal(t, key, parsed)
		assert.NotEmpty(t, key.EnvSuffix())
	}
}

func TestParseBusinessKey_Rejected(t *testing.T) {
	for _, raw := range []string{"", "florist", "BAKERY", "bakery "} {
		_, err := ParseBusinessKey(raw)
		assert.ErrorIs(t, err, ErrUnknownBusinessKey, "input %q", raw)
	}
}
