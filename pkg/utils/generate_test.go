package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(8)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{8}$`), code)

	code, err = GenerateCode(0)
	require.NoError(t, err)
	assert.Len(t, code, 6)
}

func TestCodeHash(t *testing.T) {
	hash, err := HashCode("123456")
	require.NoError(t, err)

	assert.NotEqual(t, "123456", hash)
	assert.True(t, CheckCodeHash("123456", hash))
	assert.False(t, CheckCodeHash("654321", hash))
}
