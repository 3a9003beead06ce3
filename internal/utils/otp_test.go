package utils

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTPCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9]{6}$`)
	for i := 0; i < 200; i++ {
		code, err := GenerateOTPCode()
		require.NoError(t, err)
		require.Regexp(t, pattern, code)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestHashOTPCode(t *testing.T) {
	assert.Equal(t, HashOTPCode("482913"), HashOTPCode("482913"))
	assert.NotEqual(t, HashOTPCode("482913"), HashOTPCode("482914"))
	assert.NotEqual(t, "482913", HashOTPCode("482913"), "the plaintext never equals its digest")
}
