package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDepositMemo(t *testing.T) {
	memo, err := GenerateDepositMemo(8)
	require.NoError(t, err)
	assert.Len(t, memo, 13)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z2-7]+$`), memo)

	other, err := GenerateDepositMemo(8)
	require.NoError(t, err)
	assert.NotEqual(t, memo, other)

	_, err = GenerateDepositMemo(0)
	assert.Error(t, err)
}
