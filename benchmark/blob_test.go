package benchmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBlobExactSize(t *testing.T) {
	for _, size := range []int{0, 1, 1024, 1 << 20} {
		blob, err := GenerateBlob(size)
		require.NoError(t, err)
		assert.Len(t, blob, size)
	}
}

func TestGenerateBlobNegativeSize(t *testing.T) {
	_, err := GenerateBlob(-1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestGenerateBlobsDiffer(t *testing.T) {
	a, err := GenerateBlob(1024)
	require.NoError(t, err)
	b, err := GenerateBlob(1024)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
