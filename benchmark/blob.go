package benchmark

import (
	"crypto/rand"
	"errors"
	"fmt"
)

// ErrInvalidSize is returned by GenerateBlob for negative sizes.
var ErrInvalidSize = errors.New("blob size must be non-negative")

// GenerateBlob returns exactly size random bytes. Randomness only needs to
// make blobs statistically independent so read-back equality checks cannot
// pass by accident; it carries no security meaning.
func GenerateBlob(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	blob := make([]byte, size)
	if _, err := rand.Read(blob); err != nil {
		return nil, fmt.Errorf("generating blob: %w", err)
	}
	return blob, nil
}
