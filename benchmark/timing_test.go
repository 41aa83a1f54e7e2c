package benchmark

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimedWriteMeasuresElapsed(t *testing.T) {
	sys := &memSystem{writeDelay: 20 * time.Millisecond}

	sec, err := timedWrite(context.Background(), sys, []byte("payload"), time.Now().UnixNano())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, sec, 0.02)
	assert.Less(t, sec, 1.0)
}

func TestTimedReadLastReturnsResult(t *testing.T) {
	sys := &memSystem{}
	blob := []byte("hello")
	require.NoError(t, sys.Write(context.Background(), blob, time.Now().UnixNano()))

	got, sec, err := timedReadLast(context.Background(), sys)
	require.NoError(t, err)
	assert.Equal(t, blob, got)
	assert.GreaterOrEqual(t, sec, 0.0)
}

func TestTimedReadBatchReturnsAllRecords(t *testing.T) {
	sys := &memSystem{}
	first := time.Now().UnixNano()
	for i := 0; i < 10; i++ {
		require.NoError(t, sys.Write(context.Background(), []byte{byte(i)}, first+int64(i)))
	}

	blobs, _, err := timedReadBatch(context.Background(), sys, first)
	require.NoError(t, err)
	assert.Len(t, blobs, 10)
}
