package benchmark

import (
	"context"
	"time"

	"blobbench/backend"
)

// The timed* helpers clock exactly one storage call each; blob generation
// and validation happen outside of them. time.Since reads the monotonic
// clock, so the measurements survive wall-clock adjustments. There are no
// retries and no timeouts: an operation that hangs, hangs the run.

func timedWrite(ctx context.Context, sys backend.System, blob []byte, ts int64) (float64, error) {
	start := time.Now()
	err := sys.Write(ctx, blob, ts)
	return time.Since(start).Seconds(), err
}

func timedReadLast(ctx context.Context, sys backend.System) ([]byte, float64, error) {
	start := time.Now()
	blob, err := sys.ReadLast(ctx)
	return blob, time.Since(start).Seconds(), err
}

func timedReadBatch(ctx context.Context, sys backend.System, from int64) ([][]byte, float64, error) {
	start := time.Now()
	blobs, err := sys.ReadBatch(ctx, from)
	return blobs, time.Since(start).Seconds(), err
}
