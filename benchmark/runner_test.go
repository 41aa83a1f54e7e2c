package benchmark

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blobbench/backend"
)

type memRecord struct {
	ts   int64
	blob []byte
}

// memSystem is an in-memory backend with injectable faults. Operations
// behave like a well-configured store: read-your-write visible, batch
// returns everything at or after the requested timestamp.
type memSystem struct {
	records     []memRecord
	setupCalls  int
	cleanups    int
	writeDelay  time.Duration
	writeErr    error // returned by every Write when set
	corruptRead bool  // ReadLast returns mangled bytes
	dropBatch   int   // ReadBatch omits this many records
	cleanupErr  error
}

func (m *memSystem) Name() string { return "mem" }

func (m *memSystem) Setup(ctx context.Context) error {
	m.setupCalls++
	return nil
}

func (m *memSystem) Write(ctx context.Context, blob []byte, ts int64) error {
	if m.writeErr != nil {
		return &backend.OpError{Backend: m.Name(), Op: "write", Err: m.writeErr}
	}
	time.Sleep(m.writeDelay)
	stored := make([]byte, len(blob))
	copy(stored, blob)
	m.records = append(m.records, memRecord{ts: ts, blob: stored})
	return nil
}

func (m *memSystem) ReadLast(ctx context.Context) ([]byte, error) {
	if len(m.records) == 0 {
		return nil, &backend.OpError{Backend: m.Name(), Op: "read last", Err: backend.ErrNoData}
	}
	blob := m.records[len(m.records)-1].blob
	if m.corruptRead {
		mangled := make([]byte, len(blob))
		copy(mangled, blob)
		if len(mangled) > 0 {
			mangled[0] ^= 0xff
		}
		return mangled, nil
	}
	return blob, nil
}

func (m *memSystem) ReadBatch(ctx context.Context, start int64) ([][]byte, error) {
	var blobs [][]byte
	for _, rec := range m.records {
		if rec.ts >= start {
			blobs = append(blobs, rec.blob)
		}
	}
	if m.dropBatch > 0 && len(blobs) >= m.dropBatch {
		blobs = blobs[:len(blobs)-m.dropBatch]
	}
	return blobs, nil
}

func (m *memSystem) Cleanup(ctx context.Context) error {
	m.cleanups++
	m.records = nil
	return m.cleanupErr
}

func testParams(t *testing.T) Params {
	t.Helper()
	return Params{
		BlobSize:   256,
		BatchSize:  5,
		BatchReads: 3,
		Warmups:    2,
		Directory:  t.TempDir(),
		Quiet:      true,
	}
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return len(strings.Split(strings.TrimRight(string(data), "\n"), "\n"))
}

func TestRunHappyPath(t *testing.T) {
	sys := &memSystem{}
	params := testParams(t)

	require.NoError(t, Run(context.Background(), sys, params))

	assert.Equal(t, 1, sys.cleanups, "cleanup must run exactly once")

	// Header plus one row per single-item cycle and per batch trial.
	assert.Equal(t, params.BatchSize+1,
		countLines(t, filepath.Join(params.Directory, "mem_read_write.csv")))
	assert.Equal(t, params.BatchReads+1,
		countLines(t, filepath.Join(params.Directory, "mem_batch_read.csv")))
}

func TestRunBatchReadRowFormat(t *testing.T) {
	sys := &memSystem{}
	params := testParams(t)

	require.NoError(t, Run(context.Background(), sys, params))

	data, err := os.ReadFile(filepath.Join(params.Directory, "mem_batch_read.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Equal(t, "write_time,read_time,blob_size,batch_size", lines[0])
	for _, line := range lines[1:] {
		assert.True(t, strings.HasPrefix(line, "N/A,"),
			"batch rows carry no write time: %s", line)
		assert.True(t, strings.HasSuffix(line, ",256,5"),
			"batch rows record the true batch size: %s", line)
	}
}

func TestRunBatchCountMismatchIsValidationFailure(t *testing.T) {
	sys := &memSystem{dropBatch: 1}
	params := testParams(t)

	err := Run(context.Background(), sys, params)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "count mismatch must be a validation failure")
	assert.Contains(t, verr.Reason, "returned 4 records, want 5")

	var oerr *backend.OpError
	assert.False(t, errors.As(err, &oerr), "must not look like a backend fault")
	assert.Equal(t, 1, sys.cleanups, "cleanup still runs on failure")
}

func TestRunWriteFailureIsBackendError(t *testing.T) {
	cause := errors.New("connection reset")
	sys := &memSystem{writeErr: cause}
	params := testParams(t)

	err := Run(context.Background(), sys, params)
	require.Error(t, err)

	var oerr *backend.OpError
	require.True(t, errors.As(err, &oerr))
	assert.ErrorIs(t, err, cause)

	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
	assert.Equal(t, 1, sys.cleanups)
}

func TestRunWarmupMismatchIsFatal(t *testing.T) {
	sys := &memSystem{corruptRead: true}
	params := testParams(t)

	err := Run(context.Background(), sys, params)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Reason, "warmup")
	assert.Equal(t, 1, sys.cleanups)
}

func TestRunReadBackMismatchIsFatal(t *testing.T) {
	sys := &memSystem{corruptRead: true}
	params := testParams(t)
	params.Warmups = 0

	err := Run(context.Background(), sys, params)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Reason, "read-back mismatch")
}

func TestRunCleanupErrorDoesNotMaskFailure(t *testing.T) {
	cause := errors.New("write exploded")
	sys := &memSystem{writeErr: cause, cleanupErr: errors.New("cleanup also failed")}
	params := testParams(t)

	err := Run(context.Background(), sys, params)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause, "original failure must win over the cleanup error")
}

func TestRunCleanupErrorSurfacesOnSuccess(t *testing.T) {
	cleanupErr := errors.New("bucket removal failed")
	sys := &memSystem{cleanupErr: cleanupErr}
	params := testParams(t)

	err := Run(context.Background(), sys, params)
	assert.ErrorIs(t, err, cleanupErr)
}

func TestRunZeroWarmups(t *testing.T) {
	sys := &memSystem{}
	params := testParams(t)
	params.Warmups = 0

	require.NoError(t, Run(context.Background(), sys, params))
	assert.Len(t, sys.records, 0, "cleanup drains the store")
}

func TestRunAppendsAcrossRuns(t *testing.T) {
	params := testParams(t)

	require.NoError(t, Run(context.Background(), &memSystem{}, params))
	require.NoError(t, Run(context.Background(), &memSystem{}, params))

	assert.Equal(t, 2*params.BatchSize+1,
		countLines(t, filepath.Join(params.Directory, "mem_read_write.csv")),
		"repeated runs accumulate rows under a single header")
}
