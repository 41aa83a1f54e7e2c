package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestSaveResultsWritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	file := ResultFile("timescale", KindReadWrite)

	require.NoError(t, SaveResults(dir, file, 1024, 1,
		[]float64{0.001, 0.002}, []float64{0.003, 0.004}))
	require.NoError(t, SaveResults(dir, file, 1024, 1,
		[]float64{0.005}, []float64{0.006}))

	lines := readLines(t, filepath.Join(dir, file))
	require.Len(t, lines, 4, "one header plus three data rows")
	assert.Equal(t, "write_time,read_time,blob_size,batch_size", lines[0])
	assert.Equal(t, "0.001,0.003,1024,1", lines[1])
	assert.Equal(t, "0.005,0.006,1024,1", lines[3], "second call appends after the first")
}

func TestSaveResultsMissingFieldSentinel(t *testing.T) {
	dir := t.TempDir()
	file := ResultFile("mongo", KindBatchRead)

	require.NoError(t, SaveResults(dir, file, 2048, 1000, nil, []float64{0.25, 0.5}))

	lines := readLines(t, filepath.Join(dir, file))
	require.Len(t, lines, 3)
	assert.Equal(t, "N/A,0.25,2048,1000", lines[1])
	assert.Equal(t, "N/A,0.5,2048,1000", lines[2])
}

func TestSaveResultsCreatesParentDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "results")

	require.NoError(t, SaveResults(dir, ResultFile("reduct", KindReadWrite), 16, 1,
		[]float64{0.1}, []float64{0.2}))

	_, err := os.Stat(filepath.Join(dir, "reduct_read_write.csv"))
	assert.NoError(t, err)
}

func TestSaveResultsRowCounts(t *testing.T) {
	dir := t.TempDir()

	writes := make([]float64, 7)
	reads := make([]float64, 7)
	require.NoError(t, SaveResults(dir, ResultFile("reduct", KindReadWrite), 64, 1, writes, reads))

	batch := make([]float64, 3)
	require.NoError(t, SaveResults(dir, ResultFile("reduct", KindBatchRead), 64, 7, nil, batch))

	assert.Len(t, readLines(t, filepath.Join(dir, "reduct_read_write.csv")), 8)
	assert.Len(t, readLines(t, filepath.Join(dir, "reduct_batch_read.csv")), 4)
}

func TestResultFileNaming(t *testing.T) {
	assert.Equal(t, "influx-minio_read_write.csv", ResultFile("influx-minio", KindReadWrite))
	assert.Equal(t, "timescale_batch_read.csv", ResultFile("timescale", KindBatchRead))
}
