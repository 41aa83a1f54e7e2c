// Package report persists raw timing samples to per-(backend, experiment)
// CSV files and renders per-run latency summaries.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// Experiment kinds, each mapping to its own result file per backend.
const (
	KindReadWrite = "read_write"
	KindBatchRead = "batch_read"
)

var header = []string{"write_time", "read_time", "blob_size", "batch_size"}

// Missing fields keep their column, rendered as a literal sentinel, so
// every row has the same width regardless of experiment kind.
const missingField = "N/A"

// ResultFile names the CSV file for one (backend, experiment kind) pair.
func ResultFile(backendName, kind string) string {
	return fmt.Sprintf("%s_%s.csv", backendName, kind)
}

// SaveResults appends one row per sample to dir/filename, zipping the
// write and read sequences by position. The header is written exactly
// once, when the file is first created; existing files are appended to
// without touching prior rows, so repeated runs of the same experiment
// accumulate samples. The parent directory is created if missing.
func SaveResults(dir, filename string, blobSize int64, batchSize int, writeTimes, readTimes []float64) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}
	path := filepath.Join(dir, filename)

	_, statErr := os.Stat(path)
	writeHeader := errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening result file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	rows := len(writeTimes)
	if len(readTimes) > rows {
		rows = len(readTimes)
	}
	blobField := strconv.FormatInt(blobSize, 10)
	batchField := strconv.Itoa(batchSize)
	for i := 0; i < rows; i++ {
		row := []string{timeField(writeTimes, i), timeField(readTimes, i), blobField, batchField}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing result file: %w", err)
	}
	return nil
}

func timeField(times []float64, i int) string {
	if i >= len(times) {
		return missingField
	}
	return strconv.FormatFloat(times[i], 'f', -1, 64)
}
