package report

import (
	"fmt"

	"code.cloudfoundry.org/bytefmt"
	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
	"github.com/fatih/color"
)

// Summary aggregates per-operation latencies for terminal reporting.
// Nothing here is persisted; the CSV files carry every raw sample so
// downstream analysis can compute arbitrary percentiles itself.
type Summary struct {
	write     *hdrhistogram.Histogram
	read      *hdrhistogram.Histogram
	batchRead *hdrhistogram.Histogram
}

// Histograms track microseconds from 1us up to an hour; operations beyond
// that would have hung the run long before overflowing the range.
func newLatencyHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(1, 3_600_000_000, 3)
}

// NewSummary returns an empty latency summary.
func NewSummary() *Summary {
	return &Summary{
		write:     newLatencyHistogram(),
		read:      newLatencyHistogram(),
		batchRead: newLatencyHistogram(),
	}
}

func record(h *hdrhistogram.Histogram, seconds float64) {
	_ = h.RecordValue(int64(seconds * 1e6))
}

// RecordWrite adds one single-item write duration, in seconds.
func (s *Summary) RecordWrite(seconds float64) { record(s.write, seconds) }

// RecordRead adds one single-item read-last duration, in seconds.
func (s *Summary) RecordRead(seconds float64) { record(s.read, seconds) }

// RecordBatchRead adds one batch-read trial duration, in seconds.
func (s *Summary) RecordBatchRead(seconds float64) { record(s.batchRead, seconds) }

// MeanWriteMs returns the mean single-item write latency in milliseconds.
func (s *Summary) MeanWriteMs() float64 { return s.write.Mean() / 1000 }

// MeanReadMs returns the mean single-item read latency in milliseconds.
func (s *Summary) MeanReadMs() float64 { return s.read.Mean() / 1000 }

// MeanBatchReadMs returns the mean batch-read latency in milliseconds.
func (s *Summary) MeanBatchReadMs() float64 { return s.batchRead.Mean() / 1000 }

// Display prints the aggregate latencies for one (backend, blob size) run.
func (s *Summary) Display(backendName string, blobSize int64) {
	heading := color.New(color.FgCyan, color.Bold)
	heading.Printf("\n%s @ %s\n", backendName, bytefmt.ByteSize(uint64(blobSize)))

	printLine("write", s.write)
	printLine("read", s.read)
	printLine("batch read", s.batchRead)
}

func printLine(label string, h *hdrhistogram.Histogram) {
	if h.TotalCount() == 0 {
		return
	}
	fmt.Printf("  %-10s mean %8.2f ms   p50 %8.2f ms   p99 %8.2f ms   (%d ops)\n",
		label,
		h.Mean()/1000,
		float64(h.ValueAtQuantile(50))/1000,
		float64(h.ValueAtQuantile(99))/1000,
		h.TotalCount())
}
