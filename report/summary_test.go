package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryMeans(t *testing.T) {
	s := NewSummary()
	s.RecordWrite(0.010)
	s.RecordWrite(0.020)
	s.RecordRead(0.002)
	s.RecordBatchRead(1.5)

	assert.InDelta(t, 15.0, s.MeanWriteMs(), 0.1)
	assert.InDelta(t, 2.0, s.MeanReadMs(), 0.1)
	assert.InDelta(t, 1500.0, s.MeanBatchReadMs(), 2.0)
}

func TestSummaryEmpty(t *testing.T) {
	s := NewSummary()
	assert.Zero(t, s.MeanWriteMs())
	// Display on an empty summary prints the heading only; it must not
	// panic or divide by zero.
	s.Display("timescale", 1024)
}
