// Package benchmark implements the measurement protocol: blob generation,
// timed storage operations, the per-run state machine and the sequential
// orchestration across blob sizes and backends.
package benchmark

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"blobbench/backend"
	"blobbench/progress"
	"blobbench/report"
)

// Run executes the benchmark protocol for one (backend, blob size) pair:
// warmup, single-item write/read cycles, batch-read trials, then summary
// and persistence of every raw sample. Cleanup always runs, whatever path
// leads out of the run, and a cleanup failure never masks the error that
// triggered it.
//
// Operations are strictly serialized; a write always completes before its
// paired read is issued, and nothing is retried.
func Run(ctx context.Context, sys backend.System, params Params) (err error) {
	defer func() {
		if cerr := sys.Cleanup(ctx); cerr != nil {
			slog.Error("cleanup failed", "backend", sys.Name(), "error", cerr)
			if err == nil {
				err = cerr
			}
		}
	}()

	var limiter *rate.Limiter
	if params.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(params.RateLimit), 1)
	}
	pace := func() error {
		if limiter == nil {
			return nil
		}
		return limiter.Wait(ctx)
	}

	// Warmup: untimed cycles that catch backend or adapter
	// misconfiguration before measurement begins.
	for i := 0; i < params.Warmups; i++ {
		if err := pace(); err != nil {
			return err
		}
		blob, err := GenerateBlob(int(params.BlobSize))
		if err != nil {
			return err
		}
		if err := sys.Write(ctx, blob, time.Now().UnixNano()); err != nil {
			return err
		}
		got, err := sys.ReadLast(ctx)
		if err != nil {
			return err
		}
		if !bytes.Equal(blob, got) {
			return &ValidationError{Backend: sys.Name(), Reason: fmt.Sprintf(
				"warmup read-back mismatch: wrote %d bytes, read %d bytes", len(blob), len(got))}
		}
	}

	writeTimes := make([]float64, 0, params.BatchSize)
	readTimes := make([]float64, 0, params.BatchSize)
	batchTimes := make([]float64, 0, params.BatchReads)
	summary := report.NewSummary()

	// The first iteration's timestamp doubles as the lower bound for the
	// batch-read phase.
	var firstTimestamp int64

	bar := progress.New(int64(params.BatchSize), "Write and read", params.Quiet)
	for i := 0; i < params.BatchSize; i++ {
		if err := pace(); err != nil {
			return err
		}
		blob, err := GenerateBlob(int(params.BlobSize))
		if err != nil {
			return err
		}
		ts := time.Now().UnixNano()
		if i == 0 {
			firstTimestamp = ts
		}

		writeSec, err := timedWrite(ctx, sys, blob, ts)
		if err != nil {
			return err
		}
		got, readSec, err := timedReadLast(ctx, sys)
		if err != nil {
			return err
		}
		if !bytes.Equal(blob, got) {
			return &ValidationError{Backend: sys.Name(), Reason: fmt.Sprintf(
				"read-back mismatch: wrote %d bytes, read %d bytes", len(blob), len(got))}
		}

		writeTimes = append(writeTimes, writeSec)
		readTimes = append(readTimes, readSec)
		summary.RecordWrite(writeSec)
		summary.RecordRead(readSec)
		bar.Increment()
	}
	bar.Finish()

	bar = progress.New(int64(params.BatchReads), "Batch reads", params.Quiet)
	for i := 0; i < params.BatchReads; i++ {
		if err := pace(); err != nil {
			return err
		}
		blobs, sec, err := timedReadBatch(ctx, sys, firstTimestamp)
		if err != nil {
			return err
		}
		if len(blobs) != params.BatchSize {
			return &ValidationError{Backend: sys.Name(), Reason: fmt.Sprintf(
				"batch read returned %d records, want %d", len(blobs), params.BatchSize)}
		}
		batchTimes = append(batchTimes, sec)
		summary.RecordBatchRead(sec)
		bar.Increment()
	}
	bar.Finish()

	if !params.Quiet {
		summary.Display(sys.Name(), params.BlobSize)
	}

	// Raw samples, not aggregates, go to disk: downstream analysis picks
	// its own percentiles. The read_write file always records batch size
	// 1; the batch_read file records the true batch size.
	if err := report.SaveResults(params.Directory,
		report.ResultFile(sys.Name(), report.KindReadWrite),
		params.BlobSize, 1, writeTimes, readTimes); err != nil {
		return err
	}
	if err := report.SaveResults(params.Directory,
		report.ResultFile(sys.Name(), report.KindBatchRead),
		params.BlobSize, params.BatchSize, nil, batchTimes); err != nil {
		return err
	}
	return nil
}
