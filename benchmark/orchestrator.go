package benchmark

import (
	"context"
	"errors"
	"fmt"
	"os"

	"code.cloudfoundry.org/bytefmt"
	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"

	"blobbench/backend"
	"blobbench/config"
)

// Options configures a full benchmark session across blob sizes and
// backends.
type Options struct {
	Sizes      []int64
	BatchSize  int
	BatchReads int
	Warmups    int
	Directory  string
	Backends   []string
	RateLimit  int
	Quiet      bool
	Yes        bool // skip the confirmation prompt
}

// ErrAborted is returned when the operator declines the confirmation
// prompt.
var ErrAborted = errors.New("benchmark aborted")

// RequiredSpace computes the worst-case storage footprint of one backend
// run: every warmup and single-item blob of the largest size resident at
// once.
func RequiredSpace(maxBlob int64, batchSize, warmups int) uint64 {
	return uint64(maxBlob) * uint64(batchSize+warmups)
}

// RunAll drives the whole session: for each blob size, each selected
// backend gets fresh adapter containers, one full Run, and teardown.
// Everything is strictly sequential so no run's measurements see
// contention from another.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) error {
	if len(opts.Sizes) == 0 {
		return errors.New("no blob sizes given")
	}
	if len(opts.Backends) == 0 {
		opts.Backends = backend.Names
	}

	var maxSize int64
	for _, size := range opts.Sizes {
		if size > maxSize {
			maxSize = size
		}
	}

	// Proactive disk guard: abort before the first write rather than
	// fail somewhere mid-run. The margin covers backend bookkeeping
	// overhead on top of the raw payload bytes.
	if err := os.MkdirAll(opts.Directory, 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}
	need := RequiredSpace(maxSize, opts.BatchSize, opts.Warmups)
	free, err := FreeSpace(opts.Directory)
	if err != nil {
		return fmt.Errorf("checking free disk space: %w", err)
	}
	if free < need+need/10 {
		return fmt.Errorf("%w: need %s plus margin, only %s free",
			ErrInsufficientDisk, bytefmt.ByteSize(need), bytefmt.ByteSize(free))
	}

	if !opts.Quiet {
		printParams(opts)
	}
	if !opts.Yes {
		confirmed := false
		prompt := &survey.Confirm{Message: "Start the benchmark with these parameters?", Default: true}
		if err := survey.AskOne(prompt, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			return ErrAborted
		}
	}

	for _, size := range opts.Sizes {
		// Fresh adapters per blob size: containers are scoped to exactly
		// one (blob size, backend) run.
		systems, err := backend.Build(cfg, opts.Backends)
		if err != nil {
			return err
		}
		for _, sys := range systems {
			if !opts.Quiet {
				color.New(color.FgGreen, color.Bold).Printf("\n==> %s, blob size %s\n",
					sys.Name(), bytefmt.ByteSize(uint64(size)))
			}
			if err := sys.Setup(ctx); err != nil {
				return err
			}
			params := Params{
				BlobSize:   size,
				BatchSize:  opts.BatchSize,
				BatchReads: opts.BatchReads,
				Warmups:    opts.Warmups,
				Directory:  opts.Directory,
				RateLimit:  opts.RateLimit,
				Quiet:      opts.Quiet,
			}
			if err := Run(ctx, sys, params); err != nil {
				return err
			}
		}
	}
	return nil
}

func printParams(opts Options) {
	heading := color.New(color.FgYellow, color.Bold)
	heading.Println("Benchmark parameters")

	sizes := make([]string, 0, len(opts.Sizes))
	for _, size := range opts.Sizes {
		sizes = append(sizes, bytefmt.ByteSize(uint64(size)))
	}
	fmt.Printf("  blob sizes:  %v\n", sizes)
	fmt.Printf("  batch size:  %d\n", opts.BatchSize)
	fmt.Printf("  batch reads: %d\n", opts.BatchReads)
	fmt.Printf("  warmups:     %d\n", opts.Warmups)
	fmt.Printf("  backends:    %v\n", opts.Backends)
	fmt.Printf("  results dir: %s\n", opts.Directory)
	if opts.RateLimit > 0 {
		fmt.Printf("  rate limit:  %d ops/s\n", opts.RateLimit)
	}
}
