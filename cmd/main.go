package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"blobbench/backend"
	"blobbench/benchmark"
	"blobbench/config"
)

var flags struct {
	startPower int
	endPower   int
	sizes      []int64
	batchSize  int
	batchReads int
	warmups    int
	directory  string
	backends   []string
	rateLimit  int
	envFile    string
	quiet      bool
	yes        bool
}

var rootCmd = &cobra.Command{
	Use:   "blobbench",
	Short: "Benchmark write/read latency of storage backends",
	Long: `blobbench measures single-item write, single-item read and batch-read
latency of several storage backends (ReductStore, MinIO+InfluxDB, MongoDB,
TimescaleDB) under a uniform serialized workload, and appends every raw
timing sample to per-backend CSV files for offline analysis.

Backend endpoints and credentials come from the environment, optionally
seeded from a .env file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	f := rootCmd.Flags()
	f.IntVar(&flags.startPower, "start-power", 10, "Smallest blob size as a power of two")
	f.IntVar(&flags.endPower, "end-power", 20, "Largest blob size as a power of two")
	f.Int64SliceVar(&flags.sizes, "sizes", nil, "Explicit blob sizes in bytes (overrides the power range)")
	f.IntVar(&flags.batchSize, "batch-size", 1000, "Number of blobs written and read per run")
	f.IntVar(&flags.batchReads, "batch-reads", 50, "Number of batch-read trials per run")
	f.IntVar(&flags.warmups, "warmups", 1, "Number of untimed warmup cycles per run")
	f.StringVar(&flags.directory, "dir", "results", "Directory for result CSV files")
	f.StringSliceVar(&flags.backends, "backends", backend.Names, "Backends to benchmark")
	f.IntVar(&flags.rateLimit, "rate-limit", 0, "Max operations per second (0 means no limit)")
	f.StringVar(&flags.envFile, "env-file", "", "Path to a .env file with backend settings")
	f.BoolVarP(&flags.quiet, "quiet", "q", false, "Suppress progress bars and summaries")
	f.BoolVarP(&flags.yes, "yes", "y", false, "Skip the confirmation prompt")
}

func run(cmd *cobra.Command, args []string) error {
	if flags.quiet {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	}

	cfg, err := config.Load(flags.envFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(flags.backends); err != nil {
		return err
	}

	if err := benchmark.SetMaxResources(); err != nil {
		slog.Warn("could not raise resource limits", "error", err)
	}

	sizes := flags.sizes
	if len(sizes) == 0 {
		if flags.endPower < flags.startPower {
			return fmt.Errorf("end-power %d is below start-power %d", flags.endPower, flags.startPower)
		}
		for p := flags.startPower; p <= flags.endPower; p++ {
			sizes = append(sizes, int64(1)<<p)
		}
	}

	opts := benchmark.Options{
		Sizes:      sizes,
		BatchSize:  flags.batchSize,
		BatchReads: flags.batchReads,
		Warmups:    flags.warmups,
		Directory:  flags.directory,
		Backends:   flags.backends,
		RateLimit:  flags.rateLimit,
		Quiet:      flags.quiet,
		Yes:        flags.yes,
	}
	return benchmark.RunAll(cmd.Context(), cfg, opts)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
