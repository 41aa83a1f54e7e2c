package benchmark

// Params holds the knobs for one benchmark run of a single
// (backend, blob size) pair.
type Params struct {
	BlobSize   int64  // Size of each blob in bytes
	BatchSize  int    // Number of single-item write/read cycles
	BatchReads int    // Number of batch-read trials
	Warmups    int    // Untimed write/read cycles before measurement
	Directory  string // Where result CSV files are written
	RateLimit  int    // Max operations per second (0 means no limit)
	Quiet      bool   // Suppress progress bars and summaries
}
