// Package backend defines the storage adapter contract shared by every
// system under test and the four backend implementations: ReductStore,
// MinIO+InfluxDB, MongoDB and TimescaleDB.
package backend

import (
	"context"
	"fmt"

	"blobbench/config"
)

// System is the five-operation contract every backend implements.
// Operations are issued strictly sequentially by the benchmark runner;
// implementations do not need to be safe for concurrent use.
type System interface {
	// Name identifies the backend in result files and logs.
	Name() string

	// Setup provisions the backend's containers (bucket, collection,
	// table). It is idempotent: an existing container is not an error,
	// but schema and index setup still runs.
	Setup(ctx context.Context) error

	// Write durably stores blob keyed by ts (nanoseconds since the Unix
	// epoch). On return the blob is visible to ReadLast and ReadBatch.
	Write(ctx context.Context, blob []byte, ts int64) error

	// ReadLast returns the blob with the most recent timestamp. Behavior
	// on an empty store differs per backend and is documented on each
	// implementation; callers must not rely on a uniform convention.
	ReadLast(ctx context.Context) ([]byte, error)

	// ReadBatch returns every blob whose timestamp is >= start, in
	// unspecified order.
	ReadBatch(ctx context.Context, start int64) ([][]byte, error)

	// Cleanup removes everything Setup and Write created. Best effort:
	// individual deletion failures are logged and skipped so the rest of
	// cleanup proceeds.
	Cleanup(ctx context.Context) error
}

// Names lists the recognized backend names in their canonical run order.
var Names = []string{"reduct", "influx-minio", "mongo", "timescale"}

// Build constructs one adapter per requested name. Constructors do no
// network I/O; connections are established by Setup.
func Build(cfg *config.Config, names []string) ([]System, error) {
	systems := make([]System, 0, len(names))
	for _, name := range names {
		var (
			sys System
			err error
		)
		switch name {
		case "reduct":
			sys = NewReduct(cfg.Reduct)
		case "influx-minio":
			sys, err = NewInfluxMinio(cfg.Minio, cfg.Influx)
		case "mongo":
			sys, err = NewMongo(cfg.Mongo)
		case "timescale":
			sys, err = NewTimescale(cfg.Timescale)
		default:
			return nil, fmt.Errorf("unknown backend %q (choose from %v)", name, Names)
		}
		if err != nil {
			return nil, fmt.Errorf("building %s adapter: %w", name, err)
		}
		systems = append(systems, sys)
	}
	return systems, nil
}
