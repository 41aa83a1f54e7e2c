package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"blobbench/config"
)

// InfluxMinio benchmarks the two-tier pairing of a MinIO object store with
// an InfluxDB metadata index. Blobs land in MinIO under their timestamp as
// object name; the object name is then recorded as a point in InfluxDB,
// which serves every lookup.
//
// A write counts as complete only once both tiers succeeded. If the index
// write fails after the object write, the object is an orphan as far as
// reads are concerned; Cleanup still finds it because it enumerates the
// MinIO bucket directly rather than going through the index. The window
// between the two writes is a structural property of this backend family,
// not something the adapter papers over.
//
// ReadLast with no data fails (ErrNoData); it never returns empty bytes.
type InfluxMinio struct {
	mcfg config.MinioConfig
	icfg config.InfluxConfig
	mc   *minio.Client
	ic   influxdb2.Client
}

// NewInfluxMinio returns an adapter over the configured MinIO and InfluxDB
// instances. Neither client dials until Setup.
func NewInfluxMinio(mcfg config.MinioConfig, icfg config.InfluxConfig) (*InfluxMinio, error) {
	mc, err := minio.New(mcfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(mcfg.AccessKey, mcfg.SecretKey, ""),
		Secure: mcfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &InfluxMinio{
		mcfg: mcfg,
		icfg: icfg,
		mc:   mc,
		ic:   influxdb2.NewClient(icfg.Endpoint, icfg.Token),
	}, nil
}

func (s *InfluxMinio) Name() string { return "influx-minio" }

// Setup creates the MinIO bucket and the InfluxDB bucket if either is
// missing.
func (s *InfluxMinio) Setup(ctx context.Context) error {
	exists, err := s.mc.BucketExists(ctx, s.mcfg.Bucket)
	if err != nil {
		return opErr(s.Name(), "check minio bucket", err)
	}
	if !exists {
		if err := s.mc.MakeBucket(ctx, s.mcfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return opErr(s.Name(), "create minio bucket", err)
		}
	}

	if _, err := s.ic.BucketsAPI().FindBucketByName(ctx, s.icfg.Bucket); err != nil {
		org, err := s.ic.OrganizationsAPI().FindOrganizationByName(ctx, s.icfg.Org)
		if err != nil {
			return opErr(s.Name(), "find influx org", err)
		}
		if _, err := s.ic.BucketsAPI().CreateBucketWithNameWithID(ctx, *org.Id, s.icfg.Bucket); err != nil {
			return opErr(s.Name(), "create influx bucket", err)
		}
	}
	return nil
}

// Write stores the blob in MinIO, then records its object name in
// InfluxDB. The write is complete only when both calls succeed.
func (s *InfluxMinio) Write(ctx context.Context, blob []byte, ts int64) error {
	objectName := strconv.FormatInt(ts, 10)
	_, err := s.mc.PutObject(ctx, s.mcfg.Bucket, objectName,
		bytes.NewReader(blob), int64(len(blob)), minio.PutObjectOptions{})
	if err != nil {
		return opErr(s.Name(), "put object", err)
	}

	point := influxdb2.NewPoint(s.icfg.Measurement,
		nil,
		map[string]interface{}{s.icfg.Field: objectName},
		time.Unix(0, ts))
	if err := s.ic.WriteAPIBlocking(s.icfg.Org, s.icfg.Bucket).WritePoint(ctx, point); err != nil {
		return opErr(s.Name(), "write index point", err)
	}
	return nil
}

func (s *InfluxMinio) ReadLast(ctx context.Context) ([]byte, error) {
	flux := fmt.Sprintf(`from(bucket: %q)
		|> range(start: -10s)
		|> filter(fn: (r) => r._measurement == %q)
		|> last()`, s.icfg.Bucket, s.icfg.Measurement)

	result, err := s.ic.QueryAPI(s.icfg.Org).Query(ctx, flux)
	if err != nil {
		return nil, opErr(s.Name(), "query last", err)
	}
	if !result.Next() {
		if result.Err() != nil {
			return nil, opErr(s.Name(), "query last", result.Err())
		}
		return nil, opErr(s.Name(), "query last", ErrNoData)
	}
	objectName, ok := result.Record().Value().(string)
	if !ok {
		return nil, opErr(s.Name(), "query last",
			fmt.Errorf("unexpected index value %v", result.Record().Value()))
	}
	return s.getObject(ctx, objectName)
}

func (s *InfluxMinio) ReadBatch(ctx context.Context, start int64) ([][]byte, error) {
	flux := fmt.Sprintf(`from(bucket: %q)
		|> range(start: time(v: %q))
		|> filter(fn: (r) => r._measurement == %q)`,
		s.icfg.Bucket, time.Unix(0, start).UTC().Format(time.RFC3339Nano), s.icfg.Measurement)

	result, err := s.ic.QueryAPI(s.icfg.Org).Query(ctx, flux)
	if err != nil {
		return nil, opErr(s.Name(), "query batch", err)
	}
	var names []string
	for result.Next() {
		if name, ok := result.Record().Value().(string); ok {
			names = append(names, name)
		}
	}
	if result.Err() != nil {
		return nil, opErr(s.Name(), "query batch", result.Err())
	}

	blobs := make([][]byte, 0, len(names))
	for _, name := range names {
		blob, err := s.getObject(ctx, name)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, blob)
	}
	return blobs, nil
}

func (s *InfluxMinio) getObject(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.mc.GetObject(ctx, s.mcfg.Bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, opErr(s.Name(), "get object", err)
	}
	defer obj.Close()
	blob, err := io.ReadAll(obj)
	if err != nil {
		return nil, opErr(s.Name(), "get object", err)
	}
	return blob, nil
}

// Cleanup enumerates the MinIO bucket directly and removes every object,
// then drops both buckets. Enumerating the raw store rather than the index
// makes cleanup reach objects whose index write never happened.
func (s *InfluxMinio) Cleanup(ctx context.Context) error {
	for obj := range s.mc.ListObjects(ctx, s.mcfg.Bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			slog.Error("failed to list objects", "backend", s.Name(), "error", obj.Err)
			break
		}
		if err := s.mc.RemoveObject(ctx, s.mcfg.Bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			slog.Error("failed to remove object", "backend", s.Name(), "object", obj.Key, "error", err)
		}
	}
	if err := s.mc.RemoveBucket(ctx, s.mcfg.Bucket); err != nil {
		slog.Error("failed to remove minio bucket", "backend", s.Name(), "bucket", s.mcfg.Bucket, "error", err)
	}

	bucket, err := s.ic.BucketsAPI().FindBucketByName(ctx, s.icfg.Bucket)
	if err != nil {
		slog.Error("failed to find influx bucket", "backend", s.Name(), "bucket", s.icfg.Bucket, "error", err)
		s.ic.Close()
		return nil
	}
	if err := s.ic.BucketsAPI().DeleteBucket(ctx, bucket); err != nil {
		slog.Error("failed to delete influx bucket", "backend", s.Name(), "bucket", s.icfg.Bucket, "error", err)
	}
	s.ic.Close()
	return nil
}
