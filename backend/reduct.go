package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"blobbench/config"
)

// Reduct benchmarks a ReductStore instance through its HTTP API. Records
// live under a single entry of a dedicated bucket, keyed by timestamp
// (ReductStore keys records in microseconds; the nanosecond timestamps of
// the harness are truncated on the way in).
//
// ReadLast on an empty entry fails with ErrNoData wrapped in an OpError;
// unlike the MongoDB adapter it never returns empty bytes.
type Reduct struct {
	cfg config.ReductConfig
	hc  *http.Client
}

// NewReduct returns an adapter for the ReductStore at cfg.Endpoint.
func NewReduct(cfg config.ReductConfig) *Reduct {
	return &Reduct{cfg: cfg, hc: newHTTPClient()}
}

func (r *Reduct) Name() string { return "reduct" }

func (r *Reduct) do(ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if r.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.APIToken)
	}
	return r.hc.Do(req)
}

func (r *Reduct) bucketURL() string {
	return fmt.Sprintf("%s/api/v1/b/%s", r.cfg.Endpoint, r.cfg.Bucket)
}

func (r *Reduct) entryURL() string {
	return r.bucketURL() + "/" + r.cfg.Entry
}

// Setup creates the bucket. An already existing bucket (409) is fine.
func (r *Reduct) Setup(ctx context.Context) error {
	resp, err := r.do(ctx, http.MethodPost, r.bucketURL(), bytes.NewReader([]byte("{}")))
	if err != nil {
		return opErr(r.Name(), "create bucket", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusConflict {
		return opErr(r.Name(), "create bucket", httpStatusError(resp))
	}
	return nil
}

func (r *Reduct) Write(ctx context.Context, blob []byte, ts int64) error {
	url := fmt.Sprintf("%s?ts=%d", r.entryURL(), ts/1000)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(blob))
	if err != nil {
		return opErr(r.Name(), "write", err)
	}
	if r.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.APIToken)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = int64(len(blob))

	resp, err := r.hc.Do(req)
	if err != nil {
		return opErr(r.Name(), "write", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return opErr(r.Name(), "write", httpStatusError(resp))
	}
	return nil
}

// ReadLast fetches the newest record of the entry. A 404 means the entry
// holds no records yet and surfaces as ErrNoData.
func (r *Reduct) ReadLast(ctx context.Context) ([]byte, error) {
	resp, err := r.do(ctx, http.MethodGet, r.entryURL(), nil)
	if err != nil {
		return nil, opErr(r.Name(), "read last", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, opErr(r.Name(), "read last", ErrNoData)
	}
	if resp.StatusCode >= 300 {
		return nil, opErr(r.Name(), "read last", httpStatusError(resp))
	}
	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, opErr(r.Name(), "read last", err)
	}
	return blob, nil
}

// ReadBatch runs a range query from start and drains the query cursor
// record by record. ReductStore signals the final record with the
// x-reduct-last header and an exhausted cursor with 204.
func (r *Reduct) ReadBatch(ctx context.Context, start int64) ([][]byte, error) {
	qURL := fmt.Sprintf("%s/q?start=%d", r.entryURL(), start/1000)
	resp, err := r.do(ctx, http.MethodGet, qURL, nil)
	if err != nil {
		return nil, opErr(r.Name(), "read batch", err)
	}
	var q struct {
		ID int64 `json:"id"`
	}
	decodeErr := json.NewDecoder(resp.Body).Decode(&q)
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, opErr(r.Name(), "read batch", httpStatusError(resp))
	}
	if decodeErr != nil {
		return nil, opErr(r.Name(), "read batch", decodeErr)
	}

	var blobs [][]byte
	for {
		recURL := fmt.Sprintf("%s?q=%d", r.entryURL(), q.ID)
		resp, err := r.do(ctx, http.MethodGet, recURL, nil)
		if err != nil {
			return nil, opErr(r.Name(), "read batch", err)
		}
		if resp.StatusCode == http.StatusNoContent {
			resp.Body.Close()
			break
		}
		if resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, opErr(r.Name(), "read batch", httpStatusError(resp))
		}
		blob, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, opErr(r.Name(), "read batch", err)
		}
		blobs = append(blobs, blob)
		if last, _ := strconv.ParseBool(resp.Header.Get("x-reduct-last")); last {
			break
		}
	}
	return blobs, nil
}

// Cleanup deletes the bucket and every record in it.
func (r *Reduct) Cleanup(ctx context.Context) error {
	resp, err := r.do(ctx, http.MethodDelete, r.bucketURL(), nil)
	if err != nil {
		return opErr(r.Name(), "cleanup", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		slog.Error("failed to delete bucket", "backend", r.Name(), "bucket", r.cfg.Bucket,
			"status", resp.StatusCode)
		return opErr(r.Name(), "cleanup", httpStatusError(resp))
	}
	return nil
}

func httpStatusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if len(msg) == 0 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return fmt.Errorf("unexpected status %s: %s", resp.Status, bytes.TrimSpace(msg))
}
