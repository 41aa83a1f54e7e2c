package backend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blobbench/config"
)

func TestOpErrorWrapping(t *testing.T) {
	underlying := errors.New("connection refused")
	err := opErr("timescale", "insert", underlying)

	var oe *OpError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "timescale", oe.Backend)
	assert.Equal(t, "insert", oe.Op)
	assert.ErrorIs(t, err, underlying)
	assert.Equal(t, "timescale: insert: connection refused", err.Error())
}

func TestOpErrorNilPassthrough(t *testing.T) {
	assert.NoError(t, opErr("mongo", "find", nil))
}

func TestBuildSelectsAdapters(t *testing.T) {
	cfg := &config.Config{
		Minio: config.MinioConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "b"},
		Influx: config.InfluxConfig{
			Endpoint: "http://localhost:8086", Token: "t", Org: "o",
			Bucket: "b", Measurement: "m", Field: "f",
		},
		Reduct:    config.ReductConfig{Endpoint: "http://localhost:8383", Bucket: "b", Entry: "e"},
		Timescale: config.TimescaleConfig{Endpoint: "localhost:5432", User: "u", Password: "p", Database: "d"},
		Mongo:     config.MongoConfig{Endpoint: "localhost:27017", User: "u", Password: "p", Database: "d"},
	}

	systems, err := Build(cfg, Names)
	require.NoError(t, err)
	require.Len(t, systems, len(Names))
	for i, sys := range systems {
		assert.Equal(t, Names[i], sys.Name())
	}
}

func TestBuildRejectsUnknownName(t *testing.T) {
	_, err := Build(&config.Config{}, []string{"cassandra"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cassandra")
}
