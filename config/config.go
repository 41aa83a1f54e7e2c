package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MinioConfig holds the object-store half of the MinIO+InfluxDB pairing.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
	Bucket    string
}

// InfluxConfig holds the metadata-index half of the MinIO+InfluxDB pairing.
type InfluxConfig struct {
	Endpoint    string
	Token       string
	Org         string
	Bucket      string
	Measurement string
	Field       string
}

// ReductConfig holds the ReductStore connection settings.
type ReductConfig struct {
	Endpoint string
	APIToken string
	Bucket   string
	Entry    string
}

// TimescaleConfig holds the TimescaleDB connection settings.
type TimescaleConfig struct {
	Endpoint string
	User     string
	Password string
	Database string
}

// DSN returns the lib/pq connection string.
func (c TimescaleConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		c.User, c.Password, c.Endpoint, c.Database)
}

// MongoConfig holds the MongoDB connection settings.
type MongoConfig struct {
	Endpoint string
	User     string
	Password string
	Database string
}

// URI returns the mongodb connection URI.
func (c MongoConfig) URI() string {
	return fmt.Sprintf("mongodb://%s:%s@%s", c.User, c.Password, c.Endpoint)
}

// Config is the explicit configuration for all backends. It is constructed
// once at startup and passed into adapter constructors; nothing reads the
// process environment after Load returns.
type Config struct {
	Minio     MinioConfig
	Influx    InfluxConfig
	Reduct    ReductConfig
	Timescale TimescaleConfig
	Mongo     MongoConfig
}

// Load reads configuration from the environment, optionally seeded from a
// .env file. A missing default .env is not an error; an explicitly given
// envFile must exist.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("MINIO_IS_SECURE", false)
	v.SetDefault("MINIO_BUCKET", "blobbench")
	v.SetDefault("INFLUXDB_BUCKET", "blobbench")
	v.SetDefault("INFLUXDB_MEASUREMENT", "blobs")
	v.SetDefault("INFLUXDB_FIELD", "object_name")
	v.SetDefault("REDUCTSTORE_BUCKET", "blobbench")
	v.SetDefault("REDUCTSTORE_ENTRY", "blobs")
	v.SetDefault("TIMESCALE_DATABASE", "blobbench")
	v.SetDefault("MONGODB_DATABASE", "blobbench")

	cfg := &Config{
		Minio: MinioConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Secure:    v.GetBool("MINIO_IS_SECURE"),
			Bucket:    v.GetString("MINIO_BUCKET"),
		},
		Influx: InfluxConfig{
			Endpoint:    v.GetString("INFLUXDB_ENDPOINT"),
			Token:       v.GetString("INFLUXDB_TOKEN"),
			Org:         v.GetString("INFLUXDB_ORG"),
			Bucket:      v.GetString("INFLUXDB_BUCKET"),
			Measurement: v.GetString("INFLUXDB_MEASUREMENT"),
			Field:       v.GetString("INFLUXDB_FIELD"),
		},
		Reduct: ReductConfig{
			Endpoint: v.GetString("REDUCTSTORE_ENDPOINT"),
			APIToken: v.GetString("REDUCTSTORE_ACCESS_KEY"),
			Bucket:   v.GetString("REDUCTSTORE_BUCKET"),
			Entry:    v.GetString("REDUCTSTORE_ENTRY"),
		},
		Timescale: TimescaleConfig{
			Endpoint: v.GetString("TIMESCALE_ENDPOINT"),
			User:     v.GetString("TIMESCALE_USER"),
			Password: v.GetString("TIMESCALE_PASSWORD"),
			Database: v.GetString("TIMESCALE_DATABASE"),
		},
		Mongo: MongoConfig{
			Endpoint: v.GetString("MONGODB_ENDPOINT"),
			User:     v.GetString("MONGODB_USER"),
			Password: v.GetString("MONGODB_PASSWORD"),
			Database: v.GetString("MONGODB_DATABASE"),
		},
	}
	return cfg, nil
}

// Error reports configuration settings that are required by the selected
// backends but missing from the environment.
type Error struct {
	Missing []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("missing configuration: %s", strings.Join(e.Missing, ", "))
}

// Validate checks that every setting required by the named backends is
// present. It runs before any benchmark starts so misconfiguration halts
// the whole session up front.
func (c *Config) Validate(backends []string) error {
	var missing []string
	need := func(key, val string) {
		if val == "" {
			missing = append(missing, key)
		}
	}
	for _, name := range backends {
		switch name {
		case "reduct":
			need("REDUCTSTORE_ENDPOINT", c.Reduct.Endpoint)
		case "influx-minio":
			need("MINIO_ENDPOINT", c.Minio.Endpoint)
			need("MINIO_ACCESS_KEY", c.Minio.AccessKey)
			need("MINIO_SECRET_KEY", c.Minio.SecretKey)
			need("INFLUXDB_ENDPOINT", c.Influx.Endpoint)
			need("INFLUXDB_TOKEN", c.Influx.Token)
			need("INFLUXDB_ORG", c.Influx.Org)
		case "timescale":
			need("TIMESCALE_ENDPOINT", c.Timescale.Endpoint)
			need("TIMESCALE_USER", c.Timescale.User)
			need("TIMESCALE_PASSWORD", c.Timescale.Password)
		case "mongo":
			need("MONGODB_ENDPOINT", c.Mongo.Endpoint)
			need("MONGODB_USER", c.Mongo.User)
			need("MONGODB_PASSWORD", c.Mongo.Password)
		}
	}
	if len(missing) > 0 {
		return &Error{Missing: missing}
	}
	return nil
}
