package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

const (
	DefaultTimeZone = "America/Santiago"

	// HeaderScanRows is how many leading rows are searched for a header.
	HeaderScanRows = 40

	DefaultLedgerPort   = 8143
	DefaultMaxUploadMB  = 20
	DefaultPageLimit    = 200
	MaxPageLimit        = 1000
	InsertBatchSize     = 1000
	DefaultSweepCron    = "0 3 * * *"
	DefaultBlobRetainHr = 24
	DefaultServicesFile = "services.yaml"
	DefaultBlobDir      = "./uploads"
)

type BlobBackend string

const (
	BlobLocal BlobBackend = "local"
	BlobS3    BlobBackend = "s3"
	BlobGCS   BlobBackend = "gcs"
)

// Config is the process configuration read from the environment.
type Config struct {
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	BlobBackend   BlobBackend
	BlobDir       string
	BlobPrefix    string
	BlobS3Bucket  string
	BlobS3Region  string
	BlobGCSBucket string

	LedgerPort   int
	MaxUploadMB  int
	ServicesFile string
}

// Load reads the environment. Missing database settings leave the
// in-memory store in charge.
func Load() (*Config, error) {
	c := &Config{
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        envOr("DB_PORT", "5432"),
		DBName:        os.Getenv("DB_NAME"),
		BlobBackend:   BlobBackend(strings.ToLower(envOr("BLOB_BACKEND", string(BlobLocal)))),
		BlobDir:       envOr("BLOB_DIR", DefaultBlobDir),
		BlobPrefix:    os.Getenv("BLOB_PREFIX"),
		BlobS3Bucket:  os.Getenv("BLOB_S3_BUCKET"),
		BlobS3Region:  envOr("BLOB_S3_REGION", "us-east-1"),
		BlobGCSBucket: os.Getenv("BLOB_GCS_BUCKET"),
		ServicesFile:  envOr("SERVICES_FILE", DefaultServicesFile),
	}

	var err error
	if c.LedgerPort, err = envInt("LEDGER_PORT", DefaultLedgerPort); err != nil {
		return nil, err
	}
	if c.MaxUploadMB, err = envInt("MAX_UPLOAD_MB", DefaultMaxUploadMB); err != nil {
		return nil, err
	}

	switch c.BlobBackend {
	case BlobLocal:
	case BlobS3:
		if c.BlobS3Bucket == "" {
			return nil, fmt.Errorf("BLOB_S3_BUCKET is required when BLOB_BACKEND=s3")
		}
	case BlobGCS:
		if c.BlobGCSBucket == "" {
			return nil, fmt.Errorf("BLOB_GCS_BUCKET is required when BLOB_BACKEND=gcs")
		}
	default:
		return nil, fmt.Errorf("unknown BLOB_BACKEND %q", c.BlobBackend)
	}
	return c, nil
}

// HasDatabase reports whether PostgreSQL settings are present.
func (c *Config) HasDatabase() bool {
	return c.DBHost != "" && c.DBName != "" && c.DBUser != ""
}

// DSN returns a postgres URL usable by both pgx and lib/pq.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + envOr("DB_SSLMODE", "disable"),
	}
	return u.String()
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}
