package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"DB_USER", "DB_HOST", "DB_NAME", "BLOB_BACKEND", "LEDGER_PORT", "MAX_UPLOAD_MB"} {
		t.Setenv(k, "")
	}
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.HasDatabase() {
		t.Error("no database settings should mean no database")
	}
	if c.BlobBackend != BlobLocal || c.LedgerPort != DefaultLedgerPort || c.MaxUploadMB != DefaultMaxUploadMB {
		t.Errorf("unexpected defaults %+v", c)
	}
}

func TestLoadDatabase(t *testing.T) {
	t.Setenv("DB_USER", "ledger")
	t.Setenv("DB_PASSWORD", "p@ss")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "contabilidad")
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !c.HasDatabase() {
		t.Fatal("expected database config")
	}
	dsn := c.DSN()
	if !strings.HasPrefix(dsn, "postgres://ledger:p%40ss@db:6543/contabilidad") {
		t.Errorf("DSN = %q", dsn)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]map[string]string{
		"bad port":        {"LEDGER_PORT": "http"},
		"unknown backend": {"BLOB_BACKEND": "ftp"},
		"s3 no bucket":    {"BLOB_BACKEND": "s3", "BLOB_S3_BUCKET": ""},
		"gcs no bucket":   {"BLOB_BACKEND": "gcs", "BLOB_GCS_BUCKET": ""},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
