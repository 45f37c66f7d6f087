package filestore

import (
	"time"

	"github.com/koustreak/dbsnap/internal/errs"
)

// Provider identifies the file storage backend.
type Provider string

const (
	ProviderMinIO Provider = "minio"
)

// Config holds the settings for archiving reports.
type Config struct {
	// Provider is the storage backend (e.g. ProviderMinIO).
	Provider Provider `yaml:"provider"`

	// Endpoint is the host:port of the storage server.
	// Example: "localhost:9000" for local MinIO.
	Endpoint string `yaml:"endpoint"`

	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool `yaml:"use_ssl"`

	// Region is used by region-aware backends. Leave empty for MinIO.
	Region string `yaml:"region"`

	// Bucket receives the reports; it is created on first upload.
	Bucket string `yaml:"bucket"`

	// Prefix is prepended to every report key.
	Prefix string `yaml:"prefix"`

	// PresignTTL is the lifetime of the download link printed after an
	// upload. Zero disables the link.
	PresignTTL time.Duration `yaml:"presign_ttl"`
}

// DefaultConfig returns a sensible local-dev config for MinIO.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Provider:   ProviderMinIO,
		Endpoint:   endpoint,
		AccessKey:  accessKey,
		SecretKey:  secretKey,
		Bucket:     "dbsnap",
		Prefix:     "snapshots",
		PresignTTL: 24 * time.Hour,
	}
}

// Validate checks the settings needed before connecting.
func (c *Config) Validate() error {
	switch {
	case c.Provider != ProviderMinIO:
		return errs.New(errs.ErrKindInvalidInput, "unsupported filestore provider "+string(c.Provider))
	case c.Endpoint == "":
		return errs.New(errs.ErrKindInvalidInput, "filestore endpoint is required")
	case c.Bucket == "":
		return errs.New(errs.ErrKindInvalidInput, "filestore bucket is required")
	case c.PresignTTL < 0:
		return errs.New(errs.ErrKindInvalidInput, "presign_ttl must not be negative")
	}
	return nil
}
