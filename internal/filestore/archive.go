package filestore

import (
	"bytes"
	"context"
	"path"
	"strings"
	"time"
)

var contentTypes = map[string]string{
	"yaml": "application/yaml",
	"json": "application/json",
}

// ReportKey builds the object key of a report:
// <prefix>/<schema>/<UTC timestamp>.<format>.
func ReportKey(prefix, schemaName, format string, at time.Time) string {
	name := at.UTC().Format("20060102T150405Z") + "." + format
	if schemaName == "" {
		schemaName = "default"
	}
	return path.Join(strings.Trim(prefix, "/"), schemaName, name)
}

// Archive uploads a rendered report of schemaName to the configured
// bucket, creating the bucket when missing.
func Archive(ctx context.Context, store Store, cfg *Config, schemaName, format string, body []byte, at time.Time) (*ObjectInfo, error) {
	if err := store.EnsureBucket(ctx, cfg.Bucket); err != nil {
		return nil, err
	}

	ct, ok := contentTypes[format]
	if !ok {
		ct = "application/octet-stream"
	}
	key := ReportKey(cfg.Prefix, schemaName, format, at)
	return store.PutObject(ctx, cfg.Bucket, key, bytes.NewReader(body), int64(len(body)), ct)
}
