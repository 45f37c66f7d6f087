package filestore

import (
	"io"
	"time"
)

// ObjectInfo describes one stored report.
type ObjectInfo struct {
	// Key is the full object path within the bucket
	// (e.g. "snapshots/public/20260102T150405Z.yaml").
	Key string

	// Size is the byte size of the object. -1 if unknown.
	Size int64

	ContentType  string
	ETag         string
	LastModified time.Time
}

// Object is a streaming handle to an object's content.
// The caller MUST call Close() after reading to avoid resource leaks.
type Object interface {
	io.ReadCloser

	// Info returns the metadata for this object.
	Info() *ObjectInfo
}
