package storage

import (
	"context"

	"github.com/andresuchdata/invclose/backend-go/internal/source"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStore is a bucket the close service can read source files from.
// Object keys are the file identifiers.
type ObjectStore interface {
	source.Fetcher
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
