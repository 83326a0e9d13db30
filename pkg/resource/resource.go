// Package resource provides the capabilities injected into solids, such as where to store the files they produce.
package resource

import (
	"context"
)

// FileHandle points to a file stored by a FileManager.
type FileHandle struct {
	// URI is file:// for local files and s3:// for objects.
	URI string
	// Size is the number of bytes written.
	Size int64
}

// FileManager stores the files produced by a run.
type FileManager interface {
	// WriteFile copies the local file src under key.
	WriteFile(ctx context.Context, key, src string) (FileHandle, error)
}
