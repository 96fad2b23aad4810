package connectors

import (
	"context"
	"errors"

	"ticketdash/internal"
)

const (
	ProviderDrive = "drive"
	ProviderS3    = "s3"
	ProviderDir   = "dir"
)

// ErrNotFound is returned by Download when the file does not exist.
var ErrNotFound = errors.New("file not found")

// FileStore is a folder of remote files.
type FileStore interface {
	// List returns every non-trashed file directly under folderID.
	List(ctx context.Context, folderID string) ([]internal.RemoteFile, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
}
