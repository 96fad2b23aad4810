package dir

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"ticketdash/internal"
	"ticketdash/internal/config"
	"ticketdash/internal/connectors"
)

// Connector serves folders from a local directory tree. A folder id is a
// path relative to the root and a file id is the slash-separated relative
// path of the file.
type Connector struct {
	root string
}

func NewConnector(cfg config.Config) (*Connector, error) {
	if err := cfg.Require("LOCAL_DIR", cfg.LocalDir); err != nil {
		return nil, err
	}
	return &Connector{root: cfg.LocalDir}, nil
}

func (c *Connector) List(ctx context.Context, folderID string) ([]internal.RemoteFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel, err := c.clean(folderID)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(c.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	out := make([]internal.RemoteFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || e.Name()[0] == '.' {
			continue
		}
		out = append(out, internal.RemoteFile{
			ID:       path.Join(rel, e.Name()),
			Name:     e.Name(),
			Provider: connectors.ProviderDir,
		})
	}
	return out, nil
}

func (c *Connector) Download(ctx context.Context, fileID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel, err := c.clean(fileID)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(filepath.Join(c.root, filepath.FromSlash(rel)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", connectors.ErrNotFound, fileID)
	}
	return content, err
}

func (c *Connector) clean(id string) (string, error) {
	rel := path.Clean("/" + id)[1:]
	if rel == "" {
		return ".", nil
	}
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", fmt.Errorf("invalid path %q", id)
	}
	return rel, nil
}
