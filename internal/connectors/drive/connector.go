package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"ticketdash/internal"
	"ticketdash/internal/config"
	"ticketdash/internal/connectors"
)

type Connector struct {
	service *drive.Service
	limiter *connectors.RateLimiter
	timeout time.Duration
}

// NewConnector authenticates with the service account given either inline
// (GOOGLE_CREDENTIALS_JSON) or as a file path (GOOGLE_CREDENTIALS_FILE).
func NewConnector(ctx context.Context, cfg config.Config) (*Connector, error) {
	raw := []byte(strings.TrimSpace(cfg.GoogleCredentialsJSON))
	if len(raw) == 0 {
		if err := cfg.Require("GOOGLE_CREDENTIALS_FILE", cfg.GoogleCredentialsFile); err != nil {
			return nil, err
		}
		var err error
		raw, err = os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read google credentials: %w", err)
		}
	}

	creds, err := google.CredentialsFromJSON(ctx, raw, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}

	return NewConnectorWithOptions(ctx, cfg, option.WithCredentials(creds))
}

func NewConnectorWithOptions(ctx context.Context, cfg config.Config, opts ...option.ClientOption) (*Connector, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Connector{
		service: svc,
		limiter: connectors.NewRateLimiter(cfg.DriveRateLimitRPS),
		timeout: time.Duration(cfg.DriveTimeoutMs) * time.Millisecond,
	}, nil
}

func (c *Connector) List(ctx context.Context, folderID string) ([]internal.RemoteFile, error) {
	q := fmt.Sprintf("'%s' in parents and trashed=false", strings.ReplaceAll(folderID, "'", `\'`))

	var out []internal.RemoteFile
	pageToken := ""
	for {
		if err := c.limiter.WaitTurn(ctx); err != nil {
			return nil, err
		}

		call := c.service.Files.List().
			Q(q).
			Fields("nextPageToken, files(id, name)").
			PageSize(1000).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		callCtx, cancel := c.withTimeout(ctx)
		resp, err := call.Context(callCtx).Do()
		cancel()
		if err != nil {
			return nil, err
		}

		for _, f := range resp.Files {
			if f.Id == "" {
				continue
			}
			out = append(out, internal.RemoteFile{ID: f.Id, Name: f.Name, Provider: connectors.ProviderDrive})
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return out, nil
}

func (c *Connector) Download(ctx context.Context, fileID string) ([]byte, error) {
	if err := c.limiter.WaitTurn(ctx); err != nil {
		return nil, err
	}

	callCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.service.Files.Get(fileID).SupportsAllDrives(true).Context(callCtx).Download()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", connectors.ErrNotFound, fileID)
		}
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func (c *Connector) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}
