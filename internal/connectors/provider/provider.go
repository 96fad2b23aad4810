package provider

import (
	"context"
	"fmt"
	"strings"

	"ticketdash/internal/config"
	"ticketdash/internal/connectors"
	dirconnector "ticketdash/internal/connectors/dir"
	driveconnector "ticketdash/internal/connectors/drive"
	s3connector "ticketdash/internal/connectors/s3"
)

// New builds the file store named by cfg.StoreProvider.
func New(ctx context.Context, cfg config.Config) (connectors.FileStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.StoreProvider)) {
	case connectors.ProviderDrive:
		return driveconnector.NewConnector(ctx, cfg)
	case connectors.ProviderS3:
		return s3connector.NewConnector(ctx, cfg)
	case connectors.ProviderDir:
		return dirconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported store provider: %s", cfg.StoreProvider)
	}
}
