package mediaserver

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/photodedup/internal/config"
	"github.com/mmcdole/photodedup/internal/domain"
	"github.com/mmcdole/photodedup/internal/mediaserver/immich"
)

// NewClient creates the photo server client from resolved credentials
func NewClient(cfg *config.Config, creds *config.Credentials, logger *slog.Logger) (domain.PhotoServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if creds == nil || creds.BaseURL == "" {
		return nil, fmt.Errorf("server URL is required")
	}

	if creds.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	return immich.NewClient(creds.BaseURL, creds.APIKey, cfg.Server.Timeout, logger), nil
}
