package immich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/photodedup/internal/domain"
)

const (
	userAgent       = "photodedup/1.0"
	apiKeyHeader    = "x-api-key"
	maxErrorBodyLen = 512
)

// Client implements domain.PhotoServer for the Immich API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Immich API client. A zero timeout leaves the
// HTTP client without one. The same client is reused for every request.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// doRequest performs an authenticated request with an optional JSON body.
// Any transport failure or non-2xx status is returned as *domain.RequestError.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	reqURL := c.baseURL + path

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(apiKeyHeader, c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("immich request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Info("immich request failed", "method", method, "path", path, "error", err)
		return nil, &domain.RequestError{
			Method: method,
			Path:   path,
			Kind:   domain.ErrServerOffline,
			Err:    err,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.RequestError{
			Method: method,
			Path:   path,
			Err:    fmt.Errorf("failed to read response: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		kind := domain.ErrUnexpectedStatus
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			kind = domain.ErrAuthFailed
		}
		c.logger.Info("immich request error",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"body", string(respBody),
		)
		return nil, &domain.RequestError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       excerpt(respBody),
			Kind:       kind,
		}
	}

	return respBody, nil
}

// GetDuplicates returns all duplicate groups computed by the server
func (c *Client) GetDuplicates(ctx context.Context) ([]domain.DuplicateGroup, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/duplicates", nil)
	if err != nil {
		return nil, err
	}

	var groups []domain.DuplicateGroup
	if err := json.Unmarshal(body, &groups); err != nil {
		c.logger.Info("JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse duplicates: %w", err)
	}

	c.logger.Debug("fetched duplicates", "count", len(groups))
	return groups, nil
}

// DeleteAssets permanently deletes the given assets
func (c *Client) DeleteAssets(ctx context.Context, ids []string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, "/api/assets", deleteAssetsRequest{IDs: ids})
	return err
}

// ClearDuplicate removes the duplicate group association of the given assets
func (c *Client) ClearDuplicate(ctx context.Context, ids []string) error {
	_, err := c.doRequest(ctx, http.MethodPut, "/api/assets", updateAssetsRequest{IDs: ids})
	return err
}

// CreateStack creates a stack from the given assets. The server answers
// with the created stack; an empty or unparseable answer is not an error
// since the stack exists either way.
func (c *Client) CreateStack(ctx context.Context, ids []string) (*domain.Stack, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/api/stacks", createStackRequest{AssetIDs: ids})
	if err != nil {
		return nil, err
	}

	var resp stackResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &resp); err != nil {
			c.logger.Warn("failed to parse stack response", "error", err)
		}
	}

	return &domain.Stack{ID: resp.ID, PrimaryAssetID: resp.PrimaryAssetID}, nil
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBodyLen {
		s = s[:maxErrorBodyLen] + "..."
	}
	return s
}
