package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ewilliams-labs/emotunes/internal/core/ports"
)

const (
	DefaultBaseURL  = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
)

// Config configures a Client.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	MaxRetries   int
	BaseBackoff  time.Duration
	Timeout      time.Duration
}

// Client is an HTTP client for the Spotify Web API catalog endpoints.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	maxRetries  int
	baseBackoff time.Duration
	log         *zap.Logger
}

// compile-time interface assertion
var _ ports.CatalogProvider = (*Client)(nil)

// NewClient builds a client authenticated with the client-credentials flow.
// Tokens are fetched lazily and refreshed by the oauth2 transport.
func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}
	httpClient := cc.Client(context.Background())
	httpClient.Timeout = cfg.Timeout

	c := NewClientWithHTTP(httpClient, cfg.BaseURL, log)
	c.maxRetries = cfg.MaxRetries
	c.baseBackoff = cfg.BaseBackoff
	return c
}

// NewClientWithHTTP builds a client around an already-authenticated
// http.Client.
func NewClientWithHTTP(httpClient *http.Client, baseURL string, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        log,
	}
}

// getJSON issues a GET with retries and decodes a 200 response into out.
// Non-200 responses are returned as *StatusError.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("spotify adapter: failed to create request: %w", err)
	}

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("spotify adapter: decode %s: %w", url, err)
	}
	return nil
}

// StatusError is a non-200 response from the API.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("spotify adapter: %s returned status %d", e.URL, e.StatusCode)
}
