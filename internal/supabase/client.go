package supabase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vibehub/backend/internal/config"
)

// ErrNotConfigured is returned when no Supabase project is configured.
var ErrNotConfigured = errors.New("supabase storage is not configured")

// Client is a wrapper around the Supabase Storage REST API.
// It uses the service role key for backend operations with elevated privileges.
type Client struct {
	baseURL    string
	apiKey     string
	bucket     string
	httpClient *http.Client
}

// defaultTimeout applies when the config leaves UploadTimeout unset.
const defaultTimeout = 5 * time.Minute

// NewClient creates a new Supabase client with the given configuration.
func NewClient(cfg *config.Config) *Client {
	timeout := cfg.UploadTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.SupabaseURL, "/"),
		apiKey:  cfg.SupabaseKey,
		bucket:  cfg.SupabaseBucket,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// doRequest executes an HTTP request to the Supabase Storage API.
// It adds authentication headers and turns error statuses into errors.
func (c *Client) doRequest(ctx context.Context, method, endpoint, contentType string, body io.Reader) ([]byte, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s/storage/v1/%s", c.baseURL, endpoint), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("supabase error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// Upload stores body under objectPath in the media bucket and returns the
// public URL of the object.
func (c *Client) Upload(ctx context.Context, objectPath, contentType string, body io.Reader) (string, error) {
	endpoint := fmt.Sprintf("object/%s/%s", c.bucket, escapePath(objectPath))
	if _, err := c.doRequest(ctx, http.MethodPost, endpoint, contentType, body); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectPath, err)
	}
	return c.PublicURL(objectPath), nil
}

// Delete removes an object from the media bucket.
func (c *Client) Delete(ctx context.Context, objectPath string) error {
	endpoint := fmt.Sprintf("object/%s/%s", c.bucket, escapePath(objectPath))
	_, err := c.doRequest(ctx, http.MethodDelete, endpoint, "", nil)
	return err
}

// PublicURL returns the stable URL clients use to fetch an object.
func (c *Client) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, escapePath(objectPath))
}

// WithHTTPClient overrides the transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
