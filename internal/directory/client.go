package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/viddel/wrooms/internal/config"
	"github.com/viddel/wrooms/internal/models"
)

// APIClient resolves identities against an external user service over HTTP
type APIClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewAPIClient creates a new user service client from directory configuration
func NewAPIClient(cfg config.DirectoryConfig) *APIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &APIClient{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Resolve asks the user service for the member matching the identity.
// A 404 from the service maps to ErrIdentityNotFound.
func (c *APIClient) Resolve(ctx context.Context, identity string) (*models.Member, error) {
	endpoint := fmt.Sprintf("%s/api/users/resolve?identity=%s", c.baseURL, url.QueryEscape(identity))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrIdentityNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user service error (status %d): %s", resp.StatusCode, string(body))
	}

	var member models.Member
	if err := json.Unmarshal(body, &member); err != nil {
		return nil, fmt.Errorf("failed to parse member response: %w", err)
	}
	if member.ID == "" {
		return nil, fmt.Errorf("user service returned member without id")
	}

	return &member, nil
}
