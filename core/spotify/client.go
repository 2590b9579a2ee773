// Package spotify is the client for the external track catalog: search,
// batch metadata fetch and the client-credentials token exchange.
package spotify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"tunescout/logger"
	"tunescout/model"
)

// Client talks to the catalog API using a cached server-to-server
// bearer credential.
type Client struct {
	clientID     string
	clientSecret string
	apiURL       string
	accountsURL  string
	market       string
	httpClient   *http.Client

	// injected clock for the token cache
	now func() time.Time

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient constructs a catalog client. apiURL and accountsURL come
// from configuration so tests can point them at local fakes.
func NewClient(clientID, clientSecret, apiURL, accountsURL, market string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		apiURL:       strings.TrimRight(apiURL, "/"),
		accountsURL:  strings.TrimRight(accountsURL, "/"),
		market:       market,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		now: time.Now,
	}
}

// SetClock replaces the token-cache clock. Intended for tests.
func (c *Client) SetClock(now func() time.Time) {
	c.now = now
}

// AccessToken returns the cached bearer credential, exchanging client
// credentials for a fresh one when the cached pair is missing or within
// the safety margin of expiry. Two overlapping requests may both run the
// exchange; the duplicate costs one extra round trip and nothing else.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		token := c.accessToken
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	credentials := base64.StdEncoding.EncodeToString(
		[]byte(c.clientID + ":" + c.clientSecret))

	body := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.accountsURL+"/api/token", body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrAuthentication, err)
	}
	req.Header.Set("Authorization", "Basic "+credentials)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrAuthentication, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned status %d", model.ErrAuthentication, resp.StatusCode)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decode token response: %v", model.ErrAuthentication, err)
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", model.ErrAuthentication)
	}

	// Cache with a one-minute safety margin before the served expiry.
	c.mu.Lock()
	c.accessToken = result.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(result.ExpiresIn-60) * time.Second)
	c.mu.Unlock()

	logger.Debug("catalog token refreshed",
		logger.Int("expiresIn", result.ExpiresIn))

	return result.AccessToken, nil
}

// get issues an authenticated GET against the catalog API and decodes
// the JSON response into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}

	reqURL := c.apiURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create catalog request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}

	return nil
}
