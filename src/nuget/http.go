package nuget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// errNotFound signals an HTTP 404 so callers can tell "no such package"
// apart from transport failures.
var errNotFound = errors.New("nuget: resource not found")

// httpClient wraps a standard http.Client with convenience helpers.
type httpClient struct {
	client  *http.Client
	authEnv string
	agent   string
}

// newHTTPClient creates a client with the given timeout in seconds.
func newHTTPClient(timeoutSecs int, authEnv, agent string) *httpClient {
	if timeoutSecs <= 0 {
		timeoutSecs = 30
	}
	return &httpClient{
		client: &http.Client{
			Timeout: time.Duration(timeoutSecs) * time.Second,
		},
		authEnv: authEnv,
		agent:   agent,
	}
}

// fetchJSON GETs a URL and decodes the response body into result.
// A 404 response returns errNotFound.
func (h *httpClient) fetchJSON(ctx context.Context, url string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("nuget: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if h.agent != "" {
		req.Header.Set("User-Agent", h.agent)
	}
	h.applyAuth(req)

	log.Debug().Str("url", url).Msg("registry request")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("nuget: GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nuget: GET %s: status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("nuget: decode %s: %w", url, err)
	}
	return nil
}

// applyAuth sets a Bearer token from the configured environment variable.
func (h *httpClient) applyAuth(req *http.Request) {
	if h.authEnv == "" {
		return
	}
	token := os.Getenv(h.authEnv)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
