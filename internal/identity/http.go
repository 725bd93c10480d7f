package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/bajehapp/bajeh_backend/config"
)

// HTTPDirectory resolves callers against the bank's account directory over
// its REST API.
type HTTPDirectory struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPDirectory(cfg config.IdentityConfig) *HTTPDirectory {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPDirectory{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (d *HTTPDirectory) ResolveCaller(ctx context.Context, callerRef string) (Account, error) {
	return d.fetch(ctx, fmt.Sprintf("%s/v1/callers/%s", d.baseURL, url.PathEscape(callerRef)))
}

func (d *HTTPDirectory) ResolveAccount(ctx context.Context, accountID string) (Account, error) {
	return d.fetch(ctx, fmt.Sprintf("%s/v1/accounts/%s", d.baseURL, url.PathEscape(accountID)))
}

func (d *HTTPDirectory) fetch(ctx context.Context, u string) (Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Account{}, fmt.Errorf("identity request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return Account{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return Account{}, ErrUnknownCaller
	default:
		return Account{}, fmt.Errorf("%w: directory returned %d", ErrUnavailable, resp.StatusCode)
	}

	var a Account
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		return Account{}, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	if a.ID == "" || !a.Role.Valid() {
		return Account{}, fmt.Errorf("%w: malformed directory entry", ErrUnavailable)
	}
	return a, nil
}
