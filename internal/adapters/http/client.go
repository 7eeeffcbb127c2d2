// Package http implements the upstream account API adapter.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/forgebit/mailforge/internal/domain"
	"github.com/forgebit/mailforge/internal/ports"
)

const (
	domainsEndpoint  = "/domains"
	accountsEndpoint = "/accounts"
	tokenEndpoint    = "/token"
)

// alreadyUsedMarker is the substring the upstream puts in a 422 body when
// the address is taken. This is the one place the upstream's informal API
// shape leaks into the outcome taxonomy; the coupling is pinned by a
// fixture test.
const alreadyUsedMarker = "already used"

// maxBodyBytes caps how much of a response body is read for diagnostics.
const maxBodyBytes = 64 << 10

// Client implements ports.AccountService against the remote HTTP API.
type Client struct {
	baseURL string
	client  ports.HTTPClient
	logger  ports.Logger
}

// NewClient creates a client for the service at baseURL (no trailing slash).
func NewClient(baseURL string, client ports.HTTPClient, logger ports.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

type credentialsPayload struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}

type accountCreated struct {
	ID string `json:"id"`
}

// CreateAccount issues exactly one POST /accounts call and classifies the
// result:
//
//   - 2xx: created (upstream ID captured when present)
//   - 422 with the "already used" marker: already exists (success)
//   - 429: rate limited (Retry-After delta-seconds hint when present)
//   - 5xx or transport failure: transient
//   - anything else: permanent, with status and body in the diagnostic
func (c *Client) CreateAccount(ctx context.Context, acct domain.Account) domain.Outcome {
	payload, err := json.Marshal(credentialsPayload{Address: acct.Address, Password: acct.Password})
	if err != nil {
		return domain.Permanent(fmt.Sprintf("marshal request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+accountsEndpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.Permanent(fmt.Sprintf("create request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// Timeouts, resets and DNS failures all surface here.
		return domain.Transient(fmt.Sprintf("transport: %v", err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))

	switch {
	case resp.StatusCode/100 == 2:
		var created accountCreated
		if err := json.Unmarshal(body, &created); err == nil {
			return domain.Created(created.ID)
		}
		return domain.Created("")

	case resp.StatusCode == http.StatusUnprocessableEntity &&
		strings.Contains(strings.ToLower(string(body)), alreadyUsedMarker):
		return domain.AlreadyExists()

	case resp.StatusCode == http.StatusTooManyRequests:
		return domain.RateLimited(parseRetryAfter(resp.Header.Get("Retry-After")))

	case resp.StatusCode/100 == 5:
		return domain.Transient(fmt.Sprintf("server returned %d: %s", resp.StatusCode, body))

	default:
		return domain.Permanent(fmt.Sprintf("server returned %d: %s", resp.StatusCode, body))
	}
}

// Authenticate probes POST /token with the account's credentials.
// True iff the pair authenticates (2xx). Any failure is false, never an
// error: the probe is advisory and must not block the batch.
func (c *Client) Authenticate(ctx context.Context, acct domain.Account) bool {
	payload, err := json.Marshal(credentialsPayload{Address: acct.Address, Password: acct.Password})
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenEndpoint, bytes.NewReader(payload))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("existence probe failed", ports.Err(err))
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	return resp.StatusCode/100 == 2
}

type domainEntry struct {
	Domain string `json:"domain"`
}

// Domains fetches GET /domains. The response is an array of objects with a
// domain field; Platform-style deployments wrap the array in a hydra:member
// collection, which is tolerated.
func (c *Client) Domains(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+domainsEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch domains: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read domains response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, body)
	}

	var entries []domainEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		var wrapped struct {
			Member []domainEntry `json:"hydra:member"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("decode domains response: %w", err)
		}
		entries = wrapped.Member
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Domain != "" {
			names = append(names, e.Domain)
		}
	}
	return names, nil
}

// parseRetryAfter parses the delta-seconds form of a Retry-After header.
// Zero when absent or unparseable.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
