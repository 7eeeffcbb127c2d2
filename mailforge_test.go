package mailforge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgebit/mailforge/internal/domain"
)

// fakeUpstream emulates the account API: it02 is rate limited once before
// succeeding, it03 is already taken, it04 is rejected outright.
type fakeUpstream struct {
	mu       sync.Mutex
	attempts map[string]int
}

func (f *fakeUpstream) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/domains", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"domain":"x.com"}]`))
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/accounts", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Address string `json:"address"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)

		f.mu.Lock()
		f.attempts[payload.Address]++
		n := f.attempts[payload.Address]
		f.mu.Unlock()

		switch {
		case strings.HasPrefix(payload.Address, "it02") && n == 1:
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
		case strings.HasPrefix(payload.Address, "it03"):
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"violations":[{"propertyPath":"address","message":"This value is already used."}]}`))
		case strings.HasPrefix(payload.Address, "it04"):
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`malformed address`))
		default:
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"up-` + payload.Address + `"}`))
		}
	})
	return mux
}

func testConfig(t *testing.T, url string) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ServiceURL = url
	cfg.BaseName = "it"
	cfg.Domain = "x.com"
	cfg.Password = "secret123"
	cfg.Count = 4
	cfg.MaxRetries = 2
	cfg.RetryDelay = time.Millisecond
	cfg.Pacing = time.Millisecond
	cfg.ReportDir = t.TempDir()
	return cfg
}

type countingObserver struct {
	mu      sync.Mutex
	entries []domain.LedgerEntry
}

func (o *countingObserver) OnResolved(index, total int, entry domain.LedgerEntry) {
	o.mu.Lock()
	o.entries = append(o.entries, entry)
	o.mu.Unlock()
}

func TestEngine_Run(t *testing.T) {
	upstream := &fakeUpstream{attempts: map[string]int{}}
	srv := httptest.NewServer(upstream.handler())
	defer srv.Close()

	obs := &countingObserver{}
	engine := New(testConfig(t, srv.URL), WithObserver(obs))

	report, path, err := engine.Run(context.Background())
	require.NoError(t, err)

	// it01 created, it02 created after one retry, it03 already taken
	// (success), it04 permanently rejected.
	assert.Equal(t, 3, report.Created)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Entries, 4)

	assert.Equal(t, "it01@x.com", report.Entries[0].Account.Address)
	assert.Equal(t, domain.OutcomeCreated, report.Entries[0].Outcome.Kind)
	assert.Equal(t, "up-it01@x.com", report.Entries[0].Outcome.UpstreamID)

	assert.Equal(t, domain.OutcomeCreated, report.Entries[1].Outcome.Kind)
	assert.Equal(t, 2, report.Entries[1].Attempts)

	assert.Equal(t, domain.OutcomeAlreadyExists, report.Entries[2].Outcome.Kind)
	assert.Equal(t, 1, report.Entries[2].Attempts)

	assert.Equal(t, domain.OutcomePermanent, report.Entries[3].Outcome.Kind)
	assert.Contains(t, report.Entries[3].Outcome.Diagnostic, "400")

	assert.NotEmpty(t, report.RunID)

	// Persisted report matches the ledger.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "it01@x.com\tsecret123")
	assert.Contains(t, string(data), "it04@x.com")

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Len(t, obs.entries, 4)
}

func TestEngine_RunInvalidParameters(t *testing.T) {
	upstream := &fakeUpstream{attempts: map[string]int{}}
	srv := httptest.NewServer(upstream.handler())
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	cfg.Count = 0

	_, _, err := New(cfg).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestEngine_RunCancelledReturnsPartialReport(t *testing.T) {
	upstream := &fakeUpstream{attempts: map[string]int{}}
	srv := httptest.NewServer(upstream.handler())
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	cfg.Count = 50

	ctx, cancel := context.WithCancel(context.Background())
	engine := New(cfg, WithObserver(observerFunc(func(index, total int, entry domain.LedgerEntry) {
		if index == 1 {
			cancel()
		}
	})))

	report, path, err := engine.Run(ctx)
	require.NoError(t, err)

	// Every recorded entry is fully resolved; nothing partial.
	require.NotEmpty(t, report.Entries)
	assert.Less(t, len(report.Entries), 50)
	for _, e := range report.Entries {
		assert.True(t, e.Outcome.Success())
	}
	assert.FileExists(t, path)
}

type observerFunc func(index, total int, entry domain.LedgerEntry)

func (f observerFunc) OnResolved(index, total int, entry domain.LedgerEntry) {
	f(index, total, entry)
}

func TestEngine_Domains(t *testing.T) {
	upstream := &fakeUpstream{attempts: map[string]int{}}
	srv := httptest.NewServer(upstream.handler())
	defer srv.Close()

	domains, err := New(testConfig(t, srv.URL)).Domains(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"x.com"}, domains)
}
