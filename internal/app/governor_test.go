package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logadapter "github.com/forgebit/mailforge/internal/adapters/log"
	"github.com/forgebit/mailforge/internal/domain"
)

// scriptedService plays back a fixed outcome sequence; the last outcome
// repeats if more calls arrive.
type scriptedService struct {
	outcomes []domain.Outcome
	calls    int
}

func (s *scriptedService) CreateAccount(ctx context.Context, acct domain.Account) domain.Outcome {
	i := s.calls
	if i >= len(s.outcomes) {
		i = len(s.outcomes) - 1
	}
	s.calls++
	return s.outcomes[i]
}

func (s *scriptedService) Authenticate(ctx context.Context, acct domain.Account) bool {
	return false
}

func (s *scriptedService) Domains(ctx context.Context) ([]string, error) {
	return nil, nil
}

// recordSleep replaces the governor's sleep with a recorder that never waits.
func recordSleep(waits *[]time.Duration) sleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		*waits = append(*waits, d)
		return nil
	}
}

var testAccount = domain.Account{Address: "abc01@x.com", Password: "secret123"}

func TestGovernor_BackoffSchedule(t *testing.T) {
	svc := &scriptedService{outcomes: []domain.Outcome{
		domain.RateLimited(0),
		domain.RateLimited(0),
		domain.Created("id-1"),
	}}
	g := NewGovernor(svc, logadapter.NewNoopLogger(), 7, time.Second)

	var waits []time.Duration
	g.sleep = recordSleep(&waits)

	out, attempts, err := g.Resolve(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCreated, out.Kind)
	assert.Equal(t, 3, attempts)

	// Initial pacing delay, then backoff doubling: 1s + 1s + 2s.
	assert.Equal(t, []time.Duration{time.Second, time.Second, 2 * time.Second}, waits)
}

func TestGovernor_BudgetExhausted(t *testing.T) {
	svc := &scriptedService{outcomes: []domain.Outcome{domain.RateLimited(0)}}
	g := NewGovernor(svc, logadapter.NewNoopLogger(), 7, time.Second)

	var waits []time.Duration
	g.sleep = recordSleep(&waits)

	out, attempts, err := g.Resolve(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomePermanent, out.Kind)
	assert.Equal(t, "max retries exceeded", out.Diagnostic)
	assert.Equal(t, 8, attempts)

	// Initial delay plus one wait per consumed retry.
	require.Len(t, waits, 8)
	assert.Equal(t, []time.Duration{
		time.Second,
		time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
		16 * time.Second, 32 * time.Second, 64 * time.Second,
	}, waits)
}

func TestGovernor_SharedBudgetForRetryableKinds(t *testing.T) {
	// RateLimited and Transient consume the same budget and counter.
	svc := &scriptedService{outcomes: []domain.Outcome{
		domain.Transient("reset"),
		domain.RateLimited(0),
		domain.Transient("timeout"),
		domain.RateLimited(0),
	}}
	g := NewGovernor(svc, logadapter.NewNoopLogger(), 3, time.Second)

	var waits []time.Duration
	g.sleep = recordSleep(&waits)

	out, attempts, err := g.Resolve(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomePermanent, out.Kind)
	assert.Equal(t, 4, attempts)
	assert.Equal(t, 4, svc.calls)
}

func TestGovernor_TerminalOutcomesReturnImmediately(t *testing.T) {
	tests := []struct {
		name    string
		outcome domain.Outcome
	}{
		{"created", domain.Created("id-9")},
		{"already exists", domain.AlreadyExists()},
		{"permanent", domain.Permanent("400: malformed")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &scriptedService{outcomes: []domain.Outcome{tt.outcome}}
			g := NewGovernor(svc, logadapter.NewNoopLogger(), 7, time.Second)

			var waits []time.Duration
			g.sleep = recordSleep(&waits)

			out, attempts, err := g.Resolve(context.Background(), testAccount)
			require.NoError(t, err)
			assert.Equal(t, tt.outcome.Kind, out.Kind)
			assert.Equal(t, 1, attempts)
			assert.Equal(t, 1, svc.calls)
			// Only the initial pacing delay is paid.
			assert.Equal(t, []time.Duration{time.Second}, waits)
		})
	}
}

func TestGovernor_RetryAfterHint(t *testing.T) {
	svc := &scriptedService{outcomes: []domain.Outcome{
		domain.RateLimited(10 * time.Second), // hint longer than 1s backoff
		domain.RateLimited(500 * time.Millisecond), // hint shorter than 2s backoff
		domain.Created(""),
	}}
	g := NewGovernor(svc, logadapter.NewNoopLogger(), 7, time.Second)

	var waits []time.Duration
	g.sleep = recordSleep(&waits)

	_, attempts, err := g.Resolve(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	// The longer hint wins; the shorter one is ignored in favor of backoff.
	assert.Equal(t, []time.Duration{time.Second, 10 * time.Second, 2 * time.Second}, waits)
}

func TestGovernor_CancelledDuringWait(t *testing.T) {
	svc := &scriptedService{outcomes: []domain.Outcome{domain.RateLimited(0)}}
	g := NewGovernor(svc, logadapter.NewNoopLogger(), 7, time.Second)

	calls := 0
	g.sleep = func(ctx context.Context, d time.Duration) error {
		calls++
		if calls >= 2 {
			return context.Canceled
		}
		return nil
	}

	_, _, err := g.Resolve(context.Background(), testAccount)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGovernor_Defaults(t *testing.T) {
	g := NewGovernor(&scriptedService{outcomes: []domain.Outcome{domain.Created("")}}, logadapter.NewNoopLogger(), 0, 0)
	assert.Equal(t, DefaultMaxRetries, g.maxRetries)
	assert.Equal(t, DefaultBaseDelay, g.baseDelay)
}

func TestBackoff(t *testing.T) {
	b := newBackoff(time.Second)
	assert.Equal(t, time.Second, b.Next())
	assert.Equal(t, 2*time.Second, b.Next())
	assert.Equal(t, 4*time.Second, b.Next())
	b.Reset()
	assert.Equal(t, time.Second, b.Next())
}
