package app

import (
	"context"
	"time"

	"github.com/forgebit/mailforge/internal/domain"
	"github.com/forgebit/mailforge/internal/ports"
)

// sleepFunc waits for d or until ctx is done. Injected in tests for
// deterministic wait assertions.
type sleepFunc func(ctx context.Context, d time.Duration) error

// ctxSleep is the production sleepFunc.
func ctxSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Governor resolves one account at a time: a single paced attempt followed
// by exponential-backoff retries for rate-limited and transient outcomes,
// under a bounded retry budget. Both retryable kinds share one budget and
// one attempt counter.
type Governor struct {
	svc        ports.AccountService
	logger     ports.Logger
	maxRetries int
	baseDelay  time.Duration
	sleep      sleepFunc
}

// NewGovernor creates a governor over the given account service.
// maxRetries <= 0 and baseDelay <= 0 fall back to the defaults.
func NewGovernor(svc ports.AccountService, logger ports.Logger, maxRetries int, baseDelay time.Duration) *Governor {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	return &Governor{
		svc:        svc,
		logger:     logger,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		sleep:      ctxSleep,
	}
}

// Resolve drives one account to a terminal outcome and returns it with the
// number of creation attempts made.
//
// The initial baseDelay wait is paid before the first attempt on every
// account: steady-state throttling, not backoff after failure. Retry waits
// grow as baseDelay*2^(k-1); when the upstream sends a longer Retry-After
// hint, the hint wins for that wait. Budget exhaustion yields a permanent
// "max retries exceeded" outcome with maxRetries+1 attempts.
//
// A non-nil error means the context was cancelled before a terminal outcome
// was reached; the caller must not record a ledger entry for it.
func (g *Governor) Resolve(ctx context.Context, acct domain.Account) (domain.Outcome, int, error) {
	if err := g.sleep(ctx, g.baseDelay); err != nil {
		return domain.Outcome{}, 0, err
	}

	back := newBackoff(g.baseDelay)
	attempts := 0
	for {
		attempts++
		out := g.svc.CreateAccount(ctx, acct)
		if !out.Retryable() {
			return out, attempts, nil
		}

		if attempts > g.maxRetries {
			g.logger.Warn("retry budget exhausted",
				ports.String("address", acct.Address),
				ports.Int("attempts", attempts),
			)
			return domain.Permanent("max retries exceeded"), attempts, nil
		}

		wait := back.Next()
		if out.RetryAfter > wait {
			wait = out.RetryAfter
		}
		g.logger.Debug("retrying",
			ports.String("address", acct.Address),
			ports.String("outcome", out.Kind.String()),
			ports.Int("attempt", attempts),
			ports.Duration("wait", wait),
		)
		if err := g.sleep(ctx, wait); err != nil {
			return domain.Outcome{}, attempts, err
		}
	}
}
