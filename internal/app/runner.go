package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/forgebit/mailforge/internal/domain"
	"github.com/forgebit/mailforge/internal/ports"
)

// resolver drives a single account to a terminal outcome.
// *Governor is the production implementation.
type resolver interface {
	Resolve(ctx context.Context, acct domain.Account) (domain.Outcome, int, error)
}

// Runner drives the ordered account sequence through the governor with one
// request in flight at any time. The upstream rate budget cannot tolerate
// concurrency, so the loop is strictly sequential; the ledger has a single
// writer appending in request order.
type Runner struct {
	governor resolver
	observer ports.ProgressObserver
	logger   ports.Logger
	pacing   atomic.Int64 // nanoseconds between entries; retunable mid-run
	sleep    sleepFunc
}

// NewRunner creates a runner. pacing <= 0 falls back to the default.
func NewRunner(governor *Governor, observer ports.ProgressObserver, logger ports.Logger, pacing time.Duration) *Runner {
	r := &Runner{
		governor: governor,
		observer: observer,
		logger:   logger,
		sleep:    ctxSleep,
	}
	if pacing <= 0 {
		pacing = DefaultPacing
	}
	r.pacing.Store(int64(pacing))
	return r
}

// SetPacing retunes the fixed inter-request delay. Safe to call while a run
// is in progress; the next pacing wait observes the new value.
func (r *Runner) SetPacing(pacing time.Duration) {
	if pacing <= 0 {
		return
	}
	r.pacing.Store(int64(pacing))
}

// Run resolves every account in order and returns the ledger.
//
// A terminal per-identity failure never aborts the batch; the runner always
// proceeds to the next account. After every entry except the last it pays a
// fixed pacing delay, independent of any governor backoff, to stay under the
// upstream budget even on the success path.
//
// Cancellation is cooperative: when the context is done, the runner stops
// issuing requests and returns the entries recorded so far. An account whose
// resolution was interrupted mid-wait is not recorded; the returned ledger
// holds only fully-resolved entries.
func (r *Runner) Run(ctx context.Context, accounts []domain.Account) []domain.LedgerEntry {
	total := len(accounts)
	entries := make([]domain.LedgerEntry, 0, total)

	for i, acct := range accounts {
		outcome, attempts, err := r.governor.Resolve(ctx, acct)
		if err != nil {
			r.logger.Info("batch cancelled",
				ports.Int("resolved", len(entries)),
				ports.Int("total", total),
			)
			return entries
		}

		entry := domain.LedgerEntry{Account: acct, Outcome: outcome, Attempts: attempts}
		entries = append(entries, entry)

		r.logger.Info("account resolved",
			ports.String("address", acct.Address),
			ports.String("outcome", outcome.Kind.String()),
			ports.Int("attempts", attempts),
			ports.Int("index", i+1),
			ports.Int("total", total),
		)
		if r.observer != nil {
			r.observer.OnResolved(i, total, entry)
		}

		if i < total-1 {
			if err := r.sleep(ctx, time.Duration(r.pacing.Load())); err != nil {
				r.logger.Info("batch cancelled",
					ports.Int("resolved", len(entries)),
					ports.Int("total", total),
				)
				return entries
			}
		}
	}
	return entries
}
