package ports

import (
	"context"

	"github.com/forgebit/mailforge/internal/domain"
)

// AccountService is the upstream account-creation API as the engine sees it.
// Implementations handle serialization, HTTP communication, and outcome
// classification.
type AccountService interface {
	// CreateAccount issues exactly one creation call upstream and classifies
	// the result. It never sleeps, retries, or counts attempts; its only job
	// is classification.
	CreateAccount(ctx context.Context, acct domain.Account) domain.Outcome

	// Authenticate reports whether the identity/credential pair already
	// authenticates upstream. Best effort: any network or non-2xx response
	// is false, never an error. Advisory only; the result must not alter
	// batch execution.
	Authenticate(ctx context.Context, acct domain.Account) bool

	// Domains lists the selectable domains offered by the service.
	Domains(ctx context.Context) ([]string, error)
}
