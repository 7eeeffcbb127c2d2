package ports

import "github.com/forgebit/mailforge/internal/domain"

// ProgressObserver receives a notification after each account reaches a
// terminal outcome. Called once per ledger entry, in ledger order, from the
// batch loop. Side effect only: implementations must never influence
// control flow.
type ProgressObserver interface {
	// OnResolved reports entry index (0-based) of total and the appended
	// ledger entry.
	OnResolved(index, total int, entry domain.LedgerEntry)
}
