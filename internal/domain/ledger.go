package domain

import "time"

// LedgerEntry records the terminal resolution of one account.
// Appended exactly once per request, in request order; immutable after
// append. Entry i of the ledger corresponds to account i of the generated
// sequence.
type LedgerEntry struct {
	Account  Account
	Outcome  Outcome
	Attempts int // total creation attempts made, >= 1
}

// Report is the aggregate result of one batch run.
// Never mutated after construction; Created + Failed == len(Entries).
type Report struct {
	// RunID identifies the batch run in logs and the persisted report.
	RunID string

	// GeneratedAt is when the report was assembled.
	GeneratedAt time.Time

	// Entries preserve the exact order of the generated sequence.
	Entries []LedgerEntry

	// Created counts entries whose outcome is a success
	// (created or already_exists).
	Created int

	// Failed counts every other entry.
	Failed int
}
