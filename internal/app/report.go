package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/forgebit/mailforge/internal/domain"
)

// Aggregate partitions ledger entries into the final report: created and
// already-existing identities count as successes, everything else as
// failures. Pure; the entries slice is referenced, never copied or mutated.
func Aggregate(runID string, generatedAt time.Time, entries []domain.LedgerEntry) domain.Report {
	report := domain.Report{
		RunID:       runID,
		GeneratedAt: generatedAt,
		Entries:     entries,
	}
	for _, e := range entries {
		if e.Outcome.Success() {
			report.Created++
		} else {
			report.Failed++
		}
	}
	return report
}

// RenderText renders the persisted report form: a header with the generation
// timestamp, run ID and counts, then one line per successful identity
// (address + password), then one line per failed identity (address +
// diagnostic). Every ledger entry appears in exactly one block.
func RenderText(report domain.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "mailforge batch report\n")
	fmt.Fprintf(&b, "run:       %s\n", report.RunID)
	fmt.Fprintf(&b, "generated: %s\n", report.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "created:   %d\n", report.Created)
	fmt.Fprintf(&b, "failed:    %d\n", report.Failed)

	b.WriteString("\n== provisioned ==\n")
	for _, e := range report.Entries {
		if !e.Outcome.Success() {
			continue
		}
		fmt.Fprintf(&b, "%s\t%s\n", e.Account.Address, e.Account.Password)
	}

	b.WriteString("\n== failed ==\n")
	for _, e := range report.Entries {
		if e.Outcome.Success() {
			continue
		}
		fmt.Fprintf(&b, "%s\t%s\n", e.Account.Address, e.Outcome.Diagnostic)
	}

	return b.String()
}
