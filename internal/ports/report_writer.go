package ports

import "github.com/forgebit/mailforge/internal/domain"

// ReportWriter persists a rendered batch report.
// Implementations write to disk (or other storage) atomically.
type ReportWriter interface {
	// Write persists the rendered report and returns the path it was
	// written to.
	Write(report domain.Report, rendered string) (string, error)
}
