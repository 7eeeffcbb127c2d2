// Package fs implements file-system adapters.
package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/forgebit/mailforge/internal/domain"
)

// ReportFile implements ports.ReportWriter using a text file in a directory.
type ReportFile struct {
	dir string
}

// NewReportFile creates a writer that persists reports under dir.
func NewReportFile(dir string) *ReportFile {
	if dir == "" {
		dir = "."
	}
	return &ReportFile{dir: dir}
}

// Write persists the rendered report atomically (write to temp file, then
// rename) and returns the final path. The filename carries the generation
// timestamp so successive runs never clobber each other.
func (w *ReportFile) Write(report domain.Report, rendered string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o700); err != nil {
		return "", err
	}

	name := fmt.Sprintf("mailforge-report-%s.txt", report.GeneratedAt.Format("20060102-150405"))
	path := filepath.Join(w.dir, name)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, []byte(rendered), 0o600); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return path, nil
}
