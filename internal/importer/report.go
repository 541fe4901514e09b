// internal/importer/report.go
package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type reportFile struct {
	SessionID string       `json:"sessionId"`
	CreatedAt time.Time    `json:"createdAt"`
	DryRun    bool         `json:"dryRun"`
	Files     []FileResult `json:"files"`
	Errors    []LineError  `json:"errors"`
}

// writeReport zapisuje raport błędów sesji – zawsze, także gdy pliki poszły do rollbacku.
func writeReport(dir string, res *Result, now time.Time) (string, error) {
	if dir == "" {
		dir = "reports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("katalog raportów: %w", err)
	}

	short := res.SessionID
	if len(short) > 8 {
		short = short[:8]
	}
	name := fmt.Sprintf("import_report_%s_%s.json", now.Format("20060102_150405"), short)
	path := filepath.Join(dir, name)

	errs := res.errors
	if errs == nil {
		errs = []LineError{}
	}
	body := reportFile{
		SessionID: res.SessionID,
		CreatedAt: now.UTC(),
		DryRun:    res.DryRun,
		Files:     res.FileInfo,
		Errors:    errs,
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(body); err != nil {
		return "", fmt.Errorf("zapis raportu: %w", err)
	}
	return path, nil
}
