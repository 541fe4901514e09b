// internal/importer/result.go
package importer

import (
	"fmt"

	"github.com/bartek5186/dnimport/internal/datanorm"
)

// Counts – wiersze zapisane (albo, przy rollbacku, przetworzone) per rodzaj.
type Counts struct {
	Articles      int `json:"articles"`
	Texts         int `json:"texts"`
	Warengruppen  int `json:"warengruppen"`
	Rabattgruppen int `json:"rabattgruppen"`
	Prices        int `json:"prices"`
	PriceTiers    int `json:"priceTiers"`
	Media         int `json:"media"`
	Sets          int `json:"sets"`
	Errors        int `json:"errors"`
}

func (c *Counts) add(o Counts) {
	c.Articles += o.Articles
	c.Texts += o.Texts
	c.Warengruppen += o.Warengruppen
	c.Rabattgruppen += o.Rabattgruppen
	c.Prices += o.Prices
	c.PriceTiers += o.PriceTiers
	c.Media += o.Media
	c.Sets += o.Sets
	c.Errors += o.Errors
}

// LineError – błąd jednej linii; trafia do raportu JSON.
type LineError struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Err  string `json:"error"`
}

func (e LineError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Err)
}

const (
	ReasonDryRun     = "dry-run"
	ReasonErrorRatio = "error-ratio"
)

// FileResult – wynik jednego pliku (commit albo rollback całości).
type FileResult struct {
	Name       string           `json:"name"`
	Version    datanorm.Version `json:"version"`
	Header     *datanorm.Header `json:"header,omitempty"`
	Lines      int              `json:"lines"`
	Success    int              `json:"success"`
	Skipped    int              `json:"skipped"`
	Errors     int              `json:"errors"`
	ErrorRatio float64          `json:"errorRatio"`
	Committed  bool             `json:"committed"`
	Reason     string           `json:"rollbackReason,omitempty"`
	Counts     Counts           `json:"counts"`
}

// Result – wynik całej sesji importu.
type Result struct {
	SessionID  string           `json:"sessionId"`
	Supplier   string           `json:"supplier,omitempty"`
	Version    datanorm.Version `json:"version"`
	DryRun     bool             `json:"dryRun"`
	Files      []string         `json:"files"`
	FileInfo   []FileResult     `json:"fileResults"`
	Counts     Counts           `json:"counts"`
	ReportPath string           `json:"reportPath"`

	errors []LineError
}

// LineErrors – wszystkie błędy linii w kolejności wystąpienia.
func (r *Result) LineErrors() []LineError { return r.errors }

// Progress – liczniki narastające w obrębie pliku, po każdej linii.
type Progress struct {
	File    string
	Line    int
	Success int
	Skipped int
	Errors  int
}

type ProgressFunc func(Progress)
