// Package payslip exports payslips to PDF. The PDF engine is optional: without
// one, Export logs a warning and reports failure instead of erroring.
package payslip

import (
	"path/filepath"
	"regexp"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/gosuda/backoffice/internal/domain"
)

// Payslip is the data printed on a payslip.
type Payslip struct {
	EmployeeName string
	Period       string
	Gross        decimal.Decimal
	Tax          decimal.Decimal
	Deductions   decimal.Decimal
	Net          decimal.Decimal
	Notes        string
}

// FromPayroll builds a payslip from a payroll entry.
func FromPayroll(e domain.PayrollEntry) Payslip {
	return Payslip{
		EmployeeName: e.EmployeeName,
		Period:       e.Period,
		Gross:        e.Gross,
		Tax:          e.Tax,
		Deductions:   e.Deductions,
		Net:          e.Net,
		Notes:        e.Notes,
	}
}

// Engine renders a payslip to a file.
type Engine interface {
	Render(p Payslip, path string) error
}

// Exporter writes payslips into a directory through an optional Engine.
type Exporter struct {
	engine Engine
	dir    string
}

// NewExporter creates an exporter writing into dir. engine may be nil.
func NewExporter(engine Engine, dir string) *Exporter {
	return &Exporter{engine: engine, dir: dir}
}

// Export renders p to filename (or DefaultFilename(p) when empty) and returns
// the written path. It never returns an error: ok is false when no engine is
// configured or rendering failed.
func (e *Exporter) Export(p Payslip, filename string) (path string, ok bool) {
	if e.engine == nil {
		log.Warn().Str("employee", p.EmployeeName).Msg("payslip: pdf engine not available")
		return "", false
	}

	if filename == "" {
		filename = DefaultFilename(p)
	}
	path = filepath.Join(e.dir, filename)

	if err := e.engine.Render(p, path); err != nil {
		log.Error().Err(err).Str("path", path).Msg("payslip: render failed")
		return "", false
	}

	log.Info().Str("path", path).Msg("payslip exported")
	return path, true
}

var whitespace = regexp.MustCompile(`\s+`) //nolint:gochecknoglobals // compiled once

// DefaultFilename returns <employee name>_payslip_<period>.pdf with runs of
// whitespace in the name replaced by underscores.
func DefaultFilename(p Payslip) string {
	return whitespace.ReplaceAllString(p.EmployeeName, "_") + "_payslip_" + p.Period + ".pdf"
}
