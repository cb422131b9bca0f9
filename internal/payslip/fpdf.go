package payslip

import (
	"fmt"

	"github.com/go-pdf/fpdf"
)

// Currency is printed before every amount.
const Currency = "GHS "

// FPDF renders A4 payslips with github.com/go-pdf/fpdf.
type FPDF struct {
	// Title is the heading on the first line.
	Title string
}

// NewFPDF returns an engine with the default heading.
func NewFPDF() *FPDF {
	return &FPDF{Title: "Flawless Graphics - Payslip"}
}

func (f *FPDF) Render(p Payslip, path string) error {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 14)
	doc.Text(40, 40, f.Title)

	doc.SetFont("Helvetica", "", 11)
	doc.Text(40, 72, "Employee: "+p.EmployeeName)
	doc.Text(40, 90, "Period: "+p.Period)
	doc.Text(40, 120, "Gross: "+Currency+p.Gross.StringFixed(2))
	doc.Text(40, 136, "Tax: "+Currency+p.Tax.StringFixed(2))
	doc.Text(40, 152, "Deductions: "+Currency+p.Deductions.StringFixed(2))

	doc.SetFont("Helvetica", "B", 12)
	doc.Text(40, 184, "Net Pay: "+Currency+p.Net.StringFixed(2))

	if p.Notes != "" {
		doc.SetFont("Helvetica", "", 10)
		doc.Text(40, 210, "Notes:")
		doc.SetXY(40, 216)
		doc.MultiCell(515, 12, p.Notes, "", "L", false)
	}

	if err := doc.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("payslip.FPDF.Render: %w", err)
	}
	return nil
}
