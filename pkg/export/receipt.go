package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Receipt carries the fields printed on a payment receipt.
type Receipt struct {
	Number      string
	IssuedAt    time.Time
	StudentName string
	CourseName  string
	Amount      float64
	Method      string
	Module      string
	TotalPaid   float64
	Remaining   float64
}

// RenderReceipt creates a single-page PDF receipt for one payment.
func (e *PDFExporter) RenderReceipt(r Receipt) ([]byte, error) {
	if r.Number == "" {
		return nil, fmt.Errorf("receipt requires a number")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "RECU DE PAIEMENT", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("N° %s - %s", r.Number, r.IssuedAt.Format("2006-01-02 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	line := func(label, value string) {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(60, 8, label, "1", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(120, 8, value, "1", 1, "", false, 0, "")
	}

	line("Apprenant", r.StudentName)
	line("Formation", r.CourseName)
	line("Module", r.Module)
	line("Mode de paiement", r.Method)
	line("Montant", fmt.Sprintf("%.2f", r.Amount))
	line("Total payé", fmt.Sprintf("%.2f", r.TotalPaid))
	line("Reste à payer", fmt.Sprintf("%.2f", r.Remaining))

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
