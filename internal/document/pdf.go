package document

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// BuildPDF renders the invoice natively. It is the fallback used when
// no conversion service is configured, so downloads keep working
// without a Gotenberg instance; the layout mirrors the DOCX template.
func BuildPDF(data InvoiceData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Fattura "+data.Number, false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr("Fattura n. "+data.Number))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, tr("Data: "+data.IssueDate))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 7, tr("Intestatario"))
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, tr(data.ClientFirstName+" "+data.ClientLastName))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr("Codice fiscale: "+data.ClientFiscalCode))
	pdf.Ln(6)
	address := data.ClientAddress
	if data.ClientPostalCode != "" || data.ClientCity != "" {
		address = fmt.Sprintf("%s, %s %s", data.ClientAddress, data.ClientPostalCode, data.ClientCity)
	}
	pdf.Cell(0, 6, tr(address))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 7, tr("Prestazione"))
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, tr(data.Description))
	pdf.Ln(10)

	line := func(label, amount string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Arial", style, 11)
		pdf.CellFormat(130, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, tr(amount), "", 1, "R", false, 0, "")
	}

	line("Subtotale prestazioni", data.Subtotal, false)
	line("Contributo previdenziale", data.Contribution, false)
	line("Totale imponibile", data.TaxableTotal, false)
	if data.StampAmount != "" {
		line(data.StampNoticeShort, data.StampAmount, false)
	}
	line("Totale", data.Total, true)
	pdf.Ln(6)

	if data.StampNoticeLong != "" {
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, tr(data.StampNoticeLong), "", "L", false)
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, tr("Metodo di pagamento: "+data.PaymentMethod))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr("Data di pagamento: "+data.PaymentDate))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
