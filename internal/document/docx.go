// Package document produces the downloadable invoice artifacts: a DOCX
// filled from a placeholder template, a PDF (converted externally or
// rendered natively) and the ZIP bundling both.
package document

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// InvoiceData is the flat field set substituted into the document
// template. Every amount arrives already formatted with the Italian
// comma separator.
type InvoiceData struct {
	Number           string
	IssueDate        string
	ClientFirstName  string
	ClientLastName   string
	ClientFiscalCode string
	ClientAddress    string
	ClientCity       string
	ClientPostalCode string
	Description      string
	SessionCount     string
	Subtotal         string
	Contribution     string
	TaxableTotal     string
	Total            string
	StampNoticeLong  string
	StampNoticeShort string
	StampAmount      string
	PaymentMethod    string
	PaymentDate      string
}

// Fields maps the data onto the placeholder names used by the template.
func (d InvoiceData) Fields() map[string]string {
	return map[string]string{
		"numero_fattura":             d.Number,
		"data_fattura":               d.IssueDate,
		"cliente_nome":               d.ClientFirstName,
		"cliente_cognome":            d.ClientLastName,
		"cliente_codice_fiscale":     d.ClientFiscalCode,
		"cliente_indirizzo":          d.ClientAddress,
		"cliente_citta":              d.ClientCity,
		"cliente_cap":                d.ClientPostalCode,
		"descrizione":                d.Description,
		"numero_sedute":              d.SessionCount,
		"subtotale_prestazioni":      d.Subtotal,
		"contributo":                 d.Contribution,
		"totale_imponibile":          d.TaxableTotal,
		"bollo_descrizione_estesa":   d.StampNoticeLong,
		"bollo_descrizione_semplice": d.StampNoticeShort,
		"bollo_importo_formattato":   d.StampAmount,
		"totale":                     d.Total,
		"metodo_pagamento":           d.PaymentMethod,
		"data_pagamento":             d.PaymentDate,
	}
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// FillTemplate substitutes {{placeholder}} occurrences in the XML parts
// of a DOCX template. A DOCX is a ZIP archive; only word/*.xml entries
// carry text, the rest is copied through untouched.
func FillTemplate(template []byte, fields map[string]string) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, fmt.Errorf("invalid docx template: %w", err)
	}

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	for _, entry := range reader.File {
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open template entry %s: %w", entry.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read template entry %s: %w", entry.Name, err)
		}

		if strings.HasPrefix(entry.Name, "word/") && strings.HasSuffix(entry.Name, ".xml") {
			content := string(data)
			for key, value := range fields {
				escaped := xmlEscaper.Replace(value)
				content = strings.ReplaceAll(content, "{{ "+key+" }}", escaped)
				content = strings.ReplaceAll(content, "{{"+key+"}}", escaped)
			}
			data = []byte(content)
		}

		out, err := writer.CreateHeader(&zip.FileHeader{Name: entry.Name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("failed to write entry %s: %w", entry.Name, err)
		}
		if _, err := out.Write(data); err != nil {
			return nil, fmt.Errorf("failed to write entry %s: %w", entry.Name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize docx: %w", err)
	}
	return buf.Bytes(), nil
}

// BundleZip packs the named files into a single ZIP archive.
func BundleZip(files map[string][]byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	for name, data := range files {
		out, err := writer.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("failed to add %s to bundle: %w", name, err)
		}
		if _, err := out.Write(data); err != nil {
			return nil, fmt.Errorf("failed to add %s to bundle: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize bundle: %w", err)
	}
	return buf.Bytes(), nil
}
