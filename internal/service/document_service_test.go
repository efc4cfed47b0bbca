package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingConverter struct{}

func (failingConverter) ConvertToPDF(context.Context, []byte, string) ([]byte, error) {
	return nil, errors.New("conversion unavailable")
}

func writeTestTemplate(t *testing.T) string {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	out, err := writer.Create("word/document.xml")
	require.NoError(t, err)
	_, err = out.Write([]byte(`<w:t>Fattura n. {{numero_fattura}} - {{descrizione}} - {{totale}}</w:t>`))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	path := filepath.Join(t.TempDir(), "invoice_template.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func seedInvoiceWithClient(t *testing.T, invoices *fakeInvoiceRepo) *model.Invoice {
	t.Helper()

	invoice := &model.Invoice{
		Year:          2025,
		Number:        3,
		IssueDate:     time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		PaymentMethod: "Bonifico",
		BaseUnitPrice: decimal.NewFromFloat(58.82),
		SessionCount:  decimal.NewFromInt(1),
		Client: &model.Client{
			FirstName:  "Matteo",
			LastName:   "Moretti",
			FiscalCode: "MRTMTT91D08F205J",
		},
	}
	require.NoError(t, invoices.Create(context.Background(), invoice))
	return invoice
}

func TestBuildInvoiceBundleNativePDF(t *testing.T) {
	invoices := newFakeInvoiceRepo()
	invoice := seedInvoiceWithClient(t, invoices)
	rules := NewPricingRuleService(newFakePricingRuleRepo())

	service := NewDocumentService(invoices, rules, nil, writeTestTemplate(t))

	bundle, err := service.BuildInvoiceBundle(context.Background(), invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "fattura_3_2025.zip", bundle.Filename)

	reader, err := zip.NewReader(bytes.NewReader(bundle.Content), int64(len(bundle.Content)))
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, entry := range reader.File {
		names[entry.Name] = true
	}
	assert.True(t, names["fattura_3_2025.docx"])
	assert.True(t, names["fattura_3_2025.pdf"])

	for _, entry := range reader.File {
		if entry.Name != "fattura_3_2025.docx" {
			continue
		}
		rc, err := entry.Open()
		require.NoError(t, err)
		docx, err := io.ReadAll(rc)
		_ = rc.Close()
		require.NoError(t, err)

		inner, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
		require.NoError(t, err)
		for _, part := range inner.File {
			if part.Name != "word/document.xml" {
				continue
			}
			prc, err := part.Open()
			require.NoError(t, err)
			content, err := io.ReadAll(prc)
			_ = prc.Close()
			require.NoError(t, err)
			assert.Contains(t, string(content), "Fattura n. 3")
			assert.Contains(t, string(content), "n. 1 di Seduta di consulenza psicologica")
			assert.Contains(t, string(content), "€ 60,00")
		}
	}
}

func TestBuildInvoiceBundleMissingTemplate(t *testing.T) {
	invoices := newFakeInvoiceRepo()
	invoice := seedInvoiceWithClient(t, invoices)
	rules := NewPricingRuleService(newFakePricingRuleRepo())

	service := NewDocumentService(invoices, rules, nil, filepath.Join(t.TempDir(), "missing.docx"))

	_, err := service.BuildInvoiceBundle(context.Background(), invoice.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "Template della fattura non trovato.")
}

func TestBuildInvoiceBundleConversionFailure(t *testing.T) {
	invoices := newFakeInvoiceRepo()
	invoice := seedInvoiceWithClient(t, invoices)
	rules := NewPricingRuleService(newFakePricingRuleRepo())

	service := NewDocumentService(invoices, rules, failingConverter{}, writeTestTemplate(t))

	_, err := service.BuildInvoiceBundle(context.Background(), invoice.ID.String())
	assert.ErrorIs(t, err, ErrExternal)
}

func TestBuildInvoiceBundleUnknownInvoice(t *testing.T) {
	rules := NewPricingRuleService(newFakePricingRuleRepo())
	service := NewDocumentService(newFakeInvoiceRepo(), rules, nil, "unused")

	_, err := service.BuildInvoiceBundle(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}
