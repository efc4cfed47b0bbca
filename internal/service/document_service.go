package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"backend/internal/document"
	"backend/internal/model"
	"backend/internal/pricing"
	"backend/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const documentDateLayout = "02/01/2006"

// InvoiceBundle is the downloadable artifact: a ZIP holding the filled
// DOCX and its PDF rendition.
type InvoiceBundle struct {
	Filename string
	Content  []byte
}

// --- Interface ---

type DocumentService interface {
	BuildInvoiceBundle(ctx context.Context, id string) (*InvoiceBundle, error)
}

type documentService struct {
	invoiceRepo  repository.InvoiceRepository
	pricingRules PricingRuleService
	converter    document.Converter // nil: render the PDF natively
	templatePath string
}

func NewDocumentService(
	invoiceRepo repository.InvoiceRepository,
	pricingRules PricingRuleService,
	converter document.Converter,
	templatePath string,
) DocumentService {
	return &documentService{
		invoiceRepo:  invoiceRepo,
		pricingRules: pricingRules,
		converter:    converter,
		templatePath: templatePath,
	}
}

// --- Implementation ---

// BuildInvoiceBundle recomputes the invoice breakdown from the stored
// base price, fills the DOCX template and produces the PDF. Document
// generation is a pure side effect: the invoice record was committed
// long before and no failure here touches it.
func (s *documentService) BuildInvoiceBundle(ctx context.Context, id string) (*InvoiceBundle, error) {
	invoiceID, err := parseInvoiceID(id)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.FindByIDWithClient(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("Fattura non trovata.")
		}
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice.Client == nil {
		return nil, notFoundError("Cliente non trovato.")
	}

	cfg, err := s.pricingRules.ResolveConfig(ctx, invoice.Year)
	if err != nil {
		return nil, err
	}
	breakdown := pricing.Calculate(cfg, invoice.SessionCount, invoice.BaseUnitPrice)

	data := buildInvoiceData(invoice, cfg, breakdown)

	template, err := os.ReadFile(s.templatePath)
	if err != nil {
		return nil, notFoundError("Template della fattura non trovato.")
	}

	docx, err := document.FillTemplate(template, data.Fields())
	if err != nil {
		return nil, fmt.Errorf("failed to fill invoice template: %w", err)
	}

	baseName := fmt.Sprintf("fattura_%d_%d", invoice.Number, invoice.Year)

	var pdf []byte
	if s.converter != nil {
		pdf, err = s.converter.ConvertToPDF(ctx, docx, baseName+".docx")
		if err != nil {
			log.Error().Err(err).Str("invoice", invoice.DocumentNumber()).Msg("pdf conversion failed")
			return nil, externalError("Errore nella conversione a PDF (problema con il servizio di conversione).")
		}
	} else {
		pdf, err = document.BuildPDF(data)
		if err != nil {
			return nil, fmt.Errorf("failed to render pdf: %w", err)
		}
	}

	bundle, err := document.BundleZip(map[string][]byte{
		baseName + ".docx": docx,
		baseName + ".pdf":  pdf,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to bundle invoice documents: %w", err)
	}

	return &InvoiceBundle{Filename: baseName + ".zip", Content: bundle}, nil
}

// --- Helpers ---

func buildInvoiceData(invoice *model.Invoice, cfg pricing.Config, breakdown pricing.Breakdown) document.InvoiceData {
	data := document.InvoiceData{
		Number:           fmt.Sprintf("%d", invoice.Number),
		IssueDate:        invoice.IssueDate.Format(documentDateLayout),
		ClientFirstName:  invoice.Client.FirstName,
		ClientLastName:   invoice.Client.LastName,
		ClientFiscalCode: invoice.Client.FiscalCode,
		ClientAddress:    invoice.Client.Address,
		ClientCity:       invoice.Client.City,
		ClientPostalCode: invoice.Client.PostalCode,
		Description:      pricing.Description(invoice.SessionCount),
		SessionCount:     pricing.FormatSessionCount(invoice.SessionCount),
		Subtotal:         formatEuro(breakdown.Subtotal),
		Contribution:     formatEuro(breakdown.Contribution),
		TaxableTotal:     formatEuro(breakdown.TaxableTotal),
		Total:            formatEuro(breakdown.GrandTotal),
		PaymentMethod:    invoice.PaymentMethod,
		PaymentDate:      "Non pagato",
	}

	if invoice.PaymentDate != nil {
		data.PaymentDate = invoice.PaymentDate.Format(documentDateLayout)
	}

	if breakdown.StampDuty {
		data.StampNoticeLong = fmt.Sprintf(
			"Imposta di bollo da %s euro assolta sull'originale per importi maggiori di %s euro",
			formatComma(cfg.StampDutyCost), formatComma(cfg.StampDutyThreshold))
		data.StampNoticeShort = "Imposta di Bollo - Esc. Art. 15"
		data.StampAmount = strings.ReplaceAll("€"+breakdown.StampDutyAmount.StringFixed(2), ".", ",")
	}

	return data
}

// formatEuro renders "€ 58,82" for the document body.
func formatEuro(amount decimal.Decimal) string {
	return "€ " + strings.ReplaceAll(amount.StringFixed(2), ".", ",")
}

// formatComma renders a bare amount with the Italian separator,
// trailing zeros trimmed ("2", "77,47").
func formatComma(amount decimal.Decimal) string {
	return strings.ReplaceAll(amount.String(), ".", ",")
}
