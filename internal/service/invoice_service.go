package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/pricing"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// EventNotifier broadcasts lifecycle events to connected frontends.
type EventNotifier interface {
	Publish(event string, payload interface{})
}

// --- DTOs ---

type CreateInvoiceRequest struct {
	ClientID           string   `json:"cliente_id" binding:"required"`
	IssueDate          string   `json:"data_fattura" binding:"required"`
	PaymentDate        string   `json:"data_pagamento"`
	PaymentMethod      string   `json:"metodo_pagamento"`
	SessionCount       *float64 `json:"numero_sedute"`
	InclusiveUnitPrice *float64 `json:"prezzo_totale_unitario"`
	ReportedToRegistry bool     `json:"inviata_sns"`
}

type UpdateInvoiceRequest struct {
	ClientID           *string  `json:"cliente_id"`
	IssueDate          string   `json:"data_fattura" binding:"required"`
	PaymentDate        *string  `json:"data_pagamento"`
	PaymentMethod      *string  `json:"metodo_pagamento"`
	SessionCount       *float64 `json:"numero_sedute"`
	InclusiveUnitPrice *float64 `json:"prezzo_totale_unitario"`
	ReportedToRegistry bool     `json:"inviata_sns"`
}

// InvoiceListItem is one row of the per-year invoice register.
type InvoiceListItem struct {
	ID                 string  `json:"id"`
	DocumentNumber     string  `json:"numero_fattura"`
	IssueDate          string  `json:"data_fattura"`
	PaymentDate        *string `json:"data_pagamento"`
	PaymentMethod      string  `json:"metodo_pagamento"`
	Client             string  `json:"cliente"`
	Description        string  `json:"descrizione"`
	Total              string  `json:"totale"`
	ReportedToRegistry bool    `json:"inviata_sns"`
}

// InvoiceYearGroup groups register rows by fiscal year, newest first.
type InvoiceYearGroup struct {
	Year     int               `json:"anno"`
	Invoices []InvoiceListItem `json:"fatture"`
}

// BreakdownResponse mirrors the document footer: every amount already
// rounded and formatted with two decimals.
type BreakdownResponse struct {
	Subtotal        string `json:"subtotale_prestazioni"`
	Contribution    string `json:"contributo"`
	TaxableTotal    string `json:"totale_imponibile"`
	StampDutyAmount string `json:"bollo_importo"`
}

// InvoiceDetail carries everything the edit form needs. The breakdown
// and the all-inclusive unit price are recomputed from the stored base
// price on every read; the persisted total is never the source.
type InvoiceDetail struct {
	ID                 string            `json:"id"`
	DocumentNumber     string            `json:"numero_fattura"`
	IssueDate          string            `json:"data_fattura"`
	PaymentDate        string            `json:"data_pagamento"`
	PaymentMethod      string            `json:"metodo_pagamento"`
	ClientID           string            `json:"cliente_id"`
	SessionCount       float64           `json:"numero_sedute"`
	BaseUnitPrice      float64           `json:"prezzo_unitario"`
	InclusiveUnitPrice float64           `json:"prezzo_totale_unitario"`
	Total              string            `json:"totale"`
	StampDuty          bool              `json:"bollo_applicato"`
	Description        string            `json:"descrizione"`
	ReportedToRegistry bool              `json:"inviata_sns"`
	Breakdown          BreakdownResponse `json:"calcoli"`
}

// --- Interface ---

type InvoiceService interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*model.Invoice, error)
	UpdateInvoice(ctx context.Context, id string, req UpdateInvoiceRequest) (*model.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*InvoiceDetail, error)
	ListInvoices(ctx context.Context, year int) ([]InvoiceYearGroup, error)
	ListYears(ctx context.Context) ([]int, error)
}

type invoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	clientRepo   repository.ClientRepository
	counterRepo  repository.CounterRepository
	pricingRules PricingRuleService
	txManager    repository.TransactionManager
	notifier     EventNotifier
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	counterRepo repository.CounterRepository,
	pricingRules PricingRuleService,
	txManager repository.TransactionManager,
	notifier EventNotifier,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		clientRepo:   clientRepo,
		counterRepo:  counterRepo,
		pricingRules: pricingRules,
		txManager:    txManager,
		notifier:     notifier,
	}
}

// --- Implementation ---

// CreateInvoice validates the request, allocates the next progressivo
// for the current fiscal year and persists the invoice with freshly
// computed totals. Counter increment and insert share one transaction,
// so a failed insert leaves no gap in the numbering.
func (s *invoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*model.Invoice, error) {
	year := time.Now().Year()

	cfg, err := s.pricingRules.ResolveConfig(ctx, year)
	if err != nil {
		return nil, err
	}

	sessions, err := validateSessionCount(cfg, req.SessionCount)
	if err != nil {
		return nil, err
	}

	inclusive, err := validateInclusivePrice(cfg, req.InclusiveUnitPrice)
	if err != nil {
		return nil, err
	}
	basePrice := pricing.BaseFromInclusive(cfg, inclusive)

	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		return nil, err
	}
	paymentDate, err := parseOptionalDate(req.PaymentDate)
	if err != nil {
		return nil, err
	}

	clientID, err := parseClientID(req.ClientID)
	if err != nil {
		return nil, err
	}

	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, findErr := s.clientRepo.FindByID(txCtx, clientID); findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return notFoundError("Cliente non trovato.")
			}
			return fmt.Errorf("failed to load client: %w", findErr)
		}

		number, seqErr := s.counterRepo.NextNumber(txCtx, year)
		if seqErr != nil {
			return fmt.Errorf("failed to allocate invoice number: %w", seqErr)
		}

		breakdown := pricing.Calculate(cfg, sessions, basePrice)

		invoice = &model.Invoice{
			Year:               year,
			Number:             number,
			IssueDate:          issueDate,
			PaymentDate:        paymentDate,
			PaymentMethod:      req.PaymentMethod,
			ClientID:           clientID,
			BaseUnitPrice:      basePrice,
			SessionCount:       sessions,
			Description:        pricing.Description(sessions),
			Total:              breakdown.GrandTotal,
			StampDuty:          breakdown.StampDuty,
			ReportedToRegistry: req.ReportedToRegistry,
		}

		if createErr := s.invoiceRepo.Create(txCtx, invoice); createErr != nil {
			return fmt.Errorf("failed to create invoice: %w", createErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Publish("invoice.created", map[string]interface{}{
			"id":             invoice.ID.String(),
			"numero_fattura": invoice.DocumentNumber(),
			"totale":         invoice.Total.StringFixed(2),
		})
	}

	return invoice, nil
}

// UpdateInvoice applies the editable fields and recomputes description,
// stamp duty and total from the current session count and base price.
// Year and progressivo are immutable.
func (s *invoiceService) UpdateInvoice(ctx context.Context, id string, req UpdateInvoiceRequest) (*model.Invoice, error) {
	invoiceID, err := parseInvoiceID(id)
	if err != nil {
		return nil, err
	}

	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		return nil, err
	}

	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		invoice, findErr = s.invoiceRepo.FindByID(txCtx, invoiceID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return notFoundError("Fattura non trovata.")
			}
			return fmt.Errorf("failed to load invoice: %w", findErr)
		}

		cfg, cfgErr := s.pricingRules.ResolveConfig(txCtx, invoice.Year)
		if cfgErr != nil {
			return cfgErr
		}

		if req.ClientID != nil {
			clientID, idErr := parseClientID(*req.ClientID)
			if idErr != nil {
				return idErr
			}
			if _, clientErr := s.clientRepo.FindByID(txCtx, clientID); clientErr != nil {
				if errors.Is(clientErr, gorm.ErrRecordNotFound) {
					return notFoundError("Cliente non trovato.")
				}
				return fmt.Errorf("failed to load client: %w", clientErr)
			}
			invoice.ClientID = clientID
		}

		invoice.IssueDate = issueDate

		if req.PaymentDate != nil {
			paymentDate, dateErr := parseOptionalDate(*req.PaymentDate)
			if dateErr != nil {
				return dateErr
			}
			invoice.PaymentDate = paymentDate
		}
		if req.PaymentMethod != nil {
			invoice.PaymentMethod = *req.PaymentMethod
		}

		if req.SessionCount != nil {
			sessions, sessErr := validateSessionCount(cfg, req.SessionCount)
			if sessErr != nil {
				return sessErr
			}
			invoice.SessionCount = sessions
		}
		if req.InclusiveUnitPrice != nil {
			inclusive, priceErr := validateInclusivePrice(cfg, req.InclusiveUnitPrice)
			if priceErr != nil {
				return priceErr
			}
			invoice.BaseUnitPrice = pricing.BaseFromInclusive(cfg, inclusive)
		}

		invoice.ReportedToRegistry = req.ReportedToRegistry

		breakdown := pricing.Calculate(cfg, invoice.SessionCount, invoice.BaseUnitPrice)
		invoice.Total = breakdown.GrandTotal
		invoice.StampDuty = breakdown.StampDuty
		invoice.Description = pricing.Description(invoice.SessionCount)

		if updateErr := s.invoiceRepo.Update(txCtx, invoice); updateErr != nil {
			return fmt.Errorf("failed to update invoice: %w", updateErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Publish("invoice.updated", map[string]interface{}{
			"id":             invoice.ID.String(),
			"numero_fattura": invoice.DocumentNumber(),
			"totale":         invoice.Total.StringFixed(2),
		})
	}

	return invoice, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*InvoiceDetail, error) {
	invoiceID, err := parseInvoiceID(id)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("Fattura non trovata.")
		}
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}

	cfg, err := s.pricingRules.ResolveConfig(ctx, invoice.Year)
	if err != nil {
		return nil, err
	}

	breakdown := pricing.Calculate(cfg, invoice.SessionCount, invoice.BaseUnitPrice)

	paymentDate := ""
	if invoice.PaymentDate != nil {
		paymentDate = invoice.PaymentDate.Format(dateLayout)
	}

	return &InvoiceDetail{
		ID:                 invoice.ID.String(),
		DocumentNumber:     invoice.DocumentNumber(),
		IssueDate:          invoice.IssueDate.Format(dateLayout),
		PaymentDate:        paymentDate,
		PaymentMethod:      invoice.PaymentMethod,
		ClientID:           invoice.ClientID.String(),
		SessionCount:       invoice.SessionCount.InexactFloat64(),
		BaseUnitPrice:      invoice.BaseUnitPrice.InexactFloat64(),
		InclusiveUnitPrice: pricing.InclusiveFromBase(cfg, invoice.BaseUnitPrice).InexactFloat64(),
		Total:              breakdown.GrandTotal.StringFixed(2),
		StampDuty:          breakdown.StampDuty,
		Description:        invoice.Description,
		ReportedToRegistry: invoice.ReportedToRegistry,
		Breakdown: BreakdownResponse{
			Subtotal:        breakdown.Subtotal.StringFixed(2),
			Contribution:    breakdown.Contribution.StringFixed(2),
			TaxableTotal:    breakdown.TaxableTotal.StringFixed(2),
			StampDutyAmount: breakdown.StampDutyAmount.StringFixed(2),
		},
	}, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, year int) ([]InvoiceYearGroup, error) {
	invoices, err := s.invoiceRepo.List(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	groups := make([]InvoiceYearGroup, 0)
	for _, inv := range invoices {
		if len(groups) == 0 || groups[len(groups)-1].Year != inv.Year {
			groups = append(groups, InvoiceYearGroup{Year: inv.Year, Invoices: []InvoiceListItem{}})
		}
		g := &groups[len(groups)-1]
		g.Invoices = append(g.Invoices, toInvoiceListItem(inv))
	}
	return groups, nil
}

func (s *invoiceService) ListYears(ctx context.Context) ([]int, error) {
	years, err := s.invoiceRepo.ListYears(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice years: %w", err)
	}
	return years, nil
}

// --- Helpers ---

func toInvoiceListItem(inv model.Invoice) InvoiceListItem {
	item := InvoiceListItem{
		ID:                 inv.ID.String(),
		DocumentNumber:     inv.DocumentNumber(),
		IssueDate:          inv.IssueDate.Format(dateLayout),
		PaymentMethod:      inv.PaymentMethod,
		Description:        inv.Description,
		Total:              inv.Total.StringFixed(2),
		ReportedToRegistry: inv.ReportedToRegistry,
	}
	if inv.PaymentDate != nil {
		formatted := inv.PaymentDate.Format(dateLayout)
		item.PaymentDate = &formatted
	}
	if inv.Client != nil {
		item.Client = inv.Client.FullName()
	}
	return item
}

func parseInvoiceID(id string) (uuid.UUID, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, validationError("Identificativo fattura non valido.")
	}
	return invoiceID, nil
}

func parseDate(value string) (time.Time, error) {
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, validationError("Formato data non valido (atteso YYYY-MM-DD).")
	}
	return date, nil
}

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	date, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

func validateSessionCount(cfg pricing.Config, value *float64) (decimal.Decimal, error) {
	count := 1.0
	if value != nil {
		count = *value
	}
	sessions := decimal.NewFromFloat(count)
	if !sessions.IsPositive() {
		return decimal.Zero, validationError("Il numero di sedute deve essere maggiore di 0.")
	}
	if sessions.GreaterThan(cfg.MaxSessions) {
		return decimal.Zero, validationError("Il numero di sedute non può superare 100.")
	}
	return sessions, nil
}

func validateInclusivePrice(cfg pricing.Config, value *float64) (decimal.Decimal, error) {
	price := 60.00 // default all-inclusive session price
	if value != nil {
		price = *value
	}
	inclusive := decimal.NewFromFloat(price)
	if !inclusive.IsPositive() {
		return decimal.Zero, validationError("Il prezzo deve essere maggiore di 0.")
	}
	if inclusive.GreaterThan(cfg.MaxUnitPrice) {
		return decimal.Zero, validationError("Il prezzo non può superare 1000€.")
	}
	return inclusive, nil
}
