package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is a fattura issued to a client. (Year, Number) is the legal
// identity of the document: unique per fiscal year and immutable once
// assigned. BaseUnitPrice stores the base price of a single session, not
// the user-facing all-inclusive price; Total, StampDuty and Description
// are derived from (SessionCount, BaseUnitPrice) and recomputed on every
// read and update — the persisted copies exist for listing and statistics
// only.
type Invoice struct {
	ID                 uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Year               int             `gorm:"not null;uniqueIndex:idx_invoices_year_number,priority:1" json:"anno"`
	Number             int             `gorm:"not null;uniqueIndex:idx_invoices_year_number,priority:2" json:"progressivo"`
	IssueDate          time.Time       `gorm:"type:date;not null" json:"data_fattura"`
	PaymentDate        *time.Time      `gorm:"type:date" json:"data_pagamento"`
	PaymentMethod      string          `gorm:"type:varchar(50)" json:"metodo_pagamento"`
	ClientID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"cliente_id"`
	Client             *Client         `gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT" json:"cliente,omitempty"`
	BaseUnitPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"importo_prestazione"`
	SessionCount       decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"numero_sedute"`
	Description        string          `gorm:"type:varchar(255);not null" json:"descrizione"`
	Total              decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totale"`
	StampDuty          bool            `gorm:"default:false" json:"bollo"`
	ReportedToRegistry bool            `gorm:"default:false" json:"inviata_sns"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// DocumentNumber renders the canonical "progressivo/anno" form.
func (i Invoice) DocumentNumber() string {
	return fmt.Sprintf("%d/%d", i.Number, i.Year)
}

// YearCounter holds the last issued invoice number for one fiscal year.
// LastNumber is strictly non-decreasing and is only ever touched through
// an atomic increment at the storage layer.
type YearCounter struct {
	Year       int `gorm:"primaryKey;autoIncrement:false" json:"anno"`
	LastNumber int `gorm:"not null;default:0" json:"last_progressivo"`
}
