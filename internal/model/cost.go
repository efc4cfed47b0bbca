package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cost is an expense of the practice (rent, software, association fees).
// ReferenceYear is the fiscal year the expense belongs to, which may
// differ from the year of the payment date.
type Cost struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Description   string          `gorm:"type:varchar(255);not null" json:"descrizione"`
	ReferenceYear int             `gorm:"not null;index" json:"anno_riferimento"`
	PaymentDate   time.Time       `gorm:"type:date;not null" json:"data_pagamento"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totale"`
	Paid          bool            `gorm:"default:false" json:"pagato"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
