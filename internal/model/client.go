package model

import (
	"time"

	"github.com/google/uuid"
)

// Client represents a patient of the practice. The fiscal code is the
// natural identity: unique across the system and syntactically validated
// before any write.
type Client struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FirstName  string    `gorm:"type:varchar(100);not null" json:"nome"`
	LastName   string    `gorm:"type:varchar(100);not null" json:"cognome"`
	FiscalCode string    `gorm:"type:varchar(16);uniqueIndex;not null" json:"codice_fiscale"`
	Address    string    `gorm:"type:varchar(200)" json:"indirizzo"`
	City       string    `gorm:"type:varchar(255)" json:"citta"`
	PostalCode string    `gorm:"type:varchar(5)" json:"cap"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FullName renders "Nome Cognome" for list views and documents.
func (c Client) FullName() string {
	return c.FirstName + " " + c.LastName
}
