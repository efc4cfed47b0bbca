package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricingMode enum constants
const (
	PricingModePercentage      = "PERCENTAGE"
	PricingModeFixedPerSession = "FIXED_PER_SESSION"
)

// PricingRule overrides the default pricing parameters for one fiscal
// year. Years without a rule fall back to the built-in defaults, so the
// table normally stays empty until the association contribution or the
// stamp-duty rules change.
type PricingRule struct {
	ID                 uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Year               int             `gorm:"not null;uniqueIndex" json:"anno"`
	Mode               string          `gorm:"type:varchar(20);not null;default:'PERCENTAGE'" json:"mode"` // PERCENTAGE, FIXED_PER_SESSION
	ContributionRate   decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"contribution_rate"`       // e.g. 0.02 = 2%
	FixedContribution  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"fixed_contribution"`
	StampDutyThreshold decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"stamp_duty_threshold"`
	StampDutyCost      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"stamp_duty_cost"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}
