// Package pricing implements the invoice total calculation: subtotal,
// professional-association contribution, taxable total, stamp duty and
// grand total from a session count and a base unit price.
//
// All amounts are rounded to 2 decimals with banker's rounding, matching
// the behavior the rest of the system (and its historical data) was
// built on. The stamp-duty threshold comparison is strict: a taxable
// total of exactly 77.47 carries no bollo.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Mode selects how the association contribution is computed.
type Mode string

const (
	// ModePercentage computes the contribution as a percentage of the
	// base unit price. This is the canonical, current model.
	ModePercentage Mode = "PERCENTAGE"
	// ModeFixedPerSession adds a fixed amount per session. Legacy model,
	// kept selectable for old fiscal years.
	ModeFixedPerSession Mode = "FIXED_PER_SESSION"
)

// Config carries every pricing parameter. It is passed explicitly to
// each calculation so rates can change per fiscal year without touching
// code.
type Config struct {
	Mode               Mode
	ContributionRate   decimal.Decimal // e.g. 0.02 = 2%, used by ModePercentage
	FixedContribution  decimal.Decimal // per-session amount, used by ModeFixedPerSession
	StampDutyThreshold decimal.Decimal // bollo applies strictly above this taxable total
	StampDutyCost      decimal.Decimal // fixed bollo amount
	MaxSessions        decimal.Decimal // upper bound enforced at the API boundary
	MaxUnitPrice       decimal.Decimal // upper bound enforced at the API boundary
}

// DefaultConfig returns the parameters currently mandated for the
// practice: 2% ENPAP contribution, 2.00 bollo above 77.47.
func DefaultConfig() Config {
	return Config{
		Mode:               ModePercentage,
		ContributionRate:   decimal.NewFromFloat(0.02),
		FixedContribution:  decimal.NewFromFloat(1.18),
		StampDutyThreshold: decimal.NewFromFloat(77.47),
		StampDutyCost:      decimal.NewFromFloat(2.00),
		MaxSessions:        decimal.NewFromInt(100),
		MaxUnitPrice:       decimal.NewFromInt(1000),
	}
}

// Breakdown is the full result of one invoice calculation. Every amount
// is already rounded to 2 decimals.
type Breakdown struct {
	SessionCount     decimal.Decimal
	BaseUnitPrice    decimal.Decimal
	ContributionUnit decimal.Decimal // unrounded per-session contribution
	Subtotal         decimal.Decimal
	Contribution     decimal.Decimal
	TaxableTotal     decimal.Decimal
	StampDuty        bool
	StampDutyAmount  decimal.Decimal
	GrandTotal       decimal.Decimal
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// Calculate derives the complete breakdown from a session count and a
// base unit price. Negative session counts are clamped to zero; range
// validation (count ≤ 100, price ≤ 1000) belongs to the API boundary,
// not here.
func Calculate(cfg Config, sessions, baseUnitPrice decimal.Decimal) Breakdown {
	if sessions.IsNegative() {
		sessions = decimal.Zero
	}

	var contributionUnit decimal.Decimal
	switch cfg.Mode {
	case ModeFixedPerSession:
		contributionUnit = cfg.FixedContribution
	default:
		contributionUnit = baseUnitPrice.Mul(cfg.ContributionRate)
	}

	subtotal := round2(baseUnitPrice.Mul(sessions))
	contribution := round2(contributionUnit.Mul(sessions))
	taxableTotal := round2(subtotal.Add(contribution))

	stampDuty := taxableTotal.GreaterThan(cfg.StampDutyThreshold)
	stampDutyAmount := decimal.Zero
	if stampDuty {
		stampDutyAmount = cfg.StampDutyCost
	}

	return Breakdown{
		SessionCount:     sessions,
		BaseUnitPrice:    baseUnitPrice,
		ContributionUnit: contributionUnit,
		Subtotal:         subtotal,
		Contribution:     contribution,
		TaxableTotal:     taxableTotal,
		StampDuty:        stampDuty,
		StampDutyAmount:  stampDutyAmount,
		GrandTotal:       round2(taxableTotal.Add(stampDutyAmount)),
	}
}

// BaseFromInclusive converts the user-facing all-inclusive unit price
// (base + contribution) into the base price stored on the invoice:
// base = inclusive / (1 + rate). Running the forward calculation on the
// result reproduces the inclusive price within ±0.01.
func BaseFromInclusive(cfg Config, inclusive decimal.Decimal) decimal.Decimal {
	divisor := decimal.NewFromInt(1).Add(cfg.ContributionRate)
	return round2(inclusive.Div(divisor))
}

// InclusiveFromBase is the inverse of BaseFromInclusive, used to show
// the all-inclusive unit price in edit forms.
func InclusiveFromBase(cfg Config, base decimal.Decimal) decimal.Decimal {
	return round2(base.Mul(decimal.NewFromInt(1).Add(cfg.ContributionRate)))
}

// FormatSessionCount renders a session count for documents and
// descriptions: integral counts without decimals, fractional counts
// with the Italian comma separator ("1,5").
func FormatSessionCount(sessions decimal.Decimal) string {
	return strings.ReplaceAll(sessions.String(), ".", ",")
}

// Description builds the invoice line text. Singular only for exactly
// one session; every other count, fractions included, is plural.
func Description(sessions decimal.Decimal) string {
	noun := "Sedute"
	if sessions.Equal(decimal.NewFromInt(1)) {
		noun = "Seduta"
	}
	return "n. " + FormatSessionCount(sessions) + " di " + noun + " di consulenza psicologica"
}
