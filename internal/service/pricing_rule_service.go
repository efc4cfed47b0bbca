package service

import (
	"context"
	"fmt"

	"backend/internal/model"
	"backend/internal/pricing"
	"backend/internal/repository"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type UpsertPricingRuleRequest struct {
	Mode               string  `json:"mode" binding:"omitempty,oneof=PERCENTAGE FIXED_PER_SESSION"`
	ContributionRate   float64 `json:"contribution_rate"`
	FixedContribution  float64 `json:"fixed_contribution"`
	StampDutyThreshold float64 `json:"stamp_duty_threshold" binding:"required"`
	StampDutyCost      float64 `json:"stamp_duty_cost" binding:"required"`
}

// --- Interface ---

// PricingRuleService resolves the effective pricing parameters for a
// fiscal year and manages the per-year overrides.
type PricingRuleService interface {
	ResolveConfig(ctx context.Context, year int) (pricing.Config, error)
	GetRules(ctx context.Context) ([]model.PricingRule, error)
	GetRule(ctx context.Context, year int) (*model.PricingRule, error)
	UpsertRule(ctx context.Context, year int, req UpsertPricingRuleRequest) (*model.PricingRule, error)
}

type pricingRuleService struct {
	ruleRepo repository.PricingRuleRepository
}

func NewPricingRuleService(ruleRepo repository.PricingRuleRepository) PricingRuleService {
	return &pricingRuleService{ruleRepo: ruleRepo}
}

// --- Implementation ---

// ResolveConfig returns the override stored for the year, or the
// built-in defaults when no override exists.
func (s *pricingRuleService) ResolveConfig(ctx context.Context, year int) (pricing.Config, error) {
	cfg := pricing.DefaultConfig()

	rule, err := s.ruleRepo.FindByYear(ctx, year)
	if err != nil {
		return cfg, fmt.Errorf("failed to load pricing rule for %d: %w", year, err)
	}
	if rule == nil {
		return cfg, nil
	}

	cfg.Mode = pricing.Mode(rule.Mode)
	cfg.ContributionRate = rule.ContributionRate
	cfg.FixedContribution = rule.FixedContribution
	cfg.StampDutyThreshold = rule.StampDutyThreshold
	cfg.StampDutyCost = rule.StampDutyCost
	return cfg, nil
}

func (s *pricingRuleService) GetRules(ctx context.Context) ([]model.PricingRule, error) {
	rules, err := s.ruleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pricing rules: %w", err)
	}
	return rules, nil
}

func (s *pricingRuleService) GetRule(ctx context.Context, year int) (*model.PricingRule, error) {
	rule, err := s.ruleRepo.FindByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing rule: %w", err)
	}
	if rule == nil {
		return nil, notFoundError("Nessuna regola di prezzo per l'anno richiesto.")
	}
	return rule, nil
}

func (s *pricingRuleService) UpsertRule(ctx context.Context, year int, req UpsertPricingRuleRequest) (*model.PricingRule, error) {
	if year < 2000 || year > 2100 {
		return nil, validationError("Anno non valido.")
	}

	mode := req.Mode
	if mode == "" {
		mode = model.PricingModePercentage
	}
	if mode == model.PricingModePercentage && req.ContributionRate <= 0 {
		return nil, validationError("La percentuale di contributo deve essere maggiore di 0.")
	}
	if mode == model.PricingModeFixedPerSession && req.FixedContribution <= 0 {
		return nil, validationError("Il contributo fisso per seduta deve essere maggiore di 0.")
	}
	if req.StampDutyThreshold <= 0 || req.StampDutyCost < 0 {
		return nil, validationError("Parametri del bollo non validi.")
	}

	rule := &model.PricingRule{
		Year:               year,
		Mode:               mode,
		ContributionRate:   decimal.NewFromFloat(req.ContributionRate),
		FixedContribution:  decimal.NewFromFloat(req.FixedContribution),
		StampDutyThreshold: decimal.NewFromFloat(req.StampDutyThreshold),
		StampDutyCost:      decimal.NewFromFloat(req.StampDutyCost),
	}

	if err := s.ruleRepo.Upsert(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to save pricing rule: %w", err)
	}
	return rule, nil
}
