package service

import (
	"context"
	"testing"

	"backend/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigDefaults(t *testing.T) {
	service := NewPricingRuleService(newFakePricingRuleRepo())

	cfg, err := service.ResolveConfig(context.Background(), 2025)
	require.NoError(t, err)

	assert.Equal(t, pricing.ModePercentage, cfg.Mode)
	assert.Equal(t, "0.02", cfg.ContributionRate.String())
	assert.Equal(t, "77.47", cfg.StampDutyThreshold.String())
	assert.Equal(t, "2", cfg.StampDutyCost.String())
}

func TestResolveConfigOverride(t *testing.T) {
	service := NewPricingRuleService(newFakePricingRuleRepo())

	_, err := service.UpsertRule(context.Background(), 2019, UpsertPricingRuleRequest{
		Mode:               "FIXED_PER_SESSION",
		FixedContribution:  1.18,
		StampDutyThreshold: 77.47,
		StampDutyCost:      2.00,
	})
	require.NoError(t, err)

	cfg, err := service.ResolveConfig(context.Background(), 2019)
	require.NoError(t, err)
	assert.Equal(t, pricing.ModeFixedPerSession, cfg.Mode)
	assert.Equal(t, "1.18", cfg.FixedContribution.String())

	// Other years keep the defaults.
	cfg, err = service.ResolveConfig(context.Background(), 2025)
	require.NoError(t, err)
	assert.Equal(t, pricing.ModePercentage, cfg.Mode)
}

func TestUpsertRuleValidation(t *testing.T) {
	service := NewPricingRuleService(newFakePricingRuleRepo())

	cases := map[string]struct {
		year int
		req  UpsertPricingRuleRequest
	}{
		"year out of range": {
			year: 1999,
			req:  UpsertPricingRuleRequest{ContributionRate: 0.02, StampDutyThreshold: 77.47, StampDutyCost: 2},
		},
		"percentage without rate": {
			year: 2025,
			req:  UpsertPricingRuleRequest{Mode: "PERCENTAGE", StampDutyThreshold: 77.47, StampDutyCost: 2},
		},
		"fixed without amount": {
			year: 2025,
			req:  UpsertPricingRuleRequest{Mode: "FIXED_PER_SESSION", StampDutyThreshold: 77.47, StampDutyCost: 2},
		},
		"bad stamp threshold": {
			year: 2025,
			req:  UpsertPricingRuleRequest{ContributionRate: 0.02, StampDutyThreshold: 0, StampDutyCost: 2},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := service.UpsertRule(context.Background(), tc.year, tc.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestGetRuleNotFound(t *testing.T) {
	service := NewPricingRuleService(newFakePricingRuleRepo())

	_, err := service.GetRule(context.Background(), 2025)
	assert.ErrorIs(t, err, ErrNotFound)
}
