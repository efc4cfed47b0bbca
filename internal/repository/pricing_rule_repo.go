package repository

import (
	"context"
	"errors"

	"backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PricingRuleRepository interface {
	// FindByYear returns the override for a fiscal year, nil when the
	// year uses the built-in defaults.
	FindByYear(ctx context.Context, year int) (*model.PricingRule, error)
	Upsert(ctx context.Context, rule *model.PricingRule) error
	List(ctx context.Context) ([]model.PricingRule, error)
}

type pricingRuleRepository struct {
	db *gorm.DB
}

func NewPricingRuleRepository(db *gorm.DB) PricingRuleRepository {
	return &pricingRuleRepository{db: db}
}

func (r *pricingRuleRepository) FindByYear(ctx context.Context, year int) (*model.PricingRule, error) {
	var rule model.PricingRule
	err := GetDB(ctx, r.db).First(&rule, "year = ?", year).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *pricingRuleRepository) Upsert(ctx context.Context, rule *model.PricingRule) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "year"}},
		DoUpdates: clause.AssignmentColumns([]string{"mode", "contribution_rate", "fixed_contribution", "stamp_duty_threshold", "stamp_duty_cost", "updated_at"}),
	}).Create(rule).Error
}

func (r *pricingRuleRepository) List(ctx context.Context) ([]model.PricingRule, error) {
	var rules []model.PricingRule
	if err := GetDB(ctx, r.db).Order("year DESC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}
