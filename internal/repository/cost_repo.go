package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CostRepository interface {
	Create(ctx context.Context, cost *model.Cost) error
	Update(ctx context.Context, cost *model.Cost) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cost, error)
	List(ctx context.Context) ([]model.Cost, error)
}

type costRepository struct {
	db *gorm.DB
}

func NewCostRepository(db *gorm.DB) CostRepository {
	return &costRepository{db: db}
}

func (r *costRepository) Create(ctx context.Context, cost *model.Cost) error {
	return GetDB(ctx, r.db).Create(cost).Error
}

func (r *costRepository) Update(ctx context.Context, cost *model.Cost) error {
	return GetDB(ctx, r.db).Save(cost).Error
}

func (r *costRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Cost{}).Error
}

func (r *costRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Cost, error) {
	var cost model.Cost
	if err := GetDB(ctx, r.db).First(&cost, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cost, nil
}

func (r *costRepository) List(ctx context.Context) ([]model.Cost, error) {
	var costs []model.Cost
	if err := GetDB(ctx, r.db).Order("payment_date DESC").Find(&costs).Error; err != nil {
		return nil, err
	}
	return costs, nil
}
