package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateCostRequest struct {
	Description   string  `json:"descrizione" binding:"required"`
	ReferenceYear int     `json:"anno_riferimento" binding:"required"`
	PaymentDate   string  `json:"data_pagamento" binding:"required"`
	Total         float64 `json:"totale" binding:"required"`
	Paid          bool    `json:"pagato"`
}

type UpdateCostRequest struct {
	Description   *string  `json:"descrizione"`
	ReferenceYear *int     `json:"anno_riferimento"`
	PaymentDate   *string  `json:"data_pagamento"`
	Total         *float64 `json:"totale"`
	Paid          *bool    `json:"pagato"`
}

type CostResponse struct {
	ID            string  `json:"id"`
	Description   string  `json:"descrizione"`
	ReferenceYear int     `json:"anno_riferimento"`
	PaymentDate   string  `json:"data_pagamento"`
	Total         float64 `json:"totale"`
	Paid          bool    `json:"pagato"`
}

// --- Interface ---

type CostService interface {
	CreateCost(ctx context.Context, req CreateCostRequest) (CostResponse, error)
	UpdateCost(ctx context.Context, id string, req UpdateCostRequest) (CostResponse, error)
	DeleteCost(ctx context.Context, id string) error
	GetCost(ctx context.Context, id string) (CostResponse, error)
	GetCosts(ctx context.Context) ([]CostResponse, error)
}

type costService struct {
	costRepo  repository.CostRepository
	txManager repository.TransactionManager
	notifier  EventNotifier
}

func NewCostService(costRepo repository.CostRepository, txManager repository.TransactionManager, notifier EventNotifier) CostService {
	return &costService{costRepo: costRepo, txManager: txManager, notifier: notifier}
}

// --- Implementation ---

func (s *costService) CreateCost(ctx context.Context, req CreateCostRequest) (CostResponse, error) {
	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		return CostResponse{}, err
	}
	if req.Total <= 0 {
		return CostResponse{}, validationError("Il totale deve essere maggiore di 0.")
	}

	cost := model.Cost{
		Description:   req.Description,
		ReferenceYear: req.ReferenceYear,
		PaymentDate:   paymentDate,
		Total:         decimal.NewFromFloat(req.Total),
		Paid:          req.Paid,
	}

	if err := s.costRepo.Create(ctx, &cost); err != nil {
		return CostResponse{}, fmt.Errorf("failed to create cost: %w", err)
	}

	if s.notifier != nil {
		s.notifier.Publish("cost.created", map[string]interface{}{
			"id":          cost.ID.String(),
			"descrizione": cost.Description,
			"totale":      cost.Total.StringFixed(2),
		})
	}

	return toCostResponse(cost), nil
}

func (s *costService) UpdateCost(ctx context.Context, id string, req UpdateCostRequest) (CostResponse, error) {
	costID, err := parseCostID(id)
	if err != nil {
		return CostResponse{}, err
	}

	var cost *model.Cost
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		cost, findErr = s.costRepo.FindByID(txCtx, costID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return notFoundError("Costo non trovato.")
			}
			return fmt.Errorf("failed to load cost: %w", findErr)
		}

		if req.Description != nil {
			cost.Description = *req.Description
		}
		if req.ReferenceYear != nil {
			cost.ReferenceYear = *req.ReferenceYear
		}
		if req.PaymentDate != nil && *req.PaymentDate != "" {
			paymentDate, dateErr := parseDate(*req.PaymentDate)
			if dateErr != nil {
				return dateErr
			}
			cost.PaymentDate = paymentDate
		}
		if req.Total != nil {
			if *req.Total <= 0 {
				return validationError("Il totale deve essere maggiore di 0.")
			}
			cost.Total = decimal.NewFromFloat(*req.Total)
		}
		if req.Paid != nil {
			cost.Paid = *req.Paid
		}

		if updateErr := s.costRepo.Update(txCtx, cost); updateErr != nil {
			return fmt.Errorf("failed to update cost: %w", updateErr)
		}
		return nil
	})
	if err != nil {
		return CostResponse{}, err
	}

	return toCostResponse(*cost), nil
}

func (s *costService) DeleteCost(ctx context.Context, id string) error {
	costID, err := parseCostID(id)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, findErr := s.costRepo.FindByID(txCtx, costID); findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return notFoundError("Costo non trovato.")
			}
			return fmt.Errorf("failed to load cost: %w", findErr)
		}
		if deleteErr := s.costRepo.Delete(txCtx, costID); deleteErr != nil {
			return fmt.Errorf("failed to delete cost: %w", deleteErr)
		}
		return nil
	})
}

func (s *costService) GetCost(ctx context.Context, id string) (CostResponse, error) {
	costID, err := parseCostID(id)
	if err != nil {
		return CostResponse{}, err
	}

	cost, err := s.costRepo.FindByID(ctx, costID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CostResponse{}, notFoundError("Costo non trovato.")
		}
		return CostResponse{}, fmt.Errorf("failed to load cost: %w", err)
	}
	return toCostResponse(*cost), nil
}

func (s *costService) GetCosts(ctx context.Context) ([]CostResponse, error) {
	costs, err := s.costRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list costs: %w", err)
	}

	result := make([]CostResponse, 0, len(costs))
	for _, cost := range costs {
		result = append(result, toCostResponse(cost))
	}
	return result, nil
}

// --- Helpers ---

func toCostResponse(cost model.Cost) CostResponse {
	return CostResponse{
		ID:            cost.ID.String(),
		Description:   cost.Description,
		ReferenceYear: cost.ReferenceYear,
		PaymentDate:   cost.PaymentDate.Format(dateLayout),
		Total:         cost.Total.InexactFloat64(),
		Paid:          cost.Paid,
	}
}

func parseCostID(id string) (uuid.UUID, error) {
	costID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, validationError("Identificativo costo non valido.")
	}
	return costID, nil
}
