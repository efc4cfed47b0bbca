package service

import (
	"context"
	"fmt"

	"backend/internal/model"

	"gorm.io/gorm"
)

// --- DTOs ---

// PeriodStat is one bucket of the time breakdown. With a selected year
// Period holds the month (1-12); without one it holds the fiscal year.
type PeriodStat struct {
	Period int     `json:"mese"`
	Count  int     `json:"conteggio"`
	Total  float64 `json:"totale"`
}

type ClientStat struct {
	Client string  `json:"cliente"`
	Count  int     `json:"conteggio"`
	Total  float64 `json:"totale"`
}

type CategoryStat struct {
	Description string  `json:"descrizione"`
	Count       int     `json:"conteggio"`
	Total       float64 `json:"totale"`
}

type InvoiceStatsResponse struct {
	TotalInvoices int          `json:"totale_fatture"`
	YearlyTotal   float64      `json:"totale_annuo"`
	UniqueClients int          `json:"clienti_con_fatture"`
	ByPeriod      []PeriodStat `json:"per_mese"`
	ByClient      []ClientStat `json:"per_cliente"`
	SelectedYear  *int         `json:"anno_selezionato"`
}

type CostStatsResponse struct {
	TotalCosts    int            `json:"totale_costi"`
	YearlyTotal   float64        `json:"totale_annuo"`
	ByPeriod      []PeriodStat   `json:"per_mese"`
	ByDescription []CategoryStat `json:"per_descrizione"`
	SelectedYear  *int           `json:"anno_selezionato"`
}

// --- Interface ---

type StatisticsService interface {
	GetInvoiceStats(ctx context.Context, year *int) (InvoiceStatsResponse, error)
	GetCostStats(ctx context.Context, year *int) (CostStatsResponse, error)
}

type statisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// --- Implementation ---

func (s *statisticsService) GetInvoiceStats(ctx context.Context, year *int) (InvoiceStatsResponse, error) {
	response := InvoiceStatsResponse{SelectedYear: year, ByPeriod: []PeriodStat{}, ByClient: []ClientStat{}}

	query := s.db.WithContext(ctx).Model(&model.Invoice{})
	if year != nil {
		query = query.Where("year = ?", *year)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return response, fmt.Errorf("failed to count invoices: %w", err)
	}
	response.TotalInvoices = int(count)

	var totals struct {
		Value float64
	}
	totalQuery := s.db.WithContext(ctx).Model(&model.Invoice{}).Select("COALESCE(SUM(total), 0) AS value")
	if year != nil {
		totalQuery = totalQuery.Where("year = ?", *year)
	}
	if err := totalQuery.Scan(&totals).Error; err != nil {
		return response, fmt.Errorf("failed to sum invoice totals: %w", err)
	}
	response.YearlyTotal = totals.Value

	var clients int64
	clientQuery := s.db.WithContext(ctx).Model(&model.Invoice{}).Distinct("client_id")
	if year != nil {
		clientQuery = clientQuery.Where("year = ?", *year)
	}
	if err := clientQuery.Count(&clients).Error; err != nil {
		return response, fmt.Errorf("failed to count clients with invoices: %w", err)
	}
	response.UniqueClients = int(clients)

	if year != nil {
		err := s.db.WithContext(ctx).Model(&model.Invoice{}).
			Select("EXTRACT(MONTH FROM issue_date)::int AS period, COUNT(id) AS count, COALESCE(SUM(total), 0) AS total").
			Where("year = ?", *year).
			Group("period").
			Order("period").
			Scan(&response.ByPeriod).Error
		if err != nil {
			return response, fmt.Errorf("failed to aggregate monthly invoices: %w", err)
		}
	} else {
		err := s.db.WithContext(ctx).Model(&model.Invoice{}).
			Select("year AS period, COUNT(id) AS count, COALESCE(SUM(total), 0) AS total").
			Group("year").
			Order("year").
			Scan(&response.ByPeriod).Error
		if err != nil {
			return response, fmt.Errorf("failed to aggregate yearly invoices: %w", err)
		}
	}

	clientStats := s.db.WithContext(ctx).Table("invoices").
		Select("clients.first_name || ' ' || clients.last_name AS client, COUNT(invoices.id) AS count, COALESCE(SUM(invoices.total), 0) AS total").
		Joins("JOIN clients ON clients.id = invoices.client_id").
		Group("clients.id, clients.first_name, clients.last_name").
		Order("count DESC")
	if year != nil {
		clientStats = clientStats.Where("invoices.year = ?", *year)
	}
	if err := clientStats.Scan(&response.ByClient).Error; err != nil {
		return response, fmt.Errorf("failed to aggregate invoices per client: %w", err)
	}

	return response, nil
}

// GetCostStats groups by reference year (competenza), not by the year
// of the payment date.
func (s *statisticsService) GetCostStats(ctx context.Context, year *int) (CostStatsResponse, error) {
	response := CostStatsResponse{SelectedYear: year, ByPeriod: []PeriodStat{}, ByDescription: []CategoryStat{}}

	query := s.db.WithContext(ctx).Model(&model.Cost{})
	if year != nil {
		query = query.Where("reference_year = ?", *year)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return response, fmt.Errorf("failed to count costs: %w", err)
	}
	response.TotalCosts = int(count)

	var totals struct {
		Value float64
	}
	totalQuery := s.db.WithContext(ctx).Model(&model.Cost{}).Select("COALESCE(SUM(total), 0) AS value")
	if year != nil {
		totalQuery = totalQuery.Where("reference_year = ?", *year)
	}
	if err := totalQuery.Scan(&totals).Error; err != nil {
		return response, fmt.Errorf("failed to sum cost totals: %w", err)
	}
	response.YearlyTotal = totals.Value

	if year != nil {
		err := s.db.WithContext(ctx).Model(&model.Cost{}).
			Select("EXTRACT(MONTH FROM payment_date)::int AS period, COUNT(id) AS count, COALESCE(SUM(total), 0) AS total").
			Where("reference_year = ?", *year).
			Group("period").
			Order("period").
			Scan(&response.ByPeriod).Error
		if err != nil {
			return response, fmt.Errorf("failed to aggregate monthly costs: %w", err)
		}
	} else {
		err := s.db.WithContext(ctx).Model(&model.Cost{}).
			Select("reference_year AS period, COUNT(id) AS count, COALESCE(SUM(total), 0) AS total").
			Group("reference_year").
			Order("reference_year").
			Scan(&response.ByPeriod).Error
		if err != nil {
			return response, fmt.Errorf("failed to aggregate yearly costs: %w", err)
		}
	}

	categoryStats := s.db.WithContext(ctx).Model(&model.Cost{}).
		Select("description, COUNT(id) AS count, COALESCE(SUM(total), 0) AS total").
		Group("description").
		Order("count DESC")
	if year != nil {
		categoryStats = categoryStats.Where("reference_year = ?", *year)
	}
	if err := categoryStats.Scan(&response.ByDescription).Error; err != nil {
		return response, fmt.Errorf("failed to aggregate costs per description: %w", err)
	}

	return response, nil
}
