package handler

import (
	"net/http"
	"strconv"

	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statsService service.StatisticsService
}

func NewStatisticsHandler(statsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statsService: statsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/invoices/stats", h.InvoiceStats)
	router.GET("/api/costs/stats", h.CostStats)
}

// InvoiceStats returns revenue aggregates, per month when a year is given
// @Summary      Invoice statistics
// @Tags         statistics
// @Produce      json
// @Param        year  query     int  false  "Aggregate a single year by month"
// @Success      200   {object}  response.Response{data=service.InvoiceStatsResponse}
// @Failure      400   {object}  response.Response
// @Router       /api/invoices/stats [get]
func (h *StatisticsHandler) InvoiceStats(c *gin.Context) {
	year, ok := optionalYear(c)
	if !ok {
		return
	}

	stats, err := h.statsService.GetInvoiceStats(c.Request.Context(), year)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// CostStats returns cost aggregates grouped by reference year
// @Summary      Cost statistics
// @Tags         statistics
// @Produce      json
// @Param        year  query     int  false  "Restrict to a single reference year"
// @Success      200   {object}  response.Response{data=service.CostStatsResponse}
// @Failure      400   {object}  response.Response
// @Router       /api/costs/stats [get]
func (h *StatisticsHandler) CostStats(c *gin.Context) {
	year, ok := optionalYear(c)
	if !ok {
		return
	}

	stats, err := h.statsService.GetCostStats(c.Request.Context(), year)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

func optionalYear(c *gin.Context) (*int, bool) {
	raw := c.Query("year")
	if raw == "" {
		return nil, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Anno non valido."))
		return nil, false
	}
	return &year, true
}
