package handler

import (
	"net/http"

	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CostHandler struct {
	costService service.CostService
}

func NewCostHandler(costService service.CostService) *CostHandler {
	return &CostHandler{costService: costService}
}

func (h *CostHandler) RegisterRoutes(router *gin.RouterGroup) {
	costs := router.Group("/api/costs")
	{
		costs.GET("", h.ListCosts)
		costs.POST("", h.CreateCost)
		costs.GET("/:id", h.GetCost)
		costs.PUT("/:id", h.UpdateCost)
		costs.DELETE("/:id", h.DeleteCost)
	}
}

// ListCosts returns every practice cost, most recent payment first
// @Summary      List costs
// @Tags         costs
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.CostResponse}
// @Router       /api/costs [get]
func (h *CostHandler) ListCosts(c *gin.Context) {
	costs, err := h.costService.GetCosts(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, costs))
}

// CreateCost records a practice cost
// @Summary      Create cost
// @Tags         costs
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateCostRequest  true  "Cost payload"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /api/costs [post]
func (h *CostHandler) CreateCost(c *gin.Context) {
	var req service.CreateCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	cost, err := h.costService.CreateCost(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{
		"message": "Costo aggiunto con successo!",
		"id":      cost.ID,
	}))
}

// GetCost returns one cost by id
// @Summary      Get cost
// @Tags         costs
// @Produce      json
// @Param        id   path      string  true  "Cost ID"
// @Success      200  {object}  response.Response{data=service.CostResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/costs/{id} [get]
func (h *CostHandler) GetCost(c *gin.Context) {
	cost, err := h.costService.GetCost(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cost))
}

// UpdateCost edits a recorded cost
// @Summary      Update cost
// @Tags         costs
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Cost ID"
// @Param        payload  body      service.UpdateCostRequest  true  "Update payload"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/costs/{id} [put]
func (h *CostHandler) UpdateCost(c *gin.Context) {
	var req service.UpdateCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if _, err := h.costService.UpdateCost(c.Request.Context(), c.Param("id"), req); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Costo aggiornato con successo!"}))
}

// DeleteCost removes a recorded cost
// @Summary      Delete cost
// @Tags         costs
// @Produce      json
// @Param        id   path      string  true  "Cost ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/costs/{id} [delete]
func (h *CostHandler) DeleteCost(c *gin.Context) {
	if err := h.costService.DeleteCost(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Costo eliminato con successo!"}))
}
