package handler

import (
	"net/http"
	"strconv"

	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PricingRuleHandler struct {
	ruleService service.PricingRuleService
}

func NewPricingRuleHandler(ruleService service.PricingRuleService) *PricingRuleHandler {
	return &PricingRuleHandler{ruleService: ruleService}
}

func (h *PricingRuleHandler) RegisterRoutes(router *gin.RouterGroup) {
	rules := router.Group("/api/pricing-rules")
	{
		rules.GET("", h.ListRules)
		rules.GET("/:year", h.GetRule)
		rules.PUT("/:year", h.UpsertRule)
	}
}

// ListRules returns every stored pricing rule
// @Summary      List pricing rules
// @Tags         pricing-rules
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.PricingRule}
// @Router       /api/pricing-rules [get]
func (h *PricingRuleHandler) ListRules(c *gin.Context) {
	rules, err := h.ruleService.GetRules(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rules))
}

// GetRule returns the rule of one year
// @Summary      Get pricing rule
// @Tags         pricing-rules
// @Produce      json
// @Param        year  path      int  true  "Fiscal year"
// @Success      200   {object}  response.Response{data=model.PricingRule}
// @Failure      404   {object}  response.Response
// @Router       /api/pricing-rules/{year} [get]
func (h *PricingRuleHandler) GetRule(c *gin.Context) {
	year, ok := pathYear(c)
	if !ok {
		return
	}

	rule, err := h.ruleService.GetRule(c.Request.Context(), year)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// UpsertRule creates or replaces the rule of one year
// @Summary      Upsert pricing rule
// @Tags         pricing-rules
// @Accept       json
// @Produce      json
// @Param        year     path      int                               true  "Fiscal year"
// @Param        payload  body      service.UpsertPricingRuleRequest  true  "Rule payload"
// @Success      200      {object}  response.Response{data=model.PricingRule}
// @Failure      400      {object}  response.Response
// @Router       /api/pricing-rules/{year} [put]
func (h *PricingRuleHandler) UpsertRule(c *gin.Context) {
	year, ok := pathYear(c)
	if !ok {
		return
	}

	var req service.UpsertPricingRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rule, err := h.ruleService.UpsertRule(c.Request.Context(), year, req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

func pathYear(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Anno non valido."))
		return 0, false
	}
	return year, true
}
