package handler

import (
	"net/http"
	"strconv"

	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService  service.InvoiceService
	documentService service.DocumentService
}

func NewInvoiceHandler(invoiceService service.InvoiceService, documentService service.DocumentService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, documentService: documentService}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/api/invoices")
	{
		invoices.GET("", h.ListInvoices)
		invoices.POST("", h.CreateInvoice)
		invoices.GET("/years", h.ListYears)
		invoices.GET("/:id", h.GetInvoice)
		invoices.PUT("/:id", h.UpdateInvoice)
		invoices.GET("/:id/download", h.DownloadInvoice)
	}
}

// ListInvoices returns invoices grouped by year, newest first
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        year  query     int  false  "Restrict to a single year"
// @Success      200   {object}  response.Response{data=[]service.InvoiceYearGroup}
// @Failure      400   {object}  response.Response
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	year := 0
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Anno non valido."))
			return
		}
		year = parsed
	}

	groups, err := h.invoiceService.ListInvoices(c.Request.Context(), year)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, groups))
}

// CreateInvoice issues the next invoice number of the current year
// @Summary      Create invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateInvoiceRequest  true  "Invoice payload"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{
		"message": "Fattura aggiunta con successo!",
		"id":      invoice.ID,
		"numero":  invoice.DocumentNumber(),
	}))
}

// ListYears returns the years that have at least one invoice
// @Summary      List invoice years
// @Tags         invoices
// @Produce      json
// @Success      200  {object}  response.Response{data=[]int}
// @Router       /api/invoices/years [get]
func (h *InvoiceHandler) ListYears(c *gin.Context) {
	years, err := h.invoiceService.ListYears(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, years))
}

// GetInvoice returns one invoice with its recomputed breakdown
// @Summary      Get invoice
// @Tags         invoices
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceDetail}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	detail, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

// UpdateInvoice edits an invoice; year and number never change
// @Summary      Update invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Invoice ID"
// @Param        payload  body      service.UpdateInvoiceRequest  true  "Update payload"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/invoices/{id} [put]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	var req service.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if _, err := h.invoiceService.UpdateInvoice(c.Request.Context(), c.Param("id"), req); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Fattura aggiornata con successo!"}))
}

// DownloadInvoice streams a ZIP with the filled DOCX and its PDF
// @Summary      Download invoice documents
// @Tags         invoices
// @Produce      application/zip
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /api/invoices/{id}/download [get]
func (h *InvoiceHandler) DownloadInvoice(c *gin.Context) {
	bundle, err := h.documentService.BuildInvoiceBundle(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+bundle.Filename+`"`)
	c.Data(http.StatusOK, "application/zip", bundle.Content)
}
