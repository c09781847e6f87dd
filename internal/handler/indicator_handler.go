package handler

import (
	"net/http"

	"backend/internal/auth"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type IndicatorHandler struct {
	indicatorService service.IndicatorService
}

func NewIndicatorHandler(indicatorService service.IndicatorService) *IndicatorHandler {
	return &IndicatorHandler{indicatorService: indicatorService}
}

func (h *IndicatorHandler) RegisterRoutes(router *gin.RouterGroup) {
	indicators := router.Group("/indicators")
	{
		indicators.GET("", middleware.RequireAction(auth.ActionIndicatorRead), h.ListIndicators)
		indicators.POST("", middleware.RequireAction(auth.ActionIndicatorWrite), h.CreateIndicator)
		indicators.PUT("/:id", middleware.RequireAction(auth.ActionIndicatorWrite), h.UpdateIndicator)
		indicators.DELETE("/:id", middleware.RequireAction(auth.ActionIndicatorWrite), h.DeleteIndicator)
		indicators.POST("/:id/entries", middleware.RequireAction(auth.ActionIndicatorWrite), h.RecordEntry)
		indicators.GET("/:id/summary", middleware.RequireAction(auth.ActionIndicatorRead), h.Summary)
	}
}

// ListIndicators returns the company's KPIs
// @Summary      List indicators
// @Tags         indicators
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /indicators [get]
func (h *IndicatorHandler) ListIndicators(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}

	p := pagination.Parse(c)
	indicators, total, err := h.indicatorService.ListIndicators(c.Request.Context(), companyID, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"indicators": indicators,
		"total":      total,
		"page":       p.Page,
		"limit":      p.Limit,
	}))
}

// CreateIndicator registers a new KPI with a target value
// @Summary      Create indicator
// @Tags         indicators
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateIndicatorRequest  true  "Create Indicator Payload"
// @Success      201      {object}  response.Response{data=service.IndicatorResponse}
// @Failure      400      {object}  response.Response
// @Router       /indicators [post]
func (h *IndicatorHandler) CreateIndicator(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}

	var req service.CreateIndicatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	indicator, err := h.indicatorService.CreateIndicator(c.Request.Context(), companyID, userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, indicator))
}

// UpdateIndicator mutates a KPI's definition
// @Summary      Update indicator
// @Tags         indicators
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Indicator ID"
// @Param        payload  body      service.UpdateIndicatorRequest  true  "Update Indicator Payload"
// @Success      200      {object}  response.Response{data=service.IndicatorResponse}
// @Failure      400      {object}  response.Response
// @Router       /indicators/{id} [put]
func (h *IndicatorHandler) UpdateIndicator(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	indicatorID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateIndicatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	indicator, err := h.indicatorService.UpdateIndicator(c.Request.Context(), companyID, indicatorID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, indicator))
}

// DeleteIndicator removes a KPI and its entries
// @Summary      Delete indicator
// @Tags         indicators
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Indicator ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /indicators/{id} [delete]
func (h *IndicatorHandler) DeleteIndicator(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	indicatorID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.indicatorService.DeleteIndicator(c.Request.Context(), companyID, indicatorID); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Indicator deleted successfully"))
}

// RecordEntry upserts the measured value for a month
// @Summary      Record indicator value
// @Description  Writes the value for a period ("YYYY-MM"); re-submitting the same period overwrites the previous value.
// @Tags         indicators
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Indicator ID"
// @Param        payload  body      service.RecordEntryRequest  true  "Period and value"
// @Success      200      {object}  response.Response{data=service.IndicatorEntryResponse}
// @Failure      400      {object}  response.Response
// @Router       /indicators/{id}/entries [post]
func (h *IndicatorHandler) RecordEntry(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	indicatorID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.RecordEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.indicatorService.RecordEntry(c.Request.Context(), companyID, indicatorID, userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
}

// Summary aggregates an indicator's recorded entries
// @Summary      Indicator summary
// @Tags         indicators
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Indicator ID"
// @Success      200  {object}  response.Response{data=model.IndicatorSummary}
// @Failure      400  {object}  response.Response
// @Router       /indicators/{id}/summary [get]
func (h *IndicatorHandler) Summary(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	indicatorID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	summary, err := h.indicatorService.Summary(c.Request.Context(), companyID, indicatorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
