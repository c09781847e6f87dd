package handler

import (
	"net/http"
	"strconv"

	"backend/internal/auth"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	companyService service.CompanyService
}

func NewCompanyHandler(companyService service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

func (h *CompanyHandler) RegisterRoutes(router *gin.RouterGroup) {
	companies := router.Group("/companies")
	{
		companies.GET("", middleware.RequireAction(auth.ActionCompanyManage), h.ListCompanies)
		companies.POST("", middleware.RequireAction(auth.ActionCompanyManage), h.CreateCompany)
		companies.PUT("/:id", middleware.RequireAction(auth.ActionCompanyManage), h.UpdateCompany)
	}

	// Any authenticated user can read their own company
	router.GET("/company", middleware.RequireAuth(), h.GetOwnCompany)
}

// GetOwnCompany returns the authenticated user's tenant
// @Summary      Get own company
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.CompanyResponse}
// @Failure      404  {object}  response.Response
// @Router       /company [get]
func (h *CompanyHandler) GetOwnCompany(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}

	company, err := h.companyService.GetCompany(c.Request.Context(), companyID)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

// ListCompanies returns all tenants
// @Summary      List companies
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /companies [get]
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	companies, total, err := h.companyService.ListCompanies(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"companies": companies,
		"total":     total,
		"page":      page,
		"limit":     limit,
	}))
}

// CreateCompany registers a new tenant
// @Summary      Create company
// @Description  Creates a tenant. The slug is derived from the name when not supplied and must be unique.
// @Tags         companies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateCompanyRequest  true  "Create Company Payload"
// @Success      201      {object}  response.Response{data=service.CompanyResponse}
// @Failure      400      {object}  response.Response
// @Router       /companies [post]
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var req service.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	company, err := h.companyService.CreateCompany(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, company))
}

// UpdateCompany mutates a tenant's name or active flag
// @Summary      Update company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Company ID"
// @Param        payload  body      service.UpdateCompanyRequest  true  "Update Company Payload"
// @Success      200      {object}  response.Response{data=service.CompanyResponse}
// @Failure      400      {object}  response.Response
// @Router       /companies/{id} [put]
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	companyID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	company, err := h.companyService.UpdateCompany(c.Request.Context(), companyID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}
