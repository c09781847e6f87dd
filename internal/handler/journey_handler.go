package handler

import (
	"net/http"

	"backend/internal/auth"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type JourneyHandler struct {
	journeyService service.JourneyService
}

func NewJourneyHandler(journeyService service.JourneyService) *JourneyHandler {
	return &JourneyHandler{journeyService: journeyService}
}

func (h *JourneyHandler) RegisterRoutes(router *gin.RouterGroup) {
	journeys := router.Group("/journeys")
	{
		journeys.GET("", middleware.RequireAction(auth.ActionPlanningRead), h.ListJourneys)
		journeys.POST("", middleware.RequireAction(auth.ActionPlanningWrite), h.CreateJourney)
		journeys.PUT("/:id", middleware.RequireAction(auth.ActionPlanningWrite), h.UpdateJourney)
		journeys.DELETE("/:id", middleware.RequireAction(auth.ActionPlanningWrite), h.DeleteJourney)
		journeys.GET("/:id/maturity", middleware.RequireAction(auth.ActionPlanningRead), h.JourneyMaturity)
		journeys.GET("/:id/processes", middleware.RequireAction(auth.ActionPlanningRead), h.ListProcesses)
	}

	processes := router.Group("/processes")
	{
		processes.POST("", middleware.RequireAction(auth.ActionPlanningWrite), h.CreateProcess)
		processes.PUT("/:id", middleware.RequireAction(auth.ActionPlanningWrite), h.UpdateProcess)
		processes.DELETE("/:id", middleware.RequireAction(auth.ActionPlanningWrite), h.DeleteProcess)
	}
}

// ListJourneys returns the company's journeys in position order
// @Summary      List journeys
// @Tags         journeys
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.JourneyResponse}
// @Failure      500  {object}  response.Response
// @Router       /journeys [get]
func (h *JourneyHandler) ListJourneys(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}

	journeys, err := h.journeyService.ListJourneys(c.Request.Context(), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, journeys))
}

// CreateJourney adds a new journey
// @Summary      Create journey
// @Tags         journeys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateJourneyRequest  true  "Create Journey Payload"
// @Success      201      {object}  response.Response{data=service.JourneyResponse}
// @Failure      400      {object}  response.Response
// @Router       /journeys [post]
func (h *JourneyHandler) CreateJourney(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}

	var req service.CreateJourneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	journey, err := h.journeyService.CreateJourney(c.Request.Context(), companyID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, journey))
}

// UpdateJourney mutates a journey's name, description or position
// @Summary      Update journey
// @Tags         journeys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Journey ID"
// @Param        payload  body      service.UpdateJourneyRequest  true  "Update Journey Payload"
// @Success      200      {object}  response.Response{data=service.JourneyResponse}
// @Failure      400      {object}  response.Response
// @Router       /journeys/{id} [put]
func (h *JourneyHandler) UpdateJourney(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	journeyID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateJourneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	journey, err := h.journeyService.UpdateJourney(c.Request.Context(), companyID, journeyID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, journey))
}

// DeleteJourney removes an empty journey
// @Summary      Delete journey
// @Description  Fails while the journey still has processes.
// @Tags         journeys
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Journey ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /journeys/{id} [delete]
func (h *JourneyHandler) DeleteJourney(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	journeyID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.journeyService.DeleteJourney(c.Request.Context(), companyID, journeyID); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Journey deleted successfully"))
}

// JourneyMaturity returns the journey-wide maturity summary
// @Summary      Journey maturity summary
// @Tags         journeys
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Journey ID"
// @Success      200  {object}  response.Response{data=service.JourneyMaturityResponse}
// @Failure      400  {object}  response.Response
// @Router       /journeys/{id}/maturity [get]
func (h *JourneyHandler) JourneyMaturity(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	journeyID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	summary, err := h.journeyService.JourneyMaturity(c.Request.Context(), companyID, journeyID)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// ListProcesses returns a journey's processes in position order
// @Summary      List processes of a journey
// @Tags         journeys
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Journey ID"
// @Success      200  {object}  response.Response{data=[]service.ProcessResponse}
// @Failure      500  {object}  response.Response
// @Router       /journeys/{id}/processes [get]
func (h *JourneyHandler) ListProcesses(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	journeyID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	processes, err := h.journeyService.ListProcesses(c.Request.Context(), companyID, journeyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, processes))
}

// CreateProcess adds a process to a journey
// @Summary      Create process
// @Tags         journeys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateProcessRequest  true  "Create Process Payload"
// @Success      201      {object}  response.Response{data=service.ProcessResponse}
// @Failure      400      {object}  response.Response
// @Router       /processes [post]
func (h *JourneyHandler) CreateProcess(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}

	var req service.CreateProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	process, err := h.journeyService.CreateProcess(c.Request.Context(), companyID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, process))
}

// UpdateProcess mutates a process's name or position
// @Summary      Update process
// @Tags         journeys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Process ID"
// @Param        payload  body      service.UpdateProcessRequest  true  "Update Process Payload"
// @Success      200      {object}  response.Response{data=service.ProcessResponse}
// @Failure      400      {object}  response.Response
// @Router       /processes/{id} [put]
func (h *JourneyHandler) UpdateProcess(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	processID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	process, err := h.journeyService.UpdateProcess(c.Request.Context(), companyID, processID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, process))
}

// DeleteProcess removes a process and its dependent task data
// @Summary      Delete process
// @Tags         journeys
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Process ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /processes/{id} [delete]
func (h *JourneyHandler) DeleteProcess(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	processID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.journeyService.DeleteProcess(c.Request.Context(), companyID, processID); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Process deleted successfully"))
}
