package handler

import (
	"net/http"
	"time"

	"backend/internal/auth"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type MaturityHandler struct {
	maturityService service.MaturityService
}

func NewMaturityHandler(maturityService service.MaturityService) *MaturityHandler {
	return &MaturityHandler{maturityService: maturityService}
}

func (h *MaturityHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/maturity-requests")
	{
		requests.GET("", middleware.RequireAction(auth.ActionMaturityReview), h.ListRequests)
		requests.POST("", middleware.RequireAction(auth.ActionMaturityRequest), h.RequestApproval)
		requests.PUT("/:id/gestor-approve", middleware.RequireAction(auth.ActionMaturityReview), h.GestorApprove)
		requests.PUT("/:id/admin-approve", middleware.RequireAction(auth.ActionMaturityApprove), h.AdminApprove)
		requests.PUT("/:id/reject", middleware.RequireAction(auth.ActionMaturityReview), h.Reject)
	}

	processes := router.Group("/processes")
	{
		processes.GET("/:id/progress", middleware.RequireAction(auth.ActionTaskRead), h.Progress)
		processes.GET("/:id/maturity-history", middleware.RequireAction(auth.ActionMaturityReview), h.ListHistory)
		processes.POST("/:id/confirm-maturity", middleware.RequireAction(auth.ActionMaturityApprove), h.DirectConfirm)
	}

	router.GET("/journeys/:id/snapshots", middleware.RequireAction(auth.ActionPlanningRead), h.ListSnapshots)
}

// Progress returns the live task completion state for a process
// @Summary      Get process progress
// @Description  Computes total, completed and percentage from the process's maturity-relevant tasks
// @Tags         maturity
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Process ID"
// @Success      200  {object}  response.Response{data=service.ProcessProgress}
// @Failure      400  {object}  response.Response
// @Router       /processes/{id}/progress [get]
func (h *MaturityHandler) Progress(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	processID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	progress := h.maturityService.Progress(c.Request.Context(), companyID, processID)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, progress))
}

// RequestApproval opens a maturity request for a 100%-complete process
// @Summary      Request maturity approval
// @Description  Creates a maturity request. Requires every maturity-relevant task of the process to be completed. A gestor may self-certify, entering the workflow at gestor_approved.
// @Tags         maturity
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.RequestMaturityInput  true  "Maturity Request Payload"
// @Success      201      {object}  response.Response{data=service.MaturityRequestResponse}
// @Failure      400      {object}  response.Response
// @Router       /maturity-requests [post]
func (h *MaturityHandler) RequestApproval(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}

	var input service.RequestMaturityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	// Self-certification is a gestor/admin capability, not a request one.
	if input.SelfCertify {
		role := c.GetString("userRole")
		if !auth.Can(role, auth.ActionMaturityReview) {
			c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}
	}

	result, err := h.maturityService.RequestApproval(c.Request.Context(), companyID, userID, input)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// GestorApprove moves a pending request to gestor_approved
// @Summary      Gestor approval
// @Description  First-level approval. Re-validates task completion before the transition.
// @Tags         maturity
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true   "Request ID"
// @Param        payload  body      service.ReviewMaturityInput  false  "Optional notes"
// @Success      200      {object}  response.Response{data=service.MaturityRequestResponse}
// @Failure      400      {object}  response.Response
// @Router       /maturity-requests/{id}/gestor-approve [put]
func (h *MaturityHandler) GestorApprove(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input service.ReviewMaturityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		// Notes are optional; an empty body is fine
		input.Notes = ""
	}

	result, err := h.maturityService.GestorApprove(c.Request.Context(), companyID, requestID, userID, input.Notes)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// AdminApprove moves a gestor_approved request to its terminal approved state
// @Summary      Admin approval
// @Description  Final approval. Atomically marks the request approved and projects the process evaluation to mature.
// @Tags         maturity
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true   "Request ID"
// @Param        payload  body      service.ReviewMaturityInput  false  "Optional notes"
// @Success      200      {object}  response.Response{data=service.MaturityRequestResponse}
// @Failure      400      {object}  response.Response
// @Router       /maturity-requests/{id}/admin-approve [put]
func (h *MaturityHandler) AdminApprove(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input service.ReviewMaturityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		input.Notes = ""
	}

	result, err := h.maturityService.AdminApprove(c.Request.Context(), companyID, requestID, userID, input.Notes)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Reject terminates a non-terminal request with a mandatory reason
// @Summary      Reject maturity request
// @Description  Rejects a pending or gestor_approved request. The reason is required.
// @Tags         maturity
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Request ID"
// @Param        payload  body      service.RejectMaturityInput  true  "Rejection reason"
// @Success      200      {object}  response.Response{data=service.MaturityRequestResponse}
// @Failure      400      {object}  response.Response
// @Router       /maturity-requests/{id}/reject [put]
func (h *MaturityHandler) Reject(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input service.RejectMaturityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Motivo da rejeição é obrigatório"))
		return
	}

	result, err := h.maturityService.Reject(c.Request.Context(), companyID, requestID, userID, input.Reason)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// DirectConfirm marks a process mature without going through the request flow
// @Summary      Direct maturity confirmation
// @Description  Admin shortcut that projects the evaluation to mature immediately and snapshots the journey.
// @Tags         maturity
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Process ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /processes/{id}/confirm-maturity [post]
func (h *MaturityHandler) DirectConfirm(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	processID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.maturityService.DirectConfirm(c.Request.Context(), companyID, processID, userID); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Maturidade do processo confirmada"))
}

// ListRequests returns maturity requests, optionally filtered by status or process
// @Summary      List maturity requests
// @Description  Paginated list of maturity requests for the caller's company
// @Tags         maturity
// @Produce      json
// @Security     BearerAuth
// @Param        status      query     string  false  "Filter by status (pending|gestor_approved|admin_approved|rejected)"
// @Param        process_id  query     string  false  "Filter by process"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Items per page (default 20)"
// @Success      200         {object}  response.Response{data=object}
// @Failure      500         {object}  response.Response
// @Router       /maturity-requests [get]
func (h *MaturityHandler) ListRequests(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}

	p := pagination.Parse(c)
	filter := service.MaturityRequestFilter{
		ProcessID: c.Query("process_id"),
		Status:    c.Query("status"),
		Page:      p.Page,
		Limit:     p.Limit,
	}

	requests, total, err := h.maturityService.ListRequests(c.Request.Context(), companyID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"requests": requests,
		"total":    total,
		"page":     p.Page,
		"limit":    p.Limit,
	}))
}

// ListSnapshots returns a journey's maturity-over-time series
// @Summary      Journey maturity snapshots
// @Description  Dated snapshots of a journey's maturity, defaulting to the last 90 days.
// @Tags         maturity
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true   "Journey ID"
// @Param        from  query     string  false  "Start date (YYYY-MM-DD)"
// @Param        to    query     string  false  "End date (YYYY-MM-DD)"
// @Success      200   {object}  response.Response{data=[]service.SnapshotResponse}
// @Failure      400   {object}  response.Response
// @Router       /journeys/{id}/snapshots [get]
func (h *MaturityHandler) ListSnapshots(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	journeyID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	to := time.Now()
	from := to.AddDate(0, 0, -90)
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD"))
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD"))
			return
		}
		to = parsed
	}

	snapshots, err := h.maturityService.ListSnapshots(c.Request.Context(), companyID, journeyID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, snapshots))
}

// ListHistory returns the immutable evaluation history for a process
// @Summary      Process evaluation history
// @Tags         maturity
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Process ID"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /processes/{id}/maturity-history [get]
func (h *MaturityHandler) ListHistory(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	processID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	p := pagination.Parse(c)
	entries, total, err := h.maturityService.ListHistory(c.Request.Context(), companyID, processID, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"history": entries,
		"total":   total,
		"page":    p.Page,
		"limit":   p.Limit,
	}))
}
