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

type TaskHandler struct {
	taskService service.TaskService
}

func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) RegisterRoutes(router *gin.RouterGroup) {
	tasks := router.Group("/tasks")
	{
		tasks.GET("", middleware.RequireAction(auth.ActionTaskRead), h.ListTasks)
		tasks.POST("", middleware.RequireAction(auth.ActionTaskWrite), h.CreateTask)
		tasks.PUT("/reorder", middleware.RequireAction(auth.ActionTaskWrite), h.ReorderTasks)
		tasks.PUT("/:id", middleware.RequireAction(auth.ActionTaskWrite), h.UpdateTask)
		tasks.DELETE("/:id", middleware.RequireAction(auth.ActionTaskWrite), h.DeleteTask)
	}

	router.GET("/processes/:id/tasks", middleware.RequireAction(auth.ActionTaskRead), h.ListByProcess)
}

// ListTasks returns the company's tasks, optionally filtered by status
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}

	p := pagination.Parse(c)
	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), companyID, c.Query("status"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"tasks": tasks,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// ListByProcess returns a process's tasks in position order
// @Summary      List tasks of a process
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Process ID"
// @Success      200  {object}  response.Response{data=[]service.TaskResponse}
// @Failure      500  {object}  response.Response
// @Router       /processes/{id}/tasks [get]
func (h *TaskHandler) ListByProcess(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}
	processID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListByProcess(c.Request.Context(), companyID, processID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tasks))
}

// CreateTask adds a task to a process
// @Summary      Create task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateTaskRequest  true  "Create Task Payload"
// @Success      201      {object}  response.Response{data=service.TaskResponse}
// @Failure      400      {object}  response.Response
// @Router       /tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}

	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), companyID, userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, task))
}

// UpdateTask mutates a task's fields, including its status
// @Summary      Update task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Task ID"
// @Param        payload  body      service.UpdateTaskRequest  true  "Update Task Payload"
// @Success      200      {object}  response.Response{data=service.TaskResponse}
// @Failure      400      {object}  response.Response
// @Router       /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), companyID, userID, taskID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, task))
}

// DeleteTask removes a task
// @Summary      Delete task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	companyID, userID, ok := identity(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), companyID, userID, taskID); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Task deleted successfully"))
}

// ReorderTasks rewrites the position of every task in a process
// @Summary      Reorder tasks
// @Description  Receives the full ordered list of task IDs for a process and persists the new positions.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ReorderTasksRequest  true  "Ordered task IDs"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /tasks/reorder [put]
func (h *TaskHandler) ReorderTasks(c *gin.Context) {
	companyID, _, ok := identity(c)
	if !ok {
		return
	}

	var req service.ReorderTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.taskService.ReorderTasks(c.Request.Context(), companyID, req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Tasks reordered"))
}
