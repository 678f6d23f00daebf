package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ntask/core/internal/application/services"
	"github.com/ntask/core/internal/domain/entities"
	"github.com/ntask/core/internal/infrastructure/logger"
	"github.com/ntask/core/internal/ports"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService  *services.TaskService
	graphService *services.GraphService
	logger       *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, graphService *services.GraphService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService:  taskService,
		graphService: graphService,
		logger:       logger,
	}
}

// CreateTaskRequest is the task creation payload
type CreateTaskRequest struct {
	BoardID      string `json:"board_id" validate:"required"`
	Title        string `json:"title" validate:"required,min=1,max=200"`
	Description  string `json:"description"`
	Assignee     string `json:"assignee"`
	ParentTaskID string `json:"parent_task_id"`
	RelationType string `json:"relation_type" validate:"omitempty,oneof=SUBTASK RELATED CROSS_DEPT CROSS_BOARD"`
	Actor        string `json:"actor"`
}

// UpdateTaskRequest is the task edit payload; nil fields are untouched
type UpdateTaskRequest struct {
	Title        *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description  *string `json:"description"`
	Assignee     *string `json:"assignee"`
	ParentTaskID *string `json:"parent_task_id"`
	RelationType *string `json:"relation_type" validate:"omitempty,oneof=SUBTASK CROSS_DEPT CROSS_BOARD"`
	Actor        string  `json:"actor"`
}

// ChangeStatusRequest moves a task to a new status
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=TODO IN_PROGRESS DONE"`
	Actor  string `json:"actor"`
}

// SetImportantRequest toggles the display flag
type SetImportantRequest struct {
	Important bool `json:"important"`
}

// AddLogRequest appends a work log entry
type AddLogRequest struct {
	Text   string `json:"text" validate:"required,min=1"`
	Author string `json:"author"`
}

// SetPositionRequest records a manual drag position
type SetPositionRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CreateTask handles task creation
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.CreateTask(ports.CreateTaskRequest{
		BoardID:      req.BoardID,
		Title:        req.Title,
		Description:  req.Description,
		Assignee:     req.Assignee,
		ParentTaskID: req.ParentTaskID,
		RelationType: entities.RelationType(req.RelationType),
		Actor:        req.Actor,
	})
	if err != nil {
		h.logger.Error("Create task failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, task)
}

// GetTask handles getting a task by id
func (h *TaskHandler) GetTask(c echo.Context) error {
	task, err := h.taskService.GetTask(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, task)
}

// UpdateTask handles editing a task
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	var req UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	update := ports.UpdateTaskRequest{
		Title:        req.Title,
		Description:  req.Description,
		Assignee:     req.Assignee,
		ParentTaskID: req.ParentTaskID,
		Actor:        req.Actor,
	}
	if req.RelationType != nil {
		typ := entities.RelationType(*req.RelationType)
		update.RelationType = &typ
	}

	task, err := h.taskService.UpdateTask(c.Param("id"), update)
	if err != nil {
		h.logger.Error("Update task failed", "error", err, "task_id", c.Param("id"))
		return httpError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTask handles deleting a task with its relations and logs
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	if err := h.taskService.DeleteTask(c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted"})
}

// ChangeStatus handles a status transition
func (h *TaskHandler) ChangeStatus(c echo.Context) error {
	var req ChangeStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.ChangeStatus(c.Request().Context(), c.Param("id"), entities.TaskStatus(req.Status), req.Actor)
	if err != nil {
		h.logger.Error("Change status failed", "error", err, "task_id", c.Param("id"))
		return httpError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// SetImportant handles toggling the importance flag
func (h *TaskHandler) SetImportant(c echo.Context) error {
	var req SetImportantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	task, err := h.taskService.SetImportant(c.Param("id"), req.Important)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// AddLog handles appending a work log entry
func (h *TaskHandler) AddLog(c echo.Context) error {
	var req AddLogRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	log, err := h.taskService.AddLog(c.Param("id"), req.Text, req.Author)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, log)
}

// ListLogs handles reading a task's log history, newest first
func (h *TaskHandler) ListLogs(c echo.Context) error {
	logs, err := h.taskService.Logs(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, logs)
}

// SetPosition handles recording a manual node drag
func (h *TaskHandler) SetPosition(c echo.Context) error {
	var req SetPositionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.taskService.SetPosition(c.Param("id"), entities.Position{X: req.X, Y: req.Y}); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Position updated"})
}

// GetLinks handles listing cross-board links for a task
func (h *TaskHandler) GetLinks(c echo.Context) error {
	links, err := h.graphService.CrossBoardLinks(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, links)
}
