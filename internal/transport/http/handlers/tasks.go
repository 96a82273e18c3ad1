package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/transport/http/middleware"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/usecase"
)

// TaskHandler exposes the task endpoints.
type TaskHandler struct {
	tasks *usecase.TaskService
}

// NewTaskHandler constructs TaskHandler.
func NewTaskHandler(tasks *usecase.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// RegisterRoutes binds task routes.
func (h *TaskHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.create)
	r.GET("", h.list)
	r.GET("/:id", h.get)
	r.PATCH("/:id", h.update)
	r.PUT("/:id/assignees", h.assign)
	r.DELETE("/:id", h.remove)
	r.POST("/:id/comments", h.comment)
	r.GET("/:id/comments", h.comments)
}

var taskErrorCases = []ErrorCase{
	{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
	{Err: usecase.ErrTaskNotFound, Status: http.StatusNotFound, Message: "task not found"},
	{Err: usecase.ErrInvalidTask, Status: http.StatusBadRequest, Message: "invalid task payload"},
}

// Create godoc
// @Summary Create a task
// @Description Creates a task and notifies its assignees.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param request body CreateTaskRequest true "Task payload"
// @Success 201 {object} TaskView
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/tasks [post]
func (h *TaskHandler) create(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid task payload"))
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), actor, usecase.CreateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Priority:      domain.TaskPriority(req.Priority),
		Deadline:      req.Deadline,
		ProjectID:     req.ProjectID,
		ServiceID:     req.ServiceID,
		AssignedTo:    req.AssignedTo,
		Tags:          req.Tags,
		EstimatedTime: req.EstimatedTime,
	})
	if err != nil {
		RespondWithMappedError(c, err, taskErrorCases, http.StatusInternalServerError, "failed to create task")
		return
	}

	c.JSON(http.StatusCreated, newTaskView(task))
}

// List godoc
// @Summary List visible tasks
// @Description Returns the tasks the caller may see, scoped by role, assignment, and service.
// @Tags Tasks
// @Produce json
// @Param status query string false "Status filter"
// @Param project_id query string false "Project filter"
// @Success 200 {array} TaskView
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/tasks [get]
func (h *TaskHandler) list(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	tasks, err := h.tasks.List(c.Request.Context(), actor, port.TaskFilter{
		Status:    domain.TaskStatus(c.Query("status")),
		ProjectID: c.Query("project_id"),
		ServiceID: c.Query("service_id"),
		Limit:     queryInt(c, "limit"),
		Offset:    queryInt(c, "offset"),
	})
	if err != nil {
		RespondWithMappedError(c, err, taskErrorCases, http.StatusInternalServerError, "failed to list tasks")
		return
	}

	c.JSON(http.StatusOK, newTaskViews(tasks))
}

// Get godoc
// @Summary Get a task
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} TaskView
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) get(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	task, err := h.tasks.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, taskErrorCases, http.StatusInternalServerError, "failed to get task")
		return
	}

	c.JSON(http.StatusOK, newTaskView(task))
}

// Update godoc
// @Summary Update a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body UpdateTaskRequest true "Task changes"
// @Success 200 {object} TaskView
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/tasks/{id} [patch]
func (h *TaskHandler) update(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid task payload"))
		return
	}

	input := usecase.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		Tags:        req.Tags,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		input.Priority = &priority
	}

	task, err := h.tasks.Update(c.Request.Context(), actor, c.Param("id"), input)
	if err != nil {
		RespondWithMappedError(c, err, taskErrorCases, http.StatusInternalServerError, "failed to update task")
		return
	}

	c.JSON(http.StatusOK, newTaskView(task))
}

// Assign godoc
// @Summary Replace a task's assignees
// @Description Replaces the assignment list and notifies newly added assignees.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body AssignTaskRequest true "Assignees payload"
// @Success 200 {object} TaskView
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/tasks/{id}/assignees [put]
func (h *TaskHandler) assign(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid assignees payload"))
		return
	}

	task, err := h.tasks.Assign(c.Request.Context(), actor, c.Param("id"), req.AssignedTo)
	if err != nil {
		RespondWithMappedError(c, err, taskErrorCases, http.StatusInternalServerError, "failed to assign task")
		return
	}

	c.JSON(http.StatusOK, newTaskView(task))
}

// Delete godoc
// @Summary Delete a task
// @Description Task creators may always delete their own tasks.
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 204 {string} string ""
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) remove(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	if err := h.tasks.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, taskErrorCases, http.StatusInternalServerError, "failed to delete task")
		return
	}

	c.Status(http.StatusNoContent)
}

// Comment godoc
// @Summary Comment on a task
// @Description Adds a comment; @mentions resolve against the user directory and notify the mentioned users.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body AddCommentRequest true "Comment payload"
// @Success 201 {object} CommentView
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/tasks/{id}/comments [post]
func (h *TaskHandler) comment(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid comment payload"))
		return
	}

	comment, err := h.tasks.Comment(c.Request.Context(), actor, c.Param("id"), usecase.AddCommentInput{
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		RespondWithMappedError(c, err, taskErrorCases, http.StatusInternalServerError, "failed to add comment")
		return
	}

	c.JSON(http.StatusCreated, newCommentView(comment))
}

// Comments godoc
// @Summary List a task's comments
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {array} CommentView
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/tasks/{id}/comments [get]
func (h *TaskHandler) comments(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	comments, err := h.tasks.Comments(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, taskErrorCases, http.StatusInternalServerError, "failed to list comments")
		return
	}

	views := make([]CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, newCommentView(&comments[i]))
	}
	c.JSON(http.StatusOK, views)
}
