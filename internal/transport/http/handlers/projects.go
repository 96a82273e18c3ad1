package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/transport/http/middleware"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/usecase"
)

// ProjectHandler exposes the project endpoints.
type ProjectHandler struct {
	projects *usecase.ProjectService
}

// NewProjectHandler constructs ProjectHandler.
func NewProjectHandler(projects *usecase.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// RegisterRoutes binds project routes.
func (h *ProjectHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.create)
	r.GET("", h.list)
	r.GET("/:id", h.get)
	r.PATCH("/:id", h.update)
	r.PUT("/:id/members", h.setMembers)
	r.DELETE("/:id", h.remove)
}

var projectErrorCases = []ErrorCase{
	{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
	{Err: usecase.ErrProjectNotFound, Status: http.StatusNotFound, Message: "project not found"},
	{Err: usecase.ErrInvalidProject, Status: http.StatusBadRequest, Message: "invalid project payload"},
}

// Create godoc
// @Summary Create a project
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body CreateProjectRequest true "Project payload"
// @Success 201 {object} ProjectView
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/projects [post]
func (h *ProjectHandler) create(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid project payload"))
		return
	}

	project, err := h.projects.Create(c.Request.Context(), actor, usecase.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		ServiceID:   req.ServiceID,
		ServiceIDs:  req.ServiceIDs,
		ChefID:      req.ChefID,
		MemberIDs:   req.MemberIDs,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Color:       req.Color,
	})
	if err != nil {
		RespondWithMappedError(c, err, projectErrorCases, http.StatusInternalServerError, "failed to create project")
		return
	}

	c.JSON(http.StatusCreated, newProjectView(project))
}

// List godoc
// @Summary List visible projects
// @Description Returns the projects the caller may see, scoped by role and membership.
// @Tags Projects
// @Produce json
// @Param status query string false "Status filter"
// @Param service_id query string false "Service filter"
// @Success 200 {array} ProjectView
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/projects [get]
func (h *ProjectHandler) list(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	projects, err := h.projects.List(c.Request.Context(), actor, port.ProjectFilter{
		Status:    domain.ProjectStatus(c.Query("status")),
		ServiceID: c.Query("service_id"),
		Limit:     queryInt(c, "limit"),
		Offset:    queryInt(c, "offset"),
	})
	if err != nil {
		RespondWithMappedError(c, err, projectErrorCases, http.StatusInternalServerError, "failed to list projects")
		return
	}

	c.JSON(http.StatusOK, newProjectViews(projects))
}

// Get godoc
// @Summary Get a project
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} ProjectView
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/projects/{id} [get]
func (h *ProjectHandler) get(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	project, err := h.projects.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, projectErrorCases, http.StatusInternalServerError, "failed to get project")
		return
	}

	c.JSON(http.StatusOK, newProjectView(project))
}

// Update godoc
// @Summary Update a project
// @Description Status and date changes notify the project team.
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body UpdateProjectRequest true "Project changes"
// @Success 200 {object} ProjectView
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/projects/{id} [patch]
func (h *ProjectHandler) update(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid project payload"))
		return
	}

	input := usecase.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Progress:    req.Progress,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		RiskLevel:   req.RiskLevel,
	}
	if req.Status != nil {
		status := domain.ProjectStatus(*req.Status)
		input.Status = &status
	}

	project, err := h.projects.Update(c.Request.Context(), actor, c.Param("id"), input)
	if err != nil {
		RespondWithMappedError(c, err, projectErrorCases, http.StatusInternalServerError, "failed to update project")
		return
	}

	c.JSON(http.StatusOK, newProjectView(project))
}

// SetMembers godoc
// @Summary Replace a project's member roster
// @Description Replaces the membership list and notifies the resulting team.
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body SetMembersRequest true "Members payload"
// @Success 200 {object} ProjectView
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/projects/{id}/members [put]
func (h *ProjectHandler) setMembers(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req SetMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid members payload"))
		return
	}

	project, err := h.projects.SetMembers(c.Request.Context(), actor, c.Param("id"), req.MemberIDs)
	if err != nil {
		RespondWithMappedError(c, err, projectErrorCases, http.StatusInternalServerError, "failed to set members")
		return
	}

	c.JSON(http.StatusOK, newProjectView(project))
}

// Delete godoc
// @Summary Delete a project
// @Description Requires the delete_project permission or the ADMIN role.
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 204 {string} string ""
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/projects/{id} [delete]
func (h *ProjectHandler) remove(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	if err := h.projects.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, projectErrorCases, http.StatusInternalServerError, "failed to delete project")
		return
	}

	c.Status(http.StatusNoContent)
}
