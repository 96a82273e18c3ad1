package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/transport/http/middleware"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/usecase"
)

// ServiceHandler exposes the organizational unit endpoints.
type ServiceHandler struct {
	services *usecase.OrgService
}

// NewServiceHandler constructs ServiceHandler.
func NewServiceHandler(services *usecase.OrgService) *ServiceHandler {
	return &ServiceHandler{services: services}
}

// RegisterRoutes binds organizational unit routes.
func (h *ServiceHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.create)
	r.GET("", h.list)
	r.GET("/:id", h.get)
	r.PUT("/:id", h.update)
	r.DELETE("/:id", h.remove)
}

var serviceErrorCases = []ErrorCase{
	{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
	{Err: usecase.ErrServiceNotFound, Status: http.StatusNotFound, Message: "service not found"},
	{Err: usecase.ErrInvalidService, Status: http.StatusBadRequest, Message: "invalid service payload"},
}

// Create godoc
// @Summary Create an organizational unit
// @Tags Services
// @Accept json
// @Produce json
// @Param request body ServiceRequest true "Service payload"
// @Success 201 {object} ServiceView
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/services [post]
func (h *ServiceHandler) create(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid service payload"))
		return
	}

	service, err := h.services.Create(c.Request.Context(), actor, usecase.ServiceInput{
		Name:             req.Name,
		Description:      req.Description,
		HeadID:           req.HeadID,
		Color:            req.Color,
		WorkloadCapacity: req.WorkloadCapacity,
	})
	if err != nil {
		RespondWithMappedError(c, err, serviceErrorCases, http.StatusInternalServerError, "failed to create service")
		return
	}

	c.JSON(http.StatusCreated, newServiceView(service))
}

// List godoc
// @Summary List organizational units
// @Tags Services
// @Produce json
// @Success 200 {array} ServiceView
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/services [get]
func (h *ServiceHandler) list(c *gin.Context) {
	services, err := h.services.List(c.Request.Context())
	if err != nil {
		RespondWithMappedError(c, err, serviceErrorCases, http.StatusInternalServerError, "failed to list services")
		return
	}

	views := make([]ServiceView, 0, len(services))
	for i := range services {
		views = append(views, newServiceView(&services[i]))
	}
	c.JSON(http.StatusOK, views)
}

// Get godoc
// @Summary Get an organizational unit
// @Tags Services
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} ServiceView
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/services/{id} [get]
func (h *ServiceHandler) get(c *gin.Context) {
	service, err := h.services.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, serviceErrorCases, http.StatusInternalServerError, "failed to get service")
		return
	}

	c.JSON(http.StatusOK, newServiceView(service))
}

// Update godoc
// @Summary Update an organizational unit
// @Tags Services
// @Accept json
// @Produce json
// @Param id path string true "Service ID"
// @Param request body ServiceRequest true "Service payload"
// @Success 200 {object} ServiceView
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/services/{id} [put]
func (h *ServiceHandler) update(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid service payload"))
		return
	}

	service, err := h.services.Update(c.Request.Context(), actor, c.Param("id"), usecase.ServiceInput{
		Name:             req.Name,
		Description:      req.Description,
		HeadID:           req.HeadID,
		Color:            req.Color,
		WorkloadCapacity: req.WorkloadCapacity,
	})
	if err != nil {
		RespondWithMappedError(c, err, serviceErrorCases, http.StatusInternalServerError, "failed to update service")
		return
	}

	c.JSON(http.StatusOK, newServiceView(service))
}

// Delete godoc
// @Summary Delete an organizational unit
// @Tags Services
// @Produce json
// @Param id path string true "Service ID"
// @Success 204 {string} string ""
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/services/{id} [delete]
func (h *ServiceHandler) remove(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	if err := h.services.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, serviceErrorCases, http.StatusInternalServerError, "failed to delete service")
		return
	}

	c.Status(http.StatusNoContent)
}
