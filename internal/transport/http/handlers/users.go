package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/transport/http/middleware"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/usecase"
)

// UserHandler exposes the user directory endpoints.
type UserHandler struct {
	users *usecase.UserService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(users *usecase.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes binds user directory routes.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.create)
	r.GET("", h.list)
	r.GET("/:id", h.get)
	r.PATCH("/:id", h.update)
	r.PUT("/:id/role", h.setRole)
}

var userErrorCases = []ErrorCase{
	{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
	{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
	{Err: usecase.ErrUserExists, Status: http.StatusConflict, Message: "username or email already registered"},
	{Err: usecase.ErrInvalidUser, Status: http.StatusBadRequest, Message: "invalid user payload"},
}

// Create godoc
// @Summary Provision a user account
// @Description Creates a directory entry seeded with the role's default permissions.
// @Tags Users
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "User payload"
// @Success 201 {object} UserSummary
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/users [post]
func (h *UserHandler) create(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid user payload"))
		return
	}

	user, err := h.users.Create(c.Request.Context(), actor, usecase.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Role:      domain.Role(req.Role),
		ServiceID: req.ServiceID,
		Phone:     req.Phone,
	})
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to create user")
		return
	}

	c.JSON(http.StatusCreated, newUserSummary(user))
}

// List godoc
// @Summary List users
// @Description Returns the user directory, optionally filtered by role, service, or active state.
// @Tags Users
// @Produce json
// @Param role query string false "Role filter"
// @Param service_id query string false "Service filter"
// @Success 200 {array} UserSummary
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/users [get]
func (h *UserHandler) list(c *gin.Context) {
	filter := port.UserFilter{
		Role:      domain.Role(c.Query("role")),
		ServiceID: c.Query("service_id"),
		Limit:     queryInt(c, "limit"),
		Offset:    queryInt(c, "offset"),
	}
	if raw := c.Query("is_active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.IsActive = &active
		}
	}

	users, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to list users")
		return
	}

	summaries := make([]UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, newUserSummary(&users[i]))
	}
	c.JSON(http.StatusOK, summaries)
}

// Get godoc
// @Summary Get a user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} UserSummary
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/users/{id} [get]
func (h *UserHandler) get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to get user")
		return
	}

	c.JSON(http.StatusOK, newUserSummary(user))
}

// Update godoc
// @Summary Update a user profile
// @Description Users may edit their own profile; managing others requires the change_user permission.
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body UpdateUserRequest true "Profile changes"
// @Success 200 {object} UserSummary
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/users/{id} [patch]
func (h *UserHandler) update(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid user payload"))
		return
	}

	user, err := h.users.Update(c.Request.Context(), actor, c.Param("id"), usecase.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Bio:       req.Bio,
		ServiceID: req.ServiceID,
		IsActive:  req.IsActive,
	})
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to update user")
		return
	}

	c.JSON(http.StatusOK, newUserSummary(user))
}

// SetRole godoc
// @Summary Change a user's role
// @Description Replaces the role and reseeds the role's default permission codenames.
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body SetRoleRequest true "Role payload"
// @Success 200 {object} UserSummary
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/users/{id}/role [put]
func (h *UserHandler) setRole(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid role payload"))
		return
	}

	user, err := h.users.SetRole(c.Request.Context(), actor, c.Param("id"), domain.Role(req.Role))
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to change role")
		return
	}

	c.JSON(http.StatusOK, newUserSummary(user))
}

func queryInt(c *gin.Context, name string) int {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
