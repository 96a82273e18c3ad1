package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/transport/http/middleware"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/usecase"
)

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	auth   *usecase.AuthService
	access *usecase.AccessService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, access *usecase.AccessService) *AuthHandler {
	return &AuthHandler{auth: auth, access: access}
}

// RegisterRoutes binds authentication routes, applying optional middleware ahead of the login handler.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, loginMiddlewares ...gin.HandlerFunc) {
	chain := append([]gin.HandlerFunc{}, loginMiddlewares...)
	chain = append(chain, h.login)
	r.POST("/login", chain...)

	r.GET("/me", middleware.RequireAuth(h.auth), h.me)
	r.GET("/me/capabilities", middleware.RequireAuth(h.auth), h.capabilities)
}

// Login godoc
// @Summary Authenticate a user
// @Description Verifies the identifier/password pair and issues an access token.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body AuthLoginRequest true "Login request payload"
// @Success 200 {object} AuthLoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var req AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	var ip *string
	if clientIP := strings.TrimSpace(c.ClientIP()); clientIP != "" {
		ip = &clientIP
	}

	result, err := h.auth.Login(c.Request.Context(), req.Identifier, req.Password, ip)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
			{Err: usecase.ErrUserInactive, Status: http.StatusForbidden, Message: "account is inactive"},
			{Err: usecase.ErrTooManyAttempts, Status: http.StatusTooManyRequests, Message: "too many login attempts"},
		}, http.StatusInternalServerError, "login failed")
		return
	}

	c.JSON(http.StatusOK, AuthLoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(time.Until(result.ExpiresAt).Seconds()),
		User:        newUserSummary(result.User),
	})
}

// Me godoc
// @Summary Current user profile
// @Description Returns the authenticated user's directory entry.
// @Tags Authentication
// @Produce json
// @Success 200 {object} UserSummary
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	c.JSON(http.StatusOK, newUserSummary(user))
}

// Capabilities godoc
// @Summary Current user capabilities
// @Description Returns the capability booleans derived from the caller's permissions and role.
// @Tags Authentication
// @Produce json
// @Success 200 {object} CapabilitiesResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/me/capabilities [get]
func (h *AuthHandler) capabilities(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	c.JSON(http.StatusOK, newCapabilitiesResponse(h.access.ResolveCapabilities(user)))
}
