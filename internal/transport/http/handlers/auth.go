package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Pierre48/hrcard/internal/infra/security"
	"github.com/Pierre48/hrcard/internal/usecase"
)

// AuthHandler exposes the token issuance endpoint.
type AuthHandler struct {
	accounts   *usecase.AccountService
	jwtManager *security.JWTManager
	tokenTTL   int
}

// NewAuthHandler constructs an AuthHandler. tokenTTLSeconds is reported to
// clients in the response payload.
func NewAuthHandler(accounts *usecase.AccountService, jwtManager *security.JWTManager, tokenTTLSeconds int) *AuthHandler {
	return &AuthHandler{
		accounts:   accounts,
		jwtManager: jwtManager,
		tokenTTL:   tokenTTLSeconds,
	}
}

// RegisterRoutes binds authentication endpoints.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/authenticate", h.Authenticate)
}

// Authenticate godoc
// @Summary Issue a bearer token
// @Description Verifies a login and password pair and returns a signed JWT.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body AuthenticateRequest true "Credentials"
// @Success 200 {object} AuthenticateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/authenticate [post]
func (h *AuthHandler) Authenticate(c *gin.Context) {
	var req AuthenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid authentication payload"))
		return
	}

	result, err := h.accounts.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusUnauthorized, Message: "invalid credentials"},
			{Err: usecase.ErrInvalidPassword, Status: http.StatusUnauthorized, Message: "invalid credentials"},
			{Err: usecase.ErrAccountNotActivated, Status: http.StatusUnauthorized, Message: "account not activated"},
		}, http.StatusInternalServerError, "authentication failed")
		return
	}

	token, err := h.jwtManager.Issue(result.Account.Login, result.Authorities)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to issue token"))
		return
	}

	c.JSON(http.StatusOK, AuthenticateResponse{
		IDToken:   token,
		TokenType: "Bearer",
		ExpiresIn: h.tokenTTL,
	})
}
