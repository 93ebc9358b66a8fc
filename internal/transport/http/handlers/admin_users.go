package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Pierre48/hrcard/internal/transport/http/middleware"
	"github.com/Pierre48/hrcard/internal/usecase"
)

// AdminUserHandler exposes administrative account management endpoints.
type AdminUserHandler struct {
	accounts   *usecase.AccountService
	dispatcher NotificationDispatcher
	isDev      bool
}

func NewAdminUserHandler(accounts *usecase.AccountService, dispatcher NotificationDispatcher, isDev bool) *AdminUserHandler {
	if dispatcher == nil {
		dispatcher = noopDispatcher{}
	}
	return &AdminUserHandler{
		accounts:   accounts,
		dispatcher: dispatcher,
		isDev:      isDev,
	}
}

// RegisterRoutes binds administrative endpoints. The group must already carry
// authentication and authority middleware.
func (h *AdminUserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/users", h.CreateUser)
	r.GET("/users/:login", h.GetUser)
	r.PUT("/users/:login", h.UpdateUser)
	r.DELETE("/users/:login", h.DeleteUser)
	r.GET("/authorities", h.ListAuthorities)
}

// ListAuthorities godoc
// @Summary List authority names
// @Tags Admin
// @Produce json
// @Success 200 {object} AuthoritiesResponse
// @Router /api/v1/admin/authorities [get]
func (h *AdminUserHandler) ListAuthorities(c *gin.Context) {
	names, err := h.accounts.GetAuthorities(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list authorities"))
		return
	}

	c.JSON(http.StatusOK, AuthoritiesResponse{Authorities: names})
}

// CreateUser godoc
// @Summary Provision an account
// @Description Creates an activated account with a generated password and a fresh reset key.
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body AdminUserRequest true "Account to create"
// @Success 201 {object} AdminCreateUserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/admin/users [post]
func (h *AdminUserHandler) CreateUser(c *gin.Context) {
	var req AdminUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid account payload"))
		return
	}

	result, err := h.accounts.CreateUser(c.Request.Context(), usecase.AccountInput{
		Login:       req.Login,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		ImageURL:    req.ImageURL,
		LangKey:     req.LangKey,
		Authorities: req.Authorities,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrLoginAlreadyUsed, Status: http.StatusConflict, Message: "login or email already in use"},
		}, http.StatusInternalServerError, "failed to create account")
		return
	}

	account := result.Account
	notification := ResetNotification{
		Login: account.Login,
		Email: account.Email,
	}
	if account.ResetKey != nil {
		notification.DevKey = *account.ResetKey
	}
	_ = h.dispatcher.SendResetKey(c.Request.Context(), notification)

	resp := AdminCreateUserResponse{Account: newAccountResponse(account, nil)}
	if h.isDev && account.ResetKey != nil {
		resp.DevResetKey = *account.ResetKey
	}

	c.JSON(http.StatusCreated, resp)
}

// GetUser godoc
// @Summary Fetch an account by login
// @Tags Admin
// @Produce json
// @Param login path string true "Account login"
// @Success 200 {object} AccountResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/admin/users/{login} [get]
func (h *AdminUserHandler) GetUser(c *gin.Context) {
	result, err := h.accounts.GetAccountWithAuthorities(c.Request.Context(), c.Param("login"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "failed to load account")
		return
	}

	c.JSON(http.StatusOK, newAccountResponse(result.Account, result.Authorities))
}

// UpdateUser godoc
// @Summary Overwrite an account
// @Description Replaces the administrative fields and reconciles authority memberships.
// @Tags Admin
// @Accept json
// @Produce json
// @Param login path string true "Account login"
// @Param request body AdminUserRequest true "Account fields"
// @Success 200 {object} AccountResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/admin/users/{login} [put]
func (h *AdminUserHandler) UpdateUser(c *gin.Context) {
	var req AdminUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid account payload"))
		return
	}

	result, err := h.accounts.UpdateUser(c.Request.Context(), c.Param("login"), usecase.AccountInput{
		Login:       req.Login,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		ImageURL:    req.ImageURL,
		LangKey:     req.LangKey,
		Activated:   req.Activated,
		Authorities: req.Authorities,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
			{Err: usecase.ErrLoginAlreadyUsed, Status: http.StatusConflict, Message: "login or email already in use"},
		}, http.StatusInternalServerError, "failed to update account")
		return
	}

	c.JSON(http.StatusOK, newAccountResponse(result.Account, result.Authorities))
}

// DeleteUser godoc
// @Summary Delete an account
// @Description Removes the account and its authority memberships. Unknown logins are a no-op.
// @Tags Admin
// @Produce json
// @Param login path string true "Account login"
// @Success 204
// @Router /api/v1/admin/users/{login} [delete]
func (h *AdminUserHandler) DeleteUser(c *gin.Context) {
	if err := h.accounts.DeleteUser(c.Request.Context(), c.Param("login"), middleware.GetLogin(c)); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to delete account"))
		return
	}

	c.Status(http.StatusNoContent)
}
