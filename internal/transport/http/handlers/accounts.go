package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Pierre48/hrcard/internal/transport/http/middleware"
	"github.com/Pierre48/hrcard/internal/usecase"
)

// AccountHandler exposes the self-service account endpoints.
type AccountHandler struct {
	accounts *usecase.AccountService
}

func NewAccountHandler(accounts *usecase.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// RegisterRoutes binds authenticated self-service endpoints.
func (h *AccountHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.GetAccount)
	r.POST("", h.UpdateAccount)
}

// GetAccount godoc
// @Summary Get the current account
// @Description Returns the caller's account with its authorities.
// @Tags Account
// @Produce json
// @Success 200 {object} AccountResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/account [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
	login := middleware.GetLogin(c)
	if login == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	result, err := h.accounts.GetAccountWithAuthorities(c.Request.Context(), login)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account no longer exists"},
		}, http.StatusInternalServerError, "failed to load account")
		return
	}

	c.JSON(http.StatusOK, newAccountResponse(result.Account, result.Authorities))
}

// UpdateAccount godoc
// @Summary Update the current account
// @Description Applies self-service profile edits to the caller's account.
// @Tags Account
// @Accept json
// @Produce json
// @Param request body ProfileUpdateRequest true "Profile update"
// @Success 200 {object} AccountResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/account [post]
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	login := middleware.GetLogin(c)
	if login == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid profile payload"))
		return
	}

	account, err := h.accounts.UpdateProfile(c.Request.Context(), login, usecase.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		LangKey:   req.LangKey,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account no longer exists"},
			{Err: usecase.ErrEmailAlreadyUsed, Status: http.StatusConflict, Message: "email already in use"},
		}, http.StatusInternalServerError, "failed to update account")
		return
	}

	c.JSON(http.StatusOK, newAccountResponse(*account, nil))
}
