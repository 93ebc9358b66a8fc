package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Pierre48/hrcard/internal/transport/http/middleware"
	"github.com/Pierre48/hrcard/internal/usecase"
)

// PasswordHandler exposes password change and reset endpoints.
type PasswordHandler struct {
	passwordReset *usecase.PasswordResetService
	dispatcher    NotificationDispatcher
	isDev         bool
}

func NewPasswordHandler(passwordReset *usecase.PasswordResetService, dispatcher NotificationDispatcher, isDev bool) *PasswordHandler {
	if dispatcher == nil {
		dispatcher = noopDispatcher{}
	}
	return &PasswordHandler{
		passwordReset: passwordReset,
		dispatcher:    dispatcher,
		isDev:         isDev,
	}
}

// ChangePassword godoc
// @Summary Change the current password
// @Description Verifies the caller's current password and installs the new one.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body PasswordChangeRequest true "Password change request"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/account/change-password [post]
func (h *PasswordHandler) ChangePassword(c *gin.Context) {
	login := middleware.GetLogin(c)
	if login == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid password change payload"))
		return
	}

	err := h.passwordReset.ChangePassword(c.Request.Context(), login, req.CurrentPassword, req.NewPassword)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusUnauthorized, Message: "account no longer exists"},
			{Err: usecase.ErrInvalidPassword, Status: http.StatusBadRequest, Message: "current password is incorrect"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "new password does not meet requirements"},
		}, http.StatusInternalServerError, "failed to change password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password changed"})
}

// ResetPasswordInit godoc
// @Summary Request a password reset
// @Description Issues a reset key for the activated account owning the email.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body PasswordResetInitRequest true "Reset request"
// @Success 200 {object} PasswordResetInitResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/account/reset-password/init [post]
func (h *PasswordHandler) ResetPasswordInit(c *gin.Context) {
	var req PasswordResetInitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset payload"))
		return
	}

	account, err := h.passwordReset.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		var rateErr *usecase.RateLimitExceededError
		if errors.As(err, &rateErr) {
			c.JSON(http.StatusTooManyRequests, NewErrorResponse(c, "too many reset requests"))
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "no activated account found for email"},
		}, http.StatusInternalServerError, "failed to request password reset")
		return
	}

	notification := ResetNotification{
		Login: account.Login,
		Email: account.Email,
	}
	if account.ResetKey != nil {
		notification.DevKey = *account.ResetKey
	}
	_ = h.dispatcher.SendResetKey(c.Request.Context(), notification)

	resp := PasswordResetInitResponse{Message: "reset key issued"}
	if h.isDev && account.ResetKey != nil {
		resp.DevResetKey = *account.ResetKey
	}

	c.JSON(http.StatusOK, resp)
}

// ResetPasswordFinish godoc
// @Summary Complete a password reset
// @Description Consumes a reset key and installs the new password.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body PasswordResetFinishRequest true "Reset completion request"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/account/reset-password/finish [post]
func (h *PasswordHandler) ResetPasswordFinish(c *gin.Context) {
	var req PasswordResetFinishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset payload"))
		return
	}

	err := h.passwordReset.CompletePasswordReset(c.Request.Context(), req.Key, req.NewPassword)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "no account found for reset key"},
			{Err: usecase.ErrResetKeyExpired, Status: http.StatusBadRequest, Message: "reset key expired"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "new password does not meet requirements"},
		}, http.StatusInternalServerError, "failed to complete password reset")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password reset"})
}
