package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Pierre48/hrcard/internal/usecase"
)

// RegistrationHandler exposes endpoints for account registration and activation.
type RegistrationHandler struct {
	registration *usecase.RegistrationService
	dispatcher   NotificationDispatcher
	isDev        bool
}

func NewRegistrationHandler(registration *usecase.RegistrationService, dispatcher NotificationDispatcher, isDev bool) *RegistrationHandler {
	if dispatcher == nil {
		dispatcher = noopDispatcher{}
	}
	return &RegistrationHandler{
		registration: registration,
		dispatcher:   dispatcher,
		isDev:        isDev,
	}
}

// RegisterRoutes binds registration endpoints.
func (h *RegistrationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.Register)
	r.GET("/activate", h.Activate)
}

// Register godoc
// @Summary Register a new account
// @Description Creates a non-activated account and issues an activation key.
// @Tags Registration
// @Accept json
// @Produce json
// @Param request body RegistrationRequest true "Registration request"
// @Success 201 {object} RegistrationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/register [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	account, err := h.registration.RegisterUser(c.Request.Context(), usecase.RegistrationInput{
		Login:     req.Login,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ImageURL:  req.ImageURL,
		LangKey:   req.LangKey,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrLoginAlreadyUsed, Status: http.StatusConflict, Message: "login already in use"},
			{Err: usecase.ErrEmailAlreadyUsed, Status: http.StatusConflict, Message: "email already in use"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
		}, http.StatusInternalServerError, "failed to register account")
		return
	}

	notification := ActivationNotification{
		Login:   account.Login,
		Email:   account.Email,
		LangKey: account.LangKey,
	}
	if account.ActivationKey != nil {
		notification.DevKey = *account.ActivationKey
	}
	_ = h.dispatcher.SendActivationKey(c.Request.Context(), notification)

	resp := RegistrationResponse{
		Account:            newAccountResponse(*account, nil),
		RequiresActivation: true,
	}
	if h.isDev && account.ActivationKey != nil {
		resp.DevActivationKey = *account.ActivationKey
	}

	c.JSON(http.StatusCreated, resp)
}

// Activate godoc
// @Summary Activate a registered account
// @Description Consumes an activation key and marks the owning account active.
// @Tags Registration
// @Produce json
// @Param key query string true "Activation key"
// @Success 200 {object} AccountResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/activate [get]
func (h *RegistrationHandler) Activate(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "activation key is required"))
		return
	}

	account, err := h.registration.ActivateRegistration(c.Request.Context(), key)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "no account found for activation key"},
		}, http.StatusInternalServerError, "failed to activate account")
		return
	}

	c.JSON(http.StatusOK, newAccountResponse(*account, nil))
}
