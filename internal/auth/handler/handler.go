package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"alerthub_backend/internal/auth/repository"
	"alerthub_backend/internal/auth/service"
	"alerthub_backend/internal/auth/transport"
	"alerthub_backend/platform/config"
	"alerthub_backend/platform/httpkit"
	"alerthub_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 600
)

type Handler struct {
	svc      *service.Service
	google   *service.GoogleService
	validate *validator.Validator
	frontend string
}

func New(svc *service.Service, google *service.GoogleService, validate *validator.Validator, cfg config.OAuthConfig) *Handler {
	return &Handler{
		svc:      svc,
		google:   google,
		validate: validate,
		frontend: strings.TrimRight(cfg.GetFrontendURL(), "/"),
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
	rg.POST("/forgot-password", h.ForgotPassword)
	rg.POST("/reset-password/:token", h.ResetPassword)
	rg.GET("/google", h.GoogleRedirect)
	rg.GET("/google/callback", h.GoogleCallback)
}

func toSummary(user repository.User) transport.UserSummary {
	return transport.UserSummary{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.RoleName,
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req transport.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	user, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.Created(c, transport.RegisterResponse{
		Message: "user registered",
		User:    toSummary(user),
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	token, user, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.LoginResponse{
		Message: "login successful",
		Token:   token,
		User:    toSummary(user),
	})
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req transport.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"message": "recovery email sent"})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	rawToken := c.Param("token")
	if rawToken == "" {
		httpkit.Error(c, http.StatusBadRequest, "missing reset token", nil)
		return
	}

	var req transport.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), rawToken, req.NewPassword); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"message": "password updated"})
}

// GoogleRedirect starts the OAuth consent flow. The anti-forgery state lives
// in a short-lived cookie checked on callback.
func (h *Handler) GoogleRedirect(c *gin.Context) {
	if !h.google.Enabled() {
		httpkit.Error(c, http.StatusServiceUnavailable, "google sign-in is not configured", nil)
		return
	}

	state, err := service.NewState()
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "could not start sign-in", nil)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.google.AuthURL(state))
}

// GoogleCallback finishes the flow and hands the token to the frontend via
// the URL fragment, which browsers keep out of server logs.
func (h *Handler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	expected, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != expected {
		httpkit.Error(c, http.StatusUnauthorized, "invalid oauth state", nil)
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		httpkit.Error(c, http.StatusBadRequest, "missing authorization code", nil)
		return
	}

	token, _, err := h.google.Exchange(c.Request.Context(), code)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.Redirect(http.StatusFound, h.frontend+"/dashboard#token="+url.QueryEscape(token))
}
