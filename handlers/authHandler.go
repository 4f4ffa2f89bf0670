package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/ViBaTo/panel-control-tm/logger"
	"github.com/ViBaTo/panel-control-tm/middlewares"
	"github.com/ViBaTo/panel-control-tm/models"
	"github.com/ViBaTo/panel-control-tm/services"
	"github.com/ViBaTo/panel-control-tm/utils"
	"github.com/gin-gonic/gin"
)

const (
	DashboardPath     = "/dashboard"
	ResetPasswordPath = "/reset-password"

	unexpectedError = "Error inesperado. Inténtalo de nuevo."
)

// Authenticator is the account and session surface the auth routes use.
type Authenticator interface {
	SignUp(ctx context.Context, form utils.SignUpForm) (*services.Session, error)
	SignIn(ctx context.Context, email, password string) (*services.Session, error)
	SignOut(ctx context.Context, principal *models.Principal) error
	Refresh(ctx context.Context, refreshToken string) (string, error)
	OAuthURL(ctx context.Context) (string, error)
	OAuthCallback(ctx context.Context, state, code string) (*services.Session, error)
	SendResetCode(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type AuthHandler struct {
	auth Authenticator
	log  *logger.Logger
}

func NewAuthHandler(auth Authenticator, log *logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log.Component("auth")}
}

type sessionResponse struct {
	User         *models.Principal `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
	Redirect     string            `json:"redirect"`
}

func (h *AuthHandler) startSession(c *gin.Context, status int, session *services.Session) {
	utils.SetAuthCookies(c, session.AccessToken, session.RefreshToken)
	c.JSON(status, sessionResponse{
		User:         session.Principal(),
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		Redirect:     DashboardPath,
	})
}

// Register creates an account, its profile and a session.
func (h *AuthHandler) Register(c *gin.Context) {
	var form utils.SignUpForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	session, err := h.auth.SignUp(c.Request.Context(), form)
	switch {
	case err == nil:
		h.startSession(c, http.StatusCreated, session)
	case isValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrProfileCreation):
		middlewares.HttpError(c, h.log, err.Error(), http.StatusInternalServerError, err)
	default:
		middlewares.HttpError(c, h.log, unexpectedError, http.StatusInternalServerError, err)
	}
}

// Login authenticates with email and password.
func (h *AuthHandler) Login(c *gin.Context) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	session, err := h.auth.SignIn(c.Request.Context(), credentials.Email, credentials.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		middlewares.HttpError(c, h.log, unexpectedError, http.StatusInternalServerError, err)
		return
	}
	h.startSession(c, http.StatusOK, session)
}

// Logout ends the caller's session and clears the cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.SignOut(c.Request.Context(), middlewares.PrincipalFrom(c)); err != nil {
		middlewares.HttpError(c, h.log, unexpectedError, http.StatusInternalServerError, err)
		return
	}
	utils.ClearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"redirect": middlewares.LoginPath})
}

// Me returns the signed-in principal.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": middlewares.PrincipalFrom(c)})
}

// RefreshToken issues a new access token from the refresh token in the body
// or the refresh cookie.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = c.ShouldBindJSON(&body)
	token := body.RefreshToken
	if token == "" {
		token, _ = c.Cookie(utils.RefreshCookie)
	}
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh token is required"})
		return
	}

	access, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	c.SetCookie(utils.AccessCookie, access, int(utils.AccessTokenExpiry.Seconds()), "/", "", gin.Mode() == gin.ReleaseMode, true)
	c.JSON(http.StatusOK, gin.H{"accessToken": access})
}

// GoogleLogin redirects to the Google consent screen.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	target, err := h.auth.OAuthURL(c.Request.Context())
	if errors.Is(err, services.ErrOAuthDisabled) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		middlewares.HttpError(c, h.log, "Error al iniciar sesión con Google.", http.StatusInternalServerError, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

// GoogleCallback completes the Google flow and lands on the dashboard.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if reason := c.Query("error"); reason != "" {
		c.Redirect(http.StatusFound, middlewares.LoginPath+"?error="+url.QueryEscape(reason))
		return
	}

	session, err := h.auth.OAuthCallback(c.Request.Context(), c.Query("state"), c.Query("code"))
	switch {
	case err == nil:
		utils.SetAuthCookies(c, session.AccessToken, session.RefreshToken)
		c.Redirect(http.StatusFound, DashboardPath)
	case errors.Is(err, services.ErrInvalidOAuthState), errors.Is(err, utils.ErrEmailNotVerified):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrOAuthDisabled):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		middlewares.HttpError(c, h.log, "Error al iniciar sesión con Google.", http.StatusBadGateway, err)
	}
}

// ForgotPassword mails a reset code. The answer is the same whether or not
// the address has an account.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var data struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&data); err != nil || strings.TrimSpace(data.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.auth.SendResetCode(c.Request.Context(), data.Email); err != nil {
		middlewares.HttpError(c, h.log, unexpectedError, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true, "redirect": ResetPasswordPath})
}

// ResetPassword sets a new password using a mailed code.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var data struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	err := h.auth.ResetPassword(c.Request.Context(), data.Email, data.Code, data.NewPassword)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"redirect": middlewares.LoginPath})
	case isValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		middlewares.HttpError(c, h.log, unexpectedError, http.StatusInternalServerError, err)
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		utils.ErrPasswordMismatch,
		utils.ErrPasswordTooShort,
		utils.ErrNameRequired,
		utils.ErrInvalidEmail,
		utils.ErrInvalidResetCode,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
