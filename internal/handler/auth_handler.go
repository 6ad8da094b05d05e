package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "bandroom/internal/errors"
	"bandroom/internal/service"
	"bandroom/internal/session"
)

// AuthHandler handles the login, register and logout pages.
type AuthHandler struct {
	authService  service.AuthService
	pages        *Pages
	ttl          time.Duration
	secureCookie bool
}

// NewAuthHandler creates a new auth handler. ttl and secureCookie shape the session cookie.
func NewAuthHandler(authService service.AuthService, pages *Pages, ttl time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		pages:        pages,
		ttl:          ttl,
		secureCookie: secureCookie,
	}
}

// CredentialsForm is the login and register form.
type CredentialsForm struct {
	Username string `form:"username" validate:"required,max=64"`
	Password string `form:"password" validate:"required,max=72"`
}

var errMissingCredentials = apperrors.Notice{Category: apperrors.CategoryError, Message: "Please enter a username and password"}

// LoginPage shows the login form.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if session.FromContext(c).Authenticated() {
		return h.pages.Fail(c, browsePath, apperrors.ErrAlreadyLoggedIn)
	}
	return h.pages.Render(c, http.StatusOK, "login", "Log in", nil)
}

// RegisterPage shows the registration form.
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	if session.FromContext(c).Authenticated() {
		return h.pages.Fail(c, browsePath, apperrors.ErrAlreadyLoggedIn)
	}
	return h.pages.Render(c, http.StatusOK, "register", "Register", nil)
}

// Login verifies the credentials and sets the session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	form, ok, err := h.bindCredentials(c, loginPath)
	if !ok {
		return err
	}

	issued, err := h.authService.Login(c.Request().Context(), session.FromContext(c), form.Username, form.Password)
	if err != nil {
		return h.failAuth(c, loginPath, err)
	}

	session.SetCookie(c, issued.Token, h.ttl, h.secureCookie)
	return h.pages.Success(c, browsePath, "Welcome back, "+issued.Session.Username)
}

// Register creates the account and logs the new user in.
func (h *AuthHandler) Register(c echo.Context) error {
	form, ok, err := h.bindCredentials(c, "/register")
	if !ok {
		return err
	}

	issued, err := h.authService.Register(c.Request().Context(), session.FromContext(c), form.Username, form.Password)
	if err != nil {
		return h.failAuth(c, "/register", err)
	}

	session.SetCookie(c, issued.Token, h.ttl, h.secureCookie)
	return h.pages.Success(c, browsePath, "Registration successful")
}

// Logout ends the session.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), session.FromContext(c)); err != nil {
		return err
	}
	session.ClearCookie(c, h.secureCookie)
	return h.pages.Success(c, landingPath, "You have been logged out")
}

// bindCredentials returns ok=false when the handler should return err as is.
func (h *AuthHandler) bindCredentials(c echo.Context, formPath string) (CredentialsForm, bool, error) {
	var form CredentialsForm
	if err := c.Bind(&form); err != nil {
		return form, false, echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&form); err != nil {
		return form, false, h.pages.Redirect(c, formPath, errMissingCredentials)
	}
	return form, true, nil
}

func (h *AuthHandler) failAuth(c echo.Context, formPath string, err error) error {
	if errors.Is(err, apperrors.ErrAlreadyLoggedIn) {
		return h.pages.Fail(c, browsePath, err)
	}
	return h.pages.Fail(c, formPath, err)
}
