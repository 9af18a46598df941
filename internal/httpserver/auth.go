package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/planetaagua/storefront/internal/service"
	"github.com/planetaagua/storefront/internal/transport"
	"github.com/planetaagua/storefront/pkg/logging"
)

const (
	msgEmailInUse         = "Este email já está em uso."
	msgInvalidCredentials = "Email ou senha inválidos."
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_signup")

	var req transport.SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("signup_error", "status", 400, "error", err)
		return err
	}

	user, err := h.Svc.Signup(ctx, req)
	if err != nil {
		he := fromService(err, "", "Erro ao criar usuário.")
		l.Warn("signup_failed", "status", he.Code, "error", err)
		return he
	}

	l.Info("signup_successful", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

// Login answers the same body for an unknown email and a wrong password.
func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return err
	}

	token, user, err := h.Svc.Login(ctx, req)
	if err != nil {
		he := fromService(err, "", "Erro ao fazer login.")
		l.Warn("login_failed", "status", he.Code, "error", err)
		return he
	}

	l.Info("login_successful", "user_id", user.ID)
	return c.JSON(http.StatusOK, transport.LoginResponse{
		Message: "Login realizado com sucesso!",
		Token:   token,
		User:    user,
	})
}

func (h *AuthHTTP) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_profile")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	user, err := h.Svc.Profile(ctx, userID)
	if err != nil {
		he := fromService(err, "Usuário não encontrado.", "Erro ao buscar perfil.")
		l.Warn("profile_failed", "status", he.Code, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, user)
}
