package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/planetaagua/storefront/pkg/tokens"
)

const CtxUserID = "user_id"

type Bearer struct {
	JWTSecret []byte
}

func NewBearer(secret []byte) *Bearer {
	return &Bearer{JWTSecret: secret}
}

// RequireAuth rejects the request before the handler runs unless the
// Authorization header carries a valid token, then exposes the subject
// under CtxUserID.
func (m *Bearer) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := c.Request().Header.Get(echo.HeaderAuthorization)
		scheme, token, ok := strings.Cut(raw, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Token não fornecido.")
		}

		claims, err := tokens.AccessClaimsFromToken(strings.TrimSpace(token), m.JWTSecret)
		if err != nil || claims == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Token inválido ou expirado.")
		}

		userID, err := claims.UserID()
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Token inválido ou expirado.")
		}

		c.Set(CtxUserID, userID)
		return next(c)
	}
}

// UserID returns the subject stored by RequireAuth.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(CtxUserID).(uint)
	return id, ok && id != 0
}
