package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	authmw "github.com/planetaagua/storefront/pkg/middleware/auth"
)

func idParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, httpError(http.StatusBadRequest, msgInvalidID, err)
	}
	return uint(id), nil
}

func currentUser(c echo.Context) (uint, error) {
	id, ok := authmw.UserID(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "Token não fornecido.")
	}
	return id, nil
}
