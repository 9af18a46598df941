package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/planetaagua/storefront/internal/service"
	"github.com/planetaagua/storefront/internal/transport"
	"github.com/planetaagua/storefront/internal/validate"
	"github.com/planetaagua/storefront/pkg/logging"
)

const (
	msgInvalidBody    = "Corpo da requisição inválido."
	msgRequiredFields = "Campos obrigatórios ausentes ou inválidos."
	msgInvalidID      = "ID inválido."
	msgInternal       = "Erro interno do servidor."
)

// httpError builds the JSON error body. Server-side failures carry the
// underlying store or gateway message as details.
func httpError(code int, msg string, err error) *echo.HTTPError {
	body := transport.ErrorResponse{Error: msg}
	if code >= http.StatusInternalServerError && err != nil {
		body.Details = err.Error()
	}
	he := echo.NewHTTPError(code, body)
	if err != nil {
		he = he.SetInternal(err)
	}
	return he
}

// ErrorHandler renders every error as {"error": ..., "details"?: ...}.
// Errors that are not *echo.HTTPError become a 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "status", 500, "error", err)
		he = httpError(http.StatusInternalServerError, msgInternal, err)
	}

	var body transport.ErrorResponse
	switch m := he.Message.(type) {
	case transport.ErrorResponse:
		body = m
	case string:
		body.Error = m
	case error:
		body.Error = m.Error()
	default:
		body.Error = http.StatusText(he.Code)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(he.Code)
		return
	}
	_ = c.JSON(he.Code, body)
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return httpError(http.StatusBadRequest, msgInvalidBody, err)
	}
	if err := c.Validate(req); err != nil {
		var fe *validate.FieldsError
		if errors.As(err, &fe) {
			return echo.NewHTTPError(http.StatusBadRequest, transport.ErrorResponse{
				Error:   msgRequiredFields,
				Details: strings.Join(fe.Fields, ", "),
			}).SetInternal(err)
		}
		return httpError(http.StatusBadRequest, msgRequiredFields, err)
	}
	return nil
}

// fromService maps service sentinels onto statuses. msg500 is the message
// for anything unrecognised.
func fromService(err error, notFound, msg500 string) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrValidation):
		return httpError(http.StatusBadRequest, msgRequiredFields, err)
	case errors.Is(err, service.ErrInvalidCredentials):
		return httpError(http.StatusUnauthorized, msgInvalidCredentials, err)
	case errors.Is(err, service.ErrNotFound):
		return httpError(http.StatusNotFound, notFound, err)
	case errors.Is(err, service.ErrConflict):
		return httpError(http.StatusConflict, msgEmailInUse, err)
	default:
		return httpError(http.StatusInternalServerError, msg500, err)
	}
}
