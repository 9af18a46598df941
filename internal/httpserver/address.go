package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/planetaagua/storefront/internal/service"
	"github.com/planetaagua/storefront/internal/transport"
	"github.com/planetaagua/storefront/pkg/logging"
)

const msgAddressNotFound = "Endereço não encontrado."

type AddressHTTP struct {
	Svc *service.AddressService
}

func (h *AddressHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	list, err := h.Svc.List(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Warn("list_addresses_failed", "status", 500, "error", err)
		return httpError(http.StatusInternalServerError, "Erro ao buscar endereços.", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AddressHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address_create")
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req transport.AddressRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("create_address_error", "status", 400, "error", err)
		return err
	}

	a, err := h.Svc.Create(ctx, userID, req)
	if err != nil {
		l.Warn("create_address_failed", "status", 500, "error", err)
		return httpError(http.StatusInternalServerError, "Erro ao salvar endereço.", err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *AddressHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address_update")
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}

	var req transport.AddressRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("update_address_error", "status", 400, "error", err)
		return err
	}

	a, err := h.Svc.Update(ctx, userID, id, req)
	if err != nil {
		he := fromService(err, msgAddressNotFound, "Erro ao atualizar endereço.")
		l.Warn("update_address_failed", "status", he.Code, "address_id", id, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AddressHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address_delete")
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, userID, id); err != nil {
		he := fromService(err, msgAddressNotFound, "Erro ao excluir endereço.")
		l.Warn("delete_address_failed", "status", he.Code, "address_id", id, "error", err)
		return he
	}
	return c.NoContent(http.StatusNoContent)
}
