package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/planetaagua/storefront/internal/service"
	"github.com/planetaagua/storefront/internal/transport"
	"github.com/planetaagua/storefront/pkg/logging"
)

type CardHTTP struct {
	Svc *service.CardService
}

func (h *CardHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	cards, err := h.Svc.List(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Warn("list_cards_failed", "status", 500, "error", err)
		return httpError(http.StatusInternalServerError, "Erro ao buscar cartões.", err)
	}
	return c.JSON(http.StatusOK, cards)
}

func (h *CardHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "card_create")
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req transport.CardRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("create_card_error", "status", 400, "error", err)
		return err
	}

	card, err := h.Svc.Create(ctx, userID, req)
	if err != nil {
		l.Warn("create_card_failed", "status", 500, "error", err)
		return httpError(http.StatusInternalServerError, "Erro ao salvar cartão.", err)
	}
	return c.JSON(http.StatusCreated, card)
}

func (h *CardHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "card_delete")
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, userID, id); err != nil {
		he := fromService(err, "Cartão não encontrado.", "Erro ao excluir cartão.")
		l.Warn("delete_card_failed", "status", he.Code, "card_id", id, "error", err)
		return he
	}
	return c.NoContent(http.StatusNoContent)
}
