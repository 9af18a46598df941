package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/planetaagua/storefront/internal/service"
	"github.com/planetaagua/storefront/pkg/logging"
)

type ProductHTTP struct {
	Svc *service.CatalogService
}

// List lets store errors through to ErrorHandler.
func (h *ProductHTTP) List(c echo.Context) error {
	products, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product_get")

	id, err := idParam(c)
	if err != nil {
		l.Warn("get_product_error", "status", 400, "reason", "invalid id", "error", err)
		return err
	}

	p, err := h.Svc.Get(ctx, id)
	if err != nil {
		he := fromService(err, "Produto não encontrado.", "Erro ao buscar produto.")
		l.Warn("get_product_failed", "status", he.Code, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product_search")

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))

	res, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		he := fromService(err, "", "Erro ao buscar produtos.")
		if he.Code == http.StatusBadRequest {
			he = httpError(http.StatusBadRequest, "Parâmetro q é obrigatório.", err)
		}
		l.Warn("search_failed", "status", he.Code, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, res)
}
