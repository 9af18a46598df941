package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/planetaagua/storefront/internal/service"
	"github.com/planetaagua/storefront/internal/transport"
	"github.com/planetaagua/storefront/pkg/logging"
)

const msgOrderFailed = "Erro ao criar pedido."

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_create")
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req transport.CreateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("create_order_error", "status", 400, "error", err)
		return err
	}

	order, err := h.Svc.CreateOrder(ctx, userID, req)
	if err != nil {
		he := fromService(err, "", msgOrderFailed)
		l.Warn("create_order_failed", "status", he.Code, "error", err)
		return he
	}

	l.Info("order_created", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	orders, err := h.Svc.ListOrders(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Warn("list_orders_failed", "status", 500, "error", err)
		return httpError(http.StatusInternalServerError, "Erro ao buscar pedidos.", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) Process(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_process")
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req transport.ProcessOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("process_order_error", "status", 400, "error", err)
		return err
	}

	order, err := h.Svc.ProcessOrder(ctx, userID, req)
	if err != nil {
		he := fromService(err, msgAddressNotFound, msgOrderFailed)
		l.Warn("process_order_failed", "status", he.Code, "error", err)
		return he
	}

	l.Info("order_processed", "order_id", order.ID, "status", order.Status)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Pedido criado com sucesso!",
		"order":   order,
	})
}
