package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/planetaagua/storefront/internal/service"
	"github.com/planetaagua/storefront/internal/transport"
	"github.com/planetaagua/storefront/pkg/logging"
)

type PaymentHTTP struct {
	Svc *service.PaymentService
}

func (h *PaymentHTTP) CreatePreference(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment_preference")
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req transport.PreferenceRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("preference_error", "status", 400, "error", err)
		return err
	}

	pref, err := h.Svc.CreatePreference(ctx, userID, req)
	if err != nil {
		he := fromService(err, "Usuário não encontrado.", "Erro ao criar preferência de pagamento.")
		l.Warn("preference_failed", "status", he.Code, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, pref)
}

func (h *PaymentHTTP) Process(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment_process")
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req transport.PaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("payment_error", "status", 400, "error", err)
		return err
	}

	res, err := h.Svc.ProcessPayment(ctx, userID, req)
	if err != nil {
		he := fromService(err, msgAddressNotFound, "Erro ao processar pagamento.")
		l.Warn("payment_failed", "status", he.Code, "error", err)
		return he
	}

	if res.Order == nil {
		return c.JSON(http.StatusOK, echo.Map{"payment": res.Payment})
	}
	l.Info("payment_approved", "payment_id", res.Payment.ID, "order_id", res.Order.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Pagamento aprovado e pedido criado!",
		"payment": res.Payment,
		"order":   res.Order,
	})
}

// Webhook always answers 200 so the gateway does not redeliver; failures are
// only logged.
func (h *PaymentHTTP) Webhook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment_webhook")

	var n transport.WebhookNotification
	if err := c.Bind(&n); err != nil {
		l.Warn("webhook_body_ignored", "error", err)
	}

	kind := firstNonEmpty(n.Type, c.QueryParam("type"), c.QueryParam("topic"))
	id := firstNonEmpty(string(n.Data.ID), c.QueryParam("data.id"), c.QueryParam("id"))

	if err := h.Svc.HandleWebhook(ctx, kind, id); err != nil {
		l.Error("webhook_failed", "type", kind, "payment_id", id, "error", err)
	} else {
		l.Info("webhook_processed", "type", kind, "payment_id", id)
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
