package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/planetaagua/storefront/internal/events"
	"github.com/planetaagua/storefront/internal/gateway/mercadopago"
	"github.com/planetaagua/storefront/internal/models"
	"github.com/planetaagua/storefront/internal/repo"
	"github.com/planetaagua/storefront/internal/transport"
	"github.com/planetaagua/storefront/pkg/logging"
)

// TODO: collect the payer's CPF at checkout and send it instead of this
// fixed test document.
const placeholderCPF = "19119119100"

// approvedOrderTimeout bounds the order write after a captured charge. The
// write is detached from the request context.
const approvedOrderTimeout = 10 * time.Second

type PaymentGateway interface {
	CreatePreference(ctx context.Context, req mercadopago.PreferenceRequest) (*mercadopago.Preference, error)
	CreatePayment(ctx context.Context, req mercadopago.PaymentRequest) (*mercadopago.Payment, error)
	GetPayment(ctx context.Context, id string) (*mercadopago.Payment, error)
}

type PaymentService struct {
	Gateway     PaymentGateway
	Users       repo.Repository[models.User]
	Addresses   repo.Repository[models.Address]
	Orders      repo.Repository[models.Order]
	Saga        *OrderSaga
	Events      events.Publisher
	FrontendURL string
	APIURL      string
	Now         func() time.Time
}

type PaymentResult struct {
	Payment *mercadopago.Payment
	// Order is nil unless the charge was approved.
	Order *models.Order
}

func (s *PaymentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *PaymentService) externalReference(userID uint) string {
	return fmt.Sprintf("%d-%d", userID, s.now().UnixMilli())
}

func (s *PaymentService) CreatePreference(ctx context.Context, userID uint, req transport.PreferenceRequest) (*mercadopago.Preference, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: items required", ErrValidation)
	}

	payer, err := s.payer(ctx, userID, req.Payer)
	if err != nil {
		return nil, err
	}

	items := make([]mercadopago.PreferenceItem, 0, len(req.Items))
	for _, it := range req.Items {
		title := it.Label()
		if title == "" {
			title = fmt.Sprintf("Produto %d", it.ProductRef())
		}
		items = append(items, mercadopago.PreferenceItem{
			ID:         strconv.FormatUint(uint64(it.ProductRef()), 10),
			Title:      title,
			Quantity:   it.Quantity,
			UnitPrice:  it.Amount(),
			CurrencyID: mercadopago.CurrencyBRL,
			PictureURL: it.ImageURL,
		})
	}

	pref, err := s.Gateway.CreatePreference(ctx, mercadopago.PreferenceRequest{
		Items: items,
		Payer: payer,
		BackURLs: mercadopago.BackURLs{
			Success: s.FrontendURL + "/checkout/success",
			Failure: s.FrontendURL + "/checkout/failure",
			Pending: s.FrontendURL + "/checkout/pending",
		},
		AutoReturn:        "approved",
		NotificationURL:   s.APIURL + "/payments/webhook",
		ExternalReference: s.externalReference(userID),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	return pref, nil
}

// payer fills whatever the request left out from the user's own record.
func (s *PaymentService) payer(ctx context.Context, userID uint, in *transport.PayerInput) (*mercadopago.Payer, error) {
	var p transport.PayerInput
	if in != nil {
		p = *in
	}
	if p.Email == "" || p.Name == "" || p.Phone == "" {
		user, err := s.Users.FindOne(ctx, repo.Filter{"id": userID})
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
			}
			return nil, err
		}
		if p.Email == "" {
			p.Email = user.Email
		}
		if p.Name == "" {
			p.Name = user.Name
		}
		if p.Phone == "" {
			p.Phone = user.Phone
		}
	}

	out := &mercadopago.Payer{Email: p.Email, Name: p.Name}
	if p.Phone != "" {
		out.Phone = &mercadopago.Phone{Number: p.Phone}
	}
	return out, nil
}

// ChargeTotal sums price x quantity over the submitted items, rounded to
// cents.
func ChargeTotal(items []transport.ItemInput) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.Amount()).Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(line)
	}
	return total.Round(2)
}

func (s *PaymentService) ProcessPayment(ctx context.Context, userID uint, req transport.PaymentRequest) (*PaymentResult, error) {
	if len(req.Items) == 0 || req.Token == "" || req.PaymentMethodID == "" {
		return nil, fmt.Errorf("%w: token, payment_method_id and items are required", ErrValidation)
	}

	shipping := req.ShippingAddress
	if req.AddressID != 0 {
		addr, err := s.Addresses.FindOne(ctx, repo.Filter{"id": req.AddressID, "user_id": userID})
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, fmt.Errorf("%w: address %d", ErrNotFound, req.AddressID)
			}
			return nil, err
		}
		shipping = FormatShipping(addr)
	}

	payer, err := s.payer(ctx, userID, req.Payer)
	if err != nil {
		return nil, err
	}
	payer.Name = ""
	payer.Phone = nil
	payer.Identification = &mercadopago.Identification{Type: "CPF", Number: placeholderCPF}

	installments := req.Installments
	if installments <= 0 {
		installments = 1
	}
	total := ChargeTotal(req.Items)
	ref := s.externalReference(userID)

	payment, err := s.Gateway.CreatePayment(ctx, mercadopago.PaymentRequest{
		TransactionAmount: total.InexactFloat64(),
		Token:             req.Token,
		Description:       "Pedido Planeta Água",
		Installments:      installments,
		PaymentMethodID:   req.PaymentMethodID,
		IssuerID:          req.IssuerID,
		Payer:             *payer,
		ExternalReference: ref,
		NotificationURL:   s.APIURL + "/payments/webhook",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	if !payment.Approved() {
		logging.FromContext(ctx).Info("payment_not_approved", "payment_id", payment.ID, "status", payment.Status, "status_detail", payment.StatusDetail)
		return &PaymentResult{Payment: payment}, nil
	}

	order := &models.Order{
		UserID:            userID,
		Total:             total.InexactFloat64(),
		ShippingAddress:   shipping,
		Status:            models.OrderStatusConfirmed,
		PaymentMethod:     req.PaymentMethodID,
		PaymentID:         strconv.FormatInt(payment.ID, 10),
		ExternalReference: ref,
	}
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), approvedOrderTimeout)
	defer cancel()
	res := s.Saga.Run(wctx, order, ItemsFrom(req.Items))
	if res.Outcome != Committed {
		return nil, fmt.Errorf("payment %d approved but order not stored (%s): %w", payment.ID, res.Outcome, res.Failure)
	}
	return &PaymentResult{Payment: payment, Order: res.Order}, nil
}

// StatusFromPayment maps a gateway payment status onto an order status.
func StatusFromPayment(status string) string {
	if status == mercadopago.StatusApproved {
		return models.OrderStatusConfirmed
	}
	return models.OrderStatusPending
}

// HandleWebhook re-reads the payment from the gateway and moves the matching
// order's status. Notifications other than payments are ignored. It never
// creates orders.
func (s *PaymentService) HandleWebhook(ctx context.Context, kind, paymentID string) error {
	if !strings.EqualFold(kind, "payment") || paymentID == "" {
		return nil
	}

	payment, err := s.Gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGateway, err)
	}
	status := StatusFromPayment(payment.Status)
	patch := map[string]any{"status": status}

	order, err := s.Orders.Update(ctx, repo.Filter{"payment_id": strconv.FormatInt(payment.ID, 10)}, patch)
	if errors.Is(err, repo.ErrNotFound) && payment.ExternalReference != "" {
		order, err = s.Orders.Update(ctx, repo.Filter{"external_reference": payment.ExternalReference}, patch)
	}
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: order for payment %d", ErrNotFound, payment.ID)
		}
		return err
	}

	publish(ctx, s.Events, events.TopicOrders, strconv.FormatUint(uint64(order.ID), 10), events.OrderPaymentUpdated, map[string]any{
		"order_id":       order.ID,
		"payment_id":     payment.ID,
		"payment_status": payment.Status,
		"status":         status,
	})
	return nil
}
