package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planetaagua/storefront/internal/events"
	"github.com/planetaagua/storefront/internal/gateway/mercadopago"
	"github.com/planetaagua/storefront/internal/models"
	"github.com/planetaagua/storefront/internal/repo"
	"github.com/planetaagua/storefront/internal/transport"
)

var fixedNow = time.UnixMilli(1760000000000)

func (f *fixture) paymentService() *PaymentService {
	return &PaymentService{
		Gateway:     f.gateway,
		Users:       f.users,
		Addresses:   f.addresses,
		Orders:      f.orders,
		Saga:        f.saga,
		Events:      f.events,
		FrontendURL: "https://loja.example",
		APIURL:      "https://api.example",
		Now:         func() time.Time { return fixedNow },
	}
}

func (f *fixture) user() models.User {
	u := models.User{Name: "Ana", Email: "ana@x.com", PasswordHash: "h", Phone: "81999990000"}
	if err := f.users.Insert(context.Background(), &u); err != nil {
		panic(err)
	}
	return u
}

func TestChargeTotal(t *testing.T) {
	t.Parallel()

	total := ChargeTotal([]transport.ItemInput{
		{Price: 0.1, Quantity: 3},
		{PriceAtPurchase: 19.99, Quantity: 2},
	})
	assert.Equal(t, "40.28", total.StringFixed(2))
}

func TestCreatePreference_FallsBackToUser(t *testing.T) {
	f := newFixture()
	u := f.user()
	svc := f.paymentService()

	pref, err := svc.CreatePreference(context.Background(), u.ID, transport.PreferenceRequest{
		Items: []transport.ItemInput{{ID: 3, Title: "Galão 20L", Quantity: 2, UnitPrice: 15}},
	})
	require.NoError(t, err)
	assert.Equal(t, "pref-1", pref.ID)

	require.Len(t, f.gateway.preferences, 1)
	sent := f.gateway.preferences[0]
	assert.Equal(t, "ana@x.com", sent.Payer.Email)
	assert.Equal(t, "Ana", sent.Payer.Name)
	assert.Equal(t, "81999990000", sent.Payer.Phone.Number)
	assert.Equal(t, "https://loja.example/checkout/success", sent.BackURLs.Success)
	assert.Equal(t, "https://loja.example/checkout/failure", sent.BackURLs.Failure)
	assert.Equal(t, "https://loja.example/checkout/pending", sent.BackURLs.Pending)
	assert.Equal(t, "https://api.example/payments/webhook", sent.NotificationURL)
	assert.Equal(t, "1-1760000000000", sent.ExternalReference)
	assert.Equal(t, "Galão 20L", sent.Items[0].Title)
	assert.Equal(t, 15.0, sent.Items[0].UnitPrice)
	assert.Empty(t, f.orders.Rows(), "a preference does not create an order")
}

func TestCreatePreference_RequestPayerWins(t *testing.T) {
	f := newFixture()
	u := f.user()

	_, err := f.paymentService().CreatePreference(context.Background(), u.ID, transport.PreferenceRequest{
		Items: []transport.ItemInput{{ID: 3, Quantity: 1, Price: 15}},
		Payer: &transport.PayerInput{Email: "outro@x.com", Name: "Bia", Phone: "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "outro@x.com", f.gateway.preferences[0].Payer.Email)
	assert.Equal(t, "Produto 3", f.gateway.preferences[0].Items[0].Title)
}

func TestCreatePreference_GatewayError(t *testing.T) {
	f := newFixture()
	u := f.user()
	f.gateway.err = errors.New("timeout")

	_, err := f.paymentService().CreatePreference(context.Background(), u.ID, transport.PreferenceRequest{
		Items: []transport.ItemInput{{ID: 3, Quantity: 1, Price: 15}},
	})
	assert.ErrorIs(t, err, ErrGateway)
	assert.Contains(t, err.Error(), "timeout")
}

func TestProcessPayment_ApprovedCreatesOrder(t *testing.T) {
	f := newFixture()
	u := f.user()
	addr := f.address(u.ID)
	f.gateway.payment = &mercadopago.Payment{ID: 555, Status: mercadopago.StatusApproved}

	res, err := f.paymentService().ProcessPayment(context.Background(), u.ID, transport.PaymentRequest{
		Token:           "card-token",
		PaymentMethodID: "visa",
		Items:           []transport.ItemInput{{ID: 1, Price: 10, Quantity: 2}, {ID: 2, Price: 2.5, Quantity: 1}},
		AddressID:       addr.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Order)
	assert.Equal(t, models.OrderStatusConfirmed, res.Order.Status)
	assert.Equal(t, "555", res.Order.PaymentID)
	assert.Equal(t, 22.5, res.Order.Total)
	assert.Equal(t, "1-1760000000000", res.Order.ExternalReference)

	sent := f.gateway.payments[0]
	assert.Equal(t, 22.5, sent.TransactionAmount)
	assert.Equal(t, 1, sent.Installments)
	assert.Equal(t, "ana@x.com", sent.Payer.Email)
	require.NotNil(t, sent.Payer.Identification)
	assert.Equal(t, "CPF", sent.Payer.Identification.Type)

	assert.Len(t, f.items.Rows(), 2)
}

func TestProcessPayment_NotApproved(t *testing.T) {
	f := newFixture()
	u := f.user()
	f.gateway.payment = &mercadopago.Payment{ID: 556, Status: "rejected", StatusDetail: "cc_rejected_insufficient_amount"}

	res, err := f.paymentService().ProcessPayment(context.Background(), u.ID, transport.PaymentRequest{
		Token: "card-token", PaymentMethodID: "visa", Installments: 3,
		Items: []transport.ItemInput{{ID: 1, Price: 10, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Nil(t, res.Order)
	assert.Equal(t, "rejected", res.Payment.Status)
	assert.Equal(t, 3, f.gateway.payments[0].Installments)
	assert.Empty(t, f.orders.Rows())
}

func TestProcessPayment_GatewayFailure(t *testing.T) {
	f := newFixture()
	u := f.user()
	f.gateway.err = errors.New("context deadline exceeded")

	_, err := f.paymentService().ProcessPayment(context.Background(), u.ID, transport.PaymentRequest{
		Token: "card-token", PaymentMethodID: "visa",
		Items: []transport.ItemInput{{ID: 1, Price: 10, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrGateway)
	assert.Empty(t, f.orders.Rows())
}

func TestHandleWebhook_ApprovedConfirmsOrder(t *testing.T) {
	f := newFixture()
	order := models.Order{UserID: 1, Total: 10, ShippingAddress: "x", Status: models.OrderStatusPending, PaymentID: "777"}
	require.NoError(t, f.orders.Insert(context.Background(), &order))
	f.gateway.fetched = map[string]*mercadopago.Payment{"777": {ID: 777, Status: mercadopago.StatusApproved}}

	require.NoError(t, f.paymentService().HandleWebhook(context.Background(), "payment", "777"))

	got, err := f.orders.FindOne(context.Background(), repo.Filter{"id": order.ID})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, got.Status)
	assert.Equal(t, []string{events.OrderPaymentUpdated}, f.events.Types())
}

func TestHandleWebhook_FallsBackToExternalReference(t *testing.T) {
	f := newFixture()
	order := models.Order{UserID: 1, Total: 10, ShippingAddress: "x", Status: models.OrderStatusConfirmed, ExternalReference: "1-99"}
	require.NoError(t, f.orders.Insert(context.Background(), &order))
	f.gateway.fetched = map[string]*mercadopago.Payment{"42": {ID: 42, Status: "in_process", ExternalReference: "1-99"}}

	require.NoError(t, f.paymentService().HandleWebhook(context.Background(), "payment", "42"))

	got, err := f.orders.FindOne(context.Background(), repo.Filter{"id": order.ID})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, got.Status)
}

func TestHandleWebhook_NoMatchOrIgnored(t *testing.T) {
	f := newFixture()
	svc := f.paymentService()
	f.gateway.fetched = map[string]*mercadopago.Payment{"1": {ID: 1, Status: mercadopago.StatusApproved}}

	assert.NoError(t, svc.HandleWebhook(context.Background(), "merchant_order", "1"))
	assert.NoError(t, svc.HandleWebhook(context.Background(), "payment", ""))
	assert.ErrorIs(t, svc.HandleWebhook(context.Background(), "payment", "1"), ErrNotFound)
	assert.ErrorIs(t, svc.HandleWebhook(context.Background(), "payment", "2"), ErrGateway)
	assert.Empty(t, f.orders.Rows(), "webhooks never create orders")
}
