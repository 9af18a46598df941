package service

import (
	"context"
	"sync"

	"github.com/planetaagua/storefront/internal/events"
	"github.com/planetaagua/storefront/internal/gateway/mercadopago"
	"github.com/planetaagua/storefront/internal/models"
	"github.com/planetaagua/storefront/internal/repo"
)

type fixture struct {
	users     *repo.MemoryRepo[models.User]
	addresses *repo.MemoryRepo[models.Address]
	orders    *repo.MemoryRepo[models.Order]
	items     *repo.MemoryRepo[models.OrderItem]
	events    *events.Recorder
	gateway   *fakeGateway
	saga      *OrderSaga
}

func newFixture() *fixture {
	f := &fixture{
		users:     repo.NewMemoryRepo[models.User]("email"),
		addresses: repo.NewMemoryRepo[models.Address](),
		orders:    repo.NewMemoryRepo[models.Order](),
		items:     repo.NewMemoryRepo[models.OrderItem](),
		events:    &events.Recorder{},
		gateway:   &fakeGateway{},
	}
	f.saga = &OrderSaga{Orders: f.orders, Items: f.items, Events: f.events}
	return f
}

func (f *fixture) orderService() *OrderService {
	return &OrderService{Orders: f.orders, Addresses: f.addresses, Saga: f.saga}
}

func (f *fixture) address(userID uint) models.Address {
	a := models.Address{
		UserID:       userID,
		Street:       "Rua das Flores",
		Number:       "10",
		Neighborhood: "Boa Viagem",
		City:         "Recife",
		State:        "PE",
		ZipCode:      "51020-000",
	}
	if err := f.addresses.Insert(context.Background(), &a); err != nil {
		panic(err)
	}
	return a
}

type fakeGateway struct {
	mu          sync.Mutex
	preferences []mercadopago.PreferenceRequest
	payments    []mercadopago.PaymentRequest

	preference *mercadopago.Preference
	payment    *mercadopago.Payment
	fetched    map[string]*mercadopago.Payment
	err        error
	// onCharge runs inside CreatePayment before it answers.
	onCharge func()
}

func (g *fakeGateway) CreatePreference(_ context.Context, req mercadopago.PreferenceRequest) (*mercadopago.Preference, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.preferences = append(g.preferences, req)
	if g.err != nil {
		return nil, g.err
	}
	if g.preference != nil {
		return g.preference, nil
	}
	return &mercadopago.Preference{ID: "pref-1", InitPoint: "https://mp/init", ExternalReference: req.ExternalReference}, nil
}

func (g *fakeGateway) CreatePayment(_ context.Context, req mercadopago.PaymentRequest) (*mercadopago.Payment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payments = append(g.payments, req)
	if g.onCharge != nil {
		g.onCharge()
	}
	if g.err != nil {
		return nil, g.err
	}
	p := *g.payment
	return &p, nil
}

func (g *fakeGateway) GetPayment(_ context.Context, id string) (*mercadopago.Payment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	p, ok := g.fetched[id]
	if !ok {
		return nil, &mercadopago.APIError{StatusCode: 404, Message: "Payment not found"}
	}
	return p, nil
}
