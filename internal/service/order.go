package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/planetaagua/storefront/internal/models"
	"github.com/planetaagua/storefront/internal/repo"
	"github.com/planetaagua/storefront/internal/transport"
)

const PaymentMethodPIX = "PIX"

type OrderService struct {
	Orders    repo.Repository[models.Order]
	Addresses repo.Repository[models.Address]
	Saga      *OrderSaga
}

// StatusFor decides the initial order status from the checkout payment
// method. Only the exact value "PIX" settles later; every other method is
// confirmed on the spot.
func StatusFor(paymentMethod string) string {
	if paymentMethod == PaymentMethodPIX {
		return models.OrderStatusPending
	}
	return models.OrderStatusConfirmed
}

// ItemsFrom copies client-supplied quantities and prices verbatim; the
// catalog is not consulted.
func ItemsFrom(in []transport.ItemInput) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(in))
	for _, it := range in {
		items = append(items, models.OrderItem{
			ProductID:       it.ProductRef(),
			Quantity:        it.Quantity,
			PriceAtPurchase: it.Amount(),
		})
	}
	return items
}

func (s *OrderService) CreateOrder(ctx context.Context, userID uint, req transport.CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 || req.Total == 0 || strings.TrimSpace(req.ShippingAddress) == "" {
		return nil, fmt.Errorf("%w: items, total and shipping_address are required", ErrValidation)
	}

	order := &models.Order{
		UserID:          userID,
		Total:           req.Total,
		ShippingAddress: req.ShippingAddress,
		Status:          models.OrderStatusPending,
	}
	return s.place(ctx, order, ItemsFrom(req.Items))
}

func (s *OrderService) ProcessOrder(ctx context.Context, userID uint, req transport.ProcessOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 || req.Total == 0 || req.AddressID == 0 {
		return nil, fmt.Errorf("%w: items, total and addressId are required", ErrValidation)
	}

	addr, err := s.Addresses.FindOne(ctx, repo.Filter{"id": req.AddressID, "user_id": userID})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: address %d", ErrNotFound, req.AddressID)
		}
		return nil, err
	}

	order := &models.Order{
		UserID:          userID,
		Total:           req.Total,
		ShippingAddress: FormatShipping(addr),
		Status:          StatusFor(req.PaymentMethod),
		PaymentMethod:   req.PaymentMethod,
	}
	return s.place(ctx, order, ItemsFrom(req.Items))
}

func (s *OrderService) place(ctx context.Context, order *models.Order, items []models.OrderItem) (*models.Order, error) {
	res := s.Saga.Run(ctx, order, items)
	if res.Outcome != Committed {
		return nil, fmt.Errorf("create order (%s): %w", res.Outcome, res.Failure)
	}
	return res.Order, nil
}

// ListOrders returns the caller's orders, newest first, with items and their
// products.
func (s *OrderService) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.Orders.Find(ctx, repo.Filter{"user_id": userID},
		repo.Preload("Items.Product"),
		repo.OrderBy("created_at desc"),
	)
}
