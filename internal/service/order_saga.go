package service

import (
	"context"
	"strconv"
	"time"

	"github.com/planetaagua/storefront/internal/events"
	"github.com/planetaagua/storefront/internal/models"
	"github.com/planetaagua/storefront/internal/repo"
	"github.com/planetaagua/storefront/pkg/logging"
)

// compensationTimeout bounds the header delete, which outlives the request.
const compensationTimeout = 5 * time.Second

type Outcome int

const (
	// Committed: header and items are stored.
	Committed Outcome = iota
	// Aborted: the header insert failed, nothing was written.
	Aborted
	// RolledBack: the items failed and the header was deleted again.
	RolledBack
	// Orphaned: the items failed and so did the delete, the header is left
	// without items.
	Orphaned
)

func (o Outcome) String() string {
	switch o {
	case Committed:
		return "committed"
	case Aborted:
		return "aborted"
	case RolledBack:
		return "rolled_back"
	case Orphaned:
		return "orphaned"
	default:
		return "unknown"
	}
}

type Result struct {
	Outcome Outcome
	Order   *models.Order
	// Failure is the step error that stopped the saga.
	Failure error
	// CompensationFailure is set only for Orphaned.
	CompensationFailure error
}

// OrderSaga writes an order header and then its items. There is no
// transaction across the two writes; a failed item insert is compensated by
// deleting the header.
type OrderSaga struct {
	Orders repo.Repository[models.Order]
	Items  repo.Repository[models.OrderItem]
	Events events.Publisher
}

func (s *OrderSaga) Run(ctx context.Context, order *models.Order, items []models.OrderItem) Result {
	l := logging.FromContext(ctx).With("saga", "order")

	order.Items = nil
	if err := s.Orders.Insert(ctx, order); err != nil {
		l.Warn("order_header_failed", "user_id", order.UserID, "error", err)
		return Result{Outcome: Aborted, Failure: err}
	}
	key := strconv.FormatUint(uint64(order.ID), 10)

	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := s.Items.InsertMany(ctx, items); err != nil {
		l.Warn("order_items_failed", "order_id", order.ID, "error", err)

		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
		defer cancel()

		if _, delErr := s.Orders.Delete(cctx, repo.Filter{"id": order.ID}); delErr != nil {
			l.Error("order_compensation_failed", "order_id", order.ID, "error", delErr)
			publish(cctx, s.Events, events.TopicOrders, key, events.OrderOrphaned, orderPayload(order))
			return Result{Outcome: Orphaned, Order: order, Failure: err, CompensationFailure: delErr}
		}

		publish(cctx, s.Events, events.TopicOrders, key, events.OrderRolledBack, orderPayload(order))
		return Result{Outcome: RolledBack, Failure: err}
	}

	publish(ctx, s.Events, events.TopicOrders, key, events.OrderCreated, orderPayload(order))
	return Result{Outcome: Committed, Order: order}
}

func orderPayload(o *models.Order) map[string]any {
	return map[string]any{
		"order_id":       o.ID,
		"user_id":        o.UserID,
		"total":          o.Total,
		"status":         o.Status,
		"payment_method": o.PaymentMethod,
		"payment_id":     o.PaymentID,
	}
}
