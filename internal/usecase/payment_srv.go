package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"course-platform/internal/data/entity"
	"course-platform/internal/data/repository"

	"go.uber.org/zap"
)

// Gateway is the pluggable payment-gateway boundary: how to find the order id
// in a notification, how to check its checksum, and how to build the signed
// payment link. The reconciler itself is gateway-agnostic.
type Gateway interface {
	OrderID(fields map[string]string) (int64, bool)
	VerifySignature(fields map[string]string) bool
	PaymentURL(orderID, cost int64) string
}

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrBadSignature  = errors.New("signature mismatch")
	ErrOrderClosed   = errors.New("order is not payable")
)

type PaymentService interface {
	// HandleNotification applies a gateway result callback to its order and
	// returns the confirmed order id. Gateways retry callbacks, so the call
	// is idempotent: a second valid notification for a paid order acks
	// success without touching paid_at or paid_till.
	HandleNotification(ctx context.Context, fields map[string]string) (int64, error)
}

type paymentService struct {
	orders  repository.OrderRepository
	gateway Gateway
	log     *zap.Logger
	now     func() time.Time
}

func NewPaymentService(orders repository.OrderRepository, gateway Gateway, log *zap.Logger) PaymentService {
	return &paymentService{
		orders:  orders,
		gateway: gateway,
		log:     log,
		now:     time.Now,
	}
}

func (s *paymentService) HandleNotification(ctx context.Context, fields map[string]string) (int64, error) {
	// Full payload goes to the log up front: failed notifications are audited
	// by hand and the gateway gives us nothing else to go on
	s.log.Info("Payment notification received", zap.Any("fields", fields))

	id, ok := s.gateway.OrderID(fields)
	if !ok {
		s.log.Warn("Payment notification without a usable order id", zap.Any("fields", fields))
		return 0, ErrOrderNotFound
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("load order %d: %w", id, err)
	}
	if order == nil {
		s.log.Warn("Payment notification for unknown order", zap.Int64("order_id", id))
		return 0, ErrOrderNotFound
	}

	if !s.gateway.VerifySignature(fields) {
		s.log.Error("Payment notification failed integrity check",
			zap.Int64("order_id", id),
			zap.Any("fields", fields),
		)
		return 0, ErrBadSignature
	}

	if order.Status == entity.OrderStatusPaid {
		// Gateway retry of a confirmed payment
		s.log.Info("Payment notification for already paid order", zap.Int64("order_id", id))
		return id, nil
	}

	if order.Status != entity.OrderStatusPending {
		// Cancelled or failed orders never transition to paid. Refusing the
		// ack makes the gateway flag the payment for manual reconciliation.
		s.log.Error("Payment notification for closed order",
			zap.Int64("order_id", id),
			zap.Int("status", int(order.Status)),
		)
		return 0, ErrOrderClosed
	}

	paidAt := s.now().UTC()
	paidTill := paidAt.AddDate(0, order.Period, 0)

	applied, err := s.orders.MarkPaid(ctx, id, paidAt, paidTill)
	if err != nil {
		return 0, fmt.Errorf("mark order %d paid: %w", id, err)
	}
	if !applied {
		// Concurrent duplicate got the conditional update first; same ack
		s.log.Info("Payment already applied concurrently", zap.Int64("order_id", id))
		return id, nil
	}

	s.log.Info("Order paid",
		zap.Int64("order_id", id),
		zap.Int64("cost", order.Cost),
		zap.Time("paid_till", paidTill),
	)

	return id, nil
}
