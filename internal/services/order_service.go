package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"proshop/internal/errs"
	"proshop/internal/metrics"
	"proshop/internal/models"
	"proshop/internal/payment"
	"proshop/internal/repositories"

	"go.uber.org/zap"
)

// Routing keys of the events published by OrderService.
const (
	EventOrderCreated   = "order.created"
	EventOrderPaid      = "order.paid"
	EventOrderDelivered = "order.delivered"
)

// EventPublisher delivers order events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// PaymentVerifier confirms a payment with the gateway that took it.
type PaymentVerifier interface {
	Verify(ctx context.Context, transactionID string) (*payment.Verification, error)
}

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID string `json:"product"`
	Qty       int    `json:"qty"`
}

// OrderInput is the customer's part of a new order. Prices are never taken from the client.
type OrderInput struct {
	OrderItems      []OrderItemInput       `json:"orderItems"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
}

// PaymentInput is the payment snapshot sent back by the checkout page.
type PaymentInput struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time"`
	Payer      struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
}

// OrderEvent is the message body published for every order event.
type OrderEvent struct {
	OrderID    string    `json:"orderId"`
	UserID     string    `json:"userId"`
	TotalPrice float64   `json:"totalPrice"`
	IsPaid     bool      `json:"isPaid"`
	Delivered  bool      `json:"isDelivered"`
	OccurredAt time.Time `json:"occurredAt"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	publisher   EventPublisher
	verifier    PaymentVerifier
	log         *zap.Logger
}

// NewOrderService creates a new OrderService. publisher and verifier may be nil:
// events are then skipped and payments are accepted as reported by the client.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	userRepo repositories.UserRepository,
	publisher EventPublisher,
	verifier PaymentVerifier,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		verifier:    verifier,
		log:         logger,
	}
}

// CreateOrder places an order for user. Item names, images and prices are read from the
// product records and the money fields are derived from them.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, in OrderInput) (*models.Order, error) {
	if len(in.OrderItems) == 0 {
		return nil, errs.BadRequest("No order items")
	}

	items := make([]models.OrderItem, 0, len(in.OrderItems))
	for _, it := range in.OrderItems {
		if !models.IsValidID(it.ProductID) {
			return nil, errs.NotFound("Product not found")
		}
		product, err := s.productRepo.FindByID(ctx, it.ProductID)
		if err != nil {
			return nil, translate(err, "Product")
		}
		if it.Qty > product.CountInStock {
			return nil, errs.BadRequest("Insufficient stock for " + product.Name)
		}
		items = append(items, models.OrderItem{
			Name:      product.Name,
			Qty:       it.Qty,
			Image:     product.Image,
			Price:     product.Price,
			ProductID: product.ID,
		})
	}

	order := &models.Order{
		UserID:          userID,
		OrderItems:      items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
	}
	order.ApplyPrices()

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, translate(err, "Order")
	}
	s.publish(ctx, EventOrderCreated, order)
	return order, nil
}

// GetMyOrders returns the orders placed by userID, newest first.
func (s *OrderService) GetMyOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orderRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, translate(err, "Order")
	}
	return orders, nil
}

// ListOrders returns every order, newest first.
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, translate(err, "Order")
	}
	return orders, nil
}

// GetOrder returns an order with its customer's name and email. Only the owner and
// admins may read it.
func (s *OrderService) GetOrder(ctx context.Context, id string, viewer *models.User) (*models.Order, error) {
	order, err := s.findVisible(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	customer, err := s.userRepo.FindByID(ctx, order.UserID)
	switch {
	case err == nil:
		order.Customer = &models.Customer{ID: customer.ID, Name: customer.Name, Email: customer.Email}
	case errors.Is(err, repositories.ErrNotFound):
		// the customer account was deleted; the order stays readable
	default:
		return nil, translate(err, "User")
	}
	return order, nil
}

// PayOrder marks an order as paid. A transaction id can pay for one order only, and when
// a verifier is configured the gateway must confirm the payment for the order's total.
func (s *OrderService) PayOrder(ctx context.Context, id string, viewer *models.User, in PaymentInput) (*models.Order, error) {
	order, err := s.findVisible(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	if order.IsPaid {
		return nil, errs.BadRequest("Order already paid")
	}
	if in.ID == "" {
		return nil, errs.BadRequest("Payment id is required")
	}

	used, err := s.orderRepo.ExistsByTransactionID(ctx, in.ID)
	if err != nil {
		return nil, translate(err, "Order")
	}
	if used {
		return nil, errs.BadRequest("Transaction has been used before")
	}

	if s.verifier != nil {
		v, err := s.verifier.Verify(ctx, in.ID)
		if payment.IsRejected(err) {
			return nil, &errs.Error{Status: http.StatusBadRequest, Message: "Payment not verified", Err: err}
		}
		if err != nil {
			return nil, errs.Internal(err)
		}
		if !v.Verified {
			return nil, errs.BadRequest("Payment not verified")
		}
		if math.Abs(v.Amount-order.TotalPrice) >= 0.005 {
			return nil, errs.BadRequest("Incorrect amount paid")
		}
	}

	order.MarkPaid(models.PaymentResult{
		TransactionID: in.ID,
		Status:        in.Status,
		UpdateTime:    in.UpdateTime,
		EmailAddress:  in.Payer.EmailAddress,
	}, time.Now())
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, translate(err, "Order")
	}
	s.publish(ctx, EventOrderPaid, order)
	return order, nil
}

// DeliverOrder marks an order as delivered.
func (s *OrderService) DeliverOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "Order")
	}
	order.MarkDelivered(time.Now())
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, translate(err, "Order")
	}
	s.publish(ctx, EventOrderDelivered, order)
	return order, nil
}

func (s *OrderService) findVisible(ctx context.Context, id string, viewer *models.User) (*models.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "Order")
	}
	if viewer == nil || (!viewer.IsAdmin() && !order.OwnedBy(viewer.ID)) {
		return nil, errs.Forbidden("Not authorized to access this order")
	}
	return order, nil
}

// publish sends an order event. Failures are logged and never fail the request.
func (s *OrderService) publish(ctx context.Context, routingKey string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(OrderEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		IsPaid:     order.IsPaid,
		Delivered:  order.IsDelivered,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn("failed to marshal order event", zap.String("order_id", order.ID), zap.Error(err))
		return
	}
	err = s.publisher.Publish(ctx, routingKey, body)
	metrics.OrderEvents.WithLabelValues(routingKey, metrics.Outcome(err)).Inc()
	if err != nil {
		s.log.Warn("failed to publish order event",
			zap.String("routing_key", routingKey),
			zap.String("order_id", order.ID),
			zap.Error(err))
	}
}
