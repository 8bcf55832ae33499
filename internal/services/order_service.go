package services

import (
	"fmt"
	"log"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/rabbitmq"
)

// OrderService handles order queries and the post-checkout lifecycle
// transitions: cancellation releases reservations, fulfillment converts
// them into permanent stock decrements.
type OrderService struct {
	orderRepo repositories.OrderRepository
	mqClient  *rabbitmq.Client
}

// NewOrderService creates a new OrderService. mqClient may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, mqClient *rabbitmq.Client) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		mqClient:  mqClient,
	}
}

// GetOrder retrieves a single order by its ID.
func (s *OrderService) GetOrder(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// ListOrdersForUser retrieves a user's orders.
func (s *OrderService) ListOrdersForUser(userID string) ([]models.Order, error) {
	if userID == "" {
		return nil, fmt.Errorf("user identifier is required")
	}
	return s.orderRepo.ListByUser(userID)
}

// CancelOrder moves a pending or paid order to CANCELLED and releases
// its inventory reservations.
func (s *OrderService) CancelOrder(id string) (*models.Order, error) {
	order, err := s.orderRepo.Cancel(id)
	if err != nil {
		return nil, err
	}
	s.publish(rabbitmq.KeyOrderCancelled, order)
	return order, nil
}

// FulfillOrder moves a paid order to FULFILLED; reservations become
// permanent on-hand decrements.
func (s *OrderService) FulfillOrder(id string) (*models.Order, error) {
	order, err := s.orderRepo.Fulfill(id)
	if err != nil {
		return nil, err
	}
	s.publish(rabbitmq.KeyOrderFulfilled, order)
	return order, nil
}

func (s *OrderService) publish(routingKey string, order *models.Order) {
	if s.mqClient == nil {
		return
	}
	event := map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	}
	if err := s.mqClient.PublishJSON(routingKey, event); err != nil {
		log.Printf("Warning: failed to publish %s for order %s: %v", routingKey, order.ID, err)
	}
}
