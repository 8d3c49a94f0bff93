//go:generate mockgen -source=service.go -destination=mocks/service.go -package=mocks

// Package lifecycle moves orders through their statuses. Each operation checks
// its preconditions in a fixed order and applies at most one conditional update.
package lifecycle

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/VladKvetkin/gofood/internal/auth"
	"github.com/VladKvetkin/gofood/internal/entities"
	"github.com/VladKvetkin/gofood/internal/metrics"
	"github.com/VladKvetkin/gofood/internal/services/validation"
	"github.com/VladKvetkin/gofood/internal/storage"
)

const createOrderAttempts = 3

type OrderStore interface {
	GetOrder(context.Context, string) (entities.Order, error)
	CreateOrder(context.Context, entities.Order) (entities.Order, error)
	UpdateOrderStatus(context.Context, entities.OrderTransition) (entities.Order, error)
}

type Notifier interface {
	OrderStatusChanged(context.Context, entities.Order)
}

type Service struct {
	store    OrderStore
	notifier Notifier
	now      func() time.Time
}

func NewService(store OrderStore, notifier Notifier) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ConfirmPickup moves an assigned order to in_transit once its driver presents
// the pickup code. Confirming an order that is already in transit is accepted
// and moves pickup_confirmed_at forward.
func (s *Service) ConfirmPickup(ctx context.Context, caller auth.Identity, orderID string, pickupCode string) (entities.Order, error) {
	code := strings.TrimSpace(pickupCode)
	if code == "" || orderID == "" {
		return entities.Order{}, newError(CodeInvalidInput, "Pickup code is required")
	}

	if caller.Role != entities.RoleDriver {
		return entities.Order{}, newError(CodeForbiddenRole, "Only drivers can confirm pickup")
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}

	if !order.AssignedTo(caller.DriverID) {
		return entities.Order{}, newError(CodeForbiddenNotAssigned, "You are not assigned to this order")
	}

	if order.Status != entities.OrderStatusAssigned && order.Status != entities.OrderStatusInTransit {
		return entities.Order{}, newError(
			CodeInvalidState,
			fmt.Sprintf("Cannot confirm pickup for order with status: %s", order.Status),
		)
	}

	if subtle.ConstantTimeCompare([]byte(code), []byte(order.PickupCode)) != 1 {
		return entities.Order{}, newError(CodeInvalidCode, "Invalid pickup code")
	}

	now := s.now()

	return s.apply(ctx, entities.OrderTransition{
		OrderID:           order.ID,
		Version:           order.Version,
		Status:            entities.OrderStatusInTransit,
		PickupConfirmedAt: &now,
		UpdatedAt:         now,
	}, "Failed to confirm pickup")
}

// CreateOrder places a pending order for the calling customer. The order
// number is regenerated if it collides with an existing one.
func (s *Service) CreateOrder(ctx context.Context, caller auth.Identity, restaurantID string, totalAmount int) (entities.Order, error) {
	if strings.TrimSpace(restaurantID) == "" || totalAmount <= 0 {
		return entities.Order{}, newError(CodeInvalidInput, "Restaurant and a positive total amount are required")
	}

	if caller.Role != entities.RoleCustomer {
		return entities.Order{}, newError(CodeForbiddenRole, "Only customers can place orders")
	}

	customerID := caller.UserID

	for attempt := 1; ; attempt++ {
		pickupCode, err := validation.GeneratePickupCode()
		if err != nil {
			return entities.Order{}, internalError(msgUnexpected, err)
		}

		order, err := s.store.CreateOrder(ctx, entities.Order{
			Number:       validation.GenerateOrderNumber(),
			Status:       entities.OrderStatusPending,
			CustomerID:   &customerID,
			RestaurantID: strings.TrimSpace(restaurantID),
			PickupCode:   pickupCode,
			TotalAmount:  totalAmount,
		})
		if err != nil {
			if errors.Is(err, storage.ErrConflict) && attempt < createOrderAttempts {
				zap.L().Warn("order number collision, retrying", zap.Int("attempt", attempt))
				continue
			}

			return entities.Order{}, internalError("Failed to create order", err)
		}

		s.transitioned(ctx, order)

		return order, nil
	}
}

// StartPreparing is called by the restaurant when it starts working on a
// pending order.
func (s *Service) StartPreparing(ctx context.Context, caller auth.Identity, orderID string) (entities.Order, error) {
	if err := requireManager(caller); err != nil {
		return entities.Order{}, err
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}

	if !canManage(caller, order) {
		return entities.Order{}, newError(CodeForbiddenNotAssigned, "Order belongs to another restaurant")
	}

	if order.Status != entities.OrderStatusPending {
		return entities.Order{}, newError(
			CodeInvalidState,
			fmt.Sprintf("Cannot start preparing order with status: %s", order.Status),
		)
	}

	return s.apply(ctx, entities.OrderTransition{
		OrderID:   order.ID,
		Version:   order.Version,
		Status:    entities.OrderStatusPreparing,
		UpdatedAt: s.now(),
	}, "Failed to update order")
}

func (s *Service) AssignDriver(ctx context.Context, caller auth.Identity, orderID string, driverID string) (entities.Order, error) {
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return entities.Order{}, newError(CodeInvalidInput, "Driver id is required")
	}

	if err := requireManager(caller); err != nil {
		return entities.Order{}, err
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}

	if !canManage(caller, order) {
		return entities.Order{}, newError(CodeForbiddenNotAssigned, "Order belongs to another restaurant")
	}

	if order.Status != entities.OrderStatusPending && order.Status != entities.OrderStatusPreparing {
		return entities.Order{}, newError(
			CodeInvalidState,
			fmt.Sprintf("Cannot assign driver to order with status: %s", order.Status),
		)
	}

	return s.apply(ctx, entities.OrderTransition{
		OrderID:   order.ID,
		Version:   order.Version,
		Status:    entities.OrderStatusAssigned,
		DriverID:  &driverID,
		UpdatedAt: s.now(),
	}, "Failed to assign driver")
}

// ConfirmDelivery closes an order the assigned driver has picked up.
func (s *Service) ConfirmDelivery(ctx context.Context, caller auth.Identity, orderID string) (entities.Order, error) {
	if caller.Role != entities.RoleDriver {
		return entities.Order{}, newError(CodeForbiddenRole, "Only drivers can confirm delivery")
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}

	if !order.AssignedTo(caller.DriverID) {
		return entities.Order{}, newError(CodeForbiddenNotAssigned, "You are not assigned to this order")
	}

	if order.Status != entities.OrderStatusInTransit || order.PickupConfirmedAt == nil {
		return entities.Order{}, newError(
			CodeInvalidState,
			fmt.Sprintf("Cannot confirm delivery for order with status: %s", order.Status),
		)
	}

	now := s.now()

	return s.apply(ctx, entities.OrderTransition{
		OrderID:     order.ID,
		Version:     order.Version,
		Status:      entities.OrderStatusDelivered,
		DeliveredAt: &now,
		UpdatedAt:   now,
	}, "Failed to confirm delivery")
}

// CancelOrder lets a customer withdraw an order nobody has started on yet.
// Operators may cancel any order that has not been picked up.
func (s *Service) CancelOrder(ctx context.Context, caller auth.Identity, orderID string) (entities.Order, error) {
	if caller.Role != entities.RoleCustomer && !entities.IsOperator(caller.Role) {
		return entities.Order{}, newError(CodeForbiddenRole, "Only customers and administrators can cancel orders")
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}

	cancellable := order.Status == entities.OrderStatusPending

	if caller.Role == entities.RoleCustomer {
		if order.CustomerID == nil || *order.CustomerID != caller.UserID {
			return entities.Order{}, newError(CodeNotFound, msgNotFound)
		}
	} else {
		cancellable = cancellable ||
			order.Status == entities.OrderStatusPreparing ||
			order.Status == entities.OrderStatusAssigned
	}

	if !cancellable {
		return entities.Order{}, newError(
			CodeInvalidState,
			fmt.Sprintf("Cannot cancel order with status: %s", order.Status),
		)
	}

	return s.apply(ctx, entities.OrderTransition{
		OrderID:   order.ID,
		Version:   order.Version,
		Status:    entities.OrderStatusCancelled,
		UpdatedAt: s.now(),
	}, "Failed to cancel order")
}

func (s *Service) getOrder(ctx context.Context, orderID string) (entities.Order, error) {
	if orderID == "" {
		return entities.Order{}, newError(CodeNotFound, msgNotFound)
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrNoRows) {
			return entities.Order{}, newError(CodeNotFound, msgNotFound)
		}

		return entities.Order{}, internalError(msgUnexpected, err)
	}

	return order, nil
}

func (s *Service) apply(ctx context.Context, transition entities.OrderTransition, failMessage string) (entities.Order, error) {
	order, err := s.store.UpdateOrderStatus(ctx, transition)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return entities.Order{}, &Error{Code: CodeConflict, Status: codeStatuses[CodeConflict], Message: msgConflict, Err: err}
		}

		return entities.Order{}, internalError(failMessage, err)
	}

	s.transitioned(ctx, order)

	return order, nil
}

func (s *Service) transitioned(ctx context.Context, order entities.Order) {
	metrics.OrderTransitionsTotal.WithLabelValues(order.Status).Inc()

	zap.L().Info(
		"order status changed",
		zap.String("orderID", order.ID),
		zap.String("status", order.Status),
		zap.Int("version", order.Version),
	)

	s.notifier.OrderStatusChanged(ctx, order)
}

func requireManager(caller auth.Identity) error {
	if caller.Role == entities.RoleRestaurant || entities.IsOperator(caller.Role) {
		return nil
	}

	return newError(CodeForbiddenRole, "Only restaurants and administrators can manage orders")
}

func canManage(caller auth.Identity, order entities.Order) bool {
	if entities.IsOperator(caller.Role) {
		return true
	}

	return caller.RestaurantID != "" && caller.RestaurantID == order.RestaurantID
}
