// Package notify turns order transitions into in-app notifications, order
// events and customer emails. Every step is best-effort.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/VladKvetkin/gofood/internal/entities"
	"github.com/VladKvetkin/gofood/internal/events"
	"github.com/VladKvetkin/gofood/internal/mailer"
	"github.com/VladKvetkin/gofood/internal/metrics"
	"github.com/VladKvetkin/gofood/internal/services/converter"
)

type Store interface {
	CreateNotification(context.Context, entities.Notification) (string, error)
	GetUser(context.Context, string) (entities.User, error)
	EnqueueEmail(context.Context, entities.Email) (string, error)
}

const defaultPublishTimeout = 2 * time.Second

type Dispatcher struct {
	store          Store
	publisher      events.Publisher
	publishTimeout time.Duration
	now            func() time.Time
}

func NewDispatcher(store Store, publisher events.Publisher) *Dispatcher {
	return &Dispatcher{
		store:          store,
		publisher:      publisher,
		publishTimeout: defaultPublishTimeout,
		now:            time.Now,
	}
}

// Notify persists exactly one notification row.
func (d *Dispatcher) Notify(ctx context.Context, notification entities.Notification) error {
	if _, err := d.store.CreateNotification(ctx, notification); err != nil {
		return fmt.Errorf("cannot create notification: %w", err)
	}

	return nil
}

// OrderStatusChanged fans a transition out to the customer notification feed,
// the order event stream and the email outbox. Failures are logged and dropped.
func (d *Dispatcher) OrderStatusChanged(ctx context.Context, order entities.Order) {
	if order.HasCustomer() {
		notification, err := orderNotification(*order.CustomerID, order)
		if err == nil {
			err = d.Notify(ctx, notification)
		}

		if err != nil {
			d.fail("notification", order, err)
		}
	}

	if err := d.publish(ctx, order); err != nil {
		d.fail("event", order, err)
	}

	if order.HasCustomer() {
		if err := d.enqueueEmail(ctx, *order.CustomerID, order); err != nil {
			d.fail("email", order, err)
		}
	}
}

// publish bounds how long a transition waits on the event stream.
func (d *Dispatcher) publish(ctx context.Context, order entities.Order) error {
	ctx, cancel := context.WithTimeout(ctx, d.publishTimeout)
	defer cancel()

	return d.publisher.Publish(ctx, orderEvent(order, d.now()))
}

func (d *Dispatcher) enqueueEmail(ctx context.Context, customerID string, order entities.Order) error {
	customer, err := d.store.GetUser(ctx, customerID)
	if err != nil {
		return fmt.Errorf("cannot get customer: %w", err)
	}

	if customer.Email == "" {
		return nil
	}

	template := mailer.TemplateOrderStatus
	if order.Status == entities.OrderStatusPending {
		template = mailer.TemplateOrderPlaced
	}

	email, err := mailer.Render(template, customer.Language, mailer.Data{
		CustomerName: customer.Login,
		OrderNumber:  order.Number,
		Status:       order.Status,
		Total:        fmt.Sprintf("%.2f", converter.FormatAmount(order.TotalAmount)),
	})
	if err != nil {
		return err
	}

	if _, err := d.store.EnqueueEmail(ctx, entities.Email{
		Recipient: customer.Email,
		Subject:   email.Subject,
		HTMLBody:  email.HTML,
		TextBody:  email.Text,
	}); err != nil {
		return fmt.Errorf("cannot enqueue email: %w", err)
	}

	return nil
}

func (d *Dispatcher) fail(step string, order entities.Order, err error) {
	metrics.NotificationFailuresTotal.WithLabelValues(step).Inc()

	zap.L().Error(
		"error dispatch order notification",
		zap.String("step", step),
		zap.String("orderID", order.ID),
		zap.String("status", order.Status),
		zap.Error(err),
	)
}

var statusMessages = map[string]struct {
	title  string
	format string
}{
	entities.OrderStatusPending:   {"Order placed", "Your order #%s has been placed and is pending confirmation."},
	entities.OrderStatusPreparing: {"Order is being prepared", "The restaurant is now preparing your order #%s."},
	entities.OrderStatusAssigned:  {"Driver assigned", "A driver has been assigned to your order #%s."},
	entities.OrderStatusInTransit: {"Order picked up", "Your order #%s has been picked up and is now in transit."},
	entities.OrderStatusDelivered: {"Order delivered", "Your order #%s has been delivered. Enjoy your meal!"},
	entities.OrderStatusCancelled: {"Order cancelled", "Your order #%s has been cancelled."},
}

func orderNotification(customerID string, order entities.Order) (entities.Notification, error) {
	data, err := json.Marshal(entities.NotificationData{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		Status:      order.Status,
	})
	if err != nil {
		return entities.Notification{}, err
	}

	notificationType := entities.NotificationTypeOrderStatus
	if order.Status == entities.OrderStatusPending {
		notificationType = entities.NotificationTypeOrderPlaced
	}

	title := "Order update"
	message := fmt.Sprintf("Your order #%s is now %s.", order.Number, order.Status)

	if m, ok := statusMessages[order.Status]; ok {
		title = m.title
		message = fmt.Sprintf(m.format, order.Number)
	}

	return entities.Notification{
		UserID:  customerID,
		Type:    notificationType,
		Title:   title,
		Message: message,
		Data:    data,
	}, nil
}

func orderEvent(order entities.Order, occurredAt time.Time) events.OrderStatusEvent {
	event := events.OrderStatusEvent{
		OrderID:      order.ID,
		OrderNumber:  order.Number,
		Status:       order.Status,
		RestaurantID: order.RestaurantID,
		OccurredAt:   occurredAt,
	}

	if order.CustomerID != nil {
		event.CustomerID = *order.CustomerID
	}

	if order.DriverID != nil {
		event.DriverID = *order.DriverID
	}

	return event
}
