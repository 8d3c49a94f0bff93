package entities

import (
	"time"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusAssigned  = "assigned"
	OrderStatusInTransit = "in_transit"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID                string     `db:"id"`
	Number            string     `db:"order_number"`
	Status            string     `db:"status"`
	CustomerID        *string    `db:"customer_id"`
	DriverID          *string    `db:"driver_id"`
	RestaurantID      string     `db:"restaurant_id"`
	PickupCode        string     `db:"pickup_code"`
	PickupConfirmedAt *time.Time `db:"pickup_confirmed_at"`
	DeliveredAt       *time.Time `db:"delivered_at"`
	TotalAmount       int        `db:"total_amount"`
	Version           int        `db:"version"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

// HasCustomer reports whether the order is linked to a customer account.
func (o Order) HasCustomer() bool {
	return o.CustomerID != nil && *o.CustomerID != ""
}

// AssignedTo reports whether driverID is the driver assigned to the order.
func (o Order) AssignedTo(driverID string) bool {
	return o.DriverID != nil && driverID != "" && *o.DriverID == driverID
}

// OrderTransition is a conditional update of a single order row. It is applied
// only while the stored version still equals Version.
type OrderTransition struct {
	OrderID           string
	Version           int
	Status            string
	DriverID          *string
	PickupConfirmedAt *time.Time
	DeliveredAt       *time.Time
	UpdatedAt         time.Time
}

type OrderFilter struct {
	CustomerID   string
	DriverID     string
	RestaurantID string
	Status       string
	Limit        int
}
