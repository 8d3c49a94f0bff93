package entities

import (
	"encoding/json"
	"time"
)

const (
	NotificationTypeOrderStatus = "order_status"
	NotificationTypeOrderPlaced = "order_placed"
)

type Notification struct {
	ID        string          `db:"id"`
	UserID    string          `db:"user_id"`
	Type      string          `db:"type"`
	Title     string          `db:"title"`
	Message   string          `db:"message"`
	Data      json.RawMessage `db:"data"`
	CreatedAt time.Time       `db:"created_at"`
}

type NotificationData struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
}
