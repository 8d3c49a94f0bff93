package models

import "encoding/json"

// RegisterRequest is the public sign-up. Restaurant and operator accounts are
// provisioned through CreateAccountRequest.
type RegisterRequest struct {
	Login    string `json:"login" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Email    string `json:"email" validate:"omitempty,email"`
	Language string `json:"language" validate:"omitempty,oneof=en de fr it"`
	Role     string `json:"role" validate:"required,oneof=customer driver"`
}

type CreateAccountRequest struct {
	Login        string `json:"login" validate:"required,min=3,max=64"`
	Password     string `json:"password" validate:"required,min=6,max=72"`
	Email        string `json:"email" validate:"omitempty,email"`
	Language     string `json:"language" validate:"omitempty,oneof=en de fr it"`
	Role         string `json:"role" validate:"required,oneof=customer driver restaurant admin"`
	RestaurantID string `json:"restaurantId" validate:"required_if=Role restaurant"`
}

type AccountResponse struct {
	ID           string  `json:"id"`
	Login        string  `json:"login"`
	Role         string  `json:"role"`
	DriverID     *string `json:"driverId,omitempty"`
	RestaurantID *string `json:"restaurantId,omitempty"`
}

type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type CreateOrderRequest struct {
	RestaurantID string  `json:"restaurantId" validate:"required"`
	TotalAmount  float64 `json:"totalAmount" validate:"gt=0,lte=1000000"`
}

type AssignDriverRequest struct {
	DriverID string `json:"driverId" validate:"required"`
}

type ConfirmPickupRequest struct {
	PickupCode string `json:"pickupCode" validate:"required"`
}

type OrderResponse struct {
	ID                string  `json:"id"`
	Number            string  `json:"orderNumber"`
	Status            string  `json:"status"`
	CustomerID        *string `json:"customerId,omitempty"`
	DriverID          *string `json:"driverId,omitempty"`
	RestaurantID      string  `json:"restaurantId"`
	PickupCode        string  `json:"pickupCode,omitempty"`
	PickupConfirmedAt *string `json:"pickupConfirmedAt"`
	DeliveredAt       *string `json:"deliveredAt,omitempty"`
	TotalAmount       float64 `json:"totalAmount"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

type GetOrdersResponse []OrderResponse

// PickupOrder is the slice of the order returned by pickup confirmation.
type PickupOrder struct {
	ID                string  `json:"id"`
	Number            string  `json:"orderNumber"`
	Status            string  `json:"status"`
	PickupConfirmedAt *string `json:"pickupConfirmedAt"`
}

type ConfirmPickupResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Order   PickupOrder `json:"order"`
}

type TransitionResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Order   OrderResponse `json:"order"`
}

type NotificationResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	CreatedAt string          `json:"createdAt"`
}

type GetNotificationsResponse []NotificationResponse

type ErrorResponse struct {
	Error string `json:"error"`
}
