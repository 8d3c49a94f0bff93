package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/VladKvetkin/gofood/internal/auth"
	"github.com/VladKvetkin/gofood/internal/entities"
	"github.com/VladKvetkin/gofood/internal/models"
	"github.com/VladKvetkin/gofood/internal/services/converter"
	"github.com/VladKvetkin/gofood/internal/services/validation"
	"github.com/VladKvetkin/gofood/internal/storage"
)

var knownStatuses = map[string]bool{
	entities.OrderStatusPending:   true,
	entities.OrderStatusPreparing: true,
	entities.OrderStatusAssigned:  true,
	entities.OrderStatusInTransit: true,
	entities.OrderStatusDelivered: true,
	entities.OrderStatusCancelled: true,
}

func (h *Handler) CreateOrder(res http.ResponseWriter, req *http.Request) {
	var requestModel models.CreateOrderRequest

	if err := decodeJSON(req, &requestModel); err != nil {
		zap.L().Info("error decode create order request", zap.Error(err))

		writeError(res, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validation.Struct(requestModel); err != nil {
		writeError(res, http.StatusBadRequest, "Restaurant and a positive total amount are required")
		return
	}

	caller, err := auth.FromContext(req.Context())
	if err != nil {
		writeFailure(res, err)
		return
	}

	order, err := h.lifecycle.CreateOrder(
		req.Context(),
		caller,
		requestModel.RestaurantID,
		converter.ConvertAmount(requestModel.TotalAmount),
	)
	if err != nil {
		writeFailure(res, err)
		return
	}

	writeJSON(res, http.StatusCreated, orderResponse(order, caller))
}

// GetOrders lists the orders the caller takes part in. Operators see all of them.
func (h *Handler) GetOrders(res http.ResponseWriter, req *http.Request) {
	caller, err := auth.FromContext(req.Context())
	if err != nil {
		writeFailure(res, err)
		return
	}

	limit, err := parseLimit(req)
	if err != nil {
		writeError(res, http.StatusBadRequest, "Invalid limit")
		return
	}

	filter := entities.OrderFilter{
		Status: req.URL.Query().Get("status"),
		Limit:  limit,
	}

	if filter.Status != "" && !knownStatuses[filter.Status] {
		writeError(res, http.StatusBadRequest, "Unknown order status")
		return
	}

	switch caller.Role {
	case entities.RoleCustomer:
		filter.CustomerID = caller.UserID
	case entities.RoleDriver:
		filter.DriverID = caller.DriverID
	case entities.RoleRestaurant:
		filter.RestaurantID = caller.RestaurantID
	default:
		if !entities.IsOperator(caller.Role) {
			writeError(res, http.StatusForbidden, "Unknown role")
			return
		}
	}

	orders, err := h.storage.GetOrders(req.Context(), filter)
	if err != nil {
		zap.L().Error("error get orders from database", zap.Error(err))

		writeError(res, http.StatusInternalServerError, msgUnexpected)
		return
	}

	if len(orders) == 0 {
		res.WriteHeader(http.StatusNoContent)
		return
	}

	responseOrders := make(models.GetOrdersResponse, 0, len(orders))
	for _, order := range orders {
		responseOrders = append(responseOrders, orderResponse(order, caller))
	}

	writeJSON(res, http.StatusOK, responseOrders)
}

func (h *Handler) GetOrder(res http.ResponseWriter, req *http.Request) {
	caller, err := auth.FromContext(req.Context())
	if err != nil {
		writeFailure(res, err)
		return
	}

	order, err := h.storage.GetOrder(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNoRows) {
			writeError(res, http.StatusNotFound, "Order not found")
			return
		}

		zap.L().Error("error get order from database", zap.Error(err))

		writeError(res, http.StatusInternalServerError, msgUnexpected)
		return
	}

	if !canView(caller, order) {
		writeError(res, http.StatusNotFound, "Order not found")
		return
	}

	writeJSON(res, http.StatusOK, orderResponse(order, caller))
}

func canView(caller auth.Identity, order entities.Order) bool {
	switch caller.Role {
	case entities.RoleCustomer:
		return order.CustomerID != nil && *order.CustomerID == caller.UserID
	case entities.RoleDriver:
		return order.AssignedTo(caller.DriverID)
	case entities.RoleRestaurant:
		return caller.RestaurantID != "" && order.RestaurantID == caller.RestaurantID
	default:
		return entities.IsOperator(caller.Role)
	}
}

// orderResponse hides the pickup code from everyone except the restaurant
// handing the order over and operators.
func orderResponse(order entities.Order, caller auth.Identity) models.OrderResponse {
	response := models.OrderResponse{
		ID:                order.ID,
		Number:            order.Number,
		Status:            order.Status,
		CustomerID:        order.CustomerID,
		DriverID:          order.DriverID,
		RestaurantID:      order.RestaurantID,
		PickupConfirmedAt: formatTime(order.PickupConfirmedAt),
		DeliveredAt:       formatTime(order.DeliveredAt),
		TotalAmount:       converter.FormatAmount(order.TotalAmount),
		CreatedAt:         order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         order.UpdatedAt.Format(time.RFC3339),
	}

	if caller.Role == entities.RoleRestaurant || entities.IsOperator(caller.Role) {
		response.PickupCode = order.PickupCode
	}

	return response
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}

	formatted := t.Format(time.RFC3339)
	return &formatted
}
