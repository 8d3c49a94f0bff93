package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/VladKvetkin/gofood/internal/auth"
	"github.com/VladKvetkin/gofood/internal/entities"
	"github.com/VladKvetkin/gofood/internal/models"
	"github.com/VladKvetkin/gofood/internal/services/validation"
)

type transitionFunc func(ctx context.Context, caller auth.Identity, orderID string) (entities.Order, error)

func (h *Handler) StartPreparing(res http.ResponseWriter, req *http.Request) {
	h.transition(res, req, h.lifecycle.StartPreparing, "Order is being prepared")
}

func (h *Handler) ConfirmDelivery(res http.ResponseWriter, req *http.Request) {
	h.transition(res, req, h.lifecycle.ConfirmDelivery, "Delivery confirmed successfully")
}

func (h *Handler) CancelOrder(res http.ResponseWriter, req *http.Request) {
	h.transition(res, req, h.lifecycle.CancelOrder, "Order cancelled")
}

func (h *Handler) AssignDriver(res http.ResponseWriter, req *http.Request) {
	var requestModel models.AssignDriverRequest

	if err := decodeJSON(req, &requestModel); err != nil {
		zap.L().Info("error decode assign driver request", zap.Error(err))

		writeError(res, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validation.Struct(requestModel); err != nil {
		writeError(res, http.StatusBadRequest, "Driver id is required")
		return
	}

	h.transition(res, req, func(ctx context.Context, caller auth.Identity, orderID string) (entities.Order, error) {
		return h.lifecycle.AssignDriver(ctx, caller, orderID, requestModel.DriverID)
	}, "Driver assigned")
}

func (h *Handler) transition(res http.ResponseWriter, req *http.Request, apply transitionFunc, message string) {
	caller, err := auth.FromContext(req.Context())
	if err != nil {
		writeFailure(res, err)
		return
	}

	order, err := apply(req.Context(), caller, chi.URLParam(req, "id"))
	if err != nil {
		writeFailure(res, err)
		return
	}

	writeJSON(res, http.StatusOK, models.TransitionResponse{
		Success: true,
		Message: message,
		Order:   orderResponse(order, caller),
	})
}
