package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/VladKvetkin/gofood/internal/auth"
	"github.com/VladKvetkin/gofood/internal/models"
	"github.com/VladKvetkin/gofood/internal/services/validation"
)

const msgPickupCodeRequired = "Pickup code is required and must be a string"

// ConfirmPickup validates the body before looking at the caller, so malformed
// requests are rejected without touching auth or storage.
func (h *Handler) ConfirmPickup(res http.ResponseWriter, req *http.Request) {
	var requestModel models.ConfirmPickupRequest

	if err := decodeJSON(req, &requestModel); err != nil {
		zap.L().Info("error decode confirm pickup request", zap.Error(err))

		writeError(res, http.StatusBadRequest, msgPickupCodeRequired)
		return
	}

	requestModel.PickupCode = strings.TrimSpace(requestModel.PickupCode)

	if err := validation.Struct(requestModel); err != nil {
		writeError(res, http.StatusBadRequest, msgPickupCodeRequired)
		return
	}

	caller, err := auth.FromContext(req.Context())
	if err != nil {
		writeFailure(res, err)
		return
	}

	order, err := h.lifecycle.ConfirmPickup(req.Context(), caller, chi.URLParam(req, "id"), requestModel.PickupCode)
	if err != nil {
		writeFailure(res, err)
		return
	}

	writeJSON(res, http.StatusOK, models.ConfirmPickupResponse{
		Success: true,
		Message: "Pickup confirmed successfully",
		Order: models.PickupOrder{
			ID:                order.ID,
			Number:            order.Number,
			Status:            order.Status,
			PickupConfirmedAt: formatTime(order.PickupConfirmedAt),
		},
	})
}
