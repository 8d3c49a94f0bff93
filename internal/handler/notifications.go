package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/VladKvetkin/gofood/internal/auth"
	"github.com/VladKvetkin/gofood/internal/models"
)

func (h *Handler) GetNotifications(res http.ResponseWriter, req *http.Request) {
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

	notifications, err := h.storage.GetUserNotifications(req.Context(), caller.UserID, limit)
	if err != nil {
		zap.L().Error("error get user notifications from database", zap.Error(err))

		writeError(res, http.StatusInternalServerError, msgUnexpected)
		return
	}

	if len(notifications) == 0 {
		res.WriteHeader(http.StatusNoContent)
		return
	}

	responseNotifications := make(models.GetNotificationsResponse, 0, len(notifications))
	for _, notification := range notifications {
		responseNotifications = append(responseNotifications, models.NotificationResponse{
			ID:        notification.ID,
			Type:      notification.Type,
			Title:     notification.Title,
			Message:   notification.Message,
			Data:      notification.Data,
			CreatedAt: notification.CreatedAt.Format(time.RFC3339),
		})
	}

	writeJSON(res, http.StatusOK, responseNotifications)
}
