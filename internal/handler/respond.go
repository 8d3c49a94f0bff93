package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/VladKvetkin/gofood/internal/auth"
	"github.com/VladKvetkin/gofood/internal/lifecycle"
	"github.com/VladKvetkin/gofood/internal/models"
)

const msgUnexpected = "An unexpected error occurred"

func writeJSON(res http.ResponseWriter, status int, body any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)

	jsonEncoder := json.NewEncoder(res)
	if err := jsonEncoder.Encode(body); err != nil {
		zap.L().Info("cannot encode response JSON body", zap.Error(err))
	}
}

func writeError(res http.ResponseWriter, status int, message string) {
	writeJSON(res, status, models.ErrorResponse{Error: message})
}

// writeFailure maps auth and lifecycle errors to their own status and message.
// Anything else is reported as an opaque internal failure.
func writeFailure(res http.ResponseWriter, err error) {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		writeError(res, authErr.StatusCode, authErr.Message)
		return
	}

	var lifecycleErr *lifecycle.Error
	if errors.As(err, &lifecycleErr) {
		if lifecycleErr.Code == lifecycle.CodeInternal {
			zap.L().Error("error apply order transition", zap.Error(err))
		} else {
			zap.L().Info("order transition rejected", zap.Error(err))
		}

		writeError(res, lifecycleErr.Status, lifecycleErr.Message)
		return
	}

	zap.L().Error("unexpected error", zap.Error(err))

	writeError(res, http.StatusInternalServerError, msgUnexpected)
}

func decodeJSON(req *http.Request, model any) error {
	jsonDecoder := json.NewDecoder(req.Body)

	if err := jsonDecoder.Decode(model); err != nil {
		return fmt.Errorf("cannot decode request to json: %w", err)
	}

	return nil
}

func parseLimit(req *http.Request) (int, error) {
	raw := req.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}

	return min(limit, maxListLimit), nil
}
