package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/VladKvetkin/gofood/internal/auth"
	"github.com/VladKvetkin/gofood/internal/entities"
	"github.com/VladKvetkin/gofood/internal/models"
	"github.com/VladKvetkin/gofood/internal/services/validation"
	"github.com/VladKvetkin/gofood/internal/storage"
)

// CreateAccount lets operators provision accounts that cannot sign up on their
// own. Only a super admin may create admins.
func (h *Handler) CreateAccount(res http.ResponseWriter, req *http.Request) {
	caller, err := auth.FromContext(req.Context())
	if err != nil {
		writeFailure(res, err)
		return
	}

	if !entities.IsOperator(caller.Role) {
		writeError(res, http.StatusForbidden, "Only administrators can create accounts")
		return
	}

	var requestModel models.CreateAccountRequest

	if err := decodeJSON(req, &requestModel); err != nil {
		zap.L().Info("error decode create account request", zap.Error(err))

		writeError(res, http.StatusBadRequest, "Invalid request body")
		return
	}

	requestModel.Login = strings.TrimSpace(requestModel.Login)
	requestModel.RestaurantID = strings.TrimSpace(requestModel.RestaurantID)

	if err := validation.Struct(requestModel); err != nil {
		zap.L().Info("error validate create account request", zap.Error(err))

		writeError(res, http.StatusBadRequest, "Invalid account data")
		return
	}

	if requestModel.Role == entities.RoleAdmin && caller.Role != entities.RoleSuperAdmin {
		writeError(res, http.StatusForbidden, "Only super administrators can create administrators")
		return
	}

	user, err := newUser(
		requestModel.Login,
		requestModel.Password,
		requestModel.Email,
		requestModel.Language,
		requestModel.Role,
		requestModel.RestaurantID,
	)
	if err != nil {
		zap.L().Error("error build user", zap.Error(err))

		writeError(res, http.StatusInternalServerError, msgUnexpected)
		return
	}

	user, ok := h.createUser(req.Context(), res, user)
	if !ok {
		return
	}

	zap.L().Info(
		"account created",
		zap.String("createdBy", caller.UserID),
		zap.String("userID", user.ID),
		zap.String("role", user.Role),
	)

	writeJSON(res, http.StatusCreated, models.AccountResponse{
		ID:           user.ID,
		Login:        user.Login,
		Role:         user.Role,
		DriverID:     user.DriverID,
		RestaurantID: user.RestaurantID,
	})
}

// SeedSuperAdmin creates the bootstrap super admin unless the login is taken.
func SeedSuperAdmin(ctx context.Context, store storage.Storage, login, password string) error {
	if login == "" || password == "" {
		return nil
	}

	user, err := newUser(login, password, "", "", entities.RoleSuperAdmin, "")
	if err != nil {
		return err
	}

	if _, err := store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil
		}

		return fmt.Errorf("cannot create super admin: %w", err)
	}

	zap.L().Info("super admin account created", zap.String("login", login))

	return nil
}
