package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/VladKvetkin/gofood/internal/entities"
	"github.com/VladKvetkin/gofood/internal/models"
	"github.com/VladKvetkin/gofood/internal/services/validation"
	"github.com/VladKvetkin/gofood/internal/storage"
)

const defaultLanguage = "en"

func (h *Handler) Register(res http.ResponseWriter, req *http.Request) {
	var requestModel models.RegisterRequest

	if err := decodeJSON(req, &requestModel); err != nil {
		zap.L().Info("error decode register request", zap.Error(err))

		writeError(res, http.StatusBadRequest, "Invalid request body")
		return
	}

	requestModel.Login = strings.TrimSpace(requestModel.Login)

	if err := validation.Struct(requestModel); err != nil {
		zap.L().Info("error validate register request", zap.Error(err))

		writeError(res, http.StatusBadRequest, "Invalid registration data")
		return
	}

	user, err := newUser(requestModel.Login, requestModel.Password, requestModel.Email, requestModel.Language, requestModel.Role, "")
	if err != nil {
		zap.L().Error("error build user", zap.Error(err))

		writeError(res, http.StatusInternalServerError, msgUnexpected)
		return
	}

	user, ok := h.createUser(req.Context(), res, user)
	if !ok {
		return
	}

	h.generateTokenAndSetCookie(res, user)
}

// createUser stores the account and writes the failure response when it cannot.
func (h *Handler) createUser(ctx context.Context, res http.ResponseWriter, user entities.User) (entities.User, bool) {
	userID, err := h.storage.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			zap.L().Info("error login already exists", zap.Error(err))

			writeError(res, http.StatusConflict, "Login already exists")
			return user, false
		}

		zap.L().Error("error create user", zap.Error(err))

		writeError(res, http.StatusInternalServerError, msgUnexpected)
		return user, false
	}

	user.ID = userID

	return user, true
}

func newUser(login, password, email, language, role, restaurantID string) (entities.User, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return entities.User{}, fmt.Errorf("cannot hash password: %w", err)
	}

	user := entities.User{
		Login:    login,
		Password: string(passwordHash),
		Email:    email,
		Language: language,
		Role:     role,
	}

	if user.Language == "" {
		user.Language = defaultLanguage
	}

	switch role {
	case entities.RoleDriver:
		driverID := uuid.NewString()
		user.DriverID = &driverID
	case entities.RoleRestaurant:
		user.RestaurantID = &restaurantID
	}

	return user, nil
}
