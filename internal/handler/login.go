package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/VladKvetkin/gofood/internal/auth"
	"github.com/VladKvetkin/gofood/internal/entities"
	"github.com/VladKvetkin/gofood/internal/models"
	"github.com/VladKvetkin/gofood/internal/services/jwttoken"
	"github.com/VladKvetkin/gofood/internal/services/validation"
	"github.com/VladKvetkin/gofood/internal/storage"
)

const msgBadCredentials = "Invalid login or password"

func (h *Handler) Login(res http.ResponseWriter, req *http.Request) {
	var requestModel models.LoginRequest

	if err := decodeJSON(req, &requestModel); err != nil {
		zap.L().Info("error decode login request", zap.Error(err))

		writeError(res, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validation.Struct(requestModel); err != nil {
		writeError(res, http.StatusBadRequest, "Login and password are required")
		return
	}

	user, err := h.storage.GetUserByLogin(req.Context(), requestModel.Login)
	if err != nil {
		if errors.Is(err, storage.ErrNoRows) {
			zap.L().Info("error login not found", zap.String("login", requestModel.Login))

			writeError(res, http.StatusUnauthorized, msgBadCredentials)
			return
		}

		zap.L().Error("error get user", zap.Error(err))

		writeError(res, http.StatusInternalServerError, msgUnexpected)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(requestModel.Password)); err != nil {
		zap.L().Info("error password mismatch", zap.String("login", requestModel.Login))

		writeError(res, http.StatusUnauthorized, msgBadCredentials)
		return
	}

	h.generateTokenAndSetCookie(res, user)
}

func (h *Handler) generateTokenAndSetCookie(res http.ResponseWriter, user entities.User) {
	claims := jwttoken.Claims{
		UserID: user.ID,
		Role:   user.Role,
	}

	if user.DriverID != nil {
		claims.DriverID = *user.DriverID
	}

	if user.RestaurantID != nil {
		claims.RestaurantID = *user.RestaurantID
	}

	accessToken, err := h.tokens.Generate(claims)
	if err != nil {
		zap.L().Error("error generate token", zap.Error(err))

		writeError(res, http.StatusInternalServerError, msgUnexpected)
		return
	}

	http.SetCookie(res, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
	})

	writeJSON(res, http.StatusOK, models.TokenResponse{Token: accessToken})
}
