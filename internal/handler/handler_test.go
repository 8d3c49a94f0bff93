package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/VladKvetkin/gofood/internal/auth"
	"github.com/VladKvetkin/gofood/internal/entities"
	"github.com/VladKvetkin/gofood/internal/events"
	"github.com/VladKvetkin/gofood/internal/lifecycle"
	"github.com/VladKvetkin/gofood/internal/middleware"
	"github.com/VladKvetkin/gofood/internal/notify"
	"github.com/VladKvetkin/gofood/internal/services/jwttoken"
	"github.com/VladKvetkin/gofood/internal/storage"
	"github.com/VladKvetkin/gofood/internal/storage/mocks"
)

type testEnv struct {
	store  *mocks.MockStorage
	tokens *jwttoken.Manager
	router http.Handler
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockStorage(ctrl)
	tokens := jwttoken.NewManager("test-secret", time.Hour)

	h := NewHandler(store, lifecycle.NewService(store, notify.NewDispatcher(store, events.NopPublisher{})), tokens)

	router := chi.NewRouter()
	router.Use(middleware.Auth(auth.NewGuard(tokens)))

	router.Post("/api/user/register", h.Register)
	router.Post("/api/user/login", h.Login)
	router.Post("/api/admin/accounts", h.CreateAccount)
	router.Post("/api/orders", h.CreateOrder)
	router.Get("/api/orders", h.GetOrders)
	router.Get("/api/orders/{id}", h.GetOrder)
	router.Post("/api/orders/{id}/prepare", h.StartPreparing)
	router.Post("/api/orders/{id}/assign", h.AssignDriver)
	router.Post("/api/orders/{id}/confirm-pickup", h.ConfirmPickup)
	router.Post("/api/orders/{id}/confirm-delivery", h.ConfirmDelivery)
	router.Post("/api/orders/{id}/cancel", h.CancelOrder)
	router.Get("/api/notifications", h.GetNotifications)

	return testEnv{store: store, tokens: tokens, router: router}
}

func (e testEnv) token(t *testing.T, claims jwttoken.Claims) string {
	t.Helper()

	token, err := e.tokens.Generate(claims)
	require.NoError(t, err)

	return token
}

func (e testEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	return rec
}

// expectNotification accepts the best-effort fan-out of one transition.
func (e testEnv) expectNotification() *gomock.Call {
	e.store.EXPECT().GetUser(gomock.Any(), gomock.Any()).Return(entities.User{}, nil)
	return e.store.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return("n1", nil)
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body.Error
}

func strPtr(s string) *string { return &s }

var (
	driverD1Claims   = jwttoken.Claims{UserID: "u-d1", Role: entities.RoleDriver, DriverID: "d1"}
	driverD2Claims   = jwttoken.Claims{UserID: "u-d2", Role: entities.RoleDriver, DriverID: "d2"}
	customerC1Claims = jwttoken.Claims{UserID: "c1", Role: entities.RoleCustomer}
	restaurantClaims = jwttoken.Claims{UserID: "u-r1", Role: entities.RoleRestaurant, RestaurantID: "r1"}
)

func orderO1(status string) entities.Order {
	createdAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	return entities.Order{
		ID:           "o1",
		Number:       "123456789015",
		Status:       status,
		CustomerID:   strPtr("c1"),
		DriverID:     strPtr("d1"),
		RestaurantID: "r1",
		PickupCode:   "4821",
		TotalAmount:  2599,
		Version:      1,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func TestHandler_ConfirmPickup(t *testing.T) {
	const path = "/api/orders/o1/confirm-pickup"

	t.Run("assigned driver with the right code", func(t *testing.T) {
		env := newTestEnv(t)
		requestTime := time.Now().UTC().Truncate(time.Second)

		env.store.EXPECT().GetOrder(gomock.Any(), "o1").Return(orderO1(entities.OrderStatusAssigned), nil)
		env.store.EXPECT().UpdateOrderStatus(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, tr entities.OrderTransition) (entities.Order, error) {
				order := orderO1(tr.Status)
				order.PickupConfirmedAt = tr.PickupConfirmedAt
				order.Version = 2
				return order, nil
			})
		env.store.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, n entities.Notification) (string, error) {
				assert.Equal(t, "c1", n.UserID)
				assert.Equal(t, entities.NotificationTypeOrderStatus, n.Type)
				return "n1", nil
			})
		env.store.EXPECT().GetUser(gomock.Any(), "c1").Return(entities.User{ID: "c1"}, nil)

		rec := env.do(http.MethodPost, path, `{"pickupCode":"4821"}`, env.token(t, driverD1Claims))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
			Order   struct {
				ID                string  `json:"id"`
				OrderNumber       string  `json:"orderNumber"`
				Status            string  `json:"status"`
				PickupConfirmedAt *string `json:"pickupConfirmedAt"`
			} `json:"order"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

		assert.True(t, body.Success)
		assert.Equal(t, "Pickup confirmed successfully", body.Message)
		assert.Equal(t, "o1", body.Order.ID)
		assert.Equal(t, "123456789015", body.Order.OrderNumber)
		assert.Equal(t, entities.OrderStatusInTransit, body.Order.Status)

		require.NotNil(t, body.Order.PickupConfirmedAt)
		confirmedAt, err := time.Parse(time.RFC3339, *body.Order.PickupConfirmedAt)
		require.NoError(t, err)
		assert.False(t, confirmedAt.Before(requestTime))
	})

	t.Run("notification failure does not fail the request", func(t *testing.T) {
		env := newTestEnv(t)

		env.store.EXPECT().GetOrder(gomock.Any(), "o1").Return(orderO1(entities.OrderStatusAssigned), nil)
		env.store.EXPECT().UpdateOrderStatus(gomock.Any(), gomock.Any()).Return(orderO1(entities.OrderStatusInTransit), nil)
		env.store.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return("", errors.New("connection reset"))
		env.store.EXPECT().GetUser(gomock.Any(), "c1").Return(entities.User{}, errors.New("connection reset"))

		rec := env.do(http.MethodPost, path, `{"pickupCode":"4821"}`, env.token(t, driverD1Claims))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid body is rejected before auth and storage", func(t *testing.T) {
		env := newTestEnv(t)

		for _, body := range []string{"", `{}`, `{"pickupCode":""}`, `{"pickupCode":"   "}`, `{"pickupCode":4821}`, `not json`} {
			rec := env.do(http.MethodPost, path, body, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
			assert.NotEmpty(t, errorMessage(t, rec))
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(http.MethodPost, path, `{"pickupCode":"4821"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Authentication required", errorMessage(t, rec))

		rec = env.do(http.MethodPost, path, `{"pickupCode":"4821"}`, "garbage")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid or expired token", errorMessage(t, rec))
	})

	t.Run("customer cannot confirm", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(http.MethodPost, path, `{"pickupCode":"4821"}`, env.token(t, customerC1Claims))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Only drivers can confirm pickup", errorMessage(t, rec))
	})

	t.Run("order not found", func(t *testing.T) {
		env := newTestEnv(t)

		env.store.EXPECT().GetOrder(gomock.Any(), "o1").Return(entities.Order{}, storage.ErrNoRows)

		rec := env.do(http.MethodPost, path, `{"pickupCode":"4821"}`, env.token(t, driverD1Claims))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Order not found", errorMessage(t, rec))
	})

	t.Run("different driver", func(t *testing.T) {
		env := newTestEnv(t)

		env.store.EXPECT().GetOrder(gomock.Any(), "o1").Return(orderO1(entities.OrderStatusAssigned), nil)

		rec := env.do(http.MethodPost, path, `{"pickupCode":"4821"}`, env.token(t, driverD2Claims))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("delivered order", func(t *testing.T) {
		env := newTestEnv(t)

		env.store.EXPECT().GetOrder(gomock.Any(), "o1").Return(orderO1(entities.OrderStatusDelivered), nil)

		rec := env.do(http.MethodPost, path, `{"pickupCode":"4821"}`, env.token(t, driverD1Claims))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, errorMessage(t, rec), "delivered")
	})

	t.Run("wrong code", func(t *testing.T) {
		env := newTestEnv(t)

		env.store.EXPECT().GetOrder(gomock.Any(), "o1").Return(orderO1(entities.OrderStatusAssigned), nil)

		rec := env.do(http.MethodPost, path, `{"pickupCode":"0000"}`, env.token(t, driverD1Claims))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid pickup code", errorMessage(t, rec))
	})

	t.Run("concurrent modification", func(t *testing.T) {
		env := newTestEnv(t)

		env.store.EXPECT().GetOrder(gomock.Any(), "o1").Return(orderO1(entities.OrderStatusAssigned), nil)
		env.store.EXPECT().UpdateOrderStatus(gomock.Any(), gomock.Any()).Return(entities.Order{}, storage.ErrConflict)

		rec := env.do(http.MethodPost, path, `{"pickupCode":"4821"}`, env.token(t, driverD1Claims))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("update failure", func(t *testing.T) {
		env := newTestEnv(t)

		env.store.EXPECT().GetOrder(gomock.Any(), "o1").Return(orderO1(entities.OrderStatusAssigned), nil)
		env.store.EXPECT().UpdateOrderStatus(gomock.Any(), gomock.Any()).Return(entities.Order{}, errors.New("connection reset"))

		rec := env.do(http.MethodPost, path, `{"pickupCode":"4821"}`, env.token(t, driverD1Claims))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to confirm pickup", errorMessage(t, rec))
	})

	t.Run("lookup failure", func(t *testing.T) {
		env := newTestEnv(t)

		env.store.EXPECT().GetOrder(gomock.Any(), "o1").Return(entities.Order{}, errors.New("connection reset"))

		rec := env.do(http.MethodPost, path, `{"pickupCode":"4821"}`, env.token(t, driverD1Claims))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "An unexpected error occurred", errorMessage(t, rec))
	})
}

func TestHandler_Transitions(t *testing.T) {
	t.Run("restaurant starts preparing", func(t *testing.T) {
		env := newTestEnv(t)

		pending := orderO1(entities.OrderStatusPending)
		pending.DriverID = nil

		env.store.EXPECT().GetOrder(gomock.Any(), "o1").Return(pending, nil)
		env.store.EXPECT().UpdateOrderStatus(gomock.Any(), gomock.Any()).Return(orderO1(entities.OrderStatusPreparing), nil)
		env.expectNotification()

		rec := env.do(http.MethodPost, "/api/orders/o1/prepare", "", env.token(t, restaurantClaims))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Success bool `json:"success"`
			Order   struct {
				Status     string `json:"status"`
				PickupCode string `json:"pickupCode"`
			} `json:"order"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, entities.OrderStatusPreparing, body.Order.Status)
		assert.Equal(t, "4821", body.Order.PickupCode)
	})

	t.Run("assign requires a driver id", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(http.MethodPost, "/api/orders/o1/assign", `{}`, env.token(t, restaurantClaims))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("restaurant assigns a driver", func(t *testing.T) {
		env := newTestEnv(t)

		env.store.EXPECT().GetOrder(gomock.Any(), "o1").Return(orderO1(entities.OrderStatusPreparing), nil)
		env.store.EXPECT().UpdateOrderStatus(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, tr entities.OrderTransition) (entities.Order, error) {
				assert.Equal(t, "d2", *tr.DriverID)
				return orderO1(entities.OrderStatusAssigned), nil
			})
		env.expectNotification()

		rec := env.do(http.MethodPost, "/api/orders/o1/assign", `{"driverId":"d2"}`, env.token(t, restaurantClaims))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("driver confirms delivery", func(t *testing.T) {
		env := newTestEnv(t)

		pickedUp := time.Now().Add(-10 * time.Minute)
		inTransit := orderO1(entities.OrderStatusInTransit)
		inTransit.PickupConfirmedAt = &pickedUp

		env.store.EXPECT().GetOrder(gomock.Any(), "o1").Return(inTransit, nil)
		env.store.EXPECT().UpdateOrderStatus(gomock.Any(), gomock.Any()).Return(orderO1(entities.OrderStatusDelivered), nil)
		env.expectNotification()

		rec := env.do(http.MethodPost, "/api/orders/o1/confirm-delivery", "", env.token(t, driverD1Claims))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("customer cannot cancel an assigned order", func(t *testing.T) {
		env := newTestEnv(t)

		env.store.EXPECT().GetOrder(gomock.Any(), "o1").Return(orderO1(entities.OrderStatusAssigned), nil)

		rec := env.do(http.MethodPost, "/api/orders/o1/cancel", "", env.token(t, customerC1Claims))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, errorMessage(t, rec), "assigned")
	})
}

func TestHandler_Orders(t *testing.T) {
	t.Run("customer places an order", func(t *testing.T) {
		env := newTestEnv(t)

		env.store.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, order entities.Order) (entities.Order, error) {
				assert.Equal(t, 2599, order.TotalAmount)
				assert.Equal(t, "r1", order.RestaurantID)

				created := orderO1(entities.OrderStatusPending)
				created.DriverID = nil
				return created, nil
			})
		env.expectNotification()

		rec := env.do(http.MethodPost, "/api/orders", `{"restaurantId":"r1","totalAmount":25.99}`, env.token(t, customerC1Claims))
		require.Equal(t, http.StatusCreated, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 25.99, body["totalAmount"])
		assert.NotContains(t, body, "pickupCode")
	})

	t.Run("invalid order body", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(http.MethodPost, "/api/orders", `{"restaurantId":"r1","totalAmount":0}`, env.token(t, customerC1Claims))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("total amount above the limit", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(http.MethodPost, "/api/orders", `{"restaurantId":"r1","totalAmount":21474836.48}`, env.token(t, customerC1Claims))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("driver lists assigned orders", func(t *testing.T) {
		env := newTestEnv(t)

		env.store.EXPECT().GetOrders(gomock.Any(), entities.OrderFilter{
			DriverID: "d1",
			Status:   entities.OrderStatusAssigned,
			Limit:    defaultListLimit,
		}).Return([]entities.Order{orderO1(entities.OrderStatusAssigned)}, nil)

		rec := env.do(http.MethodGet, "/api/orders?status=assigned", "", env.token(t, driverD1Claims))
		require.Equal(t, http.StatusOK, rec.Code)

		var body []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body, 1)
		assert.Equal(t, "123456789015", body[0]["orderNumber"])
		assert.NotContains(t, body[0], "pickupCode")
	})

	t.Run("empty list", func(t *testing.T) {
		env := newTestEnv(t)

		env.store.EXPECT().GetOrders(gomock.Any(), entities.OrderFilter{CustomerID: "c1", Limit: maxListLimit}).Return(nil, nil)

		rec := env.do(http.MethodGet, "/api/orders?limit=1000", "", env.token(t, customerC1Claims))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("unknown status filter", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(http.MethodGet, "/api/orders?status=lost", "", env.token(t, customerC1Claims))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("order of another driver is hidden", func(t *testing.T) {
		env := newTestEnv(t)

		env.store.EXPECT().GetOrder(gomock.Any(), "o1").Return(orderO1(entities.OrderStatusAssigned), nil)

		rec := env.do(http.MethodGet, "/api/orders/o1", "", env.token(t, driverD2Claims))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("lists require authentication", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(http.MethodGet, "/api/orders", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandler_GetNotifications(t *testing.T) {
	t.Run("feed", func(t *testing.T) {
		env := newTestEnv(t)

		env.store.EXPECT().GetUserNotifications(gomock.Any(), "c1", 10).Return([]entities.Notification{{
			ID:        "n1",
			UserID:    "c1",
			Type:      entities.NotificationTypeOrderStatus,
			Title:     "Order picked up",
			Message:   "Your order #123456789015 has been picked up and is now in transit.",
			Data:      json.RawMessage(`{"orderId":"o1","orderNumber":"123456789015","status":"in_transit"}`),
			CreatedAt: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		}}, nil)

		rec := env.do(http.MethodGet, "/api/notifications?limit=10", "", env.token(t, customerC1Claims))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[{
			"id":"n1",
			"type":"order_status",
			"title":"Order picked up",
			"message":"Your order #123456789015 has been picked up and is now in transit.",
			"data":{"orderId":"o1","orderNumber":"123456789015","status":"in_transit"},
			"createdAt":"2025-01-01T12:00:00Z"
		}]`, rec.Body.String())
	})

	t.Run("empty feed", func(t *testing.T) {
		env := newTestEnv(t)

		env.store.EXPECT().GetUserNotifications(gomock.Any(), "c1", defaultListLimit).Return(nil, nil)

		rec := env.do(http.MethodGet, "/api/notifications", "", env.token(t, customerC1Claims))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("invalid limit", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(http.MethodGet, "/api/notifications?limit=-1", "", env.token(t, customerC1Claims))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
