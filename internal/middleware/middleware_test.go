package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VladKvetkin/gofood/internal/auth"
	"github.com/VladKvetkin/gofood/internal/services/jwttoken"
)

func TestDecompressBodyReader(t *testing.T) {
	var received string

	handler := DecompressBodyReader(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		received = string(body)
	}))

	t.Run("gzip body", func(t *testing.T) {
		var buf bytes.Buffer
		writer := gzip.NewWriter(&buf)
		_, err := writer.Write([]byte(`{"pickupCode":"4821"}`))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/", &buf)
		req.Header.Set("Content-Encoding", "gzip")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, `{"pickupCode":"4821"}`, received)
	})

	t.Run("plain body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("plain"))
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, "plain", received)
	})

	t.Run("broken gzip", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("definitely not gzip"))
		req.Header.Set("Content-Encoding", "gzip")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuth(t *testing.T) {
	tokens := jwttoken.NewManager("secret", time.Hour)

	token, err := tokens.Generate(jwttoken.Claims{UserID: "u1", Role: "customer"})
	require.NoError(t, err)

	var (
		identity auth.Identity
		authErr  error
	)

	handler := Auth(auth.NewGuard(tokens))(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		identity, authErr = auth.FromContext(req.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NoError(t, authErr)
	assert.Equal(t, "u1", identity.UserID)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, auth.ErrAuthRequired, authErr)
	assert.Equal(t, http.StatusOK, rr.Code)
}
