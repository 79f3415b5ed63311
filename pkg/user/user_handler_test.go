package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_CreateUser(t *testing.T) {
	service, _ := setupService()
	handler := NewHandler(service)

	t.Run("should create user", func(t *testing.T) {
		body, _ := json.Marshal(UserDTO{Username: "ana", DisplayName: "Ana"})
		req := httptest.NewRequest(http.MethodPost, "/api/user", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.CreateUser(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		var dto UserDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.Equal(t, "ana", dto.Username)
		assert.NotEmpty(t, dto.Uid)
	})

	t.Run("should return 400 when display name is missing", func(t *testing.T) {
		body, _ := json.Marshal(UserDTO{Username: "bia"})
		req := httptest.NewRequest(http.MethodPost, "/api/user", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.CreateUser(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Display name is required")
	})

	t.Run("should return 409 for taken username", func(t *testing.T) {
		body, _ := json.Marshal(UserDTO{Username: "ana", DisplayName: "Ana 2"})
		req := httptest.NewRequest(http.MethodPost, "/api/user", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.CreateUser(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHandler_CurrentUser(t *testing.T) {
	service, _ := setupService()
	handler := NewHandler(service)
	created, err := service.CreateUser(context.Background(), User{Username: "leo", DisplayName: "Leo"})
	require.NoError(t, err)

	t.Run("should return 403 without user", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.CurrentUser(w, httptest.NewRequest(http.MethodGet, "/api/user/current", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("should return current user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/user/current", nil)
		w := httptest.NewRecorder()

		handler.CurrentUser(w, req.WithContext(WithUser(req.Context(), created)))

		require.Equal(t, http.StatusOK, w.Code)
		var dto UserDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.Equal(t, created.Uid, dto.Uid)
		assert.Equal(t, "BRL", dto.Currency)
	})
}
