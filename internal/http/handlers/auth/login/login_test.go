package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/course-enrollment/internal/models"
	"github.com/magabrotheeeer/course-enrollment/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(ctx context.Context, loginID, password string) (*auth.LoginResult, error) {
	args := m.Called(ctx, loginID, password)
	res, _ := args.Get(0).(*auth.LoginResult)
	return res, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		mockResp       *auth.LoginResult
		mockErr        error
		wantStatusCode int
		wantStatus     string
		wantError      string
		wantToken      string
	}{
		{
			name:        "valid login",
			requestBody: Request{Username: "alice", Password: "secret"},
			mockResp: &auth.LoginResult{
				Token:   "tok",
				User:    models.Summary{ID: 1, Name: "Alice Doe", Email: "alice@example.com", Role: "student"},
				Message: "Login successful, welcome student",
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
			wantToken:      "tok",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid request body",
		},
		{
			name:           "validation error - missing password",
			requestBody:    Request{Username: "alice"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
			wantError:      "field Password is a required field",
		},
		{
			name:           "invalid credentials",
			requestBody:    Request{Username: "alice", Password: "wrong"},
			mockErr:        fmt.Errorf("auth.Login: %w", auth.ErrInvalidCredentials),
			wantStatusCode: http.StatusUnauthorized,
			wantStatus:     "Error",
			wantError:      "invalid username or password",
		},
		{
			name:           "storage failure",
			requestBody:    Request{Username: "alice", Password: "secret"},
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantStatus:     "Error",
			wantError:      "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(AuthServiceMock)
			if tt.mockResp != nil || tt.mockErr != nil {
				body := tt.requestBody.(Request)
				svc.On("Login", mock.Anything, body.Username, body.Password).Return(tt.mockResp, tt.mockErr).Once()
			}
			handler := New(newNoopLogger(), svc)

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(v)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			}
			if tt.wantToken != "" {
				data, ok := got["data"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, tt.wantToken, data["access_token"])
				assert.Equal(t, "Login successful, welcome student", data["message"])
				user := data["user"].(map[string]any)
				assert.Equal(t, "Alice Doe", user["name"])
			}
			svc.AssertExpectations(t)
		})
	}
}
