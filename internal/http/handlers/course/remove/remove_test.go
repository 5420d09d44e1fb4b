package remove

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/course-enrollment/internal/lib/errs"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Remove(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestRemoveHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "курс удалён",
			url:  "/course/12",
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, int64(12)).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"message":"Course deleted"`,
		},
		{
			name:           "некорректный id",
			url:            "/course/abc",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode id from url"}`,
		},
		{
			name: "курс не найден",
			url:  "/course/404",
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, int64(404)).Return(fmt.Errorf("course.Remove: %w", errs.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"course not found"}`,
		},
		{
			name: "ошибка сервиса",
			url:  "/course/7",
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, int64(7)).Return(errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not remove course"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodDelete, tt.url, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", strings.TrimPrefix(tt.url, "/course/"))
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			w := httptest.NewRecorder()

			New(newNoopLogger(), mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
