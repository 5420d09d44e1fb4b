package search

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Search(ctx context.Context, title string) ([]*models.Course, error) {
	args := m.Called(ctx, title)
	res, _ := args.Get(0).([]*models.Course)
	return res, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestSearchByPath(t *testing.T) {
	mockService := new(MockService)
	mockService.On("Search", mock.Anything, "golang").
		Return([]*models.Course{{ID: 1, Title: "Intro to GoLang"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/course/search/golang", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("title", "golang")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	New(newNoopLogger(), mockService).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Intro to GoLang"`)
	mockService.AssertExpectations(t)
}

func TestSearchByBody(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "найдено",
			body: `{"title":"go"}`,
			setupMock: func(m *MockService) {
				m.On("Search", mock.Anything, "go").Return([]*models.Course{{ID: 1, Title: "Go"}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"message":"Course found."`,
		},
		{
			name:           "пустое название",
			body:           `{"title":""}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Title is a required field`,
		},
		{
			name: "ошибка хранилища",
			body: `{"title":"go"}`,
			setupMock: func(m *MockService) {
				m.On("Search", mock.Anything, "go").Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not search courses"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodPost, "/course/search", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			NewBody(newNoopLogger(), mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
