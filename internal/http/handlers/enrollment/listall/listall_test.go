package listall

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ListAll(ctx context.Context) ([]*models.Enrollment, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).([]*models.Enrollment)
	return res, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestListAllHandler(t *testing.T) {
	tests := []struct {
		name       string
		setupMock  func(m *ServiceMock)
		wantStatus int
		wantCount  int
		wantError  string
	}{
		{
			name: "all students",
			setupMock: func(m *ServiceMock) {
				m.On("ListAll", mock.Anything).Return([]*models.Enrollment{
					{ID: 1, StudentID: 1, CourseID: 3},
					{ID: 2, StudentID: 2, CourseID: 3},
					{ID: 3, StudentID: 2, CourseID: 4},
				}, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantCount:  3,
		},
		{
			name: "storage error",
			setupMock: func(m *ServiceMock) {
				m.On("ListAll", mock.Anything).Return(nil, errors.New("db down")).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "could not list enrollments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodGet, "/user/all-enrollments", nil)
			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				rows := got["data"].(map[string]any)["enrollments"].([]any)
				assert.Len(t, rows, tt.wantCount)
			}
			svc.AssertExpectations(t)
		})
	}
}
