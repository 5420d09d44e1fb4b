package enroll

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/course-enrollment/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/errs"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
	"github.com/magabrotheeeer/course-enrollment/internal/services/enrollment"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Enroll(ctx context.Context, req models.EnrollRequest, actor models.Actor) (*models.EnrollAck, error) {
	args := m.Called(ctx, req, actor)
	ack, _ := args.Get(0).(*models.EnrollAck)
	return ack, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestEnrollHandler(t *testing.T) {
	student := models.Actor{Username: "alice", Role: models.RoleStudent}
	body := `{"courseId":3,"payment":9900}`
	req3 := models.EnrollRequest{CourseID: 3, Payment: 9900}

	tests := []struct {
		name         string
		actor        *models.Actor
		body         string
		setupMock    func(m *ServiceMock)
		wantStatus   int
		wantError    string
		wantEnrolled bool
		wantMessage  string
	}{
		{
			name:  "enrolled",
			actor: &student,
			body:  body,
			setupMock: func(m *ServiceMock) {
				m.On("Enroll", mock.Anything, req3, student).
					Return(&models.EnrollAck{Message: enrollment.MessageEnrolled, Enrolled: true}, nil).Once()
			},
			wantStatus:   http.StatusOK,
			wantEnrolled: true,
			wantMessage:  enrollment.MessageEnrolled,
		},
		{
			name:  "insufficient payment is a soft failure",
			actor: &student,
			body:  `{"courseId":3,"payment":100}`,
			setupMock: func(m *ServiceMock) {
				m.On("Enroll", mock.Anything, models.EnrollRequest{CourseID: 3, Payment: 100}, student).
					Return(&models.EnrollAck{Message: enrollment.MessageFailed}, nil).Once()
			},
			wantStatus:  http.StatusOK,
			wantMessage: enrollment.MessageFailed,
		},
		{
			name:  "admin forbidden",
			actor: &models.Actor{Username: "root", Role: models.RoleAdmin},
			body:  body,
			setupMock: func(m *ServiceMock) {
				m.On("Enroll", mock.Anything, req3, models.Actor{Username: "root", Role: models.RoleAdmin}).
					Return(nil, fmt.Errorf("enrollment.Enroll: %w", enrollment.ErrNotStudent)).Once()
			},
			wantStatus: http.StatusForbidden,
			wantError:  "only students can enroll",
		},
		{
			name:  "course not found",
			actor: &student,
			body:  body,
			setupMock: func(m *ServiceMock) {
				m.On("Enroll", mock.Anything, req3, student).
					Return(nil, fmt.Errorf("enrollment.Enroll: %w", enrollment.ErrCourseNotFound)).Once()
			},
			wantStatus: http.StatusNotFound,
			wantError:  "course not found",
		},
		{
			name:  "course full",
			actor: &student,
			body:  body,
			setupMock: func(m *ServiceMock) {
				m.On("Enroll", mock.Anything, req3, student).
					Return(nil, fmt.Errorf("enrollment.Enroll: storage.CreateEnrollment: %w: course capacity reached", errs.ErrConflict)).Once()
			},
			wantStatus: http.StatusConflict,
			wantError:  "course capacity reached",
		},
		{
			name:       "missing payment",
			actor:      &student,
			body:       `{"courseId":3}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "field Payment is a required field",
		},
		{
			name:       "no identity",
			body:       body,
			wantStatus: http.StatusUnauthorized,
			wantError:  "unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.setupMock != nil {
				tt.setupMock(svc)
			}

			req := httptest.NewRequest(http.MethodPost, "/enroll", bytes.NewBufferString(tt.body))
			if tt.actor != nil {
				ctx := context.WithValue(req.Context(), middlewarectx.User, tt.actor.Username)
				ctx = context.WithValue(ctx, middlewarectx.Role, tt.actor.Role)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				data := got["data"].(map[string]any)
				assert.Equal(t, tt.wantMessage, data["message"])
				assert.Equal(t, tt.wantEnrolled, data["enrolled"])
			}
			svc.AssertExpectations(t)
		})
	}
}
