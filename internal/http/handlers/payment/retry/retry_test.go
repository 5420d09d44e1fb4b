package retry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/course-enrollment/internal/lib/errs"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
	"github.com/magabrotheeeer/course-enrollment/internal/services/payment"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Retry(ctx context.Context, sessionID string) (*payment.ConfirmResult, error) {
	args := m.Called(ctx, sessionID)
	res, _ := args.Get(0).(*payment.ConfirmResult)
	return res, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestRetryHandler(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "повтор успешен",
			sessionID: "cs_1",
			setupMock: func(m *MockService) {
				m.On("Retry", mock.Anything, "cs_1").Return(&payment.ConfirmResult{
					Success:      true,
					Message:      payment.MessageVerified,
					Confirmation: &models.PaymentConfirmation{SessionID: "cs_1", Status: models.ConfirmationEnrolled},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"enrolled"`,
		},
		{
			name:      "уже подтверждено",
			sessionID: "cs_1",
			setupMock: func(m *MockService) {
				m.On("Retry", mock.Anything, "cs_1").Return(nil, fmt.Errorf("payment.Retry: %w", payment.ErrAlreadyConfirmed))
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"payment already confirmed"`,
		},
		{
			name:      "нет подтверждения",
			sessionID: "cs_x",
			setupMock: func(m *MockService) {
				m.On("Retry", mock.Anything, "cs_x").
					Return(nil, fmt.Errorf("payment.Retry: storage.GetConfirmation: %w", errs.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"confirmation not found"`,
		},
		{
			name:      "провайдер не подтвердил оплату",
			sessionID: "cs_1",
			setupMock: func(m *MockService) {
				m.On("Retry", mock.Anything, "cs_1").
					Return(nil, fmt.Errorf("payment.Retry: %w: session payment status \"unpaid\"", errs.ErrPaymentVerification))
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"payment verification failed"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodPost, "/admin/payments/confirmations/"+tt.sessionID+"/retry", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("sessionID", tt.sessionID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			w := httptest.NewRecorder()

			New(newNoopLogger(), mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
