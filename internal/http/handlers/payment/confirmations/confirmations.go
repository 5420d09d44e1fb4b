// Package confirmations реализует HTTP-обработчик просмотра подтверждений оплаты (только admin).
package confirmations

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-enrollment/internal/http/response"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/sl"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

// Service описывает чтение подтверждений.
type Service interface {
	ListConfirmations(ctx context.Context, status string) ([]*models.PaymentConfirmation, error)
}

// Handler возвращает подтверждения, опционально по статусу.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подтверждения оплат
// @Tags Payment
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, enrolled или failed"
// @Success 200 {object} response.Response{data=[]models.PaymentConfirmation}
// @Failure 400 {object} response.ErrorResponse "Неизвестный статус"
// @Failure 403 {object} response.ErrorResponse "Требуется роль admin"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /admin/payments/confirmations [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.confirmations"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	status := r.URL.Query().Get("status")
	res, err := h.service.ListConfirmations(r.Context(), status)
	if err != nil {
		log.Error("failed to list confirmations", sl.Err(err))
		w.WriteHeader(response.StatusFromError(err))
		render.JSON(w, r, response.Error(response.MessageFromError(err)))
		return
	}

	log.Info("confirmations listed", slog.String("status", status), slog.Int("count", len(res)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"confirmations": res,
	}))
}
