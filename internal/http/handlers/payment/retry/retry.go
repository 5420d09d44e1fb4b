// Package retry реализует HTTP-обработчик повторной записи на курс
// для подтверждения оплаты в статусе pending или failed (только admin).
package retry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-enrollment/internal/http/response"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/errs"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/sl"
	"github.com/magabrotheeeer/course-enrollment/internal/services/payment"
)

// Service описывает повтор подтверждения.
type Service interface {
	Retry(ctx context.Context, sessionID string) (*payment.ConfirmResult, error)
}

// Handler обрабатывает повтор подтверждения.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Повтор подтверждения оплаты
// @Tags Payment
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "ID сессии провайдера"
// @Success 200 {object} response.Response{data=payment.ConfirmResult}
// @Failure 401 {object} response.ErrorResponse "Оплата не подтверждена"
// @Failure 403 {object} response.ErrorResponse "Требуется роль admin"
// @Failure 404 {object} response.ErrorResponse "Подтверждение не найдено"
// @Failure 409 {object} response.ErrorResponse "Подтверждение уже завершено"
// @Router /admin/payments/confirmations/{sessionID}/retry [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.retry"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		log.Error("session id is empty")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("session id is required"))
		return
	}

	res, err := h.service.Retry(r.Context(), sessionID)
	if err != nil {
		log.Error("failed to retry confirmation", sl.Err(err))
		w.WriteHeader(response.StatusFromError(err))
		if errors.Is(err, errs.ErrNotFound) {
			render.JSON(w, r, response.Error("confirmation not found"))
			return
		}
		render.JSON(w, r, response.Error(response.MessageFromError(err)))
		return
	}

	log.Info("confirmation retried", slog.String("session_id", sessionID))
	render.JSON(w, r, response.StatusOKWithData(res))
}
