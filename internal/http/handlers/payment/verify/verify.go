// Package verify реализует HTTP-обработчик подтверждения оплаты после возврата с hosted checkout.
//
// Любая неудача подтверждения отдаётся клиенту одинаково: 401 и общий текст,
// причина остаётся в логах и в записи подтверждения.
package verify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/course-enrollment/internal/http/response"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/sl"
	"github.com/magabrotheeeer/course-enrollment/internal/services/payment"
)

// MessageFailed ответ клиенту при любой неудаче подтверждения.
const MessageFailed = "Payment verification failed"

// Request сессия провайдера, курс и пользователь.
type Request struct {
	SessionID string `json:"sessionId" validate:"required"`
	CourseID  int64  `json:"courseId" validate:"required,gt=0"`
	UserID    int64  `json:"userId" validate:"required,gt=0"`
}

// Service описывает подтверждение оплаты.
type Service interface {
	Confirm(ctx context.Context, sessionID string, courseID, userID int64) (*payment.ConfirmResult, error)
}

// Handler обрабатывает подтверждение оплаты.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подтверждение оплаты
// @Description Проверяет у провайдера, что сессия оплачена, и записывает пользователя на курс.
// @Tags Payment
// @Accept  json
// @Produce  json
// @Param request body Request true "Сессия, курс и пользователь"
// @Success 200 {object} response.Response{data=payment.ConfirmResult}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Оплата не подтверждена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /payment/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.verify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	res, err := h.service.Confirm(r.Context(), req.SessionID, req.CourseID, req.UserID)
	if err != nil {
		log.Error("payment verification failed", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(MessageFailed))
		return
	}

	log.Info("payment verified", slog.String("session_id", req.SessionID))
	render.JSON(w, r, response.StatusOKWithData(res))
}
