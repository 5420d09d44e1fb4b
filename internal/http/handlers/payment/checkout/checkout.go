// Package checkout реализует HTTP-обработчик создания hosted checkout сессии для курса.
package checkout

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/course-enrollment/internal/http/response"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/sl"
)

// Request курс и почта плательщика.
type Request struct {
	CourseID  int64  `json:"courseId" validate:"required,gt=0"`
	UserEmail string `json:"userEmail" validate:"omitempty,email"`
}

// Service описывает создание сессии оплаты.
type Service interface {
	Checkout(ctx context.Context, courseID int64, email string) (string, error)
}

// Handler обрабатывает создание сессии оплаты.
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
// @Summary Создание сессии оплаты
// @Description Создает hosted checkout сессию у платёжного провайдера и возвращает URL для перенаправления.
// @Tags Payment
// @Accept  json
// @Produce  json
// @Param request body Request true "Курс и почта"
// @Success 200 {object} response.Response "URL сессии"
// @Failure 400 {object} response.ErrorResponse "Не указана почта"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка провайдера"
// @Router /payment/create-checkout-session [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.checkout"

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

	// Пробельная почта считается отсутствующей и отклоняется сервисом с 400.
	req.UserEmail = strings.TrimSpace(req.UserEmail)

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	url, err := h.service.Checkout(r.Context(), req.CourseID, req.UserEmail)
	if err != nil {
		log.Error("failed to create checkout session", sl.Err(err))
		status := response.StatusFromError(err)
		w.WriteHeader(status)
		if status == http.StatusInternalServerError {
			render.JSON(w, r, response.Error("could not create checkout session"))
			return
		}
		render.JSON(w, r, response.Error(response.MessageFromError(err)))
		return
	}

	log.Info("checkout session created", slog.Int64("course_id", req.CourseID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"url": url,
	}))
}
