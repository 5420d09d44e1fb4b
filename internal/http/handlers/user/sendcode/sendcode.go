// Package sendcode реализует HTTP-обработчик отправки кода подтверждения на почту.
package sendcode

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
)

// Request адрес, на который отправляется код.
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// Service описывает выдачу кода.
type Service interface {
	Issue(ctx context.Context, email string) error
}

// Handler обрабатывает запрос кода подтверждения.
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
// @Summary Отправка кода подтверждения
// @Description Генерирует шестизначный код и отправляет его на указанную почту.
// @Tags User
// @Accept  json
// @Produce  json
// @Param request body Request true "Почта"
// @Success 200 {object} response.Response "Код отправлен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 500 {object} response.ErrorResponse "Не удалось отправить код"
// @Router /user/send-verification-code [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.sendcode"

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

	if err := h.service.Issue(r.Context(), req.Email); err != nil {
		log.Error("failed to issue verification code", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not send verification code"))
		return
	}

	log.Info("verification code sent")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Verification code sent to " + req.Email,
	}))
}
