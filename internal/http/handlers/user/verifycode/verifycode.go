// Package verifycode реализует HTTP-обработчик проверки кода подтверждения.
// Принятый код погашается и повторно не принимается.
package verifycode

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

// Request почта и код из письма.
type Request struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,numeric,len=6"`
}

// Service описывает проверку кода.
type Service interface {
	Redeem(ctx context.Context, email, code string) (bool, error)
}

// Handler обрабатывает проверку кода.
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
// @Summary Проверка кода подтверждения
// @Tags User
// @Accept  json
// @Produce  json
// @Param request body Request true "Почта и код"
// @Success 200 {object} response.Response "Код принят"
// @Failure 400 {object} response.ErrorResponse "Код неверен или истёк"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /user/verify-code [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.verifycode"

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

	ok, err := h.service.Redeem(r.Context(), req.Email, req.Code)
	if err != nil {
		log.Error("failed to redeem verification code", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not verify code"))
		return
	}
	if !ok {
		log.Info("verification code rejected")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid or expired verification code"))
		return
	}

	log.Info("verification code accepted")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message":  "Code verified",
		"verified": true,
	}))
}
