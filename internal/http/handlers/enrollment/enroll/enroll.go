// Package enroll реализует HTTP-обработчик прямой записи на курс.
//
// Идентичность берётся из JWT, курс и сумма оплаты из тела запроса.
// Недостаточная оплата возвращается как ответ с enrolled=false, а не как ошибка.
package enroll

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/course-enrollment/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-enrollment/internal/http/response"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/sl"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

// Request курс и сумма оплаты в минимальных единицах валюты.
type Request struct {
	CourseID int64 `json:"courseId" validate:"required,gt=0"`
	Payment  int64 `json:"payment" validate:"required,gt=0"`
}

// Service описывает запись в журнал.
type Service interface {
	Enroll(ctx context.Context, req models.EnrollRequest, actor models.Actor) (*models.EnrollAck, error)
}

// Handler обрабатывает запись на курс.
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
// @Summary Запись на курс
// @Description Записывает текущего студента на курс. Роль должна быть student.
// @Tags Enrollment
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Курс и оплата"
// @Success 200 {object} response.Response{data=models.EnrollAck}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Не авторизован"
// @Failure 403 {object} response.ErrorResponse "Только студенты могут записываться"
// @Failure 404 {object} response.ErrorResponse "Курс или студент не найден"
// @Failure 409 {object} response.ErrorResponse "Повторная запись или нет мест"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /enroll [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.enrollment.enroll"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username, okUser := r.Context().Value(middlewarectx.User).(string)
	role, okRole := r.Context().Value(middlewarectx.Role).(string)
	if !okUser || !okRole || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

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

	ack, err := h.service.Enroll(r.Context(),
		models.EnrollRequest{CourseID: req.CourseID, Payment: req.Payment},
		models.Actor{Username: username, Role: role},
	)
	if err != nil {
		log.Error("failed to enroll", sl.Err(err))
		w.WriteHeader(response.StatusFromError(err))
		render.JSON(w, r, response.Error(response.MessageFromError(err)))
		return
	}

	log.Info("enrollment processed", slog.Bool("enrolled", ack.Enrolled))
	render.JSON(w, r, response.StatusOKWithData(ack))
}
