// Package profile реализует HTTP-обработчик частичного обновления профиля
// текущего пользователя. Переданные поля меняются, остальные остаются прежними.
package profile

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/course-enrollment/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-enrollment/internal/http/response"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/sl"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
	"github.com/magabrotheeeer/course-enrollment/internal/services/user"
)

// DateLayout формат даты рождения.
const DateLayout = "2006-01-02"

// Request изменяемые поля профиля.
type Request struct {
	FirstName   *string `json:"firstName,omitempty" validate:"omitempty,min=1"`
	LastName    *string `json:"lastName,omitempty" validate:"omitempty,min=1"`
	Gender      *string `json:"gender,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=6"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
}

// Service описывает обновление профиля.
type Service interface {
	UpdateProfile(ctx context.Context, username string, in user.ProfileInput) (*models.User, error)
}

// Handler обрабатывает обновление профиля.
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
// @Summary Обновление профиля
// @Tags User
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.User} "Профиль обновлён"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Не авторизован"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 409 {object} response.ErrorResponse "Email уже занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /user/profile/update [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.profile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
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

	in := user.ProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Gender:      req.Gender,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Password:    req.Password,
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse(DateLayout, *req.DateOfBirth)
		if err != nil {
			log.Error("failed to parse date of birth", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("dateOfBirth must be in format YYYY-MM-DD"))
			return
		}
		in.DateOfBirth = &dob
	}

	u, err := h.service.UpdateProfile(r.Context(), username, in)
	if err != nil {
		log.Error("failed to update profile", sl.Err(err))
		w.WriteHeader(response.StatusFromError(err))
		render.JSON(w, r, response.Error(response.MessageFromError(err)))
		return
	}

	log.Info("profile updated", slog.String("username", username))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Profile updated",
		"user":    u,
	}))
}
