// Package signup реализует HTTP-обработчик регистрации пользователя.
package signup

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/course-enrollment/internal/http/response"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/errs"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/sl"
	"github.com/magabrotheeeer/course-enrollment/internal/services/user"
)

// DateLayout формат даты рождения.
const DateLayout = "2006-01-02"

// Request данные регистрации.
type Request struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Gender      string `json:"gender,omitempty"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Password    string `json:"password" validate:"required,min=6"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Role        string `json:"role,omitempty" validate:"omitempty,oneof=student admin"`
}

// Service описывает регистрацию пользователя.
type Service interface {
	Signup(ctx context.Context, in user.SignupInput) (int64, error)
}

// Handler обрабатывает регистрацию.
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
// @Summary Регистрация пользователя
// @Description Создает учетную запись. Роль по умолчанию student.
// @Tags User
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные пользователя"
// @Success 201 {object} response.Response "Пользователь создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 409 {object} response.ErrorResponse "Username или email уже заняты"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /user/signup [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.signup"

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

	in := user.SignupInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Gender:      req.Gender,
		PhoneNumber: req.PhoneNumber,
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse(DateLayout, req.DateOfBirth)
		if err != nil {
			log.Error("failed to parse date of birth", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("dateOfBirth must be in format YYYY-MM-DD"))
			return
		}
		in.DateOfBirth = &dob
	}

	id, err := h.service.Signup(r.Context(), in)
	if err != nil {
		log.Error("failed to register user", sl.Err(err))
		if errors.Is(err, errs.ErrConflict) {
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("username or email already exists"))
			return
		}
		w.WriteHeader(response.StatusFromError(err))
		render.JSON(w, r, response.Error(response.MessageFromError(err)))
		return
	}

	log.Info("user registered", slog.Int64("user_id", id))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "User created",
		"id":      id,
	}))
}
