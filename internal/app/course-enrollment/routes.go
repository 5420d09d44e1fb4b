// Package courseenrollment собирает HTTP-приложение платформы записи на курсы.
package courseenrollment

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/magabrotheeeer/course-enrollment/docs"
	"github.com/magabrotheeeer/course-enrollment/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/course-enrollment/internal/http/handlers/auth/logout"
	coursecreate "github.com/magabrotheeeer/course-enrollment/internal/http/handlers/course/create"
	courselist "github.com/magabrotheeeer/course-enrollment/internal/http/handlers/course/list"
	courseread "github.com/magabrotheeeer/course-enrollment/internal/http/handlers/course/read"
	courseremove "github.com/magabrotheeeer/course-enrollment/internal/http/handlers/course/remove"
	coursesearch "github.com/magabrotheeeer/course-enrollment/internal/http/handlers/course/search"
	courseupdate "github.com/magabrotheeeer/course-enrollment/internal/http/handlers/course/update"
	"github.com/magabrotheeeer/course-enrollment/internal/http/handlers/enrollment/enroll"
	enrolllist "github.com/magabrotheeeer/course-enrollment/internal/http/handlers/enrollment/list"
	"github.com/magabrotheeeer/course-enrollment/internal/http/handlers/enrollment/listall"
	"github.com/magabrotheeeer/course-enrollment/internal/http/handlers/health"
	"github.com/magabrotheeeer/course-enrollment/internal/http/handlers/payment/checkout"
	"github.com/magabrotheeeer/course-enrollment/internal/http/handlers/payment/confirmations"
	"github.com/magabrotheeeer/course-enrollment/internal/http/handlers/payment/retry"
	"github.com/magabrotheeeer/course-enrollment/internal/http/handlers/payment/verify"
	"github.com/magabrotheeeer/course-enrollment/internal/http/handlers/user/me"
	"github.com/magabrotheeeer/course-enrollment/internal/http/handlers/user/profile"
	"github.com/magabrotheeeer/course-enrollment/internal/http/handlers/user/resetpassword"
	"github.com/magabrotheeeer/course-enrollment/internal/http/handlers/user/sendcode"
	"github.com/magabrotheeeer/course-enrollment/internal/http/handlers/user/signup"
	"github.com/magabrotheeeer/course-enrollment/internal/http/handlers/user/verifycode"
	"github.com/magabrotheeeer/course-enrollment/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-enrollment/internal/metrics"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
	"github.com/magabrotheeeer/course-enrollment/internal/services/auth"
	"github.com/magabrotheeeer/course-enrollment/internal/services/course"
	"github.com/magabrotheeeer/course-enrollment/internal/services/enrollment"
	"github.com/magabrotheeeer/course-enrollment/internal/services/payment"
	"github.com/magabrotheeeer/course-enrollment/internal/services/user"
	"github.com/magabrotheeeer/course-enrollment/internal/services/verification"
	"github.com/magabrotheeeer/course-enrollment/internal/storage"
)

// Services зависимости обработчиков.
type Services struct {
	Auth         *auth.AuthService
	Users        *user.Service
	Verification *verification.Service
	Courses      *course.Service
	Enrollment   *enrollment.Service
	Payment      *payment.Service
	Storage      *storage.Storage
	Metrics      *metrics.Metrics
	CodeLimiter  *middlewarectx.ClientLimiter
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		s.Metrics.Middleware,
	)

	authMW := middlewarectx.JWTMiddleware(s.Auth, logger)
	adminMW := middlewarectx.RequireRole(models.RoleAdmin, logger)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		r.With(authMW).Post("/logout", logout.New(logger, s.Auth).ServeHTTP)
	})

	r.Route("/user", func(r chi.Router) {
		r.Post("/signup", signup.New(logger, s.Users).ServeHTTP)
		r.With(middlewarectx.RateLimitMiddleware(s.CodeLimiter, logger)).
			Post("/send-verification-code", sendcode.New(logger, s.Verification).ServeHTTP)
		r.Post("/verify-code", verifycode.New(logger, s.Verification).ServeHTTP)
		r.Post("/reset-password", resetpassword.New(logger, s.Users).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(authMW)
			r.Get("/profile", me.New(logger, s.Users).ServeHTTP)
			r.Post("/profile/update", profile.New(logger, s.Users).ServeHTTP)
			r.Get("/enrolled-courses", enrolllist.New(logger, s.Enrollment).ServeHTTP)
			r.With(adminMW).Get("/all-enrollments", listall.New(logger, s.Enrollment).ServeHTTP)
		})
	})

	r.Route("/course", func(r chi.Router) {
		r.Get("/", courselist.New(logger, s.Courses).ServeHTTP)
		r.Get("/search/{title}", coursesearch.New(logger, s.Courses).ServeHTTP)
		r.Post("/search", coursesearch.NewBody(logger, s.Courses).ServeHTTP)
		r.Get("/{id}", courseread.New(logger, s.Courses).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(authMW, adminMW)
			r.Post("/", coursecreate.New(logger, s.Courses).ServeHTTP)
			r.Patch("/{id}", courseupdate.New(logger, s.Courses).ServeHTTP)
			r.Delete("/{id}", courseremove.New(logger, s.Courses).ServeHTTP)
		})
	})

	r.Route("/enroll", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/", enroll.New(logger, s.Enrollment).ServeHTTP)
		r.Get("/", enrolllist.New(logger, s.Enrollment).ServeHTTP)
	})

	r.Route("/payment", func(r chi.Router) {
		r.Post("/create-checkout-session", checkout.New(logger, s.Payment).ServeHTTP)
		r.Post("/verify", verify.New(logger, s.Payment).ServeHTTP)
	})

	r.Route("/admin/payments", func(r chi.Router) {
		r.Use(authMW, adminMW)
		r.Get("/confirmations", confirmations.New(logger, s.Payment).ServeHTTP)
		r.Post("/confirmations/{sessionID}/retry", retry.New(logger, s.Payment).ServeHTTP)
	})

	r.Get("/health", health.New(logger, s.Storage).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
