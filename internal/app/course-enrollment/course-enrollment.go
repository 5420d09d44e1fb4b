package courseenrollment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/magabrotheeeer/course-enrollment/internal/cache"
	"github.com/magabrotheeeer/course-enrollment/internal/config"
	"github.com/magabrotheeeer/course-enrollment/internal/denylist"
	"github.com/magabrotheeeer/course-enrollment/internal/events"
	"github.com/magabrotheeeer/course-enrollment/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/jwt"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/mail"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/sl"
	"github.com/magabrotheeeer/course-enrollment/internal/metrics"
	"github.com/magabrotheeeer/course-enrollment/internal/migrations"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
	"github.com/magabrotheeeer/course-enrollment/internal/paymentprovider"
	"github.com/magabrotheeeer/course-enrollment/internal/services/auth"
	"github.com/magabrotheeeer/course-enrollment/internal/services/course"
	"github.com/magabrotheeeer/course-enrollment/internal/services/enrollment"
	"github.com/magabrotheeeer/course-enrollment/internal/services/payment"
	"github.com/magabrotheeeer/course-enrollment/internal/services/user"
	"github.com/magabrotheeeer/course-enrollment/internal/services/verification"
	"github.com/magabrotheeeer/course-enrollment/internal/storage"
)

// App HTTP-сервер и ресурсы, которые нужно закрыть при остановке.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	db      *storage.Storage
	closers []io.Closer
	memory  *denylist.Memory
}

// New подключает хранилища, применяет миграции и собирает сервисы.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.New"

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{logger: logger, db: db}

	store, err := app.denylist(ctx, cfg)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	provider, err := newProvider(cfg.Payment)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	mailer, err := mail.New(cfg.Mail, logger)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var publisher events.Publisher = events.NewLogPublisher(logger)
	if cfg.RabbitMQ.URL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange,
			cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.closers = append(app.closers, amqpPublisher)
		publisher = amqpPublisher
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	verificationService := verification.New(db, mailer, m, cfg.Verification.CodeTTL, logger)
	enrollmentService := enrollment.New(db, publisher, m, enrollment.Config{
		MinPayment: cfg.Enrollment.MinPayment,
		Limits: models.EnrollmentLimits{
			UniquePerStudent: cfg.Enrollment.UniquePerStudent,
			EnforceCapacity:  cfg.Enrollment.EnforceCapacity,
		},
	}, logger)
	paymentService := payment.New(provider, db, enrollmentService, publisher, m, payment.Config{
		Currency:       cfg.Payment.Currency,
		SuccessURL:     cfg.Payment.SuccessURL,
		CancelURL:      cfg.Payment.CancelURL,
		FallbackAmount: cfg.Payment.FallbackAmount,
		NominalAmount:  cfg.Payment.NominalAmount,
	}, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Services{
		Auth:         auth.NewAuthService(db, jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL), store, cfg.TokenTTL),
		Users:        user.New(db, verificationService, logger),
		Verification: verificationService,
		Courses:      course.New(db, logger),
		Enrollment:   enrollmentService,
		Payment:      paymentService,
		Storage:      db,
		Metrics:      m,
		CodeLimiter:  middlewarectx.NewClientLimiter(cfg.Verification.SendRate, cfg.Verification.SendBurst),
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// denylist выбирает хранилище отозванных токенов: Redis, если он настроен, иначе память процесса.
func (a *App) denylist(ctx context.Context, cfg *config.Config) (denylist.Store, error) {
	if cfg.Redis.AddressRedis != "" {
		c, err := cache.InitServer(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, c)
		a.logger.Info("token denylist backed by redis", slog.String("address", cfg.Redis.AddressRedis))
		return denylist.NewRedis(c), nil
	}

	mem := denylist.NewMemory(a.logger)
	if err := mem.Start(denylist.DefaultPruneSchedule); err != nil {
		return nil, err
	}
	a.memory = mem
	a.logger.Info("token denylist kept in memory")
	return mem, nil
}

func newProvider(cfg config.Payment) (paymentprovider.Provider, error) {
	switch cfg.Provider {
	case "stripe":
		return paymentprovider.NewStripeClient(cfg.Stripe.SecretKey, cfg.Stripe.APIURL, cfg.Stripe.Timeout), nil
	case "midtrans":
		if !strings.EqualFold(cfg.Currency, paymentprovider.MidtransCurrency) {
			return nil, fmt.Errorf("midtrans requires currency %q, got %q", paymentprovider.MidtransCurrency, cfg.Currency)
		}
		return paymentprovider.NewMidtransClient(cfg.Midtrans.ServerKey, cfg.Midtrans.Production), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", cfg.Provider)
	}
}

// Run запускает HTTP-сервер и останавливает его по отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.memory != nil {
		a.memory.Stop()
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Error("failed to close resource", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
