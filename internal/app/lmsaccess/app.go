// Package lmsaccess собирает HTTP-сервис платформы: хранилище, кэш,
// клиент платёжного сервиса, брокер уведомлений и маршруты.
package lmsaccess

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/lms-access/internal/cache"
	"github.com/magabrotheeeer/lms-access/internal/config"
	"github.com/magabrotheeeer/lms-access/internal/lib/jwt"
	"github.com/magabrotheeeer/lms-access/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/lms-access/internal/migrations"
	"github.com/magabrotheeeer/lms-access/internal/notifier"
	"github.com/magabrotheeeer/lms-access/internal/paymentprovider"
	authservice "github.com/magabrotheeeer/lms-access/internal/services/auth"
	courseservice "github.com/magabrotheeeer/lms-access/internal/services/course"
	subservice "github.com/magabrotheeeer/lms-access/internal/services/subscription"
	"github.com/magabrotheeeer/lms-access/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и внешние соединения сервиса.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	amqp   *amqp.Connection
}

// New собирает приложение из конфигурации: подключает PostgreSQL
// с миграциями, Redis, RabbitMQ и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var events subservice.Notifier = notifier.Noop{}
	var amqpConn *amqp.Connection
	if cfg.RabbitMQURL != "" {
		amqpConn, err = rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(amqpConn, rabbitmq.GetEmailQueues())
		if err != nil {
			amqpConn.Close()
			return nil, err
		}
		events = notifier.New(ch, logger)
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	providerClient := paymentprovider.NewClient(cfg.ProviderKeyID, cfg.ProviderKeySecret, cfg.ProviderAPIURL)

	authService := authservice.NewAuthService(db, jwtMaker, cacheRedis, events, logger)
	subscriptionService := subservice.NewSubscriptionService(db, db, providerClient, events,
		cfg.ProviderKeySecret, cfg.ProviderPlanID, cfg.ProviderCycles, logger)
	courseService := courseservice.NewCourseService(db, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jwtMaker, cacheRedis, db,
		authService, subscriptionService, courseService, cfg.ProviderKeyID)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		amqp:   amqpConn,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста.
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
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		if a.amqp != nil {
			if closeErr := a.amqp.Close(); closeErr != nil {
				a.logger.Error("failed to close rabbitmq connection", slog.Any("err", closeErr))
			}
		}
		return err
	}
}
