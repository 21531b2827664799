package lmsaccess

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/lms-access/internal/cache"
	"github.com/magabrotheeeer/lms-access/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/lms-access/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/lms-access/internal/http/handlers/auth/register"
	coursecreate "github.com/magabrotheeeer/lms-access/internal/http/handlers/course/create"
	"github.com/magabrotheeeer/lms-access/internal/http/handlers/course/lectures"
	courselist "github.com/magabrotheeeer/lms-access/internal/http/handlers/course/list"
	courseremove "github.com/magabrotheeeer/lms-access/internal/http/handlers/course/remove"
	"github.com/magabrotheeeer/lms-access/internal/http/handlers/health"
	"github.com/magabrotheeeer/lms-access/internal/http/handlers/payment/cancel"
	"github.com/magabrotheeeer/lms-access/internal/http/handlers/payment/key"
	"github.com/magabrotheeeer/lms-access/internal/http/handlers/payment/sales"
	"github.com/magabrotheeeer/lms-access/internal/http/handlers/payment/subscribe"
	"github.com/magabrotheeeer/lms-access/internal/http/handlers/payment/verify"
	"github.com/magabrotheeeer/lms-access/internal/http/handlers/user/me"
	"github.com/magabrotheeeer/lms-access/internal/http/handlers/user/password"
	"github.com/magabrotheeeer/lms-access/internal/http/handlers/user/resetconfirm"
	"github.com/magabrotheeeer/lms-access/internal/http/handlers/user/resetrequest"
	userupdate "github.com/magabrotheeeer/lms-access/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/lms-access/internal/http/middlewarectx"
	"github.com/magabrotheeeer/lms-access/internal/lib/jwt"
	"github.com/magabrotheeeer/lms-access/internal/models"
	authservice "github.com/magabrotheeeer/lms-access/internal/services/auth"
	courseservice "github.com/magabrotheeeer/lms-access/internal/services/course"
	subservice "github.com/magabrotheeeer/lms-access/internal/services/subscription"
	"github.com/magabrotheeeer/lms-access/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker jwt.Maker, cacheRedis *cache.Cache,
	db *repository.Storage, authService *authservice.AuthService,
	subscriptionService *subservice.SubscriptionService, courseService *courseservice.CourseService,
	providerKeyID string) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, 5, 10))
			r.Post("/register", register.New(logger, authService).ServeHTTP)
			r.Post("/login", login.New(logger, authService).ServeHTTP)
			r.Post("/users/reset", resetrequest.New(logger, authService).ServeHTTP)
			r.Post("/users/reset/confirm", resetconfirm.New(logger, authService).ServeHTTP)
		})
		r.Get("/health", health.New(logger, db).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, cacheRedis, logger))
			r.Post("/logout", logout.New(logger, authService).ServeHTTP)
			r.Get("/users/me", me.New(logger, authService).ServeHTTP)
			r.Put("/users/me", userupdate.New(logger, authService).ServeHTTP)
			r.Put("/users/password", password.New(logger, authService).ServeHTTP)
			r.Get("/payments/key", key.New(logger, providerKeyID).ServeHTTP)
			r.Post("/payments/subscribe", subscribe.New(logger, subscriptionService).ServeHTTP)
			r.Post("/payments/verify", verify.New(logger, subscriptionService).ServeHTTP)
			r.Post("/payments/unsubscribe", cancel.New(logger, subscriptionService).ServeHTTP)
			r.Get("/courses", courselist.New(logger, courseService).ServeHTTP)

			// Контент курсов доступен только при активной подписке
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.SubscriptionStatusMiddleware(db, logger))
				r.Get("/courses/{id}/lectures", lectures.New(logger, courseService).ServeHTTP)
			})

			// Административные конечные точки
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRoles(logger, models.RoleAdmin))
				r.Post("/courses", coursecreate.New(logger, courseService).ServeHTTP)
				r.Delete("/courses/{id}", courseremove.New(logger, courseService).ServeHTTP)
				r.Get("/admin/sales", sales.New(logger, subscriptionService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
