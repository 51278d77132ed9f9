package api

import (
	"net/http"
	"time"

	"github.com/athebyme/affiliate-storefront/pkg/auth"
	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/pkg/models"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/api/handlers"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/api/middleware"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/security"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterOptions зависимости маршрутизатора. Messaging, Auth, ClickStats и RateLimiter необязательны
type RouterOptions struct {
	Gateway     models.ContentGateway
	Clicks      handlers.ClickTracker
	ClickStats  handlers.ClickStatsProvider
	Messaging   interfaces.MessagingPort
	Auth        interfaces.AuthPort
	RateLimiter *middleware.RateLimiter
	Logger      interfaces.LoggerPort

	CORSAllowOrigins []string
	ContentTopic     string
	WebhookRole      string
	MetricsEndpoint  string // пусто - метрики не публикуются
	RequestTimeout   time.Duration
}

// SetupRouter настраивает маршрутизатор
func SetupRouter(opts RouterOptions) *chi.Mux {
	logger := opts.Logger
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing)
	r.Use(middleware.Metrics)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(chimiddleware.Timeout(opts.RequestTimeout))
	r.Use(middleware.CORS(opts.CORSAllowOrigins))
	r.Use(middleware.SecurityHeaders)

	r.Method(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}))
	r.Method(http.MethodHead, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	if opts.MetricsEndpoint != "" {
		r.Handle(opts.MetricsEndpoint, promhttp.Handler())
	}

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	catalogHandler := handlers.NewCatalogHandler(opts.Gateway, logger)
	articleHandler := handlers.NewArticleHandler(opts.Gateway, logger)
	homeHandler := handlers.NewHomeHandler(opts.Gateway, logger)
	clickHandler := handlers.NewClickHandler(opts.Clicks, opts.ClickStats, logger)

	limited := func(r chi.Router) chi.Router {
		if opts.RateLimiter == nil {
			return r
		}
		return r.With(opts.RateLimiter.Handler)
	}

	// Исходящие переходы
	limited(r).With(middleware.BotFilter).Get("/go/{slug}", clickHandler.Redirect)

	r.Route("/api/v1", func(r chi.Router) {
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Handler)
		}

		r.Get("/home", homeHandler.Home)
		r.Get("/categories", catalogHandler.ListCategories)
		r.Get("/posts", articleHandler.ListRecentPosts)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogHandler.ListProducts)
			r.Get("/slugs", catalogHandler.ListSlugs)
			r.Get("/search", catalogHandler.SearchProducts)
			r.Get("/{slug}", catalogHandler.GetProduct)
		})

		if opts.Auth == nil {
			logger.Warn("Проверка токенов не настроена, вебхуки и статистика отключены")
			return
		}

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware(opts.Auth, logger))

			webhookHandler := handlers.NewWebhookHandler(opts.Messaging, opts.ContentTopic, logger)
			r.With(auth.RequireRole(opts.Auth, opts.WebhookRole)).Post("/webhooks/content", webhookHandler.ContentChanged)

			r.With(auth.RequireRole(opts.Auth, security.AdminRole)).Get("/clicks/stats", clickHandler.Stats)
		})
	})

	return r
}
