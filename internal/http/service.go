package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/config"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/http/apierr"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/http/metric"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/http/middleware"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/http/swagger"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/service"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/storage/db"
)

var tracer = otel.Tracer("internal/http")

// Services are the application services exposed over HTTP.
type Services struct {
	ProductReader service.ProductReader
	ProductWriter service.ProductWriter
	Categories    service.CategoryService
	Offers        service.OfferService
	Reviews       service.ReviewService
}

// Service represents the HTTP service.
type Service struct {
	cfg      config.HTTP
	logger   *slog.Logger
	metrics  *metric.Metrics
	verifier middleware.TokenVerifier
	health   db.HealthChecker

	services Services
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	services Services,
	verifier middleware.TokenVerifier,
	health db.HealthChecker,
) *Service {
	return &Service{
		cfg:      cfg,
		logger:   log.With(slog.String("service", "http")),
		metrics:  metric.New(),
		verifier: verifier,
		health:   health,
		services: services,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	return s.RunWithServer(ctx, s.Handler())
}

// Handler builds the full router: middlewares, docs, metrics and API routes.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		if err := swagger.Register(r); err != nil {
			s.logger.Error("api docs disabled", slog.Any("error", err))
		}
	}

	s.RegisterHandlers(r)

	return r
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.ErrorContext(ctx, "http server stopped unexpectedly", slog.Any("error", err))
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(s.cfg.CorsAllowedOrigins),
		middleware.SecureHeaders(s.logger, s.cfg.SSLRedirect),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	products := newProductHandler(s.services.ProductReader, s.services.ProductWriter, s.cfg.MaxUploadBytes)
	catalog := newCatalogHandler(s.services.Categories, s.services.Offers, s.services.Reviews)

	authenticated := middleware.Authenticate(s.verifier)
	admin := chi.Chain(authenticated, middleware.RequireAdmin())

	r.Get("/healthz", s.handle(s.healthz))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(s.cfg.RateLimitRequests, s.cfg.RateLimitWindow))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.handle(products.ListProducts))
			r.Get("/{idOrSlug}", s.handle(products.GetProduct))
			r.With(admin...).Post("/", s.handle(products.CreateProduct))
			r.With(admin...).Put("/{idOrSlug}", s.handle(products.UpdateProduct))
			r.With(admin...).Delete("/{idOrSlug}", s.handle(products.DeleteProduct))

			r.Get("/{idOrSlug}/reviews", s.handle(catalog.ListReviews))
			r.With(authenticated).Post("/{idOrSlug}/reviews", s.handle(catalog.CreateReview))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handle(catalog.ListCategories))
			r.With(admin...).Post("/", s.handle(catalog.CreateCategory))
		})

		r.Route("/offers", func(r chi.Router) {
			r.Get("/", s.handle(catalog.ListOffers))
			r.With(admin...).Post("/", s.handle(catalog.CreateOffer))
		})
	})

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle funnels handler errors into a single error response writer.
func (s *Service) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		switch {
		case err == nil:
		case errors.Is(err, errResponseEncode):
			s.logger.ErrorContext(r.Context(), "error encoding response", slog.Any("error", err))
		default:
			s.handleResponseError(w, r, err)
		}
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Service) healthz(w http.ResponseWriter, r *http.Request) error {
	if _, err := s.health.IsHealthy(r.Context()); err != nil {
		s.logger.WarnContext(r.Context(), "health check failed", slog.Any("error", err))
		return writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
	}
	return writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}
