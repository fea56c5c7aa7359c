package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/sirupsen/logrus"

	"alkozay-factory-api/internal/handler"
	"alkozay-factory-api/internal/middleware"
	"alkozay-factory-api/pkg/apierror"
	"alkozay-factory-api/pkg/response"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler        *handler.Handler
	LedgerHandler  *handler.LedgerHandler
	ReportHandler  *handler.ReportHandler
	BackupHandler  *handler.BackupHandler
	AdminHandler   *handler.AdminHandler
	AuthMiddleware func(http.Handler) http.Handler

	Logger             logrus.FieldLogger
	AllowedOrigins     []string
	RateLimitPerMinute int
	Production         bool
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.NewRecovery(cfg.Logger))
	r.Use(middleware.NewLogging(cfg.Logger))
	r.Use(middleware.NewSecureHeaders(cfg.Production))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-API-Key"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, apierror.NotFound("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, &apierror.Error{
			StatusCode: http.StatusMethodNotAllowed,
			Code:       "METHOD_NOT_ALLOWED",
			Message:    "method not allowed",
		})
	})

	// PUBLIC routes (no auth required)
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
		r.Get("/api/v1/health", cfg.Handler.Health)
		r.Get("/api/v1/ready", cfg.Handler.Ready)
	}

	// AUTHENTICATED routes
	r.Group(func(r chi.Router) {
		if cfg.RateLimitPerMinute > 0 {
			r.Use(httprate.Limit(cfg.RateLimitPerMinute, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					response.Error(w, apierror.TooManyRequests(""))
				}),
			))
		}
		if cfg.AuthMiddleware != nil {
			r.Use(cfg.AuthMiddleware)
		}

		r.Route("/api/v1", func(r chi.Router) {
			if h := cfg.LedgerHandler; h != nil {
				r.Get("/dashboard", h.Dashboard)
				r.Get("/inventory", h.Inventory)
				r.Get("/activities", h.Activities)

				r.Route("/imports", func(r chi.Router) {
					r.Get("/", h.ListImports)
					r.Post("/", h.CreateImport)
					r.Put("/{id}", h.UpdateImport)
					r.Delete("/{id}", h.DeleteImport)
				})
				r.Route("/sales", func(r chi.Router) {
					r.Get("/", h.ListSales)
					r.Post("/", h.CreateSale)
					r.Put("/{id}", h.UpdateSale)
					r.Delete("/{id}", h.DeleteSale)
					if cfg.ReportHandler != nil {
						r.Get("/{id}/receipt", cfg.ReportHandler.Receipt)
					}
				})

				r.Get("/settings", h.GetSettings)
				r.Put("/settings", h.UpdateSettings)
			}

			if h := cfg.ReportHandler; h != nil {
				r.Route("/reports/{month}", func(r chi.Router) {
					r.Get("/", h.Monthly)
					r.Get("/xlsx", h.MonthlyXLSX)
				})
			}

			if h := cfg.BackupHandler; h != nil {
				r.Route("/backup", func(r chi.Router) {
					r.Get("/export", h.Export)
					r.Post("/preview", h.Preview)
					r.Post("/import", h.Import)
				})
			}

			if h := cfg.AdminHandler; h != nil {
				r.Route("/admin", func(r chi.Router) {
					r.Post("/reset", h.Reset)
					r.Post("/save", h.Save)
					r.Get("/stats", h.GetStats)
				})
			}
		})
	})

	return r
}
