package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"slidedeck/internal/catalog"
	"slidedeck/internal/httpapi/handlers"
	"slidedeck/internal/pkg/logger"
	"slidedeck/internal/pkg/middleware"
	"slidedeck/internal/ports"
)

type Deps struct {
	Store ports.StorageProvider
	Log   *logger.Logger
	Queue handlers.Enqueuer

	AllowedOrigins []string
	Service        string
	Version        string
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logger.Discard()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))
	r.Use(chimw.CleanPath)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           600,
	}))

	h := handlers.New(handlers.Deps{
		Catalog: catalog.New(d.Store),
		Store:   d.Store,
		Log:     log,
		Queue:   d.Queue,
		Service: d.Service,
		Version: d.Version,
	})

	// ---- HEALTH ----
	r.Get("/health", h.Health)

	// ---- TEMPLATES ----
	r.Get("/api/template", middleware.WrapHandler(log, h.GetTemplate))
	r.Post("/api/template/regenerate", middleware.WrapHandler(log, h.RegenerateTemplate))

	// ---- PRESENTATIONS ----
	r.Post("/api/presentation/validate", middleware.WrapHandler(log, h.ValidatePresentation))

	return r
}
