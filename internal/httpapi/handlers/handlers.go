package handlers

import (
	"context"

	"slidedeck/internal/catalog"
	"slidedeck/internal/pkg/logger"
	"slidedeck/internal/ports"
	"slidedeck/internal/presentation"
	"slidedeck/internal/worker/queue"
)

// Enqueuer accepts regeneration jobs and reports the backlog.
type Enqueuer interface {
	Push(ctx context.Context, job queue.Job) error
	Len(ctx context.Context) (int64, error)
}

type Deps struct {
	Catalog *catalog.Catalog
	Store   ports.StorageProvider
	Log     *logger.Logger
	// Queue is optional; without it regeneration requests get 503.
	Queue Enqueuer

	Service string
	Version string
}

type Handler struct {
	catalog   *catalog.Catalog
	validator *presentation.Validator
	store     ports.StorageProvider
	log       *logger.Logger
	queue     Enqueuer

	service string
	version string
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{
		catalog:   d.Catalog,
		validator: presentation.NewValidator(d.Catalog),
		store:     d.Store,
		log:       log.WithComponent("http"),
		queue:     d.Queue,
		service:   d.Service,
		version:   d.Version,
	}
}
