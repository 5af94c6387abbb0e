package main

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"slidedeck/internal/config"
	"slidedeck/internal/httpapi"
	"slidedeck/internal/httpapi/handlers"
	"slidedeck/internal/pkg/logger"
	"slidedeck/internal/pkg/shutdown"
	"slidedeck/internal/storage"
	"slidedeck/internal/version"
	"slidedeck/internal/worker/queue"
)

const serviceName = "slidedeck-api"

func main() {
	cfg, err := config.Load(serviceName)
	bootLog := logger.NewDefault()
	if err != nil {
		bootLog.LogFatal("failed to load configuration", err)
	}

	shutdownMgr := shutdown.NewManager(bootLog, 30*time.Second)

	if cfg.LogFile != "" {
		f, err := logger.OpenFile(cfg.LogFile)
		if err != nil {
			bootLog.LogFatal("failed to open log file", err, "path", cfg.LogFile)
		}
		cfg.Log.File = f
		shutdownMgr.RegisterCloser("log-file", f.Close)
	}
	log := logger.New(cfg.Log)

	log.Info("starting slidedeck API",
		"version", version.Version,
	)

	ctx := context.Background()

	log.Info("initializing storage provider", "provider", cfg.Storage.Provider)
	sp, err := storage.NewProvider(ctx, cfg)
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}
	if c, ok := sp.(io.Closer); ok {
		shutdownMgr.RegisterCloser("storage", c.Close)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := sp.Ping(pingCtx); err != nil {
		log.Warn("storage provider not reachable yet", "provider", sp.Provider(), "error", err.Error())
	} else {
		log.Info("storage provider initialized", "provider", sp.Provider())
	}
	cancel()

	var jobs handlers.Enqueuer
	if cfg.Queue.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Queue.RedisAddr,
			Password: cfg.Queue.RedisPassword,
			DB:       cfg.Queue.RedisDB,
		})
		shutdownMgr.RegisterCloser("redis", rdb.Close)
		jobs = queue.NewRedisQueue(rdb, cfg.Queue.Name)
		log.Info("regeneration queue enabled", "queue", cfg.Queue.Name)
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Store:          sp,
		Log:            log,
		Queue:          jobs,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Service:        serviceName,
		Version:        version.Version,
	})

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening",
			"addr", server.Addr,
			"port", cfg.HTTPPort,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("HTTP server failed", err)
		}
	}()

	if err := shutdownMgr.Wait(ctx); err != nil {
		log.LogFatal("shutdown finished with errors", err)
	}
}
