package main

import (
	"context"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"slidedeck/internal/config"
	"slidedeck/internal/generator"
	"slidedeck/internal/pkg/errors"
	"slidedeck/internal/pkg/logger"
	"slidedeck/internal/pkg/shutdown"
	"slidedeck/internal/storage"
	"slidedeck/internal/version"
	"slidedeck/internal/worker"
	"slidedeck/internal/worker/queue"

	_ "slidedeck/internal/layouts" // Register built-in layouts
)

const serviceName = "slidedeck-worker"

func main() {
	cfg, err := config.Load(serviceName)
	bootLog := logger.NewDefault()
	if err != nil {
		bootLog.LogFatal("failed to load configuration", err)
	}
	if cfg.Queue.RedisAddr == "" {
		bootLog.LogFatal("queue not configured", errors.New(errors.CodeValidation, "QUEUE_REDIS_ADDR or REDIS_ADDR is required"))
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

	log.Info("starting slidedeck worker",
		"version", version.Version,
		"queue", cfg.Queue.Name,
		"templates_dir", cfg.TemplatesDir,
	)

	ctx, cancel := context.WithCancel(context.Background())

	sp, err := storage.NewProvider(ctx, cfg)
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}
	if c, ok := sp.(io.Closer); ok {
		shutdownMgr.RegisterCloser("storage", c.Close)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Queue.RedisAddr,
		Password: cfg.Queue.RedisPassword,
		DB:       cfg.Queue.RedisDB,
	})
	shutdownMgr.RegisterCloser("redis", rdb.Close)

	q := queue.NewRedisQueue(rdb, cfg.Queue.Name)
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := q.Ping(pingCtx); err != nil {
		log.Warn("queue not reachable yet", "addr", cfg.Queue.RedisAddr, "error", err.Error())
	}
	pingCancel()

	gen := generator.New(cfg.TemplatesDir, sp,
		generator.WithPattern(cfg.LayoutPattern),
		generator.WithLogger(log),
	)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if err := worker.Run(ctx, worker.Deps{Queue: q, Generator: gen, Log: log}); err != nil && ctx.Err() == nil {
			log.LogError(ctx, "worker stopped", err)
		}
	}()

	// Registered last so it runs before the redis client is closed.
	shutdownMgr.Register("worker", func(sctx context.Context) error {
		cancel()
		select {
		case <-stopped:
			return nil
		case <-sctx.Done():
			return sctx.Err()
		}
	})

	if err := shutdownMgr.Wait(context.Background()); err != nil {
		log.LogFatal("shutdown finished with errors", err)
	}
}
