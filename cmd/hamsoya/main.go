package main

import (
	"context"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gmhridu/hamsoya-mono-sub004/modules/auth"
	"github.com/gmhridu/hamsoya-mono-sub004/pkg/config"
	"github.com/gmhridu/hamsoya-mono-sub004/pkg/httpserver"
	"github.com/gmhridu/hamsoya-mono-sub004/pkg/logger"
	"github.com/gmhridu/hamsoya-mono-sub004/pkg/pg"
	"github.com/gmhridu/hamsoya-mono-sub004/pkg/redis"
)

type appConfig struct {
	Log   logger.Config
	HTTP  httpserver.Config
	PG    pg.Config
	Redis redis.Config
	Auth  auth.Config
}

func main() {
	if err := run(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		logger.New().Error("loading configuration failed", "error", err)
		return err
	}

	log := logger.NewFromConfig(cfg.Log)

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		log.Error("migrations failed", "error", err)
		return err
	}

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		return err
	}
	defer rdb.Close()

	authSvc, err := auth.NewService(cfg.Auth,
		auth.NewRedisRefreshStore(rdb),
		auth.NewPGIdentityStore(pool),
		auth.WithLogger(log),
	)
	if err != nil {
		log.Error("auth service setup failed", "error", err)
		return err
	}
	defer authSvc.Close()

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", httpserver.HealthHandler(log))
	r.Get("/readyz", httpserver.HealthHandler(log,
		httpserver.Probe{Name: "postgres", Check: pool.Ping},
		httpserver.Probe{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}},
	))

	r.Mount("/auth", authSvc.Router())

	r.Group(func(r chi.Router) {
		r.Use(authSvc.Middleware)
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			if record, ok := auth.SessionFromContext(r.Context()); ok {
				log.Info("storefront request", "subject_id", record.SubjectID)
			}
			w.WriteHeader(http.StatusOK)
		})
	})

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	if err := srv.Run(ctx, r); err != nil {
		log.Error("http server failed", "error", err)
		return err
	}
	return nil
}
