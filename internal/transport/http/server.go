package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"novara/internal/cache"
	"novara/internal/config"
	"novara/internal/database"
	"novara/internal/handler"
	"novara/internal/queue"
	"novara/internal/redis"
	"novara/internal/repository"
	"novara/internal/repository/memory"
	"novara/internal/service"
	"novara/internal/session"
	"novara/internal/worker"
	authmw "novara/internal/transport/http/middleware"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 30 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

// Dependencies are the backends the HTTP API runs on.
type Dependencies struct {
	Repos     *repository.Store
	Sessions  repository.SessionRepository
	Publisher queue.Publisher
	// Activity is nil without Redis.
	Activity cache.ActivityCache
	// Media is nil when uploads are not configured.
	Media *service.MediaService
	// Registry is nil when metrics are disabled.
	Registry *prometheus.Registry
}

// NewHandler wires services and handlers over deps and returns the router.
func NewHandler(cfg *config.Config, deps Dependencies, logger zerolog.Logger) stdhttp.Handler {
	sessions := session.NewManager(deps.Sessions, cfg.JWTSecret, time.Duration(cfg.SessionMaxAge)*time.Second, logger)

	userService := service.NewUserService(deps.Repos.Users, logger)
	bookService := service.NewBookService(deps.Repos.Books, deps.Repos.Users, deps.Publisher, logger)
	blogService := service.NewBlogService(deps.Repos.Blogs, deps.Repos.Users, deps.Publisher, logger)
	orderService := service.NewOrderService(deps.Repos.Orders, deps.Repos.Books, deps.Publisher, logger)

	routerCfg := RouterConfig{
		AuthHandler:      handler.NewAuthHandler(userService, sessions, cfg.CookieSecure, logger),
		BookHandler:      handler.NewBookHandler(bookService, logger),
		BlogHandler:      handler.NewBlogHandler(blogService, logger),
		UserHandler:      handler.NewUserHandler(userService, bookService, blogService, logger),
		OrderHandler:     handler.NewOrderHandler(orderService, logger),
		DashboardHandler: handler.NewDashboardHandler(bookService, blogService, orderService, service.NewActivityService(deps.Activity), logger),
		MediaHandler:     handler.NewMediaHandler(deps.Media, logger),
		Sessions:         sessions,
		Logger:           logger,
	}
	if deps.Registry != nil {
		routerCfg.Metrics = authmw.NewMetrics(deps.Registry)
		routerCfg.MetricsHandler = promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{Registry: deps.Registry})
	}

	return NewRouter(routerCfg)
}

// Run builds the backends selected by cfg and serves the API until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	if !cfg.EnvFileLoaded {
		logger.Info().Msg("no .env file found, using process environment")
	}
	if cfg.JWTSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return err
		}
		cfg.JWTSecret = secret
		logger.Warn().Msg("JWT_SECRET not set, using a random secret; sessions will not survive a restart")
	}

	deps, cleanup, err := buildDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if sweeper, ok := deps.Sessions.(*memory.SessionStore); ok {
		go sweepSessions(ctx, sweeper, logger)
	}

	srv := &stdhttp.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      NewHandler(cfg, deps, logger),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("store", cfg.StoreDriver).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func buildDependencies(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (Dependencies, func(), error) {
	var (
		deps     Dependencies
		closers  []func()
		shutdown = func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	)

	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := database.Connect(cfg, logger)
		if err != nil {
			return Dependencies{}, nil, err
		}
		closers = append(closers, func() { _ = db.Close() })
		if err := database.Migrate(ctx, db); err != nil {
			shutdown()
			return Dependencies{}, nil, err
		}
		deps.Repos = repository.NewPostgresStore(db)
	default:
		deps.Repos = memory.NewStore().Repositories()
		logger.Info().Msg("using in-memory store; data is lost on restart")
	}

	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			shutdown()
			return Dependencies{}, nil, err
		}
		closers = append(closers, func() { _ = client.Close() })
		if err := client.Ping(ctx); err != nil {
			shutdown()
			return Dependencies{}, nil, err
		}
		deps.Sessions = redis.NewSessionStore(client.Client)
		deps.Publisher = queue.NewPublisher(client.Client, logger)
		deps.Activity = cache.NewActivityCache(client.Client)

		workers := worker.NewManager(
			queue.NewConsumer(client.Client, logger),
			worker.NewHandler(deps.Activity, deps.Repos.Books, deps.Repos.Orders, logger),
			worker.ManagerConfig{WorkerCount: cfg.WorkerCount},
			logger,
		)
		if err := workers.Start(ctx); err != nil {
			shutdown()
			return Dependencies{}, nil, fmt.Errorf("start activity workers: %w", err)
		}
		// closers run in reverse, so workers stop before the client closes
		closers = append(closers, workers.Stop)
		logger.Info().Msg("redis connected: sessions, marketplace events and activity workers enabled")
	} else {
		deps.Sessions = memory.NewSessionStore()
		deps.Publisher = queue.NopPublisher{}
	}

	if cfg.MediaEnabled() {
		media, err := service.NewMediaService(ctx, cfg, logger)
		if err != nil {
			shutdown()
			return Dependencies{}, nil, err
		}
		deps.Media = media
	} else {
		logger.Info().Msg("R2 not configured, image uploads disabled")
	}

	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		deps.Registry = reg
	}

	return deps, shutdown, nil
}

func sweepSessions(ctx context.Context, store *memory.SessionStore, logger zerolog.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := store.Sweep(now); n > 0 {
				logger.Debug().Int("removed", n).Msg("expired sessions swept")
			}
		}
	}
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
