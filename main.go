package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitea.com/go-chi/session"
	"github.com/blogem/audio-library/authenticator"
	"github.com/blogem/audio-library/config"
	"github.com/blogem/audio-library/controllers"
	"github.com/blogem/audio-library/database"
	"github.com/blogem/audio-library/logging"
	"github.com/blogem/audio-library/metrics"
	appmiddleware "github.com/blogem/audio-library/middleware"
	"github.com/blogem/audio-library/repositories"
	"github.com/blogem/audio-library/services"
	"github.com/blogem/audio-library/storage"
	"github.com/blogem/audio-library/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	// oidcTimeout bounds the identity provider round trips of the OIDC routes
	oidcTimeout = 60 * time.Second
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.InitLogger(cfg.LogDev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

// run wires the application and serves until ctx is cancelled
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := database.InitializeDatabase(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	limiter, closeLimiter := newLimiter(ctx, cfg, logger)
	defer closeLimiter()

	m := metrics.New()

	repos := repositories.NewRepositories(db.Gorm)
	srvs := services.NewServices(repos, store, m, services.Options{
		MaxFileSize: cfg.MaxFileSize,
		BcryptCost:  cfg.BcryptCost,
	}, logger)

	opts := controllers.Options{
		MaxRequestBytes: cfg.MaxRequestBytes(),
		MaxFileSize:     cfg.MaxFileSize,
	}
	if cfg.OIDCEnabled() {
		provider, err := authenticator.NewOpenIDProvider(ctx, authenticator.OpenIDConfig{
			Domain:       cfg.OIDCDomain,
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			CallbackURL:  cfg.OIDCCallbackURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize OIDC provider: %w", err)
		}
		opts.OIDC = provider
	}

	ctrl := controllers.NewControllers(srvs, opts, logger)

	r, err := setupRouter(ctrl, limiter, m, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to setup router: %w", err)
	}

	servers := []*http.Server{{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if cfg.MetricsAddr != "" {
		servers = append(servers, &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           m.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		})
	}

	logger.Info("audio library starting",
		zap.String("addr", cfg.Addr),
		zap.String("metrics_addr", cfg.MetricsAddr),
		zap.String("database", cfg.DatabasePath),
		zap.String("storage", cfg.StorageBackend),
		zap.Bool("oidc", opts.OIDC != nil),
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listener %s: %w", srv.Addr, err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	logger.Info("audio library stopped")
	return err
}

// newStorage selects the storage backend
func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		return storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return storage.NewFilesystemStorage(cfg.UploadDir)
	}
}

// newLimiter uses Redis when it is configured and reachable, otherwise process memory
func newLimiter(ctx context.Context, cfg *config.Config, logger *zap.Logger) (appmiddleware.Limiter, func()) {
	memory := appmiddleware.NewMemoryLimiter(cfg.RateLimitMaxRequests, cfg.RateLimitWindow)
	if cfg.RedisAddr == "" {
		return memory, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, rate limiting in memory", zap.String("redis_addr", cfg.RedisAddr), zap.Error(err))
		client.Close()
		return memory, func() {}
	}

	logger.Info("rate limiting via redis", zap.String("redis_addr", cfg.RedisAddr))
	return appmiddleware.NewRedisLimiter(client, cfg.RateLimitMaxRequests, cfg.RateLimitWindow), func() {
		client.Close()
	}
}

// setupRouter configures all routes
func setupRouter(
	ctrl *controllers.Controllers,
	limiter appmiddleware.Limiter,
	m *metrics.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) (*chi.Mux, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(appmiddleware.RequestLogger(logger.Named("http")))
	r.Use(appmiddleware.Metrics(m))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(appmiddleware.RateLimit(limiter, logger.Named("ratelimit")))
	r.Use(appmiddleware.SameOrigin)
	r.Use(appmiddleware.RequireJSONOrMultipart)

	lifetime := int64(cfg.SessionLifetime / time.Second)
	sessionHandler, err := session.Sessioner(session.Options{
		Provider:       "memory",
		ProviderConfig: "",
		CookieName:     "audio_session",
		Secure:         cfg.UseHTTPS,
		Gclifetime:     lifetime,
		Maxlifetime:    lifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	r.Use(sessionHandler)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(web.Static()))))

	// PUBLIC ROUTES
	r.Get("/", ctrl.Pages.Index)
	r.Get("/register", ctrl.Pages.Register)
	r.Post("/register", ctrl.Auth.Register)
	r.Post("/login", ctrl.Auth.Login)
	r.Get("/logout", ctrl.Auth.Logout)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(oidcTimeout))
		r.Get("/login/oidc", ctrl.Auth.OIDCLogin)
		r.Get("/callback", ctrl.Auth.Callback)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"healthy","service":"audio-library"}`)
	})

	r.With(appmiddleware.RequirePageAuth).Get("/settings", ctrl.Pages.Settings)

	// PROTECTED API ROUTES
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.RequireAuth)

		r.Get("/categories", ctrl.Category.List)

		r.Route("/audio", func(r chi.Router) {
			r.Get("/", ctrl.Audio.List)
			r.Post("/upload", ctrl.Audio.Upload)
			r.Get("/{id}", ctrl.Audio.Get)
			r.Put("/{id}", ctrl.Audio.Update)
			r.Delete("/{id}", ctrl.Audio.Delete)
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/me", ctrl.Auth.Me)
			r.Put("/username", ctrl.Settings.ChangeUsername)
			r.Put("/password", ctrl.Settings.ChangePassword)
			r.Get("/profile", ctrl.Settings.GetProfile)
			r.Put("/profile", ctrl.Settings.UpdateProfile)
			r.Delete("/account", ctrl.Settings.DeleteAccount)
			r.Get("/activity", ctrl.Settings.Activity)
		})
	})

	return r, nil
}
