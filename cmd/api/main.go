package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"imagegallery/internal/config"
	"imagegallery/internal/database"
	"imagegallery/internal/domain/gallery"
	"imagegallery/internal/domain/realtime"
	"imagegallery/internal/middleware"
	"imagegallery/internal/pkg/logger"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(os.Stderr, "info", true)
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(os.Stdout, cfg.LogLevel, cfg.IsProd())
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	backend, err := newBackend(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Backend).Msg("failed to set up backend")
	}

	origins := middleware.AllowedOrigins(cfg.CORSAllowedOrigins)
	hub := realtime.NewHub(log, middleware.OriginChecker(origins))

	store := gallery.NewStore(backend, gallery.Options{
		MaxFileSize: cfg.UploadMaxBytes,
		Notifier:    hub,
		Logger:      &log,
	})

	r := newRouter(log, store, hub, origins)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("backend", cfg.Backend).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown server")
	}
	hub.Close()
	if err := store.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close store")
	}

	log.Info().Msg("server stopped")
}

func newRouter(log zerolog.Logger, store *gallery.Store, hub *realtime.Hub, origins map[string]bool) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(origins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	gallery.RegisterRoutes(v1, gallery.NewHandler(store))
	v1.GET("/ws", hub.ServeWS)
	return r
}

func newBackend(cfg *config.Config, log zerolog.Logger) (gallery.Backend, error) {
	if cfg.Backend != config.BackendSQL {
		return gallery.NewSimulatedBackend(gallery.Latency{
			UploadStep:   cfg.UploadStepDelay,
			ProgressStep: cfg.UploadProgressStep,
			Rename:       cfg.RenameDelay,
			Delete:       cfg.DeleteDelay,
		}), nil
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}
	backend := gallery.NewSQLBackend(db)
	if err := backend.Migrate(); err != nil {
		return nil, err
	}
	return backend, nil
}
