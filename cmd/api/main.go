package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SwarupDevkota/ghumna-sub000/internal/cache"
	"github.com/SwarupDevkota/ghumna-sub000/internal/httpapi"
	"github.com/SwarupDevkota/ghumna-sub000/internal/logger"
	"github.com/SwarupDevkota/ghumna-sub000/internal/notify"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/config"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/db"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/khalti"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/mailer"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	if cfg.Session.Secret == "" {
		if cfg.IsProd() {
			logger.Fatal("SESSION_SECRET is required in prod")
		}
		cfg.Session.Secret = "dev-only-session-secret"
		log.Warn("SESSION_SECRET not set, using dev secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("db open", "err", err)
	}
	defer conn.Close()

	if err := db.Migrate(cfg); err != nil {
		logger.Fatal("migrate", "err", err)
	}

	hotels, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		// The approved-hotels cache is optional; serve straight from Postgres.
		log.Warn("redis unavailable, caching disabled", "err", err)
	}
	defer func() { _ = hotels.Close() }()

	var mail notify.Sender = notify.LogSender{}
	if cfg.SMTP.Enabled() {
		mail = mailer.NewSMTP(cfg.SMTP)
	}

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:   cfg,
		DB:    conn,
		Cache: hotels,
		Mail:  mail,
		Gateway: khalti.Client{
			HTTPClient: &http.Client{Timeout: cfg.Khalti.Timeout},
			BaseURL:    cfg.Khalti.BaseURL,
			SecretKey:  cfg.Khalti.SecretKey,
		},
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http serve", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "err", err)
	}
}
