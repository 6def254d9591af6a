package main // Entry point of the restaurant admin console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/restaurant-dashboard/internal/backend"
	"github.com/iliyamo/restaurant-dashboard/internal/config"
	"github.com/iliyamo/restaurant-dashboard/internal/logging"
	"github.com/iliyamo/restaurant-dashboard/internal/middleware"
	"github.com/iliyamo/restaurant-dashboard/internal/notify"
	"github.com/iliyamo/restaurant-dashboard/internal/router"
	"github.com/iliyamo/restaurant-dashboard/internal/service"
	"github.com/iliyamo/restaurant-dashboard/internal/session"
	"github.com/iliyamo/restaurant-dashboard/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("console stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load() // Load environment config

	log, closeLog, err := logging.Setup(cfg.LogFile, cfg.Env == "dev")
	if err != nil {
		return err
	}
	defer closeLog()

	client, err := backend.New(cfg.BackendURL, cfg.RequestTimeout, log)
	if err != nil {
		return fmt.Errorf("backend client: %w", err)
	}

	// Redis is optional: without it identity lives in memory and the
	// limiter lets everything through.
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn("redis unreachable, running without shared session and rate limiting")
	} else {
		defer rdb.Close()
	}

	toast, sink, closeSink := notifications(config.LoadNotifyConfig(), log)
	defer closeSink()

	var reporter telemetry.Reporter = telemetry.Nop{}
	var publisher *telemetry.Publisher
	if tc := config.LoadTelemetryConfig(); tc.Enabled {
		publisher = telemetry.NewPublisher(tc.URL, tc.Queue, log)
		reporter = publisher
	}

	dash := service.NewDashboard(service.Deps{
		Transport:       client,
		Sink:            sink,
		Reporter:        reporter,
		Cache:           config.LoadCacheConfig(),
		RefetchTimeout:  cfg.RefetchTimeout,
		MutationTimeout: cfg.MutationTimeout,
		Log:             log,
	})
	sc := config.LoadSessionConfig()
	store := session.NewStore(rdb, sc.Prefix, sc.DefaultTTL, log)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	router.Register(e, router.Deps{
		Dash:      dash,
		Auth:      service.NewAuthService(client, store, dash.Restaurants, log),
		Identity:  store,
		Toast:     toast,
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Log:       log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second, // uploads and imports
		WriteTimeout:      cfg.MutationTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http shutdown", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(ctx); err != nil {
			log.Warn("telemetry flush incomplete", "error", err)
		}
	}
	return nil
}

// notifications returns the toast shown by the console and the sink the
// services write to.  With a bot token the same notifications are also
// mirrored to the owner's Telegram chat; the returned func stops the
// mirror.
func notifications(cfg config.NotifyConfig, log *slog.Logger) (*notify.Toast, notify.Sink, func()) {
	toast := notify.NewToast(cfg.Duration)
	if !cfg.TelegramEnabled() {
		return toast, toast, func() {}
	}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.TelegramToken, tgbotapi.APIEndpoint, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		log.Warn("telegram disabled", "error", err)
		return toast, toast, func() {}
	}
	tg := notify.NewTelegram(bot, cfg.TelegramChatID, cfg.Duration, log)
	return toast, notify.Multi{toast, tg}, tg.Close
}
