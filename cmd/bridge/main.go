// Command bridge runs the support bridge: it receives gateway webhook
// deliveries over HTTP, relays traffic between anonymous users and the staff
// space, and serves health and metrics endpoints.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-support-bridge/internal/bridge"
	"github.com/tbourn/go-support-bridge/internal/config"
	httpapi "github.com/tbourn/go-support-bridge/internal/http"
	"github.com/tbourn/go-support-bridge/internal/i18n"
	"github.com/tbourn/go-support-bridge/internal/observability"
	"github.com/tbourn/go-support-bridge/internal/repo"
	"github.com/tbourn/go-support-bridge/internal/services"
	"github.com/tbourn/go-support-bridge/internal/sysutil"
	"github.com/tbourn/go-support-bridge/internal/transport"
	"github.com/tbourn/go-support-bridge/internal/transport/httprelay"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(c); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath, cfg.OTEL.Enabled)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("database open failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	bundle := i18n.NewBundle()
	bundle.SetDefaultLanguage(cfg.DefaultLocale)
	if cfg.LocaleDir != "" {
		if err := bundle.ScanDir(cfg.LocaleDir); err != nil {
			// Baked-in defaults keep the bridge usable without files.
			log.Warn().Err(err).Str("dir", cfg.LocaleDir).Msg("locale files not loaded")
		} else {
			log.Info().Strs("languages", bundle.Languages()).Msg("locales loaded")
		}
	}

	relay := httprelay.NewClient(cfg.RelayBaseURL, cfg.RelayToken,
		httprelay.WithRateLimit(cfg.RelayRPS, cfg.RelayBurst))
	space := transport.Address(cfg.SpaceID)

	d := &bridge.Dispatcher{
		Users:        &services.UserService{DB: db, Relay: relay, Space: space},
		Cards:        &services.InfoCardService{DB: db, Relay: relay, Space: space, Bundle: bundle},
		Links:        &services.LinkService{DB: db},
		Notes:        &services.NoteService{DB: db},
		Relay:        relay,
		Bundle:       bundle,
		Space:        space,
		VoiceEnabled: cfg.VoiceEnabled,
		AckReaction:  cfg.AckReaction,
		Log:          log.With().Str("component", "dispatcher").Logger(),
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, d, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("bridge listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	drain, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(drain); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
