package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/willemschots/tuffyestates/assets"
	"github.com/willemschots/tuffyestates/internal"
	"github.com/willemschots/tuffyestates/internal/auth"
	authdb "github.com/willemschots/tuffyestates/internal/auth/db"
	"github.com/willemschots/tuffyestates/internal/db"
	"github.com/willemschots/tuffyestates/internal/email"
	"github.com/willemschots/tuffyestates/internal/email/elasticemail"
	"github.com/willemschots/tuffyestates/internal/email/mailgun"
	"github.com/willemschots/tuffyestates/internal/email/postmark"
	"github.com/willemschots/tuffyestates/internal/email/view"
	"github.com/willemschots/tuffyestates/internal/geocode"
	"github.com/willemschots/tuffyestates/internal/images"
	"github.com/willemschots/tuffyestates/internal/offer"
	"github.com/willemschots/tuffyestates/internal/property"
	propertydb "github.com/willemschots/tuffyestates/internal/property/db"
	"github.com/willemschots/tuffyestates/internal/web"
)

const (
	// upstreamTimeout bounds calls to the geocoding and email APIs.
	upstreamTimeout = 10 * time.Second
	sweepTimeout    = 10 * time.Minute
	closeDBTimeout  = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Stderr))
}

func run(ctx context.Context, w io.Writer) int {
	logger := slog.New(slog.NewTextHandler(w, nil))

	loaded, err := loadEnvFiles(".env")
	if err != nil {
		logger.Error("failed to load env files", "error", err)
		return 1
	}
	if len(loaded) > 0 {
		logger.Info("loaded env files", "files", loaded)
	}

	cfg, err := configFromEnv()
	if err != nil {
		logger.Error("failed to get config from environment", "error", err)
		return 1
	}

	logger.Info("starting tuffy estates", "build", internal.CurrentBuild)

	gw := db.NewGateway(cfg.db.gateway, logger, db.Models()...)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeDBTimeout)
		defer cancel()

		err := gw.Close(closeCtx)
		if err != nil {
			logger.Error("failed to close database connection", "error", err)
		}
	}()

	if cfg.db.setup {
		logger.Info("attempting to set up database", "name", cfg.db.gateway.Name)

		res, err := gw.Setup(ctx)
		if err != nil {
			logger.Error("failed to set up database", "error", err)
			return 1
		}

		logger.Info("database set up",
			"created", res.Created,
			"updated", res.Updated,
			"indexes", res.Indexes,
		)
	}

	httpClient := &http.Client{Timeout: upstreamTimeout}

	// Background failures, like removing images of a deleted property,
	// can't be reported to a caller, they are logged instead.
	errHandler := func(err error) {
		logger.Error("background error", "error", err)
	}

	tokens, err := auth.NewTokens(cfg.auth.signingKey, cfg.auth.tokenLifetime)
	if err != nil {
		logger.Error("failed to create token issuer", "error", err)
		return 1
	}

	authSvc, err := auth.NewService(authdb.New(gw, time.Now), tokens)
	if err != nil {
		logger.Error("failed to create auth service", "error", err)
		return 1
	}

	sender, err := newEmailSender(cfg.email, httpClient, logger)
	if err != nil {
		logger.Error("failed to create email sender", "error", err)
		return 1
	}
	logger.Info("sending emails", "transport", cfg.email.transport)

	renderer := view.NewFSRenderer(assets.EmailFS)
	err = renderer.Preload(assets.EmailTemplates()...)
	if err != nil {
		logger.Error("failed to parse email templates", "error", err)
		return 1
	}

	mailer := email.NewService(renderer, sender, cfg.email.service)

	geocoder, err := geocode.NewClient(httpClient, cfg.geocode)
	if err != nil {
		logger.Error("failed to create geocoding client", "error", err)
		return 1
	}

	gen, err := images.NewGenerator(cfg.http.staticDir)
	if err != nil {
		logger.Error("failed to create image directory", "error", err)
		return 1
	}

	propertyStore := propertydb.New(gw, time.Now)
	propertySvc := property.NewService(propertyStore, geocoder, gen, errHandler)
	offerSvc := offer.NewService(propertySvc, authSvc, mailer)

	handler := web.NewServer(&web.ServerDeps{
		Logger:          logger,
		AuthService:     authSvc,
		PropertyService: propertySvc,
		OfferService:    offerSvc,
		StaticFS:        http.Dir(cfg.http.staticDir),
	}, cfg.http.server)

	srv := &http.Server{
		Addr:         cfg.http.addr,
		ReadTimeout:  cfg.http.readTimeout,
		WriteTimeout: cfg.http.writeTimeout,
		IdleTimeout:  cfg.http.idleTimeout,
		Handler:      handler,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	useTLS := cfg.http.tlsCert != ""
	if useTLS {
		generated, err := ensureCertificate(cfg.http.tlsCert, cfg.http.tlsKey, time.Now())
		if err != nil {
			logger.Error("failed to prepare tls certificate", "error", err)
			return 1
		}
		if generated {
			logger.Warn("generated self-signed tls certificate", "cert", cfg.http.tlsCert, "key", cfg.http.tlsKey)
		}
	}

	scheduler := cron.New()
	if cfg.images.sweepSchedule != "" {
		sweeper := images.NewSweeper(gen, propertyStore, cfg.images.sweepGrace, logger)
		_, err := sweeper.Schedule(ctx, scheduler, cfg.images.sweepSchedule, sweepTimeout)
		if err != nil {
			logger.Error("failed to schedule image sweeper", "error", err)
			return 1
		}
		logger.Info("scheduled image sweep", "schedule", cfg.images.sweepSchedule, "grace", cfg.images.sweepGrace)
	}

	// We need to run three tasks concurrently:
	// - Listen and serving of the HTTP server.
	// - Running scheduled jobs.
	// - Waiting for a signal to stop the server.

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.http.addr, "tls", useTLS)
		// ListenAndServe always returns a non-nil error,
		// g will cancel gCtx when an error is returned, so
		// this will also stop the other goroutines.
		if useTLS {
			return srv.ListenAndServeTLS(cfg.http.tlsCert, cfg.http.tlsKey)
		}
		return srv.ListenAndServe()
	})

	g.Go(func() error {
		scheduler.Start()
		<-gCtx.Done()

		// Wait for running jobs to finish.
		<-scheduler.Stop().Done()
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("stopping http server")

		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.http.shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutCtx)
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server stopped with error", "error", err)
		return 1
	}

	logger.Info("http server stopped successfully")

	return 0
}

func newEmailSender(cfg emailConfig, client *http.Client, logger *slog.Logger) (email.Sender, error) {
	switch cfg.transport {
	case "log":
		return email.NewLogSender(logger), nil
	case "memory":
		return email.NewMemorySender(), nil
	case "elasticemail":
		return elasticemail.NewSender(client, cfg.elasticemail), nil
	case "postmark":
		return postmark.NewSender(client, cfg.postmark), nil
	case "mailgun":
		return mailgun.NewSender(client, cfg.mailgun), nil
	default:
		return nil, fmt.Errorf("unknown email transport %q", cfg.transport)
	}
}
