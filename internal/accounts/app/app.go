package app

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

	httpapi "github.com/aussiebroadwan/qayimli/internal/accounts/http"
	"github.com/aussiebroadwan/qayimli/internal/accounts/mail"
	"github.com/aussiebroadwan/qayimli/internal/accounts/service"
	"github.com/aussiebroadwan/qayimli/internal/accounts/store"
	"github.com/aussiebroadwan/qayimli/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/qayimli/pkg/cryptox"
	"github.com/aussiebroadwan/qayimli/pkg/httpx"
	"github.com/aussiebroadwan/qayimli/pkg/slogx"
)

// BuildVersion is overridden at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application owns the accounts service and its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	tokenService   *service.TokenService
	accountService *service.AccountService

	server *http.Server
	router *httpapi.Router
}

// New builds the application. cfg must already be validated.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "accounts-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)
	if _, err := cryptox.LoadPepper(); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run serves HTTP until SIGINT or SIGTERM, then shuts down gracefully.
func (app *Application) Run() error {
	app.logger.Info("accounts service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

func (app *Application) Shutdown() error {
	app.logger.Info("shutting down accounts service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("accounts service stopped")
	return nil
}

// Handler exposes the routed handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	if app.cfg.DatabaseFile == ":memory:" {
		dsn = ":memory:"
	}

	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() error {
	tokens, err := service.NewTokenService(SigningKeys(app.cfg), app.cfg.SessionTTL(), time.Now)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	app.tokenService = tokens

	sender, err := app.newSender()
	if err != nil {
		return err
	}

	if app.cfg.GoogleClientID == "" {
		app.logger.Warn("GOOGLE_CLIENT_ID not set, google sign-in disabled")
	}

	app.accountService = &service.AccountService{
		Users: &service.IdentityStore{
			Store:        app.db,
			DefaultRoles: app.cfg.DefaultRoles,
		},
		Tokens: tokens,
		Federation: &service.FederationService{
			Verifier: service.GoogleIDTokenVerifier{},
			ClientID: app.cfg.GoogleClientID,
		},
		Mailer:       sender,
		FrontBaseURL: app.cfg.FrontBaseURL,
	}
	return nil
}

func (app *Application) newSender() (mail.Sender, error) {
	if app.cfg.SMTP.Host == "" {
		app.logger.Warn("SMTP_HOST not set, emails will only be logged")
		return &mail.LogSender{Logger: app.logger}, nil
	}

	sender, err := mail.NewSMTPSender(app.cfg.SMTP)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize smtp sender: %w", err)
	}
	return sender, nil
}

func (app *Application) initHTTP() {
	httpx.TrustProxyHeaders.Store(app.cfg.TrustProxyHeaders)
	if app.cfg.TrustProxyHeaders {
		app.logger.Info("rate limits keyed on forwarded client address")
	}

	router := httpapi.NewRouter(
		app.tokenService.Verifier(),
		BuildVersion,
		app.db,
		app.logger,
	)
	router.Accounts = app.accountService
	router.LookupRoles = app.cfg.LookupRoles
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
