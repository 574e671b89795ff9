package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/tournament-engine/internal/config"
	"github.com/AdamBeresnev/tournament-engine/internal/db"
	"github.com/AdamBeresnev/tournament-engine/internal/metrics"
	"github.com/AdamBeresnev/tournament-engine/internal/middleware"
	"github.com/AdamBeresnev/tournament-engine/internal/service"
	"github.com/AdamBeresnev/tournament-engine/internal/store"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/jmoiron/sqlx"
)

type application struct {
	cfg            *config.Config
	sessionManager *scs.SessionManager
	metrics        *metrics.Metrics

	userStore   *store.UserStore
	users       *service.UserService
	tournaments *service.TournamentService
	brackets    *service.BracketService
	standings   *service.StandingsService
	matches     *service.MatchService
}

func newApplication(cfg *config.Config, database *sqlx.DB, sessionManager *scs.SessionManager) *application {
	m := metrics.New()

	tournamentStore := store.NewTournamentStore(database)
	matchStore := store.NewMatchStore(database)
	standingStore := store.NewStandingStore(database)
	userStore := store.NewUserStore(database)

	standings := service.NewStandingsService(database, tournamentStore, matchStore, standingStore, service.WithStandingsRecorder(m))

	return &application{
		cfg:            cfg,
		sessionManager: sessionManager,
		metrics:        m,
		userStore:      userStore,
		users:          service.NewUserService(database, userStore),
		tournaments:    service.NewTournamentService(database, tournamentStore, matchStore, standingStore),
		brackets:       service.NewBracketService(database, tournamentStore, matchStore, m),
		standings:      standings,
		matches:        service.NewMatchService(database, tournamentStore, matchStore, standings),
	}
}

func newSessionManager(cfg *config.Config, database *sqlx.DB) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.Session.Lifetime
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	if database.DriverName() == db.DriverSQLite {
		sessionManager.Store = sqlite3store.New(database.DB)
	} else {
		// Sessions do not survive restarts on postgres deployments
		sessionManager.Store = memstore.New()
	}
	return sessionManager
}

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	database, err := db.Open(context.Background(), cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.RunMigrations(database); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	middleware.InitAuth(cfg.Auth)

	app := newApplication(cfg, database, newSessionManager(cfg, database))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", server.Addr, "driver", cfg.Database.Driver)
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", "error", err)
			server.Close()
		}
	}
	logger.Info("Server stopped")
}
