package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hvacpro/proposals/internal/config"
	"github.com/hvacpro/proposals/internal/db"
	"github.com/hvacpro/proposals/internal/logger"
	"github.com/hvacpro/proposals/internal/migrations"
	"github.com/hvacpro/proposals/internal/pricebook"
	"github.com/hvacpro/proposals/internal/proposal"
	"github.com/hvacpro/proposals/internal/seed"
)

const shutdownTimeout = 15 * time.Second

type server struct {
	log       *zap.Logger
	db        *sql.DB
	books     *pricebook.Store
	proposals *proposal.Store
	autosave  *proposal.AutoSaver
}

func newServer(database *sql.DB, log *zap.Logger, autosaveDelay time.Duration) *server {
	proposals := proposal.NewStore(database)
	return &server{
		log:       log,
		db:        database,
		books:     pricebook.NewStore(database),
		proposals: proposals,
		autosave:  proposal.NewAutoSaver(proposals, autosaveDelay, log.Named("autosave")),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Stage, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Fatal("failed to open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer database.Close()

	if err := migrations.Up(ctx, database, log.Named("migrations")); err != nil {
		log.Fatal("failed to run database migrations", zap.Error(err))
	}

	if cfg.SeedOnStart {
		stats, err := seed.Run(ctx, database)
		if err != nil {
			log.Fatal("failed to seed price book", zap.Error(err))
		}
		log.Info("price book seeded", zap.Int("inserts", stats.Inserts), zap.Int("skipped", stats.Skipped))
	}

	srv := newServer(database, log, cfg.AutosaveDebounce)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", httpServer.Addr), zap.String("stage", cfg.Stage))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	if err := srv.autosave.Close(shutdownCtx); err != nil {
		log.Error("flush pending autosaves", zap.Error(err))
	}
	log.Info("server stopped")
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/pricebook", func(r chi.Router) {
			r.Get("/", s.handlePriceBook)

			r.Get("/items", s.handleItemsList)
			r.Post("/items", s.handleItemCreate)
			r.Put("/items/{id}", s.handleItemUpdate)
			r.Patch("/items/{id}/margin", s.handleItemMargin)

			r.Get("/settings", s.handleSettingsGet)
			r.Put("/settings", s.handleSettingsUpdate)

			r.Get("/bundle-discounts", s.handleBundleDiscountsList)
			r.Put("/bundle-discounts/{years}", s.handleBundleDiscountPut)
			r.Delete("/bundle-discounts/{years}", s.handleBundleDiscountDelete)

			r.Get("/financing-options", s.handleFinancingOptionsList)
			r.Post("/financing-options", s.handleFinancingOptionCreate)
			r.Put("/financing-options/{id}", s.handleFinancingOptionUpdate)

			r.Get("/incentives", s.handleIncentivesList)
			r.Post("/incentives", s.handleIncentiveCreate)
			r.Put("/incentives/{id}", s.handleIncentiveUpdate)
		})

		r.Post("/quote", s.handleQuote)

		r.Get("/proposals", s.handleProposalsList)
		r.Post("/proposals", s.handleProposalCreate)
		r.Get("/proposals/{id}", s.handleProposalGet)
		r.Put("/proposals/{id}", s.handleProposalUpdate)
		r.Put("/proposals/{id}/draft", s.handleProposalDraft)
		r.Get("/proposals/{id}/text", s.handleProposalText)
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeError(r.Context(), w, http.StatusServiceUnavailable, "unavailable", "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
