// cmd/api/main.go
package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"biblioteka/internal/catalog"
	"biblioteka/internal/config"
	"biblioteka/internal/httpapi"
	"biblioteka/internal/lending"
	"biblioteka/internal/membership"
	"biblioteka/internal/reports"
	"biblioteka/internal/storage"
	"biblioteka/internal/storage/memory"
	"biblioteka/internal/storage/postgres"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	shutdownTracing, err := setupTracing(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to set up tracing", zap.Error(err))
	}
	defer shutdownTracing(ctx)

	store, cleanup, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer cleanup()

	catalogSvc := catalog.NewService(store, logger)
	membershipSvc := membership.NewService(store, rate.NewLimiter(rate.Every(time.Second), 10), logger)
	lendingSvc := lending.NewService(store, store, cfg.LoanPeriodDays, logger)
	reportsSvc := reports.NewService(store, logger)

	catalogHandler := catalog.NewHandler(catalogSvc)
	membershipHandler := membership.NewHandler(membershipSvc)
	lendingHandler := lending.NewHandler(lendingSvc)
	reportsHandler := reports.NewHandler(reportsSvc, cfg.FinePerDay)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpapi.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/api", func(r chi.Router) {
		r.Post("/books", catalogHandler.HandleAddBook)
		r.Get("/books", catalogHandler.HandleListBooks)
		r.Get("/books/{id}", catalogHandler.HandleGetBook)

		r.Post("/members", membershipHandler.HandleRegister)
		r.Get("/members", membershipHandler.HandleListMembers)
		r.Get("/members/{id}", membershipHandler.HandleGetMember)

		r.Post("/loans/borrow", lendingHandler.HandleBorrow)
		r.Post("/loans/return", lendingHandler.HandleReturn)
		r.Get("/loans", lendingHandler.HandleListLoans)

		r.Get("/reports/overdue", reportsHandler.HandleOverdue)
	})

	logger.Info("lending ledger listening", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

// openStore selects the ledger implementation: Postgres when DATABASE_URL is
// set, the embedded in-process ledger otherwise.
func openStore(cfg config.Config, logger *zap.Logger) (storage.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info("using embedded in-process ledger")
		return memory.NewStore(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}

	logger.Info("using postgres ledger")
	return postgres.NewStore(db), func() { db.Close() }, nil
}
