package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/wrongbook/backend/internal/api"
	"github.com/wrongbook/backend/internal/auth"
	"github.com/wrongbook/backend/internal/infrastructure/config"
	"github.com/wrongbook/backend/internal/service"
	"github.com/wrongbook/backend/internal/store"

	_ "github.com/wrongbook/backend/docs" // swagger docs
)

// @title           Wrongbook API
// @version         1.0
// @description     Wrong-question notebook: collect the problems you got wrong and review them in resumable sessions.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

var rootCmd = &cobra.Command{
	Use:          "wrongbook",
	Short:        "Wrong-question notebook API server",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().String("db-driver", "", "Database driver: sqlite or postgres (overrides DB_DRIVER)")
	rootCmd.PersistentFlags().String("dsn", "", "Database DSN (overrides DB_DSN)")
	rootCmd.Flags().String("addr", "", "Listen address (overrides SERVER_ADDRESS)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveDatabase applies the --db-driver and --dsn flags over db.
func resolveDatabase(cmd *cobra.Command, db config.Database) config.Database {
	if v, _ := cmd.Flags().GetString("db-driver"); v != "" {
		db.Driver = v
	}
	if v, _ := cmd.Flags().GetString("dsn"); v != "" {
		db.DSN = v
	}
	return db
}

func serve(cmd *cobra.Command) error {
	cfg := config.Load()
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.ServerAddress = v
	}
	cfg.Database = resolveDatabase(cmd, cfg.Database)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// ── Dependencies ────────────────────────────────────────────────
	db, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		return err
	}
	defer db.Close()

	tokens, err := auth.NewTokens(cfg.AuthSecret)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := api.NewMetrics(registry)

	reviews := service.NewReviewService(db, logger)
	handler := api.NewHandler(reviews, db, metrics, logger)

	// ── Routes ──────────────────────────────────────────────────────
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	api.RegisterRoutes(mux, handler, api.Authenticate(tokens))

	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Swagger UI served at /swagger/
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// ── Middleware chain: Logging → Metrics → CORS → mux ────────────
	logged := api.Logging(logger)(metrics.Instrument(api.CORS(mux)))

	// ── Server ──────────────────────────────────────────────────────
	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           logged,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}
	}()

	logger.Info("starting server", "address", cfg.ServerAddress, "db_driver", cfg.Database.Driver)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed to start", "error", err)
		return err
	}
	return nil
}
