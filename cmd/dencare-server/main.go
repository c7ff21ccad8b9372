package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dencare/dencare/internal/config"
	"github.com/dencare/dencare/internal/domain/labwork"
	"github.com/dencare/dencare/internal/domain/options"
	"github.com/dencare/dencare/internal/domain/patient"
	"github.com/dencare/dencare/internal/domain/payment"
	"github.com/dencare/dencare/internal/domain/summary"
	"github.com/dencare/dencare/internal/domain/visit"
	"github.com/dencare/dencare/internal/platform/apperr"
	"github.com/dencare/dencare/internal/platform/auth"
	"github.com/dencare/dencare/internal/platform/db"
	"github.com/dencare/dencare/internal/platform/middleware"
	"github.com/dencare/dencare/internal/platform/storage"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dencare-server",
		Short: "Dental clinic management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(resequenceCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			pool, cleanup, err := connect()
			if err != nil {
				return err
			}
			defer cleanup()

			count, err := db.NewMigrator(pool, dir).Up(context.Background())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s).\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			pool, cleanup, err := connect()
			if err != nil {
				return err
			}
			defer cleanup()

			statuses, err := db.NewMigrator(pool, dir).Status(context.Background())
			if err != nil {
				return fmt.Errorf("migration status failed: %w", err)
			}

			fmt.Printf("%-10s %-30s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-30s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Install the default reference options",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, cleanup, err := connect()
			if err != nil {
				return err
			}
			defer cleanup()

			svc := options.NewService(options.NewOptionRepoPG(pool))
			if err := svc.SeedDefaults(context.Background()); err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			fmt.Println("Default options seeded.")
			return nil
		},
	}
}

func resequenceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resequence",
		Short: "Reassign patient display numbers 1..N by creation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, cleanup, err := connect()
			if err != nil {
				return err
			}
			defer cleanup()

			svc := patient.NewService(patient.NewPatientRepoPG(pool), db.PoolRunner(pool))
			if err := svc.Resequence(context.Background()); err != nil {
				return fmt.Errorf("resequence failed: %w", err)
			}
			fmt.Println("Display numbers resequenced.")
			return nil
		},
	}
}

func connect() (pool *pgxpool.Pool, cleanup func(), err error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	p, err := db.NewPool(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	store, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("failed to open upload directory")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", db.HealthHandler(pool))
	e.Static("/uploads", cfg.UploadDir)

	authSvc := auth.NewService(cfg.AuthSecret, cfg.AdminPassword)
	if authSvc.Enabled() {
		e.POST("/api/auth/login", authSvc.LoginHandler)
	}

	api := e.Group("/api")
	api.Use(authSvc.Middleware())

	tx := db.PoolRunner(pool)

	optionSvc := options.NewService(options.NewOptionRepoPG(pool))
	options.NewHandler(optionSvc).RegisterRoutes(api)

	visitSvc := visit.NewService(visit.NewVisitRepoPG(pool), tx, store, logger)
	visit.NewHandler(visitSvc).RegisterRoutes(api)

	paymentSvc := payment.NewService(payment.NewPaymentRepoPG(pool))
	payment.NewHandler(paymentSvc).RegisterRoutes(api)

	patientSvc := patient.NewService(patient.NewPatientRepoPG(pool), tx)
	patient.NewHandler(patientSvc, visitSvc, paymentSvc).RegisterRoutes(api)

	labWorkSvc := labwork.NewService(labwork.NewLabWorkRepoPG(pool))
	labwork.NewHandler(labWorkSvc).RegisterRoutes(api)

	summarySvc := summary.NewService(summary.NewSummaryRepoPG(pool))
	summary.NewHandler(summarySvc).RegisterRoutes(api)

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
	}()

	logger.Info().Str("port", cfg.Port).Msg("starting server")
	if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
