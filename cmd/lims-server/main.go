package main

import (
	"context"
	crypto_rand "crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cytolab/lims/internal/config"
	"github.com/cytolab/lims/internal/domain/billing"
	"github.com/cytolab/lims/internal/domain/dashboard"
	"github.com/cytolab/lims/internal/domain/identity"
	"github.com/cytolab/lims/internal/domain/lab"
	"github.com/cytolab/lims/internal/domain/patient"
	"github.com/cytolab/lims/internal/domain/registry"
	"github.com/cytolab/lims/internal/platform/apierr"
	"github.com/cytolab/lims/internal/platform/auth"
	"github.com/cytolab/lims/internal/platform/db"
	"github.com/cytolab/lims/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lims-server",
		Short: "Clinical lab LIMS API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the LIMS API server",
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

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
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

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create an admin account with the temporary password",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			if name == "" || email == "" {
				return fmt.Errorf("--name and --email are required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			users := identity.NewUserRepoPG(pool)
			role, err := users.GetRoleByName(ctx, identity.RoleAdmin)
			if err != nil {
				return fmt.Errorf("admin role not found, run migrations first: %w", err)
			}
			hash, err := auth.HashPassword(identity.TempPassword)
			if err != nil {
				return err
			}
			u := &identity.User{
				Name:         name,
				Email:        email,
				PasswordHash: hash,
				RoleID:       role.ID,
				Role:         role.Name,
				Active:       true,
			}
			if err := users.Create(ctx, u); err != nil {
				return err
			}
			fmt.Printf("Admin %s created with the temporary password. Change it after first login.\n", email)
			return nil
		},
	}
	cmd.Flags().String("name", "", "Admin display name")
	cmd.Flags().String("email", "", "Admin email")
	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	if cfg.JWTSecret == "" {
		// Development convenience only; Validate refuses this outside dev.
		buf := make([]byte, 32)
		if _, err := crypto_rand.Read(buf); err != nil {
			logger.Fatal().Err(err).Msg("failed to generate dev JWT secret")
		}
		cfg.JWTSecret = hex.EncodeToString(buf)
		logger.Warn().Msg("JWT_SECRET not set, using a random secret; tokens will not survive restarts")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	issuer := auth.NewIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apierr.HTTPErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	e.Use(middleware.RateLimit(rateLimitCfg))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Repositories
	userRepo := identity.NewUserRepoPG(pool)
	labRepo := lab.NewRepoPG(pool)
	patientRepo := patient.NewRepoPG(pool)
	sampleRepo := registry.NewSampleRepoPG(pool)
	resultRepo := registry.NewTestResultRepoPG(pool)
	historyRepo := registry.NewStatusHistoryRepoPG(pool)
	billingRepo := billing.NewRepoPG(pool)
	statsRepo := dashboard.NewRepoPG(pool)

	// Services
	identitySvc := identity.NewService(userRepo, issuer)
	labSvc := lab.NewService(labRepo)
	patientSvc := patient.NewService(patientRepo)
	registrySvc := registry.NewService(sampleRepo, resultRepo, historyRepo, db.PoolTxRunner(pool))
	billingSvc := billing.NewService(billingRepo)
	dashboardSvc := dashboard.NewService(statsRepo)

	// Routes: /login stays public, everything under /api carries the bearer
	// token middleware; per-route RequireRole guards sit on top.
	authMW := auth.Middleware(issuer)
	api := e.Group("/api", authMW)

	identity.NewHandler(identitySvc).RegisterRoutes(e, api, authMW)
	lab.NewHandler(labSvc).RegisterRoutes(api)
	patient.NewHandler(patientSvc).RegisterRoutes(api)
	registry.NewHandler(registrySvc).RegisterRoutes(api)
	billing.NewHandler(billingSvc).RegisterRoutes(api)
	dashboard.NewHandler(dashboardSvc).RegisterRoutes(api)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
