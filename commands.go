package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/yeremiapane/kebab-storefront/config"
	"github.com/yeremiapane/kebab-storefront/database"
	"github.com/yeremiapane/kebab-storefront/feed"
	"github.com/yeremiapane/kebab-storefront/models"
	"github.com/yeremiapane/kebab-storefront/poller"
	"github.com/yeremiapane/kebab-storefront/router"
	"github.com/yeremiapane/kebab-storefront/services"
	"github.com/yeremiapane/kebab-storefront/utils"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	utils.InitLogger(cfg.LogLevel)
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	if err := database.RequireCounter(db, models.OrderCounterName); err != nil {
		return fmt.Errorf("%w (run `storefront migrate` first)", err)
	}

	wompi := services.NewWompiService(cfg.Wompi)
	if err := wompi.ValidateConfig(); err != nil {
		return err
	}

	guard, closeGuard := deliveryGuard(ctx, cfg)
	defer closeGuard()

	r := router.SetupRouter(router.Options{
		DB:     db,
		Config: cfg,
		Wompi:  wompi,
		Guard:  guard,
		Hub:    feed.NewHub(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-quit:
	}

	utils.InfoLogger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	utils.InfoLogger.Info("HTTP server stopped")
	return nil
}

// openStore connects and migrates the schema.
func openStore(cfg *config.Config) (*gorm.DB, error) {
	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return db, nil
}

// deliveryGuard connects the Redis de-duplication store when configured.
// Without it the reconciler relies on the store-level Pending check alone.
func deliveryGuard(ctx context.Context, cfg *config.Config) (services.DeliveryGuard, func()) {
	if cfg.RedisAddr == "" {
		return nil, func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		utils.ErrorLogger.WithError(err).Warn("redis unavailable, webhook delivery guard disabled")
		rdb.Close()
		return nil, func() {}
	}

	utils.InfoLogger.WithField("addr", cfg.RedisAddr).Info("connected to redis")
	return services.NewRedisDeliveryGuard(rdb), func() { rdb.Close() }
}

// envConfig reads settings for commands that never touch the gateway, so
// payment secrets are not required.
func envConfig() (*config.Config, error) {
	config.LoadEnvFile()
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	utils.InitLogger(cfg.LogLevel)
	return cfg, nil
}

func migrateCmd() *cobra.Command {
	var counterStart uint

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and the order counter",
		Long: `Create or update every table and initialise the order counter.

An existing counter is never reset, so running migrate again is safe.

Examples:
  storefront migrate
  storefront migrate --counter-start 1000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := envConfig()
			if err != nil {
				return err
			}
			db, err := openStore(cfg)
			if err != nil {
				return err
			}
			counter, err := database.EnsureCounter(db, models.OrderCounterName, counterStart)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema ready, order counter at %d\n", counter.LastID)
			return nil
		},
	}

	cmd.Flags().UintVar(&counterStart, "counter-start", 0, "last issued order number for a new counter")
	return cmd
}

func createAdminCmd() *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account, or promote and re-key an existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := envConfig()
			if err != nil {
				return err
			}
			db, err := openStore(cfg)
			if err != nil {
				return err
			}
			user, err := services.NewUserService(db).CreateAdmin(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s ready\n", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password (min 8 characters)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func pollCmd() *cobra.Command {
	var (
		baseURL  string
		interval time.Duration
		attempts int
	)

	cmd := &cobra.Command{
		Use:   "poll [transaction-id]",
		Short: "Wait for a payment to settle, the way the checkout result page does",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			p := poller.New(poller.NewHTTPSource(baseURL), poller.Hooks{
				ClearCart: func() { fmt.Fprintln(out, "cart cleared") },
				Navigate:  func(path string) { fmt.Fprintf(out, "-> %s\n", path) },
			})
			p.Interval = interval
			p.MaxAttempts = attempts

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			outcome, err := p.Run(ctx, args[0])
			fmt.Fprintf(out, "outcome: %s\n", outcome)
			return err
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:8080", "storefront base URL")
	cmd.Flags().DurationVar(&interval, "interval", poller.DefaultInterval, "delay between lookups")
	cmd.Flags().IntVar(&attempts, "attempts", poller.DefaultMaxAttempts, "maximum lookups")
	return cmd
}
