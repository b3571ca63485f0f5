package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	_ "github.com/redmonkez12/devconnector/docs" // Swagger docs
	"github.com/redmonkez12/devconnector/internal/auth"
	"github.com/redmonkez12/devconnector/internal/config"
	"github.com/redmonkez12/devconnector/internal/database"
	httpServer "github.com/redmonkez12/devconnector/internal/http"
	"github.com/redmonkez12/devconnector/internal/logging"
	"github.com/redmonkez12/devconnector/internal/profile"
	"github.com/redmonkez12/devconnector/internal/ratelimit"
	"github.com/redmonkez12/devconnector/internal/user"
)

// @title           DevConnector API
// @version         1.0
// @description     Developer profiles: registration, token authentication and profile management.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:5000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.

func main() {
	rootCmd := &cobra.Command{
		Use:   "devconnector",
		Short: "DevConnector REST API",
		Long:  "Serve the DevConnector API or manage its database schema.",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
	serveCmd.Flags().Bool("migrate", true, "Apply pending migrations before serving")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE:  runMigrate,
	}

	migrateStatusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of every migration",
		RunE:  runMigrateStatus,
	}

	migrateCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd)

	// Allow running without subcommand (default to serve)
	rootCmd.RunE = serveCmd.RunE
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLoggerWithLevel(cfg.Server.IsDevelopment(), cfg.Log.Level)
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_format", cfg.Auth.TokenFormat,
	)

	ctx := cmd.Context()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		if err := database.Migrate(ctx, db.DB); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	// Initialize rate limiter
	var rateLimiter auth.RateLimiter = ratelimit.Unlimited{}
	if cfg.RateLimit.Enabled {
		redisClient, err := initRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		defer redisClient.Close()

		rateLimiter = ratelimit.NewLimiter(redisClient, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	} else {
		logger.Warn("rate limiting disabled")
	}

	tokenService, err := newTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Initialize repositories
	userRepo := user.NewRepository(db)
	profileRepo := profile.NewRepository(db)

	// Initialize services
	authService := auth.NewService(userRepo, tokenService, logger, cfg.Auth.TokenDuration)
	profileService := profile.NewService(profileRepo, logger)

	// Initialize HTTP handlers
	authHandler := auth.NewHandler(authService, rateLimiter, logger)
	profileHandler := profile.NewHandler(profileService, logger)
	authMiddleware := auth.NewMiddleware(authService)

	router := httpServer.NewRouter(cfg, authHandler, profileHandler, authMiddleware, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	return withDatabase(cmd, func(ctx context.Context, db *bun.DB) error {
		return database.Migrate(ctx, db.DB)
	})
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	return withDatabase(cmd, func(ctx context.Context, db *bun.DB) error {
		return database.MigrationStatus(ctx, db.DB)
	})
}

// withDatabase loads config, opens the database and runs fn against it
func withDatabase(cmd *cobra.Command, fn func(ctx context.Context, db *bun.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Open(cmd.Context(), cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	return fn(cmd.Context(), db)
}

// newTokenService picks the bearer token implementation named by the config
func newTokenService(cfg config.AuthConfig) (auth.TokenService, error) {
	if cfg.TokenFormat == config.TokenFormatJWT {
		jwtService, err := auth.NewJWTService([]byte(cfg.JWTSecret))
		if err != nil {
			return nil, err
		}
		return jwtService, nil
	}

	pasetoService, err := auth.NewPasetoService([]byte(cfg.PasetoKey))
	if err != nil {
		return nil, err
	}
	return pasetoService, nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
