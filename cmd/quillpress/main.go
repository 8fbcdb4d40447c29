// Package main is the entry point for the QuillPress content API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"quillpress/internal/auth"
	"quillpress/internal/config"
	"quillpress/internal/database"
	"quillpress/internal/handlers"
	"quillpress/internal/middleware"
	"quillpress/internal/router"
	"quillpress/internal/service"
	"quillpress/internal/storage"
	"quillpress/internal/store"
	"quillpress/internal/store/memory"
	"quillpress/internal/valkey"
)

// stores bundles the three persistence interfaces for the chosen driver.
type stores struct {
	users      store.Users
	categories store.Categories
	posts      store.Posts
}

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON elsewhere.
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"store", cfg.StoreDriver,
	)

	ctx := context.Background()

	st, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStores()

	// Revoked tokens live in Valkey when configured, in process memory otherwise.
	var revoker auth.Revoker = auth.NewMemoryRevoker()
	if cfg.ValkeyEnabled() {
		var client *redis.Client
		client, err = valkey.Connect(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		revoker = auth.NewRedisRevoker(client)
	} else {
		slog.Warn("valkey not configured, token revocation is process-local")
	}

	assets, uploads, err := openAssets(cfg)
	if err != nil {
		slog.Error("failed to initialize asset storage", "error", err)
		os.Exit(1)
	}

	// Services and handler groups.
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	accounts := service.NewAccounts(st.users, tokens, revoker, "QuillPress")
	posts := service.NewPosts(st.posts, st.categories)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer limiter.Stop()
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimitPerMinute, time.Minute).
		WithMessage("Too many login attempts, please try again later")
	defer loginLimiter.Stop()

	r := router.New(router.Deps{
		Authenticator: accounts,
		Auth:          handlers.NewAuth(accounts),
		Posts:         handlers.NewPosts(posts, storage.NewUploader(assets, cfg.UploadMaxBytes)),
		Categories:    handlers.NewCategories(service.NewCategories(st.categories)),
		Users:         handlers.NewUsers(service.NewUsers(st.users)),
		Limiter:       limiter,
		LoginLimiter:  loginLimiter,
		Uploads:       uploads,
		CORSOrigins:   cfg.CORSAllowedOrigins,
	})

	// Create the HTTP server with sensible timeouts. Reads allow for
	// multipart bodies carrying a featured image.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// openStores connects the configured storage driver. For Postgres it
// applies pending migrations and, in development, seeds an admin account.
func openStores(ctx context.Context, cfg *config.Config) (stores, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		db := memory.New()
		slog.Warn("using in-memory store, data is lost on restart")
		return stores{users: db.Users, categories: db.Categories, posts: db.Posts}, func() {}, nil
	}

	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return stores{}, nil, err
	}
	closeDB := func() { db.Close() }

	if err := database.Migrate(ctx, db); err != nil {
		closeDB()
		return stores{}, nil, err
	}

	// Seed development data (no-op if users already exist).
	if cfg.IsDev() {
		if err := database.Seed(ctx, db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			closeDB()
			return stores{}, nil, err
		}
	}

	return postgresStores(db), closeDB, nil
}

func postgresStores(db *sql.DB) stores {
	return stores{
		users:      store.NewUserStore(db),
		categories: store.NewCategoryStore(db),
		posts:      store.NewPostStore(db),
	}
}

// openAssets returns the featured image store: S3 when configured, the
// local upload directory otherwise. The second value serves local files
// and is nil for S3.
func openAssets(cfg *config.Config) (storage.AssetStore, http.Handler, error) {
	if cfg.S3Enabled() {
		s3, err := storage.NewS3Store(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey,
			cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			return nil, nil, err
		}
		if s3 != nil {
			slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
			return s3, nil, nil
		}
	}

	disk, err := storage.NewDiskStore(cfg.UploadDir, "/uploads")
	if err != nil {
		return nil, nil, err
	}
	slog.Info("s3 storage not configured, storing uploads on disk", "dir", disk.Dir())
	return disk, http.FileServer(http.Dir(disk.Dir())), nil
}
