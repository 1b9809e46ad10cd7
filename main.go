package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travel-blog-server/cache"
	"travel-blog-server/config"
	"travel-blog-server/database"
	"travel-blog-server/handlers"
	"travel-blog-server/logging"
	"travel-blog-server/repository"
	"travel-blog-server/services"
	"travel-blog-server/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: os.Stdout})

	ctx := context.Background()
	checks := map[string]handlers.Pinger{}

	// Stores
	var (
		userRepo repository.UserRepository
		postRepo repository.PostRepository
	)
	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, err := database.ConnectMongo(ctx, cfg.Store)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize MongoDB")
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		db := client.Database(cfg.Store.Database)
		users := repository.NewMongoUserRepository(db)
		posts := repository.NewMongoPostRepository(db)
		if err := users.EnsureIndexes(ctx); err != nil {
			logging.Fatal().Err(err).Msg("Failed to create user indexes")
		}
		if err := posts.EnsureIndexes(ctx); err != nil {
			logging.Fatal().Err(err).Msg("Failed to create post indexes")
		}
		userRepo, postRepo = users, posts
		checks["mongo"] = handlers.PingFunc(func(ctx context.Context) error { return client.Ping(ctx, nil) })
	default:
		logging.Warn().Msg("Using in-memory stores; data is lost on restart")
		userRepo, postRepo = repository.NewMemoryUserRepository(), repository.NewMemoryPostRepository()
	}

	// Redis
	var profileCache cache.ProfileCache = cache.NoopProfileCache{}
	redisClient, err := database.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize Redis")
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		profileCache = cache.NewRedisProfileCache(redisClient, cfg.Redis.ProfileCacheTTL)
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}

	// Object storage
	var (
		objectStore storage.ObjectStore
		uploads     http.Handler
	)
	switch cfg.Storage.Driver {
	case config.DriverS3:
		s3Store, err := storage.NewS3Store(ctx, cfg.Storage)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize object storage")
		}
		objectStore = s3Store
	default:
		baseURL := cfg.Storage.PublicBaseURL
		if baseURL == "" {
			baseURL = fmt.Sprintf("http://localhost:%d/uploads", cfg.Server.Port)
		}
		memStore := storage.NewMemoryStore(baseURL)
		objectStore, uploads = memStore, memStore
		logging.Warn().Str("base_url", baseURL).Msg("Using in-memory object storage")
	}

	// Services
	authService := services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	userService := services.NewUserService(userRepo, profileCache)
	imageService := services.NewImageService(objectStore, cfg.Storage.MaxUploadBytes)
	postService := services.NewPostService(postRepo, userRepo, imageService)

	router := handlers.NewRouter(handlers.Handlers{
		Auth:    handlers.NewAuthHandler(authService),
		Users:   handlers.NewUserHandler(userService),
		Posts:   handlers.NewPostHandler(postService, cfg.Storage.MaxUploadBytes),
		Upload:  handlers.NewUploadHandler(imageService),
		Health:  handlers.NewHealthHandler(checks),
		Uploads: uploads,
	}, handlers.RouterConfig{
		JWTSecret:      cfg.Auth.JWTSecret,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AuthRateLimit:  cfg.Server.AuthRateLimit,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logging.Info().Int("port", cfg.Server.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logging.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Server forced to shutdown")
	}
	logging.Info().Msg("Server exiting")
}
