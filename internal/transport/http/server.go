package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"reelgram/internal/config"
	"reelgram/internal/database"
	"reelgram/internal/handler"
	"reelgram/internal/redis"
	"reelgram/internal/repository"
	"reelgram/internal/repository/memory"
	"reelgram/internal/repository/postgres"
	"reelgram/internal/service"
	"reelgram/internal/storage"
)

// Run loads configuration, wires the application together and serves HTTP.
// Blocks until the listener fails.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()

	var (
		userRepo repository.UserRepository
		postRepo repository.PostRepository
	)
	if cfg.UsePostgres() {
		db, err := database.Connect(cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()
		userRepo = postgres.NewUserRepository(db)
		postRepo = postgres.NewPostRepository(db)
		log.Println("[Server] Using Postgres storage")
	} else {
		userRepo = memory.NewUserRepository()
		postRepo = memory.NewPostRepository()
		log.Println("[Server] Using in-memory storage")
	}

	var store storage.ObjectStore
	uploadDir := ""
	if cfg.UseR2() {
		store, err = storage.NewR2Store(ctx, cfg)
		if err != nil {
			return fmt.Errorf("init object storage: %w", err)
		}
		log.Println("[Server] Using R2 object storage")
	} else {
		local, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			return fmt.Errorf("init local storage: %w", err)
		}
		store = local
		uploadDir = local.Root()
		log.Printf("[Server] Using local storage at %s", uploadDir)
	}

	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Printf("[Server] Redis unavailable, rate limiting disabled: %v", err)
		} else if err := client.Ping(ctx); err != nil {
			log.Printf("[Server] Redis unreachable, rate limiting disabled: %v", err)
		} else {
			rdb = client.Client
			defer client.Close()
		}
	}

	authService := service.NewAuthService(cfg)
	userService := service.NewUserService(userRepo)
	mediaService := service.NewMediaService(store)
	postService := service.NewPostService(postRepo, mediaService)

	router := NewRouter(RouterConfig{
		AuthHandler: handler.NewAuthHandler(userService, authService),
		PostHandler: handler.NewPostHandler(postService),
		Verifier:    authService,
		Redis:       rdb,
		RateLimit:   cfg.AuthRateLimit,
		RateWindow:  time.Duration(cfg.AuthRateWindowS) * time.Second,
		UploadDir:   uploadDir,
	})

	addr := ":" + cfg.ServerPort
	log.Printf("[Server] Listening on %s", addr)
	return http.ListenAndServe(addr, router)
}
