package server

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"account-service/internal/cache"
	"account-service/internal/config"
	acchandler "account-service/internal/handler/acc"
	authhandler "account-service/internal/handler/auth"
	"account-service/internal/identity"
	"account-service/internal/middleware"
	"account-service/internal/repository"
	"account-service/internal/router"
	"account-service/internal/session"
	accservice "account-service/internal/service/acc"
	authservice "account-service/internal/service/auth"
	"account-service/internal/storage"
)

type Server struct {
	Cfg   config.Config
	DB    *pgxpool.Pool
	Cache *cache.Cache

	HTTP *http.Server
}

func NewServer() *Server {
	cfg := config.Load()

	// DB
	dbpool, err := pgxpool.New(context.Background(), cfg.DBConnString)
	if err != nil {
		log.Fatalf("[FATAL] failed to connect to DB: %v", err)
	}

	// Redis
	rdb := cache.NewCache([]string{cfg.RedisAddr}, cfg.RedisPass, false)
	if err := rdb.Ping(context.Background()); err != nil {
		log.Printf("[WARN] failed to connect to Redis: %v", err)
	}

	// External collaborators
	blobs := storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.PictureBucket)
	provider := identity.NewGoTrueProvider(cfg.SupabaseURL, cfg.SupabaseServiceKey)
	sessions := session.NewStore(rdb)

	// Account wiring
	accRepo := repository.NewAccountRepository(dbpool)
	accSvc := accservice.NewAccountService(accRepo, blobs, cfg.PictureBucket)
	accHandler := acchandler.NewAccountHandler(accSvc)

	// Auth wiring
	authSvc := authservice.NewAuthService(provider, sessions)
	authHandler := authhandler.NewAuthHandler(authSvc, accSvc)

	auth := middleware.NewAuthMiddleware(cfg.SupabaseJWTSecret)

	r := chi.NewRouter()
	router.SetupRoutes(r, accHandler, authHandler, auth)

	return &Server{
		Cfg:   cfg,
		DB:    dbpool,
		Cache: rdb,
		HTTP: &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: r,
		},
	}
}
