package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jortiz/teammatch/internal/api"
	"github.com/jortiz/teammatch/internal/config"
	"github.com/jortiz/teammatch/internal/identity"
	"github.com/jortiz/teammatch/internal/repository/postgres"
	"github.com/jortiz/teammatch/internal/service"
	"github.com/jortiz/teammatch/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	repos := postgres.NewRepositories(db)
	verifier := identity.NewJWTVerifier(cfg.JWTSecret, time.Duration(cfg.JWTExpirationHours)*time.Hour)

	var cache *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("invalid REDIS_URL")
		}
		cache = redis.NewClient(opts)
	}

	services := service.NewServices(repos, cfg, verifier, cache, log)

	hub := websocket.NewHub(verifier, services.Message, log)
	services.BindDeliverer(hub)

	router := api.NewRouter(services, hub, repos, verifier, log)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Stop()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server stopped")
}
