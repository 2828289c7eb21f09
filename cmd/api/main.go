package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	mongoadapter "github.com/showtix/showtix/internal/adapters/mongo"
	"github.com/showtix/showtix/internal/adapters/postgres"
	"github.com/showtix/showtix/internal/adapters/rabbit"
	redisadapter "github.com/showtix/showtix/internal/adapters/redis"
	"github.com/showtix/showtix/internal/auth"
	"github.com/showtix/showtix/internal/booking"
	"github.com/showtix/showtix/internal/config"
	httphandler "github.com/showtix/showtix/internal/http"
	"github.com/showtix/showtix/internal/observability"
	"github.com/showtix/showtix/internal/ratelimit"
	"github.com/showtix/showtix/internal/shows"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdown, err := observability.SetupOTel(context.Background(), cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdown()

	logger := observability.NewLogger()

	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	repo := postgres.NewRepository(pool)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("failed to apply schema: %v", err)
	}

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	auditor := mongoadapter.NewAuditLogger(mongoClient.Database("showtix"), logger)

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	cache := redisadapter.NewCache(redisClient, cfg.ShowCacheTTL)
	idemp := redisadapter.NewIdempotency(redisClient, cfg.IdempotencyTTL)
	rl := ratelimit.NewRateLimiter(cache)

	rabbitConn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer rabbitConn.Close()
	publisher, err := rabbit.NewPublisher(rabbitConn)
	if err != nil {
		log.Fatalf("failed to create publisher: %v", err)
	}

	authSvc := auth.NewService(repo, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.BcryptCost)
	bookingSvc := booking.NewService(repo, publisher, logger)
	catalogSvc := shows.NewService(repo, cache, auditor, publisher, logger)

	handlers := httphandler.NewHandlers(authSvc, bookingSvc, catalogSvc, idemp, logger)
	router := httphandler.SetupRouter(handlers, authSvc, logger, rl)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()
	logger.WithField("port", cfg.Port).Info("showtix api listening")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	logger.Info("server exiting")
}
