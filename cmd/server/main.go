package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"solvibe/internal/challenge"
	"solvibe/internal/config"
	"solvibe/internal/domain"
	"solvibe/internal/observability/logging"
	"solvibe/internal/observability/metrics"
	impl "solvibe/internal/service/impl"
	"solvibe/internal/store"
	httpx "solvibe/internal/transport/http"
	"solvibe/internal/wallet"
	"solvibe/pkg/db"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: "solvibe",
		Environment: env,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	slog.SetDefault(logger)

	logger.Info("starting service")

	cfg := config.Load()
	metrics.MustRegister("solvibe")

	gdb, err := db.OpenGorm(db.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}
	if err := gdb.AutoMigrate(
		&domain.User{},
		&domain.Post{},
		&domain.Membership{},
		&domain.Vote{},
	); err != nil {
		logger.Error("auto migrate", "error", err)
		os.Exit(1)
	}

	st := store.New(gdb)

	// Challenge storage: redis when configured so instances share one
	// challenge per wallet, otherwise a process-local map.
	var challenges challenge.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("redis ping", "error", err)
			os.Exit(1)
		}
		challenges = challenge.NewRedisStore(rdb, cfg.ChallengeTTL)
		logger.Info("challenge store ready", "backend", "redis", "ttl", cfg.ChallengeTTL)
	} else {
		challenges = challenge.NewMemoryStore()
		logger.Info("challenge store ready", "backend", "memory")
	}

	tokens := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer:     cfg.Issuer,
		Audience:   cfg.Audience,
		AccessTTL:  cfg.AccessTTL,
		SigningKey: []byte(cfg.SigningKey),
	})
	auth := impl.NewAuthServiceImpl(st, challenges, wallet.Verify, tokens)
	users := impl.NewUserServiceImpl(st)
	memberships := impl.NewMembershipServiceImpl(st)
	posts := impl.NewPostServiceImpl(st, memberships)
	votes := impl.NewVoteServiceImpl(st)

	mux := httpx.NewRouter(
		httpx.RouterConfig{CORSOrigins: cfg.CORSOrigins},
		auth, tokens, users, posts, memberships, votes,
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("solvibe listening", "addr", srv.Addr, "issuer", cfg.Issuer)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
