package main

import (
	"context"

	"gamestore/backend/internal/auth"
	"gamestore/backend/internal/cache"
	"gamestore/backend/internal/config"
	"gamestore/backend/internal/database"
	"gamestore/backend/internal/logger"
	"gamestore/backend/internal/service"
	"gamestore/backend/internal/validation"
	"gamestore/backend/pkg/jwt"

	"github.com/go-redis/redis/v8"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Global flags available to all subcommands.
var envDir string

// NewRootCmd creates the root command of the server binary.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gamestore",
		Short:         "Game store REST backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&envDir, "env-dir", ".", "directory holding the .env and .env.local files")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewCreateAdminCmd())

	return cmd
}

// app is the wired application shared by the subcommands.
type app struct {
	cfg     *config.Config
	log     *zap.SugaredLogger
	db      *gorm.DB
	redis   *redis.Client
	users   *service.UserService
	games   *service.GameService
	library *service.LibraryService
	reviews *service.ReviewService
	tokens  *jwt.Codec
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(envDir)
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("operation", "load config").Wrap(err)
	}
	log := logger.New(cfg.LogLevel)

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}

	a := &app{cfg: cfg, log: log, db: db}

	var tokenCache cache.TokenCache = cache.NopTokenCache{}
	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			a.close()
			return nil, oops.Code("REDIS_CONNECT_FAILED").With("operation", "connect to redis").Wrap(err)
		}
		a.redis = rdb
		tokenCache = cache.NewRedisTokenCache(rdb)
		log.Infow("session cache enabled", "backend", "redis")
	}

	v := validation.New()
	a.tokens = jwt.NewCodec(jwt.Config{Secret: cfg.JWTSecret, TTL: cfg.JWTExpires})
	a.users = service.NewUserService(db, v, auth.NewBcryptHasher(cfg.BcryptCost), a.tokens, tokenCache, log)
	a.games = service.NewGameService(db, v)
	a.library = service.NewLibraryService(db, v, a.games)
	a.reviews = service.NewReviewService(db, v, a.games, a.library)

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is empty, logins will fail until it is set")
	}
	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}
