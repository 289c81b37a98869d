package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/services"
	"github.com/vidtube/backend/internal/storage"
)

type cleanupFunc func(ctx context.Context) error

type repositorySet struct {
	users         repositories.UserRepository
	videos        repositories.VideoRepository
	tweets        repositories.TweetRepository
	comments      repositories.CommentRepository
	likes         repositories.LikeRepository
	playlists     repositories.PlaylistRepository
	subscriptions repositories.SubscriptionRepository
}

func postgresRepositories(pool db.Pool) repositorySet {
	return repositorySet{
		users:         repositories.NewPostgresUserRepository(pool),
		videos:        repositories.NewPostgresVideoRepository(pool),
		tweets:        repositories.NewPostgresTweetRepository(pool),
		comments:      repositories.NewPostgresCommentRepository(pool),
		likes:         repositories.NewPostgresLikeRepository(pool),
		playlists:     repositories.NewPostgresPlaylistRepository(pool),
		subscriptions: repositories.NewPostgresSubscriptionRepository(pool),
	}
}

func memoryRepositories() repositorySet {
	store := repositories.NewMemoryStore()
	return repositorySet{
		users:         store.Users(),
		videos:        store.Videos(),
		tweets:        store.Tweets(),
		comments:      store.Comments(),
		likes:         store.Likes(),
		playlists:     store.Playlists(),
		subscriptions: store.Subscriptions(),
	}
}

// buildDependencies wires together concrete implementations used by the HTTP handlers.
// pool is ignored when the memory store is configured.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, cleanupFunc, error) {
	var (
		repos  repositorySet
		assets services.AssetStore
		health handlers.Pinger
	)

	switch cfg.Store {
	case "memory":
		repos = memoryRepositories()
		assets = storage.NewMemoryStorage(cfg.ObjectStore.PublicBaseURL)
	default:
		if pool == nil {
			return handlers.Dependencies{}, nil, errors.New("postgres store requires a connection pool")
		}
		repos = postgresRepositories(pool)
		s3Store, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, nil, fmt.Errorf("configure object storage: %w", err)
		}
		assets = s3Store
		health = pool
	}

	janitor := media.NewJanitor(assets, media.JanitorConfig{
		QueueSize: cfg.Janitor.QueueSize,
		Workers:   cfg.Janitor.Workers,
		Timeout:   cfg.RequestTimeout,
	}, logger)
	cleanups := []cleanupFunc{janitor.Shutdown}

	limiter, closeLimiter, err := buildRateLimiter(ctx, cfg.RateLimit)
	if err != nil {
		_ = janitor.Shutdown(ctx)
		return handlers.Dependencies{}, nil, err
	}
	if closeLimiter != nil {
		cleanups = append(cleanups, closeLimiter)
	}

	tokens := auth.NewTokenService(cfg.Auth)
	sessions := auth.NewManager(tokens, repos.users, repos.users)

	svc := services.New(services.Deps{
		Users:         repos.users,
		Videos:        repos.videos,
		Tweets:        repos.tweets,
		Comments:      repos.comments,
		Likes:         repos.likes,
		Playlists:     repos.playlists,
		Subscriptions: repos.subscriptions,
		Sessions:      sessions,
		Assets:        assets,
		Janitor:       janitor,
		Prober:        media.NewProber(cfg.FFProbePath, cfg.FFProbeTimeout),
		StatsTTL:      cfg.StatsCacheTTL,
	})

	deps := handlers.Dependencies{
		Services:       svc,
		Tokens:         sessions,
		Accounts:       repos.users,
		Limiter:        limiter,
		Metrics:        middleware.NewMetrics(),
		Health:         health,
		Logger:         logger,
		Uploads:        cfg.Uploads,
		SecureCookies:  cfg.Production(),
		CORSOrigin:     cfg.CORSOrigin,
		RequestTimeout: cfg.RequestTimeout,
	}

	cleanup := func(ctx context.Context) error {
		var errs []error
		for _, fn := range cleanups {
			if err := fn(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	return deps, cleanup, nil
}

// buildRateLimiter shares limits through Redis when configured and falls back to
// a per-process limiter otherwise.
func buildRateLimiter(ctx context.Context, cfg config.RateLimitConfig) (middleware.RateLimiter, cleanupFunc, error) {
	if cfg.RedisURL == "" {
		return middleware.NewMemoryRateLimiter(cfg.Requests, cfg.Window, cfg.Burst, 10*cfg.Window), nil, nil
	}

	client, err := middleware.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	closeClient := func(context.Context) error { return client.Close() }
	return middleware.NewRedisRateLimiter(client, cfg.Requests, cfg.Burst, cfg.Window), closeClient, nil
}
