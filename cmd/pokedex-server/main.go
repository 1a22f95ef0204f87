package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"pokedexapi/internal/api"
	"pokedexapi/internal/config"
	"pokedexapi/pkg/cache"
	"pokedexapi/pkg/logging"
	"pokedexapi/pkg/pokeapi"
	"pokedexapi/pkg/pokedex"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
	})
	logger := logging.NewLogger("server")

	redisOpts, err := cfg.RedisOptions()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to parse Redis URL")
	}

	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// A dead Redis only costs the shared cache tier. The service keeps
	// serving through the in-process tier and uncached aggregation.
	if err := pingRedis(redisClient); err != nil {
		logger.Warn().Err(err).Str("addr", redisOpts.Addr).Msg("Redis unreachable, starting with a degraded cache")
	} else {
		logger.Info().Str("addr", redisOpts.Addr).Msg("Connected to Redis")
	}

	store := cache.NewTieredStore(
		cache.NewMemoryStore(cache.MemoryConfig{
			Capacity: cfg.MemoryCacheSize,
			TTL:      cfg.MemoryCacheTTL,
		}),
		cache.NewRedisStore(redisClient),
	)

	client, err := pokeapi.New(pokeapi.Config{
		BaseURL:   cfg.PokeAPIBaseURL,
		UserAgent: cfg.UserAgent,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create PokeAPI client")
	}

	aggregator := pokedex.NewAggregator(client, pokedex.SpriteOptions{
		Source:    cfg.SpriteSource,
		LocalBase: cfg.LocalSpriteBase,
	})
	builder := pokedex.NewBuilder(aggregator, pokedex.BuilderConfig{
		MaxPokemonID: cfg.MaxPokemonID,
		BatchSize:    cfg.RefreshBatchSize,
		BatchPause:   cfg.RefreshBatchPause,
		Concurrency:  cfg.RefreshConcurrency,
	})
	svc := pokedex.NewService(store, aggregator, builder, pokedex.ServiceConfig{
		CacheTTL: cfg.CacheTTL,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.NewRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RefreshOnStartup {
		go func() {
			if err := svc.EnsureWarm(ctx); err != nil {
				logger.Warn().Err(err).Msg("Startup cache population failed")
			}
		}()
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("user_agent", cfg.UserAgent).Msg("Starting pokedex server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

func pingRedis(client *redis.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return client.Ping(ctx).Err()
}
