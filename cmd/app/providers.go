package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/evelynko/skinsight/internal/domain/auth"
	"github.com/evelynko/skinsight/internal/domain/scan"
	"github.com/evelynko/skinsight/internal/infra/aiskin"
	"github.com/evelynko/skinsight/internal/infra/config"
	"github.com/evelynko/skinsight/internal/infra/imagestore"
	"github.com/evelynko/skinsight/internal/infra/imaging"
	"github.com/evelynko/skinsight/internal/infra/ingredients"
	"github.com/evelynko/skinsight/internal/infra/llm/chatgpt"
	"github.com/evelynko/skinsight/internal/infra/profilerepo"
	"github.com/evelynko/skinsight/internal/infra/scanstore"
	"github.com/evelynko/skinsight/internal/infra/shelfrepo"
	"github.com/evelynko/skinsight/internal/infra/userrepo"
)

func provideScanConfig(cfg *config.Config) scan.Config {
	return scan.Config{
		MaxImageBytes: cfg.Scan.MaxImageBytes,
		CacheTTL:      cfg.Scan.CacheTTL,
		SimilarK:      cfg.Scan.SimilarK,
	}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
		Google: auth.GoogleConfig{
			ClientID:             cfg.Auth.Google.ClientID,
			ClientSecret:         cfg.Auth.Google.ClientSecret,
			RedirectURL:          cfg.Auth.Google.RedirectURL,
			TokenEncryptionKey:   cfg.Auth.Google.TokenEncryptionKey,
			PostLoginRedirectURL: cfg.Auth.Google.PostLoginRedirectURL,
		},
	}
}

func provideClassifierConfig(cfg *config.Config) aiskin.Config {
	return aiskin.Config{
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
		MaxPromptTokens: cfg.LLM.MaxPromptTokens,
	}
}

func provideChatGPTClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
}

func provideFrameDecoder() scan.FrameDecoder {
	return imaging.NewDecoder()
}

func provideEmbedder() scan.Embedder {
	return ingredients.NewDeterministicEmbedder(ingredients.DefaultDimensions)
}

func providePostgresPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Storage.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil
	}
	if cfg.Storage.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Storage.Postgres.MaxConns
	}
	if cfg.Storage.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Storage.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres repositories enabled")
	return pool
}

func provideAuthRepository(pool *pgxpool.Pool) auth.Repository {
	if pool == nil {
		return userrepo.NewMemoryRepository()
	}
	return userrepo.NewPostgresRepository(pool)
}

func provideProfileRepository(pool *pgxpool.Pool) scan.ProfileRepository {
	if pool == nil {
		return profilerepo.NewMemoryRepository()
	}
	return profilerepo.NewPostgresRepository(pool)
}

func provideShelfRepository(pool *pgxpool.Pool) scan.ShelfRepository {
	if pool == nil {
		return shelfrepo.NewMemoryRepository()
	}
	return shelfrepo.NewPostgresRepository(pool)
}

func provideAnalysisStore(cfg *config.Config, logger *slog.Logger) scan.AnalysisStore {
	if cfg.Storage.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return scanstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return scanstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
		} else {
			logger.Info("valkey analysis cache enabled", "addr", cfg.Storage.Valkey.Addr)
			return scanstore.NewValkeyStore(client, "scan")
		}
	}
	return scanstore.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Storage.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Storage.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Storage.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideObjectStorage(cfg *config.Config, logger *slog.Logger) scan.ObjectStorage {
	if !cfg.Storage.S3.Enabled {
		return imagestore.NewMemoryStore()
	}
	store, err := imagestore.NewS3Storage(
		cfg.Storage.S3.Endpoint,
		cfg.Storage.S3.AccessKey,
		cfg.Storage.S3.SecretKey,
		cfg.Storage.S3.Bucket,
		"",
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize s3 storage, falling back to memory store", "error", err)
		return imagestore.NewMemoryStore()
	}
	logger.Info("s3 image archive enabled", "bucket", cfg.Storage.S3.Bucket)
	return store
}
