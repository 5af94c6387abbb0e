package storage

import (
	"context"
	"fmt"

	"slidedeck/internal/adapters/storage/gdrive"
	"slidedeck/internal/adapters/storage/localfs"
	"slidedeck/internal/adapters/storage/pgstore"
	"slidedeck/internal/adapters/storage/redisstore"
	"slidedeck/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// NewProvider builds the artifact store selected by cfg.Storage.Provider.
// Providers holding connections also implement io.Closer.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := cfg.Storage
	switch s.Provider {
	case config.ProviderLocalFS:
		return localfs.New(cfg.SchemasDir), nil

	case config.ProviderGDrive:
		return newGDriveProvider(ctx, s)

	case config.ProviderRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     s.RedisAddr,
			Password: s.RedisPassword,
			DB:       s.RedisDB,
		})
		return redisstore.New(rdb, s.RedisPrefix), nil

	case config.ProviderPostgres:
		pool, err := pgxpool.New(ctx, s.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := pgstore.New(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage provider: %s", s.Provider)
	}
}

func newGDriveProvider(ctx context.Context, s config.StorageConfig) (Provider, error) {
	conf := &oauth2.Config{
		ClientID:     s.GDriveClientID,
		ClientSecret: s.GDriveClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drive.DriveFileScope},
	}

	tok := &oauth2.Token{RefreshToken: s.GDriveRefreshToken}
	httpClient := conf.Client(ctx, tok)

	srv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return gdrive.NewClient(srv, s.GDriveFolderID), nil
}
