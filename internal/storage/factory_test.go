package storage

import (
	"context"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slidedeck/internal/config"
)

func TestNewProvider(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name     string
		storage  config.StorageConfig
		want     string
		wantErr  bool
		isCloser bool
	}{
		{name: "localfs", storage: config.StorageConfig{Provider: config.ProviderLocalFS}, want: "localfs"},
		{
			name:     "redis",
			storage:  config.StorageConfig{Provider: config.ProviderRedis, RedisAddr: mr.Addr(), RedisPrefix: "t:"},
			want:     "redis",
			isCloser: true,
		},
		{
			name: "gdrive",
			storage: config.StorageConfig{
				Provider:           config.ProviderGDrive,
				GDriveClientID:     "id",
				GDriveClientSecret: "secret",
				GDriveRefreshToken: "token",
			},
			want: "gdrive",
		},
		{name: "redis missing addr", storage: config.StorageConfig{Provider: config.ProviderRedis}, wantErr: true},
		{name: "unknown", storage: config.StorageConfig{Provider: "s3"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{SchemasDir: t.TempDir(), Storage: tt.storage}

			p, err := NewProvider(context.Background(), cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Provider())

			closer, ok := p.(io.Closer)
			assert.Equal(t, tt.isCloser, ok)
			if ok {
				require.NoError(t, p.Ping(context.Background()))
				require.NoError(t, closer.Close())
			}
		})
	}
}
