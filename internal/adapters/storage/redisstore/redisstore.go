// Package redisstore keeps template artifacts as Redis string values.
package redisstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"

	"slidedeck/internal/ports"
)

const contentTypeJSON = "application/json"

// Store implements ports.StorageProvider on a single Redis database.
// Keys are the object key behind a configurable prefix.
type Store struct {
	rdb    *redis.Client
	prefix string
}

func New(rdb *redis.Client, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) Provider() string { return "redis" }

func (s *Store) key(objectKey string) string { return s.prefix + objectKey }

func (s *Store) PutObject(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	if in.ObjectKey == "" {
		return ports.PutObjectOutput{}, fmt.Errorf("object_key is required")
	}

	data, err := io.ReadAll(in.Reader)
	if err != nil {
		return ports.PutObjectOutput{}, err
	}
	if err := s.rdb.Set(ctx, s.key(in.ObjectKey), data, 0).Err(); err != nil {
		return ports.PutObjectOutput{}, fmt.Errorf("redis set %s: %w", in.ObjectKey, err)
	}

	return ports.PutObjectOutput{ObjectKey: in.ObjectKey, Size: int64(len(data))}, nil
}

func (s *Store) GetObject(ctx context.Context, objectKey string) (rc io.ReadCloser, contentType string, size int64, err error) {
	data, err := s.rdb.Get(ctx, s.key(objectKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, "", 0, fmt.Errorf("%s: %w", objectKey, ports.ErrObjectNotFound)
	}
	if err != nil {
		return nil, "", 0, fmt.Errorf("redis get %s: %w", objectKey, err)
	}

	return io.NopCloser(bytes.NewReader(data)), contentTypeJSON, int64(len(data)), nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.rdb.Close()
}
