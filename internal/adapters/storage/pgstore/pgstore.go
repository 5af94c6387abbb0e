// Package pgstore keeps template artifacts in a PostgreSQL table.
package pgstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"slidedeck/internal/ports"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS template_schemas (
	object_key   TEXT PRIMARY KEY,
	content_type TEXT NOT NULL DEFAULT 'application/json',
	body         BYTEA NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store implements ports.StorageProvider on the template_schemas table.
type Store struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Provider() string { return "postgres" }

// EnsureSchema creates the artifact table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("create template_schemas: %w", err)
	}
	return nil
}

func (s *Store) PutObject(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	if in.ObjectKey == "" {
		return ports.PutObjectOutput{}, fmt.Errorf("object_key is required")
	}

	data, err := io.ReadAll(in.Reader)
	if err != nil {
		return ports.PutObjectOutput{}, err
	}
	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/json"
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO template_schemas (object_key, content_type, body, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (object_key) DO UPDATE
		SET content_type = EXCLUDED.content_type,
		    body = EXCLUDED.body,
		    updated_at = now()
	`, in.ObjectKey, contentType, data)
	if err != nil {
		return ports.PutObjectOutput{}, fmt.Errorf("upsert %s: %w", in.ObjectKey, err)
	}

	return ports.PutObjectOutput{ObjectKey: in.ObjectKey, Size: int64(len(data))}, nil
}

func (s *Store) GetObject(ctx context.Context, objectKey string) (rc io.ReadCloser, contentType string, size int64, err error) {
	var data []byte
	err = s.db.QueryRow(ctx, `
		SELECT content_type, body
		FROM template_schemas
		WHERE object_key = $1
	`, objectKey).Scan(&contentType, &data)
	if errors.Is(err, pgx.ErrNoRows) || isUndefinedTable(err) {
		return nil, "", 0, fmt.Errorf("%s: %w", objectKey, ports.ErrObjectNotFound)
	}
	if err != nil {
		return nil, "", 0, fmt.Errorf("select %s: %w", objectKey, err)
	}

	return io.NopCloser(bytes.NewReader(data)), contentType, int64(len(data)), nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Close() error {
	s.db.Close()
	return nil
}

// isUndefinedTable reports 42P01, which means the generator never ran
// against this database.
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P01"
	}
	return false
}
