package pgstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slidedeck/internal/ports"
)

func TestIsUndefinedTable(t *testing.T) {
	assert.True(t, isUndefinedTable(fmt.Errorf("query: %w", &pgconn.PgError{Code: "42P01"})))
	assert.False(t, isUndefinedTable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUndefinedTable(nil))
}

func newStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := openPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := New(pool)
	require.NoError(t, store.EnsureSchema(ctx))
	_, err = pool.Exec(ctx, `DELETE FROM template_schemas WHERE object_key LIKE 'pgstore-test-%'`)
	require.NoError(t, err)
	return store
}

func openPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	return pgxpool.New(ctx, dsn)
}

func TestPutGetRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	for _, body := range []string{`{"v":1}`, `{"v":2}`} {
		_, err := store.PutObject(ctx, ports.PutObjectInput{
			ObjectKey: "pgstore-test-classic.json",
			Reader:    strings.NewReader(body),
		})
		require.NoError(t, err)
	}

	rc, contentType, size, err := store.GetObject(ctx, "pgstore-test-classic.json")
	require.NoError(t, err)
	defer rc.Close()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(body))
	assert.Equal(t, "application/json", contentType)
	assert.EqualValues(t, 7, size)
	require.NoError(t, store.Ping(ctx))
}

func TestGetMissing(t *testing.T) {
	store := newStore(t)

	_, _, _, err := store.GetObject(context.Background(), "pgstore-test-missing.json")
	require.ErrorIs(t, err, ports.ErrObjectNotFound)
}
