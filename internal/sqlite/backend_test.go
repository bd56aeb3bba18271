package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mesh-intelligence/shelf/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupStore opens a Store in a fresh temp directory and closes it when the
// test ends.
func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, DatabaseFile))
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DatabaseFile), s.Path())
}

func TestStoreOperations(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, s *Store)
	}{
		{
			name: "missing key returns ErrKeyNotFound",
			check: func(t *testing.T, s *Store) {
				_, err := s.Get(context.Background(), "news")
				assert.ErrorIs(t, err, types.ErrKeyNotFound)
			},
		},
		{
			name: "put then get returns the value",
			check: func(t *testing.T, s *Store) {
				ctx := context.Background()
				require.NoError(t, s.Put(ctx, "faqs", []byte(`[{"id":1,"question":"q"}]`)))
				got, err := s.Get(ctx, "faqs")
				require.NoError(t, err)
				assert.JSONEq(t, `[{"id":1,"question":"q"}]`, string(got))
			},
		},
		{
			name: "put overwrites the previous value",
			check: func(t *testing.T, s *Store) {
				ctx := context.Background()
				require.NoError(t, s.Put(ctx, "trash", []byte(`[{"id":1}]`)))
				require.NoError(t, s.Put(ctx, "trash", []byte(`[]`)))
				got, err := s.Get(ctx, "trash")
				require.NoError(t, err)
				assert.Equal(t, `[]`, string(got))
			},
		},
		{
			name: "keys are sorted",
			check: func(t *testing.T, s *Store) {
				ctx := context.Background()
				for _, k := range []string{"news", "activities", "logs"} {
					require.NoError(t, s.Put(ctx, k, []byte(`[]`)))
				}
				keys, err := s.Keys(ctx)
				require.NoError(t, err)
				assert.Equal(t, []string{"activities", "logs", "news"}, keys)
			},
		},
		{
			name: "updated_at tracks the last write",
			check: func(t *testing.T, s *Store) {
				ctx := context.Background()
				at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
				s.now = func() time.Time { return at }
				require.NoError(t, s.Put(ctx, "news", []byte(`[]`)))
				got, err := s.UpdatedAt(ctx, "news")
				require.NoError(t, err)
				assert.True(t, at.Equal(got))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, setupStore(t))
		})
	}
}

func TestValuesSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "achievements", []byte(`[{"id":7}]`)))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, "achievements")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":7}]`, string(got))
}

func TestClosedStore(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "Close is idempotent")

	ctx := context.Background()
	_, err = s.Get(ctx, "news")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Put(ctx, "news", []byte(`[]`)), ErrClosed)
	_, err = s.Keys(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}
