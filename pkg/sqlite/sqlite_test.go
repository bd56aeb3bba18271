package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func TestOpenReturnsMedium(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	m, err := Open(dir)
	require.NoError(t, err)
	defer m.Close()

	_, err = os.Stat(filepath.Join(dir, DatabaseFile))
	require.NoError(t, err)

	_, err = m.Get(ctx, types.NewsCollection)
	assert.ErrorIs(t, err, types.ErrKeyNotFound)

	require.NoError(t, m.Put(ctx, types.NewsCollection, []byte("[]")))
	got, err := m.Get(ctx, types.NewsCollection)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}
