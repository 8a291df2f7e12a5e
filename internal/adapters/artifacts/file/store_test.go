package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/followcheck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRejectsInvalidKeys(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	testCases := []struct {
		name    string
		key     string
		wantErr string
	}{
		{name: "empty", key: "", wantErr: "artifact key is empty"},
		{name: "whitespace", key: "   ", wantErr: "artifact key is empty"},
		{name: "absolute", key: "/absolute/path", wantErr: "invalid artifact key"},
		{name: "traversal", key: "../escape", wantErr: "invalid artifact key"},
		{name: "deep traversal", key: "../../shot.png", wantErr: "invalid artifact key"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := store.Put(context.Background(), tc.key, []byte("value"))
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestStorePutGetRoundTripAndPermissions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)
	key := "login/20260214T120000-timeout.png"
	want := []byte{0x89, 'P', 'N', 'G'}

	require.NoError(t, store.Put(context.Background(), key, want))

	got, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(filepath.Join(root, key))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(artifactFileMod), info.Mode().Perm())
}

func TestStoreGetMissingReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	_, err := store.Get(context.Background(), "login/missing.html")
	require.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestStoreListFiltersByPrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	for _, key := range []string{"login/b.html", "login/a.png", "collect/c.png"} {
		require.NoError(t, store.Put(context.Background(), key, []byte("x")))
	}

	keys, err := store.List(context.Background(), "login/")
	require.NoError(t, err)
	assert.Equal(t, []string{"login/a.png", "login/b.html"}, keys)
}

func TestStoreListMissingRootIsEmpty(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "not-created"))

	keys, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
