package toml

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/bnema/followcheck/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) (*Repository, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cookies.toml")
	config := viper.New()
	config.Set("storage.cookies_path", path)

	repo, err := NewRepository(config)
	require.NoError(t, err)
	return repo, path
}

func TestRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepository(t)

	expires := time.Date(2027, 2, 14, 11, 0, 0, 0, time.UTC)
	first := domain.NewCookieJar(
		domain.Cookie{Name: "sessionid", Value: "s1", Domain: ".instagram.com", Path: "/", Expires: &expires, HTTPOnly: true, Secure: true},
		domain.Cookie{Name: "csrftoken", Value: "c1"},
	)
	second := domain.NewCookieJar(domain.Cookie{Name: "sessionid", Value: "s2"})

	require.NoError(t, repo.Save(context.Background(), 100, first))
	require.NoError(t, repo.Save(context.Background(), 7, second))

	got, err := repo.Get(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, first.Cookies(), got.Cookies())

	conversations, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.ConversationID{7, 100}, conversations)
}

func TestRepositorySaveReplacesExistingJar(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepository(t)

	require.NoError(t, repo.Save(context.Background(), 1, domain.NewCookieJar(domain.Cookie{Name: "a", Value: "1"})))
	require.NoError(t, repo.Save(context.Background(), 1, domain.NewCookieJar(domain.Cookie{Name: "b", Value: "2"})))

	got, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	_, ok := got.Get("b")
	assert.True(t, ok)
}

func TestRepositoryRejectsEmptyJar(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepository(t)

	err := repo.Save(context.Background(), 1, domain.NewCookieJar())
	require.ErrorIs(t, err, domain.ErrCookieParse)
}

func TestRepositoryDelete(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepository(t)
	require.NoError(t, repo.Save(context.Background(), 1, domain.NewCookieJar(domain.Cookie{Name: "a", Value: "1"})))

	require.NoError(t, repo.Delete(context.Background(), 1))
	require.NoError(t, repo.Delete(context.Background(), 1))

	_, err := repo.Get(context.Background(), 1)
	require.ErrorIs(t, err, domain.ErrCookieJarNotFound)
}

func TestRepositorySaveCreatesDefaultPathAndEnforcesPermissions(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	repo, err := NewRepository(viper.New())
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), 1, domain.NewCookieJar(domain.Cookie{Name: "a", Value: "1"})))

	path := filepath.Join(homeDir, ".followcheck", "cookies.toml")
	assert.Equal(t, path, repo.Path())
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRepositoryMissingFileBehaviors(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "cookies.toml")
	config := viper.New()
	config.Set("storage.cookies_path", path)

	repo, err := NewRepository(config)
	require.NoError(t, err)

	conversations, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, conversations)

	_, err = repo.Get(context.Background(), 1)
	require.ErrorIs(t, err, domain.ErrCookieJarNotFound)
}

func TestRepositoryMalformedTOMLReturnsError(t *testing.T) {
	t.Parallel()

	repo, path := newTestRepository(t)
	require.NoError(t, os.WriteFile(path, []byte("jars = ["), 0o600))

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode cookie jar file")
}

func TestRepositoryRejectsFutureSchemaVersion(t *testing.T) {
	t.Parallel()

	repo, path := newTestRepository(t)
	require.NoError(t, os.WriteFile(path, []byte("version = 9\n"), 0o600))

	_, err := repo.Get(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported cookie jar schema version 9")
}

func TestRepositorySaveCanceledContextReturnsContextError(t *testing.T) {
	t.Parallel()

	repo, path := newTestRepository(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Save(ctx, 1, domain.NewCookieJar(domain.Cookie{Name: "a", Value: "1"}))
	require.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRepositoryConcurrentSavesKeepEveryJar(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepository(t)

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			jar := domain.NewCookieJar(domain.Cookie{Name: "sessionid", Value: strconv.Itoa(i)})
			assert.NoError(t, repo.Save(context.Background(), domain.ConversationID(i), jar))
		}(i)
	}
	wg.Wait()

	conversations, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, conversations, writers)
}
