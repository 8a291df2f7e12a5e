package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tomlrepo "github.com/bnema/followcheck/internal/adapters/repo/toml"
	"github.com/bnema/followcheck/internal/domain"
	"github.com/bnema/followcheck/internal/version"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionPrintsVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", stdout)
}

func TestDiffRendersReport(t *testing.T) {
	home := t.TempDir()
	followers, following := writeListsFixture(t, home)

	stdout, _, err := executeCLI(t, home, "diff", "--followers", followers, "--following", following)
	require.NoError(t, err)
	assert.Contains(t, stdout, "followers: 3  following: 2")
	assert.Contains(t, stdout, "Mutual (1)")
	assert.Contains(t, stdout, "• bob")
	assert.Contains(t, stdout, "• dave")
}

func TestDiffJSONOutput(t *testing.T) {
	home := t.TempDir()
	followers, following := writeListsFixture(t, home)

	stdout, _, err := executeCLI(t, home, "diff", "--followers", followers, "--following", following, "--json")
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(stdout)))

	var got reportJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, 3, got.Followers)
	assert.Equal(t, []domain.Identifier{"bob"}, got.Mutual)
	assert.Equal(t, []domain.Identifier{"dave"}, got.NotFollowingBack)
	assert.Equal(t, []domain.Identifier{"alice", "carol"}, got.NotFollowedByYou)
	assert.Empty(t, got.Lists)
	assert.False(t, got.BestEffort)
}

func TestDiffWritesReportFiles(t *testing.T) {
	home := t.TempDir()
	followers, following := writeListsFixture(t, home)
	out := filepath.Join(home, "report")

	_, _, err := executeCLI(t, home, "diff", "--followers", followers, "--following", following, "--out", out)
	require.NoError(t, err)

	mutuals, err := os.ReadFile(filepath.Join(out, "mutuals.txt"))
	require.NoError(t, err)
	assert.Equal(t, "bob\n", string(mutuals))

	notBack, err := os.ReadFile(filepath.Join(out, "not_followed_by_you.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alice\ncarol\n", string(notBack))
}

func TestDiffRequiresListFlags(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "diff")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "followers", "following" not set`)
}

func TestDiffRejectsEmptyList(t *testing.T) {
	home := t.TempDir()
	followers, _ := writeListsFixture(t, home)
	empty := filepath.Join(home, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("\n\n"), 0o644))

	_, _, err := executeCLI(t, home, "diff", "--followers", followers, "--following", empty)
	require.ErrorIs(t, err, domain.ErrInputValidation)
}

func TestCookiesInspectMasksValues(t *testing.T) {
	home := t.TempDir()
	path := writeCookieFixture(t, home)

	stdout, _, err := executeCLI(t, home, "cookies", "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "sessionid")
	assert.Contains(t, stdout, "abcd****")
	assert.NotContains(t, stdout, "abcdefgh")
	assert.Contains(t, stdout, "cookies: 2  usable session: yes")
}

func TestCookiesInspectNetscape(t *testing.T) {
	home := t.TempDir()
	path := writeCookieFixture(t, home)

	stdout, _, err := executeCLI(t, home, "cookies", "inspect", path, "--netscape")
	require.NoError(t, err)
	assert.Contains(t, stdout, "# Netscape HTTP Cookie File")
	assert.Contains(t, stdout, "\tsessionid\tabcdefgh\n")
}

func TestCookiesInspectRejectsGarbage(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "garbage.txt")
	require.NoError(t, os.WriteFile(path, []byte("nothing useful here\n"), 0o644))

	_, _, err := executeCLI(t, home, "cookies", "inspect", path)
	require.ErrorIs(t, err, domain.ErrCookieParse)
}

func TestCookiesListAndForget(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "cookies", "list")
	require.NoError(t, err)
	assert.Equal(t, "No stored cookies.\n", stdout)

	repo, err := tomlrepo.NewRepository(viper.New())
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), 77, domain.NewCookieJar(domain.Cookie{Name: "sessionid", Value: "abc"})))

	stdout, _, err = executeCLI(t, home, "cookies", "list")
	require.NoError(t, err)
	assert.Equal(t, "77\t1 cookies\n", stdout)

	stdout, _, err = executeCLI(t, home, "cookies", "forget", "77")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Forgot cookies for conversation 77.")

	stdout, _, err = executeCLI(t, home, "cookies", "list")
	require.NoError(t, err)
	assert.Equal(t, "No stored cookies.\n", stdout)
}

func TestScrapeRequiresCookieSource(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "scrape", "someone")
	require.ErrorIs(t, err, errNoCookieSource)
}

func TestScrapeRejectsInvalidAccount(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "scrape", "@@@", "--cookies", "unused.txt")
	require.ErrorIs(t, err, domain.ErrInputValidation)
}

func TestServeRequiresToken(t *testing.T) {
	t.Setenv("FOLLOWCHECK_TELEGRAM_TOKEN", "")
	t.Setenv("FOLLOWCHECK_STORAGE_SECRET_BACKEND", "file")

	_, _, err := executeCLI(t, t.TempDir(), "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram token is not configured")
}

func TestTokenSetAndClear(t *testing.T) {
	t.Setenv("FOLLOWCHECK_STORAGE_SECRET_BACKEND", "file")
	home := t.TempDir()

	stdout, _, err := executeCLIWithInput(t, home, "  123:abc  \n", "token", "set")
	require.NoError(t, err)
	assert.Equal(t, "Stored token as followcheck/telegram-token\n", stdout)

	stored, err := os.ReadFile(filepath.Join(home, ".followcheck", "secrets", "followcheck", "telegram-token"))
	require.NoError(t, err)
	assert.Equal(t, "123:abc", string(stored))

	stdout, _, err = executeCLI(t, home, "token", "clear")
	require.NoError(t, err)
	assert.Equal(t, "Token removed.\n", stdout)

	stdout, _, err = executeCLI(t, home, "token", "clear")
	require.NoError(t, err)
	assert.Equal(t, "No stored token.\n", stdout)
}

func TestTokenSetRejectsEmptyInput(t *testing.T) {
	t.Setenv("FOLLOWCHECK_STORAGE_SECRET_BACKEND", "file")

	_, _, err := executeCLIWithInput(t, t.TempDir(), "\n", "token", "set")
	require.ErrorIs(t, err, domain.ErrInputValidation)
}

func TestServeFallsBackToStoredToken(t *testing.T) {
	t.Setenv("FOLLOWCHECK_TELEGRAM_TOKEN", "")
	t.Setenv("FOLLOWCHECK_STORAGE_SECRET_BACKEND", "file")
	t.Setenv("HOME", t.TempDir())

	app, err := wireApp()
	require.NoError(t, err)
	require.NoError(t, app.secrets.Put(context.Background(), app.cfg.Telegram.TokenSecret, " 123:abc\n"))

	token, err := app.telegramToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "123:abc", token)
}

func TestInvalidConfigIsReported(t *testing.T) {
	home := t.TempDir()
	dir := filepath.Join(home, ".followcheck")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[browser]\nmax_sessions = 0\n"), 0o600))

	_, _, err := executeCLI(t, home, "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	return executeCLIWithInput(t, home, "", args...)
}

func executeCLIWithInput(t *testing.T, home string, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	root.SetIn(strings.NewReader(stdin))
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeListsFixture(t *testing.T, home string) (string, string) {
	t.Helper()

	followers := filepath.Join(home, "followers.txt")
	following := filepath.Join(home, "following.txt")
	require.NoError(t, os.WriteFile(followers, []byte("alice\r\n@Bob\n\ncarol\n"), 0o644))
	require.NoError(t, os.WriteFile(following, []byte("bob\ndave\n"), 0o644))
	return followers, following
}

func writeCookieFixture(t *testing.T, home string) string {
	t.Helper()

	path := filepath.Join(home, "cookies.txt")
	content := "# Netscape HTTP Cookie File\n" +
		".instagram.com\tTRUE\t/\tTRUE\t0\tsessionid\tabcdefgh\n" +
		".instagram.com\tTRUE\t/\tTRUE\t0\tcsrftoken\ttok\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
