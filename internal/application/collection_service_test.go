package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/followcheck/internal/domain"
	"github.com/bnema/followcheck/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testCollectorConfig() CollectorConfig {
	cfg := DefaultCollectorConfig()
	cfg.NavBackoff = 0
	cfg.HeaderWait = 50 * time.Millisecond
	cfg.DialogWait = 50 * time.Millisecond
	cfg.PollInterval = time.Millisecond
	cfg.SettleDelay = 0
	cfg.StableIterations = 3
	cfg.FullPageStableIterations = 3
	cfg.ListBudget = 5 * time.Second
	return cfg
}

func testJar() *domain.CookieJar {
	return domain.NewCookieJar(domain.Cookie{Name: "sessionid", Value: "abc"})
}

func anchors(prefix string, from, to int) string {
	var b strings.Builder
	for i := from; i <= to; i++ {
		fmt.Fprintf(&b, `<li><a href="/%s%02d/"><img alt="%s%02d's profile picture"></a></li>`, prefix, i, prefix, i)
	}
	return b.String()
}

// listProfile renders a profile with list links; clicking a link opens a
// dialog whose container reveals batch more rows per read, up to total.
type listProfile struct {
	mu         sync.Mutex
	page       *fakePage
	reads      map[domain.ListKind]int
	batch      int
	total      map[domain.ListKind]int
	advertised map[domain.ListKind]int
	more       ports.Element
}

func newListProfile(batch int, total, advertised map[domain.ListKind]int) *listProfile {
	lp := &listProfile{
		page:       newFakePage(),
		reads:      map[domain.ListKind]int{},
		batch:      batch,
		total:      total,
		advertised: advertised,
	}

	lp.page.html = func(*fakePage) string {
		return fmt.Sprintf(`<html><body><header>
			<a href="/target/followers/"><span title="%d">%d</span> followers</a>
			<a href="/target/following/"><span title="%d">%d</span> following</a>
			</header></body></html>`,
			advertised[domain.ListFollowers], advertised[domain.ListFollowers],
			advertised[domain.ListFollowing], advertised[domain.ListFollowing])
	}
	lp.page.set("header", &fakeElement{})
	lp.page.set("a[href$='/followers/']", &fakeElement{onClick: func() { lp.openList(domain.ListFollowers) }})
	lp.page.set("a[href$='/following/']", &fakeElement{onClick: func() { lp.openList(domain.ListFollowing) }})
	lp.page.onPress = func(p *fakePage, key ports.Key) {
		if key == ports.KeyEscape {
			p.set("div[role='dialog']")
		}
	}
	return lp
}

func (lp *listProfile) openList(kind domain.ListKind) {
	container := &fakeElement{html: func() string { return lp.render(kind) }}
	if lp.more != nil {
		container.children = map[string][]ports.Element{clickableSelector: {lp.more}}
	}
	dialog := &fakeElement{children: map[string][]ports.Element{"div._aano": {container}}}
	lp.page.set("div[role='dialog']", dialog)
}

func (lp *listProfile) render(kind domain.ListKind) string {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	lp.reads[kind]++
	shown := lp.reads[kind] * lp.batch
	if shown > lp.total[kind] {
		shown = lp.total[kind]
	}
	return "<ul>" + anchors(rowPrefix[kind], 1, shown) + "</ul>"
}

var rowPrefix = map[domain.ListKind]string{
	domain.ListFollowers: "fan",
	domain.ListFollowing: "idol",
}

func TestCollectStopsWhenExpectedCountIsReached(t *testing.T) {
	t.Parallel()

	counts := map[domain.ListKind]int{domain.ListFollowers: 50, domain.ListFollowing: 30}
	lp := newListProfile(10, counts, counts)
	browser := &fakeBrowser{open: func(ports.BrowserProfile) (*fakePage, error) { return lp.page, nil }}
	service := NewCollectionService(browser, NewAdmission(1), nil, nil, zap.NewNop(), testCollectorConfig())

	result, err := service.Collect(context.Background(), "Target", testJar())
	require.NoError(t, err)

	assert.Equal(t, domain.Identifier("target"), result.Account)
	assert.Len(t, result.Followers, 50)
	assert.Len(t, result.Following, 30)
	assert.True(t, result.Followers.Has("fan01"))
	assert.True(t, result.Following.Has("idol30"))
	assert.False(t, result.Followers.Has("idol01"))

	assert.Equal(t, 50, result.FollowersStats.Expected)
	assert.Equal(t, 5, result.FollowersStats.Iterations)
	assert.Equal(t, domain.StopExpectedReached, result.FollowersStats.StopReason)
	assert.Equal(t, []domain.CollectionTier{domain.TierDialog}, result.FollowersStats.Tiers)
	assert.Equal(t, 3, result.FollowingStats.Iterations)
	assert.False(t, result.BestEffort())

	assert.Equal(t, 1, lp.page.closeCount())
	require.Len(t, browser.opened, 1)
	assert.Equal(t, "abc", mustCookie(t, browser.opened[0].Cookies, "sessionid"))
}

func TestCollectStopsOnStabilityWithoutExpectedCount(t *testing.T) {
	t.Parallel()

	total := map[domain.ListKind]int{domain.ListFollowers: 20, domain.ListFollowing: 12}
	lp := newListProfile(10, total, map[domain.ListKind]int{})
	browser := &fakeBrowser{open: func(ports.BrowserProfile) (*fakePage, error) { return lp.page, nil }}
	service := NewCollectionService(browser, nil, nil, nil, nil, testCollectorConfig())

	result, err := service.Collect(context.Background(), "target", testJar())
	require.NoError(t, err)

	assert.Len(t, result.Followers, 20)
	assert.Equal(t, domain.StopStable, result.FollowersStats.StopReason)
	assert.Equal(t, 5, result.FollowersStats.Iterations)
	assert.Len(t, result.Following, 12)
	assert.False(t, result.FollowersStats.BestEffort)
}

func TestCollectStopsAtIterationBound(t *testing.T) {
	t.Parallel()

	total := map[domain.ListKind]int{domain.ListFollowers: 1000, domain.ListFollowing: 1000}
	lp := newListProfile(1, total, map[domain.ListKind]int{})
	browser := &fakeBrowser{open: func(ports.BrowserProfile) (*fakePage, error) { return lp.page, nil }}

	cfg := testCollectorConfig()
	cfg.MaxIterations = 12
	cfg.MinPlausible = 1
	service := NewCollectionService(browser, nil, nil, nil, nil, cfg)

	result, err := service.Collect(context.Background(), "target", testJar())
	require.NoError(t, err)

	assert.Equal(t, domain.StopIterationBound, result.FollowersStats.StopReason)
	assert.Equal(t, 12, result.FollowersStats.Iterations)
	assert.Len(t, result.Followers, 12)
}

func TestCollectFallsBackThroughTiersAndUnionsResults(t *testing.T) {
	t.Parallel()

	total := map[domain.ListKind]int{domain.ListFollowers: 3, domain.ListFollowing: 3}
	lp := newListProfile(3, total, map[domain.ListKind]int{})
	desktop := lp.page
	desktop.html = func(p *fakePage) string {
		switch {
		case strings.HasSuffix(p.url, "/followers/"), strings.HasSuffix(p.url, "/following/"):
			return "<ul>" + anchors("page", 1, 2) + `<li><a href="/target/">target</a></li></ul>`
		default:
			return `<header><a href="/target/followers/">followers</a></header>`
		}
	}

	var mobiles []*fakePage
	browser := &fakeBrowser{open: func(profile ports.BrowserProfile) (*fakePage, error) {
		if !profile.Mobile {
			return desktop, nil
		}
		mobile := newFakePage()
		mobile.html = func(*fakePage) string { return "<ul>" + anchors("mob", 1, 10) + "</ul>" }
		mobiles = append(mobiles, mobile)
		return mobile, nil
	}}
	service := NewCollectionService(browser, NewAdmission(1), nil, nil, nil, testCollectorConfig())

	result, err := service.Collect(context.Background(), "target", testJar())
	require.NoError(t, err)

	assert.Equal(t, []domain.CollectionTier{domain.TierDialog, domain.TierFullPage, domain.TierMobile}, result.FollowersStats.Tiers)
	assert.Len(t, result.Followers, 15)
	assert.True(t, result.Followers.Has("fan01"))
	assert.True(t, result.Followers.Has("page02"))
	assert.True(t, result.Followers.Has("mob10"))
	assert.False(t, result.Followers.Has("target"))

	require.Len(t, mobiles, 2)
	for _, mobile := range mobiles {
		assert.Equal(t, 1, mobile.closeCount())
		assert.Contains(t, mobile.url, "https://m.instagram.com/target/")
	}
	assert.Equal(t, 1, desktop.closeCount())
}

func TestCollectFallbackTierStopsWhenUnionReachesExpected(t *testing.T) {
	t.Parallel()

	lp := newListProfile(10,
		map[domain.ListKind]int{domain.ListFollowers: 10, domain.ListFollowing: 10},
		map[domain.ListKind]int{domain.ListFollowers: 20})
	profile := lp.page.html
	fullPageReads := 0
	lp.page.html = func(p *fakePage) string {
		if !strings.HasSuffix(p.url, "/followers/") {
			return profile(p)
		}
		fullPageReads++
		shown := fullPageReads * 5
		if shown > 50 {
			shown = 50
		}
		return "<ul>" + anchors("page", 1, shown) + "</ul>"
	}
	browser := &fakeBrowser{open: func(ports.BrowserProfile) (*fakePage, error) { return lp.page, nil }}
	service := NewCollectionService(browser, nil, nil, nil, nil, testCollectorConfig())

	result, err := service.Collect(context.Background(), "target", testJar())
	require.NoError(t, err)

	assert.Equal(t, []domain.CollectionTier{domain.TierDialog, domain.TierFullPage}, result.FollowersStats.Tiers)
	assert.Equal(t, domain.StopExpectedReached, result.FollowersStats.StopReason)
	assert.Equal(t, 4+2, result.FollowersStats.Iterations)
	assert.Equal(t, 2, fullPageReads)
	assert.Len(t, result.Followers, 20)
	assert.True(t, result.Followers.Has("fan10"))
	assert.True(t, result.Followers.Has("page10"))
	assert.False(t, result.FollowersStats.BestEffort)
	assert.Len(t, browser.opened, 1)
}

func TestCollectBoundsStuckShowMoreButton(t *testing.T) {
	t.Parallel()

	counts := map[domain.ListKind]int{domain.ListFollowers: 30, domain.ListFollowing: 20}
	lp := newListProfile(10, counts, counts)
	more := &fakeElement{text: "Show more", stuck: true}
	lp.more = more
	browser := &fakeBrowser{open: func(ports.BrowserProfile) (*fakePage, error) { return lp.page, nil }}

	cfg := testCollectorConfig()
	cfg.ActionTimeout = 10 * time.Millisecond
	service := NewCollectionService(browser, nil, nil, nil, nil, cfg)

	type outcome struct {
		result domain.CollectionResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := service.Collect(context.Background(), "target", testJar())
		done <- outcome{result: result, err: err}
	}()

	select {
	case got := <-done:
		require.NoError(t, got.err)
		assert.Len(t, got.result.Followers, 30)
		assert.Len(t, got.result.Following, 20)
	case <-time.After(5 * time.Second):
		t.Fatal("collection did not return while the show more button ignored clicks")
	}
	assert.Positive(t, more.clickCount())
}

func TestCollectShortCircuitsOnProfileSignals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		reason domain.CollectionFailure
	}{
		{name: "private", status: 200, body: "<h2>This account is private</h2>", reason: domain.CollectionPrivateAccount},
		{name: "private russian", status: 200, body: "<h2>Это закрытый аккаунт</h2>", reason: domain.CollectionPrivateAccount},
		{name: "not found page", status: 200, body: "<h2>Sorry, this page isn't available.</h2>", reason: domain.CollectionProfileNotFound},
		{name: "not found status", status: 404, body: "", reason: domain.CollectionProfileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			page := newFakePage()
			page.status = func(string) int { return tt.status }
			page.html = func(*fakePage) string { return "<html><body>" + tt.body + "</body></html>" }
			page.set("header", &fakeElement{})
			link := &fakeElement{}
			page.set("a[href$='/followers/']", link)

			browser := &fakeBrowser{open: func(ports.BrowserProfile) (*fakePage, error) { return page, nil }}
			service := NewCollectionService(browser, nil, nil, nil, nil, testCollectorConfig())

			_, err := service.Collect(context.Background(), "target", testJar())

			var collErr *domain.CollectionError
			require.ErrorAs(t, err, &collErr)
			assert.Equal(t, tt.reason, collErr.Reason)
			assert.Equal(t, domain.Identifier("target"), collErr.Account)
			assert.Zero(t, link.clicks)
			assert.Equal(t, 1, page.closeCount())
		})
	}
}

func TestCollectRetriesTransientStatus(t *testing.T) {
	t.Parallel()

	counts := map[domain.ListKind]int{domain.ListFollowers: 10, domain.ListFollowing: 10}
	lp := newListProfile(10, counts, counts)
	attempts := 0
	lp.page.status = func(string) int {
		attempts++
		if attempts < 3 {
			return 429
		}
		return 200
	}
	browser := &fakeBrowser{open: func(ports.BrowserProfile) (*fakePage, error) { return lp.page, nil }}
	service := NewCollectionService(browser, nil, nil, nil, nil, testCollectorConfig())

	result, err := service.Collect(context.Background(), "target", testJar())
	require.NoError(t, err)
	assert.Len(t, result.Followers, 10)
}

func TestCollectRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	browser := &fakeBrowser{open: func(ports.BrowserProfile) (*fakePage, error) { return nil, errors.New("unexpected open") }}
	service := NewCollectionService(browser, nil, nil, nil, nil, testCollectorConfig())

	_, err := service.Collect(context.Background(), "@@", testJar())
	require.ErrorIs(t, err, domain.ErrInputValidation)

	_, err = service.Collect(context.Background(), "target", nil)
	require.ErrorIs(t, err, domain.ErrInputValidation)
	assert.Empty(t, browser.opened)
}

func TestCollectReportsTimeoutWhenContextIsCancelled(t *testing.T) {
	t.Parallel()

	counts := map[domain.ListKind]int{domain.ListFollowers: 50, domain.ListFollowing: 50}
	lp := newListProfile(1, counts, counts)
	browser := &fakeBrowser{open: func(ports.BrowserProfile) (*fakePage, error) { return lp.page, nil }}

	cfg := testCollectorConfig()
	cfg.SettleDelay = 20 * time.Millisecond
	service := NewCollectionService(browser, nil, nil, nil, nil, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := service.Collect(ctx, "target", testJar())

	var collErr *domain.CollectionError
	require.ErrorAs(t, err, &collErr)
	assert.Equal(t, domain.CollectionTimeout, collErr.Reason)
	assert.Equal(t, 1, lp.page.closeCount())
}

func TestExpectedCountFromHeader(t *testing.T) {
	t.Parallel()

	sel := DefaultCollectorSelectors()
	tests := []struct {
		name string
		html string
		want int
	}{
		{name: "title attribute", html: `<a href="/x/followers/"><span title="12,345">12.3K</span> followers</a>`, want: 12345},
		{name: "abbreviated text", html: `<a href="/x/followers/">1.2M followers</a>`, want: 1200000},
		{name: "russian text link", html: `<a href="/x/">3,5 тыс. подписчиков</a>`, want: 3500},
		{name: "missing", html: `<a href="/x/">posts</a>`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, expectedCountFrom(tt.html, sel.FollowersLinks))
		})
	}
}

func TestExtractorStrategies(t *testing.T) {
	t.Parallel()

	x := newExtractor(DefaultCollectorSelectors())
	html := `<ul>
		<li><a href="/alice/">Alice A</a></li>
		<li><a href="https://www.instagram.com/Bob.B/">Bob</a></li>
		<li><a href="/explore/">Explore</a></li>
		<li><a href="/p/xyz/">post</a></li>
		<li><a href="https://example.com/mallory/">elsewhere</a></li>
		<li><div data-username="carol_c"></div></li>
		<li><img alt="dave's profile picture"></li>
		<li><img alt="Фото профиля erin"></li>
		<li><span>frank.f</span><span>Frank Display</span><span>follow</span></li>
	</ul>`

	got := x.extract(html)
	want := domain.NewIdentifierSet("alice", "bob.b", "carol_c", "dave", "erin", "frank.f")
	assert.Equal(t, want.Sorted(), got.Sorted())

	again := x.extract(html)
	assert.Equal(t, got, again)
}

func mustCookie(t *testing.T, jar *domain.CookieJar, name string) string {
	t.Helper()
	cookie, ok := jar.Get(name)
	require.True(t, ok)
	return cookie.Value
}
