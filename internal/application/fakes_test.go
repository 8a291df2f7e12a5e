package application

import (
	"context"
	"errors"
	"sync"

	"github.com/bnema/followcheck/internal/domain"
	"github.com/bnema/followcheck/internal/ports"
)

type fakeBrowser struct {
	mu     sync.Mutex
	pages  []*fakePage
	opened []ports.BrowserProfile
	open   func(profile ports.BrowserProfile) (*fakePage, error)
}

func (b *fakeBrowser) Open(_ context.Context, profile ports.BrowserProfile) (ports.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.opened = append(b.opened, profile)
	page, err := b.open(profile)
	if err != nil {
		return nil, err
	}
	b.pages = append(b.pages, page)
	return page, nil
}

// fakePage serves elements keyed by exact selector. Hooks let a test change
// what is rendered in response to clicks and key presses.
type fakePage struct {
	mu       sync.Mutex
	url      string
	status   func(url string) int
	html     func(p *fakePage) string
	elements map[string][]ports.Element
	cookies  []domain.Cookie
	onPress  func(p *fakePage, key ports.Key)
	pressed  []ports.Key
	wheels   int
	closed   int
}

func newFakePage() *fakePage {
	return &fakePage{elements: map[string][]ports.Element{}}
}

func (p *fakePage) set(selector string, elements ...ports.Element) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elements[selector] = elements
}

func (p *fakePage) Navigate(_ context.Context, url string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.url = url
	if p.status != nil {
		return p.status(url), nil
	}
	return 200, nil
}

func (p *fakePage) URL(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, nil
}

func (p *fakePage) HTML(context.Context) (string, error) {
	if p.html == nil {
		return "<html><body></body></html>", nil
	}
	return p.html(p), nil
}

func (p *fakePage) Find(_ context.Context, selector string) ([]ports.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elements[selector], nil
}

func (p *fakePage) FindInFrames(ctx context.Context, selector string) ([]ports.Element, error) {
	return p.Find(ctx, selector)
}

func (p *fakePage) Press(_ context.Context, key ports.Key) error {
	p.mu.Lock()
	p.pressed = append(p.pressed, key)
	hook := p.onPress
	p.mu.Unlock()

	if hook != nil {
		hook(p, key)
	}
	return nil
}

func (p *fakePage) Wheel(context.Context, float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wheels++
	return nil
}

func (p *fakePage) ScrollBy(context.Context, int) error {
	return nil
}

func (p *fakePage) Cookies(context.Context) ([]domain.Cookie, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cookies, nil
}

func (p *fakePage) SetCookies(_ context.Context, cookies []domain.Cookie) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cookies = append(p.cookies, cookies...)
	return nil
}

func (p *fakePage) Screenshot(context.Context) ([]byte, error) {
	return []byte("png"), nil
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

func (p *fakePage) closeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

type fakeElement struct {
	mu       sync.Mutex
	text     string
	html     func() string
	disabled bool
	children map[string][]ports.Element
	onClick  func()
	stuck    bool
	clicks   int
	filled   string
	scrolled int
}

func (e *fakeElement) Text(context.Context) (string, error) {
	return e.text, nil
}

func (e *fakeElement) Attribute(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (e *fakeElement) HTML(context.Context) (string, error) {
	if e.html == nil {
		return "<div>" + e.text + "</div>", nil
	}
	return e.html(), nil
}

func (e *fakeElement) Visible(context.Context) (bool, error) {
	return true, nil
}

func (e *fakeElement) Enabled(context.Context) (bool, error) {
	return !e.disabled, nil
}

// Click on a stuck element blocks until ctx is done, like an element hidden
// behind an overlay that never becomes actionable.
func (e *fakeElement) Click(ctx context.Context) error {
	e.mu.Lock()
	e.clicks++
	hook := e.onClick
	stuck := e.stuck
	e.mu.Unlock()

	if stuck {
		<-ctx.Done()
		return ctx.Err()
	}
	if hook != nil {
		hook()
	}
	return nil
}

func (e *fakeElement) Fill(_ context.Context, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filled = value
	return nil
}

func (e *fakeElement) ScrollIntoView(context.Context) error {
	return nil
}

func (e *fakeElement) ScrollBy(context.Context, int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scrolled++
	return nil
}

func (e *fakeElement) Find(_ context.Context, selector string) ([]ports.Element, error) {
	return e.children[selector], nil
}

func (e *fakeElement) clickCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks
}

func (e *fakeElement) value() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filled
}

type fakeAuthenticator struct {
	login        func(username domain.Identifier, password string) (LoginResult, error)
	secondFactor func(handle domain.PendingHandle, code string) (*domain.CookieJar, error)
	logins       []domain.Identifier
	codes        []string
}

func (a *fakeAuthenticator) Login(_ context.Context, username domain.Identifier, password string) (LoginResult, error) {
	a.logins = append(a.logins, username)
	if a.login == nil {
		return LoginResult{}, errors.New("unexpected login")
	}
	return a.login(username, password)
}

func (a *fakeAuthenticator) SubmitSecondFactor(_ context.Context, handle domain.PendingHandle, code string) (*domain.CookieJar, error) {
	a.codes = append(a.codes, code)
	if a.secondFactor == nil {
		return nil, errors.New("unexpected second factor")
	}
	return a.secondFactor(handle, code)
}

type fakeCollector struct {
	collect func(account domain.Identifier, cookies *domain.CookieJar) (domain.CollectionResult, error)
	calls   []domain.Identifier
}

func (c *fakeCollector) Collect(_ context.Context, account domain.Identifier, cookies *domain.CookieJar) (domain.CollectionResult, error) {
	c.calls = append(c.calls, account)
	if c.collect == nil {
		return domain.CollectionResult{}, errors.New("unexpected collection")
	}
	return c.collect(account, cookies)
}

type pendingStub struct {
	mu     sync.Mutex
	closed int
}

func (p *pendingStub) ID() string { return "pending-stub" }

func (p *pendingStub) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

func (p *pendingStub) closeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// tryAcquire takes an admission slot only if one is free right now.
func tryAcquire(a *Admission) (func(), bool) {
	if !a.sem.TryAcquire(1) {
		return nil, false
	}
	return func() { a.sem.Release(1) }, true
}

func (p *PendingLogin) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
