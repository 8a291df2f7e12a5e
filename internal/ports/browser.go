package ports

import (
	"context"

	"github.com/bnema/followcheck/internal/domain"
)

type Key string

const (
	KeyEnter    Key = "Enter"
	KeyTab      Key = "Tab"
	KeyEscape   Key = "Escape"
	KeyPageDown Key = "PageDown"
)

type BrowserProfile struct {
	Mobile  bool
	Cookies *domain.CookieJar
}

// Browser starts isolated browsing sessions. Every Page it returns owns its
// own engine process and must be closed by the caller.
type Browser interface {
	Open(ctx context.Context, profile BrowserProfile) (Page, error)
}

type Page interface {
	// Navigate loads url and returns the main document HTTP status, or 0 when unknown.
	Navigate(ctx context.Context, url string) (int, error)
	URL(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
	// Find returns the elements matching selector in the main document. No match is not an error.
	Find(ctx context.Context, selector string) ([]Element, error)
	// FindInFrames searches the main document and then every child frame.
	FindInFrames(ctx context.Context, selector string) ([]Element, error)
	Press(ctx context.Context, key Key) error
	Wheel(ctx context.Context, deltaY float64) error
	ScrollBy(ctx context.Context, deltaY int) error
	Cookies(ctx context.Context) ([]domain.Cookie, error)
	SetCookies(ctx context.Context, cookies []domain.Cookie) error
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

type Element interface {
	Text(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (string, bool, error)
	HTML(ctx context.Context) (string, error)
	Visible(ctx context.Context) (bool, error)
	Enabled(ctx context.Context) (bool, error)
	Click(ctx context.Context) error
	Fill(ctx context.Context, value string) error
	ScrollIntoView(ctx context.Context) error
	// ScrollBy moves the element's own scroll position.
	ScrollBy(ctx context.Context, deltaY int) error
	Find(ctx context.Context, selector string) ([]Element, error)
}
