package chromium

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/bnema/followcheck/internal/domain"
	"github.com/bnema/followcheck/internal/ports"
)

var errUnknownKey = errors.New("unknown key")

// Page is a single tab in its own Chromium process. Close tears down both.
type Page struct {
	browser     *rod.Browser
	launcher    *launcher.Launcher
	page        *rod.Page
	statusGrace time.Duration
	logger      *zap.Logger
}

var _ ports.Page = (*Page)(nil)

func (p *Page) Navigate(ctx context.Context, url string) (int, error) {
	navCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	status := 0
	wait := p.page.Context(navCtx).EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		status = e.Response.Status
		return true
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		wait()
	}()

	if err := p.page.Context(ctx).Navigate(url); err != nil {
		cancel()
		<-done
		return 0, fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.page.Context(ctx).WaitLoad(); err != nil {
		p.logger.Debug("wait load", zap.String("url", url), zap.Error(err))
	}

	select {
	case <-done:
	case <-time.After(p.statusGrace):
		cancel()
		<-done
	}
	return status, nil
}

func (p *Page) URL(ctx context.Context) (string, error) {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

func (p *Page) Find(ctx context.Context, selector string) ([]ports.Element, error) {
	return findIn(ctx, p.page, selector)
}

func (p *Page) FindInFrames(ctx context.Context, selector string) ([]ports.Element, error) {
	found, err := findIn(ctx, p.page, selector)
	if err != nil {
		return nil, err
	}

	frames, err := p.page.Context(ctx).Elements("iframe")
	if err != nil {
		return found, nil
	}
	for _, frame := range frames {
		doc, err := frame.Frame()
		if err != nil {
			continue
		}
		inner, err := findIn(ctx, doc, selector)
		if err != nil {
			continue
		}
		found = append(found, inner...)
	}
	return found, nil
}

func (p *Page) Press(ctx context.Context, key ports.Key) error {
	k, ok := keyFor(key)
	if !ok {
		return fmt.Errorf("press %q: %w", key, errUnknownKey)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.page.Context(ctx).Keyboard.Press(k)
}

func (p *Page) Wheel(ctx context.Context, deltaY float64) error {
	return p.page.Context(ctx).Mouse.Scroll(0, deltaY, 1)
}

func (p *Page) ScrollBy(ctx context.Context, deltaY int) error {
	_, err := p.page.Context(ctx).Eval(`(dy) => window.scrollBy(0, dy)`, deltaY)
	return err
}

func (p *Page) Cookies(ctx context.Context) ([]domain.Cookie, error) {
	res, err := proto.NetworkGetCookies{}.Call(p.page.Context(ctx))
	if err != nil {
		return nil, fmt.Errorf("get cookies: %w", err)
	}
	return fromNetworkCookies(res.Cookies), nil
}

func (p *Page) SetCookies(ctx context.Context, cookies []domain.Cookie) error {
	if err := p.page.Context(ctx).SetCookies(toCookieParams(cookies)); err != nil {
		return fmt.Errorf("set cookies: %w", err)
	}
	return nil
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	return p.page.Context(ctx).Screenshot(true, nil)
}

func (p *Page) Close() error {
	var errs []error
	if p.page != nil {
		if err := p.page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
	}
	if err := p.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close browser: %w", err))
	}
	p.launcher.Kill()
	p.launcher.Cleanup()
	return errors.Join(errs...)
}

func keyFor(key ports.Key) (input.Key, bool) {
	switch key {
	case ports.KeyEnter:
		return input.Enter, true
	case ports.KeyTab:
		return input.Tab, true
	case ports.KeyEscape:
		return input.Escape, true
	case ports.KeyPageDown:
		return input.PageDown, true
	default:
		return 0, false
	}
}

func findIn(ctx context.Context, page *rod.Page, selector string) ([]ports.Element, error) {
	els, err := page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("find %q: %w", selector, err)
	}
	return wrap(els), nil
}
