package chromium

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/devices"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/bnema/followcheck/internal/ports"
)

const defaultStatusGrace = 2 * time.Second

type Config struct {
	// Bin is the browser executable; empty lets the launcher find or download one.
	Bin         string
	Headless    bool
	NoSandbox   bool
	Lang        string
	UserAgent   string
	StatusGrace time.Duration
}

func DefaultConfig() Config {
	return Config{Headless: true, Lang: "en-US", StatusGrace: defaultStatusGrace}
}

// Browser launches one headless Chromium process per Open call.
type Browser struct {
	cfg    Config
	logger *zap.Logger
}

var _ ports.Browser = (*Browser)(nil)

func New(cfg Config, logger *zap.Logger) *Browser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StatusGrace <= 0 {
		cfg.StatusGrace = defaultStatusGrace
	}
	return &Browser{cfg: cfg, logger: logger}
}

func (b *Browser) Open(ctx context.Context, profile ports.BrowserProfile) (ports.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := launcher.New().Headless(b.cfg.Headless).NoSandbox(b.cfg.NoSandbox)
	if b.cfg.Bin != "" {
		l = l.Bin(b.cfg.Bin)
	}
	if b.cfg.Lang != "" {
		l = l.Set("lang", b.cfg.Lang)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	// The engine outlives the calling operation when a login is handed off, so it is not bound to ctx.
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("connect to chromium: %w", err)
	}

	page := &Page{browser: browser, launcher: l, statusGrace: b.cfg.StatusGrace, logger: b.logger}
	if err := page.setup(ctx, profile, b.cfg); err != nil {
		_ = page.Close()
		return nil, err
	}

	b.logger.Debug("browser opened", zap.Bool("mobile", profile.Mobile), zap.Int("cookies", profile.Cookies.Len()))
	return page, nil
}

func (p *Page) setup(ctx context.Context, profile ports.BrowserProfile, cfg Config) error {
	target, err := p.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	p.page = target

	if _, err := target.EvalOnNewDocument(automationMask(cfg.Lang, profile.Mobile)); err != nil {
		return fmt.Errorf("install automation mask: %w", err)
	}

	if profile.Mobile {
		if err := target.Emulate(devices.IPhoneX); err != nil {
			return fmt.Errorf("emulate mobile device: %w", err)
		}
	} else if cfg.UserAgent != "" {
		if err := target.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: cfg.UserAgent}); err != nil {
			return fmt.Errorf("set user agent: %w", err)
		}
	}

	if profile.Cookies.Len() > 0 {
		if err := p.SetCookies(ctx, profile.Cookies.Cookies()); err != nil {
			return err
		}
	}
	return nil
}
