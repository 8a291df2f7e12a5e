package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/bnema/followcheck/internal/domain"
	"github.com/bnema/followcheck/internal/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/bnema/followcheck/internal/application"

var (
	ErrSecondFactorInputMissing = errors.New("second factor input not found")
	ErrNoSessionCookies         = errors.New("no session cookies after login")
)

type LoginOutcome string

const (
	LoginAuthenticated            LoginOutcome = "authenticated"
	LoginAuthenticatedUnconfirmed LoginOutcome = "authenticated_unconfirmed"
	LoginSecondFactorRequired     LoginOutcome = "second_factor_required"
)

type LoginResult struct {
	Outcome LoginOutcome
	Cookies *domain.CookieJar
	Pending domain.PendingHandle
}

type LoginConfig struct {
	LoginURL         string
	MobileLoginURL   string
	NavAttempts      int
	NavBackoff       time.Duration
	URLStableFor     time.Duration
	URLStableMax     time.Duration
	URLCheckInterval time.Duration
	FieldWait        time.Duration
	SubmitEnableWait time.Duration
	PollTimeout      time.Duration
	PollInterval     time.Duration
	PendingIdle      time.Duration
	ActionTimeout    time.Duration
	PrepareTimeout   time.Duration
	Debug            bool
	Selectors        LoginSelectors
}

func DefaultLoginConfig() LoginConfig {
	return LoginConfig{
		LoginURL:         "https://www.instagram.com/accounts/login/",
		MobileLoginURL:   "https://m.instagram.com/accounts/login/",
		NavAttempts:      4,
		NavBackoff:       1500 * time.Millisecond,
		URLStableFor:     3 * time.Second,
		URLStableMax:     20 * time.Second,
		URLCheckInterval: 500 * time.Millisecond,
		FieldWait:        15 * time.Second,
		SubmitEnableWait: 5 * time.Second,
		PollTimeout:      60 * time.Second,
		PollInterval:     time.Second,
		PendingIdle:      5 * time.Minute,
		ActionTimeout:    3 * time.Second,
		PrepareTimeout:   90 * time.Second,
		Selectors:        DefaultLoginSelectors(),
	}
}

// LoginService drives the platform login form and hands back session cookies
// or a pending handle when a second factor is requested.
type LoginService struct {
	browser   ports.Browser
	admission *Admission
	artifacts ports.ArtifactStore
	clock     ports.Clock
	logger    *zap.Logger
	cfg       LoginConfig
	tracer    trace.Tracer
}

func NewLoginService(browser ports.Browser, admission *Admission, artifacts ports.ArtifactStore, clock ports.Clock, logger *zap.Logger, cfg LoginConfig) *LoginService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LoginService{
		browser:   browser,
		admission: admission,
		artifacts: artifacts,
		clock:     clock,
		logger:    logger,
		cfg:       cfg,
		tracer:    otel.Tracer(tracerName),
	}
}

func (s *LoginService) Login(ctx context.Context, username domain.Identifier, password string) (result LoginResult, err error) {
	ctx, span := s.tracer.Start(ctx, "login")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.String("outcome", string(result.Outcome)))
		}
		span.End()
	}()

	if username == "" || password == "" {
		return LoginResult{}, fmt.Errorf("login requires username and password: %w", domain.ErrInputValidation)
	}

	release, err := s.admission.Acquire(ctx)
	if err != nil {
		return LoginResult{}, &domain.AuthError{Reason: domain.AuthTimeout, Err: err}
	}

	// Everything up to the submitted form shares one deadline.
	prepCtx, cancelPrep := ctx, context.CancelFunc(func() {})
	if s.cfg.PrepareTimeout > 0 {
		prepCtx, cancelPrep = context.WithTimeout(ctx, s.cfg.PrepareTimeout)
	}
	defer cancelPrep()

	page, err := s.openLoginPage(prepCtx)
	if err != nil {
		release()
		return LoginResult{}, err
	}

	handedOff := false
	defer func() {
		if handedOff {
			return
		}
		if closeErr := page.Close(); closeErr != nil {
			s.logger.Debug("close login page", zap.Error(closeErr))
		}
		release()
	}()

	sel := s.cfg.Selectors
	s.dismissConsent(prepCtx, page)
	waitStableURL(prepCtx, page, s.cfg.URLStableFor, s.cfg.URLStableMax, s.cfg.URLCheckInterval)

	userInput, ok := s.waitForElement(prepCtx, page, sel.UsernameInputs)
	if !ok {
		return LoginResult{}, s.fail(ctx, page, prepFailure(prepCtx), errors.New("username input not found"))
	}
	passInput, ok := s.waitForElement(prepCtx, page, sel.PasswordInputs)
	if !ok {
		return LoginResult{}, s.fail(ctx, page, prepFailure(prepCtx), errors.New("password input not found"))
	}

	if err := userInput.Fill(prepCtx, string(username)); err != nil {
		return LoginResult{}, s.fail(ctx, page, prepFailure(prepCtx), fmt.Errorf("fill username: %w", err))
	}
	if err := passInput.Fill(prepCtx, password); err != nil {
		return LoginResult{}, s.fail(ctx, page, prepFailure(prepCtx), fmt.Errorf("fill password: %w", err))
	}

	if err := s.submit(prepCtx, page); err != nil {
		return LoginResult{}, s.fail(ctx, page, prepFailure(prepCtx), fmt.Errorf("submit login form: %w", err))
	}
	cancelPrep()

	pollCtx, cancel := context.WithTimeout(ctx, s.cfg.PollTimeout)
	defer cancel()

	for {
		s.dismissModals(pollCtx, page)

		if anyText(pollCtx, page.FindInFrames, sel.AlertContainers, sel.WrongPassword) {
			return LoginResult{}, s.fail(ctx, page, domain.AuthWrongPassword, nil)
		}

		if _, ok := firstMatch(pollCtx, page.FindInFrames, sel.SecondFactorInputs); ok {
			handedOff = true
			pending := newPendingLogin(page, release, s.cfg.PendingIdle)
			s.logger.Info("login awaiting second factor", zap.String("username", string(username)), zap.String("pending_id", pending.ID()))
			return LoginResult{Outcome: LoginSecondFactorRequired, Pending: pending}, nil
		}

		if s.landmarkVisible(pollCtx, page) {
			jar, err := s.cookies(ctx, page)
			if err != nil {
				return LoginResult{}, s.fail(ctx, page, domain.AuthUnknown, err)
			}
			s.logger.Info("login succeeded", zap.String("username", string(username)), zap.Int("cookies", jar.Len()))
			return LoginResult{Outcome: LoginAuthenticated, Cookies: jar}, nil
		}

		if err := sleep(pollCtx, s.cfg.PollInterval); err != nil {
			break
		}
	}

	if ctx.Err() != nil {
		return LoginResult{}, &domain.AuthError{Reason: domain.AuthTimeout, Err: ctx.Err()}
	}

	jar, err := s.cookies(ctx, page)
	if err != nil {
		return LoginResult{}, s.fail(ctx, page, domain.AuthTimeout, err)
	}

	s.logger.Warn("login landmark not seen before timeout, returning cookies", zap.String("username", string(username)), zap.Int("cookies", jar.Len()))
	return LoginResult{Outcome: LoginAuthenticatedUnconfirmed, Cookies: jar}, nil
}

func (s *LoginService) SubmitSecondFactor(ctx context.Context, handle domain.PendingHandle, code string) (jar *domain.CookieJar, err error) {
	ctx, span := s.tracer.Start(ctx, "login.second_factor")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	code = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, code)
	if code == "" {
		return nil, fmt.Errorf("second factor code is empty: %w", domain.ErrInputValidation)
	}

	pending, ok := handle.(*PendingLogin)
	if !ok || pending == nil {
		return nil, &domain.TwoFactorError{Reason: domain.TwoFactorTimeout, Err: ErrPendingLoginClosed}
	}

	page, err := pending.take()
	if err != nil {
		return nil, &domain.TwoFactorError{Reason: domain.TwoFactorTimeout, Err: err}
	}
	defer func() {
		if closeErr := pending.Close(); closeErr != nil {
			s.logger.Debug("close pending login", zap.Error(closeErr))
		}
	}()

	sel := s.cfg.Selectors
	input, ok := s.waitForElement(ctx, page, sel.SecondFactorInputs)
	if !ok {
		return nil, &domain.TwoFactorError{Reason: domain.TwoFactorTimeout, Err: ErrSecondFactorInputMissing}
	}
	if err := bounded(ctx, s.cfg.ActionTimeout, func(ctx context.Context) error { return input.Fill(ctx, code) }); err != nil {
		return nil, &domain.TwoFactorError{Reason: domain.TwoFactorTimeout, Err: fmt.Errorf("fill second factor code: %w", err)}
	}
	if err := bounded(ctx, s.cfg.ActionTimeout, func(ctx context.Context) error { return page.Press(ctx, ports.KeyEnter) }); err != nil {
		return nil, &domain.TwoFactorError{Reason: domain.TwoFactorTimeout, Err: fmt.Errorf("submit second factor code: %w", err)}
	}

	pollCtx, cancel := context.WithTimeout(ctx, s.cfg.PollTimeout)
	defer cancel()

	codeErrorScopes := append(append([]string{}, sel.AlertContainers...), "form")
	for {
		s.dismissModals(pollCtx, page)

		if s.landmarkVisible(pollCtx, page) {
			jar, err := s.cookies(ctx, page)
			if err != nil {
				return nil, &domain.TwoFactorError{Reason: domain.TwoFactorTimeout, Err: err}
			}
			s.logger.Info("second factor accepted", zap.String("pending_id", pending.ID()), zap.Int("cookies", jar.Len()))
			return jar, nil
		}

		if anyText(pollCtx, page.FindInFrames, codeErrorScopes, sel.WrongCode) {
			return nil, &domain.TwoFactorError{Reason: domain.TwoFactorWrongCode}
		}

		if err := sleep(pollCtx, s.cfg.PollInterval); err != nil {
			break
		}
	}

	s.capture(ctx, page, "second-factor-timeout")
	return nil, &domain.TwoFactorError{Reason: domain.TwoFactorTimeout, Err: context.DeadlineExceeded}
}

func (s *LoginService) openLoginPage(ctx context.Context) (ports.Page, error) {
	page, err := s.browser.Open(ctx, ports.BrowserProfile{})
	if err != nil {
		return nil, &domain.AuthError{Reason: domain.AuthUnknown, Err: fmt.Errorf("open browser: %w", err)}
	}

	_, navErr := navigateWithRetry(ctx, page, s.cfg.LoginURL, s.cfg.NavAttempts, s.cfg.NavBackoff)
	if navErr == nil {
		return page, nil
	}
	_ = page.Close()

	if ctx.Err() != nil {
		return nil, &domain.AuthError{Reason: domain.AuthTimeout, Err: navErr}
	}

	s.logger.Warn("desktop login unreachable, trying mobile", zap.Error(navErr))

	mobile, err := s.browser.Open(ctx, ports.BrowserProfile{Mobile: true})
	if err != nil {
		return nil, &domain.AuthError{Reason: domain.AuthUnknown, Err: fmt.Errorf("open mobile browser: %w", errors.Join(navErr, err))}
	}

	if _, err := navigateWithRetry(ctx, mobile, s.cfg.MobileLoginURL, s.cfg.NavAttempts, s.cfg.NavBackoff); err != nil {
		_ = mobile.Close()
		reason := domain.AuthUnknown
		if ctx.Err() != nil {
			reason = domain.AuthTimeout
		}
		return nil, &domain.AuthError{Reason: reason, Err: errors.Join(navErr, err)}
	}

	return mobile, nil
}

func (s *LoginService) waitForElement(ctx context.Context, page ports.Page, selectors []string) (ports.Element, bool) {
	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.FieldWait)
	defer cancel()

	for {
		if element, ok := firstMatch(waitCtx, page.FindInFrames, selectors); ok {
			return element, true
		}
		if err := sleep(waitCtx, s.cfg.PollInterval); err != nil {
			return nil, false
		}
	}
}

func (s *LoginService) submit(ctx context.Context, page ports.Page) error {
	if button, ok := firstText(ctx, page.FindInFrames, s.cfg.Selectors.SubmitButtons); ok {
		waitCtx, cancel := context.WithTimeout(ctx, s.cfg.SubmitEnableWait)
		defer cancel()

		for {
			enabled, err := button.Enabled(waitCtx)
			if err == nil && enabled {
				if err := bounded(ctx, s.cfg.ActionTimeout, button.Click); err == nil {
					return nil
				}
				break
			}
			if err := sleep(waitCtx, s.cfg.PollInterval); err != nil {
				break
			}
		}
		s.logger.Debug("login button not clickable, falling back to keyboard submit")
	}

	if err := bounded(ctx, s.cfg.ActionTimeout, func(ctx context.Context) error { return page.Press(ctx, ports.KeyTab) }); err != nil {
		return err
	}
	return bounded(ctx, s.cfg.ActionTimeout, func(ctx context.Context) error { return page.Press(ctx, ports.KeyEnter) })
}

func (s *LoginService) dismissConsent(ctx context.Context, page ports.Page) {
	if button, ok := firstText(ctx, page.FindInFrames, s.cfg.Selectors.ConsentButtons); ok {
		if err := bounded(ctx, s.cfg.ActionTimeout, button.Click); err != nil {
			s.logger.Debug("dismiss consent banner", zap.Error(err))
		}
	}
	_ = bounded(ctx, s.cfg.ActionTimeout, func(ctx context.Context) error { return page.Press(ctx, ports.KeyEscape) })
	waitStableURL(ctx, page, s.cfg.URLStableFor, s.cfg.URLStableMax, s.cfg.URLCheckInterval)
}

func (s *LoginService) dismissModals(ctx context.Context, page ports.Page) {
	if button, ok := firstText(ctx, page.FindInFrames, s.cfg.Selectors.DismissModals); ok {
		_ = bounded(ctx, s.cfg.ActionTimeout, button.Click)
	}
}

// prepFailure tells a form that never appeared apart from a login that ran
// out of time getting there.
func prepFailure(prepCtx context.Context) domain.AuthFailure {
	if prepCtx.Err() != nil {
		return domain.AuthTimeout
	}
	return domain.AuthUIElementMissing
}

func (s *LoginService) landmarkVisible(ctx context.Context, page ports.Page) bool {
	url, err := page.URL(ctx)
	if err != nil || !strings.Contains(url, s.cfg.Selectors.LandmarkHost) {
		return false
	}
	return hasAny(ctx, page.Find, s.cfg.Selectors.Landmark)
}

func (s *LoginService) cookies(ctx context.Context, page ports.Page) (*domain.CookieJar, error) {
	cookies, err := page.Cookies(ctx)
	if err != nil {
		return nil, fmt.Errorf("read session cookies: %w", err)
	}
	if len(cookies) == 0 {
		return nil, ErrNoSessionCookies
	}
	return domain.NewCookieJar(cookies...), nil
}

func (s *LoginService) fail(ctx context.Context, page ports.Page, reason domain.AuthFailure, cause error) error {
	s.logger.Warn("login failed", zap.String("reason", string(reason)), zap.Error(cause))
	s.capture(ctx, page, "login-"+string(reason))
	return &domain.AuthError{Reason: reason, Err: cause}
}

// capture stores a screenshot and the page markup when debug captures are enabled.
func (s *LoginService) capture(ctx context.Context, page ports.Page, tag string) {
	if !s.cfg.Debug || s.artifacts == nil {
		return
	}
	captureArtifacts(ctx, s.artifacts, s.logger, page, "login", tag, s.clock.Now())
}

func captureArtifacts(ctx context.Context, store ports.ArtifactStore, logger *zap.Logger, page ports.Page, area, tag string, now time.Time) {
	base := fmt.Sprintf("%s/%s-%s", area, now.UTC().Format("20060102T150405"), tag)

	if shot, err := page.Screenshot(ctx); err == nil {
		if err := store.Put(ctx, base+".png", shot); err != nil {
			logger.Debug("store screenshot artifact", zap.Error(err))
		}
	}
	if html, err := page.HTML(ctx); err == nil {
		if err := store.Put(ctx, base+".html", []byte(html)); err != nil {
			logger.Debug("store html artifact", zap.Error(err))
		}
	}
}
