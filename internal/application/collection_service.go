package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bnema/followcheck/internal/domain"
	"github.com/bnema/followcheck/internal/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var ErrListDialogUnavailable = errors.New("list dialog did not open")

type CollectorConfig struct {
	ProfileURL               string
	MobileProfileURL         string
	NavAttempts              int
	NavBackoff               time.Duration
	HeaderWait               time.Duration
	DialogWait               time.Duration
	PollInterval             time.Duration
	MaxIterations            int
	StableIterations         int
	FullPageMaxIterations    int
	FullPageStableIterations int
	SettleDelay              time.Duration
	ScrollStep               int
	FullPageScrollStep       int
	WheelDelta               float64
	WheelRepeats             int
	MinPlausible             int
	Slack                    int
	ListBudget               time.Duration
	ActionTimeout            time.Duration
	Debug                    bool
	Selectors                CollectorSelectors
}

func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		ProfileURL:               "https://www.instagram.com/%s/",
		MobileProfileURL:         "https://m.instagram.com/%s/",
		NavAttempts:              4,
		NavBackoff:               1500 * time.Millisecond,
		HeaderWait:               15 * time.Second,
		DialogWait:               10 * time.Second,
		PollInterval:             500 * time.Millisecond,
		MaxIterations:            1000,
		StableIterations:         5,
		FullPageMaxIterations:    1200,
		FullPageStableIterations: 8,
		SettleDelay:              700 * time.Millisecond,
		ScrollStep:               800,
		FullPageScrollStep:       1200,
		WheelDelta:               300,
		WheelRepeats:             5,
		MinPlausible:             7,
		Slack:                    3,
		ListBudget:               10 * time.Minute,
		ActionTimeout:            3 * time.Second,
		Selectors:                DefaultCollectorSelectors(),
	}
}

// CollectionService reads both membership lists of an account through an
// authenticated browser session.
type CollectionService struct {
	browser   ports.Browser
	admission *Admission
	artifacts ports.ArtifactStore
	clock     ports.Clock
	logger    *zap.Logger
	cfg       CollectorConfig
	extractor extractor
	tracer    trace.Tracer
}

func NewCollectionService(browser ports.Browser, admission *Admission, artifacts ports.ArtifactStore, clock ports.Clock, logger *zap.Logger, cfg CollectorConfig) *CollectionService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CollectionService{
		browser:   browser,
		admission: admission,
		artifacts: artifacts,
		clock:     clock,
		logger:    logger,
		cfg:       cfg,
		extractor: newExtractor(cfg.Selectors),
		tracer:    otel.Tracer(tracerName),
	}
}

func (s *CollectionService) Collect(ctx context.Context, account domain.Identifier, cookies *domain.CookieJar) (result domain.CollectionResult, err error) {
	ctx, span := s.tracer.Start(ctx, "collect", trace.WithAttributes(attribute.String("account", string(account))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(
				attribute.Int("followers", len(result.Followers)),
				attribute.Int("following", len(result.Following)),
			)
		}
		span.End()
	}()

	account = domain.NormalizeIdentifier(string(account))
	if account == "" {
		return domain.CollectionResult{}, fmt.Errorf("collect requires a target account: %w", domain.ErrInputValidation)
	}
	if cookies.Len() == 0 {
		return domain.CollectionResult{}, fmt.Errorf("collect requires session cookies: %w", domain.ErrInputValidation)
	}

	release, err := s.admission.Acquire(ctx)
	if err != nil {
		return domain.CollectionResult{}, &domain.CollectionError{Reason: domain.CollectionTimeout, Account: account, Err: err}
	}
	defer release()

	page, err := s.browser.Open(ctx, ports.BrowserProfile{Cookies: cookies})
	if err != nil {
		return domain.CollectionResult{}, &domain.CollectionError{Reason: domain.CollectionUnknown, Account: account, Err: fmt.Errorf("open browser: %w", err)}
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			s.logger.Debug("close collection page", zap.Error(closeErr))
		}
	}()

	result = domain.CollectionResult{Account: account}

	result.Followers, result.FollowersStats, err = s.collectList(ctx, page, account, domain.ListFollowers, cookies)
	if err != nil {
		return domain.CollectionResult{}, err
	}

	result.Following, result.FollowingStats, err = s.collectList(ctx, page, account, domain.ListFollowing, cookies)
	if err != nil {
		return domain.CollectionResult{}, err
	}

	s.logger.Info("collection finished",
		zap.String("account", string(account)),
		zap.Int("followers", len(result.Followers)),
		zap.Int("followers_expected", result.FollowersStats.Expected),
		zap.Int("following", len(result.Following)),
		zap.Int("following_expected", result.FollowingStats.Expected),
		zap.Bool("best_effort", result.BestEffort()),
	)

	return result, nil
}

func (s *CollectionService) collectList(ctx context.Context, page ports.Page, account domain.Identifier, kind domain.ListKind, cookies *domain.CookieJar) (domain.IdentifierSet, domain.ListStats, error) {
	ctx, span := s.tracer.Start(ctx, "collect."+string(kind))
	defer span.End()

	stats := domain.ListStats{Kind: kind}
	set := domain.IdentifierSet{}

	if err := s.openProfile(ctx, page, account); err != nil {
		return nil, stats, err
	}

	listCtx, cancel := context.WithTimeout(ctx, s.cfg.ListBudget)
	defer cancel()

	if html, err := page.HTML(listCtx); err == nil {
		stats.Expected = expectedCountFrom(html, s.linkTargets(kind))
	}

	record := func(tier domain.CollectionTier, run convergeRun) {
		set.Merge(run.found)
		stats.Tiers = append(stats.Tiers, tier)
		stats.Iterations += run.iterations
		stats.StopReason = run.reason
		s.logger.Debug("collection tier finished",
			zap.String("account", string(account)),
			zap.String("list", string(kind)),
			zap.String("tier", string(tier)),
			zap.Int("found", len(run.found)),
			zap.Int("total", len(set)),
			zap.Int("iterations", run.iterations),
			zap.String("stop", string(run.reason)),
		)
	}

	if container, err := s.openDialog(listCtx, page, kind); err == nil {
		surface := listSurface{page: page, container: container, step: s.cfg.ScrollStep}
		record(domain.TierDialog, s.converge(listCtx, surface, account, set, stats.Expected, s.cfg.MaxIterations, s.cfg.StableIterations))
		_ = bounded(listCtx, s.cfg.ActionTimeout, func(ctx context.Context) error { return page.Press(ctx, ports.KeyEscape) })
	} else {
		s.logger.Debug("list dialog unavailable", zap.String("list", string(kind)), zap.Error(err))
	}

	if s.implausible(len(set), stats.Expected) && listCtx.Err() == nil {
		url := fmt.Sprintf(s.cfg.ProfileURL, account) + string(kind) + "/"
		if _, err := navigateWithRetry(listCtx, page, url, s.cfg.NavAttempts, s.cfg.NavBackoff); err == nil {
			surface := listSurface{page: page, container: s.dialogContainer(listCtx, page), step: s.cfg.FullPageScrollStep}
			record(domain.TierFullPage, s.converge(listCtx, surface, account, set, stats.Expected, s.cfg.FullPageMaxIterations, s.cfg.FullPageStableIterations))
		} else {
			s.logger.Debug("full page list unavailable", zap.String("list", string(kind)), zap.Error(err))
		}
	}

	if s.implausible(len(set), stats.Expected) && listCtx.Err() == nil {
		if run, err := s.collectMobile(listCtx, account, kind, cookies, set, stats.Expected); err == nil {
			record(domain.TierMobile, run)
		} else {
			s.logger.Debug("mobile list unavailable", zap.String("list", string(kind)), zap.Error(err))
		}
	}

	if ctx.Err() != nil {
		return nil, stats, &domain.CollectionError{Reason: domain.CollectionTimeout, Account: account, Err: ctx.Err()}
	}

	set.Remove(account)
	stats.Collected = len(set)
	if stats.Expected > 0 {
		stats.BestEffort = stats.Collected < stats.Expected
	} else {
		stats.BestEffort = stats.StopReason == domain.StopBudget || len(stats.Tiers) == 0
	}

	if stats.BestEffort && s.cfg.Debug && s.artifacts != nil {
		captureArtifacts(ctx, s.artifacts, s.logger, page, "collect", string(account)+"-"+string(kind), s.clock.Now())
	}

	span.SetAttributes(attribute.Int("collected", stats.Collected), attribute.Int("expected", stats.Expected))
	return set, stats, nil
}

func (s *CollectionService) openProfile(ctx context.Context, page ports.Page, account domain.Identifier) error {
	url := fmt.Sprintf(s.cfg.ProfileURL, account)
	status, err := navigateWithRetry(ctx, page, url, s.cfg.NavAttempts, s.cfg.NavBackoff)
	if err != nil {
		reason := domain.CollectionUnknown
		if ctx.Err() != nil {
			reason = domain.CollectionTimeout
		}
		return &domain.CollectionError{Reason: reason, Account: account, Err: err}
	}
	if status == http.StatusNotFound {
		return &domain.CollectionError{Reason: domain.CollectionProfileNotFound, Account: account}
	}

	s.waitFor(ctx, page, s.cfg.Selectors.ProfileHeader, s.cfg.HeaderWait)

	html, err := page.HTML(ctx)
	if err != nil {
		return &domain.CollectionError{Reason: domain.CollectionUnknown, Account: account, Err: fmt.Errorf("read profile page: %w", err)}
	}

	text := visibleText(html)
	if containsAny(text, s.cfg.Selectors.NotFoundMarkers) {
		return &domain.CollectionError{Reason: domain.CollectionProfileNotFound, Account: account}
	}
	if containsAny(text, s.cfg.Selectors.PrivateMarkers) {
		return &domain.CollectionError{Reason: domain.CollectionPrivateAccount, Account: account}
	}

	return nil
}

func (s *CollectionService) openDialog(ctx context.Context, page ports.Page, kind domain.ListKind) (ports.Element, error) {
	link, ok := firstText(ctx, page.Find, s.linkTargets(kind))
	if !ok {
		return nil, fmt.Errorf("%s link: %w", kind, ErrListDialogUnavailable)
	}
	if err := bounded(ctx, s.cfg.ActionTimeout, link.Click); err != nil {
		return nil, fmt.Errorf("click %s link: %w", kind, err)
	}

	if !s.waitFor(ctx, page, s.cfg.Selectors.Dialog, s.cfg.DialogWait) {
		return nil, ErrListDialogUnavailable
	}

	container := s.dialogContainer(ctx, page)
	if container == nil {
		return nil, ErrListDialogUnavailable
	}
	return container, nil
}

// dialogContainer returns the scrollable area of the open dialog, the dialog
// itself, or nil when no dialog is open.
func (s *CollectionService) dialogContainer(ctx context.Context, page ports.Page) ports.Element {
	dialogs, err := page.Find(ctx, s.cfg.Selectors.Dialog)
	if err != nil || len(dialogs) == 0 {
		return nil
	}
	if scroller, ok := firstMatch(ctx, dialogs[0].Find, s.cfg.Selectors.ScrollContainers); ok {
		return scroller
	}
	return dialogs[0]
}

func (s *CollectionService) collectMobile(ctx context.Context, account domain.Identifier, kind domain.ListKind, cookies *domain.CookieJar, known domain.IdentifierSet, expected int) (convergeRun, error) {
	page, err := s.browser.Open(ctx, ports.BrowserProfile{Mobile: true, Cookies: cookies})
	if err != nil {
		return convergeRun{}, fmt.Errorf("open mobile browser: %w", err)
	}
	defer func() {
		_ = page.Close()
	}()

	url := fmt.Sprintf(s.cfg.MobileProfileURL, account) + string(kind) + "/"
	if _, err := navigateWithRetry(ctx, page, url, s.cfg.NavAttempts, s.cfg.NavBackoff); err != nil {
		return convergeRun{}, err
	}

	surface := listSurface{page: page, container: s.dialogContainer(ctx, page), step: s.cfg.FullPageScrollStep}
	return s.converge(ctx, surface, account, known, expected, s.cfg.FullPageMaxIterations, s.cfg.FullPageStableIterations), nil
}

// implausible reports whether a list result is too small to trust.
func (s *CollectionService) implausible(collected, expected int) bool {
	if expected > 0 && expected-collected > s.cfg.Slack {
		return true
	}
	return collected < s.cfg.MinPlausible && (expected == 0 || collected < expected)
}

func (s *CollectionService) linkTargets(kind domain.ListKind) []TextTarget {
	if kind == domain.ListFollowing {
		return s.cfg.Selectors.FollowingLinks
	}
	return s.cfg.Selectors.FollowersLinks
}

func (s *CollectionService) waitFor(ctx context.Context, page ports.Page, selector string, max time.Duration) bool {
	waitCtx, cancel := context.WithTimeout(ctx, max)
	defer cancel()

	for {
		if hasAny(waitCtx, page.Find, selector) {
			return true
		}
		if err := sleep(waitCtx, s.cfg.PollInterval); err != nil {
			return false
		}
	}
}

type convergeRun struct {
	found      domain.IdentifierSet
	iterations int
	reason     domain.StopReason
}

// listSurface is what one tier scrolls and reads: a scrollable element, or the
// whole page when container is nil.
type listSurface struct {
	page      ports.Page
	container ports.Element
	step      int
}

func (l listSurface) find(ctx context.Context, selector string) ([]ports.Element, error) {
	if l.container != nil {
		return l.container.Find(ctx, selector)
	}
	return l.page.Find(ctx, selector)
}

func (l listSurface) html(ctx context.Context) (string, error) {
	if l.container != nil {
		return l.container.HTML(ctx)
	}
	return l.page.HTML(ctx)
}

// converge extracts, then scrolls, until known plus this run's finds reach the
// expected count, the result stops growing, the iteration bound is hit or ctx
// expires. known is not modified.
func (s *CollectionService) converge(ctx context.Context, surface listSurface, account domain.Identifier, known domain.IdentifierSet, expected, maxIterations, stableLimit int) convergeRun {
	run := convergeRun{found: domain.IdentifierSet{}, reason: domain.StopIterationBound}
	stable := 0
	union := len(known)

	for i := 1; i <= maxIterations; i++ {
		if ctx.Err() != nil {
			run.reason = domain.StopBudget
			return run
		}
		run.iterations = i

		added := 0
		if html, err := surface.html(ctx); err == nil {
			found := s.extractor.extract(html)
			found.Remove(account)
			for id := range found {
				if run.found.Add(id) {
					added++
					if !known.Has(id) {
						union++
					}
				}
			}
		}

		if expected > 0 && union >= expected {
			run.reason = domain.StopExpectedReached
			return run
		}
		if added == 0 {
			stable++
			if stable >= stableLimit {
				run.reason = domain.StopStable
				return run
			}
		} else {
			stable = 0
		}

		_ = bounded(ctx, s.cfg.ActionTimeout, func(ctx context.Context) error {
			s.scroll(ctx, surface)
			return nil
		})
		if button, ok := firstText(ctx, surface.find, s.cfg.Selectors.ShowMoreButtons); ok {
			_ = bounded(ctx, s.cfg.ActionTimeout, button.Click)
		}
		if err := sleep(ctx, s.cfg.SettleDelay); err != nil {
			run.reason = domain.StopBudget
			return run
		}
	}

	return run
}

// scroll applies every scroll strategy in turn. Individual failures are ignored.
func (s *CollectionService) scroll(ctx context.Context, surface listSurface) {
	if surface.container != nil {
		for _, selector := range s.cfg.Selectors.ListItems {
			items, err := surface.container.Find(ctx, selector)
			if err != nil || len(items) == 0 {
				continue
			}
			_ = items[len(items)-1].ScrollIntoView(ctx)
			break
		}
		_ = surface.container.ScrollBy(ctx, surface.step)
	} else {
		_ = surface.page.ScrollBy(ctx, surface.step)
	}

	for i := 0; i < s.cfg.WheelRepeats; i++ {
		_ = surface.page.Wheel(ctx, s.cfg.WheelDelta)
	}
	_ = surface.page.Press(ctx, ports.KeyPageDown)
}
