package application

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/followcheck/internal/ports"
)

type finder func(ctx context.Context, selector string) ([]ports.Element, error)

// sleep waits for d or until ctx is done. A non-positive d returns immediately.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// bounded runs one best-effort browser action under its own deadline so a
// stuck element cannot hold the caller. A non-positive limit only inherits ctx.
func bounded(ctx context.Context, limit time.Duration, action func(context.Context) error) error {
	if limit <= 0 {
		return action(ctx)
	}
	actionCtx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()
	return action(actionCtx)
}

// firstMatch returns the first element matched by the ordered selectors.
func firstMatch(ctx context.Context, find finder, selectors []string) (ports.Element, bool) {
	for _, selector := range selectors {
		elements, err := find(ctx, selector)
		if err != nil || len(elements) == 0 {
			continue
		}
		return elements[0], true
	}
	return nil, false
}

// firstText returns the first element matched by the ordered text targets.
func firstText(ctx context.Context, find finder, targets []TextTarget) (ports.Element, bool) {
	for _, target := range targets {
		elements, err := find(ctx, target.Selector)
		if err != nil {
			continue
		}
		for _, element := range elements {
			if len(target.Phrases) == 0 {
				return element, true
			}
			text, err := element.Text(ctx)
			if err != nil {
				continue
			}
			if containsAny(text, target.Phrases) {
				return element, true
			}
		}
	}
	return nil, false
}

// anyText reports whether an element under any of the selectors shows one of phrases.
func anyText(ctx context.Context, find finder, selectors []string, phrases []string) bool {
	for _, selector := range selectors {
		elements, err := find(ctx, selector)
		if err != nil {
			continue
		}
		for _, element := range elements {
			text, err := element.Text(ctx)
			if err == nil && containsAny(text, phrases) {
				return true
			}
		}
	}
	return false
}

func containsAny(text string, phrases []string) bool {
	lowered := strings.ToLower(text)
	for _, phrase := range phrases {
		if phrase != "" && strings.Contains(lowered, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

func hasAny(ctx context.Context, find finder, selector string) bool {
	elements, err := find(ctx, selector)
	return err == nil && len(elements) > 0
}

// navigateWithRetry retries transport errors, HTTP 429 and 5xx with a linear backoff.
// Any other status, including 404, is returned to the caller as-is.
func navigateWithRetry(ctx context.Context, page ports.Page, url string, attempts int, backoff time.Duration) (int, error) {
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		status, err := page.Navigate(ctx, url)
		switch {
		case err != nil:
			lastErr = err
		case transientStatus(status):
			lastErr = fmt.Errorf("http status %d", status)
		default:
			return status, nil
		}

		if ctx.Err() != nil {
			break
		}
		if attempt < attempts {
			if err := sleep(ctx, time.Duration(attempt)*backoff); err != nil {
				break
			}
		}
	}

	return 0, fmt.Errorf("navigate %s after %d attempts: %w", url, attempts, lastErr)
}

func transientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// waitStableURL returns once the page URL has not changed for stableFor, or after max.
func waitStableURL(ctx context.Context, page ports.Page, stableFor, max, interval time.Duration) {
	if stableFor <= 0 {
		return
	}

	start := time.Now()
	last, _ := page.URL(ctx)
	since := start
	for time.Since(start) < max {
		if err := sleep(ctx, interval); err != nil {
			return
		}
		current, err := page.URL(ctx)
		if err != nil {
			continue
		}
		if current != last {
			last = current
			since = time.Now()
			continue
		}
		if time.Since(since) >= stableFor {
			return
		}
	}
}
