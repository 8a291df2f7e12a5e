package application

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

const DefaultMaxBrowserSessions = 2

// Admission bounds how many browser-driven operations run at once.
type Admission struct {
	sem *semaphore.Weighted
}

func NewAdmission(limit int) *Admission {
	if limit <= 0 {
		limit = DefaultMaxBrowserSessions
	}
	return &Admission{sem: semaphore.NewWeighted(int64(limit))}
}

// Acquire blocks until a slot is free or ctx is done. The returned release is safe to call more than once.
func (a *Admission) Acquire(ctx context.Context) (func(), error) {
	if a == nil {
		return func() {}, nil
	}

	if err := a.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire browser slot: %w", err)
	}

	var once sync.Once
	return func() {
		once.Do(func() { a.sem.Release(1) })
	}, nil
}
