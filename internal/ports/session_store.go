package ports

import (
	"context"
	"time"

	"github.com/bnema/followcheck/internal/domain"
)

type SessionStore interface {
	// Get returns the stored session, or a fresh IDLE session when none exists.
	Get(ctx context.Context, conversation domain.ConversationID) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Delete(ctx context.Context, conversation domain.ConversationID) error
	// Sweep evicts sessions idle since before now minus the store TTL and returns how many were dropped.
	Sweep(ctx context.Context, now time.Time) (int, error)
	Len() int
}
