package ports

import (
	"context"

	"github.com/bnema/followcheck/internal/domain"
)

// CookieJarRepository persists authenticated cookie jars per conversation.
type CookieJarRepository interface {
	Get(ctx context.Context, conversation domain.ConversationID) (*domain.CookieJar, error)
	Save(ctx context.Context, conversation domain.ConversationID, jar *domain.CookieJar) error
	Delete(ctx context.Context, conversation domain.ConversationID) error
}
