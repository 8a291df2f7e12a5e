package ports

import (
	"context"

	"github.com/bnema/followcheck/internal/domain"
)

// Transport delivers outbound messages to a conversation.
type Transport interface {
	SendText(ctx context.Context, conversation domain.ConversationID, text string) (domain.MessageID, error)
	SendFile(ctx context.Context, conversation domain.ConversationID, name string, data []byte) error
	// Retract deletes a previously delivered message. Callers treat failures as non-fatal.
	Retract(ctx context.Context, conversation domain.ConversationID, message domain.MessageID) error
}
