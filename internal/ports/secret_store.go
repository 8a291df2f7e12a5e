package ports

import "context"

// SecretStore holds credentials that must not live in the config file, such as the bot token.
type SecretStore interface {
	Put(ctx context.Context, key string, value string) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
