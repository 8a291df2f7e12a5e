package ports

import "context"

// ArtifactStore keeps diagnostic captures (screenshots, page markup) from failed browser runs.
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}
