package chain

import (
	"context"
	"errors"
	"fmt"

	filestore "github.com/bnema/followcheck/internal/adapters/secrets/file"
	passstore "github.com/bnema/followcheck/internal/adapters/secrets/pass"
	"github.com/bnema/followcheck/internal/domain"
	"github.com/bnema/followcheck/internal/ports"
)

var errNoStores = errors.New("secret chain needs at least one store")

// Store tries each backend in order. Reads return the first hit, writes land in
// the first backend that accepts them, deletes clear every backend.
type Store struct {
	stores []ports.SecretStore
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(stores ...ports.SecretStore) (*Store, error) {
	kept := make([]ports.SecretStore, 0, len(stores))
	for _, s := range stores {
		if s != nil {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil, errNoStores
	}
	return &Store{stores: kept}, nil
}

// NewPassFirst prefers pass(1) and falls back to plain files under fileRoot.
func NewPassFirst(fileRoot string) *Store {
	return &Store{stores: []ports.SecretStore{passstore.NewStore(), filestore.NewStore(fileRoot)}}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	var errs []error
	for i, store := range s.stores {
		err := store.Put(ctx, key, value)
		if err == nil {
			return nil
		}
		if isContextErr(err) {
			return err
		}
		errs = append(errs, fmt.Errorf("backend %d: %w", i, err))
	}
	return fmt.Errorf("store secret %q: %w", key, errors.Join(errs...))
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var errs []error
	for i, store := range s.stores {
		value, err := store.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if isContextErr(err) {
			return "", err
		}
		errs = append(errs, fmt.Errorf("backend %d: %w", i, err))
	}
	return "", fmt.Errorf("load secret %q: %w", key, errors.Join(errs...))
}

// Delete removes key everywhere. It reports ErrSecretNotFound only when no
// backend held the key.
func (s *Store) Delete(ctx context.Context, key string) error {
	var errs []error
	removed := false
	for i, store := range s.stores {
		err := store.Delete(ctx, key)
		switch {
		case err == nil:
			removed = true
		case isContextErr(err):
			return err
		case errors.Is(err, domain.ErrSecretNotFound), errors.Is(err, passstore.ErrUnavailable):
		default:
			errs = append(errs, fmt.Errorf("backend %d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("delete secret %q: %w", key, errors.Join(errs...))
	}
	if !removed {
		return fmt.Errorf("delete secret %q: %w", key, domain.ErrSecretNotFound)
	}
	return nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
