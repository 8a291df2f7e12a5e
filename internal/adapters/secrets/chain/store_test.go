package chain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	passstore "github.com/bnema/followcheck/internal/adapters/secrets/pass"
	"github.com/bnema/followcheck/internal/domain"
	portmocks "github.com/bnema/followcheck/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const tokenKey = "followcheck/telegram-token"

func newChain(t *testing.T) (*Store, *portmocks.MockSecretStore, *portmocks.MockSecretStore) {
	t.Helper()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store, err := NewStore(primary, fallback)
	require.NoError(t, err)
	return store, primary, fallback
}

func TestNewStoreNeedsABackend(t *testing.T) {
	t.Parallel()

	_, err := NewStore(nil, nil)
	require.ErrorIs(t, err, errNoStores)
}

func TestStoreGetPrefersPrimary(t *testing.T) {
	t.Parallel()

	store, primary, _ := newChain(t)
	primary.EXPECT().Get(mock.Anything, tokenKey).Return("from-pass", nil).Once()

	value, err := store.Get(context.Background(), tokenKey)
	require.NoError(t, err)
	assert.Equal(t, "from-pass", value)
}

func TestStoreGetFallsBack(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Get(mock.Anything, tokenKey).Return("", passstore.ErrUnavailable).Once()
	fallback.EXPECT().Get(mock.Anything, tokenKey).Return("from-file", nil).Once()

	value, err := store.Get(context.Background(), tokenKey)
	require.NoError(t, err)
	assert.Equal(t, "from-file", value)
}

func TestStoreGetMissingEverywhere(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Get(mock.Anything, tokenKey).Return("", passstore.ErrUnavailable).Once()
	fallback.EXPECT().Get(mock.Anything, tokenKey).Return("", fmt.Errorf("secret file: %w", domain.ErrSecretNotFound)).Once()

	_, err := store.Get(context.Background(), tokenKey)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
	assert.ErrorIs(t, err, passstore.ErrUnavailable)
	assert.ErrorContains(t, err, tokenKey)
}

func TestStoreGetStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	store, primary, _ := newChain(t)
	primary.EXPECT().Get(mock.Anything, tokenKey).Return("", context.Canceled).Once()

	_, err := store.Get(context.Background(), tokenKey)
	require.ErrorIs(t, err, context.Canceled)
}

func TestStorePutFallsBack(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Put(mock.Anything, tokenKey, "123:abc").Return(errors.New("gpg failed")).Once()
	fallback.EXPECT().Put(mock.Anything, tokenKey, "123:abc").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), tokenKey, "123:abc"))
}

func TestStorePutReportsEveryFailure(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Put(mock.Anything, tokenKey, "123:abc").Return(errors.New("gpg failed")).Once()
	fallback.EXPECT().Put(mock.Anything, tokenKey, "123:abc").Return(errors.New("disk full")).Once()

	err := store.Put(context.Background(), tokenKey, "123:abc")
	require.Error(t, err)
	assert.ErrorContains(t, err, "gpg failed")
	assert.ErrorContains(t, err, "disk full")
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()

	notFound := fmt.Errorf("entry: %w", domain.ErrSecretNotFound)

	tests := []struct {
		name     string
		primary  error
		fallback error
		wantErr  error
		failText string
	}{
		{name: "held by fallback only", primary: notFound},
		{name: "pass missing", primary: passstore.ErrUnavailable},
		{name: "held nowhere", primary: notFound, fallback: notFound, wantErr: domain.ErrSecretNotFound},
		{name: "backend failure", primary: errors.New("gpg failed"), failText: "gpg failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store, primary, fallback := newChain(t)
			primary.EXPECT().Delete(mock.Anything, tokenKey).Return(tt.primary).Once()
			fallback.EXPECT().Delete(mock.Anything, tokenKey).Return(tt.fallback).Once()

			err := store.Delete(context.Background(), tokenKey)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.failText != "":
				require.ErrorContains(t, err, tt.failText)
			default:
				require.NoError(t, err)
			}
		})
	}
}
