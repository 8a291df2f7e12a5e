package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bnema/followcheck/internal/domain"
	"github.com/bnema/followcheck/internal/ports"
)

// ErrUnavailable means the pass binary is not installed.
var ErrUnavailable = errors.New("pass command unavailable")

const notInStore = "is not in the password store"

type runFunc func(ctx context.Context, stdin string, args ...string) (stdout string, stderr string, err error)

// Store keeps secrets in the user's pass(1) password store.
type Store struct {
	run runFunc
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{run: runPass}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, stderr, err := s.run(ctx, value+"\n", "insert", "--multiline", "--force", key); err != nil {
		return passError("insert", key, err, stderr)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stdout, stderr, err := s.run(ctx, "", "show", key)
	if err != nil {
		if strings.Contains(stderr, notInStore) {
			return "", fmt.Errorf("pass entry %q: %w", key, domain.ErrSecretNotFound)
		}
		return "", passError("show", key, err, stderr)
	}

	// pass show prints the whole entry; the secret is its first line.
	first, _, _ := strings.Cut(stdout, "\n")
	return strings.TrimRight(first, "\r"), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, stderr, err := s.run(ctx, "", "rm", "--force", key)
	if err != nil {
		if strings.Contains(stderr, notInStore) {
			return fmt.Errorf("pass entry %q: %w", key, domain.ErrSecretNotFound)
		}
		return passError("rm", key, err, stderr)
	}
	return nil
}

func runPass(ctx context.Context, stdin string, args ...string) (string, string, error) {
	bin, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass: %w", err)
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func passError(op string, key string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("pass %s %q: %w", op, key, err)
	}
	return fmt.Errorf("pass %s %q: %w: %s", op, key, err, stderr)
}
