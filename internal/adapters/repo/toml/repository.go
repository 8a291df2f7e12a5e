package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bnema/followcheck/internal/domain"
	"github.com/bnema/followcheck/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configName      = "config"
	configType      = "toml"
	cookiesPathKey  = "storage.cookies_path"
	jarsFileMode    = 0o600
	jarsDirMode     = 0o700
	jarsConfigDir   = ".followcheck"
	jarsConfigFile  = "cookies.toml"
	tempFilePattern = ".cookies-*.toml.tmp"
)

// Repository stores cookie jars keyed by conversation in a single TOML file.
type Repository struct {
	path string
	mu   *sync.RWMutex
	now  func() time.Time
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.CookieJarRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	defaultPath := filepath.Join(homeDir, jarsConfigDir, jarsConfigFile)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, jarsConfigDir))
	cfg.SetDefault(cookiesPathKey, defaultPath)

	err = cfg.ReadInConfig()
	if err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	path := cfg.GetString(cookiesPathKey)
	if path == "" {
		return nil, errors.New("cookie jar path is empty")
	}
	path, err = normalizePath(path)
	if err != nil {
		return nil, err
	}

	return &Repository{path: path, mu: lockForPath(path), now: time.Now}, nil
}

func (r *Repository) Path() string {
	return r.path
}

func (r *Repository) Save(ctx context.Context, conversation domain.ConversationID, jar *domain.CookieJar) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if jar.Len() == 0 {
		return fmt.Errorf("save cookie jar: %w", domain.ErrCookieParse)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	encoded := toSchema(conversation, jar, r.now())
	updated := false
	for i := range file.Jars {
		if file.Jars[i].Conversation == encoded.Conversation {
			file.Jars[i] = encoded
			updated = true
			break
		}
	}

	if !updated {
		file.Jars = append(file.Jars, encoded)
		sort.Slice(file.Jars, func(i, j int) bool { return file.Jars[i].Conversation < file.Jars[j].Conversation })
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) Get(ctx context.Context, conversation domain.ConversationID) (*domain.CookieJar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	for _, entry := range file.Jars {
		if entry.Conversation == int64(conversation) {
			return fromSchema(entry), nil
		}
	}

	return nil, domain.ErrCookieJarNotFound
}

func (r *Repository) Delete(ctx context.Context, conversation domain.ConversationID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	kept := file.Jars[:0]
	for _, entry := range file.Jars {
		if entry.Conversation != int64(conversation) {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(file.Jars) {
		return nil
	}
	file.Jars = kept

	return r.writeSchema(file)
}

// List returns the conversations that have a stored jar.
func (r *Repository) List(ctx context.Context) ([]domain.ConversationID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	out := make([]domain.ConversationID, 0, len(file.Jars))
	for _, entry := range file.Jars {
		out = append(out, domain.ConversationID(entry.Conversation))
	}

	return out, nil
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			file := fileSchema{}
			file.applyDefaults()
			return file, nil
		}
		return fileSchema{}, fmt.Errorf("read cookie jar file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode cookie jar file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve cookie jar path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.path), jarsDirMode); err != nil {
		return fmt.Errorf("create cookie jar directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode cookie jar file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp cookie jar file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp cookie jar file: %w", err)
	}

	if err := tempFile.Chmod(jarsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp cookie jar file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp cookie jar file: %w", err)
	}

	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace cookie jar file: %w", err)
	}

	cleanup = false

	if err := os.Chmod(r.path, jarsFileMode); err != nil {
		return fmt.Errorf("chmod cookie jar file: %w", err)
	}

	return nil
}

func toSchema(conversation domain.ConversationID, jar *domain.CookieJar, now time.Time) jarSchema {
	cookies := jar.Cookies()
	entries := make([]cookieSchema, 0, len(cookies))
	for _, cookie := range cookies {
		entries = append(entries, cookieSchema{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Domain:   cookie.Domain,
			Path:     cookie.Path,
			Expires:  formatTime(cookie.Expires),
			HTTPOnly: cookie.HTTPOnly,
			Secure:   cookie.Secure,
		})
	}

	return jarSchema{
		Conversation: int64(conversation),
		SavedAt:      now.UTC().Format(time.RFC3339),
		Cookies:      entries,
	}
}

func fromSchema(entry jarSchema) *domain.CookieJar {
	jar := domain.NewCookieJar()
	for _, cookie := range entry.Cookies {
		jar.Put(domain.Cookie{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Domain:   cookie.Domain,
			Path:     cookie.Path,
			Expires:  parseTime(cookie.Expires),
			HTTPOnly: cookie.HTTPOnly,
			Secure:   cookie.Secure,
		})
	}
	return jar
}

func parseTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}

	return &parsed
}

func formatTime(value *time.Time) string {
	if value == nil || value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339)
}
