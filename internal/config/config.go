package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "FOLLOWCHECK"
	DirName    = ".followcheck"
	configName = "config"
	configType = "toml"
)

const (
	KeyTelegramToken        = "telegram.token"
	KeyTelegramTokenSecret  = "telegram.token_secret"
	KeyTelegramAllowedUsers = "telegram.allowed_users"
	KeyTelegramPollTimeout  = "telegram.poll_timeout"
	KeyTelegramMaxFileSize  = "telegram.max_file_size"

	KeyBrowserBin         = "browser.bin"
	KeyBrowserHeadless    = "browser.headless"
	KeyBrowserNoSandbox   = "browser.no_sandbox"
	KeyBrowserLang        = "browser.lang"
	KeyBrowserUserAgent   = "browser.user_agent"
	KeyBrowserMaxSessions = "browser.max_sessions"
	KeyBrowserDebug       = "browser.debug"

	KeyBrowserActionTimeout = "browser.action_timeout"

	KeySessionTTL           = "session.ttl"
	KeySessionSweepInterval = "session.sweep_interval"

	KeyLoginTimeout    = "login.timeout"
	KeyLoginPendingTTL = "login.pending_ttl"

	KeyCollectorMaxIterations    = "collector.max_iterations"
	KeyCollectorStableIterations = "collector.stable_iterations"
	KeyCollectorListBudget       = "collector.list_budget"

	KeyStorageDir           = "storage.dir"
	KeyStorageSecretBackend = "storage.secret_backend"

	KeyHealthAddr = "health.addr"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Telegram  Telegram
	Browser   Browser
	Session   Session
	Login     Login
	Collector Collector
	Storage   Storage
	Health    Health
}

type Telegram struct {
	Token        string
	// TokenSecret names the secret store entry consulted when Token is empty.
	TokenSecret  string
	AllowedUsers []int64
	PollTimeout  int
	MaxFileSize  int64
}

type Browser struct {
	Bin         string
	Headless    bool
	NoSandbox   bool
	Lang        string
	UserAgent   string
	MaxSessions int
	Debug       bool

	// ActionTimeout bounds a single click, key press or scroll.
	ActionTimeout time.Duration
}

type Session struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

type Login struct {
	Timeout    time.Duration
	PendingTTL time.Duration
}

type Collector struct {
	MaxIterations    int
	StableIterations int
	ListBudget       time.Duration
}

// Secret backends.
const (
	SecretBackendPass = "pass"
	SecretBackendFile = "file"
)

type Storage struct {
	Dir           string
	// SecretBackend is "pass" (pass first, files as fallback) or "file".
	SecretBackend string
}

func (s Storage) ArtifactsDir() string {
	return filepath.Join(s.Dir, "artifacts")
}

// SecretsDir holds file-backed secrets when pass is unavailable.
func (s Storage) SecretsDir() string {
	return filepath.Join(s.Dir, "secrets")
}

type Health struct {
	Addr string
}

func setDefaults(v *viper.Viper, home string) {
	v.SetDefault(KeyTelegramTokenSecret, "followcheck/telegram-token")
	v.SetDefault(KeyTelegramPollTimeout, 60)
	v.SetDefault(KeyTelegramMaxFileSize, 5<<20)
	v.SetDefault(KeyBrowserHeadless, true)
	v.SetDefault(KeyBrowserLang, "en-US")
	v.SetDefault(KeyBrowserMaxSessions, 2)
	v.SetDefault(KeyBrowserActionTimeout, 3*time.Second)
	v.SetDefault(KeySessionTTL, 6*time.Hour)
	v.SetDefault(KeySessionSweepInterval, 10*time.Minute)
	v.SetDefault(KeyLoginTimeout, 60*time.Second)
	v.SetDefault(KeyLoginPendingTTL, 5*time.Minute)
	v.SetDefault(KeyCollectorMaxIterations, 1000)
	v.SetDefault(KeyCollectorStableIterations, 5)
	v.SetDefault(KeyCollectorListBudget, 10*time.Minute)
	v.SetDefault(KeyStorageDir, filepath.Join(home, DirName))
	v.SetDefault(KeyStorageSecretBackend, SecretBackendPass)
	v.SetDefault(KeyHealthAddr, "127.0.0.1:8080")
}

// Load reads ~/.followcheck/config.toml when present and applies FOLLOWCHECK_* overrides.
func Load(v *viper.Viper, home string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(filepath.Join(home, DirName))
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, home)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	allowed, err := parseUserIDs(v.GetStringSlice(KeyTelegramAllowedUsers))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Telegram: Telegram{
			Token:        v.GetString(KeyTelegramToken),
			TokenSecret:  v.GetString(KeyTelegramTokenSecret),
			AllowedUsers: allowed,
			PollTimeout:  v.GetInt(KeyTelegramPollTimeout),
			MaxFileSize:  v.GetInt64(KeyTelegramMaxFileSize),
		},
		Browser: Browser{
			Bin:         v.GetString(KeyBrowserBin),
			Headless:    v.GetBool(KeyBrowserHeadless),
			NoSandbox:   v.GetBool(KeyBrowserNoSandbox),
			Lang:        v.GetString(KeyBrowserLang),
			UserAgent:   v.GetString(KeyBrowserUserAgent),
			MaxSessions: v.GetInt(KeyBrowserMaxSessions),
			Debug:       v.GetBool(KeyBrowserDebug),

			ActionTimeout: v.GetDuration(KeyBrowserActionTimeout),
		},
		Session: Session{
			TTL:           v.GetDuration(KeySessionTTL),
			SweepInterval: v.GetDuration(KeySessionSweepInterval),
		},
		Login: Login{
			Timeout:    v.GetDuration(KeyLoginTimeout),
			PendingTTL: v.GetDuration(KeyLoginPendingTTL),
		},
		Collector: Collector{
			MaxIterations:    v.GetInt(KeyCollectorMaxIterations),
			StableIterations: v.GetInt(KeyCollectorStableIterations),
			ListBudget:       v.GetDuration(KeyCollectorListBudget),
		},
		Storage: Storage{
			Dir:           v.GetString(KeyStorageDir),
			SecretBackend: strings.ToLower(strings.TrimSpace(v.GetString(KeyStorageSecretBackend))),
		},
		Health:  Health{Addr: v.GetString(KeyHealthAddr)},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Browser.MaxSessions <= 0 {
		errs = append(errs, fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, KeyBrowserMaxSessions))
	}
	if c.Browser.ActionTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, KeyBrowserActionTimeout))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, KeySessionTTL))
	}
	if c.Login.Timeout <= 0 || c.Login.PendingTTL <= 0 {
		errs = append(errs, fmt.Errorf("%w: login timeouts must be positive", ErrInvalidConfig))
	}
	if c.Collector.MaxIterations <= 0 || c.Collector.StableIterations <= 0 {
		errs = append(errs, fmt.Errorf("%w: collector iteration limits must be positive", ErrInvalidConfig))
	}
	if c.Collector.ListBudget <= 0 {
		errs = append(errs, fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, KeyCollectorListBudget))
	}
	if strings.TrimSpace(c.Storage.Dir) == "" {
		errs = append(errs, fmt.Errorf("%w: %s is empty", ErrInvalidConfig, KeyStorageDir))
	}
	if c.Storage.SecretBackend != SecretBackendPass && c.Storage.SecretBackend != SecretBackendFile {
		errs = append(errs, fmt.Errorf("%w: %s must be %q or %q", ErrInvalidConfig, KeyStorageSecretBackend, SecretBackendPass, SecretBackendFile))
	}
	return errors.Join(errs...)
}

// parseUserIDs accepts TOML arrays as well as comma or space separated env values.
func parseUserIDs(raw []string) ([]int64, error) {
	var ids []int64
	for _, entry := range raw {
		for _, field := range strings.FieldsFunc(entry, func(r rune) bool { return r == ',' || r == ' ' }) {
			id, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s entry %q", ErrInvalidConfig, KeyTelegramAllowedUsers, field)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
