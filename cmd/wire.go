package cmd

import (
	"fmt"
	"os"

	"github.com/bnema/followcheck/internal/adapters/artifacts/file"
	"github.com/bnema/followcheck/internal/adapters/browser/chromium"
	"github.com/bnema/followcheck/internal/adapters/cookiefile"
	reportadapter "github.com/bnema/followcheck/internal/adapters/render/report"
	tomlrepo "github.com/bnema/followcheck/internal/adapters/repo/toml"
	"github.com/bnema/followcheck/internal/adapters/secrets/chain"
	secretfile "github.com/bnema/followcheck/internal/adapters/secrets/file"
	"github.com/bnema/followcheck/internal/application"
	"github.com/bnema/followcheck/internal/config"
	"github.com/bnema/followcheck/internal/ports"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type app struct {
	cfg        config.Config
	logger     *zap.Logger
	jars       *tomlrepo.Repository
	secrets    ports.SecretStore
	codec      cookiefile.Codec
	clock      ports.Clock
	renderer   func(application.Report, reportadapter.RenderOptions) (string, error)
	newBrowser func(config.Browser, *zap.Logger) ports.Browser
}

// services are the browser-driven use cases; they share one admission limit.
type services struct {
	login     *application.LoginService
	collector *application.CollectionService
}

func wireApp() (*app, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	v := viper.New()
	cfg, err := config.Load(v, homeDir)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	jars, err := tomlrepo.NewRepository(v)
	if err != nil {
		return nil, fmt.Errorf("wire cookie jar repository: %w", err)
	}

	return &app{
		cfg:        cfg,
		logger:     zap.NewNop(),
		jars:       jars,
		secrets:    newSecretStore(cfg.Storage),
		codec:      cookiefile.Codec{},
		clock:      ports.SystemClock{},
		renderer:   reportadapter.Render,
		newBrowser: newChromium,
	}, nil
}

func newSecretStore(cfg config.Storage) ports.SecretStore {
	if cfg.SecretBackend == config.SecretBackendFile {
		return secretfile.NewStore(cfg.SecretsDir())
	}
	return chain.NewPassFirst(cfg.SecretsDir())
}

func newChromium(cfg config.Browser, logger *zap.Logger) ports.Browser {
	return chromium.New(chromium.Config{
		Bin:       cfg.Bin,
		Headless:  cfg.Headless,
		NoSandbox: cfg.NoSandbox,
		Lang:      cfg.Lang,
		UserAgent: cfg.UserAgent,
	}, logger)
}

func (a *app) buildServices() services {
	admission := application.NewAdmission(a.cfg.Browser.MaxSessions)
	browser := a.newBrowser(a.cfg.Browser, a.logger)
	artifacts := file.NewStore(a.cfg.Storage.ArtifactsDir())

	loginCfg := application.DefaultLoginConfig()
	loginCfg.PollTimeout = a.cfg.Login.Timeout
	loginCfg.PendingIdle = a.cfg.Login.PendingTTL
	loginCfg.ActionTimeout = a.cfg.Browser.ActionTimeout
	loginCfg.Debug = a.cfg.Browser.Debug

	collectorCfg := application.DefaultCollectorConfig()
	collectorCfg.MaxIterations = a.cfg.Collector.MaxIterations
	collectorCfg.StableIterations = a.cfg.Collector.StableIterations
	collectorCfg.ListBudget = a.cfg.Collector.ListBudget
	collectorCfg.ActionTimeout = a.cfg.Browser.ActionTimeout
	collectorCfg.Debug = a.cfg.Browser.Debug

	return services{
		login:     application.NewLoginService(browser, admission, artifacts, a.clock, a.logger, loginCfg),
		collector: application.NewCollectionService(browser, admission, artifacts, a.clock, a.logger, collectorCfg),
	}
}
